package service

import (
	"context"
	"fmt"
	"time"

	crmservice "github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/service"
	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/reminder/entity"
	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/reminder/repository"
	"github.com/google/uuid"
)

var (
	ErrValidation = crmservice.ErrValidation
)

// ReminderService manages admin reminders; the sweeper fires them.
type ReminderService struct {
	repo *repository.ReminderRepository
}

func NewReminderService(repo *repository.ReminderRepository) *ReminderService {
	return &ReminderService{repo: repo}
}

// CreateReminderRequest is the reminder payload; dates are YYYY-MM-DD.
type CreateReminderRequest struct {
	Title         string   `json:"title" binding:"required"`
	Message       string   `json:"message"`
	ReminderDates []string `json:"reminder_dates" binding:"required"`
}

// UpdateReminderRequest carries partial edits.
type UpdateReminderRequest struct {
	Title         *string   `json:"title"`
	Message       *string   `json:"message"`
	ReminderDates *[]string `json:"reminder_dates"`
	IsActive      *bool     `json:"is_active"`
}

func (s *ReminderService) List(ctx context.Context, page, pageSize int) ([]entity.AdminReminder, int64, error) {
	return s.repo.FindAll(ctx, page, pageSize)
}

func (s *ReminderService) Get(ctx context.Context, id string) (*entity.AdminReminder, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ReminderService) Create(ctx context.Context, creatorID string, req *CreateReminderRequest) (*entity.AdminReminder, error) {
	dates, err := validateDates(req.ReminderDates)
	if err != nil {
		return nil, err
	}

	rem := &entity.AdminReminder{
		ID:             uuid.New().String()[:32],
		Title:          req.Title,
		Message:        req.Message,
		ReminderDates:  dates,
		TriggeredDates: entity.DateList{},
		CreatedByID:    creatorID,
		IsActive:       true,
	}
	if err := s.repo.Create(ctx, rem); err != nil {
		return nil, err
	}
	return rem, nil
}

func (s *ReminderService) Update(ctx context.Context, id string, req *UpdateReminderRequest) (*entity.AdminReminder, error) {
	rem, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		rem.Title = *req.Title
	}
	if req.Message != nil {
		rem.Message = *req.Message
	}
	if req.ReminderDates != nil {
		dates, err := validateDates(*req.ReminderDates)
		if err != nil {
			return nil, err
		}
		rem.ReminderDates = dates
	}
	if req.IsActive != nil {
		rem.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, rem); err != nil {
		return nil, err
	}
	return rem, nil
}

func (s *ReminderService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func validateDates(raw []string) (entity.DateList, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: at least one reminder date is required", ErrValidation)
	}
	dates := make(entity.DateList, 0, len(raw))
	for _, d := range raw {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return nil, fmt.Errorf("%w: invalid date %q", ErrValidation, d)
		}
		if !dates.Contains(d) {
			dates = append(dates, d)
		}
	}
	return dates, nil
}
