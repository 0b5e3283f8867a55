package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/entity"
	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/repository"
	userrepo "github.com/Kishor404/VST-Maarketing-CRM-System/internal/user/repository"
	"github.com/google/uuid"
)

// AttendanceService marks worker presence per day and mirrors it onto
// the worker availability flag used for assignment.
type AttendanceService struct {
	repos *repository.Repositories
	users *userrepo.UserRepository
}

func NewAttendanceService(repos *repository.Repositories, users *userrepo.UserRepository) *AttendanceService {
	return &AttendanceService{repos: repos, users: users}
}

// Mark records today's status for a worker. Workers mark themselves;
// admins may mark anyone. Re-marking the same day updates in place.
func (s *AttendanceService) Mark(ctx context.Context, actor Actor, userID, status string) (*entity.Attendance, error) {
	if status != entity.AttendancePresent && status != entity.AttendanceAbsent {
		return nil, fmt.Errorf("%w: unknown attendance status %q", ErrValidation, status)
	}
	if userID == "" {
		userID = actor.ID
	}
	if !actor.IsAdmin() && userID != actor.ID {
		return nil, fmt.Errorf("%w: workers mark only their own attendance", ErrForbidden)
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("%w: user %s not found", ErrValidation, userID)
	}

	today := dateOnly(time.Now())
	att, err := s.repos.Attendance.FindByUserAndDate(ctx, userID, today)
	switch {
	case err == nil:
		att.Status = status
		if actor.ID != userID {
			att.MarkedByID = &actor.ID
		}
		if err := s.repos.Attendance.Update(ctx, att); err != nil {
			return nil, err
		}
	case errors.Is(err, repository.ErrNotFound):
		att = &entity.Attendance{
			ID:     uuid.New().String()[:32],
			UserID: userID,
			Date:   today,
			Status: status,
		}
		if actor.ID != userID {
			att.MarkedByID = &actor.ID
		}
		if err := s.repos.Attendance.Create(ctx, att); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if err := s.users.SetAvailability(ctx, userID, status == entity.AttendancePresent); err != nil {
		return nil, err
	}
	return att, nil
}

// Today lists every record for the current date. Admin-only.
func (s *AttendanceService) Today(ctx context.Context, actor Actor) ([]entity.Attendance, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: attendance overview is admin-only", ErrForbidden)
	}
	return s.repos.Attendance.FindByDate(ctx, dateOnly(time.Now()))
}

// History lists a user's records over a date range. Admins see anyone;
// workers see themselves.
func (s *AttendanceService) History(ctx context.Context, actor Actor, userID string, from, to time.Time) ([]entity.Attendance, error) {
	if userID == "" {
		userID = actor.ID
	}
	if !actor.IsAdmin() && userID != actor.ID {
		return nil, fmt.Errorf("%w: workers view only their own attendance", ErrForbidden)
	}
	return s.repos.Attendance.FindByUserBetween(ctx, userID, from, to)
}
