package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/entity"
	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/repository"
	"github.com/google/uuid"
)

// FeedbackService records customer ratings for completed services.
type FeedbackService struct {
	repos *repository.Repositories
}

func NewFeedbackService(repos *repository.Repositories) *FeedbackService {
	return &FeedbackService{repos: repos}
}

// CreateFeedbackRequest is the rating payload.
type CreateFeedbackRequest struct {
	ServiceID string `json:"service_id" binding:"required"`
	Rating    int    `json:"rating" binding:"required"`
	Comments  string `json:"comments"`
}

// Create records one rating: requesting customer only, completed
// services only, once per service.
func (s *FeedbackService) Create(ctx context.Context, actor Actor, req *CreateFeedbackRequest) (*entity.Feedback, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be 1..5", ErrValidation)
	}
	svc, err := s.repos.Service.FindByID(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if svc.RequestedByID != actor.ID {
		return nil, fmt.Errorf("%w: feedback is limited to the requesting customer", ErrForbidden)
	}
	if svc.Status != entity.ServiceStatusCompleted {
		return nil, fmt.Errorf("%w: service is %s, not completed", ErrConflict, svc.Status)
	}

	if _, err := s.repos.Feedback.FindByService(ctx, svc.ID); err == nil {
		return nil, fmt.Errorf("%w: feedback already recorded for this service", ErrConflict)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	fb := &entity.Feedback{
		ID:         uuid.New().String()[:32],
		ServiceID:  svc.ID,
		CardID:     svc.CardID,
		CustomerID: actor.ID,
		Rating:     req.Rating,
		Comments:   req.Comments,
	}
	if err := s.repos.Feedback.Create(ctx, fb); err != nil {
		return nil, err
	}
	return fb, nil
}

// List pages feedback. Admin-only; customers read their own via service detail.
func (s *FeedbackService) List(ctx context.Context, actor Actor, page, pageSize int, cardID string) ([]entity.Feedback, int64, error) {
	if !actor.IsAdmin() {
		return nil, 0, fmt.Errorf("%w: feedback listing is admin-only", ErrForbidden)
	}
	return s.repos.Feedback.FindAll(ctx, page, pageSize, cardID)
}
