package repository

import (
	"context"
	"errors"

	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/entity"
	"gorm.io/gorm"
)

type FeedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) FindByID(ctx context.Context, id string) (*entity.Feedback, error) {
	var fb entity.Feedback
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&fb).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &fb, nil
}

// FindByService returns the feedback left on a service, if any.
func (r *FeedbackRepository) FindByService(ctx context.Context, serviceID string) (*entity.Feedback, error) {
	var fb entity.Feedback
	err := r.db.WithContext(ctx).Where("service_id = ?", serviceID).First(&fb).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &fb, nil
}

// FindAll lists feedback newest first, optionally filtered by card.
func (r *FeedbackRepository) FindAll(ctx context.Context, page, pageSize int, cardID string) ([]entity.Feedback, int64, error) {
	var items []entity.Feedback
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Feedback{})
	if cardID != "" {
		query = query.Where("card_id = ?", cardID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

func (r *FeedbackRepository) Create(ctx context.Context, fb *entity.Feedback) error {
	return r.db.WithContext(ctx).Create(fb).Error
}
