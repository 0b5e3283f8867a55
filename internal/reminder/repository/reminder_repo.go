package repository

import (
	"context"
	"errors"

	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/reminder/entity"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

type ReminderRepository struct {
	db *gorm.DB
}

func NewReminderRepository(db *gorm.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

func (r *ReminderRepository) FindByID(ctx context.Context, id string) (*entity.AdminReminder, error) {
	var rem entity.AdminReminder
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rem).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rem, nil
}

// FindAll lists reminders newest first.
func (r *ReminderRepository) FindAll(ctx context.Context, page, pageSize int) ([]entity.AdminReminder, int64, error) {
	var items []entity.AdminReminder
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.AdminReminder{})
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

// FindActive lists every active reminder. The sweeper filters due dates
// in memory; the active set is expected to stay small.
func (r *ReminderRepository) FindActive(ctx context.Context) ([]entity.AdminReminder, error) {
	var items []entity.AdminReminder
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Find(&items).Error
	return items, err
}

func (r *ReminderRepository) Create(ctx context.Context, rem *entity.AdminReminder) error {
	return r.db.WithContext(ctx).Create(rem).Error
}

func (r *ReminderRepository) Update(ctx context.Context, rem *entity.AdminReminder) error {
	return r.db.WithContext(ctx).Save(rem).Error
}

func (r *ReminderRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.AdminReminder{}).Error
}
