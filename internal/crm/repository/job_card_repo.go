package repository

import (
	"context"
	"errors"

	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/entity"
	"gorm.io/gorm"
)

type JobCardRepository struct {
	db *gorm.DB
}

func NewJobCardRepository(db *gorm.DB) *JobCardRepository {
	return &JobCardRepository{db: db}
}

// FindAll lists job cards with optional filters, newest first.
func (r *JobCardRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.JobCard, int64, error) {
	var items []entity.JobCard
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.JobCard{})

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if serviceID := filters["service_id"]; serviceID != "" {
		query = query.Where("service_id = ?", serviceID)
	}
	if staffID := filters["staff_id"]; staffID != "" {
		query = query.Where("staff_id = ?", staffID)
	}
	if customerID := filters["customer_id"]; customerID != "" {
		query = query.Where("customer_id = ?", customerID)
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

func (r *JobCardRepository) FindByID(ctx context.Context, id string) (*entity.JobCard, error) {
	var jc entity.JobCard
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&jc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &jc, nil
}

// FindByService lists every job card raised under a service.
func (r *JobCardRepository) FindByService(ctx context.Context, serviceID string) ([]entity.JobCard, error) {
	var cards []entity.JobCard
	err := r.db.WithContext(ctx).
		Where("service_id = ?", serviceID).
		Order("created_at ASC").
		Find(&cards).Error
	return cards, err
}

// CountUnreinstalled counts job cards on the service that have not yet
// reached reinstalled. Called inside the reinstall transaction with the
// parent service row locked, so the count is stable.
func (r *JobCardRepository) CountUnreinstalled(ctx context.Context, tx *gorm.DB, serviceID string) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&entity.JobCard{}).
		Where("service_id = ? AND status <> ?", serviceID, entity.JobCardStatusReinstalled).
		Count(&count).Error
	return count, err
}

func (r *JobCardRepository) Create(ctx context.Context, jc *entity.JobCard) error {
	return r.db.WithContext(ctx).Create(jc).Error
}

// CreateTx persists a job card inside an open transaction.
func (r *JobCardRepository) CreateTx(ctx context.Context, tx *gorm.DB, jc *entity.JobCard) error {
	return tx.WithContext(ctx).Create(jc).Error
}

func (r *JobCardRepository) Update(ctx context.Context, jc *entity.JobCard) error {
	return r.db.WithContext(ctx).Save(jc).Error
}

// UpdateTx persists a job card inside an open transaction.
func (r *JobCardRepository) UpdateTx(ctx context.Context, tx *gorm.DB, jc *entity.JobCard) error {
	return tx.WithContext(ctx).Save(jc).Error
}
