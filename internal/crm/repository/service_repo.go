package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ServiceRepository struct {
	db *gorm.DB
}

func NewServiceRepository(db *gorm.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

// FindAll lists services with optional filters, newest first.
func (r *ServiceRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Service, int64, error) {
	var items []entity.Service
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Service{})

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if cardID := filters["card_id"]; cardID != "" {
		query = query.Where("card_id = ?", cardID)
	}
	if assignedTo := filters["assigned_to"]; assignedTo != "" {
		query = query.Where("assigned_to_id = ?", assignedTo)
	}
	if requestedBy := filters["requested_by"]; requestedBy != "" {
		query = query.Where("requested_by_id = ?", requestedBy)
	}
	if serviceType := filters["service_type"]; serviceType != "" {
		query = query.Where("service_type = ?", serviceType)
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

func (r *ServiceRepository) FindByID(ctx context.Context, id string) (*entity.Service, error) {
	var svc entity.Service
	err := r.db.WithContext(ctx).
		Preload("Entries").
		Where("id = ?", id).
		First(&svc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &svc, nil
}

// FindByIDForUpdate loads a service with a row lock. Must run inside a
// transaction; tx is the transaction handle, not the shared *gorm.DB.
func (r *ServiceRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*entity.Service, error) {
	var svc entity.Service
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&svc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &svc, nil
}

// FindByCard lists every service against a card, oldest first.
func (r *ServiceRepository) FindByCard(ctx context.Context, cardID string) ([]entity.Service, error) {
	var services []entity.Service
	err := r.db.WithContext(ctx).
		Where("card_id = ?", cardID).
		Order("created_at ASC").
		Find(&services).Error
	return services, err
}

// FindActiveByCard lists the non-terminal services against a card.
func (r *ServiceRepository) FindActiveByCard(ctx context.Context, cardID string) ([]entity.Service, error) {
	var services []entity.Service
	err := r.db.WithContext(ctx).
		Where("card_id = ? AND status NOT IN ?", cardID,
			[]string{entity.ServiceStatusCompleted, entity.ServiceStatusCancelled}).
		Order("created_at ASC").
		Find(&services).Error
	return services, err
}

// FindLastCompletedFree returns the most recent completed free service on
// a card, or ErrNotFound when there is none.
func (r *ServiceRepository) FindLastCompletedFree(ctx context.Context, cardID string) (*entity.Service, error) {
	var svc entity.Service
	err := r.db.WithContext(ctx).
		Where("card_id = ? AND service_type = ? AND status = ?",
			cardID, entity.ServiceTypeFree, entity.ServiceStatusCompleted).
		Order("updated_at DESC").
		First(&svc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &svc, nil
}

// FindScheduledBetween lists services scheduled inside [from, to).
func (r *ServiceRepository) FindScheduledBetween(ctx context.Context, from, to time.Time) ([]entity.Service, error) {
	var services []entity.Service
	err := r.db.WithContext(ctx).
		Where("scheduled_at >= ? AND scheduled_at < ?", from, to).
		Where("status NOT IN ?", []string{entity.ServiceStatusCompleted, entity.ServiceStatusCancelled}).
		Order("scheduled_at ASC").
		Find(&services).Error
	return services, err
}

func (r *ServiceRepository) Create(ctx context.Context, svc *entity.Service) error {
	return r.db.WithContext(ctx).Create(svc).Error
}

func (r *ServiceRepository) Update(ctx context.Context, svc *entity.Service) error {
	return r.db.WithContext(ctx).Save(svc).Error
}

// UpdateTx persists a service inside an open transaction.
func (r *ServiceRepository) UpdateTx(ctx context.Context, tx *gorm.DB, svc *entity.Service) error {
	return tx.WithContext(ctx).Save(svc).Error
}

// Transaction runs fn inside a database transaction.
func (r *ServiceRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}
