package repository

import (
	"context"

	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/entity"
	"gorm.io/gorm"
)

type AuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

func (r *AuditLogRepository) Create(ctx context.Context, log *entity.AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// FindAll lists audit entries newest first, optionally filtered by object.
func (r *AuditLogRepository) FindAll(ctx context.Context, page, pageSize int, objectType, objectID string) ([]entity.AuditLog, int64, error) {
	var items []entity.AuditLog
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.AuditLog{})
	if objectType != "" {
		query = query.Where("object_type = ?", objectType)
	}
	if objectID != "" {
		query = query.Where("object_id = ?", objectID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("timestamp DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}
