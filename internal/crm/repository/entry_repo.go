package repository

import (
	"context"
	"errors"

	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/entity"
	"gorm.io/gorm"
)

type EntryRepository struct {
	db *gorm.DB
}

func NewEntryRepository(db *gorm.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

func (r *EntryRepository) FindByID(ctx context.Context, id string) (*entity.ServiceEntry, error) {
	var entry entity.ServiceEntry
	err := r.db.WithContext(ctx).
		Preload("JobCards").
		Where("id = ?", id).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindByService lists the entries logged against a service, oldest first.
func (r *EntryRepository) FindByService(ctx context.Context, serviceID string) ([]entity.ServiceEntry, error) {
	var entries []entity.ServiceEntry
	err := r.db.WithContext(ctx).
		Where("service_id = ?", serviceID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

func (r *EntryRepository) Create(ctx context.Context, entry *entity.ServiceEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// CreateTx persists an entry inside an open transaction.
func (r *EntryRepository) CreateTx(ctx context.Context, tx *gorm.DB, entry *entity.ServiceEntry) error {
	return tx.WithContext(ctx).Create(entry).Error
}
