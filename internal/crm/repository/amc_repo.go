package repository

import (
	"context"
	"errors"

	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/entity"
	"gorm.io/gorm"
)

type IndustrialAMCRepository struct {
	db *gorm.DB
}

func NewIndustrialAMCRepository(db *gorm.DB) *IndustrialAMCRepository {
	return &IndustrialAMCRepository{db: db}
}

func (r *IndustrialAMCRepository) FindByID(ctx context.Context, id string) (*entity.IndustrialAMC, error) {
	var amc entity.IndustrialAMC
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&amc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &amc, nil
}

// FindByCard lists AMC records for a card, newest contract first.
func (r *IndustrialAMCRepository) FindByCard(ctx context.Context, cardID string) ([]entity.IndustrialAMC, error) {
	var items []entity.IndustrialAMC
	err := r.db.WithContext(ctx).
		Where("card_id = ?", cardID).
		Order("amc_start_date DESC").
		Find(&items).Error
	return items, err
}

func (r *IndustrialAMCRepository) Create(ctx context.Context, amc *entity.IndustrialAMC) error {
	return r.db.WithContext(ctx).Create(amc).Error
}

func (r *IndustrialAMCRepository) Update(ctx context.Context, amc *entity.IndustrialAMC) error {
	return r.db.WithContext(ctx).Save(amc).Error
}

func (r *IndustrialAMCRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.IndustrialAMC{}).Error
}
