package repository

import (
	"context"
	"errors"

	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/entity"
	"gorm.io/gorm"
)

type CardRepository struct {
	db *gorm.DB
}

func NewCardRepository(db *gorm.DB) *CardRepository {
	return &CardRepository{db: db}
}

// FindAll lists cards with optional filters, newest first.
func (r *CardRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Card, int64, error) {
	var items []entity.Card
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Card{})

	if search := filters["search"]; search != "" {
		query = query.Where("model ILIKE ? OR customer_name ILIKE ? OR city ILIKE ?",
			"%"+search+"%", "%"+search+"%", "%"+search+"%")
	}
	if region := filters["region"]; region != "" {
		query = query.Where("region = ?", region)
	}
	if cardType := filters["card_type"]; cardType != "" {
		query = query.Where("card_type = ?", cardType)
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

func (r *CardRepository) FindByID(ctx context.Context, id string) (*entity.Card, error) {
	var card entity.Card
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&card).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &card, nil
}

// FindByCustomer lists every card registered to a customer.
func (r *CardRepository) FindByCustomer(ctx context.Context, customerID string) ([]entity.Card, error) {
	var cards []entity.Card
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&cards).Error
	return cards, err
}

// FindByRegion lists every card in a region.
func (r *CardRepository) FindByRegion(ctx context.Context, region string) ([]entity.Card, error) {
	var cards []entity.Card
	err := r.db.WithContext(ctx).
		Where("region = ?", region).
		Order("created_at DESC").
		Find(&cards).Error
	return cards, err
}

// FindWarrantyCards lists cards that participate in compliance
// reporting: both warranty dates set and not the other-machine class.
func (r *CardRepository) FindWarrantyCards(ctx context.Context) ([]entity.Card, error) {
	var cards []entity.Card
	err := r.db.WithContext(ctx).
		Where("card_type <> ?", entity.CardTypeOtherMachine).
		Where("warranty_start_date IS NOT NULL AND warranty_end_date IS NOT NULL").
		Order("region ASC, customer_name ASC").
		Find(&cards).Error
	return cards, err
}

func (r *CardRepository) Create(ctx context.Context, card *entity.Card) error {
	return r.db.WithContext(ctx).Create(card).Error
}

func (r *CardRepository) Update(ctx context.Context, card *entity.Card) error {
	return r.db.WithContext(ctx).Save(card).Error
}

func (r *CardRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Card{}).Error
}

// CountActiveServices counts non-terminal services attached to a card.
// Used to refuse deleting a card that still has work in flight.
func (r *CardRepository) CountActiveServices(ctx context.Context, cardID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Service{}).
		Where("card_id = ? AND status NOT IN ?", cardID,
			[]string{entity.ServiceStatusCompleted, entity.ServiceStatusCancelled}).
		Count(&count).Error
	return count, err
}
