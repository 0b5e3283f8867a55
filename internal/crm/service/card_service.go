package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/entity"
	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/repository"
	userentity "github.com/Kishor404/VST-Maarketing-CRM-System/internal/user/entity"
	"github.com/google/uuid"
)

// CardService manages customer machine cards.
type CardService struct {
	repos               *repository.Repositories
	allowCustomerCreate bool
	audit               *Auditor
}

func NewCardService(repos *repository.Repositories, allowCustomerCreate bool, audit *Auditor) *CardService {
	return &CardService{repos: repos, allowCustomerCreate: allowCustomerCreate, audit: audit}
}

// CreateCardRequest is the card registration payload.
type CreateCardRequest struct {
	Model              string  `json:"model" binding:"required"`
	CustomerID         string  `json:"customer_id"`
	CustomerName       string  `json:"customer_name"`
	CardType           string  `json:"card_type"`
	Region             string  `json:"region" binding:"required"`
	Address            string  `json:"address"`
	City               string  `json:"city"`
	PostalCode         string  `json:"postal_code"`
	DateOfInstallation *string `json:"date_of_installation"`
	WarrantyStartDate  *string `json:"warranty_start_date"`
	WarrantyEndDate    *string `json:"warranty_end_date"`
	AMCStartDate       *string `json:"amc_start_date"`
	AMCEndDate         *string `json:"amc_end_date"`
}

// UpdateCardRequest carries partial card edits; nil fields are untouched.
type UpdateCardRequest struct {
	Model             *string `json:"model"`
	CustomerName      *string `json:"customer_name"`
	CardType          *string `json:"card_type"`
	Region            *string `json:"region"`
	Address           *string `json:"address"`
	City              *string `json:"city"`
	PostalCode        *string `json:"postal_code"`
	WarrantyStartDate *string `json:"warranty_start_date"`
	WarrantyEndDate   *string `json:"warranty_end_date"`
	AMCStartDate      *string `json:"amc_start_date"`
	AMCEndDate        *string `json:"amc_end_date"`
}

// List returns cards visible to the actor: admins see everything,
// workers their region, customers their own cards.
func (s *CardService) List(ctx context.Context, actor Actor, page, pageSize int, filters map[string]string) ([]entity.Card, int64, error) {
	if filters == nil {
		filters = map[string]string{}
	}
	switch {
	case actor.IsAdmin():
		// unrestricted
	case actor.IsWorker():
		filters["region"] = actor.Region
	default:
		filters["customer_id"] = actor.ID
	}
	return s.repos.Card.FindAll(ctx, page, pageSize, filters)
}

func (s *CardService) Get(ctx context.Context, actor Actor, id string) (*entity.Card, error) {
	card, err := s.repos.Card.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanViewCard(card) {
		return nil, fmt.Errorf("%w: card not visible to caller", ErrForbidden)
	}
	return card, nil
}

// Create registers a card. Customers may self-register only when the
// deployment enables it, and only under their own identity.
func (s *CardService) Create(ctx context.Context, actor Actor, req *CreateCardRequest) (*entity.Card, error) {
	if !actor.IsAdmin() {
		if !s.allowCustomerCreate || !actor.IsCustomer() {
			return nil, fmt.Errorf("%w: card creation is admin-only", ErrForbidden)
		}
		req.CustomerID = actor.ID
	}
	if req.CustomerID == "" {
		return nil, fmt.Errorf("%w: customer_id is required", ErrValidation)
	}
	if !userentity.ValidRegion(req.Region) {
		return nil, fmt.Errorf("%w: unknown region %q", ErrValidation, req.Region)
	}

	cardType := req.CardType
	if cardType == "" {
		cardType = entity.CardTypeNormal
	}
	if cardType != entity.CardTypeNormal && cardType != entity.CardTypeOtherMachine {
		return nil, fmt.Errorf("%w: unknown card type %q", ErrValidation, cardType)
	}

	card := &entity.Card{
		ID:           uuid.New().String()[:32],
		Model:        req.Model,
		CustomerID:   req.CustomerID,
		CustomerName: req.CustomerName,
		CardType:     cardType,
		Region:       req.Region,
		Address:      req.Address,
		City:         req.City,
		PostalCode:   req.PostalCode,
	}
	var err error
	if card.DateOfInstallation, err = parseDatePtr(req.DateOfInstallation); err != nil {
		return nil, err
	}
	if card.WarrantyStartDate, err = parseDatePtr(req.WarrantyStartDate); err != nil {
		return nil, err
	}
	if card.WarrantyEndDate, err = parseDatePtr(req.WarrantyEndDate); err != nil {
		return nil, err
	}
	if card.AMCStartDate, err = parseDatePtr(req.AMCStartDate); err != nil {
		return nil, err
	}
	if card.AMCEndDate, err = parseDatePtr(req.AMCEndDate); err != nil {
		return nil, err
	}

	if card.WarrantyStartDate != nil && card.WarrantyEndDate != nil &&
		card.WarrantyEndDate.Before(*card.WarrantyStartDate) {
		return nil, fmt.Errorf("%w: warranty end precedes start", ErrValidation)
	}

	if err := s.repos.Card.Create(ctx, card); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.ID, "card.create", "card", card.ID, nil)
	return card, nil
}

// Update edits card fields. Admin-only: coverage windows feed compliance
// reporting and customers must not rewrite them.
func (s *CardService) Update(ctx context.Context, actor Actor, id string, req *UpdateCardRequest) (*entity.Card, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: card update is admin-only", ErrForbidden)
	}
	card, err := s.repos.Card.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Model != nil {
		card.Model = *req.Model
	}
	if req.CustomerName != nil {
		card.CustomerName = *req.CustomerName
	}
	if req.CardType != nil {
		if *req.CardType != entity.CardTypeNormal && *req.CardType != entity.CardTypeOtherMachine {
			return nil, fmt.Errorf("%w: unknown card type %q", ErrValidation, *req.CardType)
		}
		card.CardType = *req.CardType
	}
	if req.Region != nil {
		if !userentity.ValidRegion(*req.Region) {
			return nil, fmt.Errorf("%w: unknown region %q", ErrValidation, *req.Region)
		}
		card.Region = *req.Region
	}
	if req.Address != nil {
		card.Address = *req.Address
	}
	if req.City != nil {
		card.City = *req.City
	}
	if req.PostalCode != nil {
		card.PostalCode = *req.PostalCode
	}
	if req.WarrantyStartDate != nil {
		if card.WarrantyStartDate, err = parseDatePtr(req.WarrantyStartDate); err != nil {
			return nil, err
		}
	}
	if req.WarrantyEndDate != nil {
		if card.WarrantyEndDate, err = parseDatePtr(req.WarrantyEndDate); err != nil {
			return nil, err
		}
	}
	if req.AMCStartDate != nil {
		if card.AMCStartDate, err = parseDatePtr(req.AMCStartDate); err != nil {
			return nil, err
		}
	}
	if req.AMCEndDate != nil {
		if card.AMCEndDate, err = parseDatePtr(req.AMCEndDate); err != nil {
			return nil, err
		}
	}

	if err := s.repos.Card.Update(ctx, card); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.ID, "card.update", "card", card.ID, nil)
	return card, nil
}

// Delete removes a card. Refused while any non-terminal service still
// references it.
func (s *CardService) Delete(ctx context.Context, actor Actor, id string) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: card deletion is admin-only", ErrForbidden)
	}
	if _, err := s.repos.Card.FindByID(ctx, id); err != nil {
		return err
	}

	active, err := s.repos.Card.CountActiveServices(ctx, id)
	if err != nil {
		return err
	}
	if active > 0 {
		return fmt.Errorf("%w: card has %d unresolved services", ErrConflict, active)
	}

	if err := s.repos.Card.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, actor.ID, "card.delete", "card", id, nil)
	return nil
}

// parseDatePtr parses an optional YYYY-MM-DD string. Absent or empty
// values yield nil; a malformed value is a validation error so callers
// reject the request instead of silently dropping the field.
func parseDatePtr(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", ErrValidation, *s)
	}
	return &t, nil
}
