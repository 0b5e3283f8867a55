package service

import (
	"context"
	"fmt"

	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/entity"
	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/repository"
	userrepo "github.com/Kishor404/VST-Maarketing-CRM-System/internal/user/repository"
	"github.com/google/uuid"
)

// AMCService manages annual maintenance contracts for industrial
// customers' machines. Admin-only throughout.
type AMCService struct {
	repos *repository.Repositories
	users *userrepo.UserRepository
	audit *Auditor
}

func NewAMCService(repos *repository.Repositories, users *userrepo.UserRepository, audit *Auditor) *AMCService {
	return &AMCService{repos: repos, users: users, audit: audit}
}

// CreateAMCRequest is the contract payload.
type CreateAMCRequest struct {
	CardID       string   `json:"card_id" binding:"required"`
	AMCStartDate string   `json:"amc_start_date" binding:"required"`
	AMCEndDate   string   `json:"amc_end_date" binding:"required"`
	Amount       *float64 `json:"amount"`
	Notes        string   `json:"notes"`
}

func (s *AMCService) Create(ctx context.Context, actor Actor, req *CreateAMCRequest) (*entity.IndustrialAMC, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: AMC management is admin-only", ErrForbidden)
	}
	card, err := s.repos.Card.FindByID(ctx, req.CardID)
	if err != nil {
		return nil, err
	}
	customer, err := s.users.FindByID(ctx, card.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("%w: card customer %s not found", ErrValidation, card.CustomerID)
	}
	if !customer.IsIndustrial {
		return nil, fmt.Errorf("%w: AMC contracts require an industrial customer", ErrValidation)
	}

	start, err := parseDatePtr(&req.AMCStartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDatePtr(&req.AMCEndDate)
	if err != nil {
		return nil, err
	}
	if start == nil || end == nil {
		return nil, fmt.Errorf("%w: invalid AMC dates", ErrValidation)
	}
	if end.Before(*start) {
		return nil, fmt.Errorf("%w: AMC end precedes start", ErrValidation)
	}

	amc := &entity.IndustrialAMC{
		ID:           uuid.New().String()[:32],
		CardID:       card.ID,
		AMCStartDate: start,
		AMCEndDate:   end,
		Amount:       req.Amount,
		Notes:        req.Notes,
		CreatedByID:  actor.ID,
	}
	if err := s.repos.IndustrialAMC.Create(ctx, amc); err != nil {
		return nil, err
	}

	// The card mirrors its newest contract window.
	card.AMCStartDate = start
	card.AMCEndDate = end
	if err := s.repos.Card.Update(ctx, card); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.ID, "amc.create", "industrial_amc", amc.ID,
		map[string]interface{}{"card_id": card.ID})
	return amc, nil
}

func (s *AMCService) ListByCard(ctx context.Context, actor Actor, cardID string) ([]entity.IndustrialAMC, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: AMC management is admin-only", ErrForbidden)
	}
	return s.repos.IndustrialAMC.FindByCard(ctx, cardID)
}

func (s *AMCService) Delete(ctx context.Context, actor Actor, id string) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: AMC management is admin-only", ErrForbidden)
	}
	if _, err := s.repos.IndustrialAMC.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.repos.IndustrialAMC.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, actor.ID, "amc.delete", "industrial_amc", id, nil)
	return nil
}
