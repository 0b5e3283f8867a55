package service

import (
	"context"
	"errors"
	"time"

	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/entity"
	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/repository"
)

// Eligibility reason codes.
const (
	ReasonEligible        = "eligible"
	ReasonNoWarranty      = "no_warranty_window"
	ReasonOutsideWarranty = "outside_warranty"
	ReasonCooldown        = "cooldown_active"
)

// EligibilityResult is the free-visit decision for one booking date.
type EligibilityResult struct {
	Eligible     bool       `json:"eligible"`
	Reason       string     `json:"reason"`
	LastFreeDate *time.Time `json:"last_free_date,omitempty"`
	NextFreeDate *time.Time `json:"next_free_date,omitempty"`
}

// FreeCooldownMonths is the minimum calendar gap between free visits.
const FreeCooldownMonths = 3

// EvaluateFreeEligibility is the pure decision: a booking date qualifies
// as a free visit when it falls inside the warranty window and at least
// three calendar months have passed since the last free visit.
// lastFree is nil when the card has no prior free-service history.
func EvaluateFreeEligibility(card *entity.Card, bookingDate time.Time, lastFree *time.Time) EligibilityResult {
	if !card.HasWarrantyWindow() {
		return EligibilityResult{Reason: ReasonNoWarranty}
	}

	day := dateOnly(bookingDate)
	if day.Before(dateOnly(*card.WarrantyStartDate)) || day.After(dateOnly(*card.WarrantyEndDate)) {
		return EligibilityResult{Reason: ReasonOutsideWarranty}
	}

	if lastFree == nil {
		return EligibilityResult{Eligible: true, Reason: ReasonEligible}
	}

	last := dateOnly(*lastFree)
	nextFree := AddMonths(last, FreeCooldownMonths)
	if day.Before(nextFree) {
		return EligibilityResult{
			Reason:       ReasonCooldown,
			LastFreeDate: &last,
			NextFreeDate: &nextFree,
		}
	}
	return EligibilityResult{Eligible: true, Reason: ReasonEligible, LastFreeDate: &last}
}

// EligibilityService resolves the free-service history for a card and
// applies the pure decision.
type EligibilityService struct {
	services *repository.ServiceRepository
	entries  *repository.EntryRepository
}

func NewEligibilityService(services *repository.ServiceRepository, entries *repository.EntryRepository) *EligibilityService {
	return &EligibilityService{services: services, entries: entries}
}

// LastFreeServiceDate finds the most recent free-visit completion on a
// card. A logged work-entry timestamp is preferred over the completion
// timestamp derived from the service row.
func (s *EligibilityService) LastFreeServiceDate(ctx context.Context, cardID string) (*time.Time, error) {
	svc, err := s.services.FindLastCompletedFree(ctx, cardID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	completedAt := svc.UpdatedAt
	entries, err := s.entries.FindByService(ctx, svc.ID)
	if err != nil {
		return nil, err
	}
	if len(entries) > 0 {
		completedAt = entries[len(entries)-1].CreatedAt
	}
	return &completedAt, nil
}

// Evaluate decides free eligibility for a booking date on a card.
func (s *EligibilityService) Evaluate(ctx context.Context, card *entity.Card, bookingDate time.Time) (EligibilityResult, error) {
	lastFree, err := s.LastFreeServiceDate(ctx, card.ID)
	if err != nil {
		return EligibilityResult{}, err
	}
	return EvaluateFreeEligibility(card, bookingDate, lastFree), nil
}
