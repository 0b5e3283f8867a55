package service

import (
	"testing"
	"time"

	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/entity"
	"github.com/stretchr/testify/require"
)

func warrantyCard(start, end time.Time) *entity.Card {
	return &entity.Card{
		ID:                "card1",
		CardType:          entity.CardTypeNormal,
		WarrantyStartDate: &start,
		WarrantyEndDate:   &end,
	}
}

func TestEligibilityNoWarrantyWindow(t *testing.T) {
	res := EvaluateFreeEligibility(&entity.Card{ID: "card1"}, date(2024, time.February, 1), nil)
	require.False(t, res.Eligible)
	require.Equal(t, ReasonNoWarranty, res.Reason)
}

func TestEligibilityOutsideWarranty(t *testing.T) {
	card := warrantyCard(date(2024, time.January, 1), date(2024, time.December, 31))

	before := EvaluateFreeEligibility(card, date(2023, time.December, 31), nil)
	require.Equal(t, ReasonOutsideWarranty, before.Reason)

	after := EvaluateFreeEligibility(card, date(2025, time.January, 1), nil)
	require.Equal(t, ReasonOutsideWarranty, after.Reason)

	// Window bounds are inclusive.
	onStart := EvaluateFreeEligibility(card, date(2024, time.January, 1), nil)
	require.True(t, onStart.Eligible)
	onEnd := EvaluateFreeEligibility(card, date(2024, time.December, 31), nil)
	require.True(t, onEnd.Eligible)
}

func TestEligibilityIgnoresCardType(t *testing.T) {
	// Only the warranty window and cooldown matter. An other-machine
	// card that does carry warranty dates still qualifies.
	card := warrantyCard(date(2024, time.January, 1), date(2024, time.December, 31))
	card.CardType = entity.CardTypeOtherMachine

	res := EvaluateFreeEligibility(card, date(2024, time.June, 1), nil)
	require.True(t, res.Eligible)
	require.Equal(t, ReasonEligible, res.Reason)
}

func TestEligibilityNoPriorFreeService(t *testing.T) {
	card := warrantyCard(date(2024, time.January, 1), date(2024, time.December, 31))
	res := EvaluateFreeEligibility(card, date(2024, time.February, 1), nil)
	require.True(t, res.Eligible)
	require.Equal(t, ReasonEligible, res.Reason)
}

func TestEligibilityCooldown(t *testing.T) {
	card := warrantyCard(date(2024, time.January, 1), date(2024, time.December, 31))
	lastFree := date(2024, time.February, 1)

	// Day before the three-month mark: still cooling down.
	blocked := EvaluateFreeEligibility(card, date(2024, time.April, 30), &lastFree)
	require.False(t, blocked.Eligible)
	require.Equal(t, ReasonCooldown, blocked.Reason)
	require.Equal(t, date(2024, time.May, 1), *blocked.NextFreeDate)

	// Exactly three calendar months on: eligible again.
	allowed := EvaluateFreeEligibility(card, date(2024, time.May, 1), &lastFree)
	require.True(t, allowed.Eligible)
}

func TestEligibilityCooldownMonthEndClamping(t *testing.T) {
	card := warrantyCard(date(2024, time.January, 1), date(2024, time.December, 31))

	// Jan 31 + 3 months clamps to Apr 30, so Apr 30 is the first
	// eligible day, not May 1.
	lastFree := date(2024, time.January, 31)
	res := EvaluateFreeEligibility(card, date(2024, time.April, 30), &lastFree)
	require.True(t, res.Eligible)

	blocked := EvaluateFreeEligibility(card, date(2024, time.April, 29), &lastFree)
	require.False(t, blocked.Eligible)
	require.Equal(t, date(2024, time.April, 30), *blocked.NextFreeDate)
}
