package entity

import (
	"testing"
	"time"
)

// TestServiceTransitions exercises the lifecycle guard
func TestServiceTransitions(t *testing.T) {
	allowed := [][2]string{
		{ServiceStatusPending, ServiceStatusAssigned},
		{ServiceStatusPending, ServiceStatusScheduled},
		{ServiceStatusPending, ServiceStatusCancelled},
		{ServiceStatusAssigned, ServiceStatusInProgress},
		{ServiceStatusAssigned, ServiceStatusAwaitingOTP},
		{ServiceStatusInProgress, ServiceStatusAwaitingOTP},
		{ServiceStatusAwaitingOTP, ServiceStatusCompleted},
		{ServiceStatusAwaitingOTP, ServiceStatusJobCardPending},
		{ServiceStatusJobCardPending, ServiceStatusCompleted},
	}
	for _, pair := range allowed {
		if !CanTransition(pair[0], pair[1]) {
			t.Errorf("expected %s → %s to be allowed", pair[0], pair[1])
		}
	}

	denied := [][2]string{
		{ServiceStatusPending, ServiceStatusCompleted},
		{ServiceStatusPending, ServiceStatusAwaitingOTP},
		{ServiceStatusCompleted, ServiceStatusCancelled},
		{ServiceStatusCancelled, ServiceStatusPending},
		{ServiceStatusJobCardPending, ServiceStatusAwaitingOTP},
	}
	for _, pair := range denied {
		if CanTransition(pair[0], pair[1]) {
			t.Errorf("expected %s → %s to be denied", pair[0], pair[1])
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	if !IsTerminalStatus(ServiceStatusCompleted) || !IsTerminalStatus(ServiceStatusCancelled) {
		t.Fatal("completed and cancelled are terminal")
	}
	if IsTerminalStatus(ServiceStatusJobCardPending) {
		t.Fatal("job_card_pending is not terminal")
	}
}

// TestJobCardTransitions the repair chain is strictly forward, one step at a time
func TestJobCardTransitions(t *testing.T) {
	chain := []string{
		JobCardStatusPending,
		JobCardStatusGetFromCustomer,
		JobCardStatusReceivedOffice,
		JobCardStatusRepairCompleted,
		JobCardStatusReinstalled,
	}
	for i := 0; i < len(chain)-1; i++ {
		if !CanTransitionJobCard(chain[i], chain[i+1]) {
			t.Errorf("expected %s → %s to be allowed", chain[i], chain[i+1])
		}
	}

	// No skipping, no going back, terminal stays terminal
	if CanTransitionJobCard(JobCardStatusPending, JobCardStatusReceivedOffice) {
		t.Error("skipping a step must be denied")
	}
	if CanTransitionJobCard(JobCardStatusReceivedOffice, JobCardStatusGetFromCustomer) {
		t.Error("moving backwards must be denied")
	}
	if CanTransitionJobCard(JobCardStatusReinstalled, JobCardStatusPending) {
		t.Error("reinstalled is terminal")
	}
}

func TestHasOutstandingOTP(t *testing.T) {
	var svc Service
	if svc.HasOutstandingOTP() {
		t.Fatal("empty service has no challenge")
	}

	exp := time.Now().Add(10 * time.Minute)
	svc.OTPHash = "abc"
	if svc.HasOutstandingOTP() {
		t.Fatal("hash without expiry is not a challenge")
	}
	svc.OTPExpiresAt = &exp
	if !svc.HasOutstandingOTP() {
		t.Fatal("hash plus expiry is a challenge")
	}
}
