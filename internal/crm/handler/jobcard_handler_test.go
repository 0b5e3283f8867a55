package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/entity"
	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/testutil"
)

// seedJobCardScenario creates a service parked in job_card_pending with
// the given number of job cards, all handled by the worker.
func seedJobCardScenario(t *testing.T, env *testutil.TestEnv, workerID, customerID, cardID, status string, count int) (serviceID string, jobCardIDs []string) {
	t.Helper()

	serviceID = "svc-jc-0001"
	svc := &entity.Service{
		ID:            serviceID,
		CardID:        cardID,
		RequestedByID: customerID,
		ServiceType:   entity.ServiceTypeNormal,
		Status:        entity.ServiceStatusJobCardPending,
		AssignedToID:  &workerID,
		CreatedByID:   customerID,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := env.DB.Create(svc).Error; err != nil {
		t.Fatalf("Failed to seed service: %v", err)
	}

	entry := &entity.ServiceEntry{
		ID:            "entry-jc-0001",
		ServiceID:     serviceID,
		PerformedByID: &workerID,
		VisitType:     entity.VisitTypeComplaint,
		WorkDetail:    "parts removed for repair",
		CreatedAt:     time.Now(),
	}
	if err := env.DB.Create(entry).Error; err != nil {
		t.Fatalf("Failed to seed entry: %v", err)
	}

	for i := 0; i < count; i++ {
		jc := &entity.JobCard{
			ID:             fmt.Sprintf("jc-%04d", i+1),
			ServiceID:      serviceID,
			ServiceEntryID: entry.ID,
			CustomerID:     customerID,
			PartName:       fmt.Sprintf("part-%d", i+1),
			StaffID:        &workerID,
			Status:         status,
			CreatedAt:      time.Now(),
			UpdatedAt:      time.Now(),
		}
		if err := env.DB.Create(jc).Error; err != nil {
			t.Fatalf("Failed to seed job card: %v", err)
		}
		jobCardIDs = append(jobCardIDs, jc.ID)
	}
	return serviceID, jobCardIDs
}

// TestJobCardAdvanceChain the repair chain only moves one step forward
// at a time, and the final step is reserved for OTP verification.
func TestJobCardAdvanceChain(t *testing.T) {
	env, _ := setupCRMTest(t)
	customerID, workerID, cardID := seedBookingActors(t, env)
	_, jcIDs := seedJobCardScenario(t, env, workerID, customerID, cardID, entity.JobCardStatusPending, 1)
	jcID := jcIDs[0]

	adminToken := testutil.AdminToken()

	// Skipping a step is rejected
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/crm/jobcards/"+jcID+"/advance",
		map[string]interface{}{"status": entity.JobCardStatusReceivedOffice}, adminToken)
	if w.Code == http.StatusOK {
		t.Fatal("expected skipping a step to fail")
	}

	steps := []string{
		entity.JobCardStatusGetFromCustomer,
		entity.JobCardStatusReceivedOffice,
		entity.JobCardStatusRepairCompleted,
	}
	for _, step := range steps {
		w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/crm/jobcards/"+jcID+"/advance",
			map[string]interface{}{"status": step}, adminToken)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 advancing to %s, got %d: %s", step, w.Code, w.Body.String())
		}
		if testutil.ParseResponse(w)["data"].(map[string]interface{})["status"] != step {
			t.Fatalf("expected status %s after advance", step)
		}
	}

	// Timestamps were stamped along the way
	var jc entity.JobCard
	env.DB.Where("id = ?", jcID).First(&jc)
	if jc.GetFromCustomerAt == nil || jc.ReceivedOfficeAt == nil || jc.RepairCompletedAt == nil {
		t.Fatal("expected step timestamps to be set")
	}

	// reinstalled cannot be reached through advance
	w2 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/crm/jobcards/"+jcID+"/advance",
		map[string]interface{}{"status": entity.JobCardStatusReinstalled}, adminToken)
	if w2.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 advancing to reinstalled, got %d: %s", w2.Code, w2.Body.String())
	}
}

// TestJobCardAdvanceAdminOnly even the handling staff cannot advance
// the repair chain; only reinstall belongs to the field worker.
func TestJobCardAdvanceAdminOnly(t *testing.T) {
	env, _ := setupCRMTest(t)
	customerID, workerID, cardID := seedBookingActors(t, env)
	_, jcIDs := seedJobCardScenario(t, env, workerID, customerID, cardID, entity.JobCardStatusPending, 1)

	workerToken := testutil.WorkerToken(workerID, "tenkasi")
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/crm/jobcards/"+jcIDs[0]+"/advance",
		map[string]interface{}{"status": entity.JobCardStatusGetFromCustomer}, workerToken)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d: %s", w.Code, w.Body.String())
	}
}

// TestReinstallRollUp the parent service completes only after the last
// job card is verified reinstalled.
func TestReinstallRollUp(t *testing.T) {
	env, _ := setupCRMTest(t)
	customerID, workerID, cardID := seedBookingActors(t, env)
	serviceID, jcIDs := seedJobCardScenario(t, env, workerID, customerID, cardID, entity.JobCardStatusRepairCompleted, 2)

	workerToken := testutil.WorkerToken(workerID, "tenkasi")

	reinstall := func(jcID string) {
		t.Helper()
		w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/crm/jobcards/"+jcID+"/request-reinstall-otp",
			map[string]interface{}{"phone": "+919876500001"}, workerToken)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 for reinstall OTP, got %d: %s", w.Code, w.Body.String())
		}
		code := testutil.ParseResponse(w)["data"].(map[string]interface{})["otp"].(string)

		w2 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/crm/jobcards/"+jcID+"/verify-reinstall",
			map[string]interface{}{"otp": code}, workerToken)
		if w2.Code != http.StatusOK {
			t.Fatalf("expected 200 for verify-reinstall, got %d: %s", w2.Code, w2.Body.String())
		}
	}

	// First card reinstalled: parent stays parked
	reinstall(jcIDs[0])

	var svc entity.Service
	env.DB.Where("id = ?", serviceID).First(&svc)
	if svc.Status != entity.ServiceStatusJobCardPending {
		t.Fatalf("expected job_card_pending with one card open, got %s", svc.Status)
	}
	if svc.NextServiceDate != nil {
		t.Fatal("next_service_date must not be set with a card still open")
	}

	// Last card reinstalled: parent completes
	reinstall(jcIDs[1])

	env.DB.Where("id = ?", serviceID).First(&svc)
	if svc.Status != entity.ServiceStatusCompleted {
		t.Fatalf("expected completed after last reinstall, got %s", svc.Status)
	}
	if svc.NextServiceDate == nil {
		t.Fatal("expected next_service_date on completion")
	}
	if svc.OTPHash != "" || svc.OTPExpiresAt != nil {
		t.Fatal("expected OTP fields cleared after roll-up")
	}

	var jc entity.JobCard
	env.DB.Where("id = ?", jcIDs[1]).First(&jc)
	if jc.Status != entity.JobCardStatusReinstalled || jc.ReinstalledAt == nil {
		t.Fatalf("expected reinstalled with timestamp, got %s", jc.Status)
	}
}

// TestConcurrentReinstallVerify two verifications racing on the same
// challenge: the row lock on the parent service lets exactly one
// succeed, and the parent completes exactly once.
func TestConcurrentReinstallVerify(t *testing.T) {
	env, _ := setupCRMTest(t)
	customerID, workerID, cardID := seedBookingActors(t, env)
	serviceID, jcIDs := seedJobCardScenario(t, env, workerID, customerID, cardID, entity.JobCardStatusRepairCompleted, 1)
	jcID := jcIDs[0]

	workerToken := testutil.WorkerToken(workerID, "tenkasi")
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/crm/jobcards/"+jcID+"/request-reinstall-otp",
		map[string]interface{}{"phone": "+919876500001"}, workerToken)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for reinstall OTP, got %d: %s", w.Code, w.Body.String())
	}
	code := testutil.ParseResponse(w)["data"].(map[string]interface{})["otp"].(string)

	results := make([]*httptest.ResponseRecorder, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/crm/jobcards/"+jcID+"/verify-reinstall",
				map[string]interface{}{"otp": code}, workerToken)
		}(i)
	}
	wg.Wait()

	var successes, failures int
	for _, r := range results {
		switch {
		case r.Code == http.StatusOK:
			successes++
		case r.Code == http.StatusBadRequest || r.Code == http.StatusConflict:
			// Loser re-reads the challenge cleared (40010) or the card
			// already reinstalled (40900).
			failures++
		default:
			t.Fatalf("unexpected status %d: %s", r.Code, r.Body.String())
		}
	}
	if successes != 1 || failures != 1 {
		t.Fatalf("expected exactly one winner, got %d successes and %d failures", successes, failures)
	}

	var jc entity.JobCard
	env.DB.Where("id = ?", jcID).First(&jc)
	if jc.Status != entity.JobCardStatusReinstalled {
		t.Fatalf("expected reinstalled, got %s", jc.Status)
	}

	var svc entity.Service
	env.DB.Where("id = ?", serviceID).First(&svc)
	if svc.Status != entity.ServiceStatusCompleted {
		t.Fatalf("expected completed exactly once, got %s", svc.Status)
	}
	if svc.NextServiceDate == nil {
		t.Fatal("expected next_service_date on completion")
	}
	if svc.OTPHash != "" || svc.OTPExpiresAt != nil {
		t.Fatal("expected the challenge cleared after the roll-up")
	}
}

// TestReinstallBeforeRepairCompleted the reinstall challenge is only
// available once the part is back from repair.
func TestReinstallBeforeRepairCompleted(t *testing.T) {
	env, _ := setupCRMTest(t)
	customerID, workerID, cardID := seedBookingActors(t, env)
	_, jcIDs := seedJobCardScenario(t, env, workerID, customerID, cardID, entity.JobCardStatusReceivedOffice, 1)

	workerToken := testutil.WorkerToken(workerID, "tenkasi")
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/crm/jobcards/"+jcIDs[0]+"/request-reinstall-otp",
		map[string]interface{}{"phone": "+919876500001"}, workerToken)
	if w.Code == http.StatusOK {
		t.Fatalf("expected reinstall OTP before repair_completed to fail, got %d", w.Code)
	}
}

// TestReinstallExpiredOTP an expired reinstall challenge leaves both the
// card and the parent service untouched.
func TestReinstallExpiredOTP(t *testing.T) {
	env, _ := setupCRMTest(t)
	customerID, workerID, cardID := seedBookingActors(t, env)
	serviceID, jcIDs := seedJobCardScenario(t, env, workerID, customerID, cardID, entity.JobCardStatusRepairCompleted, 1)

	workerToken := testutil.WorkerToken(workerID, "tenkasi")
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/crm/jobcards/"+jcIDs[0]+"/request-reinstall-otp",
		map[string]interface{}{"phone": "+919876500001"}, workerToken)
	code := testutil.ParseResponse(w)["data"].(map[string]interface{})["otp"].(string)

	past := time.Now().Add(-time.Minute)
	env.DB.Model(&entity.Service{}).Where("id = ?", serviceID).Update("otp_expires_at", past)

	w2 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/crm/jobcards/"+jcIDs[0]+"/verify-reinstall",
		map[string]interface{}{"otp": code}, workerToken)
	if w2.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for expired reinstall OTP, got %d: %s", w2.Code, w2.Body.String())
	}
	if testutil.ParseResponse(w2)["code"].(float64) != 40010 {
		t.Fatalf("expected code 40010, got %s", w2.Body.String())
	}

	var jc entity.JobCard
	env.DB.Where("id = ?", jcIDs[0]).First(&jc)
	if jc.Status != entity.JobCardStatusRepairCompleted {
		t.Fatalf("expected repair_completed unchanged, got %s", jc.Status)
	}
	var svc entity.Service
	env.DB.Where("id = ?", serviceID).First(&svc)
	if svc.Status != entity.ServiceStatusJobCardPending {
		t.Fatalf("expected job_card_pending unchanged, got %s", svc.Status)
	}
}
