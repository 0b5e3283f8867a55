package handler

import (
	"net/http"
	"testing"

	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/entity"
	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/testutil"
	userentity "github.com/Kishor404/VST-Maarketing-CRM-System/internal/user/entity"
)

// TestAMCCreateRequiresIndustrialCustomer contracts attach only to cards
// whose customer is flagged industrial.
func TestAMCCreateRequiresIndustrialCustomer(t *testing.T) {
	env, _ := setupCRMTest(t)
	adminToken := testutil.AdminToken()

	testutil.SeedTestUser(t, env.DB, "cust-mill", "Mill Owner", "+919876500021", "customer", "tenkasi")
	env.DB.Model(&userentity.User{}).Where("id = ?", "cust-mill").Update("is_industrial", true)
	testutil.SeedTestCard(t, env.DB, "card-mill", "cust-mill", "tenkasi")

	testutil.SeedTestUser(t, env.DB, "cust-home", "Home Owner", "+919876500022", "customer", "tenkasi")
	testutil.SeedTestCard(t, env.DB, "card-home", "cust-home", "tenkasi")

	payload := func(cardID string) map[string]interface{} {
		return map[string]interface{}{
			"card_id":        cardID,
			"amc_start_date": "2026-09-01",
			"amc_end_date":   "2027-08-31",
		}
	}

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/crm/amc", payload("card-mill"), adminToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 for industrial customer, got %d: %s", w.Code, w.Body.String())
	}

	w2 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/crm/amc", payload("card-home"), adminToken)
	if w2.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-industrial customer, got %d: %s", w2.Code, w2.Body.String())
	}
	if testutil.ParseResponse(w2)["code"].(float64) != 40000 {
		t.Fatalf("expected code 40000, got %s", w2.Body.String())
	}

	var contracts int64
	env.DB.Model(&entity.IndustrialAMC{}).Count(&contracts)
	if contracts != 1 {
		t.Fatalf("expected exactly one contract, got %d", contracts)
	}

	// Only the industrial card mirrors the contract window.
	var card entity.Card
	env.DB.Where("id = ?", "card-home").First(&card)
	if card.AMCStartDate != nil || card.AMCEndDate != nil {
		t.Fatal("rejected contract must not touch the card's AMC window")
	}
}
