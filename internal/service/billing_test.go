package service

import (
	"testing"

	"rateguard/internal/models"

	"github.com/google/uuid"
)

func TestBuildPlanResponseCarriesCheckoutClientID(t *testing.T) {
	org := &models.Organization{
		ID:            uuid.New(),
		Plan:          models.PlanFree,
		SeatCap:       models.FreeSeatCap,
		CreditBalance: models.FreeCreditGrant,
	}

	resp := buildPlanResponse(org, "cw_live_1234")
	if resp.CheckoutClientID != "cw_live_1234" {
		t.Errorf("Expected checkout client id in plan response, got %q", resp.CheckoutClientID)
	}
	if resp.Plan != string(models.PlanFree) || resp.SeatCap != models.FreeSeatCap {
		t.Errorf("Unexpected plan response %+v", resp)
	}
}

func TestBuildPlanResponseOmitsEmptySubscription(t *testing.T) {
	org := &models.Organization{
		ID:      uuid.New(),
		Plan:    models.PlanEnterprise,
		SeatCap: models.SeatCapFor(models.PlanEnterprise),
	}

	resp := buildPlanResponse(org, "")
	if resp.SubscriptionID != "" || resp.CheckoutClientID != "" {
		t.Errorf("Expected empty optional fields, got %+v", resp)
	}
	if resp.Plan != string(models.PlanEnterprise) {
		t.Errorf("Expected enterprise plan, got %s", resp.Plan)
	}
}
