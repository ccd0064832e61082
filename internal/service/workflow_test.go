package service

import (
	"testing"

	"rateguard/internal/models"
)

func TestNextStatusCycle(t *testing.T) {
	// Four successive advances from uploaded return to uploaded.
	status := models.StatusUploaded
	seen := []models.QuoteStatus{}
	for i := 0; i < 4; i++ {
		seen = append(seen, status)
		status = NextStatus(status)
	}

	if status != models.StatusUploaded {
		t.Errorf("Expected to return to uploaded after 4 advances, got %s", status)
	}

	expected := []models.QuoteStatus{
		models.StatusUploaded,
		models.StatusAnalyzed,
		models.StatusReviewed,
		models.StatusApproved,
	}
	for i, want := range expected {
		if seen[i] != want {
			t.Errorf("Expected state %d to be %s, got %s", i, want, seen[i])
		}
	}
}

func TestNextStatusTransitions(t *testing.T) {
	tests := []struct {
		from models.QuoteStatus
		to   models.QuoteStatus
	}{
		{models.StatusUploaded, models.StatusAnalyzed},
		{models.StatusAnalyzed, models.StatusReviewed},
		{models.StatusReviewed, models.StatusApproved},
		{models.StatusApproved, models.StatusUploaded},
		{models.QuoteStatus("bogus"), models.StatusUploaded},
	}

	for _, tt := range tests {
		if got := NextStatus(tt.from); got != tt.to {
			t.Errorf("NextStatus(%s): expected %s, got %s", tt.from, tt.to, got)
		}
	}
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range []models.QuoteStatus{
		models.StatusUploaded, models.StatusAnalyzed, models.StatusReviewed, models.StatusApproved,
	} {
		if !IsValidStatus(s) {
			t.Errorf("Expected %s to be valid", s)
		}
	}
	if IsValidStatus(models.QuoteStatus("flagged")) {
		t.Error("Expected unknown status to be invalid")
	}
}
