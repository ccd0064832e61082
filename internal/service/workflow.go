package service

import "rateguard/internal/models"

// statusCycle is the manual review workflow. Advancing from the last state
// wraps back to the first; there is no approval gate beyond clicking through.
var statusCycle = []models.QuoteStatus{
	models.StatusUploaded,
	models.StatusAnalyzed,
	models.StatusReviewed,
	models.StatusApproved,
}

// NextStatus returns the workflow state following s. Unknown states reset to
// uploaded.
func NextStatus(s models.QuoteStatus) models.QuoteStatus {
	for i, status := range statusCycle {
		if status == s {
			return statusCycle[(i+1)%len(statusCycle)]
		}
	}
	return models.StatusUploaded
}

// IsValidStatus reports whether s is one of the workflow states.
func IsValidStatus(s models.QuoteStatus) bool {
	for _, status := range statusCycle {
		if status == s {
			return true
		}
	}
	return false
}
