package dto

type OnboardingRequest struct {
	DisplayName string `json:"display_name" validate:"required"`
	Country     string `json:"country" validate:"required"`
	TaxID       string `json:"tax_id"`
}

type ProfileResponse struct {
	ID             string `json:"id"`
	DisplayName    string `json:"display_name"`
	Email          string `json:"email"`
	OrganizationID string `json:"organization_id,omitempty"`
	Country        string `json:"country,omitempty"`
	TaxID          string `json:"tax_id,omitempty"`
	OnboardingSeen bool   `json:"onboarding_seen"`
	CreatedAt      string `json:"created_at"`
}
