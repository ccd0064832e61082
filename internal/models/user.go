package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID  `db:"id"`
	DisplayName    string     `db:"display_name"`
	Email          string     `db:"email"`
	Password       string     `db:"password"`
	OrganizationID *uuid.UUID `db:"organization_id"`
	Country        string     `db:"country"`
	TaxID          string     `db:"tax_id"`
	OnboardingSeen bool       `db:"onboarding_seen"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}
