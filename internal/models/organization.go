package models

import (
	"time"

	"github.com/google/uuid"
)

type Plan string

const (
	PlanFree       Plan = "free"
	PlanEnterprise Plan = "enterprise"
)

// Seat caps and the free-tier credit grant per plan.
const (
	FreeSeatCap       = 3
	EnterpriseSeatCap = 50
	FreeCreditGrant   = 10
)

type Organization struct {
	ID             uuid.UUID   `db:"id"`
	Name           string      `db:"name"`
	AdminID        uuid.UUID   `db:"admin_id"`
	MemberIDs      []uuid.UUID `db:"member_ids"`
	Plan           Plan        `db:"plan"`
	SeatCap        int         `db:"seat_cap"`
	CreditBalance  int         `db:"credit_balance"`
	SubscriptionID string      `db:"subscription_id"`
	CreatedAt      time.Time   `db:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at"`
}

// SeatCapFor returns the member ceiling for a plan.
func SeatCapFor(plan Plan) int {
	if plan == PlanEnterprise {
		return EnterpriseSeatCap
	}
	return FreeSeatCap
}
