package models

import (
	"time"

	"github.com/google/uuid"
)

type AuditAction string

const (
	AuditQuoteCreated    AuditAction = "quote_created"
	AuditStatusAdvanced  AuditAction = "status_advanced"
	AuditNoteAdded       AuditAction = "note_added"
	AuditPlanUpgraded    AuditAction = "plan_upgraded"
	AuditCreditDecrement AuditAction = "credit_decrement"
	AuditCreditFailure   AuditAction = "credit_decrement_failed"
)

type AuditEntry struct {
	ID             uuid.UUID   `db:"id"`
	OrganizationID uuid.UUID   `db:"organization_id"`
	UserID         uuid.UUID   `db:"user_id"`
	Action         AuditAction `db:"action"`
	Detail         string      `db:"detail"`
	CreatedAt      time.Time   `db:"created_at"`
}
