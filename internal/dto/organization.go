package dto

type CreateOrganizationRequest struct {
	Name string `json:"name" validate:"required"`
}

type AddMemberRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type AuditEntryResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Action    string `json:"action"`
	Detail    string `json:"detail,omitempty"`
	CreatedAt string `json:"created_at"`
}

type OrganizationResponse struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	AdminID       string   `json:"admin_id"`
	MemberIDs     []string `json:"member_ids"`
	Plan          string   `json:"plan"`
	SeatCap       int      `json:"seat_cap"`
	CreditBalance int      `json:"credit_balance"`
	CreatedAt     string   `json:"created_at"`
}
