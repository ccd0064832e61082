package dto

// CompleteCheckoutRequest carries the approval callback from the hosted
// checkout widget.
type CompleteCheckoutRequest struct {
	SubscriptionID string `json:"subscription_id" validate:"required"`
}

type PlanResponse struct {
	Plan           string `json:"plan"`
	SeatCap        int    `json:"seat_cap"`
	CreditBalance  int    `json:"credit_balance"`
	SubscriptionID string `json:"subscription_id,omitempty"`
	// CheckoutClientID lets the dashboard mount the hosted checkout widget.
	CheckoutClientID string `json:"checkout_client_id,omitempty"`
}
