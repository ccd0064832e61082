package models

import (
	"time"

	"github.com/google/uuid"
)

type QuoteStatus string

const (
	StatusUploaded QuoteStatus = "uploaded"
	StatusAnalyzed QuoteStatus = "analyzed"
	StatusReviewed QuoteStatus = "reviewed"
	StatusApproved QuoteStatus = "approved"
)

type RateSource string

const (
	RateSourceLive      RateSource = "live"
	RateSourceSimulated RateSource = "simulated"
	RateSourceStale     RateSource = "stale"
)

// FeeItem is one itemized fee extracted from a wire confirmation.
type FeeItem struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// Quote is one audited transaction. Created on successful extraction and
// calculation, mutated by workflow transitions and note additions, never
// deleted.
type Quote struct {
	ID                    uuid.UUID   `db:"id"`
	OrganizationID        uuid.UUID   `db:"organization_id"`
	UserID                uuid.UUID   `db:"user_id"`
	BankName              string      `db:"bank_name"`
	CurrencyPair          string      `db:"currency_pair"`
	OriginalAmount        float64     `db:"original_amount"`
	BankRate              float64     `db:"bank_rate"`
	MidMarketRate         float64     `db:"mid_market_rate"`
	RateSource            RateSource  `db:"rate_source"`
	RateCaveat            string      `db:"rate_caveat"`
	Fees                  []FeeItem   `db:"fees"`
	MarkupCost            float64     `db:"markup_cost"`
	TotalFees             float64     `db:"total_fees"`
	TotalHiddenCost       float64     `db:"total_hidden_cost"`
	SpreadPercentage      float64     `db:"spread_percentage"`
	TotalHiddenPercentage float64     `db:"total_hidden_percentage"`
	DisputeRecommended    bool        `db:"dispute_recommended"`
	CannotBenchmark       bool        `db:"cannot_benchmark"`
	Status                QuoteStatus `db:"status"`
	Notes                 string      `db:"notes"`
	Advisory              string      `db:"advisory"`
	CreatedAt             time.Time   `db:"created_at"`
	UpdatedAt             time.Time   `db:"updated_at"`
}
