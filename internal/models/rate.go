package models

import "time"

// RateQuote is one resolved mid-market rate for a currency pair, cached in
// the rates table and broadcast on the dashboard ticker.
type RateQuote struct {
	Pair      string     `db:"pair" json:"pair"`
	Rate      float64    `db:"rate" json:"rate"`
	Source    RateSource `db:"source" json:"source"`
	Caveat    string     `db:"caveat" json:"caveat,omitempty"`
	Spread    float64    `db:"spread" json:"spread"` // indicative retail spread, percent
	AsOf      time.Time  `db:"as_of" json:"as_of"`
	FetchedAt time.Time  `db:"fetched_at" json:"fetched_at"`
}
