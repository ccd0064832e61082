package dto

type FeeItemResponse struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type BenchmarkResponse struct {
	IndustryAverageSpread float64 `json:"industry_average_spread"`
	DeltaPercentage       float64 `json:"delta_percentage"`
	BetterThanAverage     bool    `json:"better_than_average"`
	AnnualizedCost        float64 `json:"annualized_cost"`
}

type QuoteResponse struct {
	ID                    string             `json:"id"`
	BankName              string             `json:"bank_name"`
	CurrencyPair          string             `json:"currency_pair"`
	OriginalAmount        float64            `json:"original_amount"`
	BankRate              float64            `json:"bank_rate"`
	MidMarketRate         float64            `json:"mid_market_rate"`
	RateSource            string             `json:"rate_source"`
	RateCaveat            string             `json:"rate_caveat,omitempty"`
	Fees                  []FeeItemResponse  `json:"fees"`
	MarkupCost            float64            `json:"markup_cost"`
	TotalFees             float64            `json:"total_fees"`
	TotalHiddenCost       float64            `json:"total_hidden_cost"`
	SpreadPercentage      float64            `json:"spread_percentage"`
	TotalHiddenPercentage float64            `json:"total_hidden_percentage"`
	DisputeRecommended    bool               `json:"dispute_recommended"`
	CannotBenchmark       bool               `json:"cannot_benchmark"`
	Benchmark             *BenchmarkResponse `json:"benchmark,omitempty"`
	Status                string             `json:"status"`
	Notes                 string             `json:"notes,omitempty"`
	Advisory              string             `json:"advisory,omitempty"`
	CreatedAt             string             `json:"created_at"`
}

type AddNoteRequest struct {
	Note string `json:"note" validate:"required"`
}

type AdvanceStatusResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}
