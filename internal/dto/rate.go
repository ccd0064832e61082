package dto

type RateQuoteResponse struct {
	Pair      string  `json:"pair"`
	Rate      float64 `json:"rate"`
	Source    string  `json:"source"`
	Caveat    string  `json:"caveat,omitempty"`
	Spread    float64 `json:"spread"`
	AsOf      string  `json:"as_of"`
	FetchedAt string  `json:"fetched_at"`
}

type ResolveRateResponse struct {
	Pair   string  `json:"pair"`
	Date   string  `json:"date"`
	Rate   float64 `json:"rate"`
	Source string  `json:"source"`
	Caveat string  `json:"caveat,omitempty"`
}
