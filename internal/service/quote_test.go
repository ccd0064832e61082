package service

import (
	"math"
	"testing"
	"time"

	"rateguard/internal/models"
)

func TestParseValueDate(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"2026-03-15", "2026-03-15"},
		{"15.03.2026", "2026-03-15"},
		{"03/15/2026", "2026-03-15"},
		{"15 March 2026", "2026-03-15"},
		{"Mar 15, 2026", "2026-03-15"},
	}

	for _, tt := range tests {
		got := parseValueDate(tt.raw)
		if got.Format("2006-01-02") != tt.want {
			t.Errorf("parseValueDate(%q): expected %s, got %s", tt.raw, tt.want, got.Format("2006-01-02"))
		}
	}
}

func TestParseValueDateFallsBackToToday(t *testing.T) {
	for _, raw := range []string{"", "soon", "31-31-9999"} {
		got := parseValueDate(raw)
		if time.Since(got) > time.Minute {
			t.Errorf("parseValueDate(%q): expected roughly now, got %v", raw, got)
		}
	}
}

func TestRecomputeBenchmark(t *testing.T) {
	quote := &models.Quote{
		SpreadPercentage: 2.488,
		TotalHiddenCost:  2513.48,
	}

	b := recomputeBenchmark(quote)
	if b == nil {
		t.Fatal("Expected benchmark, got nil")
	}
	if math.Abs(b.DeltaPercentage-(2.488-IndustryAverageSpread)) > 1e-9 {
		t.Errorf("Expected delta %v, got %v", 2.488-IndustryAverageSpread, b.DeltaPercentage)
	}
	if !b.BetterThanAverage {
		t.Error("Expected spread below the industry average to be better than average")
	}
	if math.Abs(b.AnnualizedCost-2513.48*12) > 1e-9 {
		t.Errorf("Expected annualized cost %v, got %v", 2513.48*12, b.AnnualizedCost)
	}
}

func TestRecomputeBenchmarkSkipsUnbenchmarkable(t *testing.T) {
	quote := &models.Quote{CannotBenchmark: true}
	if b := recomputeBenchmark(quote); b != nil {
		t.Errorf("Expected nil benchmark, got %+v", b)
	}
}

func TestIndicativeSpreadStableAndBounded(t *testing.T) {
	for _, pair := range TickerPairs {
		first := IndicativeSpread(pair)
		second := IndicativeSpread(pair)
		if first != second {
			t.Errorf("IndicativeSpread(%q) not deterministic: %v vs %v", pair, first, second)
		}
		if first < 0.8 || first > 2.0 {
			t.Errorf("IndicativeSpread(%q) = %v, expected within [0.8, 2.0]", pair, first)
		}
	}
}

func TestBuildRateQuote(t *testing.T) {
	fetched := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	result := &RateResult{
		Rate:      1.0851,
		Source:    models.RateSourceLive,
		FetchedAt: fetched,
	}

	quote := BuildRateQuote("eur-usd", result)
	if quote.Pair != "EUR/USD" {
		t.Errorf("Expected normalized pair EUR/USD, got %q", quote.Pair)
	}
	if quote.Rate != 1.0851 {
		t.Errorf("Expected rate 1.0851, got %v", quote.Rate)
	}
	if quote.Source != models.RateSourceLive {
		t.Errorf("Expected live source, got %q", quote.Source)
	}
	if !quote.AsOf.Equal(fetched) || !quote.FetchedAt.Equal(fetched) {
		t.Errorf("Expected timestamps %v, got as_of=%v fetched=%v", fetched, quote.AsOf, quote.FetchedAt)
	}
}
