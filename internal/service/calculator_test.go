package service

import (
	"math"
	"testing"

	"rateguard/internal/models"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestComputeCostSpreadAndMarkup(t *testing.T) {
	// Hero example: 100k at a bank rate 2.7 cents above mid-market.
	out := ComputeCost(CostInput{
		OriginalAmount: 100000,
		BankRate:       1.1120,
		MidMarketRate:  1.0850,
	})

	if !almostEqual(out.SpreadDecimal, 0.0248847926, 1e-9) {
		t.Errorf("Expected spreadDecimal ~0.02488, got %f", out.SpreadDecimal)
	}
	if !almostEqual(out.MarkupCost, 2488.4792627, 1e-4) {
		t.Errorf("Expected markupCost ~2488.48, got %f", out.MarkupCost)
	}
	if out.MarkupCost < 0 {
		t.Error("Expected markupCost to be non-negative")
	}
	if !out.DisputeRecommended {
		t.Errorf("Expected dispute recommendation at %.2f%% spread", out.SpreadPercentage)
	}
	if out.CannotBenchmark {
		t.Error("Expected benchmarkable result")
	}
}

func TestComputeCostFeesOnly(t *testing.T) {
	// Bank rate equal to mid-market: the wire fee is the only hidden cost.
	out := ComputeCost(CostInput{
		OriginalAmount: 50000,
		BankRate:       1.0850,
		MidMarketRate:  1.0850,
		Fees:           []models.FeeItem{{Name: "wire", Amount: 35}},
	})

	if out.SpreadPercentage != 0 {
		t.Errorf("Expected zero spread, got %f", out.SpreadPercentage)
	}
	if out.DisputeRecommended {
		t.Error("Expected no dispute recommendation at zero spread")
	}
	if !almostEqual(out.TotalHiddenCost, 35, 1e-9) {
		t.Errorf("Expected totalHiddenCost 35, got %f", out.TotalHiddenCost)
	}
	if !almostEqual(out.MarkupCost, 0, 1e-9) {
		t.Errorf("Expected zero markup, got %f", out.MarkupCost)
	}
}

func TestComputeCostTotalHiddenCost(t *testing.T) {
	tests := []struct {
		name string
		fees []models.FeeItem
		want float64 // expected fee portion of total hidden cost
	}{
		{"No fees", nil, 0},
		{"Empty fees", []models.FeeItem{}, 0},
		{"Single fee", []models.FeeItem{{Name: "wire", Amount: 25}}, 25},
		{"Multiple fees", []models.FeeItem{{Name: "wire", Amount: 25}, {Name: "handling", Amount: 10.50}}, 35.50},
		{"Negative fee ignored", []models.FeeItem{{Name: "credit", Amount: -5}, {Name: "wire", Amount: 20}}, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ComputeCost(CostInput{
				OriginalAmount: 10000,
				BankRate:       1.10,
				MidMarketRate:  1.08,
				Fees:           tt.fees,
			})
			if !almostEqual(out.TotalHiddenCost, out.MarkupCost+tt.want, 1e-9) {
				t.Errorf("Expected totalHiddenCost = markupCost + %f, got %f (markup %f)",
					tt.want, out.TotalHiddenCost, out.MarkupCost)
			}
			if !almostEqual(out.TotalFees, tt.want, 1e-9) {
				t.Errorf("Expected totalFees %f, got %f", tt.want, out.TotalFees)
			}
		})
	}
}

func TestComputeCostNegativeSpread(t *testing.T) {
	// Bank quoted better than mid-market: signed spread is negative but the
	// markup cost stays non-negative.
	out := ComputeCost(CostInput{
		OriginalAmount: 20000,
		BankRate:       1.0700,
		MidMarketRate:  1.0850,
	})

	if out.SpreadDecimal >= 0 {
		t.Errorf("Expected negative spreadDecimal, got %f", out.SpreadDecimal)
	}
	if out.MarkupCost < 0 {
		t.Errorf("Expected non-negative markupCost, got %f", out.MarkupCost)
	}
	if out.DisputeRecommended {
		t.Error("Expected no dispute recommendation for a favorable rate")
	}
	if out.Benchmark == nil || !out.Benchmark.BetterThanAverage {
		t.Error("Expected better-than-average benchmark for a negative spread")
	}
}

func TestComputeCostZeroMidMarketRate(t *testing.T) {
	out := ComputeCost(CostInput{
		OriginalAmount: 10000,
		BankRate:       1.10,
		MidMarketRate:  0,
		Fees:           []models.FeeItem{{Name: "wire", Amount: 15}},
	})

	if !out.CannotBenchmark {
		t.Error("Expected CannotBenchmark with zero mid-market rate")
	}
	if out.MarkupCost != 0 {
		t.Errorf("Expected zero markup, got %f", out.MarkupCost)
	}
	if out.DisputeRecommended {
		t.Error("Expected no dispute recommendation without a benchmark")
	}
	if !almostEqual(out.TotalHiddenCost, 15, 1e-9) {
		t.Errorf("Expected fees to survive as totalHiddenCost, got %f", out.TotalHiddenCost)
	}
	for _, v := range []float64{out.SpreadDecimal, out.SpreadPercentage, out.MarkupCost, out.TotalHiddenPercentage} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("Expected finite values, got %f", v)
		}
	}
}

func TestComputeCostDisputeThreshold(t *testing.T) {
	tests := []struct {
		name     string
		bankRate float64
		midRate  float64
		want     bool
	}{
		{"Well above threshold", 1.1120, 1.0850, true},
		{"Just below threshold", 1.0900, 1.0850, false},
		{"Equal rates", 1.0850, 1.0850, false},
		{"Negative spread", 1.0700, 1.0850, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ComputeCost(CostInput{
				OriginalAmount: 100000,
				BankRate:       tt.bankRate,
				MidMarketRate:  tt.midRate,
			})
			if out.DisputeRecommended != tt.want {
				t.Errorf("Expected disputeRecommended=%v at %.4f%% spread", tt.want, out.SpreadPercentage)
			}
		})
	}
}

func TestComputeCostBenchmarkAnnualized(t *testing.T) {
	out := ComputeCost(CostInput{
		OriginalAmount: 10000,
		BankRate:       1.10,
		MidMarketRate:  1.05,
		Fees:           []models.FeeItem{{Name: "wire", Amount: 30}},
	})

	if out.Benchmark == nil {
		t.Fatal("Expected benchmark comparison")
	}
	if !almostEqual(out.Benchmark.AnnualizedCost, out.TotalHiddenCost*12, 1e-9) {
		t.Errorf("Expected annualized = 12x total hidden cost, got %f", out.Benchmark.AnnualizedCost)
	}
	if out.Benchmark.BetterThanAverage {
		t.Errorf("Expected worse-than-average at %.2f%% spread", out.SpreadPercentage)
	}
	if !almostEqual(out.Benchmark.DeltaPercentage, out.SpreadPercentage-IndustryAverageSpread, 1e-9) {
		t.Errorf("Expected delta vs industry average, got %f", out.Benchmark.DeltaPercentage)
	}
}
