package service

import (
	"math"

	"rateguard/internal/models"
)

// IndustryAverageSpread is the assumed industry-average retail spread, in
// percent, used for the benchmark comparison.
const IndustryAverageSpread = 2.5

// DisputeSpreadThreshold is the spread percentage above which a dispute is
// recommended.
const DisputeSpreadThreshold = 1.0

// CostInput is everything the calculator needs: the extracted transaction
// plus the resolved mid-market reference rate.
type CostInput struct {
	OriginalAmount float64
	BankRate       float64
	MidMarketRate  float64
	Fees           []models.FeeItem
}

// BenchmarkComparison reports how the transaction's spread compares to the
// assumed industry average, and what the same transaction would cost
// annualized at a monthly recurrence.
type BenchmarkComparison struct {
	IndustryAverageSpread float64
	DeltaPercentage       float64 // spread minus industry average; negative is better
	BetterThanAverage     bool
	AnnualizedCost        float64
}

type CostBreakdown struct {
	SpreadDecimal         float64
	SpreadPercentage      float64
	MarkupCost            float64
	TotalFees             float64
	TotalHiddenCost       float64
	TotalHiddenPercentage float64
	DisputeRecommended    bool
	// CannotBenchmark is set when the mid-market rate is missing or invalid;
	// markup and spread are reported as zero instead of dividing by zero.
	CannotBenchmark bool
	Benchmark       *BenchmarkComparison
}

// ComputeCost turns an extracted transaction and a mid-market rate into a
// deterministic cost breakdown. Pure function, no side effects.
func ComputeCost(in CostInput) CostBreakdown {
	out := CostBreakdown{
		TotalFees: sumFees(in.Fees),
	}

	if in.MidMarketRate <= 0 || in.OriginalAmount <= 0 || in.BankRate <= 0 {
		// Fail closed: no spread math without a usable reference rate.
		out.CannotBenchmark = true
		out.TotalHiddenCost = out.TotalFees
		if in.OriginalAmount > 0 {
			out.TotalHiddenPercentage = out.TotalHiddenCost / in.OriginalAmount * 100
		}
		return out
	}

	out.SpreadDecimal = (in.BankRate - in.MidMarketRate) / in.MidMarketRate
	out.SpreadPercentage = out.SpreadDecimal * 100
	out.MarkupCost = in.OriginalAmount * math.Abs(out.SpreadDecimal)
	out.TotalHiddenCost = out.MarkupCost + out.TotalFees
	out.TotalHiddenPercentage = out.TotalHiddenCost / in.OriginalAmount * 100
	out.DisputeRecommended = out.SpreadPercentage > DisputeSpreadThreshold

	out.Benchmark = &BenchmarkComparison{
		IndustryAverageSpread: IndustryAverageSpread,
		DeltaPercentage:       out.SpreadPercentage - IndustryAverageSpread,
		BetterThanAverage:     out.SpreadPercentage < IndustryAverageSpread,
		AnnualizedCost:        out.TotalHiddenCost * 12,
	}

	return out
}

func sumFees(fees []models.FeeItem) float64 {
	var total float64
	for _, fee := range fees {
		if fee.Amount > 0 {
			total += fee.Amount
		}
	}
	return total
}
