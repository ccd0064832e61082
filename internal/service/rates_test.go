package service

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestSimulatedRateDeterministic(t *testing.T) {
	date := time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC)

	first, err := SimulatedRate("EUR/USD", date)
	if err != nil {
		t.Fatalf("Expected rate, got %v", err)
	}
	second, err := SimulatedRate("EUR/USD", date)
	if err != nil {
		t.Fatalf("Expected rate, got %v", err)
	}
	if first != second {
		t.Errorf("Expected stable rate for same pair/date, got %f and %f", first, second)
	}

	// Time of day must not matter, only the date.
	later, _ := SimulatedRate("EUR/USD", date.Add(5*time.Hour))
	if later != first {
		t.Errorf("Expected intra-day stability, got %f vs %f", later, first)
	}
}

func TestSimulatedRateVariesByDate(t *testing.T) {
	d1 := time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC)

	r1, _ := SimulatedRate("GBP/USD", d1)
	r2, _ := SimulatedRate("GBP/USD", d2)
	if r1 == r2 {
		t.Errorf("Expected different rates across dates, got %f twice", r1)
	}
}

func TestSimulatedRatePerturbationBound(t *testing.T) {
	base := 1.0850 // static EUR/USD base
	for day := 1; day <= 28; day++ {
		date := time.Date(2026, 8, day, 0, 0, 0, 0, time.UTC)
		rate, err := SimulatedRate("EUR/USD", date)
		if err != nil {
			t.Fatalf("Expected rate, got %v", err)
		}
		deviation := math.Abs(rate-base) / base
		if deviation > 0.005 {
			t.Errorf("Day %d: deviation %.4f exceeds 0.5%%", day, deviation)
		}
	}
}

func TestSimulatedRateAllTickerPairs(t *testing.T) {
	date := time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC)
	for _, pair := range TickerPairs {
		rate, err := SimulatedRate(pair, date)
		if err != nil {
			t.Errorf("Expected rate for ticker pair %s, got %v", pair, err)
		}
		if rate <= 0 {
			t.Errorf("Expected positive rate for %s, got %f", pair, rate)
		}
	}
}

func TestSimulatedRateInverseAndCross(t *testing.T) {
	date := time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC)

	// USD/EUR is the inverse of the tabled EUR/USD.
	inverse, err := SimulatedRate("USD/EUR", date)
	if err != nil {
		t.Fatalf("Expected inverse rate, got %v", err)
	}
	if inverse < 0.8 || inverse > 1.0 {
		t.Errorf("Expected USD/EUR near 0.92, got %f", inverse)
	}

	// CAD/JPY is only reachable by crossing through USD.
	cross, err := SimulatedRate("CAD/JPY", date)
	if err != nil {
		t.Fatalf("Expected cross rate, got %v", err)
	}
	expected := (1 / 1.3620) * 149.50 // v(CAD)/v(JPY) from the base table
	if math.Abs(cross-expected)/expected > 0.006 {
		t.Errorf("Expected CAD/JPY near %f, got %f", expected, cross)
	}
}

func TestSimulatedRateUnknownPair(t *testing.T) {
	date := time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC)
	if _, err := SimulatedRate("XXX/YYY", date); !errors.Is(err, ErrUnknownPair) {
		t.Errorf("Expected ErrUnknownPair, got %v", err)
	}
}
