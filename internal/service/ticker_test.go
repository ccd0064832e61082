package service

import (
	"testing"
	"time"

	"rateguard/internal/models"

	"go.uber.org/zap"
)

func tickerQuote(pair string, rate float64) models.RateQuote {
	return models.RateQuote{
		Pair:      pair,
		Rate:      rate,
		Source:    models.RateSourceSimulated,
		FetchedAt: time.Now(),
	}
}

func TestTickerHubDeliversUpdates(t *testing.T) {
	hub := NewTickerHub(zap.NewNop())
	ch, unsubscribe := hub.Subscribe()
	defer unsubscribe()

	hub.Publish(tickerQuote("EUR/USD", 1.0850))

	select {
	case quote := <-ch:
		if quote.Pair != "EUR/USD" || quote.Rate != 1.0850 {
			t.Errorf("Unexpected quote %+v", quote)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected an update, got none")
	}
}

func TestTickerHubSnapshotOnSubscribe(t *testing.T) {
	hub := NewTickerHub(zap.NewNop())
	hub.Publish(tickerQuote("EUR/USD", 1.0850))
	hub.Publish(tickerQuote("GBP/USD", 1.2650))

	ch, unsubscribe := hub.Subscribe()
	defer unsubscribe()

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case quote := <-ch:
			seen[quote.Pair] = true
		case <-time.After(time.Second):
			t.Fatal("Expected snapshot delivery")
		}
	}
	if !seen["EUR/USD"] || !seen["GBP/USD"] {
		t.Errorf("Expected snapshot for both pairs, got %v", seen)
	}
}

func TestTickerHubUnsubscribe(t *testing.T) {
	hub := NewTickerHub(zap.NewNop())
	ch, unsubscribe := hub.Subscribe()

	unsubscribe()
	if hub.SubscriberCount() != 0 {
		t.Errorf("Expected no subscribers, got %d", hub.SubscriberCount())
	}

	// Channel is closed; publishing afterwards must not deliver or panic.
	hub.Publish(tickerQuote("EUR/USD", 1.0850))
	if _, ok := <-ch; ok {
		t.Error("Expected closed channel after unsubscribe")
	}

	// Double unsubscribe is a no-op.
	unsubscribe()
}

func TestTickerHubLatestWinsPerPair(t *testing.T) {
	hub := NewTickerHub(zap.NewNop())
	hub.Publish(tickerQuote("EUR/USD", 1.0850))
	hub.Publish(tickerQuote("EUR/USD", 1.0862))

	snapshot := hub.Snapshot()
	if len(snapshot) != 1 {
		t.Fatalf("Expected one pair in snapshot, got %d", len(snapshot))
	}
	if snapshot[0].Rate != 1.0862 {
		t.Errorf("Expected latest rate 1.0862, got %f", snapshot[0].Rate)
	}
}
