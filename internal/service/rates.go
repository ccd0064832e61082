package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"net/http"
	"strings"
	"time"

	"rateguard/internal/models"
	"rateguard/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrUnknownPair means neither the live feed nor the static reference table
// can produce a rate for the requested pair.
var ErrUnknownPair = errors.New("unknown currency pair")

// TickerPairs is the fixed list the dashboard ticker and the ratesync job
// sweep.
var TickerPairs = []string{
	"EUR/USD", "GBP/USD", "USD/JPY", "USD/CHF", "AUD/USD", "USD/CAD",
	"NZD/USD", "EUR/GBP", "EUR/JPY", "GBP/JPY", "USD/CNY", "USD/SGD",
	"USD/MXN",
}

// simulatedBaseRates holds static per-pair base values for the simulated
// fallback. These are plausible magnitudes, not market data.
var simulatedBaseRates = map[string]float64{
	"EUR/USD": 1.0850,
	"GBP/USD": 1.2650,
	"USD/JPY": 149.50,
	"USD/CHF": 0.8840,
	"AUD/USD": 0.6520,
	"USD/CAD": 1.3620,
	"NZD/USD": 0.6010,
	"EUR/GBP": 0.8580,
	"EUR/JPY": 162.20,
	"GBP/JPY": 189.10,
	"USD/CNY": 7.2400,
	"USD/SGD": 1.3430,
	"USD/MXN": 17.1500,
}

// RateResult is a resolved mid-market rate with its provenance.
type RateResult struct {
	Rate      float64           `json:"rate"`
	Source    models.RateSource `json:"source"`
	Caveat    string            `json:"caveat,omitempty"`
	FetchedAt time.Time         `json:"fetched_at"`
}

// RateResolver produces mid-market rates: redis cache, then the live feed,
// then a deterministic simulated fallback.
type RateResolver struct {
	feed       *config.RateFeedConfig
	cache      *redis.Client // nil disables caching
	cacheTTL   time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

func NewRateResolver(feed *config.RateFeedConfig, cache *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *RateResolver {
	return &RateResolver{
		feed:       feed,
		cache:      cache,
		cacheTTL:   cacheTTL,
		httpClient: &http.Client{Timeout: feed.RequestTimeout},
		logger:     logger,
	}
}

// Resolve returns the mid-market rate for a pair on a date. A fresh cache
// hit short-circuits; otherwise the live feed is tried, a stale cache entry
// is used as the next-best answer, and the simulated table is the floor.
func (r *RateResolver) Resolve(ctx context.Context, pair string, date time.Time) (*RateResult, error) {
	pair = NormalizePair(pair)
	if pair == "" || !strings.Contains(pair, "/") {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPair, pair)
	}

	cached := r.cacheLookup(ctx, pair, date)
	if cached != nil && time.Since(cached.FetchedAt) <= r.cacheTTL {
		return cached, nil
	}

	if live, err := r.fetchLive(ctx, pair, date); err == nil {
		r.cacheStore(ctx, pair, date, live)
		return live, nil
	} else if !errors.Is(err, errFeedNotConfigured) {
		r.logger.Warn("Live rate fetch failed, falling back",
			zap.String("pair", pair),
			zap.Error(err),
		)
	}

	if cached != nil {
		stale := *cached
		stale.Source = models.RateSourceStale
		stale.Caveat = "market closed, using last close"
		return &stale, nil
	}

	rate, err := SimulatedRate(pair, date)
	if err != nil {
		return nil, err
	}

	caveat := "simulated rate derived from static reference data, not live market data"
	if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
		caveat = "market closed, using last close (simulated)"
	}

	result := &RateResult{
		Rate:      rate,
		Source:    models.RateSourceSimulated,
		Caveat:    caveat,
		FetchedAt: time.Now(),
	}
	r.cacheStore(ctx, pair, date, result)
	return result, nil
}

var errFeedNotConfigured = errors.New("rate feed not configured")

func (r *RateResolver) fetchLive(ctx context.Context, pair string, date time.Time) (*RateResult, error) {
	if r.feed.APIKey == "" {
		return nil, errFeedNotConfigured
	}

	parts := strings.SplitN(pair, "/", 2)
	url := fmt.Sprintf("%s/%s?base=%s&symbols=%s&access_key=%s",
		r.feed.BaseURL, date.Format("2006-01-02"), parts[0], parts[1], r.feed.APIKey)

	reqCtx, cancel := context.WithTimeout(ctx, r.feed.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rate feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate feed returned status %d", resp.StatusCode)
	}

	var feedResp struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&feedResp); err != nil {
		return nil, fmt.Errorf("failed to decode rate feed response: %w", err)
	}

	rate, ok := feedResp.Rates[parts[1]]
	if !ok || rate <= 0 {
		return nil, fmt.Errorf("rate feed returned no rate for %s", pair)
	}

	return &RateResult{
		Rate:      rate,
		Source:    models.RateSourceLive,
		FetchedAt: time.Now(),
	}, nil
}

// SimulatedRate derives a deterministic pseudo-rate for a pair and date: the
// static base value perturbed by up to ±0.5% from an FNV hash of pair+date.
// Repeated calls for the same pair/date are stable.
func SimulatedRate(pair string, date time.Time) (float64, error) {
	pair = NormalizePair(pair)

	base, err := baseRate(pair)
	if err != nil {
		return 0, err
	}

	h := fnv.New64a()
	h.Write([]byte(pair + date.Format("2006-01-02")))
	// Map the hash onto [-500, 500] basis-point-hundredths: ±0.5%.
	perturbation := float64(int64(h.Sum64()%1001)-500) / 100000.0

	return base * (1 + perturbation), nil
}

// IndicativeSpread estimates the typical retail spread for a pair, in
// percent. Deterministic per pair so the ticker shows stable numbers:
// majors sit near 1%, exotics drift toward 2%.
func IndicativeSpread(pair string) float64 {
	h := fnv.New64a()
	h.Write([]byte(NormalizePair(pair)))
	return 0.8 + float64(h.Sum64()%121)/100.0
}

// BuildRateQuote packages a resolved rate as a ticker quote.
func BuildRateQuote(pair string, result *RateResult) models.RateQuote {
	return models.RateQuote{
		Pair:      NormalizePair(pair),
		Rate:      result.Rate,
		Source:    result.Source,
		Caveat:    result.Caveat,
		Spread:    IndicativeSpread(pair),
		AsOf:      result.FetchedAt,
		FetchedAt: result.FetchedAt,
	}
}

// baseRate resolves a pair against the static table: direct, inverted, or
// crossed through USD.
func baseRate(pair string) (float64, error) {
	if rate, ok := simulatedBaseRates[pair]; ok {
		return rate, nil
	}

	parts := strings.SplitN(pair, "/", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownPair, pair)
	}

	if rate, ok := simulatedBaseRates[parts[1]+"/"+parts[0]]; ok && rate > 0 {
		return 1 / rate, nil
	}

	baseUSD, okBase := usdValue(parts[0])
	quoteUSD, okQuote := usdValue(parts[1])
	if okBase && okQuote && quoteUSD > 0 {
		return baseUSD / quoteUSD, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownPair, pair)
}

// usdValue returns how many USD one unit of the currency is worth, when the
// static table can answer it.
func usdValue(code string) (float64, bool) {
	if code == "USD" {
		return 1, true
	}
	if rate, ok := simulatedBaseRates[code+"/USD"]; ok {
		return rate, true
	}
	if rate, ok := simulatedBaseRates["USD/"+code]; ok && rate > 0 {
		return 1 / rate, true
	}
	return 0, false
}

func (r *RateResolver) cacheKey(pair string, date time.Time) string {
	return "rate:" + pair + ":" + date.Format("2006-01-02")
}

func (r *RateResolver) cacheLookup(ctx context.Context, pair string, date time.Time) *RateResult {
	if r.cache == nil {
		return nil
	}

	data, err := r.cache.Get(ctx, r.cacheKey(pair, date)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("Rate cache lookup failed", zap.Error(err))
		}
		return nil
	}

	var result RateResult
	if err := json.Unmarshal(data, &result); err != nil {
		r.logger.Warn("Rate cache entry corrupt", zap.Error(err))
		return nil
	}
	return &result
}

func (r *RateResolver) cacheStore(ctx context.Context, pair string, date time.Time, result *RateResult) {
	if r.cache == nil {
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	// Entries outlive the freshness TTL so they can serve as "last close".
	if err := r.cache.Set(ctx, r.cacheKey(pair, date), data, 48*time.Hour).Err(); err != nil {
		r.logger.Warn("Rate cache store failed", zap.Error(err))
	}
}
