package handlers

import (
	"errors"
	"time"

	"rateguard/internal/dto"
	"rateguard/internal/models"
	"rateguard/internal/repository"
	"rateguard/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type RateHandler struct {
	resolver *service.RateResolver
	rateRepo *repository.RateRepository
	hub      *service.TickerHub
	logger   *zap.Logger
}

func NewRateHandler(resolver *service.RateResolver, rateRepo *repository.RateRepository, hub *service.TickerHub, logger *zap.Logger) *RateHandler {
	return &RateHandler{
		resolver: resolver,
		rateRepo: rateRepo,
		hub:      hub,
		logger:   logger,
	}
}

// ResolveRate godoc
// @Summary Resolve a mid-market rate
// @Description Resolve the mid-market rate for a pair on a date (cache, live feed, then simulated)
// @Tags rates
// @Produce json
// @Param pair query string true "Currency pair, e.g. EUR/USD"
// @Param date query string false "Value date, YYYY-MM-DD (defaults to today)"
// @Security Bearer
// @Success 200 {object} dto.ResolveRateResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/v1/rates [get]
func (h *RateHandler) ResolveRate(c *fiber.Ctx) error {
	if _, err := getUserID(c); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	pair := c.Query("pair")
	if pair == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Pair is required",
		})
	}

	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Date must be YYYY-MM-DD",
			})
		}
		date = parsed
	}

	result, err := h.resolver.Resolve(c.Context(), pair, date)
	if err != nil {
		if errors.Is(err, service.ErrUnknownPair) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unknown currency pair",
			})
		}
		h.logger.Error("Failed to resolve rate", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to resolve rate",
		})
	}

	return c.JSON(dto.ResolveRateResponse{
		Pair:   service.NormalizePair(pair),
		Date:   date.Format("2006-01-02"),
		Rate:   result.Rate,
		Source: string(result.Source),
		Caveat: result.Caveat,
	})
}

// ListRates godoc
// @Summary List ticker rates
// @Description Latest stored rate per ticker pair; falls back to the in-memory ticker snapshot
// @Tags rates
// @Produce json
// @Security Bearer
// @Success 200 {array} dto.RateQuoteResponse
// @Failure 401 {object} map[string]string
// @Router /api/v1/rates/ticker [get]
func (h *RateHandler) ListRates(c *fiber.Ctx) error {
	if _, err := getUserID(c); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	stored, err := h.rateRepo.List(c.Context())
	if err != nil {
		h.logger.Warn("Failed to list stored rates, using ticker snapshot", zap.Error(err))
	}

	quotes := make([]models.RateQuote, 0, len(service.TickerPairs))
	if len(stored) > 0 {
		for _, quote := range stored {
			quotes = append(quotes, *quote)
		}
	} else {
		quotes = append(quotes, h.hub.Snapshot()...)
	}

	resp := make([]dto.RateQuoteResponse, 0, len(quotes))
	for _, quote := range quotes {
		resp = append(resp, buildRateQuoteResponse(quote))
	}
	return c.JSON(resp)
}

func buildRateQuoteResponse(quote models.RateQuote) dto.RateQuoteResponse {
	return dto.RateQuoteResponse{
		Pair:      quote.Pair,
		Rate:      quote.Rate,
		Source:    string(quote.Source),
		Caveat:    quote.Caveat,
		Spread:    quote.Spread,
		AsOf:      quote.AsOf.Format("2006-01-02"),
		FetchedAt: quote.FetchedAt.Format(time.RFC3339),
	}
}
