package handlers

import (
	"errors"

	"rateguard/internal/dto"
	"rateguard/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type BillingHandler struct {
	billingService *service.BillingService
	logger         *zap.Logger
}

func NewBillingHandler(billingService *service.BillingService, logger *zap.Logger) *BillingHandler {
	return &BillingHandler{
		billingService: billingService,
		logger:         logger,
	}
}

// CompleteCheckout godoc
// @Summary Complete a checkout
// @Description Finalize the hosted-checkout callback and upgrade the organization to enterprise
// @Tags billing
// @Accept json
// @Produce json
// @Param request body dto.CompleteCheckoutRequest true "Checkout callback"
// @Security Bearer
// @Success 200 {object} dto.PlanResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /api/v1/billing/checkout/complete [post]
func (h *BillingHandler) CompleteCheckout(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var req dto.CompleteCheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	resp, err := h.billingService.CompleteCheckout(c.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSubscription):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Subscription ID is required",
			})
		case errors.Is(err, service.ErrNotOrganizationAdmin):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Only the organization admin can complete checkout",
			})
		case errors.Is(err, service.ErrOrganizationNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Organization not found",
			})
		}
		h.logger.Error("Failed to complete checkout", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to complete checkout",
		})
	}

	return c.JSON(resp)
}

// GetPlan godoc
// @Summary Get current plan
// @Description Get the organization's plan, seat cap and remaining credits
// @Tags billing
// @Produce json
// @Security Bearer
// @Success 200 {object} dto.PlanResponse
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/billing/plan [get]
func (h *BillingHandler) GetPlan(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	resp, err := h.billingService.GetPlan(c.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrOrganizationNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Organization not found",
			})
		}
		h.logger.Error("Failed to load plan", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load plan",
		})
	}

	return c.JSON(resp)
}
