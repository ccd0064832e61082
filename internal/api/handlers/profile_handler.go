package handlers

import (
	"rateguard/internal/dto"
	"rateguard/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ProfileHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

func NewProfileHandler(authService *service.AuthService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		authService: authService,
		logger:      logger,
	}
}

// GetProfile godoc
// @Summary Get current user profile
// @Description Get the authenticated user's profile
// @Tags profile
// @Produce json
// @Security Bearer
// @Success 200 {object} dto.ProfileResponse
// @Failure 401 {object} map[string]string
// @Router /api/v1/profile [get]
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	resp, err := h.authService.GetProfile(c.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to load profile", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load profile",
		})
	}

	return c.JSON(resp)
}

// CompleteOnboarding godoc
// @Summary Complete onboarding
// @Description Save the onboarding form: display name, country and tax id
// @Tags profile
// @Accept json
// @Produce json
// @Param request body dto.OnboardingRequest true "Onboarding form"
// @Security Bearer
// @Success 200 {object} dto.ProfileResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/v1/profile/onboarding [put]
func (h *ProfileHandler) CompleteOnboarding(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var req dto.OnboardingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.DisplayName == "" || req.Country == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Display name and country are required",
		})
	}

	resp, err := h.authService.CompleteOnboarding(c.Context(), userID, &req)
	if err != nil {
		h.logger.Error("Failed to complete onboarding", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to complete onboarding",
		})
	}

	return c.JSON(resp)
}
