package handlers

import (
	"errors"

	"rateguard/internal/dto"
	"rateguard/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrganizationHandler struct {
	orgService *service.OrganizationService
	logger     *zap.Logger
}

func NewOrganizationHandler(orgService *service.OrganizationService, logger *zap.Logger) *OrganizationHandler {
	return &OrganizationHandler{
		orgService: orgService,
		logger:     logger,
	}
}

// CreateOrganization godoc
// @Summary Create an organization
// @Description Create an organization with the caller as admin; starts on the free plan
// @Tags organizations
// @Accept json
// @Produce json
// @Param request body dto.CreateOrganizationRequest true "Organization"
// @Security Bearer
// @Success 201 {object} dto.OrganizationResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/organizations [post]
func (h *OrganizationHandler) CreateOrganization(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var req dto.CreateOrganizationRequest
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Organization name is required",
		})
	}

	resp, err := h.orgService.Create(c.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyInOrg) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "User already belongs to an organization",
			})
		}
		h.logger.Error("Failed to create organization", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create organization",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetOrganization godoc
// @Summary Get my organization
// @Description Get the caller's organization with members, plan and credits
// @Tags organizations
// @Produce json
// @Security Bearer
// @Success 200 {object} dto.OrganizationResponse
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/organizations/me [get]
func (h *OrganizationHandler) GetOrganization(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	resp, err := h.orgService.Get(c.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrOrganizationNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Organization not found",
			})
		}
		h.logger.Error("Failed to load organization", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load organization",
		})
	}

	return c.JSON(resp)
}

// GetAuditTrail godoc
// @Summary Get the audit trail
// @Description Organization audit log: quote creation, status changes, credit spend, plan upgrades
// @Tags organizations
// @Produce json
// @Param limit query int false "Limit" default(50)
// @Param offset query int false "Offset" default(0)
// @Security Bearer
// @Success 200 {array} dto.AuditEntryResponse
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/organizations/audit [get]
func (h *OrganizationHandler) GetAuditTrail(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	entries, err := h.orgService.AuditTrail(c.Context(), userID, limit, offset)
	if err != nil {
		if errors.Is(err, service.ErrOrganizationNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Organization not found",
			})
		}
		h.logger.Error("Failed to load audit trail", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load audit trail",
		})
	}

	return c.JSON(entries)
}

// AddMember godoc
// @Summary Add a member
// @Description Invite a registered user into the organization by email (admin only)
// @Tags organizations
// @Accept json
// @Produce json
// @Param request body dto.AddMemberRequest true "Member email"
// @Security Bearer
// @Success 200 {object} dto.OrganizationResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/organizations/members [post]
func (h *OrganizationHandler) AddMember(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var req dto.AddMemberRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Member email is required",
		})
	}

	resp, err := h.orgService.AddMember(c.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotOrganizationAdmin):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Only the organization admin can add members",
			})
		case errors.Is(err, service.ErrSeatCapReached):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Organization seat cap reached",
			})
		case errors.Is(err, service.ErrAlreadyInOrg):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "User already belongs to an organization",
			})
		case errors.Is(err, service.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "No registered user with that email",
			})
		}
		h.logger.Error("Failed to add member", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to add member",
		})
	}

	return c.JSON(resp)
}

// RemoveMember godoc
// @Summary Remove a member
// @Description Remove a member from the organization (admin only; the admin seat cannot be removed)
// @Tags organizations
// @Produce json
// @Param id path string true "Member user ID"
// @Security Bearer
// @Success 200 {object} dto.OrganizationResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/organizations/members/{id} [delete]
func (h *OrganizationHandler) RemoveMember(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	memberID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid member ID",
		})
	}

	resp, err := h.orgService.RemoveMember(c.Context(), userID, memberID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotOrganizationAdmin):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Only the organization admin can remove members",
			})
		case errors.Is(err, service.ErrCannotRemoveAdmin):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Admin cannot be removed",
			})
		case errors.Is(err, service.ErrMemberNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Member not found",
			})
		}
		h.logger.Error("Failed to remove member", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to remove member",
		})
	}

	return c.JSON(resp)
}
