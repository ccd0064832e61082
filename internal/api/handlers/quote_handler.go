package handlers

import (
	"errors"
	"io"

	"rateguard/internal/dto"
	"rateguard/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type QuoteHandler struct {
	quoteService *service.QuoteService
	extraction   *service.ExtractionService
	logger       *zap.Logger
}

func NewQuoteHandler(quoteService *service.QuoteService, extraction *service.ExtractionService, logger *zap.Logger) *QuoteHandler {
	return &QuoteHandler{
		quoteService: quoteService,
		extraction:   extraction,
		logger:       logger,
	}
}

// UploadQuote godoc
// @Summary Upload a wire confirmation for analysis
// @Description Upload a bank wire confirmation (PDF or image); returns the full hidden-cost breakdown
// @Tags quotes
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Wire confirmation (pdf, jpg, png)"
// @Security Bearer
// @Success 201 {object} dto.QuoteResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 413 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/quotes/upload [post]
func (h *QuoteHandler) UploadQuote(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "File is required",
		})
	}
	if file.Size > h.extraction.MaxFileSize() {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error": "File is too large",
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to open file",
		})
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read file",
		})
	}

	mimeType := file.Header.Get("Content-Type")

	quote, err := h.quoteService.UploadAndAnalyze(c.Context(), userID, file.Filename, data, mimeType)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoOrganization):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Create or join an organization first",
			})
		case errors.Is(err, service.ErrFileTooLarge):
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
				"error": "File is too large",
			})
		case errors.Is(err, service.ErrUnsupportedFormat):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unsupported file format",
			})
		case errors.Is(err, service.ErrDocumentUnreadable),
			errors.Is(err, service.ErrExtractionFailed),
			errors.Is(err, service.ErrIncompleteExtract):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": "Could not read transaction details from the document",
			})
		}
		h.logger.Error("Failed to analyze document", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to analyze document",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(quote)
}

// GetQuote godoc
// @Summary Get a quote
// @Description Get one analyzed quote with its cost breakdown
// @Tags quotes
// @Produce json
// @Param id path string true "Quote ID"
// @Security Bearer
// @Success 200 {object} dto.QuoteResponse
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/quotes/{id} [get]
func (h *QuoteHandler) GetQuote(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	quoteID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid quote ID",
		})
	}

	quote, err := h.quoteService.Get(c.Context(), userID, quoteID)
	if err != nil {
		if errors.Is(err, service.ErrQuoteNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Quote not found",
			})
		}
		h.logger.Error("Failed to load quote", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load quote",
		})
	}

	return c.JSON(quote)
}

// ListQuotes godoc
// @Summary List organization quotes
// @Description List the organization's analyzed quotes, newest first
// @Tags quotes
// @Produce json
// @Param limit query int false "Limit" default(20)
// @Param offset query int false "Offset" default(0)
// @Security Bearer
// @Success 200 {array} dto.QuoteResponse
// @Failure 401 {object} map[string]string
// @Router /api/v1/quotes [get]
func (h *QuoteHandler) ListQuotes(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	quotes, err := h.quoteService.List(c.Context(), userID, limit, offset)
	if err != nil {
		if errors.Is(err, service.ErrNoOrganization) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Create or join an organization first",
			})
		}
		h.logger.Error("Failed to list quotes", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list quotes",
		})
	}

	if quotes == nil {
		quotes = []*dto.QuoteResponse{}
	}
	return c.JSON(quotes)
}

// AdvanceStatus godoc
// @Summary Advance quote workflow status
// @Description Move a quote to the next review state (uploaded -> analyzed -> reviewed -> approved -> uploaded)
// @Tags quotes
// @Produce json
// @Param id path string true "Quote ID"
// @Security Bearer
// @Success 200 {object} dto.AdvanceStatusResponse
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/quotes/{id}/advance [post]
func (h *QuoteHandler) AdvanceStatus(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	quoteID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid quote ID",
		})
	}

	resp, err := h.quoteService.AdvanceStatus(c.Context(), userID, quoteID)
	if err != nil {
		if errors.Is(err, service.ErrQuoteNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Quote not found",
			})
		}
		h.logger.Error("Failed to advance status", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to advance status",
		})
	}

	return c.JSON(resp)
}

// AddNote godoc
// @Summary Add a review note
// @Description Append a note to the quote's review trail
// @Tags quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID"
// @Param request body dto.AddNoteRequest true "Note"
// @Security Bearer
// @Success 200 {object} dto.QuoteResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/quotes/{id}/notes [post]
func (h *QuoteHandler) AddNote(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	quoteID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid quote ID",
		})
	}

	var req dto.AddNoteRequest
	if err := c.BodyParser(&req); err != nil || req.Note == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Note is required",
		})
	}

	resp, err := h.quoteService.AppendNote(c.Context(), userID, quoteID, req.Note)
	if err != nil {
		if errors.Is(err, service.ErrQuoteNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Quote not found",
			})
		}
		h.logger.Error("Failed to add note", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to add note",
		})
	}

	return c.JSON(resp)
}

func getUserID(c *fiber.Ctx) (uuid.UUID, error) {
	userIDStr, ok := c.Locals("userID").(string)
	if !ok {
		return uuid.Nil, fiber.ErrUnauthorized
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, err
	}

	return userID, nil
}
