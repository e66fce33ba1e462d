package handlers

import (
	"finpulse/internal/dto"
	"finpulse/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type MessageHandler struct {
	ingestService *service.IngestService
	logger        *zap.Logger
}

func NewMessageHandler(ingestService *service.IngestService, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{
		ingestService: ingestService,
		logger:        logger,
	}
}

// ImportMessages godoc
// @Summary Import a batch of raw bank/UPI alerts
// @Description Classifies, extracts, and persists transactions from raw message text. Per-message failures are counted, not fatal.
// @Tags messages
// @Accept json
// @Produce json
// @Param request body dto.ImportMessagesRequest true "Raw messages"
// @Security Bearer
// @Success 200 {object} dto.ImportSummary
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/v1/messages/import [post]
func (h *MessageHandler) ImportMessages(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var req dto.ImportMessagesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if len(req.Messages) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "messages must not be empty",
		})
	}

	summary, err := h.ingestService.ImportMessages(c.Context(), userID, req.Messages)
	if err != nil {
		h.logger.Error("Failed to import messages", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to import messages",
		})
	}

	return c.JSON(summary)
}
