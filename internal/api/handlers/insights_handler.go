package handlers

import (
	"sync"
	"time"

	"finpulse/internal/dto"
	"finpulse/internal/models"
	"finpulse/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type InsightsHandler struct {
	forecastService   *service.ForecastService
	recurrenceService *service.RecurrenceService
	logger            *zap.Logger
}

func NewInsightsHandler(
	forecastService *service.ForecastService,
	recurrenceService *service.RecurrenceService,
	logger *zap.Logger,
) *InsightsHandler {
	return &InsightsHandler{
		forecastService:   forecastService,
		recurrenceService: recurrenceService,
		logger:            logger,
	}
}

// GetForecast godoc
// @Summary Project the balance trajectory
// @Tags insights
// @Produce json
// @Param horizon query int false "Horizon in days: 7, 30, or 90" default(30)
// @Security Bearer
// @Success 200 {object} dto.ForecastResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/v1/insights/forecast [get]
func (h *InsightsHandler) GetForecast(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	horizon := c.QueryInt("horizon", 30)
	if horizon != 7 && horizon != 30 && horizon != 90 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "horizon must be 7, 30, or 90",
		})
	}

	forecast, err := h.forecastService.Forecast(c.Context(), userID, horizon)
	if err != nil {
		h.logger.Error("Failed to build forecast", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build forecast",
		})
	}

	return c.JSON(toForecastResponse(forecast))
}

// GetSubscriptions godoc
// @Summary Detect and list recurring payments
// @Tags insights
// @Produce json
// @Security Bearer
// @Success 200 {array} dto.SubscriptionResponse
// @Failure 401 {object} map[string]string
// @Router /api/v1/insights/subscriptions [get]
func (h *InsightsHandler) GetSubscriptions(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	subs, err := h.recurrenceService.SyncSubscriptions(c.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to sync subscriptions", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to detect subscriptions",
		})
	}

	return c.JSON(toSubscriptionResponses(subs))
}

// GetUpcomingBills godoc
// @Summary List predicted charges due soon
// @Tags insights
// @Produce json
// @Param days query int false "Window in days" default(30)
// @Security Bearer
// @Success 200 {array} dto.UpcomingBillResponse
// @Failure 401 {object} map[string]string
// @Router /api/v1/insights/upcoming [get]
func (h *InsightsHandler) GetUpcomingBills(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	days := c.QueryInt("days", 30)

	due, err := h.recurrenceService.UpcomingBills(c.Context(), userID, days)
	if err != nil {
		h.logger.Error("Failed to list upcoming bills", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list upcoming bills",
		})
	}

	return c.JSON(toUpcomingBillResponses(due))
}

// GetBuffer godoc
// @Summary Emergency-buffer adequacy
// @Tags insights
// @Produce json
// @Security Bearer
// @Success 200 {object} dto.BufferResponse
// @Failure 401 {object} map[string]string
// @Router /api/v1/insights/buffer [get]
func (h *InsightsHandler) GetBuffer(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	buffer, err := h.forecastService.EmergencyBuffer(c.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to compute buffer", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute buffer",
		})
	}

	return c.JSON(toBufferResponse(buffer))
}

// GetOverview godoc
// @Summary Home-screen insight bundle
// @Description Forecast, subscriptions, upcoming bills, and buffer fetched concurrently. A failing widget is omitted, not fatal.
// @Tags insights
// @Produce json
// @Security Bearer
// @Success 200 {object} dto.OverviewResponse
// @Failure 401 {object} map[string]string
// @Router /api/v1/insights/overview [get]
func (h *InsightsHandler) GetOverview(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	ctx := c.Context()

	// Fixed-size parallel join: the four widgets are independent and each
	// goroutine writes only its own slot.
	var (
		wg       sync.WaitGroup
		forecast *models.CashflowForecast
		subs     []*models.Subscription
		upcoming []*models.Subscription
		buffer   *models.BufferInfo
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		f, err := h.forecastService.Forecast(ctx, userID, 30)
		if err != nil {
			h.logger.Warn("Overview forecast failed", zap.Error(err))
			return
		}
		forecast = f
	}()
	go func() {
		defer wg.Done()
		s, err := h.recurrenceService.SyncSubscriptions(ctx, userID)
		if err != nil {
			h.logger.Warn("Overview subscription sync failed", zap.Error(err))
			return
		}
		subs = s
	}()
	go func() {
		defer wg.Done()
		u, err := h.recurrenceService.UpcomingBills(ctx, userID, 30)
		if err != nil {
			h.logger.Warn("Overview upcoming bills failed", zap.Error(err))
			return
		}
		upcoming = u
	}()
	go func() {
		defer wg.Done()
		b, err := h.forecastService.EmergencyBuffer(ctx, userID)
		if err != nil {
			h.logger.Warn("Overview buffer failed", zap.Error(err))
			return
		}
		buffer = b
	}()
	wg.Wait()

	resp := dto.OverviewResponse{
		Subscriptions: toSubscriptionResponses(subs),
		UpcomingBills: toUpcomingBillResponses(upcoming),
	}
	if forecast != nil {
		resp.Forecast = toForecastResponse(forecast)
	}
	if buffer != nil {
		resp.Buffer = toBufferResponse(buffer)
	}

	return c.JSON(resp)
}

func toForecastResponse(forecast *models.CashflowForecast) *dto.ForecastResponse {
	points := make([]dto.ForecastPointResponse, len(forecast.Points))
	for i, p := range forecast.Points {
		points[i] = dto.ForecastPointResponse{
			Date:             p.Date.Format(time.RFC3339),
			PredictedBalance: p.PredictedBalance,
			Confidence:       p.Confidence,
		}
	}
	return &dto.ForecastResponse{
		HorizonDays: forecast.HorizonDays,
		RiskLevel:   string(forecast.RiskLevel),
		Points:      points,
	}
}

func toSubscriptionResponses(subs []*models.Subscription) []dto.SubscriptionResponse {
	responses := make([]dto.SubscriptionResponse, len(subs))
	for i, sub := range subs {
		responses[i] = dto.SubscriptionResponse{
			ID:              sub.ID.String(),
			Merchant:        sub.Merchant,
			AverageAmount:   sub.AverageAmount,
			Frequency:       string(sub.Frequency),
			OccurrenceCount: sub.OccurrenceCount,
			LastPaymentAt:   sub.LastPaymentAt.Format(time.RFC3339),
			NextPaymentAt:   sub.NextPaymentAt.Format(time.RFC3339),
		}
	}
	return responses
}

func toUpcomingBillResponses(subs []*models.Subscription) []dto.UpcomingBillResponse {
	responses := make([]dto.UpcomingBillResponse, len(subs))
	for i, sub := range subs {
		responses[i] = dto.UpcomingBillResponse{
			Merchant: sub.Merchant,
			Amount:   sub.AverageAmount,
			DueAt:    sub.NextPaymentAt.Format(time.RFC3339),
		}
	}
	return responses
}

func toBufferResponse(buffer *models.BufferInfo) *dto.BufferResponse {
	return &dto.BufferResponse{
		CurrentBuffer:     buffer.CurrentBuffer,
		RecommendedBuffer: buffer.RecommendedBuffer,
		Progress:          buffer.Progress,
		DaysOfExpenses:    buffer.DaysOfExpenses,
		VolatilityFactor:  buffer.VolatilityFactor,
	}
}
