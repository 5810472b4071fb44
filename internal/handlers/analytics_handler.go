package handlers

import (
	"errors"

	"github.com/Sankura23/woofadaar-moderation/internal/dto"
	"github.com/Sankura23/woofadaar-moderation/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AnalyticsHandler struct {
	analytics *services.AnalyticsService
}

func NewAnalyticsHandler(analytics *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Get serves the analytics surface. The action query parameter selects the
// slice: overview, trends, patterns, optimizations, alerts, recommendations,
// real_time, or export for the full report.
func (h *AnalyticsHandler) Get(c *fiber.Ctx) error {
	action := c.Query("action", "overview")
	period := c.Query("period", services.PeriodDay)

	if action == "real_time" {
		snapshot, err := h.analytics.RealTime()
		if err != nil {
			return storageFailure(c, err)
		}
		return c.JSON(dto.OK(snapshot))
	}

	report, err := h.analytics.GenerateReport(period)
	if err != nil {
		if errors.Is(err, services.ErrInvalidPeriod) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.Fail(err.Error()))
		}
		return storageFailure(c, err)
	}

	switch action {
	case "overview":
		return c.JSON(dto.OK(report.Overview))
	case "trends":
		return c.JSON(dto.OK(report.Trends))
	case "patterns":
		return c.JSON(dto.OK(fiber.Map{
			"content_insights": report.ContentInsights,
			"user_patterns":    report.UserPatterns,
		}))
	case "optimizations":
		return c.JSON(dto.OK(report.Optimizations))
	case "alerts":
		return c.JSON(dto.OK(report.PredictiveAlerts))
	case "recommendations":
		return c.JSON(dto.OK(report.Recommendations))
	case "export":
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="moderation-analytics-`+period+`.json"`)
		return c.JSON(dto.OK(report))
	}
	return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("unknown analytics action: " + action))
}
