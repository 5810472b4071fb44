package handlers

import (
	"errors"

	"github.com/Sankura23/woofadaar-moderation/internal/dto"
	"github.com/Sankura23/woofadaar-moderation/internal/principal"
	"github.com/Sankura23/woofadaar-moderation/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	reports *services.ReportService
}

func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Create files a content report and links it to the moderation queue.
func (h *ReportHandler) Create(c *fiber.Ctx) error {
	reporterID, err := principal.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("Unauthorized"))
	}

	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid request body"))
	}

	report, item, err := h.reports.Create(reporterID, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidReport):
			return c.Status(fiber.StatusBadRequest).JSON(dto.Fail(err.Error()))
		case errors.Is(err, services.ErrDuplicateReport):
			return c.Status(fiber.StatusConflict).JSON(dto.Fail(err.Error()))
		}
		return storageFailure(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.OK(fiber.Map{
		"report":     report,
		"queue_item": item,
	}))
}
