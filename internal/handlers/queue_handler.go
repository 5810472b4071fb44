package handlers

import (
	"errors"
	"strconv"

	"github.com/Sankura23/woofadaar-moderation/internal/dto"
	"github.com/Sankura23/woofadaar-moderation/internal/principal"
	"github.com/Sankura23/woofadaar-moderation/internal/services"
	"github.com/Sankura23/woofadaar-moderation/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type QueueHandler struct {
	queue *services.QueueService
}

func NewQueueHandler(queue *services.QueueService) *QueueHandler {
	return &QueueHandler{queue: queue}
}

// List returns queue items ordered by severity then recency, plus stats.
func (h *QueueHandler) List(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if limit > storage.MaxQueueLimit {
		limit = storage.MaxQueueLimit
	}

	items, stats, err := h.queue.List(storage.QueueFilters{
		Status:      c.Query("status", ""),
		Severity:    c.Query("severity", ""),
		ContentType: c.Query("content_type", ""),
		Limit:       limit,
	})
	if err != nil {
		return storageFailure(c, err)
	}

	return c.JSON(dto.OK(dto.QueueListResponse{
		Items: items,
		Stats: dto.QueueStats{
			TotalPending:  stats.TotalPending,
			CriticalItems: stats.CriticalItems,
			AutoFlagged:   stats.AutoFlagged,
		},
	}))
}

// Claim assigns a pending item to the calling moderator.
func (h *QueueHandler) Claim(c *fiber.Ctx) error {
	moderatorID, err := principal.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("Unauthorized"))
	}

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid queue item ID"))
	}

	item, err := h.queue.Claim(itemID, moderatorID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrItemNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.Fail(err.Error()))
		case errors.Is(err, services.ErrAlreadyResolved), errors.Is(err, services.ErrAlreadyReviewing):
			return c.Status(fiber.StatusConflict).JSON(dto.Fail(err.Error()))
		}
		return storageFailure(c, err)
	}

	return c.JSON(dto.OK(item))
}

// Resolve moves a queue item to its terminal state. Repeat resolutions are
// rejected with a conflict so double-submits cannot double-apply reputation.
func (h *QueueHandler) Resolve(c *fiber.Ctx) error {
	moderatorID, err := principal.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("Unauthorized"))
	}

	var req dto.ResolveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid request body"))
	}

	item, err := h.queue.Resolve(req.QueueItemID, moderatorID, req.Action, req.ModeratorNotes)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAction):
			return c.Status(fiber.StatusBadRequest).JSON(dto.Fail(err.Error()))
		case errors.Is(err, services.ErrItemNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.Fail(err.Error()))
		case errors.Is(err, services.ErrAlreadyResolved):
			return c.Status(fiber.StatusConflict).JSON(dto.Fail(err.Error()))
		}
		return storageFailure(c, err)
	}

	return c.JSON(dto.OK(item))
}

// storageFailure maps backend unavailability to a degraded 503 and everything
// else to a plain 500.
func storageFailure(c *fiber.Ctx, err error) error {
	if errors.Is(err, storage.ErrUnavailable) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.Envelope{
			Error: "storage unavailable", Degraded: true,
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("Internal server error"))
}
