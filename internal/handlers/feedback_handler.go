package handlers

import (
	"errors"

	"github.com/Sankura23/woofadaar-moderation/internal/dto"
	"github.com/Sankura23/woofadaar-moderation/internal/principal"
	"github.com/Sankura23/woofadaar-moderation/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type FeedbackHandler struct {
	feedback *services.FeedbackService
}

func NewFeedbackHandler(feedback *services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback}
}

// Submit records a community vote on a resolved decision. Resubmitting
// replaces the voter's earlier vote.
func (h *FeedbackHandler) Submit(c *fiber.Ctx) error {
	voterID, err := principal.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("Unauthorized"))
	}

	var req dto.FeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid request body"))
	}

	vote, err := h.feedback.SubmitVote(voterID, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRating):
			return c.Status(fiber.StatusBadRequest).JSON(dto.Fail(err.Error()))
		case errors.Is(err, services.ErrItemNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.Fail(err.Error()))
		case errors.Is(err, services.ErrItemNotResolved):
			return c.Status(fiber.StatusConflict).JSON(dto.Fail(err.Error()))
		}
		return storageFailure(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.OK(vote))
}

// Agreement returns the weighted agreement rate for a resolved item.
func (h *FeedbackHandler) Agreement(c *fiber.Ctx) error {
	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid queue item ID"))
	}

	rate, count, err := h.feedback.AgreementRate(itemID)
	if err != nil {
		return storageFailure(c, err)
	}

	return c.JSON(dto.OK(fiber.Map{
		"queue_item_id":  itemID,
		"agreement_rate": rate,
		"vote_count":     count,
	}))
}
