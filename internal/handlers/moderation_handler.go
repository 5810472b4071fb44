package handlers

import (
	"errors"

	"github.com/Sankura23/woofadaar-moderation/internal/dto"
	"github.com/Sankura23/woofadaar-moderation/internal/principal"
	"github.com/Sankura23/woofadaar-moderation/internal/services"
	"github.com/Sankura23/woofadaar-moderation/internal/storage"
	"github.com/gofiber/fiber/v2"
)

type ModerationHandler struct {
	decision *services.DecisionService
}

func NewModerationHandler(decision *services.DecisionService) *ModerationHandler {
	return &ModerationHandler{decision: decision}
}

// Evaluate runs the decision pipeline on a content submission. A degraded
// response means the scorer was unreachable and the content fail-safed to
// review; it is still a successful evaluation.
func (h *ModerationHandler) Evaluate(c *fiber.Ctx) error {
	authorID, err := principal.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("Unauthorized"))
	}

	var req dto.EvaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid request body"))
	}

	resp, degraded, err := h.decision.Evaluate(c.UserContext(), authorID, req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidSubmission) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.Fail(err.Error()))
		}
		if errors.Is(err, storage.ErrUnavailable) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.Envelope{
				Error: "storage unavailable", Degraded: true,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("Evaluation failed"))
	}

	if degraded {
		return c.JSON(dto.OKDegraded(resp))
	}
	return c.JSON(dto.OK(resp))
}
