package handlers

import (
	"errors"

	"github.com/Sankura23/woofadaar-moderation/internal/dto"
	"github.com/Sankura23/woofadaar-moderation/internal/models"
	"github.com/Sankura23/woofadaar-moderation/internal/services"
	"github.com/gofiber/fiber/v2"
)

// RulesHandler is the admin surface for the data-defined rule set. Changes
// take effect immediately; no redeploy is involved.
type RulesHandler struct {
	rules *services.RuleEngine
}

func NewRulesHandler(rules *services.RuleEngine) *RulesHandler {
	return &RulesHandler{rules: rules}
}

// List returns every rule, active and inactive.
func (h *RulesHandler) List(c *fiber.Ctx) error {
	rules, err := h.rules.Rules()
	if err != nil {
		return storageFailure(c, err)
	}
	return c.JSON(dto.OK(rules))
}

// Upsert creates or replaces the rule at the path id.
func (h *RulesHandler) Upsert(c *fiber.Ctx) error {
	ruleID := c.Params("id", "")
	if ruleID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Rule id parameter is required"))
	}

	var req dto.UpsertRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid request body"))
	}

	rule := &models.Rule{
		ID:                  ruleID,
		Name:                req.Name,
		Priority:            req.Priority,
		Conditions:          services.MustConditions(req.Conditions),
		Action:              req.Action,
		Confidence:          req.Confidence,
		ActivationThreshold: req.ActivationThreshold,
		IsActive:            true,
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}

	if err := h.rules.Upsert(rule); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail(err.Error()))
	}

	return c.JSON(dto.OK(rule))
}

// Deactivate turns a rule off without deleting its history.
func (h *RulesHandler) Deactivate(c *fiber.Ctx) error {
	ruleID := c.Params("id", "")
	if ruleID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Rule id parameter is required"))
	}

	if err := h.rules.Deactivate(ruleID); err != nil {
		if errors.Is(err, services.ErrRuleNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.Fail(err.Error()))
		}
		return storageFailure(c, err)
	}

	return c.JSON(dto.OK(fiber.Map{"message": "Rule deactivated", "rule_id": ruleID}))
}
