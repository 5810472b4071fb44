package services

import (
	"errors"
	"log/slog"

	"github.com/Sankura23/woofadaar-moderation/internal/models"
	"github.com/Sankura23/woofadaar-moderation/internal/storage"
)

// DefaultRules returns the baseline rule set installed on first boot. Rules
// are inserted only when missing so operator edits and feedback-driven
// threshold adjustments survive restarts.
func DefaultRules() []models.Rule {
	return []models.Rule{
		{
			ID:       "severe-toxicity",
			Name:     "Severe toxicity",
			Priority: 100,
			Conditions: MustConditions([]models.RuleCondition{
				{Signal: "scores.toxicity", Operator: "gte", Threshold: 0.85, Weight: 1.0},
			}),
			Action:              models.ActionBlock,
			Confidence:          0.95,
			ActivationThreshold: 0.6,
			IsActive:            true,
		},
		{
			ID:       "promo-spam-new-account",
			Name:     "Promotional spam from a new account",
			Priority: 90,
			Conditions: MustConditions([]models.RuleCondition{
				{Signal: "scores.spam", Operator: "gte", Threshold: 0.7, Weight: 0.6},
				{Signal: "reputation.tier_rank", Operator: "lte", Threshold: 1, Weight: 0.4},
			}),
			Action:              models.ActionBlock,
			Confidence:          0.9,
			ActivationThreshold: 0.8,
			IsActive:            true,
		},
		{
			ID:       "elevated-spam-low-trust",
			Name:     "Elevated spam signal from a low-trust account",
			Priority: 80,
			Conditions: MustConditions([]models.RuleCondition{
				{Signal: "scores.spam", Operator: "gte", Threshold: 0.6, Weight: 0.5},
				{Signal: "reputation.tier_rank", Operator: "lte", Threshold: 1, Weight: 0.3},
				{Signal: "context.account_age_days", Operator: "lt", Threshold: 7, Weight: 0.2},
			}),
			Action:              models.ActionReview,
			Confidence:          0.75,
			ActivationThreshold: 0.6,
			IsActive:            true,
		},
		{
			ID:       "toxicity-review",
			Name:     "Toxic language needing human judgement",
			Priority: 70,
			Conditions: MustConditions([]models.RuleCondition{
				{Signal: "scores.toxicity", Operator: "gte", Threshold: 0.6, Weight: 1.0},
			}),
			Action:              models.ActionReview,
			Confidence:          0.8,
			ActivationThreshold: 0.6,
			IsActive:            true,
		},
		{
			ID:       "promotional-flag",
			Name:     "Promotional content worth a soft flag",
			Priority: 50,
			Conditions: MustConditions([]models.RuleCondition{
				{Signal: "flags.promotional", Operator: "eq", Threshold: 1, Weight: 0.5},
				{Signal: "scores.spam", Operator: "gte", Threshold: 0.4, Weight: 0.5},
			}),
			Action:              models.ActionFlag,
			Confidence:          0.7,
			ActivationThreshold: 0.9,
			IsActive:            true,
		},
		{
			ID:       "low-quality-new-user",
			Name:     "Low-effort content from a new account",
			Priority: 40,
			Conditions: MustConditions([]models.RuleCondition{
				{Signal: "scores.quality", Operator: "lte", Threshold: 0.2, Weight: 0.6},
				{Signal: "reputation.tier_rank", Operator: "lte", Threshold: 0, Weight: 0.4},
			}),
			Action:              models.ActionFlag,
			Confidence:          0.65,
			ActivationThreshold: 0.9,
			IsActive:            true,
		},
	}
}

// SeedRules installs any missing default rules.
func SeedRules(store storage.Store) error {
	for _, rule := range DefaultRules() {
		if _, err := store.GetRule(rule.ID); err == nil {
			continue
		} else if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		r := rule
		if err := store.SaveRule(&r); err != nil {
			return err
		}
		slog.Info("seeded moderation rule", "rule_id", r.ID)
	}
	return nil
}
