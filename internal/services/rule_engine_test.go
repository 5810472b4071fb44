package services

import (
	"testing"

	"github.com/Sankura23/woofadaar-moderation/internal/models"
	"github.com/Sankura23/woofadaar-moderation/internal/storage"
)

func mustRule(t *testing.T, store storage.Store, rule models.Rule) {
	t.Helper()
	if err := store.SaveRule(&rule); err != nil {
		t.Fatalf("SaveRule(%s) error = %v", rule.ID, err)
	}
}

func TestRuleEngineFirstMatchWins(t *testing.T) {
	store := storage.NewMemoryStore()
	mustRule(t, store, models.Rule{
		ID: "low-priority-flag", Name: "flag", Priority: 10,
		Conditions: MustConditions([]models.RuleCondition{
			{Signal: "scores.spam", Operator: "gte", Threshold: 0.3, Weight: 1},
		}),
		Action: models.ActionFlag, Confidence: 0.6, ActivationThreshold: 0.6, IsActive: true,
	})
	mustRule(t, store, models.Rule{
		ID: "high-priority-block", Name: "block", Priority: 100,
		Conditions: MustConditions([]models.RuleCondition{
			{Signal: "scores.spam", Operator: "gte", Threshold: 0.8, Weight: 1},
		}),
		Action: models.ActionBlock, Confidence: 0.9, ActivationThreshold: 0.6, IsActive: true,
	})

	engine, err := NewRuleEngine(store)
	if err != nil {
		t.Fatalf("NewRuleEngine() error = %v", err)
	}

	winner, triggered := engine.Evaluate(SignalBundle{"scores.spam": 0.9})
	if winner == nil {
		t.Fatal("Evaluate() winner = nil, want high-priority-block")
	}
	if winner.RuleID != "high-priority-block" {
		t.Errorf("winner = %s, want high-priority-block", winner.RuleID)
	}
	if len(triggered) != 2 {
		t.Errorf("triggered = %v, want both rules recorded", triggered)
	}

	// Below the high-priority rule's condition, only the flag rule fires.
	winner, triggered = engine.Evaluate(SignalBundle{"scores.spam": 0.5})
	if winner == nil || winner.RuleID != "low-priority-flag" {
		t.Fatalf("winner = %v, want low-priority-flag", winner)
	}
	if len(triggered) != 1 {
		t.Errorf("triggered = %v, want one rule", triggered)
	}
}

func TestRuleEngineWeightedPartialMatch(t *testing.T) {
	store := storage.NewMemoryStore()
	mustRule(t, store, models.Rule{
		ID: "weighted", Name: "weighted", Priority: 50,
		Conditions: MustConditions([]models.RuleCondition{
			{Signal: "scores.spam", Operator: "gte", Threshold: 0.7, Weight: 0.6},
			{Signal: "reputation.tier_rank", Operator: "lte", Threshold: 1, Weight: 0.4},
		}),
		Action: models.ActionBlock, Confidence: 0.9, ActivationThreshold: 0.8, IsActive: true,
	})

	engine, err := NewRuleEngine(store)
	if err != nil {
		t.Fatalf("NewRuleEngine() error = %v", err)
	}

	tests := []struct {
		name    string
		signals SignalBundle
		trigger bool
	}{
		{"both met", SignalBundle{"scores.spam": 0.9, "reputation.tier_rank": 1}, true},
		{"only spam met", SignalBundle{"scores.spam": 0.9, "reputation.tier_rank": 3}, false},
		{"only tier met", SignalBundle{"scores.spam": 0.2, "reputation.tier_rank": 0}, false},
		{"unknown signal counts as unmet", SignalBundle{"scores.spam": 0.9}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			winner, _ := engine.Evaluate(tt.signals)
			if (winner != nil) != tt.trigger {
				t.Errorf("Evaluate() winner = %v, want trigger = %v", winner, tt.trigger)
			}
		})
	}
}

func TestRuleEngineSkipsMalformedRules(t *testing.T) {
	store := storage.NewMemoryStore()
	mustRule(t, store, models.Rule{
		ID: "bad-operator", Name: "bad", Priority: 100,
		Conditions: MustConditions([]models.RuleCondition{
			{Signal: "scores.spam", Operator: "near", Threshold: 0.5, Weight: 1},
		}),
		Action: models.ActionBlock, Confidence: 0.9, ActivationThreshold: 0.6, IsActive: true,
	})
	mustRule(t, store, models.Rule{
		ID: "good", Name: "good", Priority: 10,
		Conditions: MustConditions([]models.RuleCondition{
			{Signal: "scores.spam", Operator: "gte", Threshold: 0.5, Weight: 1},
		}),
		Action: models.ActionReview, Confidence: 0.8, ActivationThreshold: 0.6, IsActive: true,
	})

	engine, err := NewRuleEngine(store)
	if err != nil {
		t.Fatalf("NewRuleEngine() error = %v", err)
	}

	winner, _ := engine.Evaluate(SignalBundle{"scores.spam": 0.9})
	if winner == nil || winner.RuleID != "good" {
		t.Fatalf("winner = %v, want good (malformed rule skipped)", winner)
	}
}

func TestRuleEngineInactiveRulesIgnored(t *testing.T) {
	store := storage.NewMemoryStore()
	mustRule(t, store, models.Rule{
		ID: "disabled", Name: "disabled", Priority: 100,
		Conditions: MustConditions([]models.RuleCondition{
			{Signal: "scores.spam", Operator: "gte", Threshold: 0.1, Weight: 1},
		}),
		Action: models.ActionBlock, Confidence: 0.9, ActivationThreshold: 0.6, IsActive: false,
	})

	engine, err := NewRuleEngine(store)
	if err != nil {
		t.Fatalf("NewRuleEngine() error = %v", err)
	}
	if winner, _ := engine.Evaluate(SignalBundle{"scores.spam": 0.9}); winner != nil {
		t.Errorf("winner = %v, want nil for inactive rule", winner)
	}
}

func TestAdjustThresholdClamps(t *testing.T) {
	store := storage.NewMemoryStore()
	mustRule(t, store, models.Rule{
		ID: "r", Name: "r", Priority: 10,
		Conditions: MustConditions([]models.RuleCondition{
			{Signal: "scores.spam", Operator: "gte", Threshold: 0.5, Weight: 1},
		}),
		Action: models.ActionFlag, Confidence: 0.7, ActivationThreshold: 0.88, IsActive: true,
	})

	engine, err := NewRuleEngine(store)
	if err != nil {
		t.Fatalf("NewRuleEngine() error = %v", err)
	}

	if err := engine.AdjustThreshold("r", 0.1); err != nil {
		t.Fatalf("AdjustThreshold() error = %v", err)
	}
	rule, err := store.GetRule("r")
	if err != nil {
		t.Fatalf("GetRule() error = %v", err)
	}
	if rule.ActivationThreshold != models.RuleThresholdMax {
		t.Errorf("threshold = %.2f, want clamped to %.2f", rule.ActivationThreshold, models.RuleThresholdMax)
	}

	for i := 0; i < 40; i++ {
		if err := engine.AdjustThreshold("r", -0.02); err != nil {
			t.Fatalf("AdjustThreshold() error = %v", err)
		}
	}
	rule, _ = store.GetRule("r")
	if rule.ActivationThreshold != models.RuleThresholdMin {
		t.Errorf("threshold = %.2f, want clamped to %.2f", rule.ActivationThreshold, models.RuleThresholdMin)
	}

	if err := engine.AdjustThreshold("missing", 0.02); err != ErrRuleNotFound {
		t.Errorf("AdjustThreshold(missing) = %v, want ErrRuleNotFound", err)
	}
}

func TestUpsertValidation(t *testing.T) {
	store := storage.NewMemoryStore()
	engine, err := NewRuleEngine(store)
	if err != nil {
		t.Fatalf("NewRuleEngine() error = %v", err)
	}

	tests := []struct {
		name    string
		rule    models.Rule
		wantErr bool
	}{
		{
			"valid",
			models.Rule{ID: "ok", Name: "ok", Action: models.ActionFlag,
				Conditions: MustConditions([]models.RuleCondition{
					{Signal: "scores.spam", Operator: "gte", Threshold: 0.5, Weight: 1},
				})},
			false,
		},
		{
			"missing id",
			models.Rule{Name: "x", Action: models.ActionFlag, Conditions: MustConditions(nil)},
			true,
		},
		{
			"bad action",
			models.Rule{ID: "x", Name: "x", Action: "nuke", Conditions: MustConditions(nil)},
			true,
		},
		{
			"bad operator",
			models.Rule{ID: "x", Name: "x", Action: models.ActionFlag,
				Conditions: MustConditions([]models.RuleCondition{
					{Signal: "scores.spam", Operator: "between", Threshold: 0.5, Weight: 1},
				})},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := tt.rule
			err := engine.Upsert(&rule)
			if (err != nil) != tt.wantErr {
				t.Errorf("Upsert() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
