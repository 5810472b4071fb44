package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/Sankura23/woofadaar-moderation/internal/models"
	"github.com/Sankura23/woofadaar-moderation/internal/storage"
	"gorm.io/datatypes"
)

var ErrRuleNotFound = errors.New("rule not found")

// SignalBundle is the flat signal map the rule engine evaluates against.
// Keys are dotted paths (scores.spam, reputation.tier_rank, context.hour,
// flags.promotional); boolean flags are encoded as 0/1.
type SignalBundle map[string]float64

// RuleMatch describes a triggered rule.
type RuleMatch struct {
	RuleID     string  `json:"rule_id"`
	Name       string  `json:"name"`
	Action     string  `json:"action"`
	Confidence float64 `json:"confidence"`
	MatchScore float64 `json:"match_score"`
}

type compiledRule struct {
	rule       models.Rule
	conditions []models.RuleCondition
}

// RuleEngine interprets declarative rules loaded from storage. Rules are
// ordered by priority descending, ties broken by id ascending; the first
// triggering rule's action wins, but every triggering rule id is recorded.
type RuleEngine struct {
	store storage.Store
	mu    sync.RWMutex
	rules []compiledRule
}

func NewRuleEngine(store storage.Store) (*RuleEngine, error) {
	e := &RuleEngine{store: store}
	if err := e.Reload(); err != nil {
		return nil, err
	}
	return e, nil
}

// Reload re-reads active rules from storage. Safe to call while evaluations
// are running.
func (e *RuleEngine) Reload() error {
	rules, err := e.store.ActiveRules()
	if err != nil {
		return fmt.Errorf("loading rules: %w", err)
	}

	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		var conditions []models.RuleCondition
		if err := json.Unmarshal(r.Conditions, &conditions); err != nil {
			slog.Warn("skipping rule with malformed conditions", "rule_id", r.ID, "error", err)
			continue
		}
		compiled = append(compiled, compiledRule{rule: r, conditions: conditions})
	}

	sort.SliceStable(compiled, func(i, j int) bool {
		if compiled[i].rule.Priority != compiled[j].rule.Priority {
			return compiled[i].rule.Priority > compiled[j].rule.Priority
		}
		return compiled[i].rule.ID < compiled[j].rule.ID
	})

	e.mu.Lock()
	e.rules = compiled
	e.mu.Unlock()
	return nil
}

// Evaluate runs the bundle through every rule in priority order. The winner
// is the first rule whose weighted match score reaches its activation
// threshold; all triggering rule ids are returned for traceability.
func (e *RuleEngine) Evaluate(signals SignalBundle) (*RuleMatch, []string) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var winner *RuleMatch
	triggered := []string{}

	for _, cr := range e.rules {
		score, ok := matchScore(cr, signals)
		if !ok {
			continue
		}
		if score < cr.rule.ActivationThreshold {
			continue
		}
		triggered = append(triggered, cr.rule.ID)
		if winner == nil {
			winner = &RuleMatch{
				RuleID:     cr.rule.ID,
				Name:       cr.rule.Name,
				Action:     cr.rule.Action,
				Confidence: cr.rule.Confidence,
				MatchScore: score,
			}
		}
	}
	return winner, triggered
}

// matchScore computes the weighted fraction of met conditions. A rule with an
// unknown operator or no usable weight is skipped, never fatal.
func matchScore(cr compiledRule, signals SignalBundle) (float64, bool) {
	var totalWeight, metWeight float64
	for _, c := range cr.conditions {
		met, err := conditionMet(c, signals)
		if err != nil {
			slog.Warn("skipping malformed rule", "rule_id", cr.rule.ID, "error", err)
			return 0, false
		}
		totalWeight += c.Weight
		if met {
			metWeight += c.Weight
		}
	}
	if totalWeight <= 0 {
		return 0, false
	}
	return metWeight / totalWeight, true
}

func conditionMet(c models.RuleCondition, signals SignalBundle) (bool, error) {
	value, ok := signals[c.Signal]
	if !ok {
		// Unknown signal path: the condition simply does not hold.
		return false, nil
	}
	switch c.Operator {
	case "gte":
		return value >= c.Threshold, nil
	case "gt":
		return value > c.Threshold, nil
	case "lte":
		return value <= c.Threshold, nil
	case "lt":
		return value < c.Threshold, nil
	case "eq":
		return value == c.Threshold, nil
	}
	return false, fmt.Errorf("unknown condition operator %q", c.Operator)
}

// AdjustThreshold moves a rule's activation threshold by delta, clamped to
// [RuleThresholdMin, RuleThresholdMax], and persists the change.
func (e *RuleEngine) AdjustThreshold(ruleID string, delta float64) error {
	rule, err := e.store.GetRule(ruleID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrRuleNotFound
		}
		return err
	}

	threshold := rule.ActivationThreshold + delta
	if threshold < models.RuleThresholdMin {
		threshold = models.RuleThresholdMin
	}
	if threshold > models.RuleThresholdMax {
		threshold = models.RuleThresholdMax
	}
	if threshold == rule.ActivationThreshold {
		return nil
	}

	rule.ActivationThreshold = threshold
	if err := e.store.SaveRule(rule); err != nil {
		return err
	}
	slog.Info("rule threshold adjusted", "rule_id", ruleID, "threshold", threshold, "delta", delta)
	return e.Reload()
}

// Upsert validates and saves a rule, then reloads the engine.
func (e *RuleEngine) Upsert(rule *models.Rule) error {
	if rule.ID == "" || rule.Name == "" {
		return errors.New("rule id and name are required")
	}
	if !validRuleAction(rule.Action) {
		return fmt.Errorf("invalid rule action %q", rule.Action)
	}
	var conditions []models.RuleCondition
	if err := json.Unmarshal(rule.Conditions, &conditions); err != nil {
		return fmt.Errorf("invalid conditions: %w", err)
	}
	for _, c := range conditions {
		if _, err := conditionMet(c, SignalBundle{}); err != nil {
			return err
		}
	}
	if rule.ActivationThreshold == 0 {
		rule.ActivationThreshold = 0.6
	}
	if rule.Confidence == 0 {
		rule.Confidence = 0.8
	}
	if err := e.store.SaveRule(rule); err != nil {
		return err
	}
	return e.Reload()
}

// Deactivate turns a rule off without deleting it.
func (e *RuleEngine) Deactivate(ruleID string) error {
	rule, err := e.store.GetRule(ruleID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrRuleNotFound
		}
		return err
	}
	rule.IsActive = false
	if err := e.store.SaveRule(rule); err != nil {
		return err
	}
	return e.Reload()
}

// Rules returns all rules, active and inactive, for the admin surface.
func (e *RuleEngine) Rules() ([]models.Rule, error) {
	return e.store.AllRules()
}

func validRuleAction(a string) bool {
	switch a {
	case models.ActionAllow, models.ActionFlag, models.ActionReview, models.ActionBlock:
		return true
	}
	return false
}

// MustConditions marshals conditions for rule seeding and tests.
func MustConditions(conditions []models.RuleCondition) datatypes.JSON {
	b, err := json.Marshal(conditions)
	if err != nil {
		panic(err)
	}
	return datatypes.JSON(b)
}
