package models

import (
	"time"

	"gorm.io/datatypes"
)

// Rule is a data-defined weighted condition set mapping signals and context
// to a moderation action. Rules are interpreted by the rule engine, never
// compiled in; editing a rule must not require a redeploy.
type Rule struct {
	ID                  string         `gorm:"primaryKey;size:100" json:"id"`
	Name                string         `gorm:"not null;size:255" json:"name"`
	Priority            int            `gorm:"not null;index" json:"priority"`
	Conditions          datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'" json:"conditions"`
	Action              string         `gorm:"not null;size:20" json:"action"`
	Confidence          float64        `gorm:"not null;default:0.8" json:"confidence"`
	ActivationThreshold float64        `gorm:"not null;default:0.6" json:"activation_threshold"`
	IsActive            bool           `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// RuleCondition is the JSON shape of one entry in Rule.Conditions.
// Signal is a dotted path into the evaluation bundle, e.g. "scores.spam"
// or "reputation.tier_rank".
type RuleCondition struct {
	Signal    string  `json:"signal"`
	Operator  string  `json:"operator"`
	Threshold float64 `json:"threshold"`
	Weight    float64 `json:"weight"`
}

// Bounds for feedback-driven activation threshold adjustment. The step is
// deliberately small to avoid oscillation.
const (
	RuleThresholdMin  = 0.40
	RuleThresholdMax  = 0.90
	RuleThresholdStep = 0.02
)
