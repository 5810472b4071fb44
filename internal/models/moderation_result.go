package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Content types accepted by the moderation pipeline.
const (
	ContentTypeQuestion   = "question"
	ContentTypeAnswer     = "answer"
	ContentTypeForumPost  = "forum_post"
	ContentTypeForumReply = "forum_reply"
	ContentTypeStory      = "story"
	ContentTypeComment    = "comment"
)

// ValidContentType reports whether t is one of the known content types.
func ValidContentType(t string) bool {
	switch t {
	case ContentTypeQuestion, ContentTypeAnswer, ContentTypeForumPost,
		ContentTypeForumReply, ContentTypeStory, ContentTypeComment:
		return true
	}
	return false
}

// Moderation actions, least to most restrictive.
const (
	ActionAllow  = "allow"
	ActionFlag   = "flag"
	ActionReview = "review"
	ActionBlock  = "block"
)

// Severity levels derived from the winning score magnitude.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// SeverityRank orders severities for queue sorting. Unknown severities rank
// lowest so they never displace real ones.
func SeverityRank(severity string) int {
	switch severity {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// SeverityForScore maps the winning score magnitude to a severity level.
func SeverityForScore(score float64) string {
	switch {
	case score < 0.4:
		return SeverityLow
	case score < 0.6:
		return SeverityMedium
	case score < 0.85:
		return SeverityHigh
	}
	return SeverityCritical
}

// ModerationResult is the immutable outcome of one evaluation. Re-evaluating
// the same content creates a new row linked to the same content id.
type ModerationResult struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ContentID        string         `gorm:"not null;size:255;index" json:"content_id"`
	ContentType      string         `gorm:"not null;size:50" json:"content_type"`
	AuthorID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"author_id"`
	Scores           datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"scores"`
	ShouldFlag       bool           `gorm:"not null" json:"should_flag"`
	Severity         string         `gorm:"not null;size:20" json:"severity"`
	Action           string         `gorm:"not null;size:20;index" json:"action"`
	Confidence       float64        `gorm:"not null" json:"confidence"`
	RuleIDsTriggered datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"rule_ids_triggered"`
	AutoResolved     bool           `gorm:"default:false" json:"auto_resolved"`
	ComputedAt       time.Time      `gorm:"not null;index" json:"computed_at"`
	CreatedAt        time.Time      `json:"created_at"`
}

// SignalScores is the JSON shape stored in ModerationResult.Scores.
type SignalScores struct {
	Spam               float64 `json:"spam"`
	Toxicity           float64 `json:"toxicity"`
	Quality            float64 `json:"quality"`
	CulturalAdjustment float64 `json:"cultural_adjustment"`
}
