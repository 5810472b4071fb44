package models

import (
	"time"

	"github.com/google/uuid"
)

// Severity ratings a community voter can give a resolved decision.
const (
	SeverityRatingTooStrict  = "too_strict"
	SeverityRatingAccurate   = "accurate"
	SeverityRatingTooLenient = "too_lenient"
)

// ValidSeverityRating reports whether r is a known severity rating.
func ValidSeverityRating(r string) bool {
	switch r {
	case SeverityRatingTooStrict, SeverityRatingAccurate, SeverityRatingTooLenient:
		return true
	}
	return false
}

// FeedbackVote is one community member's assessment of a resolved queue item.
// One vote per (queue item, voter); resubmission overwrites.
type FeedbackVote struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	QueueItemID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_votes_item_voter" json:"queue_item_id"`
	ContentID      string    `gorm:"not null;size:255;index" json:"content_id"`
	VoterID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_votes_item_voter" json:"voter_id"`
	WasAccurate    bool      `gorm:"not null" json:"was_accurate"`
	SeverityRating string    `gorm:"not null;size:20" json:"severity_rating"`
	VoterWeight    float64   `gorm:"not null" json:"voter_weight"`
	SubmittedAt    time.Time `gorm:"index" json:"submitted_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
