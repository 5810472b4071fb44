package models

import (
	"time"

	"github.com/google/uuid"
)

// Trust tiers, a pure step function of the overall score.
const (
	TierRestricted = "restricted"
	TierNew        = "new"
	TierTrusted    = "trusted"
	TierExpert     = "expert"
	TierModerator  = "moderator"
	TierAdmin      = "admin"
)

// TierForScore maps an overall score (0-1000) to its trust tier.
func TierForScore(score float64) string {
	switch {
	case score < 50:
		return TierRestricted
	case score < 150:
		return TierNew
	case score < 300:
		return TierTrusted
	case score < 500:
		return TierExpert
	case score < 1000:
		return TierModerator
	}
	return TierAdmin
}

// TierRank orders tiers for rule conditions (reputation.tier_rank).
func TierRank(tier string) int {
	switch tier {
	case TierRestricted:
		return 0
	case TierNew:
		return 1
	case TierTrusted:
		return 2
	case TierExpert:
		return 3
	case TierModerator:
		return 4
	case TierAdmin:
		return 5
	}
	return 0
}

// ReputationScore holds the eight weighted behavioral factors for a user.
// Each factor is 0-100; the overall score is scaled to 0-1000.
type ReputationScore struct {
	ID                   uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID               uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	ContentQuality       float64   `gorm:"not null;default:10" json:"content_quality"`
	CommunityHelpfulness float64   `gorm:"not null;default:10" json:"community_helpfulness"`
	ConsistentActivity   float64   `gorm:"not null;default:10" json:"consistent_activity"`
	ModerationHistory    float64   `gorm:"not null;default:10" json:"moderation_history"`
	Expertise            float64   `gorm:"not null;default:10" json:"expertise"`
	CommunityTrust       float64   `gorm:"not null;default:10" json:"community_trust"`
	AccountMaturity      float64   `gorm:"not null;default:10" json:"account_maturity"`
	BehaviorPattern      float64   `gorm:"not null;default:10" json:"behavior_pattern"`
	OverallScore         float64   `gorm:"not null;index" json:"overall_score"`
	TrustTier            string    `gorm:"not null;size:20" json:"trust_tier"`
	LastCalculated       time.Time `json:"last_calculated"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// ReputationEvent is an append-only record of a single factor delta.
type ReputationEvent struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Factor    string    `gorm:"not null;size:50" json:"factor"`
	Delta     float64   `gorm:"not null" json:"delta"`
	Source    string    `gorm:"not null;size:50" json:"source"`
	RefID     string    `gorm:"size:255" json:"ref_id,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
