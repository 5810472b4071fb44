package models

import (
	"time"

	"github.com/google/uuid"
)

// Queue item lifecycle: pending -> reviewing -> approved|rejected.
// Terminal states are final; re-flagging resolved content creates a new item.
const (
	QueueStatusPending   = "pending"
	QueueStatusReviewing = "reviewing"
	QueueStatusApproved  = "approved"
	QueueStatusRejected  = "rejected"
)

// QueueTerminal reports whether status is a terminal queue state.
func QueueTerminal(status string) bool {
	return status == QueueStatusApproved || status == QueueStatusRejected
}

// QueueItem is a unit of content awaiting human resolution. At most one
// non-terminal item may exist per content id.
type QueueItem struct {
	ID                uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ContentID         string     `gorm:"not null;size:255;index" json:"content_id"`
	ContentType       string     `gorm:"not null;size:50;index" json:"content_type"`
	Reason            string     `gorm:"not null;size:500" json:"reason"`
	Severity          string     `gorm:"not null;size:20;index" json:"severity"`
	SeverityRank      int        `gorm:"not null;index" json:"-"`
	Status            string     `gorm:"not null;default:'pending';size:20;index" json:"status"`
	AutoFlagged       bool       `gorm:"default:false" json:"auto_flagged"`
	FlagScore         float64    `gorm:"not null" json:"flag_score"`
	AuthorID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"author_id"`
	ReportedBy        *uuid.UUID `gorm:"type:uuid" json:"reported_by,omitempty"`
	ReportID          *uuid.UUID `gorm:"type:uuid" json:"report_id,omitempty"`
	AssignedModerator *uuid.UUID `gorm:"type:uuid" json:"assigned_moderator,omitempty"`
	ModeratorNotes    string     `gorm:"size:1000" json:"moderator_notes,omitempty"`
	ActionTaken       string     `gorm:"size:20" json:"action_taken,omitempty"`
	CreatedAt         time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	ProcessedAt       *time.Time `json:"processed_at,omitempty"`
}

// Resolution actions a moderator may take on a queue item.
const (
	ResolveApprove = "approve"
	ResolveReject  = "reject"
	ResolveEdit    = "edit"
	ResolveWarn    = "warn"
	ResolveBan     = "ban"
)

// ValidResolveAction reports whether a is a known resolution action.
func ValidResolveAction(a string) bool {
	switch a {
	case ResolveApprove, ResolveReject, ResolveEdit, ResolveWarn, ResolveBan:
		return true
	}
	return false
}

// ModerationAction is the audit record written when a queue item is resolved.
type ModerationAction struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	QueueItemID uuid.UUID `gorm:"type:uuid;not null;index" json:"queue_item_id"`
	ContentID   string    `gorm:"not null;size:255;index" json:"content_id"`
	ModeratorID uuid.UUID `gorm:"type:uuid;not null;index" json:"moderator_id"`
	Action      string    `gorm:"not null;size:20" json:"action"`
	Notes       string    `gorm:"size:1000" json:"notes,omitempty"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}
