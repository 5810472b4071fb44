package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Report categories and the priorities derived from them.
const (
	ReportCategorySpam           = "spam"
	ReportCategoryInappropriate  = "inappropriate"
	ReportCategoryHarassment     = "harassment"
	ReportCategoryFake           = "fake"
	ReportCategoryMisinformation = "misinformation"
	ReportCategoryOther          = "other"

	ReportPriorityMedium = "medium"
	ReportPriorityHigh   = "high"
	ReportPriorityUrgent = "urgent"

	ReportStatusPending   = "pending"
	ReportStatusReviewing = "reviewing"
	ReportStatusResolved  = "resolved"
)

// ValidReportCategory reports whether c is a known report category.
func ValidReportCategory(c string) bool {
	switch c {
	case ReportCategorySpam, ReportCategoryInappropriate, ReportCategoryHarassment,
		ReportCategoryFake, ReportCategoryMisinformation, ReportCategoryOther:
		return true
	}
	return false
}

// ReportPriorityFor derives priority deterministically from category:
// misinformation is urgent, harassment and fake are high, everything else medium.
func ReportPriorityFor(category string) string {
	switch category {
	case ReportCategoryMisinformation:
		return ReportPriorityUrgent
	case ReportCategoryHarassment, ReportCategoryFake:
		return ReportPriorityHigh
	}
	return ReportPriorityMedium
}

// ContentReport is a user-initiated flag on a piece of content.
type ContentReport struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ContentID    string         `gorm:"not null;size:255;index" json:"content_id"`
	ContentType  string         `gorm:"not null;size:50" json:"content_type"`
	ReporterID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"reporter_id"`
	Category     string         `gorm:"not null;size:50" json:"category"`
	Reason       string         `gorm:"not null;size:500" json:"reason"`
	Description  string         `gorm:"size:2000" json:"description,omitempty"`
	EvidenceURLs datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"evidence_urls,omitempty"`
	Priority     string         `gorm:"not null;size:20" json:"priority"`
	Status       string         `gorm:"not null;default:'pending';size:20;index" json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	Reporter     User           `gorm:"foreignKey:ReporterID" json:"-"`
}
