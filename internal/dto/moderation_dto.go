package dto

import (
	"time"

	"github.com/Sankura23/woofadaar-moderation/internal/models"
	"github.com/google/uuid"
)

type EvaluateRequest struct {
	ContentID   string `json:"content_id"`
	ContentType string `json:"content_type"`
	Content     string `json:"content"`
	AnalyzeOnly bool   `json:"analyze_only"`
}

type EvaluateResponse struct {
	ContentID        string              `json:"content_id"`
	Scores           models.SignalScores `json:"scores"`
	ShouldFlag       bool                `json:"should_flag"`
	Severity         string              `json:"severity"`
	Action           string              `json:"action"`
	Confidence       float64             `json:"confidence"`
	RuleIDsTriggered []string            `json:"rule_ids_triggered"`
	Queued           bool                `json:"queued"`
	ComputedAt       time.Time           `json:"computed_at"`
}

type QueueListResponse struct {
	Items []models.QueueItem `json:"items"`
	Stats QueueStats         `json:"stats"`
}

type QueueStats struct {
	TotalPending  int64 `json:"total_pending"`
	CriticalItems int64 `json:"critical_items"`
	AutoFlagged   int64 `json:"auto_flagged"`
}

type ResolveRequest struct {
	QueueItemID    uuid.UUID `json:"queue_item_id"`
	Action         string    `json:"action"`
	ModeratorNotes string    `json:"moderator_notes"`
}

type CreateReportRequest struct {
	ContentID    string   `json:"content_id"`
	ContentType  string   `json:"content_type"`
	Category     string   `json:"category"`
	Reason       string   `json:"reason"`
	Description  string   `json:"description,omitempty"`
	EvidenceURLs []string `json:"evidence_urls,omitempty"`
}

type FeedbackRequest struct {
	QueueItemID    uuid.UUID `json:"queue_item_id"`
	WasAccurate    bool      `json:"was_accurate"`
	SeverityRating string    `json:"severity_rating"`
}

type UpsertRuleRequest struct {
	Name                string                 `json:"name"`
	Priority            int                    `json:"priority"`
	Conditions          []models.RuleCondition `json:"conditions"`
	Action              string                 `json:"action"`
	Confidence          float64                `json:"confidence"`
	ActivationThreshold float64                `json:"activation_threshold"`
	IsActive            *bool                  `json:"is_active,omitempty"`
}
