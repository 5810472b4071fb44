// Package storage is the persistence port for the moderation subsystem.
// Callers receive a typed ErrUnavailable instead of fabricated fallback data
// when the backing store cannot be reached, so degraded results stay visible.
package storage

import (
	"errors"
	"time"

	"github.com/Sankura23/woofadaar-moderation/internal/models"
	"github.com/google/uuid"
)

var (
	// ErrUnavailable marks a storage backend failure. Handlers surface it as
	// a degraded response, never as silently substituted data.
	ErrUnavailable = errors.New("storage unavailable")

	// ErrNotFound marks a missing row.
	ErrNotFound = errors.New("not found")
)

// Queue listing page sizes. Both store implementations and the HTTP handler
// clamp to the same bounds so a large limit is capped, never silently reset.
const (
	DefaultQueueLimit = 50
	MaxQueueLimit     = 100
)

// QueueFilters narrows ListQueueItems. Zero values mean "no filter".
type QueueFilters struct {
	Status      string
	Severity    string
	ContentType string
	Limit       int
}

// clampLimit normalizes a requested page size to the shared bounds.
func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultQueueLimit
	}
	if limit > MaxQueueLimit {
		return MaxQueueLimit
	}
	return limit
}

// QueueStats is the summary returned alongside queue listings.
type QueueStats struct {
	TotalPending  int64
	CriticalItems int64
	AutoFlagged   int64
}

// Store is the moderation persistence port. The GORM implementation backs
// production; the memory implementation backs tests.
type Store interface {
	// Moderation results
	CreateResult(r *models.ModerationResult) error
	LatestResultForContent(contentID string) (*models.ModerationResult, error)
	ResultsInWindow(start, end time.Time) ([]models.ModerationResult, error)

	// Queue
	CreateQueueItem(item *models.QueueItem) error
	ActiveQueueItemForContent(contentID string) (*models.QueueItem, error)
	GetQueueItem(id uuid.UUID) (*models.QueueItem, error)
	UpdateQueueItem(item *models.QueueItem) error
	ListQueueItems(f QueueFilters) ([]models.QueueItem, error)
	QueueStats() (QueueStats, error)
	QueueItemsInWindow(start, end time.Time) ([]models.QueueItem, error)

	// Audit actions
	CreateAction(a *models.ModerationAction) error
	ActionsInWindow(start, end time.Time) ([]models.ModerationAction, error)

	// Reports
	CreateReport(r *models.ContentReport) error
	ActiveReportByReporter(contentID string, reporterID uuid.UUID) (*models.ContentReport, error)
	GetReport(id uuid.UUID) (*models.ContentReport, error)
	UpdateReportStatus(id uuid.UUID, status string) error

	// Reputation
	GetReputation(userID uuid.UUID) (*models.ReputationScore, error)
	SaveReputation(s *models.ReputationScore) error
	AppendReputationEvent(e *models.ReputationEvent) error
	AllReputations() ([]models.ReputationScore, error)

	// Rules
	ActiveRules() ([]models.Rule, error)
	AllRules() ([]models.Rule, error)
	GetRule(id string) (*models.Rule, error)
	SaveRule(r *models.Rule) error

	// Feedback votes
	UpsertVote(v *models.FeedbackVote) error
	VotesForItem(queueItemID uuid.UUID) ([]models.FeedbackVote, error)
	VotesInWindow(start, end time.Time) ([]models.FeedbackVote, error)

	// Transact runs fn against a transaction-bound store. All writes inside
	// fn commit or roll back together.
	Transact(fn func(tx Store) error) error
}
