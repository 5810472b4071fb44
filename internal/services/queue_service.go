package services

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Sankura23/woofadaar-moderation/internal/models"
	"github.com/Sankura23/woofadaar-moderation/internal/storage"
	"github.com/google/uuid"
)

var (
	ErrDuplicateActive  = errors.New("an active queue item already exists for this content")
	ErrItemNotFound     = errors.New("queue item not found")
	ErrAlreadyResolved  = errors.New("queue item already resolved")
	ErrInvalidAction    = errors.New("invalid resolution action")
	ErrAlreadyReviewing = errors.New("queue item already claimed by another moderator")
)

// keyedMutex serializes operations per content id. Cross-content operations
// stay fully parallel.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()
	m.Lock()
	return m.Unlock
}

// EnqueueParams are the inputs to a queue insertion.
type EnqueueParams struct {
	ContentID   string
	ContentType string
	AuthorID    uuid.UUID
	Reason      string
	Severity    string
	AutoFlagged bool
	FlagScore   float64
	ReportedBy  *uuid.UUID
	ReportID    *uuid.UUID
}

// QueueService owns the moderation queue lifecycle:
// pending -> reviewing -> approved|rejected.
type QueueService struct {
	store      storage.Store
	reputation *ReputationService
	locks      *keyedMutex
}

func NewQueueService(store storage.Store, reputation *ReputationService) *QueueService {
	return &QueueService{
		store:      store,
		reputation: reputation,
		locks:      newKeyedMutex(),
	}
}

// Enqueue inserts a queue item, enforcing the one-active-item-per-content
// invariant. Duplicate flags while an item is pending return the existing
// item alongside ErrDuplicateActive.
func (s *QueueService) Enqueue(p EnqueueParams) (*models.QueueItem, error) {
	unlock := s.locks.lock(p.ContentID)
	defer unlock()

	existing, err := s.store.ActiveQueueItemForContent(p.ContentID)
	if err == nil {
		return existing, ErrDuplicateActive
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	item := &models.QueueItem{
		ContentID:    p.ContentID,
		ContentType:  p.ContentType,
		AuthorID:     p.AuthorID,
		Reason:       p.Reason,
		Severity:     p.Severity,
		SeverityRank: models.SeverityRank(p.Severity),
		Status:       models.QueueStatusPending,
		AutoFlagged:  p.AutoFlagged,
		FlagScore:    p.FlagScore,
		ReportedBy:   p.ReportedBy,
		ReportID:     p.ReportID,
		CreatedAt:    time.Now(),
	}
	if err := s.store.CreateQueueItem(item); err != nil {
		return nil, err
	}
	slog.Info("queued for moderation", "content_id", p.ContentID,
		"severity", p.Severity, "auto_flagged", p.AutoFlagged)
	return item, nil
}

// Claim transitions pending -> reviewing and assigns the moderator.
func (s *QueueService) Claim(itemID, moderatorID uuid.UUID) (*models.QueueItem, error) {
	item, err := s.getItem(itemID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(item.ContentID)
	defer unlock()

	item, err = s.getItem(itemID)
	if err != nil {
		return nil, err
	}
	if models.QueueTerminal(item.Status) {
		return nil, ErrAlreadyResolved
	}
	if item.Status == models.QueueStatusReviewing &&
		item.AssignedModerator != nil && *item.AssignedModerator != moderatorID {
		return nil, ErrAlreadyReviewing
	}

	item.Status = models.QueueStatusReviewing
	item.AssignedModerator = &moderatorID
	if err := s.store.UpdateQueueItem(item); err != nil {
		return nil, err
	}
	return item, nil
}

// Resolve moves an item to its terminal state, writes the audit action, and
// applies reputation feedback in one transaction, so a resolved item can
// never coexist with stale reputation.
func (s *QueueService) Resolve(itemID, moderatorID uuid.UUID, action, notes string) (*models.QueueItem, error) {
	if !models.ValidResolveAction(action) {
		return nil, ErrInvalidAction
	}

	item, err := s.getItem(itemID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(item.ContentID)
	defer unlock()

	var resolved *models.QueueItem
	var updates []*ScoreUpdate
	err = s.store.Transact(func(tx storage.Store) error {
		item, err := tx.GetQueueItem(itemID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return ErrItemNotFound
			}
			return err
		}
		if models.QueueTerminal(item.Status) {
			return ErrAlreadyResolved
		}

		now := time.Now()
		item.Status = terminalStatusFor(action)
		item.ActionTaken = action
		item.ModeratorNotes = notes
		item.AssignedModerator = &moderatorID
		item.ProcessedAt = &now
		if err := tx.UpdateQueueItem(item); err != nil {
			return err
		}

		if err := tx.CreateAction(&models.ModerationAction{
			QueueItemID: item.ID,
			ContentID:   item.ContentID,
			ModeratorID: moderatorID,
			Action:      action,
			Notes:       notes,
			CreatedAt:   now,
		}); err != nil {
			return err
		}

		// An unknown author (report on never-evaluated content) gets no
		// reputation feedback; a nil-UUID score row must never exist.
		if item.AuthorID != uuid.Nil {
			update, err := s.reputation.ApplyResolution(tx, item.AuthorID, action, item.Severity, item.ID.String())
			if err != nil {
				return fmt.Errorf("applying reputation feedback: %w", err)
			}
			updates = append(updates, update)
		}

		if item.ReportID != nil {
			if err := tx.UpdateReportStatus(*item.ReportID, models.ReportStatusResolved); err != nil {
				return err
			}
			// Reporter reward only when the report was upheld.
			if item.ReportedBy != nil && item.Status == models.QueueStatusRejected {
				update, err := s.reputation.RewardReporter(tx, *item.ReportedBy, item.ID.String())
				if err != nil {
					return err
				}
				updates = append(updates, update)
			}
		}

		resolved = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Cache and tier observers see the new scores only once the transaction
	// has committed; a rollback leaves them untouched.
	for _, u := range updates {
		u.Publish()
	}

	slog.Info("queue item resolved", "queue_item_id", itemID,
		"content_id", resolved.ContentID, "action", action, "moderator_id", moderatorID)
	return resolved, nil
}

// List returns queue items ordered by severity desc, createdAt desc, plus
// summary stats. The ordering is a hard requirement: operators always see
// the most severe, most recent items first.
func (s *QueueService) List(f storage.QueueFilters) ([]models.QueueItem, storage.QueueStats, error) {
	items, err := s.store.ListQueueItems(f)
	if err != nil {
		return nil, storage.QueueStats{}, err
	}
	stats, err := s.store.QueueStats()
	if err != nil {
		return nil, storage.QueueStats{}, err
	}
	return items, stats, nil
}

func (s *QueueService) getItem(itemID uuid.UUID) (*models.QueueItem, error) {
	item, err := s.store.GetQueueItem(itemID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

// terminalStatusFor maps a resolution action to the item's terminal state.
// Edit and warn keep the content up, so they resolve as approved.
func terminalStatusFor(action string) string {
	switch action {
	case models.ResolveReject, models.ResolveBan:
		return models.QueueStatusRejected
	}
	return models.QueueStatusApproved
}
