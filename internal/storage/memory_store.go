package storage

import (
	"sort"
	"sync"
	"time"

	"github.com/Sankura23/woofadaar-moderation/internal/models"
	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used by tests. Writes are serialized;
// Transact provides atomicity by exclusion rather than rollback, which is
// sufficient for the single-writer call patterns the services use.
type MemoryStore struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	results     []models.ModerationResult
	queueItems  map[uuid.UUID]*models.QueueItem
	actions     []models.ModerationAction
	reports     map[uuid.UUID]*models.ContentReport
	reputations map[uuid.UUID]*models.ReputationScore
	repEvents   []models.ReputationEvent
	rules       map[string]*models.Rule
	votes       map[string]*models.FeedbackVote
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		queueItems:  make(map[uuid.UUID]*models.QueueItem),
		reports:     make(map[uuid.UUID]*models.ContentReport),
		reputations: make(map[uuid.UUID]*models.ReputationScore),
		rules:       make(map[string]*models.Rule),
		votes:       make(map[string]*models.FeedbackVote),
	}
}

func inWindow(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

func (s *MemoryStore) CreateResult(r *models.ModerationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	s.results = append(s.results, *r)
	return nil
}

func (s *MemoryStore) LatestResultForContent(contentID string) (*models.ModerationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *models.ModerationResult
	for i := range s.results {
		r := &s.results[i]
		if r.ContentID != contentID {
			continue
		}
		if latest == nil || r.ComputedAt.After(latest.ComputedAt) {
			latest = r
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	out := *latest
	return &out, nil
}

func (s *MemoryStore) ResultsInWindow(start, end time.Time) ([]models.ModerationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ModerationResult
	for _, r := range s.results {
		if inWindow(r.ComputedAt, start, end) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemoryStore) CreateQueueItem(item *models.QueueItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	cp := *item
	s.queueItems[item.ID] = &cp
	return nil
}

func (s *MemoryStore) ActiveQueueItemForContent(contentID string) (*models.QueueItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.queueItems {
		if item.ContentID == contentID && !models.QueueTerminal(item.Status) {
			cp := *item
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetQueueItem(id uuid.UUID) (*models.QueueItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.queueItems[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (s *MemoryStore) UpdateQueueItem(item *models.QueueItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.queueItems[item.ID]; !ok {
		return ErrNotFound
	}
	cp := *item
	s.queueItems[item.ID] = &cp
	return nil
}

func (s *MemoryStore) ListQueueItems(f QueueFilters) ([]models.QueueItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := clampLimit(f.Limit)

	var items []models.QueueItem
	for _, item := range s.queueItems {
		if f.Status != "" && item.Status != f.Status {
			continue
		}
		if f.Severity != "" && item.Severity != f.Severity {
			continue
		}
		if f.ContentType != "" && item.ContentType != f.ContentType {
			continue
		}
		items = append(items, *item)
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].SeverityRank != items[j].SeverityRank {
			return items[i].SeverityRank > items[j].SeverityRank
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *MemoryStore) QueueStats() (QueueStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var stats QueueStats
	for _, item := range s.queueItems {
		if item.Status == models.QueueStatusPending {
			stats.TotalPending++
		}
		if !models.QueueTerminal(item.Status) {
			if item.Severity == models.SeverityCritical {
				stats.CriticalItems++
			}
			if item.AutoFlagged {
				stats.AutoFlagged++
			}
		}
	}
	return stats, nil
}

func (s *MemoryStore) QueueItemsInWindow(start, end time.Time) ([]models.QueueItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.QueueItem
	for _, item := range s.queueItems {
		if inWindow(item.CreatedAt, start, end) {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (s *MemoryStore) CreateAction(a *models.ModerationAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	s.actions = append(s.actions, *a)
	return nil
}

func (s *MemoryStore) ActionsInWindow(start, end time.Time) ([]models.ModerationAction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ModerationAction
	for _, a := range s.actions {
		if inWindow(a.CreatedAt, start, end) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *MemoryStore) CreateReport(r *models.ContentReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	cp := *r
	s.reports[r.ID] = &cp
	return nil
}

func (s *MemoryStore) ActiveReportByReporter(contentID string, reporterID uuid.UUID) (*models.ContentReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.reports {
		if r.ContentID == contentID && r.ReporterID == reporterID &&
			(r.Status == models.ReportStatusPending || r.Status == models.ReportStatusReviewing) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetReport(id uuid.UUID) (*models.ContentReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *MemoryStore) UpdateReportStatus(id uuid.UUID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return ErrNotFound
	}
	r.Status = status
	return nil
}

func (s *MemoryStore) GetReputation(userID uuid.UUID) (*models.ReputationScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	score, ok := s.reputations[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *score
	return &cp, nil
}

func (s *MemoryStore) SaveReputation(score *models.ReputationScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if score.ID == uuid.Nil {
		score.ID = uuid.New()
	}
	cp := *score
	s.reputations[score.UserID] = &cp
	return nil
}

func (s *MemoryStore) AppendReputationEvent(e *models.ReputationEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	s.repEvents = append(s.repEvents, *e)
	return nil
}

func (s *MemoryStore) AllReputations() ([]models.ReputationScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ReputationScore, 0, len(s.reputations))
	for _, score := range s.reputations {
		out = append(out, *score)
	}
	return out, nil
}

func (s *MemoryStore) ActiveRules() ([]models.Rule, error) {
	all, _ := s.AllRules()
	out := all[:0]
	for _, r := range all {
		if r.IsActive {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemoryStore) AllRules() ([]models.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Rule, 0, len(s.rules))
	for _, r := range s.rules {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) GetRule(id string) (*models.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rules[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *MemoryStore) SaveRule(r *models.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.rules[r.ID] = &cp
	return nil
}

func (s *MemoryStore) UpsertVote(v *models.FeedbackVote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := v.QueueItemID.String() + "/" + v.VoterID.String()
	if existing, ok := s.votes[key]; ok {
		existing.WasAccurate = v.WasAccurate
		existing.SeverityRating = v.SeverityRating
		existing.VoterWeight = v.VoterWeight
		existing.SubmittedAt = v.SubmittedAt
		*v = *existing
		return nil
	}
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	cp := *v
	s.votes[key] = &cp
	return nil
}

func (s *MemoryStore) VotesForItem(queueItemID uuid.UUID) ([]models.FeedbackVote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.FeedbackVote
	for _, v := range s.votes {
		if v.QueueItemID == queueItemID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (s *MemoryStore) VotesInWindow(start, end time.Time) ([]models.FeedbackVote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.FeedbackVote
	for _, v := range s.votes {
		if inWindow(v.SubmittedAt, start, end) {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (s *MemoryStore) Transact(fn func(tx Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(s)
}
