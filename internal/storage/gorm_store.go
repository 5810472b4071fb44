package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/Sankura23/woofadaar-moderation/internal/database"
	"github.com/Sankura23/woofadaar-moderation/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStore implements Store on top of PostgreSQL via GORM.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// wrap converts GORM errors to the port's typed errors.
func wrap(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func (s *GormStore) CreateResult(r *models.ModerationResult) error {
	return wrap(s.db.Create(r).Error)
}

func (s *GormStore) LatestResultForContent(contentID string) (*models.ModerationResult, error) {
	var result models.ModerationResult
	err := s.db.Scopes(database.ForContent(contentID)).
		Order("computed_at DESC").First(&result).Error
	if err != nil {
		return nil, wrap(err)
	}
	return &result, nil
}

func (s *GormStore) ResultsInWindow(start, end time.Time) ([]models.ModerationResult, error) {
	var results []models.ModerationResult
	err := s.db.Scopes(database.WithinWindow("computed_at", start, end)).Find(&results).Error
	return results, wrap(err)
}

func (s *GormStore) CreateQueueItem(item *models.QueueItem) error {
	return wrap(s.db.Create(item).Error)
}

func (s *GormStore) ActiveQueueItemForContent(contentID string) (*models.QueueItem, error) {
	var item models.QueueItem
	err := s.db.Scopes(database.ForContent(contentID)).
		Where("status IN ?", []string{models.QueueStatusPending, models.QueueStatusReviewing}).
		First(&item).Error
	if err != nil {
		return nil, wrap(err)
	}
	return &item, nil
}

func (s *GormStore) GetQueueItem(id uuid.UUID) (*models.QueueItem, error) {
	var item models.QueueItem
	if err := s.db.First(&item, "id = ?", id).Error; err != nil {
		return nil, wrap(err)
	}
	return &item, nil
}

func (s *GormStore) UpdateQueueItem(item *models.QueueItem) error {
	return wrap(s.db.Save(item).Error)
}

func (s *GormStore) ListQueueItems(f QueueFilters) ([]models.QueueItem, error) {
	limit := clampLimit(f.Limit)

	query := s.db.Model(&models.QueueItem{}).Scopes(database.WithStatus(f.Status))
	if f.Severity != "" {
		query = query.Where("severity = ?", f.Severity)
	}
	if f.ContentType != "" {
		query = query.Where("content_type = ?", f.ContentType)
	}

	var items []models.QueueItem
	err := query.Order("severity_rank DESC, created_at DESC").Limit(limit).Find(&items).Error
	return items, wrap(err)
}

func (s *GormStore) QueueStats() (QueueStats, error) {
	var stats QueueStats
	q := s.db.Model(&models.QueueItem{})
	if err := q.Where("status = ?", models.QueueStatusPending).Count(&stats.TotalPending).Error; err != nil {
		return stats, wrap(err)
	}
	active := []string{models.QueueStatusPending, models.QueueStatusReviewing}
	if err := s.db.Model(&models.QueueItem{}).
		Where("status IN ? AND severity = ?", active, models.SeverityCritical).
		Count(&stats.CriticalItems).Error; err != nil {
		return stats, wrap(err)
	}
	if err := s.db.Model(&models.QueueItem{}).
		Where("status IN ? AND auto_flagged = true", active).
		Count(&stats.AutoFlagged).Error; err != nil {
		return stats, wrap(err)
	}
	return stats, nil
}

func (s *GormStore) QueueItemsInWindow(start, end time.Time) ([]models.QueueItem, error) {
	var items []models.QueueItem
	err := s.db.Scopes(database.WithinWindow("created_at", start, end)).Find(&items).Error
	return items, wrap(err)
}

func (s *GormStore) CreateAction(a *models.ModerationAction) error {
	return wrap(s.db.Create(a).Error)
}

func (s *GormStore) ActionsInWindow(start, end time.Time) ([]models.ModerationAction, error) {
	var actions []models.ModerationAction
	err := s.db.Scopes(database.WithinWindow("created_at", start, end)).Find(&actions).Error
	return actions, wrap(err)
}

func (s *GormStore) CreateReport(r *models.ContentReport) error {
	return wrap(s.db.Create(r).Error)
}

func (s *GormStore) ActiveReportByReporter(contentID string, reporterID uuid.UUID) (*models.ContentReport, error) {
	var report models.ContentReport
	err := s.db.Scopes(database.ForContent(contentID)).
		Where("reporter_id = ? AND status IN ?", reporterID,
			[]string{models.ReportStatusPending, models.ReportStatusReviewing}).
		First(&report).Error
	if err != nil {
		return nil, wrap(err)
	}
	return &report, nil
}

func (s *GormStore) GetReport(id uuid.UUID) (*models.ContentReport, error) {
	var report models.ContentReport
	if err := s.db.First(&report, "id = ?", id).Error; err != nil {
		return nil, wrap(err)
	}
	return &report, nil
}

func (s *GormStore) UpdateReportStatus(id uuid.UUID, status string) error {
	result := s.db.Model(&models.ContentReport{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return wrap(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) GetReputation(userID uuid.UUID) (*models.ReputationScore, error) {
	var score models.ReputationScore
	if err := s.db.First(&score, "user_id = ?", userID).Error; err != nil {
		return nil, wrap(err)
	}
	return &score, nil
}

func (s *GormStore) SaveReputation(score *models.ReputationScore) error {
	return wrap(s.db.Save(score).Error)
}

func (s *GormStore) AppendReputationEvent(e *models.ReputationEvent) error {
	return wrap(s.db.Create(e).Error)
}

func (s *GormStore) AllReputations() ([]models.ReputationScore, error) {
	var scores []models.ReputationScore
	err := s.db.Find(&scores).Error
	return scores, wrap(err)
}

func (s *GormStore) ActiveRules() ([]models.Rule, error) {
	var rules []models.Rule
	err := s.db.Where("is_active = true").
		Order("priority DESC, id ASC").Find(&rules).Error
	return rules, wrap(err)
}

func (s *GormStore) AllRules() ([]models.Rule, error) {
	var rules []models.Rule
	err := s.db.Order("priority DESC, id ASC").Find(&rules).Error
	return rules, wrap(err)
}

func (s *GormStore) GetRule(id string) (*models.Rule, error) {
	var rule models.Rule
	if err := s.db.First(&rule, "id = ?", id).Error; err != nil {
		return nil, wrap(err)
	}
	return &rule, nil
}

func (s *GormStore) SaveRule(r *models.Rule) error {
	return wrap(s.db.Save(r).Error)
}

func (s *GormStore) UpsertVote(v *models.FeedbackVote) error {
	var existing models.FeedbackVote
	err := s.db.Where("queue_item_id = ? AND voter_id = ?", v.QueueItemID, v.VoterID).
		First(&existing).Error
	if err == nil {
		existing.WasAccurate = v.WasAccurate
		existing.SeverityRating = v.SeverityRating
		existing.VoterWeight = v.VoterWeight
		existing.SubmittedAt = v.SubmittedAt
		*v = existing
		return wrap(s.db.Save(&existing).Error)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return wrap(err)
	}
	return wrap(s.db.Create(v).Error)
}

func (s *GormStore) VotesForItem(queueItemID uuid.UUID) ([]models.FeedbackVote, error) {
	var votes []models.FeedbackVote
	err := s.db.Where("queue_item_id = ?", queueItemID).Find(&votes).Error
	return votes, wrap(err)
}

func (s *GormStore) VotesInWindow(start, end time.Time) ([]models.FeedbackVote, error) {
	var votes []models.FeedbackVote
	err := s.db.Scopes(database.WithinWindow("submitted_at", start, end)).Find(&votes).Error
	return votes, wrap(err)
}

func (s *GormStore) Transact(fn func(tx Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
