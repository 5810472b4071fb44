package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Sankura23/woofadaar-moderation/internal/dto"
	"github.com/Sankura23/woofadaar-moderation/internal/models"
	"github.com/Sankura23/woofadaar-moderation/internal/storage"
	"github.com/google/uuid"
)

var (
	ErrDuplicateReport = errors.New("you already have an open report on this content")
	ErrInvalidReport   = errors.New("invalid report")
)

// ReportService handles user-initiated content reports and links them into
// the moderation queue.
type ReportService struct {
	store storage.Store
	queue *QueueService
}

func NewReportService(store storage.Store, queue *QueueService) *ReportService {
	return &ReportService{store: store, queue: queue}
}

// Create validates and stores a report, then ensures a queue item exists for
// the content. A second report on content that already has an active queue
// item attaches to the existing item rather than duplicating it.
func (s *ReportService) Create(reporterID uuid.UUID, req dto.CreateReportRequest) (*models.ContentReport, *models.QueueItem, error) {
	if strings.TrimSpace(req.ContentID) == "" {
		return nil, nil, fmt.Errorf("%w: content_id is required", ErrInvalidReport)
	}
	if !models.ValidContentType(req.ContentType) {
		return nil, nil, fmt.Errorf("%w: unknown content_type %q", ErrInvalidReport, req.ContentType)
	}
	if !models.ValidReportCategory(req.Category) {
		return nil, nil, fmt.Errorf("%w: unknown category %q", ErrInvalidReport, req.Category)
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, nil, fmt.Errorf("%w: reason is required", ErrInvalidReport)
	}

	if _, err := s.store.ActiveReportByReporter(req.ContentID, reporterID); err == nil {
		return nil, nil, ErrDuplicateReport
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, nil, err
	}

	evidence, err := json.Marshal(req.EvidenceURLs)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: bad evidence urls", ErrInvalidReport)
	}

	report := &models.ContentReport{
		ContentID:    req.ContentID,
		ContentType:  req.ContentType,
		ReporterID:   reporterID,
		Category:     req.Category,
		Reason:       req.Reason,
		Description:  req.Description,
		EvidenceURLs: evidence,
		Priority:     models.ReportPriorityFor(req.Category),
		Status:       models.ReportStatusPending,
	}
	if err := s.store.CreateReport(report); err != nil {
		return nil, nil, err
	}

	// The reporter does not tell us who wrote the content; the latest
	// evaluation result does. Without one the author stays unknown and the
	// resolution skips reputation feedback.
	authorID := uuid.Nil
	if result, err := s.store.LatestResultForContent(req.ContentID); err == nil {
		authorID = result.AuthorID
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, nil, err
	}

	item, err := s.queue.Enqueue(EnqueueParams{
		ContentID:   req.ContentID,
		ContentType: req.ContentType,
		AuthorID:    authorID,
		Reason:      "reported as " + req.Category + ": " + req.Reason,
		Severity:    severityForPriority(report.Priority),
		AutoFlagged: false,
		ReportedBy:  &reporterID,
		ReportID:    &report.ID,
	})
	if err != nil && !errors.Is(err, ErrDuplicateActive) {
		return nil, nil, err
	}
	return report, item, nil
}

// severityForPriority maps report priority to queue severity.
func severityForPriority(priority string) string {
	switch priority {
	case models.ReportPriorityUrgent:
		return models.SeverityCritical
	case models.ReportPriorityHigh:
		return models.SeverityHigh
	}
	return models.SeverityMedium
}
