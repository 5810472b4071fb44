package services

import (
	"errors"
	"testing"
	"time"

	"github.com/Sankura23/woofadaar-moderation/internal/dto"
	"github.com/Sankura23/woofadaar-moderation/internal/models"
	"github.com/google/uuid"
)

func newReportHarness(t *testing.T) (*ReportService, *QueueService, *ReputationService) {
	t.Helper()
	queue, store, reputation := newQueueHarness(t)
	return NewReportService(store, queue), queue, reputation
}

func TestCreateReportEnqueuesContent(t *testing.T) {
	svc, _, _ := newReportHarness(t)
	reporterID := uuid.New()

	report, item, err := svc.Create(reporterID, dto.CreateReportRequest{
		ContentID:   "c-1",
		ContentType: models.ContentTypeForumPost,
		Category:    models.ReportCategoryMisinformation,
		Reason:      "dangerous home remedy",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if report.Priority != models.ReportPriorityUrgent {
		t.Errorf("Priority = %s, want urgent for misinformation", report.Priority)
	}
	if item == nil {
		t.Fatal("queue item = nil, want content enqueued")
	}
	if item.Severity != models.SeverityCritical {
		t.Errorf("queue severity = %s, want critical", item.Severity)
	}
	if item.ReportID == nil || *item.ReportID != report.ID {
		t.Error("queue item not linked to the report")
	}
}

func TestCreateReportPriorityMapping(t *testing.T) {
	tests := []struct {
		category string
		want     string
	}{
		{models.ReportCategoryMisinformation, models.ReportPriorityUrgent},
		{models.ReportCategoryHarassment, models.ReportPriorityHigh},
		{models.ReportCategoryFake, models.ReportPriorityHigh},
		{models.ReportCategorySpam, models.ReportPriorityMedium},
		{models.ReportCategoryInappropriate, models.ReportPriorityMedium},
		{models.ReportCategoryOther, models.ReportPriorityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			if got := models.ReportPriorityFor(tt.category); got != tt.want {
				t.Errorf("ReportPriorityFor(%s) = %s, want %s", tt.category, got, tt.want)
			}
		})
	}
}

func TestDuplicateReporterRejected(t *testing.T) {
	svc, _, _ := newReportHarness(t)
	reporterID := uuid.New()

	req := dto.CreateReportRequest{
		ContentID:   "c-2",
		ContentType: models.ContentTypeComment,
		Category:    models.ReportCategorySpam,
		Reason:      "spam",
	}
	if _, _, err := svc.Create(reporterID, req); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, _, err := svc.Create(reporterID, req); !errors.Is(err, ErrDuplicateReport) {
		t.Errorf("second Create() = %v, want ErrDuplicateReport", err)
	}

	// A different reporter attaches to the existing queue item.
	_, item, err := svc.Create(uuid.New(), req)
	if err != nil {
		t.Fatalf("Create() by second reporter error = %v", err)
	}
	if item == nil {
		t.Fatal("second reporter got no queue item")
	}
}

func TestReportValidation(t *testing.T) {
	svc, _, _ := newReportHarness(t)

	tests := []struct {
		name string
		req  dto.CreateReportRequest
	}{
		{"missing content id", dto.CreateReportRequest{ContentType: models.ContentTypeComment, Category: models.ReportCategorySpam, Reason: "r"}},
		{"bad content type", dto.CreateReportRequest{ContentID: "c", ContentType: "meme", Category: models.ReportCategorySpam, Reason: "r"}},
		{"bad category", dto.CreateReportRequest{ContentID: "c", ContentType: models.ContentTypeComment, Category: "vibes", Reason: "r"}},
		{"missing reason", dto.CreateReportRequest{ContentID: "c", ContentType: models.ContentTypeComment, Category: models.ReportCategorySpam}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := svc.Create(uuid.New(), tt.req); !errors.Is(err, ErrInvalidReport) {
				t.Errorf("Create() = %v, want ErrInvalidReport", err)
			}
		})
	}
}

func TestReportResolutionPenalizesContentAuthor(t *testing.T) {
	svc, queue, _ := newReportHarness(t)
	authorID := uuid.New()

	// The content was evaluated earlier, so its author is on record.
	if err := queue.store.CreateResult(&models.ModerationResult{
		ContentID:   "c-known",
		ContentType: models.ContentTypeForumPost,
		AuthorID:    authorID,
		Action:      models.ActionAllow,
		Severity:    models.SeverityLow,
		ComputedAt:  time.Now(),
	}); err != nil {
		t.Fatalf("CreateResult() error = %v", err)
	}

	_, item, err := svc.Create(uuid.New(), dto.CreateReportRequest{
		ContentID:   "c-known",
		ContentType: models.ContentTypeForumPost,
		Category:    models.ReportCategorySpam,
		Reason:      "promo",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if item.AuthorID != authorID {
		t.Fatalf("queue item AuthorID = %s, want the evaluated author %s", item.AuthorID, authorID)
	}

	if _, err := queue.Resolve(item.ID, uuid.New(), models.ResolveReject, ""); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	rep, err := queue.store.GetReputation(authorID)
	if err != nil {
		t.Fatalf("GetReputation(author) error = %v", err)
	}
	if rep.ModerationHistory != 6 { // 10 - 4 at medium severity
		t.Errorf("author ModerationHistory = %.1f, want 6", rep.ModerationHistory)
	}
	if _, err := queue.store.GetReputation(uuid.Nil); err == nil {
		t.Error("reputation row written for the nil UUID")
	}
}

func TestReportOnUnevaluatedContentSkipsAuthorFeedback(t *testing.T) {
	svc, queue, _ := newReportHarness(t)

	_, item, err := svc.Create(uuid.New(), dto.CreateReportRequest{
		ContentID:   "c-unknown",
		ContentType: models.ContentTypeComment,
		Category:    models.ReportCategorySpam,
		Reason:      "spam",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if item.AuthorID != uuid.Nil {
		t.Fatalf("queue item AuthorID = %s, want nil for unevaluated content", item.AuthorID)
	}

	if _, err := queue.Resolve(item.ID, uuid.New(), models.ResolveReject, ""); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if _, err := queue.store.GetReputation(uuid.Nil); err == nil {
		t.Error("reputation row written for the nil UUID")
	}
}

func TestUpheldReportRewardsReporter(t *testing.T) {
	svc, queue, _ := newReportHarness(t)
	reporterID := uuid.New()

	_, item, err := svc.Create(reporterID, dto.CreateReportRequest{
		ContentID:   "c-3",
		ContentType: models.ContentTypeStory,
		Category:    models.ReportCategoryHarassment,
		Reason:      "abusive reply",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := queue.Resolve(item.ID, uuid.New(), models.ResolveReject, ""); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	rep, err := queue.store.GetReputation(reporterID)
	if err != nil {
		t.Fatalf("GetReputation() error = %v", err)
	}
	if rep.CommunityHelpfulness != 12 || rep.CommunityTrust != 11 {
		t.Errorf("reporter reputation = %.1f/%.1f, want 12/11",
			rep.CommunityHelpfulness, rep.CommunityTrust)
	}

	report, err := queue.store.GetReport(*item.ReportID)
	if err != nil {
		t.Fatalf("GetReport() error = %v", err)
	}
	if report.Status != models.ReportStatusResolved {
		t.Errorf("report status = %s, want resolved", report.Status)
	}
}

func TestApprovedReportDoesNotReward(t *testing.T) {
	svc, queue, _ := newReportHarness(t)
	reporterID := uuid.New()

	_, item, err := svc.Create(reporterID, dto.CreateReportRequest{
		ContentID:   "c-4",
		ContentType: models.ContentTypeAnswer,
		Category:    models.ReportCategorySpam,
		Reason:      "looks promotional",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := queue.Resolve(item.ID, uuid.New(), models.ResolveApprove, "content is fine"); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	// No reward when the report was not upheld; the reporter has no
	// reputation row at all.
	if _, err := queue.store.GetReputation(reporterID); err == nil {
		t.Error("reporter gained a reputation row from a dismissed report")
	}
}
