package services

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/Sankura23/woofadaar-moderation/internal/models"
	"github.com/Sankura23/woofadaar-moderation/internal/storage"
	"github.com/google/uuid"
)

func seedAnalyticsData(t *testing.T, store *storage.MemoryStore, now time.Time) {
	t.Helper()

	// Current window: four evaluations, two flagged, two auto-resolved.
	for i := 0; i < 4; i++ {
		if err := store.CreateResult(&models.ModerationResult{
			ContentID:    "c-" + string(rune('a'+i)),
			ContentType:  models.ContentTypeForumPost,
			AuthorID:     uuid.New(),
			ShouldFlag:   i < 2,
			AutoResolved: i >= 2,
			Severity:     models.SeverityMedium,
			Action:       models.ActionFlag,
			ComputedAt:   now.Add(-time.Hour),
		}); err != nil {
			t.Fatalf("CreateResult() error = %v", err)
		}
	}

	// Previous window: one quiet evaluation.
	if err := store.CreateResult(&models.ModerationResult{
		ContentID:   "c-old",
		ContentType: models.ContentTypeForumPost,
		AuthorID:    uuid.New(),
		Action:      models.ActionAllow,
		Severity:    models.SeverityLow,
		ComputedAt:  now.Add(-30 * time.Hour),
	}); err != nil {
		t.Fatalf("CreateResult() error = %v", err)
	}

	// Two resolved queue items: an auto-flag overturned on review (false
	// positive, 30m turnaround) and an upheld user report (90m turnaround).
	repeatAuthor := uuid.New()
	overturned := now.Add(-2 * time.Hour)
	processedA := overturned.Add(30 * time.Minute)
	if err := store.CreateQueueItem(&models.QueueItem{
		ContentID: "c-a", ContentType: models.ContentTypeForumPost,
		AuthorID: repeatAuthor, Reason: "r", Severity: models.SeverityMedium,
		Status: models.QueueStatusApproved, AutoFlagged: true,
		CreatedAt: overturned, ProcessedAt: &processedA,
	}); err != nil {
		t.Fatalf("CreateQueueItem() error = %v", err)
	}
	upheld := now.Add(-3 * time.Hour)
	processedB := upheld.Add(90 * time.Minute)
	if err := store.CreateQueueItem(&models.QueueItem{
		ContentID: "c-b", ContentType: models.ContentTypeComment,
		AuthorID: repeatAuthor, Reason: "r", Severity: models.SeverityHigh,
		Status: models.QueueStatusRejected, AutoFlagged: false,
		CreatedAt: upheld, ProcessedAt: &processedB,
	}); err != nil {
		t.Fatalf("CreateQueueItem() error = %v", err)
	}

	for i, item := range []string{"c-a", "c-b"} {
		if err := store.CreateAction(&models.ModerationAction{
			QueueItemID: uuid.New(), ContentID: item, ModeratorID: uuid.New(),
			Action:    models.ResolveApprove,
			CreatedAt: now.Add(-time.Duration(i+1) * time.Hour),
		}); err != nil {
			t.Fatalf("CreateAction() error = %v", err)
		}
	}

	// Two community votes, split evenly.
	for i, accurate := range []bool{true, false} {
		if err := store.UpsertVote(&models.FeedbackVote{
			QueueItemID: uuid.New(), ContentID: "c-a", VoterID: uuid.New(),
			WasAccurate: accurate, SeverityRating: models.SeverityRatingAccurate,
			VoterWeight: 1, SubmittedAt: now.Add(-time.Duration(i+1) * time.Hour),
		}); err != nil {
			t.Fatalf("UpsertVote() error = %v", err)
		}
	}
}

func TestGenerateReportOverview(t *testing.T) {
	store := storage.NewMemoryStore()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	seedAnalyticsData(t, store, now)

	svc := NewAnalyticsService(store, 0.7)
	svc.now = func() time.Time { return now }

	report, err := svc.GenerateReport(PeriodDay)
	if err != nil {
		t.Fatalf("GenerateReport() error = %v", err)
	}

	o := report.Overview
	if o.ContentVolume != 4 {
		t.Errorf("ContentVolume = %d, want 4", o.ContentVolume)
	}
	if o.TotalActions != 2 {
		t.Errorf("TotalActions = %d, want 2", o.TotalActions)
	}
	if math.Abs(o.FlaggedRate-0.5) > 0.001 {
		t.Errorf("FlaggedRate = %.3f, want 0.5", o.FlaggedRate)
	}
	if math.Abs(o.AutomationRate-0.5) > 0.001 {
		t.Errorf("AutomationRate = %.3f, want 0.5", o.AutomationRate)
	}
	if math.Abs(o.FalsePositiveRate-0.5) > 0.001 {
		t.Errorf("FalsePositiveRate = %.3f, want 0.5 (1 of 2 resolved)", o.FalsePositiveRate)
	}
	if math.Abs(o.FalseNegativeRate-0.5) > 0.001 {
		t.Errorf("FalseNegativeRate = %.3f, want 0.5", o.FalseNegativeRate)
	}
	if math.Abs(o.AvgResponseTimeMinutes-60) > 0.001 {
		t.Errorf("AvgResponseTimeMinutes = %.1f, want 60", o.AvgResponseTimeMinutes)
	}
	if math.Abs(o.CommunityAgreementRate-0.5) > 0.001 {
		t.Errorf("CommunityAgreementRate = %.3f, want 0.5", o.CommunityAgreementRate)
	}
}

func TestGenerateReportTrendsAndPatterns(t *testing.T) {
	store := storage.NewMemoryStore()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	seedAnalyticsData(t, store, now)

	svc := NewAnalyticsService(store, 0.7)
	svc.now = func() time.Time { return now }

	report, err := svc.GenerateReport(PeriodDay)
	if err != nil {
		t.Fatalf("GenerateReport() error = %v", err)
	}

	var volume *Trend
	for i := range report.Trends {
		if report.Trends[i].Metric == "content_volume" {
			volume = &report.Trends[i]
		}
	}
	if volume == nil {
		t.Fatal("content_volume trend missing")
	}
	if volume.Direction != "increasing" {
		t.Errorf("content_volume direction = %s, want increasing (4 vs 1)", volume.Direction)
	}

	// Both queue items share an author, so the repeat-offender pattern fires.
	found := false
	for _, p := range report.UserPatterns {
		if p.Frequency >= 1 && p.Share > 0 {
			found = true
		}
	}
	if !found {
		t.Error("user patterns empty, want repeat-offender insight")
	}

	if len(report.ContentInsights) == 0 {
		t.Error("content insights empty, want per-content-type flags")
	}
	if len(report.Recommendations) == 0 {
		t.Error("recommendations empty, want deterministic guidance")
	}
}

func TestGenerateReportRejectsUnknownPeriod(t *testing.T) {
	svc := NewAnalyticsService(storage.NewMemoryStore(), 0.7)
	if _, err := svc.GenerateReport("fortnight"); !errors.Is(err, ErrInvalidPeriod) {
		t.Errorf("GenerateReport(fortnight) = %v, want ErrInvalidPeriod", err)
	}
}

func TestClassifyTrend(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		previous float64
		want     string
	}{
		{"flat", 10, 10, "stable"},
		{"within noise band", 10.5, 10, "stable"},
		{"growth", 15, 10, "increasing"},
		{"decline", 5, 10, "decreasing"},
		{"from zero", 3, 0, "increasing"},
		{"both zero", 0, 0, "stable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, _ := classifyTrend(tt.current, tt.previous); got != tt.want {
				t.Errorf("classifyTrend(%.1f, %.1f) = %s, want %s", tt.current, tt.previous, got, tt.want)
			}
		})
	}
}

func TestTrendConfidenceGrowsWithSamples(t *testing.T) {
	small := trendConfidence(2, 2)
	large := trendConfidence(200, 200)
	if small >= large {
		t.Errorf("confidence small=%.3f large=%.3f, want growth with sample size", small, large)
	}
	if large > 0.95 {
		t.Errorf("confidence = %.3f, want capped at 0.95", large)
	}
}

func TestRecommendationsAreDeterministic(t *testing.T) {
	empty := buildRecommendations(Overview{}, nil)
	if len(empty) != 1 || empty[0] != "insufficient data in window; widen the timeframe" {
		t.Errorf("empty-window recommendations = %v", empty)
	}

	o := Overview{
		SampleSize:        50,
		AccuracyRate:      0.6,
		FalsePositiveRate: 0.2,
		AutomationRate:    0.3,
	}
	first := buildRecommendations(o, nil)
	second := buildRecommendations(o, nil)
	if len(first) != len(second) {
		t.Fatal("recommendations not deterministic")
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatal("recommendations not deterministic")
		}
	}
	if len(first) < 3 {
		t.Errorf("recommendations = %v, want accuracy, false-positive and automation advice", first)
	}
}

func TestResponseEfficiencyBounds(t *testing.T) {
	if got := responseEfficiency(30); got != 1 {
		t.Errorf("responseEfficiency(30m) = %.2f, want 1", got)
	}
	if got := responseEfficiency(48 * 60); got != 0 {
		t.Errorf("responseEfficiency(48h) = %.2f, want 0", got)
	}
	mid := responseEfficiency(12 * 60)
	if mid <= 0 || mid >= 1 {
		t.Errorf("responseEfficiency(12h) = %.2f, want in (0, 1)", mid)
	}
}

func TestRealTimeSnapshot(t *testing.T) {
	store := storage.NewMemoryStore()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	if err := store.CreateQueueItem(&models.QueueItem{
		ContentID: "c-live", ContentType: models.ContentTypeComment,
		AuthorID: uuid.New(), Reason: "r",
		Severity: models.SeverityCritical, Status: models.QueueStatusPending,
		AutoFlagged: true, CreatedAt: now.Add(-10 * time.Minute),
	}); err != nil {
		t.Fatalf("CreateQueueItem() error = %v", err)
	}

	svc := NewAnalyticsService(store, 0.7)
	svc.now = func() time.Time { return now }

	snap, err := svc.RealTime()
	if err != nil {
		t.Fatalf("RealTime() error = %v", err)
	}
	if snap.QueueStats.TotalPending != 1 || snap.QueueStats.CriticalItems != 1 {
		t.Errorf("QueueStats = %+v, want 1 pending critical item", snap.QueueStats)
	}
}
