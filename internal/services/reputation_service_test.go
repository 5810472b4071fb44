package services

import (
	"math"
	"testing"

	"github.com/Sankura23/woofadaar-moderation/internal/models"
	"github.com/Sankura23/woofadaar-moderation/internal/storage"
	"github.com/google/uuid"
)

func TestDefaultScoreIsNewTier(t *testing.T) {
	score := DefaultScore(uuid.New())
	if math.Abs(score.OverallScore-100) > 0.001 {
		t.Errorf("OverallScore = %.2f, want 100", score.OverallScore)
	}
	if score.TrustTier != models.TierNew {
		t.Errorf("TrustTier = %s, want new", score.TrustTier)
	}
}

func TestOverallWeightsAndBounds(t *testing.T) {
	tests := []struct {
		name   string
		factor float64
		want   float64
	}{
		{"all zero", 0, 0},
		{"all ten", 10, 100},
		{"all fifty", 50, 500},
		{"all hundred", 100, 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &models.ReputationScore{
				ContentQuality: tt.factor, CommunityHelpfulness: tt.factor,
				ConsistentActivity: tt.factor, ModerationHistory: tt.factor,
				Expertise: tt.factor, CommunityTrust: tt.factor,
				AccountMaturity: tt.factor, BehaviorPattern: tt.factor,
			}
			if got := Overall(r); math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Overall() = %.2f, want %.2f", got, tt.want)
			}
		})
	}
}

func TestTierForScoreBreakpoints(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0, models.TierRestricted},
		{49.9, models.TierRestricted},
		{50, models.TierNew},
		{149.9, models.TierNew},
		{150, models.TierTrusted},
		{299.9, models.TierTrusted},
		{300, models.TierExpert},
		{499.9, models.TierExpert},
		{500, models.TierModerator},
		{999.9, models.TierModerator},
		{1000, models.TierAdmin},
	}
	for _, tt := range tests {
		if got := models.TierForScore(tt.score); got != tt.want {
			t.Errorf("TierForScore(%.1f) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestApplyResolutionDeltas(t *testing.T) {
	tests := []struct {
		name            string
		action          string
		severity        string
		wantModHistory  float64
		wantBehavior    float64
		wantTrustChange float64
	}{
		{"approve", models.ResolveApprove, models.SeverityMedium, 13, 12, 0},
		{"reject medium", models.ResolveReject, models.SeverityMedium, 6, 7, 0},
		{"reject critical doubles", models.ResolveReject, models.SeverityCritical, 2, 4, 0},
		{"ban", models.ResolveBan, models.SeverityMedium, 2, 4, -4},
		{"warn", models.ResolveWarn, models.SeverityLow, 9, 9, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemoryStore()
			svc := NewReputationService(store)
			userID := uuid.New()

			update, err := svc.ApplyResolution(store, userID, tt.action, tt.severity, "item-1")
			if err != nil {
				t.Fatalf("ApplyResolution() error = %v", err)
			}
			score := update.Score
			if score.ModerationHistory != tt.wantModHistory {
				t.Errorf("ModerationHistory = %.1f, want %.1f", score.ModerationHistory, tt.wantModHistory)
			}
			if score.BehaviorPattern != tt.wantBehavior {
				t.Errorf("BehaviorPattern = %.1f, want %.1f", score.BehaviorPattern, tt.wantBehavior)
			}
			if got := score.CommunityTrust - 10; got != tt.wantTrustChange {
				t.Errorf("CommunityTrust delta = %.1f, want %.1f", got, tt.wantTrustChange)
			}
		})
	}
}

func TestFactorsClampAtBounds(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewReputationService(store)
	userID := uuid.New()

	// Repeated critical bans cannot push factors below zero.
	for i := 0; i < 5; i++ {
		if _, err := svc.ApplyResolution(store, userID, models.ResolveBan, models.SeverityCritical, "item"); err != nil {
			t.Fatalf("ApplyResolution() error = %v", err)
		}
	}
	score, err := store.GetReputation(userID)
	if err != nil {
		t.Fatalf("GetReputation() error = %v", err)
	}
	if score.ModerationHistory != 0 || score.BehaviorPattern != 0 || score.CommunityTrust != 0 {
		t.Errorf("factors = %.1f/%.1f/%.1f, want clamped to 0",
			score.ModerationHistory, score.BehaviorPattern, score.CommunityTrust)
	}
	if score.OverallScore < 0 {
		t.Errorf("OverallScore = %.1f, want >= 0", score.OverallScore)
	}
}

func TestTierChangeCallback(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewReputationService(store)
	userID := uuid.New()

	var from, to string
	svc.OnTierChange(func(id uuid.UUID, oldTier, newTier string) {
		if id == userID {
			from, to = oldTier, newTier
		}
	})

	// Each approval adds 7.5 overall (3x0.15 + 2x0.05 + 1x0.20, scaled x10);
	// the seventh crosses the 150 trusted boundary.
	for i := 0; i < 7; i++ {
		update, err := svc.ApplyResolution(store, userID, models.ResolveApprove, models.SeverityLow, "item")
		if err != nil {
			t.Fatalf("ApplyResolution() error = %v", err)
		}
		update.Publish()
	}
	if from != models.TierNew || to != models.TierTrusted {
		t.Errorf("tier change = %s -> %s, want new -> trusted", from, to)
	}
}

func TestResolutionUpdatesStagedUntilPublish(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewReputationService(store)
	userID := uuid.New()

	// All factors at 14.5: overall 145, tier new; one approval adds 7.5 and
	// crosses into trusted.
	score := DefaultScore(userID)
	score.ContentQuality = 14.5
	score.CommunityHelpfulness = 14.5
	score.ConsistentActivity = 14.5
	score.ModerationHistory = 14.5
	score.Expertise = 14.5
	score.CommunityTrust = 14.5
	score.AccountMaturity = 14.5
	score.BehaviorPattern = 14.5
	score.OverallScore = Overall(score)
	score.TrustTier = models.TierForScore(score.OverallScore)
	if err := store.SaveReputation(score); err != nil {
		t.Fatalf("SaveReputation() error = %v", err)
	}
	svc.Get(userID) // warm the cache

	fired := false
	svc.OnTierChange(func(uuid.UUID, string, string) { fired = true })

	update, err := svc.ApplyResolution(store, userID, models.ResolveApprove, models.SeverityLow, "item")
	if err != nil {
		t.Fatalf("ApplyResolution() error = %v", err)
	}

	// Before Publish the cache still serves the pre-resolution score and no
	// tier transition has been observed.
	if fired {
		t.Error("tier observer fired before Publish")
	}
	if got := svc.Get(userID); math.Abs(got.OverallScore-145) > 0.001 {
		t.Errorf("cached OverallScore = %.1f before Publish, want 145", got.OverallScore)
	}

	update.Publish()
	if !fired {
		t.Error("tier observer not fired after Publish")
	}
	if got := svc.Get(userID); math.Abs(got.OverallScore-152.5) > 0.001 {
		t.Errorf("cached OverallScore = %.1f after Publish, want 152.5", got.OverallScore)
	}
}

func TestRewardReporterDeltas(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewReputationService(store)
	userID := uuid.New()

	if _, err := svc.ApplyResolution(store, userID, models.ResolveApprove, models.SeverityLow, "item-9"); err != nil {
		t.Fatalf("ApplyResolution() error = %v", err)
	}
	if _, err := svc.RewardReporter(store, userID, "item-9"); err != nil {
		t.Fatalf("RewardReporter() error = %v", err)
	}

	score, err := store.GetReputation(userID)
	if err != nil {
		t.Fatalf("GetReputation() error = %v", err)
	}
	if score.CommunityHelpfulness != 12 || score.CommunityTrust != 11 {
		t.Errorf("reporter reward deltas = %.1f/%.1f, want 12/11",
			score.CommunityHelpfulness, score.CommunityTrust)
	}
}

func TestVoteWeightByTier(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewReputationService(store)

	tests := []struct {
		tier   string
		factor float64
		want   float64
	}{
		{models.TierRestricted, 2, 0},
		{models.TierNew, 10, 1},
		{models.TierTrusted, 20, 2},
		{models.TierExpert, 40, 3},
		{models.TierModerator, 60, 4},
		{models.TierAdmin, 100, 5},
	}

	for _, tt := range tests {
		t.Run(tt.tier, func(t *testing.T) {
			userID := uuid.New()
			score := DefaultScore(userID)
			score.ContentQuality = tt.factor
			score.CommunityHelpfulness = tt.factor
			score.ConsistentActivity = tt.factor
			score.ModerationHistory = tt.factor
			score.Expertise = tt.factor
			score.CommunityTrust = tt.factor
			score.AccountMaturity = tt.factor
			score.BehaviorPattern = tt.factor
			score.OverallScore = Overall(score)
			score.TrustTier = models.TierForScore(score.OverallScore)
			if score.TrustTier != tt.tier {
				t.Fatalf("setup: tier = %s, want %s", score.TrustTier, tt.tier)
			}
			if err := store.SaveReputation(score); err != nil {
				t.Fatalf("SaveReputation() error = %v", err)
			}
			if got := svc.VoteWeight(userID); got != tt.want {
				t.Errorf("VoteWeight() = %.1f, want %.1f", got, tt.want)
			}
		})
	}
}
