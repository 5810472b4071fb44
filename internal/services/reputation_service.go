package services

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Sankura23/woofadaar-moderation/internal/models"
	"github.com/Sankura23/woofadaar-moderation/internal/storage"
	"github.com/google/uuid"
)

// Factor weights, fixed by design. They sum to 1.0; the weighted average of
// the 0-100 factors is scaled by 10 to the 0-1000 overall score.
const (
	weightContentQuality       = 0.20
	weightCommunityHelpfulness = 0.18
	weightConsistentActivity   = 0.15
	weightModerationHistory    = 0.15
	weightExpertise            = 0.12
	weightCommunityTrust       = 0.10
	weightAccountMaturity      = 0.05
	weightBehaviorPattern      = 0.05
)

// Factor names used in reputation events.
const (
	factorContentQuality    = "content_quality"
	factorHelpfulness       = "community_helpfulness"
	factorModerationHistory = "moderation_history"
	factorCommunityTrust    = "community_trust"
	factorBehaviorPattern   = "behavior_pattern"
)

// TierChangeFunc observes trust tier transitions. Tier governs posting
// privileges and queue bypass, so changes are surfaced to the host.
type TierChangeFunc func(userID uuid.UUID, oldTier, newTier string)

// ReputationService maintains per-user trust scores. Reads are served from an
// in-memory cache that can be reloaded at runtime; writes are append-only
// factor deltas applied inside the caller's storage transaction.
type ReputationService struct {
	store        storage.Store
	mu           sync.RWMutex
	cache        map[uuid.UUID]*models.ReputationScore
	onTierChange TierChangeFunc
}

func NewReputationService(store storage.Store) *ReputationService {
	return &ReputationService{
		store: store,
		cache: make(map[uuid.UUID]*models.ReputationScore),
	}
}

// OnTierChange registers the tier transition observer. Call before serving.
func (s *ReputationService) OnTierChange(fn TierChangeFunc) {
	s.onTierChange = fn
}

// Overall computes the weighted overall score (0-1000) from the factors.
func Overall(r *models.ReputationScore) float64 {
	weighted := r.ContentQuality*weightContentQuality +
		r.CommunityHelpfulness*weightCommunityHelpfulness +
		r.ConsistentActivity*weightConsistentActivity +
		r.ModerationHistory*weightModerationHistory +
		r.Expertise*weightExpertise +
		r.CommunityTrust*weightCommunityTrust +
		r.AccountMaturity*weightAccountMaturity +
		r.BehaviorPattern*weightBehaviorPattern
	score := weighted * 10
	if score < 0 {
		return 0
	}
	if score > 1000 {
		return 1000
	}
	return score
}

// DefaultScore is the reputation assigned to a user with no history:
// overall 100, tier new.
func DefaultScore(userID uuid.UUID) *models.ReputationScore {
	r := &models.ReputationScore{
		UserID:               userID,
		ContentQuality:       10,
		CommunityHelpfulness: 10,
		ConsistentActivity:   10,
		ModerationHistory:    10,
		Expertise:            10,
		CommunityTrust:       10,
		AccountMaturity:      10,
		BehaviorPattern:      10,
		LastCalculated:       time.Now(),
	}
	r.OverallScore = Overall(r)
	r.TrustTier = models.TierForScore(r.OverallScore)
	return r
}

// Get returns the user's reputation, serving the cache first and falling back
// to storage. Absent users get the default score without a write.
func (s *ReputationService) Get(userID uuid.UUID) *models.ReputationScore {
	s.mu.RLock()
	if cached, ok := s.cache[userID]; ok {
		cp := *cached
		s.mu.RUnlock()
		return &cp
	}
	s.mu.RUnlock()

	score, err := s.store.GetReputation(userID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Error("reputation lookup failed, using default", "user_id", userID, "error", err)
		}
		return DefaultScore(userID)
	}
	s.cachePut(score)
	cp := *score
	return &cp
}

// VoteWeight maps the voter's trust tier to a feedback vote weight.
func (s *ReputationService) VoteWeight(userID uuid.UUID) float64 {
	switch s.Get(userID).TrustTier {
	case models.TierRestricted:
		return 0
	case models.TierNew:
		return 1
	case models.TierTrusted:
		return 2
	case models.TierExpert:
		return 3
	case models.TierModerator:
		return 4
	case models.TierAdmin:
		return 5
	}
	return 1
}

type factorDelta struct {
	factor string
	delta  float64
}

// ScoreUpdate is a reputation write staged inside a storage transaction. The
// score is already persisted on the transaction; Publish pushes it into the
// read cache and fires the tier observer. Callers invoke Publish only after
// the transaction commits, so a rollback never leaves the cache ahead of the
// database.
type ScoreUpdate struct {
	Score    *models.ReputationScore
	prevTier string
	svc      *ReputationService
}

func (u *ScoreUpdate) Publish() {
	u.svc.cachePut(u.Score)
	if u.prevTier != u.Score.TrustTier {
		slog.Info("trust tier changed", "user_id", u.Score.UserID,
			"from", u.prevTier, "to", u.Score.TrustTier)
		if u.svc.onTierChange != nil {
			u.svc.onTierChange(u.Score.UserID, u.prevTier, u.Score.TrustTier)
		}
	}
}

// severityMultiplier scales negative resolution deltas.
func severityMultiplier(severity string) float64 {
	switch severity {
	case models.SeverityLow:
		return 0.5
	case models.SeverityMedium:
		return 1
	case models.SeverityHigh:
		return 1.5
	case models.SeverityCritical:
		return 2
	}
	return 1
}

// ApplyResolution folds a queue resolution outcome into the content author's
// reputation. Must run inside the same transaction as the resolution itself;
// the returned update is published by the caller after commit.
func (s *ReputationService) ApplyResolution(tx storage.Store, authorID uuid.UUID, action, severity, refID string) (*ScoreUpdate, error) {
	mult := severityMultiplier(severity)
	var deltas []factorDelta
	switch action {
	case models.ResolveApprove:
		deltas = []factorDelta{
			{factorModerationHistory, 3},
			{factorBehaviorPattern, 2},
			{factorContentQuality, 1},
		}
	case models.ResolveReject:
		deltas = []factorDelta{
			{factorModerationHistory, -4 * mult},
			{factorBehaviorPattern, -3 * mult},
		}
	case models.ResolveBan:
		deltas = []factorDelta{
			{factorModerationHistory, -8 * mult},
			{factorBehaviorPattern, -6 * mult},
			{factorCommunityTrust, -4},
		}
	case models.ResolveWarn:
		deltas = []factorDelta{
			{factorModerationHistory, -1},
			{factorBehaviorPattern, -1},
		}
	case models.ResolveEdit:
		deltas = []factorDelta{
			{factorContentQuality, -1},
		}
	default:
		return nil, errors.New("unknown resolution action")
	}
	return s.applyDeltas(tx, authorID, deltas, "resolution", refID)
}

// RewardReporter credits a reporter whose report led to a rejection. Runs in
// the resolution transaction; published by the caller after commit.
func (s *ReputationService) RewardReporter(tx storage.Store, reporterID uuid.UUID, refID string) (*ScoreUpdate, error) {
	return s.applyDeltas(tx, reporterID, []factorDelta{
		{factorHelpfulness, 2},
		{factorCommunityTrust, 1},
	}, "report_reward", refID)
}

// CreditAccurateVote nudges community trust for a voter who affirmed a
// decision's accuracy.
func (s *ReputationService) CreditAccurateVote(voterID uuid.UUID, refID string) {
	update, err := s.applyDeltas(s.store, voterID, []factorDelta{
		{factorCommunityTrust, 0.5},
	}, "feedback_vote", refID)
	if err != nil {
		slog.Error("failed to credit accurate vote", "voter_id", voterID, "error", err)
		return
	}
	update.Publish()
}

func (s *ReputationService) applyDeltas(tx storage.Store, userID uuid.UUID, deltas []factorDelta, source, refID string) (*ScoreUpdate, error) {
	score, err := tx.GetReputation(userID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		score = DefaultScore(userID)
	}

	oldTier := score.TrustTier
	for _, d := range deltas {
		applyFactorDelta(score, d.factor, d.delta)
		if err := tx.AppendReputationEvent(&models.ReputationEvent{
			UserID: userID,
			Factor: d.factor,
			Delta:  d.delta,
			Source: source,
			RefID:  refID,
		}); err != nil {
			return nil, err
		}
	}

	score.OverallScore = Overall(score)
	score.TrustTier = models.TierForScore(score.OverallScore)
	score.LastCalculated = time.Now()
	if err := tx.SaveReputation(score); err != nil {
		return nil, err
	}

	return &ScoreUpdate{Score: score, prevTier: oldTier, svc: s}, nil
}

func applyFactorDelta(r *models.ReputationScore, factor string, delta float64) {
	apply := func(v float64) float64 {
		v += delta
		if v < 0 {
			return 0
		}
		if v > 100 {
			return 100
		}
		return v
	}
	switch factor {
	case factorContentQuality:
		r.ContentQuality = apply(r.ContentQuality)
	case factorHelpfulness:
		r.CommunityHelpfulness = apply(r.CommunityHelpfulness)
	case factorModerationHistory:
		r.ModerationHistory = apply(r.ModerationHistory)
	case factorCommunityTrust:
		r.CommunityTrust = apply(r.CommunityTrust)
	case factorBehaviorPattern:
		r.BehaviorPattern = apply(r.BehaviorPattern)
	}
}

// Reload replaces the cache with the stored scores. Safe at runtime.
func (s *ReputationService) Reload() error {
	scores, err := s.store.AllReputations()
	if err != nil {
		return err
	}
	cache := make(map[uuid.UUID]*models.ReputationScore, len(scores))
	for i := range scores {
		cache[scores[i].UserID] = &scores[i]
	}
	s.mu.Lock()
	s.cache = cache
	s.mu.Unlock()
	return nil
}

func (s *ReputationService) cachePut(score *models.ReputationScore) {
	cp := *score
	s.mu.Lock()
	s.cache[score.UserID] = &cp
	s.mu.Unlock()
}
