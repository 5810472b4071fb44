package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Sankura23/woofadaar-moderation/internal/dto"
	"github.com/Sankura23/woofadaar-moderation/internal/models"
	"github.com/Sankura23/woofadaar-moderation/internal/scorer"
	"github.com/Sankura23/woofadaar-moderation/internal/storage"
	"github.com/google/uuid"
)

var ErrInvalidSubmission = errors.New("invalid content submission")

// Default threshold policy applied when no rule triggers.
const (
	blockThreshold  = 0.85
	reviewThreshold = 0.60
	flagThreshold   = 0.40
)

// Trust tier dampening multipliers applied to spam/toxicity before rule
// evaluation. Higher-trust authors get proportionally more benefit of the
// doubt; the adjusted score never exceeds the raw score.
func tierDampening(tier string) float64 {
	switch tier {
	case models.TierTrusted:
		return 0.85
	case models.TierExpert:
		return 0.65
	case models.TierModerator, models.TierAdmin:
		return 0.5
	}
	return 1.0
}

// professionalDampening is applied to spam when the text reads as
// professional/advisory register (vets legitimately mention products).
const professionalDampening = 0.8

// DecisionService orchestrates scorer, reputation, and rule engine into a
// single moderation decision per content submission.
type DecisionService struct {
	store      storage.Store
	scorer     scorer.Scorer
	rules      *RuleEngine
	reputation *ReputationService
	queue      *QueueService
	now        func() time.Time
}

func NewDecisionService(store storage.Store, sc scorer.Scorer, rules *RuleEngine, reputation *ReputationService, queue *QueueService) *DecisionService {
	return &DecisionService{
		store:      store,
		scorer:     sc,
		rules:      rules,
		reputation: reputation,
		queue:      queue,
		now:        time.Now,
	}
}

// Evaluate runs the full decision pipeline. The returned bool reports
// degraded operation: on scorer failure the decision fails safe to `review`
// rather than failing open to `allow`.
func (s *DecisionService) Evaluate(ctx context.Context, authorID uuid.UUID, req dto.EvaluateRequest) (*dto.EvaluateResponse, bool, error) {
	if strings.TrimSpace(req.ContentID) == "" || strings.TrimSpace(req.Content) == "" {
		return nil, false, fmt.Errorf("%w: content_id and content are required", ErrInvalidSubmission)
	}
	if !models.ValidContentType(req.ContentType) {
		return nil, false, fmt.Errorf("%w: unknown content_type %q", ErrInvalidSubmission, req.ContentType)
	}

	raw, err := s.scorer.Score(ctx, req.ContentType, req.Content)
	if err != nil {
		slog.Error("signal scorer failed, escalating to review",
			"content_id", req.ContentID, "error", err)
		return s.degradedReview(authorID, req), true, nil
	}
	raw.Clamp()

	rep := s.reputation.Get(authorID)

	// Cultural context adjustment: bilingual/regional idiom dampens spam and
	// toxicity multiplicatively, never above the raw score.
	spam, toxicity := raw.Spam, raw.Toxicity
	if raw.Flags.Bilingual && raw.CulturalAdjustment < 1 {
		spam *= raw.CulturalAdjustment
		toxicity *= raw.CulturalAdjustment
	}

	damp := tierDampening(rep.TrustTier)
	spam *= damp
	toxicity *= damp
	if raw.Flags.Professional {
		spam *= professionalDampening
	}

	bundle := SignalBundle{
		"scores.spam":                spam,
		"scores.toxicity":            toxicity,
		"scores.raw_spam":            raw.Spam,
		"scores.raw_toxicity":        raw.Toxicity,
		"scores.quality":             raw.Quality,
		"scores.cultural_adjustment": raw.CulturalAdjustment,
		"reputation.overall":         rep.OverallScore,
		"reputation.tier_rank":       float64(models.TierRank(rep.TrustTier)),
		"context.hour":               float64(s.now().Hour()),
		"context.account_age_days":   accountAgeDays(rep, s.now()),
		"flags.promotional":          boolSignal(raw.Flags.Promotional),
		"flags.bilingual":            boolSignal(raw.Flags.Bilingual),
		"flags.professional":         boolSignal(raw.Flags.Professional),
	}

	winner, triggered := s.rules.Evaluate(bundle)

	winning := spam
	if toxicity > winning {
		winning = toxicity
	}

	var action string
	var confidence float64
	if winner != nil {
		action = winner.Action
		confidence = winner.Confidence
	} else {
		action, confidence = defaultPolicy(winning)
	}

	severity := models.SeverityForScore(winning)
	shouldFlag := action != models.ActionAllow

	resp := &dto.EvaluateResponse{
		ContentID: req.ContentID,
		Scores: models.SignalScores{
			Spam:               spam,
			Toxicity:           toxicity,
			Quality:            raw.Quality,
			CulturalAdjustment: raw.CulturalAdjustment,
		},
		ShouldFlag:       shouldFlag,
		Severity:         severity,
		Action:           action,
		Confidence:       confidence,
		RuleIDsTriggered: triggered,
		ComputedAt:       s.now(),
	}

	if req.AnalyzeOnly {
		return resp, false, nil
	}

	queued := false
	if shouldFlag && !s.bypassQueue(rep, severity) {
		reason := "auto-flagged: " + action
		if winner != nil {
			reason = "rule " + winner.RuleID + ": " + winner.Name
		}
		_, qErr := s.queue.Enqueue(EnqueueParams{
			ContentID:   req.ContentID,
			ContentType: req.ContentType,
			AuthorID:    authorID,
			Reason:      reason,
			Severity:    severity,
			AutoFlagged: true,
			FlagScore:   winning,
		})
		switch {
		case qErr == nil, errors.Is(qErr, ErrDuplicateActive):
			queued = true
		default:
			slog.Error("failed to enqueue flagged content",
				"content_id", req.ContentID, "error", qErr)
		}
	}
	resp.Queued = queued

	if err := s.persistResult(authorID, req, resp, !queued); err != nil {
		slog.Error("failed to persist moderation result",
			"content_id", req.ContentID, "error", err)
	}
	return resp, false, nil
}

// bypassQueue: trusted and higher tiers skip routine queueing for
// low-severity automatic flags.
func (s *DecisionService) bypassQueue(rep *models.ReputationScore, severity string) bool {
	return models.TierRank(rep.TrustTier) >= models.TierRank(models.TierTrusted) &&
		severity == models.SeverityLow
}

// degradedReview is the fail-safe result when scoring is unavailable.
func (s *DecisionService) degradedReview(authorID uuid.UUID, req dto.EvaluateRequest) *dto.EvaluateResponse {
	resp := &dto.EvaluateResponse{
		ContentID:        req.ContentID,
		ShouldFlag:       true,
		Severity:         models.SeverityMedium,
		Action:           models.ActionReview,
		Confidence:       0,
		RuleIDsTriggered: []string{},
		ComputedAt:       s.now(),
	}
	if req.AnalyzeOnly {
		return resp
	}

	_, qErr := s.queue.Enqueue(EnqueueParams{
		ContentID:   req.ContentID,
		ContentType: req.ContentType,
		AuthorID:    authorID,
		Reason:      "scorer unavailable, escalated for review",
		Severity:    models.SeverityMedium,
		AutoFlagged: true,
	})
	if qErr == nil || errors.Is(qErr, ErrDuplicateActive) {
		resp.Queued = true
	}
	if err := s.persistResult(authorID, req, resp, false); err != nil {
		slog.Error("failed to persist degraded result",
			"content_id", req.ContentID, "error", err)
	}
	return resp
}

func (s *DecisionService) persistResult(authorID uuid.UUID, req dto.EvaluateRequest, resp *dto.EvaluateResponse, autoResolved bool) error {
	scoresJSON, err := json.Marshal(resp.Scores)
	if err != nil {
		return err
	}
	rulesJSON, err := json.Marshal(resp.RuleIDsTriggered)
	if err != nil {
		return err
	}
	return s.store.CreateResult(&models.ModerationResult{
		ContentID:        req.ContentID,
		ContentType:      req.ContentType,
		AuthorID:         authorID,
		Scores:           scoresJSON,
		ShouldFlag:       resp.ShouldFlag,
		Severity:         resp.Severity,
		Action:           resp.Action,
		Confidence:       resp.Confidence,
		RuleIDsTriggered: rulesJSON,
		AutoResolved:     autoResolved,
		ComputedAt:       resp.ComputedAt,
	})
}

func defaultPolicy(winning float64) (string, float64) {
	switch {
	case winning >= blockThreshold:
		return models.ActionBlock, 0.9
	case winning >= reviewThreshold:
		return models.ActionReview, 0.7
	case winning >= flagThreshold:
		return models.ActionFlag, 0.6
	}
	return models.ActionAllow, 0.8
}

func accountAgeDays(rep *models.ReputationScore, now time.Time) float64 {
	if rep.CreatedAt.IsZero() {
		return 0
	}
	return now.Sub(rep.CreatedAt).Hours() / 24
}

func boolSignal(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
