package services

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/Sankura23/woofadaar-moderation/internal/dto"
	"github.com/Sankura23/woofadaar-moderation/internal/models"
	"github.com/Sankura23/woofadaar-moderation/internal/storage"
	"github.com/google/uuid"
)

var (
	ErrItemNotResolved = errors.New("feedback is only accepted on resolved items")
	ErrInvalidRating   = errors.New("invalid severity rating")
)

// Share of an item's total vote weight any single voter may hold. Prevents a
// single high-tier account from dominating the agreement signal.
const maxVoterShare = 0.2

// Minimum votes before an item's consensus may move rule thresholds.
const thresholdAdjustMinVotes = 2

// FeedbackService collects reputation-weighted community votes on resolved
// decisions and folds the consensus back into rule activation thresholds.
type FeedbackService struct {
	store      storage.Store
	reputation *ReputationService
	rules      *RuleEngine
	step       float64
}

func NewFeedbackService(store storage.Store, reputation *ReputationService, rules *RuleEngine, step float64) *FeedbackService {
	if step <= 0 {
		step = models.RuleThresholdStep
	}
	return &FeedbackService{store: store, reputation: reputation, rules: rules, step: step}
}

// SubmitVote records one voter's assessment of a resolved queue item.
// Resubmission overwrites the previous vote rather than duplicating it.
func (s *FeedbackService) SubmitVote(voterID uuid.UUID, req dto.FeedbackRequest) (*models.FeedbackVote, error) {
	if !models.ValidSeverityRating(req.SeverityRating) {
		return nil, ErrInvalidRating
	}

	item, err := s.store.GetQueueItem(req.QueueItemID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	if !models.QueueTerminal(item.Status) {
		return nil, ErrItemNotResolved
	}

	vote := &models.FeedbackVote{
		QueueItemID:    item.ID,
		ContentID:      item.ContentID,
		VoterID:        voterID,
		WasAccurate:    req.WasAccurate,
		SeverityRating: req.SeverityRating,
		VoterWeight:    s.reputation.VoteWeight(voterID),
		SubmittedAt:    time.Now(),
	}
	if err := s.store.UpsertVote(vote); err != nil {
		return nil, err
	}

	if req.WasAccurate {
		s.reputation.CreditAccurateVote(voterID, item.ID.String())
	}

	if err := s.adjustRuleThresholds(item); err != nil {
		slog.Error("rule threshold adjustment failed",
			"queue_item_id", item.ID, "error", err)
	}
	return vote, nil
}

// AgreementRate computes the weighted share of votes that rated the decision
// accurate, with each voter capped at maxVoterShare of the total weight.
func (s *FeedbackService) AgreementRate(queueItemID uuid.UUID) (float64, int, error) {
	votes, err := s.store.VotesForItem(queueItemID)
	if err != nil {
		return 0, 0, err
	}
	return weightedAgreement(votes), len(votes), nil
}

func weightedAgreement(votes []models.FeedbackVote) float64 {
	capped := capVoterWeights(votes)
	var total, accurate float64
	for i, v := range votes {
		total += capped[i]
		if v.WasAccurate {
			accurate += capped[i]
		}
	}
	if total == 0 {
		return 0
	}
	return accurate / total
}

// capVoterWeights bounds each vote's weight to maxVoterShare of the raw
// total, so tier weighting can never collapse into single-voter dominance.
func capVoterWeights(votes []models.FeedbackVote) []float64 {
	var total float64
	for _, v := range votes {
		total += v.VoterWeight
	}
	capped := make([]float64, len(votes))
	limit := total * maxVoterShare
	for i, v := range votes {
		capped[i] = v.VoterWeight
		if len(votes) > 1 && capped[i] > limit {
			capped[i] = limit
		}
	}
	return capped
}

// adjustRuleThresholds nudges the activation thresholds of the rules that
// produced this decision when the weighted community consensus says the
// decision was too strict (raise) or too lenient (lower). Adjustments are
// small and bounded to avoid oscillation.
func (s *FeedbackService) adjustRuleThresholds(item *models.QueueItem) error {
	votes, err := s.store.VotesForItem(item.ID)
	if err != nil {
		return err
	}
	if len(votes) < thresholdAdjustMinVotes {
		return nil
	}

	capped := capVoterWeights(votes)
	var total, strict, lenient float64
	for i, v := range votes {
		total += capped[i]
		switch v.SeverityRating {
		case models.SeverityRatingTooStrict:
			strict += capped[i]
		case models.SeverityRatingTooLenient:
			lenient += capped[i]
		}
	}
	if total == 0 {
		return nil
	}

	var delta float64
	switch {
	case strict/total > 0.5:
		delta = s.step
	case lenient/total > 0.5:
		delta = -s.step
	default:
		return nil
	}

	result, err := s.store.LatestResultForContent(item.ContentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return err
	}

	for _, ruleID := range decodeRuleIDs(result) {
		if err := s.rules.AdjustThreshold(ruleID, delta); err != nil && !errors.Is(err, ErrRuleNotFound) {
			return err
		}
	}
	return nil
}

func decodeRuleIDs(result *models.ModerationResult) []string {
	var ids []string
	if err := json.Unmarshal(result.RuleIDsTriggered, &ids); err != nil {
		return nil
	}
	return ids
}
