package services

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/Sankura23/woofadaar-moderation/internal/models"
	"github.com/Sankura23/woofadaar-moderation/internal/storage"
	"github.com/google/uuid"
)

var ErrInvalidPeriod = errors.New("invalid analytics period")

// Report periods accepted by GenerateReport.
const (
	PeriodHour  = "hour"
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

func periodDuration(period string) (time.Duration, error) {
	switch period {
	case PeriodHour:
		return time.Hour, nil
	case PeriodDay:
		return 24 * time.Hour, nil
	case PeriodWeek:
		return 7 * 24 * time.Hour, nil
	case PeriodMonth:
		return 30 * 24 * time.Hour, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
}

// Overview aggregates a single window's moderation activity.
type Overview struct {
	TotalActions           int     `json:"total_actions"`
	ContentVolume          int     `json:"content_volume"`
	AccuracyRate           float64 `json:"accuracy_rate"`
	AvgResponseTimeMinutes float64 `json:"avg_response_time_minutes"`
	FalsePositiveRate      float64 `json:"false_positive_rate"`
	FalseNegativeRate      float64 `json:"false_negative_rate"`
	CommunityAgreementRate float64 `json:"community_agreement_rate"`
	AutomationRate         float64 `json:"automation_rate"`
	FlaggedRate            float64 `json:"flagged_rate"`
	SampleSize             int     `json:"sample_size"`
}

// Trend compares one metric across the current and preceding windows.
type Trend struct {
	Metric     string   `json:"metric"`
	Current    float64  `json:"current"`
	Previous   float64  `json:"previous"`
	Direction  string   `json:"direction"`
	ChangePct  float64  `json:"change_pct"`
	Confidence float64  `json:"confidence"`
	Factors    []string `json:"factors"`
}

// Insight is a frequency-ranked recurring pattern with a recommendation.
type Insight struct {
	Pattern        string  `json:"pattern"`
	Frequency      int     `json:"frequency"`
	Share          float64 `json:"share"`
	Recommendation string  `json:"recommendation"`
}

// Optimization is a ranked improvement opportunity.
type Optimization struct {
	Area                 string  `json:"area"`
	CurrentEfficiency    float64 `json:"current_efficiency"`
	PotentialImprovement float64 `json:"potential_improvement"`
	ImplementationCost   float64 `json:"implementation_cost"`
	Priority             float64 `json:"priority"`
	Suggestion           string  `json:"suggestion"`
}

// Alert is a forward-looking warning derived from trend movement.
type Alert struct {
	Metric             string   `json:"metric"`
	Severity           string   `json:"severity"`
	Probability        float64  `json:"probability"`
	Timeframe          string   `json:"timeframe"`
	RecommendedActions []string `json:"recommended_actions"`
}

// AnalyticsReport is the full derived snapshot for a timeframe. It is
// recomputed per query, never persisted as source of truth.
type AnalyticsReport struct {
	Period           string         `json:"period"`
	WindowStart      time.Time      `json:"window_start"`
	WindowEnd        time.Time      `json:"window_end"`
	Overview         Overview       `json:"overview"`
	Trends           []Trend        `json:"trends"`
	ContentInsights  []Insight      `json:"content_insights"`
	UserPatterns     []Insight      `json:"user_patterns"`
	Optimizations    []Optimization `json:"optimizations"`
	PredictiveAlerts []Alert        `json:"predictive_alerts"`
	Recommendations  []string       `json:"recommendations"`
}

// RealTimeSnapshot is the live queue picture for the operator dashboard.
type RealTimeSnapshot struct {
	QueueStats    storage.QueueStats `json:"queue_stats"`
	LastHour      Overview           `json:"last_hour"`
	GeneratedAt   time.Time          `json:"generated_at"`
}

// AnalyticsService derives metrics, trends and alerts from historical
// decisions, queue history and feedback. Read-only and fully decoupled from
// the evaluation path; it tolerates eventual consistency.
type AnalyticsService struct {
	store              storage.Store
	alertConfidenceMin float64
	now                func() time.Time
}

func NewAnalyticsService(store storage.Store, alertConfidenceMin float64) *AnalyticsService {
	if alertConfidenceMin <= 0 {
		alertConfidenceMin = 0.7
	}
	return &AnalyticsService{
		store:              store,
		alertConfidenceMin: alertConfidenceMin,
		now:                time.Now,
	}
}

// GenerateReport builds the full snapshot for the given period, comparing the
// current window against the immediately preceding window of equal length.
func (s *AnalyticsService) GenerateReport(period string) (*AnalyticsReport, error) {
	d, err := periodDuration(period)
	if err != nil {
		return nil, err
	}

	end := s.now()
	start := end.Add(-d)
	prevStart := start.Add(-d)

	current, err := s.computeOverview(start, end)
	if err != nil {
		return nil, err
	}
	previous, err := s.computeOverview(prevStart, start)
	if err != nil {
		return nil, err
	}

	trends := buildTrends(current, previous)
	contentInsights, userPatterns, err := s.computePatterns(start, end)
	if err != nil {
		return nil, err
	}

	report := &AnalyticsReport{
		Period:           period,
		WindowStart:      start,
		WindowEnd:        end,
		Overview:         current,
		Trends:           trends,
		ContentInsights:  contentInsights,
		UserPatterns:     userPatterns,
		Optimizations:    buildOptimizations(current),
		PredictiveAlerts: s.buildAlerts(trends, period),
		Recommendations:  buildRecommendations(current, trends),
	}
	return report, nil
}

// RealTime returns the live queue stats plus a one-hour overview.
func (s *AnalyticsService) RealTime() (*RealTimeSnapshot, error) {
	stats, err := s.store.QueueStats()
	if err != nil {
		return nil, err
	}
	end := s.now()
	overview, err := s.computeOverview(end.Add(-time.Hour), end)
	if err != nil {
		return nil, err
	}
	return &RealTimeSnapshot{
		QueueStats:  stats,
		LastHour:    overview,
		GeneratedAt: end,
	}, nil
}

func (s *AnalyticsService) computeOverview(start, end time.Time) (Overview, error) {
	var o Overview

	results, err := s.store.ResultsInWindow(start, end)
	if err != nil {
		return o, err
	}
	actions, err := s.store.ActionsInWindow(start, end)
	if err != nil {
		return o, err
	}
	items, err := s.store.QueueItemsInWindow(start, end)
	if err != nil {
		return o, err
	}
	votes, err := s.store.VotesInWindow(start, end)
	if err != nil {
		return o, err
	}

	o.TotalActions = len(actions)
	o.ContentVolume = len(results)
	o.SampleSize = len(results) + len(actions)

	flagged, autoResolved := 0, 0
	for _, r := range results {
		if r.ShouldFlag {
			flagged++
		}
		if r.AutoResolved {
			autoResolved++
		}
	}
	if len(results) > 0 {
		o.FlaggedRate = float64(flagged) / float64(len(results))
		o.AutomationRate = float64(autoResolved) / float64(len(results))
	}

	// Resolution outcomes drive accuracy proxies: an auto-flagged item that a
	// moderator approves was a false positive; a human-reported item that
	// gets rejected is a miss the automation should have caught.
	resolved, falsePos, falseNeg := 0, 0, 0
	var totalResponse time.Duration
	for _, item := range items {
		if !models.QueueTerminal(item.Status) || item.ProcessedAt == nil {
			continue
		}
		resolved++
		totalResponse += item.ProcessedAt.Sub(item.CreatedAt)
		if item.AutoFlagged && item.Status == models.QueueStatusApproved {
			falsePos++
		}
		if !item.AutoFlagged && item.Status == models.QueueStatusRejected {
			falseNeg++
		}
	}
	if resolved > 0 {
		o.FalsePositiveRate = float64(falsePos) / float64(resolved)
		o.FalseNegativeRate = float64(falseNeg) / float64(resolved)
		o.AvgResponseTimeMinutes = totalResponse.Minutes() / float64(resolved)
	}

	o.CommunityAgreementRate = weightedAgreement(votes)
	o.AccuracyRate = o.CommunityAgreementRate
	if len(votes) == 0 && resolved > 0 {
		// Without votes, fall back to the share of automated flags upheld.
		o.AccuracyRate = 1 - o.FalsePositiveRate
	}
	return o, nil
}

func buildTrends(current, previous Overview) []Trend {
	metrics := []struct {
		name     string
		curr     float64
		prev     float64
		upFactor string
	}{
		{"content_volume", float64(current.ContentVolume), float64(previous.ContentVolume), "submission volume growth"},
		{"total_actions", float64(current.TotalActions), float64(previous.TotalActions), "moderator workload growth"},
		{"flagged_rate", current.FlaggedRate, previous.FlaggedRate, "rising violation share"},
		{"accuracy_rate", current.AccuracyRate, previous.AccuracyRate, "decision quality shift"},
		{"automation_rate", current.AutomationRate, previous.AutomationRate, "automation coverage shift"},
	}

	trends := make([]Trend, 0, len(metrics))
	for _, m := range metrics {
		t := Trend{
			Metric:     m.name,
			Current:    m.curr,
			Previous:   m.prev,
			Confidence: trendConfidence(current.SampleSize, previous.SampleSize),
		}
		t.Direction, t.ChangePct = classifyTrend(m.curr, m.prev)
		switch t.Direction {
		case "increasing":
			t.Factors = []string{m.upFactor}
		case "decreasing":
			t.Factors = []string{"decline vs previous window"}
		default:
			t.Factors = []string{"within noise band"}
		}
		trends = append(trends, t)
	}
	return trends
}

// classifyTrend labels a change as increasing/decreasing when it moves more
// than 10% relative to the previous window, otherwise stable.
func classifyTrend(current, previous float64) (string, float64) {
	if previous == 0 {
		if current == 0 {
			return "stable", 0
		}
		return "increasing", 100
	}
	change := (current - previous) / previous * 100
	switch {
	case change > 10:
		return "increasing", change
	case change < -10:
		return "decreasing", change
	}
	return "stable", change
}

// trendConfidence grows with sample size and is capped below certainty.
func trendConfidence(currentN, previousN int) float64 {
	n := float64(currentN + previousN)
	conf := n / (n + 20)
	return math.Min(conf, 0.95)
}

func (s *AnalyticsService) computePatterns(start, end time.Time) ([]Insight, []Insight, error) {
	items, err := s.store.QueueItemsInWindow(start, end)
	if err != nil {
		return nil, nil, err
	}
	results, err := s.store.ResultsInWindow(start, end)
	if err != nil {
		return nil, nil, err
	}

	// Content insights: flag volume per content type.
	byType := make(map[string]int)
	for _, item := range items {
		byType[item.ContentType]++
	}
	contentInsights := rankedInsights(byType, len(items), func(contentType string) string {
		return "review posting guidance and rule coverage for " + contentType + " content"
	})

	// User patterns: repeat-offender clustering by author.
	byAuthor := make(map[string]int)
	for _, item := range items {
		if item.AuthorID != uuid.Nil {
			byAuthor[item.AuthorID.String()]++
		}
	}
	repeatOffenders := 0
	for _, n := range byAuthor {
		if n >= 2 {
			repeatOffenders++
		}
	}

	flaggedResults := 0
	for _, r := range results {
		if r.ShouldFlag {
			flaggedResults++
		}
	}

	var userPatterns []Insight
	if repeatOffenders > 0 {
		userPatterns = append(userPatterns, Insight{
			Pattern:        "repeat offenders with multiple flags in window",
			Frequency:      repeatOffenders,
			Share:          share(repeatOffenders, len(byAuthor)),
			Recommendation: "escalate repeat offenders for account-level review",
		})
	}
	if flaggedResults > 0 && len(results) > 0 {
		userPatterns = append(userPatterns, Insight{
			Pattern:        "flagged submissions in window",
			Frequency:      flaggedResults,
			Share:          share(flaggedResults, len(results)),
			Recommendation: "tune onboarding guidance if new-user share keeps climbing",
		})
	}
	return contentInsights, userPatterns, nil
}

func rankedInsights(counts map[string]int, total int, recommend func(string) string) []Insight {
	insights := make([]Insight, 0, len(counts))
	for key, n := range counts {
		insights = append(insights, Insight{
			Pattern:        key + " flags",
			Frequency:      n,
			Share:          share(n, total),
			Recommendation: recommend(key),
		})
	}
	sort.Slice(insights, func(i, j int) bool {
		if insights[i].Frequency != insights[j].Frequency {
			return insights[i].Frequency > insights[j].Frequency
		}
		return insights[i].Pattern < insights[j].Pattern
	})
	return insights
}

func share(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}

// buildOptimizations ranks improvement opportunities by
// priority = (1 - currentEfficiency) * potentialImprovement / implementationCost.
func buildOptimizations(o Overview) []Optimization {
	candidates := []Optimization{
		{
			Area:                 "automation_coverage",
			CurrentEfficiency:    o.AutomationRate,
			PotentialImprovement: 0.3,
			ImplementationCost:   2,
			Suggestion:           "add rules for the most frequent manual resolutions",
		},
		{
			Area:                 "false_positive_reduction",
			CurrentEfficiency:    1 - o.FalsePositiveRate,
			PotentialImprovement: 0.2,
			ImplementationCost:   1.5,
			Suggestion:           "raise activation thresholds on rules with high approve-on-review rates",
		},
		{
			Area:                 "queue_response_time",
			CurrentEfficiency:    responseEfficiency(o.AvgResponseTimeMinutes),
			PotentialImprovement: 0.25,
			ImplementationCost:   1,
			Suggestion:           "prioritize critical items and expand moderator coverage windows",
		},
	}

	for i := range candidates {
		c := &candidates[i]
		c.Priority = (1 - c.CurrentEfficiency) * c.PotentialImprovement / c.ImplementationCost
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Priority != candidates[j].Priority {
			return candidates[i].Priority > candidates[j].Priority
		}
		return candidates[i].Area < candidates[j].Area
	})
	return candidates
}

// responseEfficiency treats a one-hour average response as fully efficient,
// degrading linearly to zero at 24 hours.
func responseEfficiency(avgMinutes float64) float64 {
	if avgMinutes <= 60 {
		return 1
	}
	eff := 1 - (avgMinutes-60)/(24*60-60)
	if eff < 0 {
		return 0
	}
	return eff
}

func (s *AnalyticsService) buildAlerts(trends []Trend, period string) []Alert {
	var alerts []Alert
	for _, t := range trends {
		if t.Confidence < s.alertConfidenceMin {
			continue
		}
		switch {
		case t.Metric == "flagged_rate" && t.Direction == "increasing":
			alerts = append(alerts, Alert{
				Metric:      t.Metric,
				Severity:    models.SeverityHigh,
				Probability: t.Confidence,
				Timeframe:   "next " + period,
				RecommendedActions: []string{
					"review recent rule triggers for emerging spam campaigns",
					"temporarily tighten thresholds for new accounts",
				},
			})
		case t.Metric == "accuracy_rate" && t.Direction == "decreasing":
			alerts = append(alerts, Alert{
				Metric:      t.Metric,
				Severity:    models.SeverityMedium,
				Probability: t.Confidence,
				Timeframe:   "next " + period,
				RecommendedActions: []string{
					"audit recent resolutions with community disagreement",
					"recalibrate scorer signal weights",
				},
			})
		case t.Metric == "content_volume" && t.Direction == "increasing" && t.ChangePct > 50:
			alerts = append(alerts, Alert{
				Metric:      t.Metric,
				Severity:    models.SeverityMedium,
				Probability: t.Confidence,
				Timeframe:   "next " + period,
				RecommendedActions: []string{
					"scale moderator staffing for the surge",
				},
			})
		}
	}
	return alerts
}

// buildRecommendations is a deterministic threshold table: the same inputs
// always produce the same recommendations.
func buildRecommendations(o Overview, trends []Trend) []string {
	var recs []string
	if o.SampleSize == 0 {
		return []string{"insufficient data in window; widen the timeframe"}
	}
	if o.AccuracyRate < 0.8 {
		recs = append(recs, "accuracy below 80%: review rule thresholds and scorer calibration")
	}
	if o.FalsePositiveRate > 0.15 {
		recs = append(recs, "false positive rate above 15%: loosen over-aggressive rules")
	}
	if o.CommunityAgreementRate > 0 && o.CommunityAgreementRate < 0.7 {
		recs = append(recs, "community agreement below 70%: audit controversial resolutions")
	}
	if o.AutomationRate < 0.5 {
		recs = append(recs, "automation below 50%: add rules for common manual outcomes")
	}
	if o.AvgResponseTimeMinutes > 12*60 {
		recs = append(recs, "average response above 12h: rebalance moderator coverage")
	}
	for _, t := range trends {
		if t.Metric == "flagged_rate" && t.Direction == "increasing" {
			recs = append(recs, "flagged share rising: investigate emerging violation patterns")
		}
	}
	if len(recs) == 0 {
		recs = append(recs, "moderation metrics healthy; no action required")
	}
	return recs
}
