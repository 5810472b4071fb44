package scorer

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when signal scoring cannot be performed. The
// decision engine degrades to a `review` action on this error, never `allow`.
var ErrUnavailable = errors.New("signal scorer unavailable")

// Flags are boolean signals attached to a scoring result.
type Flags struct {
	Bilingual    bool `json:"bilingual"`
	Promotional  bool `json:"promotional"`
	Professional bool `json:"professional"`
}

// Result carries independent risk signals, each in [0,1].
// CulturalAdjustment is a dampening factor applied to spam/toxicity when the
// text shows bilingual or regional idiom; 1.0 means no adjustment.
type Result struct {
	Spam               float64 `json:"spam"`
	Toxicity           float64 `json:"toxicity"`
	Quality            float64 `json:"quality"`
	CulturalAdjustment float64 `json:"cultural_adjustment"`
	Flags              Flags   `json:"flags"`
}

// Scorer classifies text into numeric risk signals.
type Scorer interface {
	Score(ctx context.Context, contentType, text string) (*Result, error)
}

// Clamp bounds every numeric signal to [0,1]. A zero cultural adjustment is
// treated as "no adjustment" so a scorer that omits it cannot zero out scores.
func (r *Result) Clamp() {
	r.Spam = clamp01(r.Spam)
	r.Toxicity = clamp01(r.Toxicity)
	r.Quality = clamp01(r.Quality)
	if r.CulturalAdjustment == 0 {
		r.CulturalAdjustment = 1.0
	}
	r.CulturalAdjustment = clamp01(r.CulturalAdjustment)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
