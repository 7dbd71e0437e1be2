// Package risk computes a deterministic transaction risk score from three
// bounded signals: normalized order amount, origin novelty, and order
// frequency. Scores range from 0.0 (safe) to 1.0 (high risk) and come with a
// human-readable reason. Scoring is pure and never fails; callers degrade to
// a zero score when signal collection is unavailable.
package risk

import "math"

// DefaultAmountCap is the normal-order ceiling used to normalize amounts.
const DefaultAmountCap = 20000.0

// Reason strings attached to assessments. The thresholds assigning them are
// part of the scorer's contract.
const (
	ReasonHigh      = "High Risk: Unusual pattern detected"
	ReasonMedium    = "Medium Risk: Monitor activity"
	ReasonNewOrigin = "New IP with high amount"
	ReasonLow       = "Low risk"
)

// Weights of the scoring function. The interaction term makes a high amount
// from a new origin score more than the sum of the two alone. All weights sum
// to 1 at the extremes, keeping the raw score within [0,1].
const (
	weightAmount      = 0.30
	weightNewOrigin   = 0.10
	weightFrequency   = 0.20
	weightInteraction = 0.40
)

// Signals are the normalized scorer inputs, each within [0,1].
type Signals struct {
	AmountRatio    float64
	IsNewOrigin    bool
	OrderFrequency float64
}

// Assessment is the scorer's verdict on a single transaction.
type Assessment struct {
	Score  float64
	Reason string
}

// Score evaluates the signals. The returned score is rounded to two decimal
// places and the reason is derived from the rounded value, so equal stored
// scores always carry equal reasons.
func Score(s Signals) Assessment {
	a := clamp01(s.AmountRatio)
	f := clamp01(s.OrderFrequency)
	n := 0.0
	if s.IsNewOrigin {
		n = 1.0
	}

	raw := weightAmount*a + weightNewOrigin*n + weightFrequency*f + weightInteraction*a*n
	score := round2(clamp01(raw))

	reason := ReasonLow
	switch {
	case score > 0.8:
		reason = ReasonHigh
	case score > 0.5:
		reason = ReasonMedium
	case s.IsNewOrigin && a > 0.5:
		reason = ReasonNewOrigin
	}

	return Assessment{Score: score, Reason: reason}
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

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
