package detector

import "github.com/sandevgo/chatctx/internal/core"

// AggregatorConfig holds the signal weights and decision threshold. The
// defaults are empirically chosen starting points; tune per deployment.
type AggregatorConfig struct {
	ContextWeight   float64
	IntentWeight    float64
	ReferenceWeight float64
	BrevityWeight   float64

	// MatchBonus applies when more than one prior exchange corroborates the
	// message; SignalBonus when reference signals and prior context are
	// simultaneously present.
	MatchBonus  float64
	SignalBonus float64

	FollowupThreshold float64
}

func DefaultAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{
		ContextWeight:     0.4,
		IntentWeight:      0.3,
		ReferenceWeight:   0.2,
		BrevityWeight:     0.1,
		MatchBonus:        0.1,
		SignalBonus:       0.1,
		FollowupThreshold: 0.45,
	}
}

// Aggregator combines the context, intent, and reference signals with a
// brevity heuristic into one bounded confidence and a follow-up decision.
type Aggregator struct {
	cfg AggregatorConfig
}

func NewAggregator(cfg AggregatorConfig) *Aggregator {
	return &Aggregator{cfg: cfg}
}

func (a *Aggregator) Aggregate(
	ctxScore core.ContextScore,
	intent core.IntentResult,
	refs core.ReferenceSignals,
	wordCount int,
	hasHistory bool,
) core.FollowupResult {
	breakdown := core.Breakdown{
		ContextScore:   ctxScore.WeightedMean * a.cfg.ContextWeight,
		IntentScore:    intent.Adjusted * a.cfg.IntentWeight,
		ReferenceScore: refs.Score * a.cfg.ReferenceWeight,
		BrevityScore:   brevityScore(wordCount) * a.cfg.BrevityWeight,
		Method:         method(ctxScore, intent),
	}
	breakdown.Degraded = breakdown.Method == core.MethodPatternFallback

	if ctxScore.MatchCount > 1 {
		breakdown.MatchBonus = a.cfg.MatchBonus
	}
	if hasHistory && len(refs.Signals) > 0 {
		breakdown.SignalBonus = a.cfg.SignalBonus
	}

	confidence := breakdown.ContextScore + breakdown.IntentScore +
		breakdown.ReferenceScore + breakdown.BrevityScore +
		breakdown.MatchBonus + breakdown.SignalBonus
	confidence = clamp01(confidence)

	return core.FollowupResult{
		// A message cannot follow up on nothing, whatever its score.
		IsFollowup:  hasHistory && confidence >= a.cfg.FollowupThreshold,
		Confidence:  confidence,
		Intent:      intent.Intent,
		Breakdown:   breakdown,
		Context:     ctxScore,
		IntentInfo:  intent,
		Signals:     refs,
		Suggestions: SuggestActions(intent.Intent),
	}
}

// brevityScore reflects that terse messages are more likely elliptical
// follow-ups ("and the second one?") than self-contained queries.
func brevityScore(wordCount int) float64 {
	switch {
	case wordCount == 0:
		return 0
	case wordCount <= 5:
		return 0.3
	case wordCount <= 10:
		return 0.2
	default:
		return 0.1
	}
}

// method reports the overall analysis path. A fallback anywhere in the
// pipeline marks the whole result degraded so operators can observe it.
func method(ctxScore core.ContextScore, intent core.IntentResult) string {
	if intent.Method == core.MethodPatternFallback || ctxScore.Method == core.MethodPatternFallback {
		return core.MethodPatternFallback
	}
	return intent.Method
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
