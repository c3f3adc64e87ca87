package detector

import (
	"context"

	"github.com/sandevgo/chatctx/internal/core"
)

// Strategy is the pluggable similarity backend. Implementations never
// return errors: a failing provider is absorbed and reflected in the
// Method field of the results, so the conversation never stalls on a
// degraded embedder.
type Strategy interface {
	Name() string

	// Classify maps a message to one of the fixed intents with a confidence.
	// No-signal input yields IntentUnknown with confidence 0.
	Classify(ctx context.Context, message string) core.IntentResult

	// Score compares the message against recent exchanges, most recent
	// first. Empty history yields an all-zero result.
	Score(ctx context.Context, message string, recent []*core.Exchange) core.ContextScore

	// EmbedExchange produces the user-message and response vectors for a
	// new exchange, or nils when embeddings are unavailable.
	EmbedExchange(ctx context.Context, userMessage, response string) (userVec, respVec []float32)
}

// positionWeights is the monotonically decreasing recency weighting applied
// across the scoring window, position 0 being the most recent exchange.
var positionWeights = []float64{1.0, 0.8, 0.6, 0.4, 0.2}

func positionWeight(i int) float64 {
	if i >= len(positionWeights) {
		return positionWeights[len(positionWeights)-1]
	}
	return positionWeights[i]
}
