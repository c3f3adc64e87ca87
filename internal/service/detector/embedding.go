package detector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sandevgo/chatctx/internal/core"
	"github.com/sandevgo/chatctx/pkg/log"
	"github.com/sandevgo/chatctx/pkg/retry"
	"github.com/sandevgo/chatctx/pkg/vec"
)

// IntentExamples carries the canonical phrases whose mean embedding becomes
// an intent's prototype vector. Order matters: ties in classification go to
// the first-registered intent.
type IntentExamples struct {
	Intent  core.Intent
	Phrases []string
}

func DefaultIntentExamples() []IntentExamples {
	return []IntentExamples{
		{core.IntentClarification, []string{
			"What does this mean?", "Can you explain?", "Tell me more about this",
			"I don't understand", "Clarify this", "What is that?", "Elaborate please",
		}},
		{core.IntentDrillDown, []string{
			"Show me more details", "Break this down", "Give me specifics",
			"Dive deeper into this", "More information about", "Show me the breakdown",
		}},
		{core.IntentVisualization, []string{
			"Make a chart", "Show this graphically", "Create a graph",
			"Visualize this data", "Plot this", "Can you chart this?",
		}},
		{core.IntentComparison, []string{
			"How does this compare?", "What's the difference?", "Compare these",
			"Show differences", "Versus this", "How do they differ?",
		}},
		{core.IntentAnalysis, []string{
			"Analyze this trend", "What patterns do you see?", "Find insights",
			"What can we learn from this?", "Interpret this data",
		}},
		{core.IntentContinuation, []string{
			"What about the second one?", "And the third?", "What's next?",
			"Keep going", "What else?", "Next one please",
		}},
		{core.IntentReference, []string{
			"That's interesting", "Good point", "I see", "Got it", "Makes sense",
		}},
		{core.IntentNewQuery, []string{
			"Show me all customers", "List all products", "What are the sales?",
			"New question", "Different topic", "Display all records",
		}},
	}
}

type intentPrototype struct {
	intent core.Intent
	vector []float32
}

// EmbeddingStrategy classifies and scores via cosine similarity against
// precomputed intent prototypes. Prototypes are computed once at
// construction and never mutated, so a single instance is safe to share
// read-only across sessions. Any embedding failure at detection time falls
// back to the wrapped PatternStrategy.
type EmbeddingStrategy struct {
	embedder         core.Embedder
	retrier          *retry.Retrier
	timeout          time.Duration
	fallback         *PatternStrategy
	prototypes       []intentPrototype
	contextThreshold float64

	// Single-entry memo so Classify and Score for the same message cost one
	// provider call, not two.
	mu       sync.Mutex
	memoText string
	memoVec  []float32
}

func NewEmbeddingStrategy(
	ctx context.Context,
	embedder core.Embedder,
	examples []IntentExamples,
	contextThreshold float64,
	timeout time.Duration,
) (*EmbeddingStrategy, error) {
	s := &EmbeddingStrategy{
		embedder:         embedder,
		retrier:          retry.NewDefaultRetrier(),
		timeout:          timeout,
		fallback:         NewPatternStrategy(contextThreshold),
		contextThreshold: contextThreshold,
	}

	for _, ex := range examples {
		vectors := make([][]float32, 0, len(ex.Phrases))
		for _, phrase := range ex.Phrases {
			v, err := s.embed(ctx, phrase)
			if err != nil {
				return nil, fmt.Errorf("embed intent example for %q: %w", ex.Intent, err)
			}
			vectors = append(vectors, v)
		}
		proto := vec.Mean(vectors)
		if proto == nil {
			return nil, fmt.Errorf("empty prototype for intent %q", ex.Intent)
		}
		s.prototypes = append(s.prototypes, intentPrototype{intent: ex.Intent, vector: proto})
	}

	return s, nil
}

func (s *EmbeddingStrategy) Name() string { return core.MethodEmbedding }

func (s *EmbeddingStrategy) Classify(ctx context.Context, message string) core.IntentResult {
	v, err := s.embedMemo(ctx, message)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("embedding unavailable, classifying via patterns")
		res := s.fallback.Classify(ctx, message)
		res.Method = core.MethodPatternFallback
		return res
	}

	best := core.IntentUnknown
	bestScore := 0.0
	allScores := make(map[core.Intent]float64, len(s.prototypes))

	for _, proto := range s.prototypes {
		sim := vec.Cosine(v, proto.vector)
		if sim < 0 {
			sim = 0
		}
		allScores[proto.intent] = sim
		if sim > bestScore {
			bestScore = sim
			best = proto.intent
		}
	}

	return core.IntentResult{
		Intent:     best,
		Confidence: bestScore,
		Adjusted:   adjustIntentConfidence(best, bestScore),
		AllScores:  allScores,
		Method:     core.MethodEmbedding,
	}
}

func (s *EmbeddingStrategy) Score(ctx context.Context, message string, recent []*core.Exchange) core.ContextScore {
	if len(recent) == 0 {
		return core.ContextScore{Method: core.MethodEmbedding}
	}

	v, err := s.embedMemo(ctx, message)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("embedding unavailable, scoring via lexical overlap")
		res := s.fallback.Score(ctx, message, recent)
		res.Method = core.MethodPatternFallback
		return res
	}

	result := core.ContextScore{Method: core.MethodEmbedding}
	var weightedSum float64
	scored := 0

	for i, ex := range recent {
		if ex.UserEmbedding == nil && ex.ResponseEmbedding == nil {
			continue
		}
		sim := vec.Cosine(v, ex.UserEmbedding)
		if respSim := vec.Cosine(v, ex.ResponseEmbedding); respSim > sim {
			sim = respSim
		}
		if sim < 0 {
			sim = 0
		}

		if sim > result.MaxSimilarity {
			result.MaxSimilarity = sim
		}
		if sim > s.contextThreshold {
			result.MatchCount++
		}
		weightedSum += sim * positionWeight(i)
		scored++
	}

	if scored == 0 {
		// History exists but carries no vectors (recorded while the provider
		// was down); use the lexical path so the signal is not lost.
		res := s.fallback.Score(ctx, message, recent)
		res.Method = core.MethodPatternFallback
		return res
	}

	result.WeightedMean = weightedSum / float64(scored)
	return result
}

func (s *EmbeddingStrategy) EmbedExchange(ctx context.Context, userMessage, response string) ([]float32, []float32) {
	logger := log.FromCtx(ctx)

	var userVec, respVec []float32
	if userMessage != "" {
		v, err := s.embed(ctx, userMessage)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to embed user message")
		} else {
			userVec = v
		}
	}
	if response != "" {
		v, err := s.embed(ctx, response)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to embed assistant response")
		} else {
			respVec = v
		}
	}
	return userVec, respVec
}

func (s *EmbeddingStrategy) embedMemo(ctx context.Context, text string) ([]float32, error) {
	s.mu.Lock()
	if s.memoText == text && s.memoVec != nil {
		v := s.memoVec
		s.mu.Unlock()
		return v, nil
	}
	s.mu.Unlock()

	v, err := s.embed(ctx, text)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.memoText, s.memoVec = text, v
	s.mu.Unlock()
	return v, nil
}

func (s *EmbeddingStrategy) embed(ctx context.Context, text string) ([]float32, error) {
	embedCtx := ctx
	var cancel context.CancelFunc
	if s.timeout > 0 {
		embedCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var v []float32
	err := s.retrier.Do(embedCtx, func() error {
		var embedErr error
		v, embedErr = s.embedder.Embed(embedCtx, text)
		return embedErr
	})
	if err != nil {
		return nil, err
	}
	if len(v) == 0 {
		return nil, fmt.Errorf("embedder returned an empty vector")
	}
	return v, nil
}
