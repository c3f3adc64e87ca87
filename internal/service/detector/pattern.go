package detector

import (
	"context"
	"strings"

	"github.com/sandevgo/chatctx/internal/core"
)

// intentKeywords pairs an intent with the phrases that vote for it in
// pattern mode. Order matters: ties go to the first-registered intent.
type intentKeywords struct {
	intent core.Intent
	words  []string
}

func defaultIntentKeywords() []intentKeywords {
	return []intentKeywords{
		{core.IntentClarification, []string{"what does", "what is", "explain", "meaning", "clarify", "elaborate", "don't understand"}},
		{core.IntentDrillDown, []string{"more details", "tell me more", "breakdown", "break this down", "expand", "specifics", "dive deeper", "more about"}},
		{core.IntentVisualization, []string{"chart", "graph", "plot", "visualize", "visual"}},
		{core.IntentComparison, []string{"compare", "contrast", "versus", "vs", "difference", "stack up"}},
		{core.IntentAnalysis, []string{"analyze", "trend", "pattern", "insight", "finding", "interpret"}},
		{core.IntentContinuation, []string{"what about", "what else", "continue", "keep going", "next one", "and then"}},
		{core.IntentReference, []string{"that's interesting", "good point", "i see", "got it", "makes sense"}},
		{core.IntentNewQuery, []string{"show me all", "show all", "list all", "list everything", "new question", "different topic", "all records"}},
	}
}

// PatternStrategy is the zero-dependency lexical path: keyword voting for
// intent and word-overlap for context similarity. It is also the fallback
// target when the embedding provider is down.
type PatternStrategy struct {
	keywords         []intentKeywords
	contextThreshold float64
}

func NewPatternStrategy(contextThreshold float64) *PatternStrategy {
	return &PatternStrategy{
		keywords:         defaultIntentKeywords(),
		contextThreshold: contextThreshold,
	}
}

func (p *PatternStrategy) Name() string { return core.MethodPattern }

func (p *PatternStrategy) Classify(_ context.Context, message string) core.IntentResult {
	lower := strings.ToLower(message)

	best := core.IntentUnknown
	bestHits := 0
	allScores := make(map[core.Intent]float64, len(p.keywords))

	for _, ik := range p.keywords {
		hits := 0
		for _, kw := range ik.words {
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		score := normalizeHits(hits)
		allScores[ik.intent] = score
		// Strictly greater keeps first-registered intent on ties.
		if hits > bestHits {
			bestHits = hits
			best = ik.intent
		}
	}

	confidence := normalizeHits(bestHits)
	return core.IntentResult{
		Intent:     best,
		Confidence: confidence,
		Adjusted:   adjustIntentConfidence(best, confidence),
		AllScores:  allScores,
		Method:     core.MethodPattern,
	}
}

// normalizeHits maps a raw keyword hit count into [0, 1].
func normalizeHits(hits int) float64 {
	score := float64(hits) * 0.3
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// adjustIntentConfidence boosts follow-up intents and inverts confident
// new-query matches so that they actively suppress follow-up likelihood.
func adjustIntentConfidence(intent core.Intent, confidence float64) float64 {
	switch {
	case intent == core.IntentUnknown || confidence == 0:
		return 0
	case intent.IsFollowup():
		adjusted := confidence * 1.25
		if adjusted > 1.0 {
			adjusted = 1.0
		}
		return adjusted
	default:
		return 1 - confidence
	}
}

// Score substitutes a lexical-overlap heuristic for cosine similarity:
// significant words shared between the message and the most recent
// exchanges, normalized by the message's significant word count.
func (p *PatternStrategy) Score(_ context.Context, message string, recent []*core.Exchange) core.ContextScore {
	result := core.ContextScore{Method: core.MethodPattern}
	msgWords := significantWords(message)
	if len(recent) == 0 || len(msgWords) == 0 {
		return result
	}

	var weightedSum float64
	for i, ex := range recent {
		overlap := lexicalOverlap(msgWords, ex.UserMessage+" "+ex.AssistantResponse)
		if overlap > result.MaxSimilarity {
			result.MaxSimilarity = overlap
		}
		if overlap > p.contextThreshold {
			result.MatchCount++
		}
		weightedSum += overlap * positionWeight(i)
	}
	result.WeightedMean = weightedSum / float64(len(recent))
	return result
}

func (p *PatternStrategy) EmbedExchange(_ context.Context, _, _ string) ([]float32, []float32) {
	return nil, nil
}

// lexicalOverlap is the fraction of the message's significant words that
// appear in the reference text.
func lexicalOverlap(msgWords map[string]bool, reference string) float64 {
	refWords := significantWords(reference)
	shared := 0
	for w := range msgWords {
		if refWords[w] {
			shared++
		}
	}
	return float64(shared) / float64(len(msgWords))
}

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "can": true, "do": true, "for": true, "from": true,
	"how": true, "i": true, "in": true, "is": true, "it": true, "me": true,
	"of": true, "on": true, "or": true, "show": true, "tell": true, "the": true,
	"this": true, "to": true, "was": true, "what": true, "with": true,
	"you": true, "your": true,
}

func significantWords(s string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range tokenize(s) {
		if len(w) > 2 && !stopwords[w] {
			words[w] = true
		}
	}
	return words
}
