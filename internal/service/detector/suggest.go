package detector

import "github.com/sandevgo/chatctx/internal/core"

const maxSuggestions = 4

var intentSuggestions = map[core.Intent][]string{
	core.IntentClarification: {
		"Provide a detailed explanation with examples",
		"Break down complex concepts step by step",
	},
	core.IntentDrillDown: {
		"Show hierarchical breakdown",
		"Provide specific metrics and details",
		"Include relevant sub-categories",
	},
	core.IntentVisualization: {
		"Generate an appropriate chart type for the data",
		"Consider multiple visualization options",
	},
	core.IntentComparison: {
		"Create a side-by-side comparison",
		"Highlight key differences",
		"Show relative metrics and percentages",
	},
	core.IntentAnalysis: {
		"Identify trends and patterns",
		"Provide insights and recommendations",
	},
	core.IntentContinuation: {
		"Continue with the next item in sequence",
		"Keep the format consistent with the previous answer",
	},
	core.IntentReference: {
		"Acknowledge the observation",
		"Build upon the referenced result",
	},
	core.IntentNewQuery: {
		"Treat as a fresh query without prior context",
	},
}

// SuggestActions returns downstream handling hints for an intent, capped at
// a small fixed number.
func SuggestActions(intent core.Intent) []string {
	suggestions := intentSuggestions[intent]
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	out := make([]string, len(suggestions))
	copy(out, suggestions)
	return out
}
