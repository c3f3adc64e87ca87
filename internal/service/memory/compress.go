package memory

import (
	"strings"
	"unicode"

	"github.com/sandevgo/chatctx/internal/core"
)

// Compressor produces bounded-length summaries of exchange responses:
// first sentence verbatim, up to three extracted metrics and entities, and
// the final sentence when it is non-trivial.
type Compressor struct {
	maxChars int
}

func NewCompressor(maxChars int) *Compressor {
	return &Compressor{maxChars: maxChars}
}

const summaryItemCap = 3

func (c *Compressor) Summarize(ex *core.Exchange) string {
	response := strings.TrimSpace(ex.AssistantResponse)
	sentences := splitSentences(response)
	if len(sentences) <= 2 && len(response) <= c.maxChars {
		return response
	}

	var parts []string
	if len(sentences) > 0 {
		parts = append(parts, sentences[0])
	}
	if len(ex.Metrics) > 0 {
		parts = append(parts, "Key metrics: "+joinCapped(ex.Metrics, summaryItemCap))
	}
	if len(ex.Entities) > 0 {
		parts = append(parts, "Entities: "+joinCapped(ex.Entities, summaryItemCap))
	}
	if last := sentences[len(sentences)-1]; len(sentences) > 1 && meaningfulSentence(last) {
		parts = append(parts, last)
	}

	summary := strings.Join(parts, " ")
	if len(summary) > c.maxChars {
		summary = summary[:c.maxChars]
	}
	return summary
}

func joinCapped(items []string, limit int) string {
	if len(items) > limit {
		items = items[:limit]
	}
	return strings.Join(items, ", ")
}

// meaningfulSentence filters out trailing fragments like "Thanks." that add
// nothing to a summary.
func meaningfulSentence(s string) bool {
	return len(strings.Fields(s)) >= 3
}

var sentenceEnders = map[rune]bool{'.': true, '!': true, '?': true}

// splitSentences breaks text on terminal punctuation followed by space or
// end of input, keeping the punctuation with the sentence.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	runes := []rune(text)

	for i, r := range runes {
		current.WriteRune(r)
		if sentenceEnders[r] && (i+1 >= len(runes) || unicode.IsSpace(runes[i+1])) {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
