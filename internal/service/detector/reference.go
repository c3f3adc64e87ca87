package detector

import (
	"strings"
	"unicode"

	"github.com/sandevgo/chatctx/internal/core"
)

// Lexical reference scan: referring expressions grouped by category, each
// category with its own per-match weight. Pronouns and ordinals are the
// strongest signals; continuation words the weakest.
var referenceLexicon = []struct {
	category string
	weight   float64
	words    []string
}{
	{"pronouns", 0.3, []string{"it", "this", "that", "they", "them", "these", "those"}},
	{"sequence", 0.3, []string{"first", "second", "third", "next", "another", "other", "others", "last"}},
	{"comparison", 0.2, []string{"compared", "versus", "vs", "against", "than"}},
	{"reference", 0.2, []string{"above", "earlier", "previous", "before", "mentioned"}},
	{"continuation", 0.1, []string{"also", "too", "additionally", "furthermore", "moreover"}},
}

const (
	referenceScoreCap = 0.4
	historyMultiplier = 1.5
)

// DetectReferenceSignals scans message for referring expressions. Pure and
// deterministic; it has no failure mode. The score lands in [0, 0.4]: the
// weighted match total, multiplied by 1.5 when prior exchanges exist
// (a pronoun means little without something to point at), then clamped.
func DetectReferenceSignals(message string, hasHistory bool) core.ReferenceSignals {
	words := tokenize(message)
	present := make(map[string]bool, len(words))
	for _, w := range words {
		present[w] = true
	}

	signals := make(map[string][]string)
	score := 0.0

	for _, cat := range referenceLexicon {
		for _, w := range cat.words {
			if present[w] {
				signals[cat.category] = append(signals[cat.category], w)
				score += cat.weight
			}
		}
	}

	if hasHistory && len(signals) > 0 {
		score *= historyMultiplier
	}
	if score > referenceScoreCap {
		score = referenceScoreCap
	}

	return core.ReferenceSignals{
		Signals:    signals,
		Score:      score,
		HasHistory: hasHistory,
	}
}

// tokenize lowercases and splits on anything that is not a letter or digit.
// Whole-word matching matters here: "it" must not fire inside "title".
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
