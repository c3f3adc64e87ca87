package memory

import (
	"regexp"
	"strings"
)

// Lexical metadata extraction. Deterministic keyword and regex scans, no ML:
// the same text always yields the same topics, entities, and metrics.

const maxExtracted = 5

var topicLexicon = []struct {
	topic    string
	keywords []string
}{
	{"sales", []string{"sales", "revenue", "selling", "sold"}},
	{"artists", []string{"artist", "band", "musician", "singer"}},
	{"customers", []string{"customer", "client", "buyer", "user"}},
	{"analysis", []string{"analyze", "trend", "pattern", "insight"}},
	{"visualization", []string{"chart", "graph", "plot", "visual"}},
	{"comparison", []string{"compare", "versus", "difference", "contrast"}},
}

var (
	entityPattern = regexp.MustCompile(`[A-Z][a-z]+(?:[ ][A-Z][a-z]+)*`)

	metricPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\d+(?:\.\d+)?%`),            // percentages
		regexp.MustCompile(`\$\d+(?:,\d{3})*(?:\.\d{2})?`), // currency
		regexp.MustCompile(`\b\d+(?:,\d{3})+\b`),        // grouped numbers
		regexp.MustCompile(`\b\d+\.\d+\b`),              // decimals
		regexp.MustCompile(`\b\d+\b`),                   // plain integers
	}
)

// entityStoplist filters capitalized words that are sentence artifacts, not
// named entities.
var entityStoplist = map[string]bool{
	"The": true, "This": true, "That": true, "These": true, "Those": true,
	"What": true, "Which": true, "Here": true, "There": true,
	"User": true, "Assistant": true, "Key": true, "Top": true,
}

// ExtractTopics returns the topics whose keywords appear in text, in
// lexicon order.
func ExtractTopics(text string) []string {
	lower := strings.ToLower(text)
	var topics []string
	for _, entry := range topicLexicon {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				topics = append(topics, entry.topic)
				break
			}
		}
	}
	return topics
}

// ExtractEntities returns up to 5 capitalized-word sequences in first-seen
// order, deduplicated and filtered through the stoplist.
func ExtractEntities(text string) []string {
	var entities []string
	seen := make(map[string]bool)
	for _, match := range entityPattern.FindAllString(text, -1) {
		if entityStoplist[match] || seen[match] {
			continue
		}
		seen[match] = true
		entities = append(entities, match)
		if len(entities) == maxExtracted {
			break
		}
	}
	return entities
}

// ExtractMetrics returns up to 5 numeric values (percentages, currency,
// grouped numbers, decimals, integers) in first-seen order. A number already
// captured as part of a richer pattern is not captured again bare.
func ExtractMetrics(text string) []string {
	var metrics []string
	seen := make(map[string]bool)
	remaining := text
	for _, pattern := range metricPatterns {
		for _, match := range pattern.FindAllString(remaining, -1) {
			if seen[match] {
				continue
			}
			seen[match] = true
			metrics = append(metrics, match)
		}
		remaining = pattern.ReplaceAllString(remaining, " ")
	}
	if len(metrics) > maxExtracted {
		metrics = metrics[:maxExtracted]
	}
	return metrics
}
