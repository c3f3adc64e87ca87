package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectReferenceSignals(t *testing.T) {
	tests := []struct {
		name       string
		message    string
		hasHistory bool
		categories []string
		score      float64
	}{
		{
			name:       "pronoun without history",
			message:    "what is it",
			hasHistory: false,
			categories: []string{"pronouns"},
			score:      0.3,
		},
		{
			name:       "pronoun with history is amplified and clamped",
			message:    "what is it",
			hasHistory: true,
			categories: []string{"pronouns"},
			score:      0.4,
		},
		{
			name:       "multiple categories clamp at the cap",
			message:    "compare that against the previous one too",
			hasHistory: true,
			categories: []string{"pronouns", "comparison", "reference", "continuation"},
			score:      0.4,
		},
		{
			name:       "no signals",
			message:    "show sales figures",
			hasHistory: true,
			categories: nil,
			score:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectReferenceSignals(tt.message, tt.hasHistory)

			assert.InDelta(t, tt.score, got.Score, 1e-9)
			assert.Equal(t, tt.hasHistory, got.HasHistory)
			assert.Len(t, got.Signals, len(tt.categories))
			for _, cat := range tt.categories {
				assert.Contains(t, got.Signals, cat)
			}
		})
	}
}

func TestDetectReferenceSignalsWholeWordsOnly(t *testing.T) {
	// "it" inside "title", "last" inside "blast": neither may fire.
	got := DetectReferenceSignals("the title of the blast album", true)
	assert.Empty(t, got.Signals)
	assert.Zero(t, got.Score)
}

func TestDetectReferenceSignalsCaseInsensitive(t *testing.T) {
	got := DetectReferenceSignals("THAT one, COMPARED to the EARLIER result", true)
	assert.Contains(t, got.Signals, "pronouns")
	assert.Contains(t, got.Signals, "comparison")
	assert.Contains(t, got.Signals, "reference")
}
