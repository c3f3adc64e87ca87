package memory

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sandevgo/chatctx/internal/core"
)

func TestSummarizeShortResponseVerbatim(t *testing.T) {
	c := NewCompressor(200)
	ex := &core.Exchange{AssistantResponse: "Queen topped sales. Kiss came second."}

	assert.Equal(t, "Queen topped sales. Kiss came second.", c.Summarize(ex))
}

func TestSummarizeLongResponse(t *testing.T) {
	c := NewCompressor(200)
	ex := &core.Exchange{
		AssistantResponse: "The top artist by revenue was Iron Maiden. " +
			"They sold steadily across every region. " +
			"Most of the growth came from South America. " +
			"Overall revenue grew strongly this quarter.",
		Metrics:  []string{"$1,234.56", "12.5%", "3", "42"},
		Entities: []string{"Iron Maiden", "South America"},
	}

	got := c.Summarize(ex)
	assert.True(t, strings.HasPrefix(got, "The top artist by revenue was Iron Maiden."))
	assert.Contains(t, got, "Key metrics: $1,234.56, 12.5%, 3")
	assert.NotContains(t, got, "42")
	assert.Contains(t, got, "Entities: Iron Maiden, South America")
	assert.LessOrEqual(t, len(got), 200)
}

func TestSummarizeHardCap(t *testing.T) {
	c := NewCompressor(50)
	ex := &core.Exchange{
		AssistantResponse: strings.Repeat("Sales of rock albums rose sharply this year. ", 10),
	}

	got := c.Summarize(ex)
	assert.LessOrEqual(t, len(got), 50)
	assert.NotEmpty(t, got)
}

func TestSummarizeSkipsTrivialLastSentence(t *testing.T) {
	c := NewCompressor(200)
	ex := &core.Exchange{
		AssistantResponse: "Revenue is concentrated in the top three artists by a wide margin. " +
			"Regional splits vary a lot between markets and quarters. " +
			"Thanks!",
	}

	got := c.Summarize(ex)
	assert.NotContains(t, got, "Thanks!")
}
