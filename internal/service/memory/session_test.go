package memory

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/chatctx/internal/core"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.MaxContextExchanges = 3
	cfg.KeepUncompressed = 2
	// Large enough that only the window cap triggers compression.
	cfg.TokenBudget = 1 << 20
	return cfg
}

func newExchange(user, response string, embedding []float32) *core.Exchange {
	return &core.Exchange{
		UserMessage:       user,
		AssistantResponse: response,
		Timestamp:         time.Now(),
		Embedding:         embedding,
		Topics:            ExtractTopics(user + " " + response),
		Entities:          ExtractEntities(response),
		Metrics:           ExtractMetrics(response),
		ImportanceWeight:  core.DefaultImportance,
	}
}

func TestSessionAddLinksSimilarExchanges(t *testing.T) {
	s := NewSession(testConfig())

	a := s.Add(newExchange("top artists", "Queen leads.", []float32{1, 0, 0}))
	b := s.Add(newExchange("show more artists", "Kiss is next.", []float32{0.9, 0.1, 0}))
	c := s.Add(newExchange("weather tomorrow", "Sunny.", []float32{0, 0, 1}))

	require.Len(t, s.Exchange(b).References, 1)
	assert.Equal(t, a, s.Exchange(b).References[0].To)
	assert.Greater(t, s.Exchange(b).References[0].Weight, 0.4)

	// Orthogonal exchange links to nothing.
	assert.Empty(t, s.Exchange(c).References)
	assert.Equal(t, []int{b}, s.Exchange(a).ReferencedBy)
}

func TestSessionFIFOEvictionLeavesSummaries(t *testing.T) {
	s := NewSession(testConfig())

	for i := 0; i < 5; i++ {
		msg := fmt.Sprintf("question %d about sales", i)
		resp := fmt.Sprintf("Answer %d: revenue was steady. Growth continued in every region. More detail is available.", i)
		s.Add(newExchange(msg, resp, nil))
	}

	assert.Equal(t, 3, s.WorkingSize())
	assert.Equal(t, 5, s.Len())

	for _, evicted := range []int{0, 1} {
		assert.False(t, s.InWorkingMemory(evicted))
		summary, ok := s.Summary(evicted)
		require.True(t, ok, "evicted exchange %d must have a summary", evicted)
		assert.NotEmpty(t, summary)
		// The full text stays reachable in the graph.
		assert.NotEmpty(t, s.Exchange(evicted).AssistantResponse)
	}
	for _, resident := range []int{2, 3, 4} {
		assert.True(t, s.InWorkingMemory(resident))
	}
}

func TestSessionCompressionIsIdempotent(t *testing.T) {
	s := NewSession(testConfig())
	for i := 0; i < 4; i++ {
		s.Add(newExchange("q", "First sentence here. Second sentence follows. Third one closes it out.", nil))
	}

	events := s.compressionEvents
	first, ok := s.Summary(0)
	require.True(t, ok)

	s.compressOlder()
	s.compressOlder()

	assert.Equal(t, events, s.compressionEvents)
	again, _ := s.Summary(0)
	assert.Equal(t, first, again)
}

func TestSessionOversizedResponseCompressedOnArrival(t *testing.T) {
	cfg := testConfig()
	cfg.ResponseMaxChars = 100
	s := NewSession(cfg)

	long := strings.Repeat("Revenue detail for one region follows here. ", 10)
	id := s.Add(newExchange("full breakdown", long, nil))

	summary, ok := s.Summary(id)
	require.True(t, ok)
	assert.LessOrEqual(t, len(summary), cfg.SummaryMaxChars)
	assert.Equal(t, long, s.Exchange(id).AssistantResponse)
	assert.Equal(t, 1, s.compressionEvents)
}

func TestSessionTokenBudgetTriggersCompression(t *testing.T) {
	cfg := testConfig()
	cfg.MaxContextExchanges = 10
	cfg.TokenBudget = 30
	s := NewSession(cfg)

	long := "Sales numbers were reviewed across all regions in detail. Every market showed movement. Final figures are attached below for reference."
	s.Add(newExchange("first", long, nil))
	s.Add(newExchange("second", long, nil))
	s.Add(newExchange("third", long, nil))

	// Window cap never hit, yet the oldest exchange got compressed.
	assert.Equal(t, 3, s.WorkingSize())
	_, ok := s.Summary(0)
	assert.True(t, ok)
	_, ok = s.Summary(2)
	assert.False(t, ok, "most recent exchanges stay uncompressed")
}

func TestSessionBuildContextRanksBySimilarity(t *testing.T) {
	s := NewSession(testConfig())
	s.Add(newExchange("weather report", "Sunny all week.", []float32{0, 1, 0}))
	relevant := s.Add(newExchange("artist sales", "Queen sold 1,234 albums.", []float32{1, 0, 0}))

	text, selected := s.BuildContext("more artist sales", []float32{1, 0, 0}, 1, time.Now)

	require.Len(t, selected, 1)
	assert.Equal(t, relevant, selected[0].ID)
	assert.Equal(t, 1, selected[0].AccessCount)
	assert.False(t, selected[0].LastAccessed.IsZero())

	assert.Contains(t, text, "Queen sold 1,234 albums.")
	assert.Contains(t, text, "Current query: more artist sales")
	assert.Contains(t, text, "relevance")
}

func TestSessionBuildContextEmpty(t *testing.T) {
	s := NewSession(testConfig())
	text, selected := s.BuildContext("anything", nil, 5, time.Now)
	assert.Empty(t, text)
	assert.Nil(t, selected)
}

func TestSessionBuildContextUsesSummaries(t *testing.T) {
	cfg := testConfig()
	cfg.ResponseMaxChars = 50
	s := NewSession(cfg)

	long := "The full answer spans many sentences. It keeps going with detail. And a final conclusion at the end."
	id := s.Add(newExchange("big question", long, nil))
	summary, ok := s.Summary(id)
	require.True(t, ok)

	text, _ := s.BuildContext("big question again", nil, 1, time.Now)
	assert.Contains(t, text, summary[:40])
	assert.NotContains(t, text, "It keeps going with detail.")
}

func TestSessionAnalytics(t *testing.T) {
	s := NewSession(testConfig())
	s.Add(newExchange("artist revenue", "Queen earned $5,000 in Brazil.", nil))
	s.Add(newExchange("customer count", "There were 300 buyers.", nil))

	got := s.Analytics()
	assert.Equal(t, 2, got.TotalExchanges)
	assert.Equal(t, 2, got.WorkingMemorySize)
	assert.Contains(t, got.Topics, "sales")
	assert.Contains(t, got.Topics, "artists")
	assert.Contains(t, got.Topics, "customers")
	assert.Contains(t, got.Entities, "Queen")
	assert.Contains(t, got.Entities, "Brazil")
	assert.Equal(t, 0, got.CompressionEvents)
}

func TestSessionSnapshotRoundTrip(t *testing.T) {
	s := NewSession(testConfig())
	for i := 0; i < 5; i++ {
		msg := fmt.Sprintf("question %d on sales", i)
		resp := fmt.Sprintf("Answer %d with several sentences. Revenue figures were included. Trend held through the quarter.", i)
		s.Add(newExchange(msg, resp, []float32{1, 0, 0}))
	}

	restored := NewSession(testConfig())
	restored.Restore(s.Snapshot())

	assert.Equal(t, s.Len(), restored.Len())
	assert.Equal(t, s.WorkingSize(), restored.WorkingSize())
	assert.Equal(t, s.totalExchanges, restored.totalExchanges)
	assert.Equal(t, s.compressionEvents, restored.compressionEvents)
	assert.Equal(t, s.summaries, restored.summaries)
	assert.Equal(t, s.topicIndex, restored.topicIndex)

	// The restored session keeps enforcing bounds.
	restored.Add(newExchange("one more on sales", "Another answer with content. And a second sentence. Plus a third for weight.", nil))
	assert.LessOrEqual(t, restored.WorkingSize(), testConfig().MaxContextExchanges)
}
