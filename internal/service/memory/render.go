package memory

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/chatctx/internal/core"
)

// BuildContext selects the limit most relevant resident exchanges for the
// query and renders them as a prompt-ready context block, most relevant
// first. Selected exchanges get their access counters bumped. Returns the
// rendered text and the selected exchanges in render order.
func (s *Session) BuildContext(query string, queryEmbedding []float32, limit int, now func() time.Time) (string, []*core.Exchange) {
	if len(s.working) == 0 {
		return "", nil
	}

	ranked := s.rank(queryEmbedding, ExtractTopics(query), ExtractEntities(query))
	if limit > len(ranked) {
		limit = len(ranked)
	}

	selected := make([]*core.Exchange, 0, limit)
	for _, r := range ranked[:limit] {
		ex := s.graph.Node(r.id)
		ex.AccessCount++
		ex.LastAccessed = now()
		selected = append(selected, ex)
	}

	var b strings.Builder
	b.WriteString("Relevant conversation history:\n\n")
	for i, ex := range selected {
		fmt.Fprintf(&b, "[%d] (relevance %.2f)\n", i+1, ex.RelevanceScore)
		fmt.Fprintf(&b, "User: %s\n", preview(ex.UserMessage, s.cfg.PreviewMaxChars))
		fmt.Fprintf(&b, "Assistant: %s\n", preview(s.responseForContext(ex), s.cfg.PreviewMaxChars))
		if len(ex.Topics) > 0 {
			fmt.Fprintf(&b, "Topics: %s\n", strings.Join(ex.Topics, ", "))
		}
		if len(ex.Entities) > 0 {
			fmt.Fprintf(&b, "Entities: %s\n", strings.Join(ex.Entities, ", "))
		}
		if len(ex.Metrics) > 0 {
			fmt.Fprintf(&b, "Metrics: %s\n", strings.Join(ex.Metrics, ", "))
		}
		b.WriteString("\n")
	}
	b.WriteString("Use the history above to resolve references in the current query.\n")
	fmt.Fprintf(&b, "Current query: %s\n", query)

	return b.String(), selected
}

// responseForContext substitutes the compressed summary for exchanges that
// have one; the full text is still available on the node itself.
func (s *Session) responseForContext(ex *core.Exchange) string {
	if summary, ok := s.summaries[ex.ID]; ok {
		return summary
	}
	return ex.AssistantResponse
}

func preview(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
