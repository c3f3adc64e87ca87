package memory

import (
	"sort"

	"github.com/sandevgo/chatctx/internal/core"
	"github.com/sandevgo/chatctx/pkg/tokens"
	"github.com/sandevgo/chatctx/pkg/vec"
)

// Config bounds a session's working memory and tunes relevance ranking.
type Config struct {
	// MaxContextExchanges caps the working-memory window; eviction is FIFO
	// with compression.
	MaxContextExchanges int
	// TokenBudget triggers compression when the running token estimate of
	// resident exchanges exceeds it, independent of the window cap.
	TokenBudget int
	// LinkThreshold is the minimum pairwise similarity for a graph edge.
	LinkThreshold float64
	// MaxLinkNeighbors bounds how many recent exchanges a new one is
	// compared against for linking.
	MaxLinkNeighbors int
	// KeepUncompressed is how many of the most recent exchanges compression
	// never touches.
	KeepUncompressed int

	SummaryMaxChars  int
	ResponseMaxChars int
	PreviewMaxChars  int

	Relevance RelevanceWeights
}

// RelevanceWeights blends the ranking signals; they should sum to 1.
type RelevanceWeights struct {
	Similarity float64
	Topics     float64
	Entities   float64
	Recency    float64
	Importance float64
}

func DefaultConfig() Config {
	return Config{
		MaxContextExchanges: 8,
		TokenBudget:         2000,
		LinkThreshold:       0.4,
		MaxLinkNeighbors:    5,
		KeepUncompressed:    2,
		SummaryMaxChars:     200,
		ResponseMaxChars:    4000,
		PreviewMaxChars:     300,
		Relevance: RelevanceWeights{
			Similarity: 0.4,
			Topics:     0.2,
			Entities:   0.2,
			Recency:    0.1,
			Importance: 0.1,
		},
	}
}

// Session is one conversation's memory: the exchange graph, the bounded
// working-memory window, and the compressed summaries of what fell out of
// it. Not safe for concurrent use; the owner serializes access.
type Session struct {
	cfg        Config
	graph      *Graph
	working    []int
	summaries  map[int]string
	compressor *Compressor

	tokensByID  map[int]int
	tokenTotal  int
	topicIndex  map[string][]int
	entityIndex map[string][]int

	totalExchanges    int
	compressionEvents int
}

func NewSession(cfg Config) *Session {
	return &Session{
		cfg:         cfg,
		graph:       NewGraph(),
		summaries:   make(map[int]string),
		compressor:  NewCompressor(cfg.SummaryMaxChars),
		tokensByID:  make(map[int]int),
		topicIndex:  make(map[string][]int),
		entityIndex: make(map[string][]int),
	}
}

// Len is the total number of exchanges ever recorded, evicted included.
func (s *Session) Len() int {
	return s.graph.Len()
}

// WorkingSize is the current working-memory occupancy.
func (s *Session) WorkingSize() int {
	return len(s.working)
}

// InWorkingMemory reports whether the exchange id is still resident.
func (s *Session) InWorkingMemory(id int) bool {
	for _, wid := range s.working {
		if wid == id {
			return true
		}
	}
	return false
}

// Summary returns the compressed summary for an exchange id, if one exists.
func (s *Session) Summary(id int) (string, bool) {
	summary, ok := s.summaries[id]
	return summary, ok
}

// Exchange returns the exchange by id, or nil.
func (s *Session) Exchange(id int) *core.Exchange {
	return s.graph.Node(id)
}

// Add records a fully built exchange: inserts it into the graph, links it
// to similar recent exchanges, appends it to working memory, and enforces
// the window cap and token budget. Returns the assigned id.
func (s *Session) Add(ex *core.Exchange) int {
	id := s.graph.Add(ex)

	// An oversized response is summarized up front rather than silently
	// truncated; the original text stays intact in the graph.
	if len(ex.AssistantResponse) > s.cfg.ResponseMaxChars {
		s.compressOnce(id)
	}

	s.linkToRecent(ex)

	s.working = append(s.working, id)
	s.tokensByID[id] = tokens.Estimate(ex.UserMessage + " " + ex.AssistantResponse)
	s.tokenTotal += s.tokensByID[id]

	for _, topic := range ex.Topics {
		s.topicIndex[topic] = append(s.topicIndex[topic], id)
	}
	for _, entity := range ex.Entities {
		s.entityIndex[entity] = append(s.entityIndex[entity], id)
	}

	s.totalExchanges++
	s.enforceBounds()
	return id
}

// linkToRecent connects the new exchange to up to MaxLinkNeighbors of the
// most recent resident exchanges whose similarity clears the threshold.
func (s *Session) linkToRecent(ex *core.Exchange) {
	if ex.Embedding == nil {
		return
	}

	checked := 0
	for i := len(s.working) - 1; i >= 0 && checked < s.cfg.MaxLinkNeighbors; i-- {
		prev := s.graph.Node(s.working[i])
		checked++
		if prev == nil || prev.Embedding == nil {
			continue
		}
		if sim := vec.Cosine(ex.Embedding, prev.Embedding); sim > s.cfg.LinkThreshold {
			s.graph.Connect(ex.ID, prev.ID, sim)
		}
	}
}

// enforceBounds compresses older residents and evicts FIFO until the window
// cap holds. Evicted exchanges always leave a summary behind.
func (s *Session) enforceBounds() {
	if len(s.working) > s.cfg.MaxContextExchanges || s.tokenTotal > s.cfg.TokenBudget {
		s.compressOlder()
	}

	for len(s.working) > s.cfg.MaxContextExchanges {
		evicted := s.working[0]
		s.working = s.working[1:]
		s.compressOnce(evicted)
		s.tokenTotal -= s.tokensByID[evicted]
		delete(s.tokensByID, evicted)
	}
}

// compressOlder summarizes every resident exchange except the most recent
// KeepUncompressed ones.
func (s *Session) compressOlder() {
	if len(s.working) <= s.cfg.KeepUncompressed {
		return
	}
	for _, id := range s.working[:len(s.working)-s.cfg.KeepUncompressed] {
		s.compressOnce(id)
	}
}

// compressOnce is idempotent: a second request for an already-compressed id
// is a no-op and the stored summary never changes.
func (s *Session) compressOnce(id int) {
	if _, done := s.summaries[id]; done {
		return
	}
	ex := s.graph.Node(id)
	if ex == nil || ex.AssistantResponse == "" {
		// Nothing to compress; skip rather than abort.
		return
	}

	summary := s.compressor.Summarize(ex)
	s.summaries[id] = summary
	s.compressionEvents++

	if prev, ok := s.tokensByID[id]; ok {
		compressed := tokens.Estimate(ex.UserMessage + " " + summary)
		if compressed < prev {
			s.tokenTotal -= prev - compressed
			s.tokensByID[id] = compressed
		}
	}
}

// Recent returns up to n resident exchanges, most recent first.
func (s *Session) Recent(n int) []*core.Exchange {
	if n <= 0 || len(s.working) == 0 {
		return nil
	}
	if n > len(s.working) {
		n = len(s.working)
	}

	out := make([]*core.Exchange, 0, n)
	for i := len(s.working) - 1; i >= len(s.working)-n; i-- {
		out = append(out, s.graph.Node(s.working[i]))
	}
	return out
}

type rankedExchange struct {
	id    int
	score float64
}

// rank scores every resident exchange against the query using the weighted
// blend of similarity, topic overlap, entity overlap, recency, and stored
// importance, descending.
func (s *Session) rank(queryEmbedding []float32, queryTopics, queryEntities []string) []rankedExchange {
	ranked := make([]rankedExchange, 0, len(s.working))
	w := s.cfg.Relevance

	for pos, id := range s.working {
		ex := s.graph.Node(id)
		score := 0.0

		if queryEmbedding != nil && ex.Embedding != nil {
			if sim := vec.Cosine(queryEmbedding, ex.Embedding); sim > 0 {
				score += sim * w.Similarity
			}
		}
		score += setOverlap(queryTopics, ex.Topics) * w.Topics
		score += setOverlap(queryEntities, ex.Entities) * w.Entities
		score += float64(pos+1) / float64(len(s.working)) * w.Recency
		score += ex.ImportanceWeight * w.Importance

		ex.RelevanceScore = score
		ranked = append(ranked, rankedExchange{id: id, score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	return ranked
}

// setOverlap is |query ∩ candidate| normalized by the query set size.
func setOverlap(query, candidate []string) float64 {
	if len(query) == 0 {
		return 0
	}
	in := make(map[string]bool, len(candidate))
	for _, c := range candidate {
		in[c] = true
	}
	shared := 0
	for _, q := range query {
		if in[q] {
			shared++
		}
	}
	return float64(shared) / float64(len(query))
}

// Analytics summarizes session content and memory health. State and
// capability are filled in by the engine.
func (s *Session) Analytics() core.Analytics {
	var avgRelevance float64
	for _, id := range s.working {
		avgRelevance += s.graph.Node(id).RelevanceScore
	}
	if len(s.working) > 0 {
		avgRelevance /= float64(len(s.working))
	}

	return core.Analytics{
		TotalExchanges:    s.totalExchanges,
		WorkingMemorySize: len(s.working),
		Topics:            sortedKeys(s.topicIndex),
		Entities:          sortedKeys(s.entityIndex),
		CompressionEvents: s.compressionEvents,
		AvgRelevance:      avgRelevance,
	}
}

func sortedKeys(m map[string][]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot captures everything needed to restore this session elsewhere.
func (s *Session) Snapshot() *core.SessionSnapshot {
	working := make([]int, len(s.working))
	copy(working, s.working)
	summaries := make(map[int]string, len(s.summaries))
	for id, sum := range s.summaries {
		summaries[id] = sum
	}

	return &core.SessionSnapshot{
		Exchanges:         s.graph.all(),
		WorkingMemory:     working,
		Summaries:         summaries,
		TotalExchanges:    s.totalExchanges,
		CompressionEvents: s.compressionEvents,
	}
}

// Restore rebuilds the session from a snapshot, recomputing the derived
// indexes and token accounting.
func (s *Session) Restore(snap *core.SessionSnapshot) {
	s.graph.restore(snap.Exchanges)
	s.working = append([]int(nil), snap.WorkingMemory...)
	s.summaries = make(map[int]string, len(snap.Summaries))
	for id, sum := range snap.Summaries {
		s.summaries[id] = sum
	}
	s.totalExchanges = snap.TotalExchanges
	s.compressionEvents = snap.CompressionEvents

	s.tokensByID = make(map[int]int, len(s.working))
	s.tokenTotal = 0
	s.topicIndex = make(map[string][]int)
	s.entityIndex = make(map[string][]int)

	for _, ex := range snap.Exchanges {
		for _, topic := range ex.Topics {
			s.topicIndex[topic] = append(s.topicIndex[topic], ex.ID)
		}
		for _, entity := range ex.Entities {
			s.entityIndex[entity] = append(s.entityIndex[entity], ex.ID)
		}
	}
	for _, id := range s.working {
		ex := s.graph.Node(id)
		if ex == nil {
			continue
		}
		response := ex.AssistantResponse
		if sum, ok := s.summaries[id]; ok {
			response = sum
		}
		s.tokensByID[id] = tokens.Estimate(ex.UserMessage + " " + response)
		s.tokenTotal += s.tokensByID[id]
	}
}
