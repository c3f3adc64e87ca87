package core

import "time"

const (
	AppName    = "chatctx"
	AppVersion = "0.1.0"

	// DefaultImportance is used when the caller has no opinion on how much
	// an exchange should weigh in relevance ranking.
	DefaultImportance = 0.5
)

// Intent is a coarse classification of what a user message is asking for.
type Intent string

const (
	IntentClarification Intent = "clarification"
	IntentDrillDown     Intent = "drill_down"
	IntentVisualization Intent = "visualization"
	IntentComparison    Intent = "comparison"
	IntentAnalysis      Intent = "analysis"
	IntentContinuation  Intent = "continuation"
	IntentReference     Intent = "reference"
	IntentNewQuery      Intent = "new_query"
	// IntentModification is accepted from callers recording an exchange; the
	// classifier itself never produces it.
	IntentModification Intent = "modification"
	IntentUnknown      Intent = "unknown"
)

// IsFollowup reports whether the intent continues the current thread rather
// than opening a new one.
func (i Intent) IsFollowup() bool {
	switch i {
	case IntentNewQuery, IntentUnknown, "":
		return false
	}
	return true
}

// ConversationState is the dialogue's current mode. Purely observational;
// it never gates detection or retrieval.
type ConversationState string

const (
	StateInitial      ConversationState = "initial"
	StateExploring    ConversationState = "exploring"
	StateDrillingDown ConversationState = "drilling_down"
	StateComparing    ConversationState = "comparing"
	StateVisualizing  ConversationState = "visualizing"
	StateAnalyzing    ConversationState = "analyzing"
	StateModifying    ConversationState = "modifying"
	StateConcluding   ConversationState = "concluding"
)

// StateTransition records the state that was left and when.
type StateTransition struct {
	Prev ConversationState `json:"prev"`
	At   time.Time         `json:"at"`
}

// Link is a directed, similarity-weighted reference to another exchange in
// the same session graph.
type Link struct {
	To     int     `json:"to"`
	Weight float64 `json:"weight"`
}

// Exchange is one user-message/assistant-response turn plus derived
// metadata. Textual content is immutable after creation; only access and
// compression metadata mutate.
type Exchange struct {
	ID                int       `json:"id"`
	UserMessage       string    `json:"user_message"`
	AssistantResponse string    `json:"assistant_response"`
	Timestamp         time.Time `json:"timestamp"`

	UserEmbedding     []float32 `json:"user_embedding,omitempty"`
	ResponseEmbedding []float32 `json:"response_embedding,omitempty"`
	// Embedding is the combined-exchange vector used for linking and
	// relevance ranking; absent in pattern mode.
	Embedding []float32 `json:"embedding,omitempty"`

	Topics   []string `json:"topics,omitempty"`
	Entities []string `json:"entities,omitempty"`
	Metrics  []string `json:"metrics,omitempty"`

	Intent           Intent  `json:"intent"`
	ImportanceWeight float64 `json:"importance_weight"`
	RelevanceScore   float64 `json:"relevance_score"`

	AccessCount  int       `json:"access_count"`
	LastAccessed time.Time `json:"last_accessed,omitzero"`

	References   []Link `json:"references,omitempty"`
	ReferencedBy []int  `json:"referenced_by,omitempty"`
}

// Analysis method indicators, surfaced in results so degraded-mode
// operation is observable.
const (
	MethodEmbedding       = "embedding"
	MethodPattern         = "pattern"
	MethodPatternFallback = "pattern_fallback"
)

// ReferenceSignals is the output of the lexical reference scan: which
// referring expressions were found, grouped by category, and their
// combined weight.
type ReferenceSignals struct {
	Signals    map[string][]string `json:"signals"`
	Score      float64             `json:"score"`
	HasHistory bool                `json:"has_history"`
}

// IntentResult is the classifier's verdict for a single message.
type IntentResult struct {
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
	// Adjusted is Confidence after the follow-up boost or new-query
	// inversion; this is what the aggregator consumes.
	Adjusted  float64            `json:"adjusted"`
	AllScores map[Intent]float64 `json:"all_scores"`
	Method    string             `json:"method"`
}

// ContextScore summarizes how similar a message is to the recent window of
// exchanges.
type ContextScore struct {
	MaxSimilarity float64 `json:"max_similarity"`
	WeightedMean  float64 `json:"weighted_mean"`
	MatchCount    int     `json:"match_count"`
	Method        string  `json:"method"`
}

// Breakdown itemizes each weighted contribution to the final confidence.
type Breakdown struct {
	ContextScore   float64 `json:"context_score"`
	IntentScore    float64 `json:"intent_score"`
	ReferenceScore float64 `json:"reference_score"`
	BrevityScore   float64 `json:"brevity_score"`
	MatchBonus     float64 `json:"match_bonus"`
	SignalBonus    float64 `json:"signal_bonus"`
	Method         string  `json:"method"`
	Degraded       bool    `json:"degraded"`
}

// FollowupResult is the engine's answer to "is this message a follow-up?".
type FollowupResult struct {
	IsFollowup  bool              `json:"is_followup"`
	Confidence  float64           `json:"confidence"`
	Intent      Intent            `json:"intent"`
	Breakdown   Breakdown         `json:"breakdown"`
	Context     ContextScore      `json:"context"`
	IntentInfo  IntentResult      `json:"intent_info"`
	Signals     ReferenceSignals  `json:"signals"`
	Suggestions []string          `json:"suggestions"`
	State       ConversationState `json:"state"`
}

// Analytics is a session-level health and content summary.
type Analytics struct {
	TotalExchanges    int               `json:"total_exchanges"`
	WorkingMemorySize int               `json:"working_memory_size"`
	Topics            []string          `json:"topics"`
	Entities          []string          `json:"entities"`
	CompressionEvents int               `json:"compression_events"`
	AvgRelevance      float64           `json:"avg_relevance"`
	State             ConversationState `json:"state"`
	Capability        string            `json:"capability"`
}

// SessionSnapshot is the durable form of a session: everything needed to
// restore its graph, working memory, summaries, and state history.
type SessionSnapshot struct {
	SessionID         string            `json:"session_id"`
	Exchanges         []*Exchange       `json:"exchanges"`
	WorkingMemory     []int             `json:"working_memory"`
	Summaries         map[int]string    `json:"summaries"`
	State             ConversationState `json:"state"`
	StateHistory      []StateTransition `json:"state_history"`
	TotalExchanges    int               `json:"total_exchanges"`
	CompressionEvents int               `json:"compression_events"`
	UpdatedAt         time.Time         `json:"updated_at"`
}
