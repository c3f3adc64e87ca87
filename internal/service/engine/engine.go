package engine

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sandevgo/chatctx/internal/core"
	"github.com/sandevgo/chatctx/internal/service/detector"
	"github.com/sandevgo/chatctx/internal/service/memory"
	"github.com/sandevgo/chatctx/internal/service/state"
	"github.com/sandevgo/chatctx/pkg/log"
	"github.com/sandevgo/chatctx/pkg/vec"
)

const defaultContextLimit = 5

// Config collects the engine-level knobs; memory-level ones live in
// memory.Config.
type Config struct {
	// ScoringWindow is how many recent exchanges follow-up detection
	// compares the message against.
	ScoringWindow int
	Aggregator    detector.AggregatorConfig
	Memory        memory.Config
}

func DefaultConfig() Config {
	return Config{
		ScoringWindow: 5,
		Aggregator:    detector.DefaultAggregatorConfig(),
		Memory:        memory.DefaultConfig(),
	}
}

// session pairs one conversation's memory with its state tracker behind a
// single lock. The engine serializes all access to a session through it.
type session struct {
	mu      sync.Mutex
	mem     *memory.Session
	tracker *state.Tracker
	dirty   bool
}

// Engine is the conversational context engine: follow-up detection, context
// retrieval, and memory recording over independent sessions. Safe for
// concurrent use; operations on distinct sessions do not block each other.
type Engine struct {
	cfg      Config
	strategy detector.Strategy
	agg      *detector.Aggregator
	store    core.SnapshotStore
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]*session
}

type Option func(*Engine)

// WithSnapshotStore enables best-effort session persistence. Load failures
// start the session fresh; save failures are logged and never surface.
func WithSnapshotStore(store core.SnapshotStore) Option {
	return func(e *Engine) { e.store = store }
}

func New(cfg Config, strategy detector.Strategy, opts ...Option) *Engine {
	e := &Engine{
		cfg:      cfg,
		strategy: strategy,
		agg:      detector.NewAggregator(cfg.Aggregator),
		now:      time.Now,
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DetectFollowup analyzes whether message continues the session's current
// thread. Empty history always yields IsFollowup false. The session state
// machine observes the classified intent only after the context check
// passes, so a canceled call leaves no trace.
func (e *Engine) DetectFollowup(ctx context.Context, sessionID, message string) (core.FollowupResult, error) {
	if sessionID == "" {
		return core.FollowupResult{}, core.ErrEmptySessionID
	}

	s, err := e.session(ctx, sessionID)
	if err != nil {
		return core.FollowupResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	// An empty message is normal input, not an error: nothing to follow up
	// with, nothing to classify.
	if strings.TrimSpace(message) == "" {
		return core.FollowupResult{
			Intent:  core.IntentUnknown,
			Signals: core.ReferenceSignals{Signals: map[string][]string{}, HasHistory: s.mem.WorkingSize() > 0},
			State:   s.tracker.Current(),
		}, nil
	}

	recent := s.mem.Recent(e.cfg.ScoringWindow)
	hasHistory := len(recent) > 0

	refs := detector.DetectReferenceSignals(message, hasHistory)
	intent := e.strategy.Classify(ctx, message)
	ctxScore := e.strategy.Score(ctx, message, recent)

	result := e.agg.Aggregate(ctxScore, intent, refs, len(strings.Fields(message)), hasHistory)

	if err := ctx.Err(); err != nil {
		return core.FollowupResult{}, err
	}
	s.tracker.Observe(result.Intent, e.now())
	s.dirty = true
	result.State = s.tracker.Current()

	log.FromCtx(ctx).Debug().
		Str("session_id", sessionID).
		Bool("is_followup", result.IsFollowup).
		Float64("confidence", result.Confidence).
		Str("intent", string(result.Intent)).
		Str("method", result.Breakdown.Method).
		Msg("followup detection")

	return result, nil
}

// GetContext returns a prompt-ready block of the maxExchanges most relevant
// exchanges for the query, or "" for an unknown or empty session. A zero
// limit means the default; a negative one is a caller bug.
func (e *Engine) GetContext(ctx context.Context, sessionID, query string, maxExchanges int) (string, error) {
	if sessionID == "" {
		return "", core.ErrEmptySessionID
	}
	if maxExchanges < 0 {
		return "", core.ErrInvalidLimit
	}
	if maxExchanges == 0 {
		maxExchanges = defaultContextLimit
	}

	s, err := e.session(ctx, sessionID)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	queryVec, _ := e.strategy.EmbedExchange(ctx, query, "")
	text, selected := s.mem.BuildContext(query, queryVec, maxExchanges, e.now)
	if len(selected) > 0 {
		s.dirty = true
	}
	return text, nil
}

// AddExchange records one completed turn: embeds both sides, extracts
// metadata, inserts into the session graph, and enforces memory bounds.
// Returns the exchange id within the session.
func (e *Engine) AddExchange(ctx context.Context, sessionID, userMessage, response string, intent core.Intent, importance float64) (int, error) {
	if sessionID == "" {
		return 0, core.ErrEmptySessionID
	}
	if importance == 0 {
		importance = core.DefaultImportance
	}
	if importance < 0 || importance > 1 {
		return 0, core.ErrInvalidImportance
	}

	s, err := e.session(ctx, sessionID)
	if err != nil {
		return 0, err
	}

	userVec, respVec := e.strategy.EmbedExchange(ctx, userMessage, response)
	var parts [][]float32
	for _, v := range [][]float32{userVec, respVec} {
		if v != nil {
			parts = append(parts, v)
		}
	}
	combined := vec.Mean(parts)

	ex := &core.Exchange{
		UserMessage:       userMessage,
		AssistantResponse: response,
		Timestamp:         e.now(),
		UserEmbedding:     userVec,
		ResponseEmbedding: respVec,
		Embedding:         combined,
		Topics:            memory.ExtractTopics(userMessage + " " + response),
		Entities:          memory.ExtractEntities(response),
		Metrics:           memory.ExtractMetrics(response),
		Intent:            intent,
		ImportanceWeight:  importance,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// All provider calls are done; nothing below can fail, so a canceled
	// context here means the exchange is simply not recorded.
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	id := s.mem.Add(ex)
	s.dirty = true

	e.persist(ctx, sessionID, s)
	return id, nil
}

// GetAnalytics summarizes the session. Unknown sessions return an empty
// summary rather than an error.
func (e *Engine) GetAnalytics(ctx context.Context, sessionID string) (core.Analytics, error) {
	if sessionID == "" {
		return core.Analytics{}, core.ErrEmptySessionID
	}

	e.mu.RLock()
	s, ok := e.sessions[sessionID]
	e.mu.RUnlock()
	if !ok {
		if s = e.loadSession(ctx, sessionID); s == nil {
			return core.Analytics{State: core.StateInitial, Capability: e.strategy.Name()}, nil
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	analytics := s.mem.Analytics()
	analytics.State = s.tracker.Current()
	analytics.Capability = e.strategy.Name()
	return analytics, nil
}

// ClearSession drops the session's memory and state. Clearing an unknown
// session is a no-op.
func (e *Engine) ClearSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return core.ErrEmptySessionID
	}

	e.mu.Lock()
	delete(e.sessions, sessionID)
	e.mu.Unlock()

	if e.store != nil {
		empty := &core.SessionSnapshot{
			SessionID: sessionID,
			Summaries: map[int]string{},
			State:     core.StateInitial,
			UpdatedAt: e.now(),
		}
		if err := e.store.Save(ctx, empty); err != nil {
			log.FromCtx(ctx).Warn().Err(err).Str("session_id", sessionID).Msg("failed to clear persisted session")
		}
	}
	return nil
}

// Flush persists every dirty session. Called on shutdown; best-effort.
func (e *Engine) Flush(ctx context.Context) {
	if e.store == nil {
		return
	}

	e.mu.RLock()
	ids := make([]string, 0, len(e.sessions))
	for id := range e.sessions {
		ids = append(ids, id)
	}
	e.mu.RUnlock()

	for _, id := range ids {
		e.mu.RLock()
		s := e.sessions[id]
		e.mu.RUnlock()
		if s == nil {
			continue
		}
		s.mu.Lock()
		e.persist(ctx, id, s)
		s.mu.Unlock()
	}
}

// session returns the live session, loading it from the snapshot store on
// first touch when one is wired.
func (e *Engine) session(ctx context.Context, sessionID string) (*session, error) {
	e.mu.RLock()
	s, ok := e.sessions[sessionID]
	e.mu.RUnlock()
	if ok {
		return s, nil
	}

	if s = e.loadSession(ctx, sessionID); s != nil {
		return s, nil
	}

	s = &session{
		mem:     memory.NewSession(e.cfg.Memory),
		tracker: state.NewTracker(),
	}
	e.mu.Lock()
	if existing, ok := e.sessions[sessionID]; ok {
		s = existing
	} else {
		e.sessions[sessionID] = s
	}
	e.mu.Unlock()
	return s, nil
}

// loadSession restores a persisted session, or returns nil when there is no
// store, no snapshot, or the load fails.
func (e *Engine) loadSession(ctx context.Context, sessionID string) *session {
	if e.store == nil {
		return nil
	}

	snap, err := e.store.Load(ctx, sessionID)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("session_id", sessionID).Msg("failed to load session snapshot, starting fresh")
		return nil
	}
	if snap == nil || len(snap.Exchanges) == 0 {
		return nil
	}

	s := &session{
		mem:     memory.NewSession(e.cfg.Memory),
		tracker: state.NewTracker(),
	}
	s.mem.Restore(snap)
	s.tracker.Restore(snap.State, snap.StateHistory)

	e.mu.Lock()
	if existing, ok := e.sessions[sessionID]; ok {
		s = existing
	} else {
		e.sessions[sessionID] = s
	}
	e.mu.Unlock()
	return s
}

// persist saves the session snapshot. Callers hold s.mu.
func (e *Engine) persist(ctx context.Context, sessionID string, s *session) {
	if e.store == nil || !s.dirty {
		return
	}

	snap := s.mem.Snapshot()
	snap.SessionID = sessionID
	snap.State = s.tracker.Current()
	snap.StateHistory = s.tracker.History()
	snap.UpdatedAt = e.now()

	if err := e.store.Save(ctx, snap); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("session_id", sessionID).Msg("failed to persist session snapshot")
		return
	}
	s.dirty = false
}
