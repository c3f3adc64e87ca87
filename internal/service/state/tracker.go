package state

import (
	"time"

	"github.com/sandevgo/chatctx/internal/core"
)

// intentStates maps intents that move the conversation into a new mode.
// Intents absent from the map leave the current state alone.
var intentStates = map[core.Intent]core.ConversationState{
	core.IntentClarification: core.StateExploring,
	core.IntentDrillDown:     core.StateDrillingDown,
	core.IntentComparison:    core.StateComparing,
	core.IntentVisualization: core.StateVisualizing,
	core.IntentAnalysis:      core.StateAnalyzing,
	core.IntentModification:  core.StateModifying,
}

// Tracker is a per-session conversation state machine. It observes
// classified intents and records transitions; it never influences
// detection or retrieval. Not safe for concurrent use.
type Tracker struct {
	current core.ConversationState
	history []core.StateTransition
}

func NewTracker() *Tracker {
	return &Tracker{current: core.StateInitial}
}

func (t *Tracker) Current() core.ConversationState {
	return t.current
}

// History returns the recorded transitions, oldest first.
func (t *Tracker) History() []core.StateTransition {
	out := make([]core.StateTransition, len(t.history))
	copy(out, t.history)
	return out
}

// Observe applies one classified intent. Transitions to the same state are
// not recorded.
func (t *Tracker) Observe(intent core.Intent, at time.Time) {
	next, ok := intentStates[intent]
	if !ok || next == t.current {
		return
	}
	t.history = append(t.history, core.StateTransition{Prev: t.current, At: at})
	t.current = next
}

// Conclude marks the conversation as wrapping up.
func (t *Tracker) Conclude(at time.Time) {
	if t.current == core.StateConcluding {
		return
	}
	t.history = append(t.history, core.StateTransition{Prev: t.current, At: at})
	t.current = core.StateConcluding
}

// Restore rebuilds the tracker from persisted state.
func (t *Tracker) Restore(current core.ConversationState, history []core.StateTransition) {
	if current == "" {
		current = core.StateInitial
	}
	t.current = current
	t.history = append([]core.StateTransition(nil), history...)
}
