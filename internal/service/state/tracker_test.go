package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/chatctx/internal/core"
)

func TestTrackerTransitions(t *testing.T) {
	tests := []struct {
		intent core.Intent
		want   core.ConversationState
	}{
		{core.IntentClarification, core.StateExploring},
		{core.IntentDrillDown, core.StateDrillingDown},
		{core.IntentComparison, core.StateComparing},
		{core.IntentVisualization, core.StateVisualizing},
		{core.IntentAnalysis, core.StateAnalyzing},
		{core.IntentModification, core.StateModifying},
	}

	for _, tt := range tests {
		t.Run(string(tt.intent), func(t *testing.T) {
			tr := NewTracker()
			tr.Observe(tt.intent, time.Now())
			assert.Equal(t, tt.want, tr.Current())
		})
	}
}

func TestTrackerNeutralIntentsKeepState(t *testing.T) {
	tr := NewTracker()
	tr.Observe(core.IntentDrillDown, time.Now())

	for _, intent := range []core.Intent{
		core.IntentContinuation,
		core.IntentReference,
		core.IntentNewQuery,
		core.IntentUnknown,
	} {
		tr.Observe(intent, time.Now())
		assert.Equal(t, core.StateDrillingDown, tr.Current(), "intent %s", intent)
	}
	assert.Len(t, tr.History(), 1)
}

func TestTrackerHistoryRecordsPreviousState(t *testing.T) {
	tr := NewTracker()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tr.Observe(core.IntentClarification, at)
	tr.Observe(core.IntentAnalysis, at.Add(time.Minute))

	history := tr.History()
	require.Len(t, history, 2)
	assert.Equal(t, core.StateInitial, history[0].Prev)
	assert.Equal(t, at, history[0].At)
	assert.Equal(t, core.StateExploring, history[1].Prev)
	assert.Equal(t, core.StateAnalyzing, tr.Current())
}

func TestTrackerSameStateNotRecorded(t *testing.T) {
	tr := NewTracker()
	tr.Observe(core.IntentAnalysis, time.Now())
	tr.Observe(core.IntentAnalysis, time.Now())

	assert.Len(t, tr.History(), 1)
}

func TestTrackerConclude(t *testing.T) {
	tr := NewTracker()
	tr.Conclude(time.Now())
	tr.Conclude(time.Now())

	assert.Equal(t, core.StateConcluding, tr.Current())
	assert.Len(t, tr.History(), 1)
}

func TestTrackerRestore(t *testing.T) {
	tr := NewTracker()
	tr.Restore(core.StateComparing, []core.StateTransition{{Prev: core.StateInitial, At: time.Now()}})
	assert.Equal(t, core.StateComparing, tr.Current())
	assert.Len(t, tr.History(), 1)

	tr.Restore("", nil)
	assert.Equal(t, core.StateInitial, tr.Current())
	assert.Empty(t, tr.History())
}
