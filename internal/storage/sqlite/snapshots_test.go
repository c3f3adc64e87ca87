package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/chatctx/internal/core"
)

func newTestSnapshots(t *testing.T) *Snapshots {
	t.Helper()

	db, err := NewDB(context.Background(), filepath.Join(t.TempDir(), "chatctx.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewSnapshots(db)
}

func TestSnapshotsLoadMissingSession(t *testing.T) {
	repo := newTestSnapshots(t)

	snap, err := repo.Load(context.Background(), "never-saved")
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestSnapshotsSaveAndLoad(t *testing.T) {
	repo := newTestSnapshots(t)
	ctx := context.Background()

	saved := &core.SessionSnapshot{
		SessionID: "s1",
		Exchanges: []*core.Exchange{{
			ID:                0,
			UserMessage:       "top artists",
			AssistantResponse: "Queen leads with $1,234.",
			Timestamp:         time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC),
			Topics:            []string{"sales", "artists"},
			Entities:          []string{"Queen"},
			Metrics:           []string{"$1,234"},
			Intent:            core.IntentNewQuery,
			ImportanceWeight:  0.5,
			References:        []core.Link{},
		}},
		WorkingMemory:     []int{0},
		Summaries:         map[int]string{},
		State:             core.StateExploring,
		StateHistory:      []core.StateTransition{{Prev: core.StateInitial, At: time.Date(2026, 4, 2, 10, 0, 1, 0, time.UTC)}},
		TotalExchanges:    1,
		CompressionEvents: 0,
		UpdatedAt:         time.Date(2026, 4, 2, 10, 0, 2, 0, time.UTC),
	}
	require.NoError(t, repo.Save(ctx, saved))

	got, err := repo.Load(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, saved.SessionID, got.SessionID)
	assert.Equal(t, saved.WorkingMemory, got.WorkingMemory)
	assert.Equal(t, saved.State, got.State)
	assert.Equal(t, saved.TotalExchanges, got.TotalExchanges)
	require.Len(t, got.Exchanges, 1)
	assert.Equal(t, "top artists", got.Exchanges[0].UserMessage)
	assert.Equal(t, []string{"Queen"}, got.Exchanges[0].Entities)
}

func TestSnapshotsSaveOverwrites(t *testing.T) {
	repo := newTestSnapshots(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &core.SessionSnapshot{SessionID: "s1", TotalExchanges: 1, UpdatedAt: time.Now()}))
	require.NoError(t, repo.Save(ctx, &core.SessionSnapshot{SessionID: "s1", TotalExchanges: 7, UpdatedAt: time.Now()}))

	got, err := repo.Load(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 7, got.TotalExchanges)
}

func TestSnapshotsSessionsAreIndependent(t *testing.T) {
	repo := newTestSnapshots(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &core.SessionSnapshot{SessionID: "a", TotalExchanges: 1, UpdatedAt: time.Now()}))
	require.NoError(t, repo.Save(ctx, &core.SessionSnapshot{SessionID: "b", TotalExchanges: 2, UpdatedAt: time.Now()}))

	a, err := repo.Load(ctx, "a")
	require.NoError(t, err)
	b, err := repo.Load(ctx, "b")
	require.NoError(t, err)

	assert.Equal(t, 1, a.TotalExchanges)
	assert.Equal(t, 2, b.TotalExchanges)
}
