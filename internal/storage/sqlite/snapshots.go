package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sandevgo/chatctx/internal/core"
	"github.com/sandevgo/chatctx/pkg/log"
)

// Snapshots persists whole-session snapshots as JSON documents keyed by
// session id. One row per session; saves overwrite.
type Snapshots struct {
	db *sql.DB
}

func NewSnapshots(db *sql.DB) *Snapshots {
	return &Snapshots{db: db}
}

func (s *Snapshots) Load(ctx context.Context, sessionID string) (*core.SessionSnapshot, error) {
	query := `SELECT snapshot FROM sessions WHERE session_id = ?`

	var raw string
	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session snapshot: %w", err)
	}

	var snap core.SessionSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session snapshot: %w", err)
	}

	log.FromCtx(ctx).Debug().
		Str("session_id", sessionID).
		Int("exchanges", len(snap.Exchanges)).
		Msg("loaded session snapshot")
	return &snap, nil
}

func (s *Snapshots) Save(ctx context.Context, snapshot *core.SessionSnapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal session snapshot: %w", err)
	}

	query := `INSERT INTO sessions (session_id, snapshot, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET snapshot = excluded.snapshot, updated_at = excluded.updated_at`
	if _, err := s.db.ExecContext(ctx, query, snapshot.SessionID, string(raw), snapshot.UpdatedAt); err != nil {
		return fmt.Errorf("failed to upsert session snapshot: %w", err)
	}
	return nil
}
