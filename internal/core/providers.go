package core

import "context"

// Embedder turns text into a fixed-dimension vector. The dimension is fixed
// for the lifetime of a process. Calls may fail or time out; every consumer
// must degrade to the lexical path instead of propagating the failure.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// AnswerProvider is the downstream answer pipeline. The engine never calls
// it; it only assembles the context string a caller hands to it.
type AnswerProvider interface {
	GenerateAnswer(ctx context.Context, prompt string) (string, error)
}

// SnapshotStore optionally persists sessions across restarts. The engine is
// fully correct with no store wired; persistence is best-effort.
type SnapshotStore interface {
	// Load returns nil, nil when the session has never been saved.
	Load(ctx context.Context, sessionID string) (*SessionSnapshot, error)
	Save(ctx context.Context, snapshot *SessionSnapshot) error
}
