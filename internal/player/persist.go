package player

import (
	"context"
)

// PersistedState is the three-field projection of a session that
// survives restarts: the playlist, the selected index (NoPosition for
// none) and the play mode. It carries no identity of its own; the
// in-memory session is the source of truth.
type PersistedState struct {
	Tracks   []Track
	Position int
	Mode     PlayMode
}

// Store persists session state. Save is fire-and-forget from the
// caller's point of view: failures are logged, never retried before the
// next mutation. Load must degrade per field, not per call.
type Store interface {
	Load(ctx context.Context, sessionID string) (PersistedState, error)
	Save(ctx context.Context, sessionID string, st PersistedState) error
}
