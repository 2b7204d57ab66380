package player

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// handleCreateSession starts a fresh, empty player session.
// POST /sessions
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := uuid.NewString()

	sess := newSession(id)
	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	sess.mu.Lock()
	snap := sess.snapshot()
	sess.mu.Unlock()

	if s.store != nil {
		if err := s.store.Save(ctx, id, PersistedState{Position: NoPosition, Mode: ModeOff}); err != nil {
			log.Printf("playdeck: save new session %s: %v", id, err)
		}
	}

	s.publishEvent(ctx, map[string]any{
		"type":    "session.created",
		"payload": snap,
	})

	writeJSON(w, http.StatusCreated, snap)
}

// handleGetSession returns the full state snapshot of a session.
// GET /sessions/{id}
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	sess, err := s.getSession(ctx, id)
	if errors.Is(err, ErrNoSession) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		log.Printf("playdeck: get session %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	sess.mu.Lock()
	snap := sess.snapshot()
	sess.mu.Unlock()

	writeJSON(w, http.StatusOK, snap)
}
