package player

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"playdeck/internal/history"
)

// handleHistory lists the most recently finished plays of a session.
// GET /sessions/{id}/history
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if _, err := s.getSession(ctx, id); errors.Is(err, ErrNoSession) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	entries := []history.Entry{}
	if s.history != nil {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		got, err := s.history.ListBySession(ctx, id, limit)
		if err != nil {
			log.Printf("playdeck: list history for %s: %v", id, err)
			writeError(w, http.StatusInternalServerError, "storage error")
			return
		}
		if got != nil {
			entries = got
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sessionId": id,
		"entries":   entries,
	})
}
