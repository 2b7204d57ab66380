package player

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// handleAddTrack appends a track to the session's playlist.
// POST /sessions/{id}/tracks
func (s *Server) handleAddTrack(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	var body struct {
		Title      string `json:"title"`
		URL        string `json:"url"`
		DurationMs int    `json:"durationMs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var created Track
	snap, err := s.mutate(ctx, id, func(sess *Session) error {
		tr, err := sess.addTrack(body.Title, body.URL, body.DurationMs)
		if err != nil {
			return err
		}
		created = tr
		return nil
	})
	switch {
	case errors.Is(err, ErrNoSession):
		writeError(w, http.StatusNotFound, "session not found")
		return
	case errors.Is(err, ErrEmptyField), errors.Is(err, ErrInvalidURL):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.publishEvent(ctx, map[string]any{
		"type": "track.added",
		"payload": map[string]any{
			"sessionId": id,
			"track":     created,
		},
	})

	writeJSON(w, http.StatusCreated, map[string]any{
		"track": created,
		"state": snap,
	})
}

// handleDeleteTrack removes a track by id.
// DELETE /sessions/{id}/tracks/{trackId}
func (s *Server) handleDeleteTrack(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	trackID, err := strconv.ParseInt(chi.URLParam(r, "trackId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid track id")
		return
	}

	snap, err := s.mutate(ctx, id, func(sess *Session) error {
		return sess.removeTrack(trackID)
	})
	switch {
	case errors.Is(err, ErrNoSession):
		writeError(w, http.StatusNotFound, "session not found")
		return
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "track not found")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.publishEvent(ctx, map[string]any{
		"type": "track.removed",
		"payload": map[string]any{
			"sessionId": id,
			"trackId":   trackID,
		},
	})

	writeJSON(w, http.StatusOK, snap)
}
