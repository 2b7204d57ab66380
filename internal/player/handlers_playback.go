package player

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// handleNext skips to the next track per the current play mode.
// POST /sessions/{id}/next
func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Advance(r.Context(), chi.URLParam(r, "id"))
	s.writePlaybackResult(w, snap, err)
}

// handlePrevious steps back one track in playlist order.
// POST /sessions/{id}/previous
func (s *Server) handlePrevious(w http.ResponseWriter, r *http.Request) {
	snap, err := s.mutate(r.Context(), chi.URLParam(r, "id"), func(sess *Session) error {
		sess.retreat()
		return nil
	})
	s.writePlaybackResult(w, snap, err)
}

// handleSelect jumps to a specific track.
// POST /sessions/{id}/select
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Index int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	snap, err := s.mutate(r.Context(), chi.URLParam(r, "id"), func(sess *Session) error {
		return sess.selectTrack(body.Index)
	})
	if errors.Is(err, ErrBadIndex) {
		writeError(w, http.StatusBadRequest, "index out of range")
		return
	}
	s.writePlaybackResult(w, snap, err)
}

// handleToggleMode cycles none -> repeat-all -> shuffle -> none.
// POST /sessions/{id}/mode
func (s *Server) handleToggleMode(w http.ResponseWriter, r *http.Request) {
	snap, err := s.mutate(r.Context(), chi.URLParam(r, "id"), func(sess *Session) error {
		sess.toggleMode()
		return nil
	})
	s.writePlaybackResult(w, snap, err)
}

// BridgeEvent is a lifecycle notification from the embedded media
// widget, forwarded by the embedding page.
type BridgeEvent struct {
	Type        string  `json:"type"` // "ready" | "playing" | "paused" | "ended" | "state"
	TrackID     int64   `json:"trackId,omitempty"`
	CurrentTime float64 `json:"currentTime,omitempty"` // seconds
	Duration    float64 `json:"duration,omitempty"`    // seconds
}

// handleBridgeEvent applies a widget lifecycle event to the session.
// POST /sessions/{id}/events
func (s *Server) handleBridgeEvent(w http.ResponseWriter, r *http.Request) {
	var ev BridgeEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	switch ev.Type {
	case "ready", "playing", "paused", "ended", "state":
	default:
		writeError(w, http.StatusBadRequest, "unknown event type")
		return
	}

	snap, err := s.mutate(r.Context(), chi.URLParam(r, "id"), func(sess *Session) error {
		sess.applyBridgeEvent(ev)
		return nil
	})
	s.writePlaybackResult(w, snap, err)
}

// applyBridgeEvent routes widget callbacks into the sequencer. An
// "ended" event must name the track it saw finish; events without a
// track id, or with a stale one (the session already advanced past
// it), are dropped, so one completion can never trigger two advances.
// Caller holds mu.
func (s *Session) applyBridgeEvent(ev BridgeEvent) {
	if ev.Duration > 0 {
		s.reportedDurationMs = int(ev.Duration * 1000)
	}

	switch ev.Type {
	case "playing":
		if s.position == NoPosition {
			return
		}
		s.status = StatusPlaying
		s.playingStartedAt = time.Now().Add(-time.Duration(ev.CurrentTime * float64(time.Second)))
	case "paused":
		if s.status == StatusPlaying {
			s.status = StatusPaused
		}
	case "ended":
		cur, ok := s.current()
		if !ok || ev.TrackID != cur.ID {
			return
		}
		s.advance()
	}
	// "ready" and "state" only refresh the reported duration.
}

func (s *Server) writePlaybackResult(w http.ResponseWriter, snap Snapshot, err error) {
	switch {
	case errors.Is(err, ErrNoSession):
		writeError(w, http.StatusNotFound, "session not found")
	case err != nil:
		log.Printf("playdeck: playback command: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	default:
		writeJSON(w, http.StatusOK, snap)
	}
}
