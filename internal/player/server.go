package player

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"playdeck/internal/history"
)

// Server hosts player sessions and exposes them over HTTP. Sessions
// live in memory and are mirrored to the Store on every mutation;
// finished plays are archived to the history store best-effort.
type Server struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	store   Store
	history history.Store
	rdb     *redis.Client
}

func NewServer(store Store, hist history.Store, rdb *redis.Client) *Server {
	return &Server{
		sessions: make(map[string]*Session),
		store:    store,
		history:  hist,
		rdb:      rdb,
	}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/health", s.handleHealth)

	r.Post("/sessions", s.handleCreateSession)
	r.Get("/sessions/{id}", s.handleGetSession)

	r.Post("/sessions/{id}/tracks", s.handleAddTrack)
	r.Delete("/sessions/{id}/tracks/{trackId}", s.handleDeleteTrack)

	r.Post("/sessions/{id}/next", s.handleNext)
	r.Post("/sessions/{id}/previous", s.handlePrevious)
	r.Post("/sessions/{id}/select", s.handleSelect)
	r.Post("/sessions/{id}/mode", s.handleToggleMode)
	r.Post("/sessions/{id}/events", s.handleBridgeEvent)

	r.Get("/sessions/{id}/history", s.handleHistory)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "playdeck",
	})
}

// getSession returns the in-memory session, hydrating it from the
// store on first access after a restart.
func (s *Server) getSession(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return sess, nil
	}
	if s.store == nil {
		return nil, ErrNoSession
	}

	st, err := s.store.Load(ctx, id)
	if errors.Is(err, ErrNoSession) {
		return nil, ErrNoSession
	}
	if err != nil {
		// Degrade to defaults rather than failing the request.
		log.Printf("playdeck: load session %s: %v", id, err)
	}

	sess = newSession(id)
	sess.tracks = st.Tracks
	sess.mode = st.Mode
	for _, tr := range st.Tracks {
		if tr.ID >= sess.nextID {
			sess.nextID = tr.ID + 1
		}
	}
	// A stored position that no longer fits the playlist is discarded;
	// the rest of the state is kept as stored.
	if st.Position >= 0 && st.Position < len(st.Tracks) {
		sess.position = st.Position
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[id]; ok {
		return existing, nil
	}
	s.sessions[id] = sess
	return sess, nil
}

// mutate runs fn on the session under its lock, then persists the new
// state, archives a finished play if the current track changed, and
// broadcasts the updated snapshot. Persistence always happens after the
// in-memory mutation it reflects.
func (s *Server) mutate(ctx context.Context, id string, fn func(*Session) error) (Snapshot, error) {
	sess, err := s.getSession(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}

	sess.mu.Lock()
	prev, prevOK := sess.current()
	prevStatus := sess.status
	prevStarted := sess.playingStartedAt

	if err := fn(sess); err != nil {
		sess.mu.Unlock()
		return Snapshot{}, err
	}

	cur, curOK := sess.current()
	if !curOK || !prevOK || cur.ID != prev.ID {
		sess.reportedDurationMs = 0
	}
	snap := sess.snapshot()
	st := PersistedState{Tracks: snap.Tracks, Position: NoPosition, Mode: snap.Mode}
	if snap.Position != nil {
		st.Position = *snap.Position
	}
	// Saved while still holding the session lock: mirror writes land in
	// mutation order, never one state behind.
	if s.store != nil {
		if err := s.store.Save(ctx, id, st); err != nil {
			log.Printf("playdeck: save session %s: %v", id, err)
		}
	}
	sess.mu.Unlock()

	if s.history != nil && prevOK && prevStatus == StatusPlaying && (!curOK || cur.ID != prev.ID) {
		e := history.Entry{
			SessionID:  id,
			VideoID:    prev.VideoID,
			Title:      prev.Title,
			StartedAt:  prevStarted,
			FinishedAt: time.Now(),
		}
		if err := s.history.Record(ctx, e); err != nil {
			log.Printf("playdeck: record history for %s: %v", id, err)
		}
	}

	s.publishEvent(ctx, map[string]any{
		"type":    "player.state_changed",
		"payload": snap,
	})
	return snap, nil
}

func (s *Server) publishEvent(ctx context.Context, event map[string]any) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("playdeck: marshal event: %v", err)
		return
	}
	if err := s.rdb.Publish(ctx, "broadcast", string(data)).Err(); err != nil {
		log.Printf("playdeck: publish event: %v", err)
	}
}

// Advance moves the session to its next track. Shared by the HTTP
// handler, the playback bridge and the backstop ticker.
func (s *Server) Advance(ctx context.Context, id string) (Snapshot, error) {
	return s.mutate(ctx, id, func(sess *Session) error {
		sess.advance()
		return nil
	})
}
