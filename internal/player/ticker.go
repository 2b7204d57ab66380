package player

import (
	"context"
	"log"
	"time"
)

// completionGrace pads the reported duration before the ticker treats a
// track as finished, so the widget's own "ended" callback gets to fire
// first. The advance path is shared, and each advance resets the
// playing clock, so the two detectors cannot double-fire.
const completionGrace = 2 * time.Second

// StartTicker starts the backstop worker that advances sessions whose
// current track should have finished but whose "ended" callback never
// arrived. Stops when ctx is canceled.
func (s *Server) StartTicker(ctx context.Context) {
	ticker := time.NewTicker(500 * time.Millisecond)
	go func() {
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-ticker.C:
				s.checkAndAdvanceSessions(ctx)
			}
		}
	}()
}

// completionOverdue reports whether the current track has played past
// its known duration plus grace. Caller holds mu.
func (s *Session) completionOverdue(now time.Time) bool {
	if s.status != StatusPlaying || s.position == NoPosition || s.playingStartedAt.IsZero() {
		return false
	}
	duration := s.reportedDurationMs
	if cur, ok := s.current(); ok && cur.DurationMs > 0 {
		duration = cur.DurationMs
	}
	if duration <= 0 {
		return false
	}
	deadline := s.playingStartedAt.Add(time.Duration(duration)*time.Millisecond + completionGrace)
	return now.After(deadline)
}

type overdueSession struct {
	sessionID string
	trackID   int64
}

func (s *Server) checkAndAdvanceSessions(ctx context.Context) {
	s.mu.RLock()
	candidates := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		candidates = append(candidates, sess)
	}
	s.mu.RUnlock()

	now := time.Now()
	var overdue []overdueSession
	for _, sess := range candidates {
		sess.mu.Lock()
		if cur, ok := sess.current(); ok && sess.completionOverdue(now) {
			overdue = append(overdue, overdueSession{sessionID: sess.ID, trackID: cur.ID})
		}
		sess.mu.Unlock()
	}

	for _, o := range overdue {
		log.Printf("playdeck: ticker advancing session %s", o.sessionID)
		if _, err := s.advanceOverdue(ctx, o.sessionID, o.trackID); err != nil {
			log.Printf("playdeck: ticker advance error for %s: %v", o.sessionID, err)
		}
	}
}

// advanceOverdue advances only if the track observed overdue during the
// scan is still current and still past its deadline. A bridge "ended"
// handled between the scan and this call already advanced the session
// and resets the playing clock, making this a no-op.
func (s *Server) advanceOverdue(ctx context.Context, id string, trackID int64) (Snapshot, error) {
	return s.mutate(ctx, id, func(sess *Session) error {
		cur, ok := sess.current()
		if !ok || cur.ID != trackID || !sess.completionOverdue(time.Now()) {
			return nil
		}
		sess.advance()
		return nil
	})
}
