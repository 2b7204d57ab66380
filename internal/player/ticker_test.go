package player

import (
	"context"
	"testing"
	"time"
)

func TestCheckAndAdvanceSessions(t *testing.T) {
	srv, _, _ := newTestServer()

	overdue := testSession(3)
	overdue.ID = "overdue"
	overdue.position = 0
	overdue.status = StatusPlaying
	overdue.reportedDurationMs = 1000
	overdue.playingStartedAt = time.Now().Add(-10 * time.Second)

	fresh := testSession(2)
	fresh.ID = "fresh"
	fresh.position = 0
	fresh.status = StatusPlaying
	fresh.reportedDurationMs = 60000
	fresh.playingStartedAt = time.Now()

	paused := testSession(2)
	paused.ID = "paused"
	paused.position = 0
	paused.status = StatusPaused
	paused.reportedDurationMs = 1000
	paused.playingStartedAt = time.Now().Add(-10 * time.Second)

	srv.sessions[overdue.ID] = overdue
	srv.sessions[fresh.ID] = fresh
	srv.sessions[paused.ID] = paused

	srv.checkAndAdvanceSessions(context.Background())

	if overdue.position != 1 {
		t.Errorf("overdue session position = %d, want 1", overdue.position)
	}
	if fresh.position != 0 {
		t.Errorf("fresh session position = %d, want 0", fresh.position)
	}
	if paused.position != 0 {
		t.Errorf("paused session position = %d, want 0", paused.position)
	}
}

func TestAdvanceOverdue_RecheckedUnderLock(t *testing.T) {
	srv, _, _ := newTestServer()

	sess := testSession(3)
	sess.ID = "raced"
	sess.position = 0
	sess.status = StatusPlaying
	sess.reportedDurationMs = 1000
	sess.playingStartedAt = time.Now().Add(-10 * time.Second)
	srv.sessions[sess.ID] = sess

	firstID := sess.tracks[0].ID

	// The widget's own "ended" lands between the ticker's scan and its
	// advance: the session moves on and the playing clock resets.
	sess.mu.Lock()
	sess.applyBridgeEvent(BridgeEvent{Type: "ended", TrackID: firstID})
	sess.mu.Unlock()
	if sess.position != 1 {
		t.Fatalf("position = %d, want 1", sess.position)
	}

	// The ticker's deferred advance for the old track is now stale and
	// must not fire a second advance for the same completion.
	if _, err := srv.advanceOverdue(context.Background(), sess.ID, firstID); err != nil {
		t.Fatalf("advanceOverdue: %v", err)
	}
	if sess.position != 1 {
		t.Errorf("stale ticker advance moved position to %d, want 1", sess.position)
	}
}

func TestAdvanceOverdue_StillOverdueAdvances(t *testing.T) {
	srv, _, _ := newTestServer()

	sess := testSession(3)
	sess.ID = "still-overdue"
	sess.position = 0
	sess.status = StatusPlaying
	sess.reportedDurationMs = 1000
	sess.playingStartedAt = time.Now().Add(-10 * time.Second)
	srv.sessions[sess.ID] = sess

	if _, err := srv.advanceOverdue(context.Background(), sess.ID, sess.tracks[0].ID); err != nil {
		t.Fatalf("advanceOverdue: %v", err)
	}
	if sess.position != 1 {
		t.Errorf("position = %d, want 1", sess.position)
	}
}

func TestCheckAndAdvance_NoDurationNoAdvance(t *testing.T) {
	srv, _, _ := newTestServer()

	sess := testSession(2)
	sess.ID = "unknown-duration"
	sess.position = 0
	sess.status = StatusPlaying
	sess.playingStartedAt = time.Now().Add(-time.Hour)
	srv.sessions[sess.ID] = sess

	srv.checkAndAdvanceSessions(context.Background())

	if sess.position != 0 {
		t.Errorf("position = %d, want 0 when no duration is known", sess.position)
	}
}
