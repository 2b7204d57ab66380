package player

import (
	"errors"
	"math/rand"
	"time"
)

var (
	ErrEmptyField = errors.New("title and url are required")
	ErrInvalidURL = errors.New("url is not a recognized video link")
	ErrNotFound   = errors.New("track not found")
	ErrNoSession  = errors.New("session not found")
	ErrBadIndex   = errors.New("index out of range")
)

// selectTrack makes index the current track and starts playback. In
// shuffle mode a manual jump anchors a fresh cycle at that track.
// Caller holds mu.
func (s *Session) selectTrack(index int) error {
	if index < 0 || index >= len(s.tracks) {
		return ErrBadIndex
	}
	s.position = index
	s.status = StatusPlaying
	s.playingStartedAt = time.Now()
	if s.mode == ModeShuffle {
		s.shuffleHistory = []int{index}
	}
	return nil
}

// advance moves to the next track according to the play mode. End-of-track
// completions and user "next" requests share this path. Caller holds mu.
func (s *Session) advance() {
	n := len(s.tracks)
	if n == 0 {
		return
	}

	switch s.mode {
	case ModeShuffle:
		s.advanceShuffle(n)
	case ModeRepeatAll:
		next := (s.position + 1) % n
		if s.position == NoPosition {
			next = 0
		}
		s.position = next
		s.status = StatusPlaying
		s.playingStartedAt = time.Now()
	default: // ModeOff
		hadSelection := s.position != NoPosition
		next := (s.position + 1) % n
		if !hadSelection {
			next = 0
		}
		// Off mode plays the list through once and halts on wrap-around.
		// A single-track list never detects the wrap and keeps looping.
		if next == 0 && hadSelection && n > 1 {
			s.position = NoPosition
			s.status = StatusStopped
			return
		}
		s.position = next
		s.status = StatusPlaying
		s.playingStartedAt = time.Now()
	}
}

// advanceShuffle picks uniformly among the indices not yet played this
// cycle. When the cycle is exhausted the history resets and the pick
// ranges over all tracks, which may repeat the track that just finished.
func (s *Session) advanceShuffle(n int) {
	played := make(map[int]bool, len(s.shuffleHistory))
	for _, idx := range s.shuffleHistory {
		played[idx] = true
	}

	remaining := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if !played[i] {
			remaining = append(remaining, i)
		}
	}
	if len(remaining) == 0 {
		s.shuffleHistory = nil
		for i := 0; i < n; i++ {
			remaining = append(remaining, i)
		}
	}

	pick := remaining[rand.Intn(len(remaining))]
	s.shuffleHistory = append(s.shuffleHistory, pick)
	s.position = pick
	s.status = StatusPlaying
	s.playingStartedAt = time.Now()
}

// retreat moves to the previous track by playlist order regardless of
// mode. With no selection it behaves as if position 0 were selected,
// wrapping to the last track. Caller holds mu.
func (s *Session) retreat() {
	n := len(s.tracks)
	if n == 0 {
		return
	}
	pos := s.position
	if pos == NoPosition {
		pos = 0
	}
	s.position = (pos - 1 + n) % n
	s.status = StatusPlaying
	s.playingStartedAt = time.Now()
}

// toggleMode cycles the play mode. Entering shuffle starts with a clean
// history. Caller holds mu.
func (s *Session) toggleMode() PlayMode {
	s.mode = s.mode.Toggle()
	if s.mode == ModeShuffle {
		s.shuffleHistory = nil
	}
	return s.mode
}
