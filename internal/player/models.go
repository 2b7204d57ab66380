package player

import (
	"sync"
	"time"
)

// Track is one playable entry in a session's playlist. Tracks are
// immutable once created; identity is ID, unique within the session.
type Track struct {
	ID         int64     `json:"id"`
	VideoID    string    `json:"videoId"`
	Title      string    `json:"title"`
	SourceURL  string    `json:"sourceUrl"`
	DurationMs int       `json:"durationMs"`
	AddedAt    time.Time `json:"addedAt"`
}

// PlayMode governs how the next track is chosen. The string values are
// also the persisted representation.
type PlayMode string

const (
	ModeOff       PlayMode = "none"
	ModeRepeatAll PlayMode = "repeat-all"
	ModeShuffle   PlayMode = "shuffle"
)

// ParsePlayMode converts a stored string to a PlayMode. Unknown values
// report false so callers can fall back to ModeOff.
func ParsePlayMode(s string) (PlayMode, bool) {
	switch PlayMode(s) {
	case ModeOff, ModeRepeatAll, ModeShuffle:
		return PlayMode(s), true
	default:
		return ModeOff, false
	}
}

// Toggle cycles none -> repeat-all -> shuffle -> none.
func (m PlayMode) Toggle() PlayMode {
	switch m {
	case ModeOff:
		return ModeRepeatAll
	case ModeRepeatAll:
		return ModeShuffle
	default:
		return ModeOff
	}
}

// Playback status of a session.
const (
	StatusPlaying = "playing"
	StatusPaused  = "paused"
	StatusStopped = "stopped"
)

// NoPosition is the in-memory sentinel for "nothing selected".
const NoPosition = -1

// Session owns the whole data model for one player: the playlist, the
// selection, the play mode and the shuffle history. All mutation goes
// through methods that expect the caller to hold mu.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu sync.Mutex

	tracks   []Track
	position int
	mode     PlayMode
	status   string

	// Shuffle bookkeeping: indices already played this cycle.
	shuffleHistory []int

	// Reported by the playback bridge; drives the backstop ticker.
	playingStartedAt   time.Time
	reportedDurationMs int

	nextID int64
}

// Snapshot is the wire representation of a session's state.
type Snapshot struct {
	SessionID string   `json:"sessionId"`
	Tracks    []Track  `json:"tracks"`
	Position  *int     `json:"position"`
	Current   *Track   `json:"current,omitempty"`
	Mode      PlayMode `json:"mode"`
	Status    string   `json:"status"`
}

func newSession(id string) *Session {
	return &Session{
		ID:        id,
		CreatedAt: time.Now(),
		position:  NoPosition,
		mode:      ModeOff,
		status:    StatusStopped,
		nextID:    1,
	}
}

// snapshot builds a Snapshot. Caller holds mu.
func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		SessionID: s.ID,
		Tracks:    append([]Track(nil), s.tracks...),
		Mode:      s.mode,
		Status:    s.status,
	}
	if s.position != NoPosition {
		pos := s.position
		snap.Position = &pos
		cur := s.tracks[s.position]
		snap.Current = &cur
	}
	return snap
}

// current returns the selected track, if any. Caller holds mu.
func (s *Session) current() (Track, bool) {
	if s.position == NoPosition || s.position >= len(s.tracks) {
		return Track{}, false
	}
	return s.tracks[s.position], true
}
