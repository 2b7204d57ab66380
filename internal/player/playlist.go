package player

import (
	"strings"
	"time"

	"playdeck/internal/provider"
)

// addTrack validates the input, appends a new track and applies the
// auto-play-on-first-add policy: the first track added to an empty
// playlist with no selection becomes current and starts playing.
// Caller holds mu.
func (s *Session) addTrack(title, url string, durationMs int) (Track, error) {
	title = strings.TrimSpace(title)
	url = strings.TrimSpace(url)
	if title == "" || url == "" {
		return Track{}, ErrEmptyField
	}

	videoID, ok := provider.ExtractVideoID(url)
	if !ok {
		return Track{}, ErrInvalidURL
	}

	tr := Track{
		ID:         s.nextID,
		VideoID:    videoID,
		Title:      title,
		SourceURL:  url,
		DurationMs: durationMs,
		AddedAt:    time.Now(),
	}
	s.nextID++

	wasEmpty := len(s.tracks) == 0
	s.tracks = append(s.tracks, tr)

	if wasEmpty && s.position == NoPosition {
		s.position = 0
		s.status = StatusPlaying
		s.playingStartedAt = time.Now()
	}
	return tr, nil
}

// removeTrack removes the track with the given id and repairs the
// selection and the shuffle history around the removed index.
// Caller holds mu.
func (s *Session) removeTrack(id int64) error {
	idx := -1
	for i, tr := range s.tracks {
		if tr.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrNotFound
	}

	s.tracks = append(s.tracks[:idx], s.tracks[idx+1:]...)

	switch {
	case s.position == idx:
		// The current track went away: stop it, then reselect.
		if len(s.tracks) == 0 {
			s.position = NoPosition
			s.status = StatusStopped
		} else if idx < len(s.tracks) {
			// The track that shifted into this slot becomes current.
			s.position = idx
			s.status = StatusPlaying
			s.playingStartedAt = time.Now()
		} else {
			// Removed the last element while it was selected.
			s.position = len(s.tracks) - 1
			s.status = StatusPlaying
			s.playingStartedAt = time.Now()
		}
	case s.position > idx:
		// Keep pointing at the same logical track.
		s.position--
	}

	// Drop the removed index from the shuffle history and shift the
	// indices above it down so the history stays valid.
	if len(s.shuffleHistory) > 0 {
		kept := s.shuffleHistory[:0]
		for _, h := range s.shuffleHistory {
			if h == idx {
				continue
			}
			if h > idx {
				h--
			}
			kept = append(kept, h)
		}
		s.shuffleHistory = kept
	}
	return nil
}
