package store

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"

	"github.com/redis/go-redis/v9"

	"playdeck/internal/player"
)

// RedisStore keeps each session as three independent string keys:
//
//	player:{id}:playlist  JSON array of tracks
//	player:{id}:position  decimal index, empty string for none
//	player:{id}:mode      "none" | "repeat-all" | "shuffle"
//
// Each field is parsed on its own so one corrupt entry never takes the
// others down with it.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func playlistKey(id string) string { return "player:" + id + ":playlist" }
func positionKey(id string) string { return "player:" + id + ":position" }
func modeKey(id string) string     { return "player:" + id + ":mode" }

func (s *RedisStore) Save(ctx context.Context, sessionID string, st player.PersistedState) error {
	data, err := json.Marshal(st.Tracks)
	if err != nil {
		return err
	}

	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, playlistKey(sessionID), string(data), 0)
	pipe.Set(ctx, positionKey(sessionID), encodePosition(st.Position), 0)
	pipe.Set(ctx, modeKey(sessionID), string(st.Mode), 0)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (player.PersistedState, error) {
	st := player.PersistedState{
		Position: player.NoPosition,
		Mode:     player.ModeOff,
	}

	found := false

	raw, err := s.rdb.Get(ctx, playlistKey(sessionID)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		// Nothing stored yet.
	case err != nil:
		return st, err
	default:
		found = true
		st.Tracks = decodePlaylist(sessionID, raw)
	}

	if raw, err := s.rdb.Get(ctx, positionKey(sessionID)).Result(); err == nil {
		found = true
		st.Position = decodePosition(sessionID, raw)
	}

	if raw, err := s.rdb.Get(ctx, modeKey(sessionID)).Result(); err == nil {
		found = true
		st.Mode = decodeMode(sessionID, raw)
	}

	if !found {
		return st, player.ErrNoSession
	}
	return st, nil
}

func encodePosition(idx int) string {
	if idx == player.NoPosition {
		return ""
	}
	return strconv.Itoa(idx)
}

func decodePlaylist(sessionID, raw string) []player.Track {
	var tracks []player.Track
	if err := json.Unmarshal([]byte(raw), &tracks); err != nil {
		log.Printf("store: malformed playlist for %s, using empty: %v", sessionID, err)
		return nil
	}
	return tracks
}

func decodePosition(sessionID, raw string) int {
	if raw == "" {
		return player.NoPosition
	}
	idx, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("store: malformed position for %s: %q", sessionID, raw)
		return player.NoPosition
	}
	return idx
}

func decodeMode(sessionID, raw string) player.PlayMode {
	mode, ok := player.ParsePlayMode(raw)
	if !ok && raw != "" {
		log.Printf("store: unknown play mode for %s: %q", sessionID, raw)
	}
	return mode
}
