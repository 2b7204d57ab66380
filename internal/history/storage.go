package history

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Entry is one completed (or abandoned) play of a track.
type Entry struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"sessionId"`
	VideoID    string    `json:"videoId"`
	Title      string    `json:"title"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

type Store interface {
	Record(ctx context.Context, e Entry) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]Entry, error)
}

// DB is the subset of pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresStore struct {
	db DB
}

func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func AutoMigrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS play_history(
          id          uuid PRIMARY KEY DEFAULT gen_random_uuid(),
          session_id  TEXT NOT NULL,
          video_id    TEXT NOT NULL,
          title       TEXT NOT NULL,
          started_at  TIMESTAMPTZ NOT NULL,
          finished_at TIMESTAMPTZ NOT NULL DEFAULT now()
      )
    `)
	if err != nil {
		log.Printf("playdeck: migrate play_history: %v", err)
		return err
	}

	if _, err := pool.Exec(ctx, `
        CREATE INDEX IF NOT EXISTS idx_play_history_session
        ON play_history(session_id, finished_at DESC)
    `); err != nil {
		log.Printf("playdeck: migrate play_history index: %v", err)
		return err
	}
	return nil
}

func (s *PostgresStore) Record(ctx context.Context, e Entry) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO play_history(session_id, video_id, title, started_at, finished_at)
        VALUES($1, $2, $3, $4, $5)
    `, e.SessionID, e.VideoID, e.Title, e.StartedAt, e.FinishedAt)
	return err
}

func (s *PostgresStore) ListBySession(ctx context.Context, sessionID string, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.db.Query(ctx, `
        SELECT id, session_id, video_id, title, started_at, finished_at
        FROM play_history
        WHERE session_id = $1
        ORDER BY finished_at DESC
        LIMIT $2
    `, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.VideoID, &e.Title, &e.StartedAt, &e.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
