package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/park285/moin-chess/internal/domain"
)

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS chess_games (
		namespace       TEXT        NOT NULL,
		game_id         TEXT        NOT NULL,
		canonical_moves TEXT        NOT NULL,
		origin_page     TEXT        NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL,
		updated_at      TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (namespace, game_id)
	)`

// PostgresStore keeps game records in the chess_games table.
type PostgresStore struct {
	db        *sql.DB
	namespace string
}

func NewPostgresStore(db *sql.DB, namespace string) *PostgresStore {
	if strings.TrimSpace(namespace) == "" {
		namespace = DefaultNamespace
	}
	return &PostgresStore{db: db, namespace: strings.TrimSpace(namespace)}
}

// OpenPostgres opens and pings databaseURL with the pool limits used across the service.
func OpenPostgres(ctx context.Context, databaseURL string) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the chess_games table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create chess_games: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *PostgresStore) TryCreate(ctx context.Context, id string, rec *domain.GameRecord) (bool, error) {
	if rec == nil {
		return false, errNilRecord
	}
	const query = `
		INSERT INTO chess_games (namespace, game_id, canonical_moves, origin_page, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (namespace, game_id) DO NOTHING
		RETURNING game_id`

	var inserted string
	err := s.db.QueryRowContext(ctx, query,
		s.namespace,
		strings.TrimSpace(id),
		rec.CanonicalMoves,
		rec.OriginPage,
		rec.CreatedAt,
		rec.UpdatedAt,
	).Scan(&inserted)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert chess game: %w", err)
	}
	return true, nil
}

func (s *PostgresStore) Read(ctx context.Context, id string) (*domain.GameRecord, error) {
	const query = `
		SELECT game_id, canonical_moves, origin_page, created_at, updated_at
		FROM chess_games
		WHERE namespace = $1 AND game_id = $2`

	var rec domain.GameRecord
	err := s.db.QueryRowContext(ctx, query, s.namespace, strings.TrimSpace(id)).Scan(
		&rec.ID,
		&rec.CanonicalMoves,
		&rec.OriginPage,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select chess game: %w", err)
	}
	return &rec, nil
}

func (s *PostgresStore) Overwrite(ctx context.Context, id string, rec *domain.GameRecord) error {
	if rec == nil {
		return errNilRecord
	}
	const query = `
		INSERT INTO chess_games (namespace, game_id, canonical_moves, origin_page, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (namespace, game_id) DO UPDATE SET
			canonical_moves = EXCLUDED.canonical_moves,
			origin_page     = EXCLUDED.origin_page,
			updated_at      = EXCLUDED.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		s.namespace,
		strings.TrimSpace(id),
		rec.CanonicalMoves,
		rec.OriginPage,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert chess game: %w", err)
	}
	return nil
}
