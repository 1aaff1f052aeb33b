package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/park285/moin-chess/internal/domain"
)

func newTestPostgresStore(t *testing.T) *PostgresStore {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := OpenPostgres(ctx, url)
	if err != nil {
		t.Fatalf("OpenPostgres: %v", err)
	}
	s := NewPostgresStore(db, "test-"+uuid.NewString())
	if err := s.EnsureSchema(ctx); err != nil {
		_ = s.Close()
		t.Fatalf("EnsureSchema: %v", err)
	}
	t.Cleanup(func() {
		_, _ = db.ExecContext(context.Background(), `DELETE FROM chess_games WHERE namespace = $1`, s.namespace)
		_ = s.Close()
	})
	return s
}

func TestPostgresStore_TryCreateOnlyOnce(t *testing.T) {
	s := newTestPostgresStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	first := &domain.GameRecord{ID: "G", CanonicalMoves: "e4 e5", OriginPage: "P", CreatedAt: now, UpdatedAt: now}
	ok, err := s.TryCreate(ctx, "G", first)
	if err != nil || !ok {
		t.Fatalf("first TryCreate = %v, %v; want true, nil", ok, err)
	}

	second := &domain.GameRecord{ID: "G", CanonicalMoves: "d4", OriginPage: "Q", CreatedAt: now, UpdatedAt: now}
	ok, err = s.TryCreate(ctx, "G", second)
	if err != nil || ok {
		t.Fatalf("second TryCreate = %v, %v; want false, nil", ok, err)
	}

	got, err := s.Read(ctx, "G")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got == nil || got.CanonicalMoves != "e4 e5" || got.OriginPage != "P" {
		t.Fatalf("stored record = %+v, want first writer", got)
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("created_at = %v, want %v", got.CreatedAt, now)
	}
}

func TestPostgresStore_ReadMissing(t *testing.T) {
	s := newTestPostgresStore(t)

	got, err := s.Read(context.Background(), "absent")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != nil {
		t.Fatalf("Read missing = %+v, want nil", got)
	}
}

func TestPostgresStore_OverwriteKeepsCreatedAt(t *testing.T) {
	s := newTestPostgresStore(t)
	ctx := context.Background()
	created := time.Now().UTC().Truncate(time.Microsecond)
	updated := created.Add(time.Minute)

	if err := s.Overwrite(ctx, "G", &domain.GameRecord{ID: "G", CanonicalMoves: "e4", OriginPage: "P", CreatedAt: created, UpdatedAt: created}); err != nil {
		t.Fatalf("Overwrite insert: %v", err)
	}
	if err := s.Overwrite(ctx, "G", &domain.GameRecord{ID: "G", CanonicalMoves: "e4 c5", OriginPage: "P", CreatedAt: updated, UpdatedAt: updated}); err != nil {
		t.Fatalf("Overwrite update: %v", err)
	}

	got, err := s.Read(ctx, "G")
	if err != nil || got == nil {
		t.Fatalf("Read = %+v, %v", got, err)
	}
	if got.CanonicalMoves != "e4 c5" {
		t.Fatalf("moves = %q, want %q", got.CanonicalMoves, "e4 c5")
	}
	if !got.CreatedAt.Equal(created) || !got.UpdatedAt.Equal(updated) {
		t.Fatalf("timestamps = %v/%v, want %v/%v", got.CreatedAt, got.UpdatedAt, created, updated)
	}
}

func TestPostgresStore_NilRecord(t *testing.T) {
	s := NewPostgresStore(nil, "")
	if _, err := s.TryCreate(context.Background(), "G", nil); err != errNilRecord {
		t.Fatalf("TryCreate nil = %v, want errNilRecord", err)
	}
	if err := s.Overwrite(context.Background(), "G", nil); err != errNilRecord {
		t.Fatalf("Overwrite nil = %v, want errNilRecord", err)
	}
	if s.namespace != DefaultNamespace {
		t.Fatalf("namespace = %q, want %q", s.namespace, DefaultNamespace)
	}
}
