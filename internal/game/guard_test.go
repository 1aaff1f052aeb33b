package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/park285/moin-chess/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapStore struct {
	mu         sync.Mutex
	records    map[string]domain.GameRecord
	writes     int
	evictOnce  bool
	failCreate error
}

func newMapStore() *mapStore {
	return &mapStore{records: make(map[string]domain.GameRecord)}
}

func (s *mapStore) TryCreate(_ context.Context, id string, rec *domain.GameRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate != nil {
		return false, s.failCreate
	}
	if _, ok := s.records[id]; ok {
		return false, nil
	}
	s.records[id] = *rec
	s.writes++
	return true, nil
}

func (s *mapStore) Read(_ context.Context, id string) (*domain.GameRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.evictOnce {
		s.evictOnce = false
		delete(s.records, id)
	}
	rec, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *mapStore) Overwrite(_ context.Context, id string, rec *domain.GameRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[id] = *rec
	s.writes++
	return nil
}

func (s *mapStore) get(id string) (domain.GameRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	return rec, ok
}

func newTestGuard(t *testing.T, s Store) *Guard {
	t.Helper()
	g, err := NewGuard(s, nil)
	require.NoError(t, err)
	return g
}

func TestNewGuard_RequiresStore(t *testing.T) {
	_, err := NewGuard(nil, nil)
	assert.Error(t, err)
}

func TestDefine_FirstWriterWins(t *testing.T) {
	s := newMapStore()
	g := newTestGuard(t, s)
	ctx := context.Background()

	def, err := g.Define(ctx, "G", "e4 e5", "P1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, def.Outcome)
	assert.Equal(t, 2, def.Sequence.Len())

	_, err = g.Define(ctx, "G", "d4 d5", "P2")
	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "P1", conflict.OriginPage)
	assert.Equal(t, "conflict", Kind(err))

	rec, _ := s.get("G")
	assert.Equal(t, "1. e4 e5", rec.CanonicalMoves)
	assert.Equal(t, "P1", rec.OriginPage)
}

func TestDefine_IdempotentResubmission(t *testing.T) {
	s := newMapStore()
	g := newTestGuard(t, s)
	ctx := context.Background()

	_, err := g.Define(ctx, "G", "e4 e5 Nf3", "P1")
	require.NoError(t, err)
	writes := s.writes

	def, err := g.Define(ctx, "G", "1. e4 e5 2. Nf3", "P2")
	require.NoError(t, err)
	assert.Equal(t, OutcomeIdempotent, def.Outcome)
	assert.Equal(t, "P1", def.Record.OriginPage)
	assert.Equal(t, writes, s.writes, "idempotent resubmission must not write")
}

func TestDefine_OwnerEdit(t *testing.T) {
	s := newMapStore()
	g := newTestGuard(t, s)
	ctx := context.Background()

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	g.now = func() time.Time { return created }
	_, err := g.Define(ctx, "G", "e4", "P1")
	require.NoError(t, err)

	g.now = func() time.Time { return created.Add(time.Hour) }
	def, err := g.Define(ctx, "G", "e4 e5", "P1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeReplaced, def.Outcome)

	rec, _ := s.get("G")
	assert.Equal(t, "1. e4 e5", rec.CanonicalMoves)
	assert.True(t, rec.CreatedAt.Equal(created))
	assert.True(t, rec.UpdatedAt.Equal(created.Add(time.Hour)))

	def, err = g.Define(ctx, "G", "e4 e5", "P1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeReaffirmed, def.Outcome)
}

func TestDefine_ParseErrorWritesNothing(t *testing.T) {
	s := newMapStore()
	g := newTestGuard(t, s)

	_, err := g.Define(context.Background(), "G", "e4 Ke7 Ke3", "P1")
	assert.ErrorIs(t, err, ErrParse)
	assert.Zero(t, s.writes)
	_, ok := s.get("G")
	assert.False(t, ok)
}

func TestDefine_EmptyID(t *testing.T) {
	g := newTestGuard(t, newMapStore())
	_, err := g.Define(context.Background(), "  ", "e4", "P1")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDefine_RetriesAfterEviction(t *testing.T) {
	s := newMapStore()
	g := newTestGuard(t, s)
	ctx := context.Background()

	_, err := g.Define(ctx, "G", "e4", "P1")
	require.NoError(t, err)

	s.mu.Lock()
	s.evictOnce = true
	s.mu.Unlock()

	def, err := g.Define(ctx, "G", "d4", "P2")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, def.Outcome)
	rec, _ := s.get("G")
	assert.Equal(t, "P2", rec.OriginPage)
}

func TestDefine_StoreErrorIsWrapped(t *testing.T) {
	boom := errors.New("boom")
	s := newMapStore()
	s.failCreate = boom
	g := newTestGuard(t, s)

	_, err := g.Define(context.Background(), "G", "e4", "P1")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "internal", Kind(err))
}

func TestDefine_ConcurrentPagesHaveOneOwner(t *testing.T) {
	s := newMapStore()
	g := newTestGuard(t, s)
	ctx := context.Background()

	firstMoves := []string{"a3", "a4", "b3", "b4", "c3", "c4", "d3", "d4", "e3", "e4", "f3", "f4", "g3", "g4", "h3", "h4"}
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
	)
	for i, mv := range firstMoves {
		wg.Add(1)
		go func(page, moves string) {
			defer wg.Done()
			def, err := g.Define(ctx, "G", moves, page)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil && def.Outcome == OutcomeCreated:
				created++
			case errors.Is(err, ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected result for %s: def=%v err=%v", page, def, err)
			}
		}(string(rune('A'+i)), mv)
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, len(firstMoves)-1, conflicts)
}

func TestLoad(t *testing.T) {
	s := newMapStore()
	g := newTestGuard(t, s)
	ctx := context.Background()

	_, _, err := g.Load(ctx, "G")
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "not_found", Kind(err))

	_, err = g.Define(ctx, "G", "e4 e5 Nf3 Nc6", "P1")
	require.NoError(t, err)

	seq, rec, err := g.Load(ctx, "G")
	require.NoError(t, err)
	assert.Equal(t, 4, seq.Len())
	assert.Equal(t, "P1", rec.OriginPage)
}
