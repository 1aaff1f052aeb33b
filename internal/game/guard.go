package game

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/park285/moin-chess/internal/domain"
	"go.uber.org/zap"
)

// Store is the persistence contract the guard relies on.
// TryCreate must be atomic; Read returns (nil, nil) when the id is unknown.
type Store interface {
	TryCreate(ctx context.Context, id string, rec *domain.GameRecord) (bool, error)
	Read(ctx context.Context, id string) (*domain.GameRecord, error)
	Overwrite(ctx context.Context, id string, rec *domain.GameRecord) error
}

// Outcome describes what a Define call did to the store.
type Outcome int

const (
	OutcomeCreated Outcome = iota + 1
	// OutcomeReplaced: the owning page redefined its game with different moves.
	OutcomeReplaced
	// OutcomeReaffirmed: the owning page re-rendered the same moves.
	OutcomeReaffirmed
	// OutcomeIdempotent: another page submitted the stored moves; nothing was written.
	OutcomeIdempotent
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeReplaced:
		return "replaced"
	case OutcomeReaffirmed:
		return "reaffirmed"
	case OutcomeIdempotent:
		return "idempotent"
	default:
		return "unknown"
	}
}

// Definition is the result of a successful Define.
type Definition struct {
	Outcome  Outcome
	Record   *domain.GameRecord
	Sequence *Sequence
}

// Guard enforces that a game identifier, once defined, keeps meaning one game.
type Guard struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

func NewGuard(store Store, logger *zap.Logger) (*Guard, error) {
	if store == nil {
		return nil, fmt.Errorf("game store is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{store: store, logger: logger, now: time.Now}, nil
}

// Define registers moveText under id on behalf of page.
func (g *Guard) Define(ctx context.Context, id, moveText, page string) (*Definition, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &ValidationError{Field: "game id", Reason: "is empty"}
	}
	seq, err := Build(moveText)
	if err != nil {
		return nil, err
	}

	now := g.now()
	rec := &domain.GameRecord{
		ID:             id,
		CanonicalMoves: seq.Canonical,
		OriginPage:     page,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	// a second pass covers a record evicted between TryCreate and Read
	for attempt := 0; attempt < 2; attempt++ {
		created, err := g.store.TryCreate(ctx, id, rec)
		if err != nil {
			return nil, fmt.Errorf("create game %q: %w", id, err)
		}
		if created {
			g.logger.Info("chess game defined",
				zap.String("game_id", id),
				zap.String("page", page),
				zap.Int("plies", seq.Len()),
			)
			return &Definition{Outcome: OutcomeCreated, Record: rec, Sequence: seq}, nil
		}

		existing, err := g.store.Read(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("read game %q: %w", id, err)
		}
		if existing == nil {
			continue
		}
		return g.resolveExisting(ctx, existing, rec, seq)
	}
	return nil, fmt.Errorf("define game %q: record disappeared during definition", id)
}

func (g *Guard) resolveExisting(ctx context.Context, existing, rec *domain.GameRecord, seq *Sequence) (*Definition, error) {
	same := existing.CanonicalMoves == rec.CanonicalMoves

	if existing.OriginPage == rec.OriginPage {
		if !existing.CreatedAt.IsZero() {
			rec.CreatedAt = existing.CreatedAt
		}
		if err := g.store.Overwrite(ctx, rec.ID, rec); err != nil {
			return nil, fmt.Errorf("overwrite game %q: %w", rec.ID, err)
		}
		outcome := OutcomeReaffirmed
		if !same {
			outcome = OutcomeReplaced
			g.logger.Info("chess game redefined by owner",
				zap.String("game_id", rec.ID),
				zap.String("page", rec.OriginPage),
				zap.Int("plies", seq.Len()),
			)
		}
		return &Definition{Outcome: outcome, Record: rec, Sequence: seq}, nil
	}

	if same {
		return &Definition{Outcome: OutcomeIdempotent, Record: existing, Sequence: seq}, nil
	}

	g.logger.Warn("chess game id conflict",
		zap.String("game_id", rec.ID),
		zap.String("page", rec.OriginPage),
		zap.String("origin_page", existing.OriginPage),
	)
	return nil, &ConflictError{ID: rec.ID, OriginPage: existing.OriginPage}
}

// Load rebuilds the stored game for id.
func (g *Guard) Load(ctx context.Context, id string) (*Sequence, *domain.GameRecord, error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil, &ValidationError{Field: "game id", Reason: "is empty"}
	}
	rec, err := g.store.Read(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("read game %q: %w", id, err)
	}
	if rec == nil {
		return nil, nil, &NotFoundError{ID: id}
	}
	seq, err := Build(rec.CanonicalMoves)
	if err != nil {
		return nil, rec, fmt.Errorf("stored game %q: %w", id, err)
	}
	return seq, rec, nil
}
