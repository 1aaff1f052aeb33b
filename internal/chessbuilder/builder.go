package chessbuilder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/park285/moin-chess/internal/boardimg"
	"github.com/park285/moin-chess/internal/config"
	"github.com/park285/moin-chess/internal/game"
	"github.com/park285/moin-chess/internal/illustrator"
	"github.com/park285/moin-chess/internal/msgcat"
	"github.com/park285/moin-chess/internal/render"
	"github.com/park285/moin-chess/internal/store"
	"go.uber.org/zap"
)

type Deps struct {
	Store     game.Store
	Guard     *game.Guard
	Service   *illustrator.Service
	Formatter *render.Formatter
	Catalog   *msgcat.Catalog

	closers []func() error
}

// Close releases store connections.
func (d *Deps) Close() error {
	if d == nil {
		return nil
	}
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func New(cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	deps := &Deps{}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	switch cfg.StoreBackend {
	case config.BackendRedis:
		rdb, err := store.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("init redis store: %w", err)
		}
		deps.closers = append(deps.closers, rdb.Close)
		deps.Store = store.NewRedisStore(rdb, cfg.Namespace, cfg.GameTTL)
	case config.BackendPostgres:
		db, err := store.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
		pg := store.NewPostgresStore(db, cfg.Namespace)
		deps.closers = append(deps.closers, pg.Close)
		if err := pg.EnsureSchema(ctx); err != nil {
			_ = deps.Close()
			return nil, err
		}
		deps.Store = pg
	default:
		deps.Store = store.NewMemoryStore()
	}
	logger.Info("chess store ready", zap.String("backend", cfg.StoreBackend), zap.String("namespace", cfg.Namespace))

	fail := func(err error) (*Deps, error) {
		_ = deps.Close()
		return nil, err
	}

	guard, err := game.NewGuard(deps.Store, logger.Named("guard"))
	if err != nil {
		return fail(err)
	}
	deps.Guard = guard

	deps.Service, err = illustrator.NewService(guard, illustrator.Config{
		MaxMoveTokens: cfg.MaxMoveTokens,
		MaxIDLength:   cfg.MaxIDLength,
	}, logger.Named("illustrator"))
	if err != nil {
		return fail(err)
	}

	deps.Catalog, err = msgcat.New(cfg.MessagesDir)
	if err != nil {
		return fail(fmt.Errorf("load messages: %w", err))
	}

	var boards render.BoardRenderer
	if cfg.BoardImages {
		boards = boardimg.New(boardimg.DefaultSquareSize)
	}
	deps.Formatter, err = render.NewFormatter(deps.Catalog, boards, logger.Named("render"))
	if err != nil {
		return fail(err)
	}
	return deps, nil
}
