// Package illustrator turns one chess tag occurrence into the plies a page should show.
package illustrator

import (
	"context"
	"fmt"

	"github.com/park285/moin-chess/internal/game"
	"github.com/park285/moin-chess/internal/tag"
	"go.uber.org/zap"
)

type Config struct {
	MaxMoveTokens int
	MaxIDLength   int
}

// Request is one tag occurrence: its header arguments, its body and the page it sits on.
type Request struct {
	Args string
	Body string
	Page string
}

// Result is what the templating layer needs to draw a tag. Err is set instead of plies on failure.
type Result struct {
	Tag      tag.Tag
	Plies    []game.Ply
	Selected int
	Outcome  game.Outcome
	Opening  game.Opening
	Score    string
	Err      error
}

// SelectedPly returns the ply the board should open on.
func (r *Result) SelectedPly() (game.Ply, bool) {
	if r == nil || r.Err != nil || r.Selected < 0 || r.Selected >= len(r.Plies) {
		return game.Ply{}, false
	}
	return r.Plies[r.Selected], true
}

type Service struct {
	guard  *game.Guard
	cfg    Config
	logger *zap.Logger
}

func NewService(guard *game.Guard, cfg Config, logger *zap.Logger) (*Service, error) {
	if guard == nil {
		return nil, fmt.Errorf("consistency guard is required")
	}
	if cfg.MaxMoveTokens <= 0 {
		cfg.MaxMoveTokens = game.DefaultMaxTokens
	}
	if cfg.MaxIDLength <= 0 {
		cfg.MaxIDLength = game.DefaultMaxIDLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{guard: guard, cfg: cfg, logger: logger}, nil
}

// Render never fails; errors are reported in Result.Err so one bad tag leaves the page intact.
func (s *Service) Render(ctx context.Context, req Request) *Result {
	t, err := tag.Parse(req.Args, s.cfg.MaxIDLength)
	if err != nil {
		return s.fail(&Result{Tag: t}, req, err)
	}
	res := &Result{Tag: t}
	if t.IsBoard() {
		return s.renderBoard(ctx, res, req)
	}
	return s.renderGame(ctx, res, req)
}

func (s *Service) renderGame(ctx context.Context, res *Result, req Request) *Result {
	body := game.NormalizeMoveText(req.Body, s.cfg.MaxMoveTokens)
	def, err := s.guard.Define(ctx, res.Tag.ID, body, req.Page)
	if err != nil {
		return s.fail(res, req, err)
	}
	res.Plies = def.Sequence.LocateAll()
	res.Selected = len(res.Plies) - 1
	res.Outcome = def.Outcome
	res.Opening = def.Sequence.Opening
	res.Score = def.Sequence.Result
	s.logger.Debug("chess game rendered",
		zap.String("game_id", res.Tag.ID),
		zap.String("page", req.Page),
		zap.String("outcome", def.Outcome.String()),
		zap.Int("plies", len(res.Plies)),
	)
	return res
}

func (s *Service) renderBoard(ctx context.Context, res *Result, req Request) *Result {
	seq, _, err := s.guard.Load(ctx, res.Tag.ID)
	if err != nil {
		return s.fail(res, req, err)
	}
	ply, err := seq.LocateString(res.Tag.Position)
	if err != nil {
		return s.fail(res, req, err)
	}
	res.Plies = seq.LocateAll()
	res.Selected = ply.Index
	res.Opening = seq.Opening
	res.Score = seq.Result
	return res
}

func (s *Service) fail(res *Result, req Request, err error) *Result {
	res.Err = err
	res.Plies = nil
	fields := []zap.Field{
		zap.String("kind", game.Kind(err)),
		zap.String("args", req.Args),
		zap.String("page", req.Page),
		zap.Error(err),
	}
	if game.Kind(err) == "internal" {
		s.logger.Error("chess tag failed", fields...)
	} else {
		s.logger.Info("chess tag rejected", fields...)
	}
	return res
}
