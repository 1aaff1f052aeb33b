package illustrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/park285/moin-chess/internal/game"
	"github.com/park285/moin-chess/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestService(t *testing.T) (*Service, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	guard, err := game.NewGuard(store.NewMemoryStore(), logger)
	require.NoError(t, err)
	svc, err := NewService(guard, Config{}, logger)
	require.NoError(t, err)
	return svc, logs
}

func fenPlacement(p game.Ply) string {
	return strings.Fields(p.Snapshot.FEN)[0]
}

func TestRender_GameThenBoards(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res := svc.Render(ctx, Request{Args: "Game G", Body: "e4 e5\nNf3 Nc6", Page: "Openings"})
	require.NoError(t, res.Err)
	require.Len(t, res.Plies, 4)
	assert.Equal(t, game.OutcomeCreated, res.Outcome)
	last, ok := res.SelectedPly()
	require.True(t, ok)
	assert.Equal(t, "2-Black", last.Address.String())

	res = svc.Render(ctx, Request{Args: "Board G 1-White", Page: "Openings"})
	require.NoError(t, res.Err)
	ply, ok := res.SelectedPly()
	require.True(t, ok)
	assert.Equal(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR", fenPlacement(ply))
	assert.Len(t, res.Plies, 4)

	res = svc.Render(ctx, Request{Args: "Board G 2-Black", Page: "Other"})
	require.NoError(t, res.Err)
	ply, _ = res.SelectedPly()
	assert.Equal(t, "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R", fenPlacement(ply))

	res = svc.Render(ctx, Request{Args: "Board G 3-White", Page: "Openings"})
	assert.ErrorIs(t, res.Err, game.ErrAddress)
	assert.Empty(t, res.Plies)
}

func TestRender_HugeTurnIsAddressError(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Render(ctx, Request{Args: "Game G", Body: "e4 e5 Nf3 Nc6", Page: "P"}).Err)
	for _, pos := range []string{"9223372036854775807-White", "4611686018427387904-Black", "99999999999999999999-White"} {
		res := svc.Render(ctx, Request{Args: "Board G " + pos, Page: "P"})
		assert.ErrorIs(t, res.Err, game.ErrAddress, pos)
		assert.Empty(t, res.Plies, pos)
	}
}

func TestRender_ErrorsAreCaptured(t *testing.T) {
	svc, logs := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		req  Request
		kind string
	}{
		{Request{Args: "Diagram G"}, "validation"},
		{Request{Args: "Game G", Body: "e4 Qxf7"}, "parse"},
		{Request{Args: "Board Missing 1-White"}, "not_found"},
	}
	for _, c := range cases {
		res := svc.Render(ctx, c.req)
		require.Error(t, res.Err, c.req.Args)
		assert.Equal(t, c.kind, game.Kind(res.Err), c.req.Args)
		_, ok := res.SelectedPly()
		assert.False(t, ok)
	}
	assert.Equal(t, len(cases), logs.FilterMessage("chess tag rejected").Len())
}

func TestRender_ConflictAcrossPages(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Render(ctx, Request{Args: "Game G", Body: "e4", Page: "A"}).Err)
	res := svc.Render(ctx, Request{Args: "Game G", Body: "d4", Page: "B"})
	var conflict *game.ConflictError
	require.True(t, errors.As(res.Err, &conflict))
	assert.Equal(t, "A", conflict.OriginPage)

	res = svc.Render(ctx, Request{Args: "Game G", Body: "1. e4", Page: "B"})
	require.NoError(t, res.Err)
	assert.Equal(t, game.OutcomeIdempotent, res.Outcome)
}

func TestRender_SanitizedIDsShareGame(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Render(ctx, Request{Args: "Game g@me!", Body: "c4", Page: "A"}).Err)
	res := svc.Render(ctx, Request{Args: "Board gme 1-White", Page: "A"})
	require.NoError(t, res.Err)
	assert.Equal(t, "gme", res.Tag.ID)
}

func TestRender_TokenCap(t *testing.T) {
	core, _ := observer.New(zap.InfoLevel)
	guard, err := game.NewGuard(store.NewMemoryStore(), zap.New(core))
	require.NoError(t, err)
	svc, err := NewService(guard, Config{MaxMoveTokens: 2}, nil)
	require.NoError(t, err)

	res := svc.Render(context.Background(), Request{Args: "Game G", Body: "e4 e5 Nf3 Nc6", Page: "A"})
	require.NoError(t, res.Err)
	assert.Len(t, res.Plies, 2)
}

func TestNewServiceRequiresGuard(t *testing.T) {
	_, err := NewService(nil, Config{}, nil)
	assert.Error(t, err)
}
