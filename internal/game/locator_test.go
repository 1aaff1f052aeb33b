package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocate_GameThenBoards(t *testing.T) {
	seq, err := Build(NormalizeMoveText("e4 e5\nNf3 Nc6", 0))
	require.NoError(t, err)

	first, err := seq.LocateString("1-White")
	require.NoError(t, err)
	assert.Equal(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR", placement(first.Snapshot.FEN))

	last, err := seq.LocateString("2-Black")
	require.NoError(t, err)
	assert.Equal(t, "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R", placement(last.Snapshot.FEN))
	assert.Equal(t, seq.Last(), last)

	_, err = seq.LocateString("3-White")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAddress)
	assert.Contains(t, err.Error(), "game ends at 2-Black")
}

func TestLocate_BadAddress(t *testing.T) {
	seq, err := Build("d4")
	require.NoError(t, err)

	_, err = seq.LocateString("1-Black")
	assert.ErrorIs(t, err, ErrAddress)

	_, err = seq.Locate(Address{Turn: 0, Color: White})
	assert.ErrorIs(t, err, ErrAddress)

	_, err = seq.LocateString("first")
	assert.ErrorIs(t, err, ErrAddress)
}

func TestLocate_EmptySequence(t *testing.T) {
	var seq Sequence
	_, err := seq.Locate(Address{Turn: 1, Color: White})
	assert.ErrorIs(t, err, ErrAddress)
}

func TestLocateAll_ReturnsCopy(t *testing.T) {
	seq, err := Build("e4 e5")
	require.NoError(t, err)

	all := seq.LocateAll()
	all[0].Snapshot.SAN = "mutated"
	again := seq.LocateAll()
	assert.Equal(t, "e4", again[0].Snapshot.SAN)
	assert.Len(t, again, 2)
}
