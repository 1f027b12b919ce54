package notation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel-chess/kestrel/board"
)

func findMove(t *testing.T, pos *board.Position, stm board.Color, uci string) *board.Move {
	t.Helper()
	for _, m := range pos.LegalMoves(stm) {
		if m.UCI(pos.Near()) == uci {
			return &m
		}
	}
	t.Fatalf("no legal move %s", uci)
	return nil
}

func TestSAN(t *testing.T) {
	for _, near := range []board.Color{board.White, board.Black} {
		pos := board.NewStandard(near)
		san, err := SAN(pos, board.White, findMove(t, pos, board.White, "g1f3"))
		require.NoError(t, err)
		assert.Equal(t, "Nf3", san)
		san, err = SAN(pos, board.White, findMove(t, pos, board.White, "e2e4"))
		require.NoError(t, err)
		assert.Equal(t, "e4", san)
	}
}

func TestSANSpecialMoves(t *testing.T) {
	cases := []struct {
		fen string
		uci string
		san string
	}{
		{"r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "e1g1", "O-O"},
		{"r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1", "e8c8", "O-O-O"},
		{"4k3/P7/8/8/8/8/8/4K3 w - - 0 1", "a7a8q", "a8=Q+"},
		{"6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1", "a1a8", "Ra8#"},
		{"4k3/8/8/3q4/8/8/8/3QK3 w - - 0 1", "d1d5", "Qxd5"},
	}
	for _, tc := range cases {
		pos, stm, err := board.FromFEN(tc.fen, board.White)
		require.NoError(t, err)
		san, err := SAN(pos, stm, findMove(t, pos, stm, tc.uci))
		require.NoError(t, err)
		assert.Equal(t, tc.san, san, tc.fen)
	}
}

func TestParseMove(t *testing.T) {
	pos := board.NewStandard(board.Black)
	for _, text := range []string{"Nf3", "g1f3", " G1F3 "} {
		m, err := ParseMove(pos, board.White, text)
		require.NoError(t, err, text)
		assert.Equal(t, "g1f3", m.UCI(board.Black))
	}
	_, err := ParseMove(pos, board.White, "Nf6")
	assert.ErrorIs(t, err, ErrIllegalMove)
	_, err = ParseMove(pos, board.White, "e2e5")
	assert.ErrorIs(t, err, ErrIllegalMove)
	_, err = ParseMove(pos, board.White, "")
	assert.ErrorIs(t, err, ErrIllegalMove)
}

func TestParseCastle(t *testing.T) {
	pos, stm, err := board.FromFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", board.White)
	require.NoError(t, err)
	m, err := ParseMove(pos, stm, "O-O-O")
	require.NoError(t, err)
	assert.Equal(t, board.MoveKindCastle, m.Kind)
	assert.Equal(t, board.CastleLong, m.Side)
}

func TestFormatMoveLog(t *testing.T) {
	assert.Equal(t, "", FormatMoveLog(nil))
	assert.Equal(t, "1. e4 | ", FormatMoveLog([]string{"e4"}))
	assert.Equal(t, "1. e4 e5 | 2. Nf3 Nc6 | 3. Bb5 | ",
		FormatMoveLog([]string{"e4", "e5", "Nf3", "Nc6", "Bb5"}))
}

func TestRecorder(t *testing.T) {
	pos := board.NewStandard(board.White)
	var r Recorder
	stm := board.White
	for _, uci := range []string{"e2e4", "e7e5", "g1f3"} {
		m := findMove(t, pos, stm, uci)
		require.NoError(t, r.Record(pos, stm, m))
		pos.Apply(m)
		stm = stm.Other()
	}
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, "1. e4 e5 | 2. Nf3 | ", r.String())
}
