package eval

import (
	"testing"

	"github.com/matryer/is"

	"github.com/kestrel-chess/kestrel/board"
)

func findMove(t *testing.T, p *board.Position, c board.Color, uci string) board.Move {
	t.Helper()
	for _, m := range p.LegalMoves(c) {
		if m.UCI(p.Near()) == uci {
			return m
		}
	}
	t.Fatalf("move %s not found", uci)
	return board.Move{}
}

func TestSEE(t *testing.T) {
	cases := []struct {
		name string
		fen  string
		move string
		want int
	}{
		{"undefended pawn", "4k3/8/8/3p4/8/2N5/8/4K3 w - - 0 1", "c3d5", 100},
		{"pawn takes defended knight with backup", "4k3/8/2p5/3n4/2P1P3/8/8/4K3 w - - 0 1", "e4d5", 300},
		{"queen takes defended pawn", "4k3/8/2p5/3p4/8/8/8/3QK3 w - - 0 1", "d1d5", -800},
		{"even trade", "4k3/8/2p5/3n4/8/4N3/8/4K3 w - - 0 1", "e3d5", 0},
		{"rook takes pawn defended by pawn, second rook behind", "4k3/8/2p5/3p4/8/8/3R4/3RK3 w - - 0 1", "d2d5", -400},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			is := is.New(t)
			for _, near := range []board.Color{board.White, board.Black} {
				p := fromFEN(t, tc.fen, near)
				before := p.Snapshot()
				m := findMove(t, p, board.White, tc.move)
				is.Equal(SEE(p, &m), tc.want)
				is.Equal(p.Snapshot(), before)
			}
		})
	}
}

func TestSEEQuietMove(t *testing.T) {
	is := is.New(t)
	p := board.NewStandard(board.White)
	m := findMove(t, p, board.White, "e2e4")
	is.Equal(SEE(p, &m), 0)
}

func TestPieceValue(t *testing.T) {
	is := is.New(t)
	is.Equal(PieceValue(board.Pawn), 100)
	is.Equal(PieceValue(board.Knight), PieceValue(board.Bishop))
	is.Equal(PieceValue(board.Queen), 900)
	is.Equal(PieceValue(board.King), 10000)
}
