package eval

import (
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/kestrel-chess/kestrel/board"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func fromFEN(t *testing.T, fen string, near board.Color) *board.Position {
	t.Helper()
	p, _, err := board.FromFEN(fen, near)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestStartingPositionIsBalanced(t *testing.T) {
	is := is.New(t)
	for _, near := range []board.Color{board.White, board.Black} {
		p := board.NewStandard(near)
		res := Evaluate(p)
		is.Equal(res.Score, 0)
		is.True(res.Full)
		is.Equal(Phase(p), 0)
		is.True(!IsEndgame(p))
	}
}

func TestEvaluateIndependentOfOrientation(t *testing.T) {
	is := is.New(t)
	fens := []string{
		"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	}
	for _, fen := range fens {
		w := Evaluate(fromFEN(t, fen, board.White))
		b := Evaluate(fromFEN(t, fen, board.Black))
		is.Equal(w, b)
	}
}

func TestColorMirrorNegatesScore(t *testing.T) {
	is := is.New(t)
	// The second position is the first with colors swapped and the board
	// flipped vertically.
	a := fromFEN(t, "rnbqkbnr/pppp1ppp/8/4p3/3PP3/8/PPP2PPP/RNBQKBNR w KQkq - 0 1", board.White)
	b := fromFEN(t, "rnbqkbnr/ppp2ppp/8/3pp3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 1", board.White)
	is.Equal(Evaluate(a).Score, -Evaluate(b).Score)
}

func TestMaterialAdvantage(t *testing.T) {
	is := is.New(t)
	p := fromFEN(t, "rnb1kbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", board.White)
	is.True(Evaluate(p).Score > 800)
}

func TestPhase(t *testing.T) {
	is := is.New(t)
	is.Equal(Phase(fromFEN(t, "4k3/pppppppp/8/8/8/8/PPPPPPPP/4K3 w - - 0 1", board.White)), MaxPhase)
	// Both queens off: 8 of 24 units gone.
	is.Equal(Phase(fromFEN(t, "rnb1kbnr/pppppppp/8/8/8/8/PPPPPPPP/RNB1KBNR w - - 0 1", board.White)), 85)
	// Extra queens never push the phase below zero.
	is.Equal(Phase(fromFEN(t, "qqqqkqqq/8/8/8/8/8/8/QQQQKQQQ w - - 0 1", board.White)), 0)
	is.Equal(Taper(100, 200, 0), 100)
	is.Equal(Taper(100, 200, MaxPhase), 200)
	is.Equal(Taper(100, 200, 128), 150)
}

func TestIsEndgame(t *testing.T) {
	is := is.New(t)
	is.True(IsEndgame(fromFEN(t, "r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R3K2R w - - 0 1", board.White)))
	is.True(!IsEndgame(fromFEN(t, "r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R2QKB1R w - - 0 1", board.White)))
	is.Equal(NonPawnMaterial(board.NewStandard(board.White), board.Black), 3100)
}

func TestKingSafety(t *testing.T) {
	is := is.New(t)
	p := fromFEN(t, "4r2k/8/8/8/8/8/4q3/4K3 w - - 0 1", board.White)
	is.Equal(kingSafety(p, board.White), -50)
	is.Equal(kingSafety(p, board.Black), 0)
}

func TestPawnStructure(t *testing.T) {
	is := is.New(t)
	p := fromFEN(t, "4k3/8/8/8/8/3P4/3PP3/4K3 w - - 0 1", board.White)
	is.Equal(pawnStructure(p, board.White), 40)
	is.Equal(pawnStructure(p, board.Black), 0)
}
