package search

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/kestrel-chess/kestrel/board"
	"github.com/kestrel-chess/kestrel/ttable"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func setUpSolver(baseline int, id bool) *Solver {
	s := new(Solver)
	s.Init(ttable.New(100000))
	s.SetBaselineDepth(baseline)
	s.SetIterativeDeepening(id)
	return s
}

func mustFEN(t *testing.T, fen string) (*board.Position, board.Color) {
	t.Helper()
	p, stm, err := board.FromFEN(fen, board.White)
	if err != nil {
		t.Fatal(err)
	}
	return p, stm
}

func isLegal(p *board.Position, c board.Color, m *board.Move) bool {
	for _, lm := range p.LegalMoves(c) {
		if lm.Equals(m) {
			return true
		}
	}
	return false
}

func TestDepthOneFromStart(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(1, false)
	p := board.NewStandard(board.White)
	before := p.Snapshot()

	res, err := s.Solve(context.Background(), p, board.White)
	is.NoErr(err)
	is.Equal(res.RootEval, 0)
	is.Equal(res.Depth, 1)
	is.True(res.Move != nil)
	is.True(isLegal(p, board.White, res.Move))
	is.Equal(p.Snapshot(), before)
	is.True(res.Stats.Inner > 0)
}

func TestMateInOne(t *testing.T) {
	for _, tt := range []bool{true, false} {
		is := is.New(t)
		s := setUpSolver(2, false)
		s.SetTranspositionTableOptim(tt)
		p, stm := mustFEN(t, "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1")
		res, err := s.Solve(context.Background(), p, stm)
		is.NoErr(err)
		is.Equal(res.Move.UCI(board.White), "a1a8")
		is.True(res.IsMate())
		is.Equal(res.Score, Infinity-1)
	}
}

func TestWinsHangingQueen(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(2, false)
	p, stm := mustFEN(t, "4k3/8/8/3q4/8/8/8/3QK3 w - - 0 1")
	res, err := s.Solve(context.Background(), p, stm)
	is.NoErr(err)
	is.Equal(res.Move.UCI(board.White), "d1d5")
	is.True(res.Score > 500)
}

func TestBlackSearchesToo(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(2, false)
	p, stm := mustFEN(t, "3qk3/8/8/3Q4/8/8/8/4K3 b - - 0 1")
	is.Equal(stm, board.Black)
	res, err := s.Solve(context.Background(), p, stm)
	is.NoErr(err)
	is.Equal(res.Move.UCI(board.White), "d8d5")
}

func TestNoLegalMoves(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(2, true)
	p, stm := mustFEN(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	res, err := s.Solve(context.Background(), p, stm)
	is.NoErr(err)
	is.True(res.Move == nil)
	is.Equal(res.Score, 0)

	p, stm = mustFEN(t, "4r2k/8/8/8/8/8/4q3/4K3 w - - 0 1")
	res, err = s.Solve(context.Background(), p, stm)
	is.NoErr(err)
	is.True(res.Move == nil)
	is.Equal(res.Score, -Infinity)
}

func TestTinyTimeBudgetKeepsCompletedDepth(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(1, true)
	s.SetMaxDepth(8)
	s.SetPlayTime(time.Nanosecond)
	p := board.NewStandard(board.White)
	before := p.Snapshot()

	res, err := s.Solve(context.Background(), p, board.White)
	is.NoErr(err)
	is.Equal(res.Depth, 1)
	is.True(res.Move != nil)
	is.True(isLegal(p, board.White, res.Move))
	is.Equal(p.Snapshot(), before)
}

func TestIterativeDeepeningStopsAtMaxDepth(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(1, true)
	s.SetMaxDepth(2)
	s.SetPlayTime(time.Hour)
	p, stm := mustFEN(t, "4k3/8/8/3q4/8/8/8/3QK3 w - - 0 1")
	res, err := s.Solve(context.Background(), p, stm)
	is.NoErr(err)
	is.Equal(res.Depth, 2)
}

func TestCancelledSearch(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(3, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := s.Solve(ctx, board.NewStandard(board.White), board.White)
	is.True(err != nil)
	is.True(res == nil)
}

func TestLogStreamShowsRootLines(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(1, false)
	var buf bytes.Buffer
	s.SetLogStream(&buf)
	_, err := s.Solve(context.Background(), board.NewStandard(board.White), board.White)
	is.NoErr(err)
	out := buf.String()
	is.True(strings.HasPrefix(out, "- ply: 1\n"))
	is.Equal(strings.Count(out, "Line ("), 20)
}

func TestRepetitionDetection(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(1, false)
	p := board.NewStandard(board.White)
	moves := p.LegalMoves(board.White)
	a, b := &moves[0], &moves[1]
	s.prevMoves = [4]*board.Move{a, b, a, b}
	is.True(s.repeating(b))
	is.True(!s.repeating(a))
	s.prevMoves = [4]*board.Move{a, b, b, b}
	is.True(!s.repeating(b))
	s.prevMoves = [4]*board.Move{a, b, a, nil}
	is.True(!s.repeating(b))
}

func TestRepetitionGuardSearchesDeeper(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(1, false)
	p, stm := mustFEN(t, "4k3/8/8/3q4/8/8/8/3QK3 w - - 0 1")
	res, err := s.Solve(context.Background(), p, stm)
	is.NoErr(err)
	best := res.Move

	// Pretend we've been shuttling with the move the search likes.
	other := p.LegalMoves(stm)[0]
	s.prevMoves = [4]*board.Move{&other, best, &other, best}
	res, err = s.Solve(context.Background(), p, stm)
	is.NoErr(err)
	is.True(res.Depth > 1)
	is.True(res.Depth <= 1+MaxRepetitionExtension)
}
