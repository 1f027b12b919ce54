package search

import (
	"cmp"
	"slices"

	"github.com/kestrel-chess/kestrel/board"
	"github.com/kestrel-chess/kestrel/eval"
)

const (
	captureBase       = 100
	seeWeight         = 1000
	counterMoveBonus  = 100
	deltaPruneMargin  = 900
	captureDeltaSlack = 200
)

// scoredMove carries the ordering keys of a move. see is only meaningful for
// captures.
type scoredMove struct {
	board.Move
	see     int
	capture int
	counter int
	value   int
}

// orderMoves sorts moves best first: captures by exchange value, then the
// counter move to prev, then by the value of the moving piece.
func (s *Solver) orderMoves(moves []board.Move, prev *board.Move) []scoredMove {
	var counter *board.Move
	if prev != nil && s.counterMoveOptim {
		counter = s.counterMoves[prev.From][prev.To]
	}
	scored := make([]scoredMove, len(moves))
	for i := range moves {
		sm := scoredMove{Move: moves[i], value: eval.PieceValue(moves[i].Piece.Type())}
		if moves[i].IsCapture() {
			sm.see = eval.SEE(s.pos, &moves[i])
			sm.capture = captureBase + sm.see*seeWeight
		}
		if counter != nil && counter.Equals(&moves[i]) {
			sm.counter = counterMoveBonus
		}
		scored[i] = sm
	}
	slices.SortStableFunc(scored, func(a, b scoredMove) int {
		if c := cmp.Compare(b.capture, a.capture); c != 0 {
			return c
		}
		if c := cmp.Compare(b.counter, a.counter); c != 0 {
			return c
		}
		return cmp.Compare(b.value, a.value)
	})
	return scored
}

// recordCounterMove remembers a quiet move that refuted prev.
func (s *Solver) recordCounterMove(m, prev *board.Move) {
	if prev == nil || m.IsCapture() {
		return
	}
	mc := *m
	s.counterMoves[prev.From][prev.To] = &mc
}

// ClearCounterMoves forgets every recorded counter move.
func (s *Solver) ClearCounterMoves() {
	s.counterMoves = [board.NumSquares][board.NumSquares]*board.Move{}
}
