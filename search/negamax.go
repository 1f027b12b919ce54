package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/kestrel-chess/kestrel/board"
	"github.com/kestrel-chess/kestrel/eval"
	"github.com/kestrel-chess/kestrel/ttable"
)

/*
function negamax(node, depth, α, β, color) is
    if depth = 0 or node is a terminal node then
        return color × the heuristic value of node

    childNodes := generateMoves(node)
    childNodes := orderMoves(childNodes)
    value := −∞
    foreach child in childNodes do
        value := max(value, −negamax(child, depth − 1, −β, −α, −color))
        α := max(α, value)
        if α ≥ β then
            break (* cut-off *)
    return value
*/

const (
	futilityFrontierMargin    = 300
	futilityPrefrontierMargin = 500
)

// nullMoveReduction is how many plies the null-move probe skips.
func nullMoveReduction(pliesLeft int) int {
	switch {
	case pliesLeft <= 3:
		return 1
	case pliesLeft <= 6:
		return 3
	}
	return 4
}

func hasNonPawnPieces(p *board.Position, c board.Color) bool {
	for t := board.Knight; t <= board.Queen; t++ {
		if p.Count(c, t) > 0 {
			return true
		}
	}
	return false
}

// checkTime is the only cancellation point of a search. The time budget only
// applies beyond the baseline depth, so the baseline search always finishes.
func (s *Solver) checkTime(ctx context.Context, maxDepth int) error {
	err := ctx.Err()
	if err == nil {
		return nil
	}
	if s.timeBoxed && maxDepth > s.baselineDepth {
		return ErrSearchTimeout
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// probe looks key up and returns a usable score, if any. Bounds are only
// used when they already settle the node.
func (s *Solver) probe(key string, pliesLeft, alpha, beta int) (int, cutReason, bool) {
	e, ok := s.store.Lookup(key)
	if !ok || e.Depth < pliesLeft {
		return 0, cutNone, false
	}
	switch e.NodeType {
	case ttable.Exact:
		return e.Score, cutTTExact, true
	case ttable.UpperBound:
		if e.Score <= alpha {
			return e.Score, cutTTUpper, true
		}
	case ttable.LowerBound:
		if e.Score >= beta {
			return e.Score, cutTTLower, true
		}
	}
	return 0, cutNone, false
}

func (s *Solver) storeResult(key string, pliesLeft, value, origAlpha, beta int) {
	nt := ttable.Exact
	if value <= origAlpha {
		nt = ttable.UpperBound
	} else if value >= beta {
		nt = ttable.LowerBound
	}
	s.store.Insert(key, nt, pliesLeft, value)
}

// negamax searches the node reached after prev, with stm to move, depth
// plies from the root. Scores are relative to stm.
func (s *Solver) negamax(ctx context.Context, depth, maxDepth, alpha, beta int,
	stm board.Color, prev *board.Move, line *PVLine, nullProbe bool) (int, error) {

	if err := s.checkTime(ctx, maxDepth); err != nil {
		return 0, err
	}
	if depth == maxDepth {
		s.stats.Leaf++
		return s.quiescence(alpha, beta, stm, depth, maxDepth, prev), nil
	}
	s.stats.Inner++
	s.nodes.Add(1)

	pliesLeft := maxDepth - depth
	var key string
	if s.transpositionTableOptim {
		key = ttable.Compress(s.pos, stm)
		if depth > 0 {
			if score, cut, ok := s.probe(key, pliesLeft, alpha, beta); ok {
				s.stats.FromTT++
				line.cut = cut
				return score, nil
			}
		}
	}

	inCheck := s.pos.InCheck(stm)
	evalScore := eval.Evaluate(s.pos).Score * stm.Sign()

	if s.nullMoveOptim && pliesLeft > 1 && prev != nil && !inCheck &&
		hasNonPawnPieces(s.pos, stm) && evalScore >= beta {

		r := nullMoveReduction(pliesLeft)
		nullScore, err := s.negamax(ctx, depth+r, maxDepth, -beta, -beta+1,
			stm.Other(), nil, newPVLine(s.pos.Near()), true)
		if err != nil {
			return 0, err
		}
		if -nullScore >= beta {
			line.cut = cutNullMove
			return s.quiescence(alpha, beta, stm, maxDepth, maxDepth, prev), nil
		}
	}

	if s.futilityOptim && pliesLeft <= 2 && !inCheck && abs(beta) < Infinity-1000 {
		margin := futilityFrontierMargin
		if pliesLeft == 2 {
			margin = futilityPrefrontierMargin
		}
		if evalScore-margin >= beta {
			line.cut = cutFutility
			return evalScore, nil
		}
	}

	moves := s.orderMoves(s.pos.LegalMoves(stm), prev)
	if len(moves) == 0 {
		if inCheck {
			return -Infinity + depth, nil
		}
		return 0, nil
	}

	value := -Infinity
	origAlpha := alpha
	for i := range moves {
		m := &moves[i].Move
		child := newPVLine(s.pos.Near())
		s.pos.Apply(m)
		childValue, err := s.negamax(ctx, depth+1, maxDepth, -beta, -alpha,
			stm.Other(), m, child, nullProbe)
		s.pos.Undo(m)
		if err != nil {
			return 0, err
		}
		childValue = -childValue
		if childValue > value {
			value = childValue
			line.Update(m, child, value)
		}
		if depth == 0 && s.logStream != nil {
			fmt.Fprintf(s.logStream, "Line (%s): SEE=%d %s %s\n",
				formatPawns(childValue*stm.Sign()), moves[i].see, m.UCI(s.pos.Near()), child.moveText())
		}
		if value > alpha {
			alpha = value
			if alpha >= beta {
				if s.counterMoveOptim {
					s.recordCounterMove(m, prev)
				}
				break
			}
		}
	}

	if s.transpositionTableOptim && !nullProbe {
		s.storeResult(key, pliesLeft, value, origAlpha, beta)
	}
	return value, nil
}

// quiescence resolves captures past the depth limit. It shares the table
// with negamax; its entries have pliesLeft <= 0, which negamax never asks
// for.
func (s *Solver) quiescence(alpha, beta int, stm board.Color, depth, maxDepth int, prev *board.Move) int {
	s.stats.Quiescence++
	s.nodes.Add(1)
	pliesLeft := maxDepth - depth
	inCheck := s.pos.InCheck(stm)
	evalScore := eval.Evaluate(s.pos).Score * stm.Sign()
	canDeltaPrune := !inCheck && !eval.IsEndgame(s.pos)

	// Standing pat is not an option when in check.
	value := -Infinity
	if !inCheck {
		if evalScore >= beta {
			return evalScore
		}
		alpha = max(alpha, evalScore)
		value = evalScore
	}

	var key string
	if s.transpositionTableOptim {
		key = ttable.Compress(s.pos, stm)
		if score, _, ok := s.probe(key, pliesLeft, alpha, beta); ok {
			s.stats.FromTT++
			return score
		}
	}

	if canDeltaPrune && evalScore+deltaPruneMargin < alpha {
		return alpha
	}

	var candidates []board.Move
	if inCheck {
		candidates = s.pos.LegalMoves(stm)
	} else {
		candidates = s.pos.AllCaptures(stm)
	}
	moves := s.orderMoves(candidates, prev)
	if inCheck && len(moves) == 0 {
		return -Infinity + depth
	}

	origAlpha := alpha
	for i := range moves {
		m := &moves[i].Move
		if m.IsCapture() && !inCheck {
			// Losing captures are left out, as are captures that can't
			// bring the score anywhere near alpha.
			if moves[i].see < 0 {
				continue
			}
			if canDeltaPrune && evalScore+moves[i].see+captureDeltaSlack < alpha {
				continue
			}
		}
		s.pos.Apply(m)
		childValue := -s.quiescence(-beta, -alpha, stm.Other(), depth+1, maxDepth, m)
		s.pos.Undo(m)
		value = max(value, childValue)
		if value > alpha {
			alpha = value
			if alpha >= beta {
				break
			}
		}
	}

	if s.transpositionTableOptim {
		s.storeResult(key, pliesLeft, value, origAlpha, beta)
	}
	return value
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// formatPawns renders centipawns as signed pawns, e.g. +1.25.
func formatPawns(cp int) string {
	if cp == 0 {
		return "0.00"
	}
	return fmt.Sprintf("%+.2f", float64(cp)/100)
}
