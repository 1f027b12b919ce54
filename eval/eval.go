// Package eval scores chess positions statically: a tapered material and
// piece-square evaluation plus a few untapered positional terms, and a static
// exchange evaluator for captures.
package eval

import "github.com/kestrel-chess/kestrel/board"

// Result is a score in centipawns, positive favoring White. Full is false
// for a lazy estimate; Evaluate always does the full computation.
type Result struct {
	Score int
	Full  bool
}

const (
	bishopPairBonus = 15
	pawnFileBonus   = 20
	kingCheckedCost = 40
	kingAdjCost     = 10
	mobilityWeight  = 4

	// MaxPhase is the phase of a board with no pieces but kings and pawns.
	MaxPhase = 256
)

var phaseWeights = [board.NumPieceTypes]int{board.Knight: 1, board.Bishop: 1, board.Rook: 2, board.Queen: 4}

// totalPhase is the weight of the full starting material: 4 minor pieces,
// 4 rooks and 2 queens.
const totalPhase = 4*1 + 4*1 + 4*2 + 2*4

// PieceValue is the flat value of a piece type, used for exchanges and move
// ordering.
func PieceValue(t board.PieceType) int {
	switch t {
	case board.Pawn:
		return 100
	case board.Knight, board.Bishop:
		return 300
	case board.Rook:
		return 500
	case board.Queen:
		return 900
	case board.King:
		return 10000
	}
	return 0
}

// Evaluate returns the full static evaluation of p.
func Evaluate(p *board.Position) Result {
	var mg, eg int
	for c := board.White; c <= board.Black; c++ {
		sign := c.Sign()
		cmg, ceg := materialAndPosition(p, c)
		if p.Count(c, board.Bishop) == 2 {
			ceg += bishopPairBonus
		}
		mg += sign * cmg
		eg += sign * ceg
	}
	score := Taper(mg, eg, Phase(p))

	for c := board.White; c <= board.Black; c++ {
		sign := c.Sign()
		score += sign * pawnStructure(p, c)
		score += sign * kingSafety(p, c)
	}
	score += mobilityWeight * (len(p.LegalMoves(board.White)) - len(p.LegalMoves(board.Black)))
	return Result{Score: score, Full: true}
}

// Taper blends midgame and endgame scores by phase.
func Taper(mg, eg, phase int) int {
	return (mg*(MaxPhase-phase) + eg*phase) / MaxPhase
}

func materialAndPosition(p *board.Position, c board.Color) (int, int) {
	var mg, eg int
	for t := board.Pawn; t <= board.King; t++ {
		for _, pc := range p.PiecesOf(c, t) {
			idx := tableIndex(pc, p.Near())
			mg += mgValue[t] + mgTables[t][idx]
			eg += egValue[t] + egTables[t][idx]
		}
	}
	return mg, eg
}

// pawnStructure rewards each file that holds at least one pawn.
func pawnStructure(p *board.Position, c board.Color) int {
	var files [board.NumCols]bool
	score := 0
	for _, pc := range p.PiecesOf(c, board.Pawn) {
		col := pc.Square().Col()
		if !files[col] {
			files[col] = true
			score += pawnFileBonus
		}
	}
	return score
}

// kingSafety penalizes a king in check and each occupied neighbouring square
// the opponent attacks.
func kingSafety(p *board.Position, c board.Color) int {
	k := p.King(c)
	if k == nil {
		return 0
	}
	attacked := p.AttackedSquares(c.Other())
	score := 0
	if attacked[k.Square()] {
		score -= kingCheckedCost
	}
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			sq := k.Square().Offset(dr, dc)
			if sq != board.NoSquare && p.Get(sq) != nil && attacked[sq] {
				score -= kingAdjCost
			}
		}
	}
	return score
}

// Phase is 0 with all the starting pieces on the board and MaxPhase once
// only kings and pawns remain. Promotions can push the raw count past the
// starting material; the result is clamped to [0, MaxPhase].
func Phase(p *board.Position) int {
	cur := totalPhase
	for c := board.White; c <= board.Black; c++ {
		for t := board.Knight; t <= board.Queen; t++ {
			cur -= p.Count(c, t) * phaseWeights[t]
		}
	}
	cur = max(cur, 0)
	return (cur*MaxPhase + totalPhase/2) / totalPhase
}

// NonPawnMaterial sums the flat values of c's knights, bishops, rooks and
// queens.
func NonPawnMaterial(p *board.Position, c board.Color) int {
	m := 0
	for t := board.Knight; t <= board.Queen; t++ {
		m += p.Count(c, t) * PieceValue(t)
	}
	return m
}

// IsEndgame is true once both sides are down to at most 1400 centipawns of
// non-pawn material.
func IsEndgame(p *board.Position) bool {
	return NonPawnMaterial(p, board.White)/100 <= 14 &&
		NonPawnMaterial(p, board.Black)/100 <= 14
}
