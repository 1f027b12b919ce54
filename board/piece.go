package board

import "fmt"

// A Piece is owned by exactly one Position. Pieces are created at setup (or
// when a pawn promotes) and mutated in place as moves are applied and undone.
type Piece struct {
	kind  PieceType
	color Color
	sq    Square
	moved bool
}

// NewPiece creates a piece that is not yet on any board.
func NewPiece(t PieceType, c Color) *Piece {
	return &Piece{kind: t, color: c, sq: NoSquare}
}

func (p *Piece) Type() PieceType { return p.kind }
func (p *Piece) Color() Color    { return p.color }
func (p *Piece) Square() Square  { return p.sq }

// Moved reports whether the piece has ever moved. It stands in for castling
// eligibility (kings and rooks) and the double step (pawns).
func (p *Piece) Moved() bool { return p.moved }

// Letter is uppercase for White and lowercase for Black, as in FEN.
func (p *Piece) Letter() byte {
	l := p.kind.Letter()
	if p.color == Black {
		l += 'a' - 'A'
	}
	return l
}

func (p *Piece) String() string {
	return fmt.Sprintf("<%s %s @%d moved:%v>", p.color, p.kind, p.sq, p.moved)
}

type direction struct {
	dr, dc int
}

var (
	orthogonals = []direction{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	diagonals   = []direction{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	allDirs     = append(append([]direction{}, orthogonals...), diagonals...)
	knightJumps = []direction{
		{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1},
	}
)

// movementRule describes how a piece type moves: a set of directions and
// whether it slides along them until blocked. Pawns are special-cased.
type movementRule struct {
	dirs    []direction
	sliding bool
}

var movementRules = [NumPieceTypes]movementRule{
	Knight: {dirs: knightJumps},
	Bishop: {dirs: diagonals, sliding: true},
	Rook:   {dirs: orthogonals, sliding: true},
	Queen:  {dirs: allDirs, sliding: true},
	King:   {dirs: allDirs},
}

// forward is the row delta for a pawn of color c.
func (p *Position) forward(c Color) int {
	if c == p.near {
		return -1
	}
	return 1
}

// promotionRow is the row on which a pawn of color c promotes.
func (p *Position) promotionRow(c Color) int {
	if c == p.near {
		return 0
	}
	return NumRows - 1
}

// destinations appends the candidate destination squares of pc to buf. If
// attacks is false these are the pseudo-legal move destinations: empty squares
// and squares held by the opponent. If attacks is true these are the squares
// the piece attacks, which also include squares held by its own side (they are
// defended) and both pawn diagonals whether or not anything stands there. The
// straight-ahead pawn step is never an attack.
func (p *Position) destinations(pc *Piece, attacks bool, buf []Square) []Square {
	from := pc.sq
	if pc.kind == Pawn {
		fwd := p.forward(pc.color)
		if !attacks {
			one := from.Offset(fwd, 0)
			if one != NoSquare && p.squares[one] == nil {
				buf = append(buf, one)
				two := from.Offset(2*fwd, 0)
				if !pc.moved && two != NoSquare && p.squares[two] == nil {
					buf = append(buf, two)
				}
			}
		}
		for _, dc := range [2]int{-1, 1} {
			to := from.Offset(fwd, dc)
			if to == NoSquare {
				continue
			}
			occ := p.squares[to]
			if attacks || (occ != nil && occ.color != pc.color) {
				buf = append(buf, to)
			}
		}
		return buf
	}
	rule := movementRules[pc.kind]
	for _, d := range rule.dirs {
		to := from
		for {
			to = to.Offset(d.dr, d.dc)
			if to == NoSquare {
				break
			}
			occ := p.squares[to]
			if occ == nil {
				buf = append(buf, to)
			} else {
				if attacks || occ.color != pc.color {
					buf = append(buf, to)
				}
				break
			}
			if !rule.sliding {
				break
			}
		}
	}
	return buf
}

// Destinations returns the pseudo-legal destinations of pc.
func (p *Position) Destinations(pc *Piece) []Square {
	return p.destinations(pc, false, nil)
}

// AttackSquares returns the squares pc attacks.
func (p *Position) AttackSquares(pc *Piece) []Square {
	return p.destinations(pc, true, nil)
}
