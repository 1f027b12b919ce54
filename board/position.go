package board

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var ErrSquareOccupied = errors.New("square is occupied")

// A Position is the 8x8 grid plus per-color, per-type membership lists of the
// pieces on it. A piece occupies exactly one grid cell and appears in exactly
// one list, except in the middle of Apply/Undo.
type Position struct {
	squares [NumSquares]*Piece
	pieces  [NumColors][NumPieceTypes][]*Piece
	// near is the color whose pieces start at the bottom of the display
	// (rows 6 and 7). It decides pawn direction and how squares are named.
	near Color
}

// NewPosition returns an empty board.
func NewPosition(near Color) *Position {
	return &Position{near: near}
}

// NewStandard returns the standard starting layout.
func NewStandard(near Color) *Position {
	p, _, err := FromFEN(StartingFEN, near)
	if err != nil {
		panic(err)
	}
	return p
}

// Near is the color drawn at the bottom of the board.
func (p *Position) Near() Color {
	return p.near
}

// Get returns the piece on sq, or nil.
func (p *Position) Get(sq Square) *Piece {
	return p.squares[sq]
}

// PiecesOf returns the membership list for color c and type t. The caller
// must not modify it.
func (p *Position) PiecesOf(c Color, t PieceType) []*Piece {
	return p.pieces[c][t]
}

// Pieces returns a fresh slice of all pieces of color c, pawns first and the
// king last.
func (p *Position) Pieces(c Color) []*Piece {
	var ret []*Piece
	for t := Pawn; t <= King; t++ {
		ret = append(ret, p.pieces[c][t]...)
	}
	return ret
}

// Count returns how many pieces of color c and type t are on the board.
func (p *Position) Count(c Color, t PieceType) int {
	return len(p.pieces[c][t])
}

// King returns the king of color c, or nil if there is none (only possible on
// hand-built test boards).
func (p *Position) King(c Color) *Piece {
	kings := p.pieces[c][King]
	if len(kings) == 0 {
		return nil
	}
	return kings[0]
}

// Place puts a new piece on an empty square. It is meant for setting up
// positions; moves go through Apply.
func (p *Position) Place(t PieceType, c Color, sq Square, moved bool) (*Piece, error) {
	if !sq.Valid() {
		return nil, ErrBadSquare
	}
	if p.squares[sq] != nil {
		return nil, fmt.Errorf("%w: %s", ErrSquareOccupied, sq.Name(p.near))
	}
	pc := NewPiece(t, c)
	pc.moved = moved
	pc.sq = sq
	p.squares[sq] = pc
	p.pieces[c][t] = append(p.pieces[c][t], pc)
	return pc, nil
}

// detach removes pc from its membership list and returns the slot it held.
func (p *Position) detach(pc *Piece) int {
	list := p.pieces[pc.color][pc.kind]
	idx := slices.Index(list, pc)
	if idx < 0 {
		panic(fmt.Sprintf("piece %v is not in its membership list", pc))
	}
	p.pieces[pc.color][pc.kind] = slices.Delete(list, idx, idx+1)
	return idx
}

// attach puts pc back in its membership list at idx.
func (p *Position) attach(pc *Piece, idx int) {
	p.pieces[pc.color][pc.kind] = slices.Insert(p.pieces[pc.color][pc.kind], idx, pc)
}

func (p *Position) relocate(pc *Piece, to Square) {
	p.squares[pc.sq] = nil
	p.squares[to] = pc
	pc.sq = to
}

// Apply executes m on the board. The captured piece (if any) is detached from
// the grid and its list but kept on the move for Undo.
func (p *Position) Apply(m *Move) {
	switch m.Kind {
	case MoveKindSimple:
		if m.Captured != nil {
			m.capturedIdx = p.detach(m.Captured)
		}
		p.relocate(m.Piece, m.To)
		m.Piece.moved = true

	case MoveKindPromotion:
		if m.Captured != nil {
			m.capturedIdx = p.detach(m.Captured)
		}
		p.squares[m.From] = nil
		m.pawnIdx = p.detach(m.Piece)
		m.Piece.moved = true
		m.Upgrade.sq = m.To
		m.Upgrade.moved = true
		p.squares[m.To] = m.Upgrade
		p.pieces[m.Upgrade.color][m.Upgrade.kind] = append(
			p.pieces[m.Upgrade.color][m.Upgrade.kind], m.Upgrade)

	case MoveKindCastle:
		p.relocate(m.Piece, m.To)
		m.Piece.moved = true
		p.relocate(m.Rook, m.RookTo)
		m.Rook.moved = true

	default:
		panic(fmt.Sprintf("cannot apply move of kind %v", m.Kind))
	}
}

// Undo is the exact inverse of Apply. m must be the same move that was last
// applied.
func (p *Position) Undo(m *Move) {
	switch m.Kind {
	case MoveKindSimple:
		p.relocate(m.Piece, m.From)
		m.Piece.moved = m.MovedBefore
		if m.Captured != nil {
			p.squares[m.To] = m.Captured
			m.Captured.sq = m.To
			p.attach(m.Captured, m.capturedIdx)
		}

	case MoveKindPromotion:
		p.detach(m.Upgrade)
		m.Upgrade.sq = NoSquare
		p.squares[m.To] = nil
		if m.Captured != nil {
			p.squares[m.To] = m.Captured
			m.Captured.sq = m.To
			p.attach(m.Captured, m.capturedIdx)
		}
		m.Piece.sq = m.From
		m.Piece.moved = m.MovedBefore
		p.squares[m.From] = m.Piece
		p.attach(m.Piece, m.pawnIdx)

	case MoveKindCastle:
		p.relocate(m.Rook, m.RookFrom)
		m.Rook.moved = m.RookMovedBefore
		p.relocate(m.Piece, m.From)
		m.Piece.moved = m.MovedBefore

	default:
		panic(fmt.Sprintf("cannot undo move of kind %v", m.Kind))
	}
}

// Copy returns a deep copy; no pieces are shared with p.
func (p *Position) Copy() *Position {
	cp := NewPosition(p.near)
	for c := White; c <= Black; c++ {
		for t := Pawn; t <= King; t++ {
			for _, pc := range p.pieces[c][t] {
				npc := &Piece{kind: pc.kind, color: pc.color, sq: pc.sq, moved: pc.moved}
				cp.squares[npc.sq] = npc
				cp.pieces[c][t] = append(cp.pieces[c][t], npc)
			}
		}
	}
	return cp
}

// ToDisplayText renders the grid as it is oriented, with coordinates.
func (p *Position) ToDisplayText() string {
	var sb strings.Builder
	for row := 0; row < NumRows; row++ {
		_, rank := NewSquare(row, 0).FileRank(p.near)
		fmt.Fprintf(&sb, "%d ", rank+1)
		for col := 0; col < NumCols; col++ {
			pc := p.squares[NewSquare(row, col)]
			if pc == nil {
				sb.WriteString(" .")
			} else {
				sb.WriteByte(' ')
				sb.WriteByte(pc.Letter())
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  ")
	for col := 0; col < NumCols; col++ {
		f, _ := NewSquare(NumRows-1, col).FileRank(p.near)
		sb.WriteByte(' ')
		sb.WriteByte(byte('a' + f))
	}
	sb.WriteByte('\n')
	return sb.String()
}

// Snapshot is a comparable, exported view of a position's full state: grid
// contents, has-moved flags and the order of every membership list.
type Snapshot struct {
	Grid  [NumSquares]byte
	Moved [NumSquares]bool
	Lists [NumColors][NumPieceTypes][]Square
}

func (p *Position) Snapshot() Snapshot {
	var s Snapshot
	for sq, pc := range p.squares {
		if pc == nil {
			s.Grid[sq] = '.'
			continue
		}
		s.Grid[sq] = pc.Letter()
		s.Moved[sq] = pc.moved
	}
	for c := White; c <= Black; c++ {
		for t := Pawn; t <= King; t++ {
			for _, pc := range p.pieces[c][t] {
				s.Lists[c][t] = append(s.Lists[c][t], pc.sq)
			}
		}
	}
	return s
}
