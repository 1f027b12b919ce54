package board

import (
	"errors"
	"fmt"
)

// Color is the color of a side (and of its pieces).
type Color uint8

const (
	White Color = iota
	Black
)

// NumColors is here so that arrays can be indexed by color.
const NumColors = 2

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// Other returns the opposing color.
func (c Color) Other() Color {
	return c ^ 1
}

// Sign is +1 for White and -1 for Black. The search multiplies White-relative
// evaluations by it to get side-to-move relative scores.
func (c Color) Sign() int {
	if c == White {
		return 1
	}
	return -1
}

// ColorFromSign is the inverse of Sign.
func ColorFromSign(sign int) Color {
	if sign > 0 {
		return White
	}
	return Black
}

// ParseColor accepts "white"/"w" and "black"/"b".
func ParseColor(s string) (Color, error) {
	switch s {
	case "white", "w", "White", "W":
		return White, nil
	case "black", "b", "Black", "B":
		return Black, nil
	}
	return White, fmt.Errorf("unrecognized color %q", s)
}

// PieceType enumerates the kinds of pieces. The numeric values are used by
// the position encoding, so don't reorder them.
type PieceType uint8

const (
	NoPieceType PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// NumPieceTypes includes the NoPieceType slot so that arrays can be indexed by
// PieceType directly.
const NumPieceTypes = 7

var pieceLetters = [NumPieceTypes]byte{'.', 'P', 'N', 'B', 'R', 'Q', 'K'}

// Letter is the uppercase letter of the type (P, N, B, R, Q, K).
func (t PieceType) Letter() byte {
	return pieceLetters[t]
}

func (t PieceType) String() string {
	switch t {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	}
	return "none"
}

// PieceTypeFromLetter parses a piece letter in either case.
func PieceTypeFromLetter(b byte) PieceType {
	switch b {
	case 'P', 'p':
		return Pawn
	case 'N', 'n':
		return Knight
	case 'B', 'b':
		return Bishop
	case 'R', 'r':
		return Rook
	case 'Q', 'q':
		return Queen
	case 'K', 'k':
		return King
	}
	return NoPieceType
}

// A Square is a cell index on the grid: row*8 + col. Row 0 is the edge of the
// board farthest from the near player, as it would be drawn on the screen.
type Square int8

const NoSquare Square = -1

const (
	NumRows    = 8
	NumCols    = 8
	NumSquares = NumRows * NumCols
)

var ErrBadSquare = errors.New("bad square")

// NewSquare returns NoSquare if row or col are off the board.
func NewSquare(row, col int) Square {
	if row < 0 || row >= NumRows || col < 0 || col >= NumCols {
		return NoSquare
	}
	return Square(row*NumCols + col)
}

func (s Square) Row() int {
	return int(s) / NumCols
}

func (s Square) Col() int {
	return int(s) % NumCols
}

func (s Square) Valid() bool {
	return s >= 0 && s < NumSquares
}

// Offset returns the square dr rows and dc cols away, or NoSquare.
func (s Square) Offset(dr, dc int) Square {
	return NewSquare(s.Row()+dr, s.Col()+dc)
}

// FileRank converts a grid square to absolute (file, rank) coordinates, both
// 0-based (file 0 is the a-file, rank 0 is White's back rank), given which
// color sits at the near edge.
func (s Square) FileRank(near Color) (int, int) {
	if near == White {
		return s.Col(), NumRows - 1 - s.Row()
	}
	return NumCols - 1 - s.Col(), s.Row()
}

// SquareAt is the inverse of FileRank.
func SquareAt(file, rank int, near Color) Square {
	if near == White {
		return NewSquare(NumRows-1-rank, file)
	}
	return NewSquare(rank, NumCols-1-file)
}

// Name renders the square as an algebraic coordinate such as "e4".
func (s Square) Name(near Color) string {
	if !s.Valid() {
		return "-"
	}
	f, r := s.FileRank(near)
	return string([]byte{byte('a' + f), byte('1' + r)})
}

// ParseSquare parses an algebraic coordinate such as "e4".
func ParseSquare(name string, near Color) (Square, error) {
	if len(name) != 2 {
		return NoSquare, fmt.Errorf("%w: %q", ErrBadSquare, name)
	}
	f := int(name[0]) - 'a'
	r := int(name[1]) - '1'
	if f < 0 || f > 7 || r < 0 || r > 7 {
		return NoSquare, fmt.Errorf("%w: %q", ErrBadSquare, name)
	}
	return SquareAt(f, r, near), nil
}
