// Package ttable is the transposition store: a bounded cache from encoded
// positions to search results.
package ttable

import (
	"math/big"
	"slices"

	"github.com/kestrel-chess/kestrel/board"
)

const base90Digits = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz!@#$%^&*()[];',./{}|:<>?_+`~"

var base90 = big.NewInt(int64(len(base90Digits)))

// Square digits in base 13: 0 empty, 1-6 White pawn..king, 7-C Black
// pawn..king.
const base13Digits = "0123456789ABC"

func squareDigit(pc *board.Piece) byte {
	if pc == nil {
		return '0'
	}
	d := int(pc.Type())
	if pc.Color() == board.Black {
		d += 6
	}
	return base13Digits[d]
}

// Compress encodes p with stm to move as a short printable key. The digit
// string is: side to move (1 White, 2 Black), the castling rights of the side
// to move and then of the opponent (0-3 each), then the 64 squares from a8 to
// h1 as seen with White near. It is read as a base-13 number and written out
// in base 90. Two positions get the same key only if they agree on layout,
// castling rights and side to move. En-passant rights and repetition history
// are not part of the key.
func Compress(p *board.Position, stm board.Color) string {
	digits := make([]byte, 0, 3+board.NumSquares)
	if stm == board.White {
		digits = append(digits, '1')
	} else {
		digits = append(digits, '2')
	}
	digits = append(digits,
		'0'+byte(p.CastlingRights(stm)),
		'0'+byte(p.CastlingRights(stm.Other())))

	near := p.Near()
	for rank := board.NumRows - 1; rank >= 0; rank-- {
		for file := 0; file < board.NumCols; file++ {
			digits = append(digits, squareDigit(p.Get(board.SquareAt(file, rank, near))))
		}
	}

	n, ok := new(big.Int).SetString(string(digits), 13)
	if !ok {
		panic("bad base-13 digit string " + string(digits))
	}
	return EncodeBase90(n)
}

// EncodeBase90 writes n in the 90-symbol key alphabet. It panics if n is
// negative.
func EncodeBase90(n *big.Int) string {
	if n.Sign() < 0 {
		panic("cannot encode a negative number in base 90")
	}
	if n.Sign() == 0 {
		return base90Digits[:1]
	}
	var out []byte
	q := new(big.Int).Set(n)
	r := new(big.Int)
	for q.Sign() > 0 {
		q.QuoRem(q, base90, r)
		out = append(out, base90Digits[r.Int64()])
	}
	slices.Reverse(out)
	return string(out)
}
