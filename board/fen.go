package board

import (
	"errors"
	"fmt"
	"strings"
)

const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var ErrBadFEN = errors.New("bad FEN")

// FromFEN builds a position from the placement, side-to-move and castling
// fields of a FEN string. The en-passant and clock fields are accepted but
// ignored. Has-moved flags are inferred: a pawn off its starting rank has
// moved, and a king or rook has moved unless a castling right says otherwise.
func FromFEN(fen string, near Color) (*Position, Color, error) {
	fields := strings.Fields(fen)
	if len(fields) < 2 {
		return nil, White, fmt.Errorf("%w: need at least placement and side to move", ErrBadFEN)
	}
	ranks := strings.Split(fields[0], "/")
	if len(ranks) != NumRows {
		return nil, White, fmt.Errorf("%w: expected 8 ranks, got %d", ErrBadFEN, len(ranks))
	}
	castling := "-"
	if len(fields) > 2 {
		castling = fields[2]
	}

	p := NewPosition(near)
	for i, rankStr := range ranks {
		rank := NumRows - 1 - i
		file := 0
		for j := 0; j < len(rankStr); j++ {
			ch := rankStr[j]
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			t := PieceTypeFromLetter(ch)
			if t == NoPieceType || file >= NumCols {
				return nil, White, fmt.Errorf("%w: bad rank %q", ErrBadFEN, rankStr)
			}
			c := White
			if ch >= 'a' && ch <= 'z' {
				c = Black
			}
			if _, err := p.Place(t, c, SquareAt(file, rank, near), false); err != nil {
				return nil, White, fmt.Errorf("%w: %w", ErrBadFEN, err)
			}
			file++
		}
		if file != NumCols {
			return nil, White, fmt.Errorf("%w: rank %q does not have 8 files", ErrBadFEN, rankStr)
		}
	}

	var stm Color
	switch fields[1] {
	case "w":
		stm = White
	case "b":
		stm = Black
	default:
		return nil, White, fmt.Errorf("%w: bad side to move %q", ErrBadFEN, fields[1])
	}

	p.inferMovedFlags(castling)
	return p, stm, nil
}

func (p *Position) inferMovedFlags(castling string) {
	for c := White; c <= Black; c++ {
		pawnRank := 1
		if c == Black {
			pawnRank = 6
		}
		for _, pc := range p.pieces[c][Pawn] {
			_, r := pc.sq.FileRank(p.near)
			pc.moved = r != pawnRank
		}
		for _, pc := range p.pieces[c][Rook] {
			pc.moved = true
		}
		for _, pc := range p.pieces[c][King] {
			pc.moved = true
		}
	}
	rights := map[byte]struct {
		c    Color
		side CastleSide
	}{
		'K': {White, CastleShort}, 'Q': {White, CastleLong},
		'k': {Black, CastleShort}, 'q': {Black, CastleLong},
	}
	for i := 0; i < len(castling); i++ {
		r, ok := rights[castling[i]]
		if !ok {
			continue
		}
		k := p.King(r.c)
		if k == nil || k.sq != SquareAt(kingHomeFile, backRank(r.c), p.near) {
			continue
		}
		rookFrom, _, _ := p.castleSquares(r.c, r.side)
		rook := p.squares[rookFrom]
		if rook == nil || rook.color != r.c || rook.kind != Rook {
			continue
		}
		k.moved = false
		rook.moved = false
	}
}

// FEN renders the position with stm to move. Castling availability comes
// from CastlingRights; the en-passant field is always "-".
func (p *Position) FEN(stm Color) string {
	var sb strings.Builder
	for rank := NumRows - 1; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < NumCols; file++ {
			pc := p.squares[SquareAt(file, rank, p.near)]
			if pc == nil {
				empty++
				continue
			}
			if empty > 0 {
				fmt.Fprintf(&sb, "%d", empty)
				empty = 0
			}
			sb.WriteByte(pc.Letter())
		}
		if empty > 0 {
			fmt.Fprintf(&sb, "%d", empty)
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
	if stm == White {
		sb.WriteString(" w ")
	} else {
		sb.WriteString(" b ")
	}
	castling := ""
	wr, br := p.CastlingRights(White), p.CastlingRights(Black)
	if wr.Has(CastleShort) {
		castling += "K"
	}
	if wr.Has(CastleLong) {
		castling += "Q"
	}
	if br.Has(CastleShort) {
		castling += "k"
	}
	if br.Has(CastleLong) {
		castling += "q"
	}
	if castling == "" {
		castling = "-"
	}
	sb.WriteString(castling)
	sb.WriteString(" - 0 1")
	return sb.String()
}
