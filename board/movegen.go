package board

import "github.com/samber/lo"

// Promotion choices, best first.
var promotionTypes = [...]PieceType{Queen, Rook, Bishop, Knight}

// Absolute files used by castling.
const (
	kingHomeFile      = 4
	shortRookFile     = 7
	longRookFile      = 0
	shortKingDestFile = 6
	shortRookDestFile = 5
	longKingDestFile  = 2
	longRookDestFile  = 3
)

// backRank is the absolute rank (0-based) where color c's pieces start.
func backRank(c Color) int {
	if c == White {
		return 0
	}
	return 7
}

// escapesCheck applies m, checks whether the mover's own king is attacked,
// and undoes m.
func (p *Position) escapesCheck(m *Move) bool {
	c := m.Piece.color
	p.Apply(m)
	k := p.King(c)
	ok := k == nil || !p.IsAttacked(k.sq, c.Other())
	p.Undo(m)
	return ok
}

// LegalMoves returns every legal move for color c. Pseudo-legal moves are
// generated from each piece's movement rule and kept only if they don't leave
// c's king attacked.
func (p *Position) LegalMoves(c Color) []Move {
	// Moves are applied and undone while generating, which shuffles the
	// membership lists in place, so iterate over a copy.
	pieces := p.Pieces(c)
	moves := make([]Move, 0, 40)
	var buf [32]Square
	promoRow := p.promotionRow(c)

	for _, pc := range pieces {
		for _, to := range p.destinations(pc, false, buf[:0]) {
			captured := p.squares[to]
			if pc.kind == Pawn && to.Row() == promoRow {
				for _, t := range promotionTypes {
					m := Move{
						Kind:        MoveKindPromotion,
						Piece:       pc,
						From:        pc.sq,
						To:          to,
						Captured:    captured,
						MovedBefore: pc.moved,
						Upgrade:     NewPiece(t, c),
					}
					if p.escapesCheck(&m) {
						moves = append(moves, m)
					}
				}
				continue
			}
			m := Move{
				Kind:        MoveKindSimple,
				Piece:       pc,
				From:        pc.sq,
				To:          to,
				Captured:    captured,
				MovedBefore: pc.moved,
			}
			if p.escapesCheck(&m) {
				moves = append(moves, m)
			}
		}
	}
	return p.appendCastles(c, moves)
}

// AllCaptures returns the legal moves of color c that capture something.
func (p *Position) AllCaptures(c Color) []Move {
	return lo.Filter(p.LegalMoves(c), func(m Move, _ int) bool {
		return m.Captured != nil
	})
}

// HasLegalMove is a cheaper way to ask len(LegalMoves(c)) > 0.
func (p *Position) HasLegalMove(c Color) bool {
	var buf [32]Square
	for _, pc := range p.Pieces(c) {
		for _, to := range p.destinations(pc, false, buf[:0]) {
			m := Move{Kind: MoveKindSimple, Piece: pc, From: pc.sq, To: to,
				Captured: p.squares[to], MovedBefore: pc.moved}
			if p.escapesCheck(&m) {
				return true
			}
		}
	}
	// A castle is never the only legal move: the king could always stop on
	// the transit square instead.
	return false
}

// castleSquares returns the rook's start square and the king's and rook's
// destinations for color c castling to side.
func (p *Position) castleSquares(c Color, side CastleSide) (rookFrom, kingTo, rookTo Square) {
	rank := backRank(c)
	if side == CastleShort {
		return SquareAt(shortRookFile, rank, p.near),
			SquareAt(shortKingDestFile, rank, p.near),
			SquareAt(shortRookDestFile, rank, p.near)
	}
	return SquareAt(longRookFile, rank, p.near),
		SquareAt(longKingDestFile, rank, p.near),
		SquareAt(longRookDestFile, rank, p.near)
}

func (p *Position) unmovedRookAt(sq Square, c Color) *Piece {
	pc := p.squares[sq]
	if pc == nil || pc.color != c || pc.kind != Rook || pc.moved {
		return nil
	}
	return pc
}

// CastlingRights reports which castles are still possible in principle for
// color c: the king and the relevant rook are on their home squares and have
// never moved. It ignores attacks and blocking pieces.
func (p *Position) CastlingRights(c Color) CastlingRights {
	k := p.King(c)
	if k == nil || k.moved || k.sq != SquareAt(kingHomeFile, backRank(c), p.near) {
		return NoCastling
	}
	rights := NoCastling
	for _, side := range [2]CastleSide{CastleShort, CastleLong} {
		rookFrom, _, _ := p.castleSquares(c, side)
		if p.unmovedRookAt(rookFrom, c) != nil {
			rights |= CastlingRights(side)
		}
	}
	return rights
}

// appendCastles adds the legal castling moves of color c to moves.
func (p *Position) appendCastles(c Color, moves []Move) []Move {
	rights := p.CastlingRights(c)
	if rights == NoCastling {
		return moves
	}
	k := p.King(c)
	opp := c.Other()
	if p.IsAttacked(k.sq, opp) {
		return moves
	}
	for _, side := range [2]CastleSide{CastleShort, CastleLong} {
		if !rights.Has(side) {
			continue
		}
		rookFrom, kingTo, rookTo := p.castleSquares(c, side)
		step := 1
		if rookFrom.Col() < k.sq.Col() {
			step = -1
		}
		empty := true
		for col := k.sq.Col() + step; col != rookFrom.Col(); col += step {
			if p.squares[NewSquare(k.sq.Row(), col)] != nil {
				empty = false
				break
			}
		}
		if !empty {
			continue
		}
		transit := NewSquare(k.sq.Row(), k.sq.Col()+step)
		if p.IsAttacked(transit, opp) || p.IsAttacked(kingTo, opp) {
			continue
		}
		m := Move{
			Kind:            MoveKindCastle,
			Piece:           k,
			From:            k.sq,
			To:              kingTo,
			MovedBefore:     k.moved,
			Rook:            p.squares[rookFrom],
			RookFrom:        rookFrom,
			RookTo:          rookTo,
			Side:            side,
			RookMovedBefore: p.squares[rookFrom].moved,
		}
		if p.escapesCheck(&m) {
			moves = append(moves, m)
		}
	}
	return moves
}
