package eval

import "github.com/kestrel-chess/kestrel/board"

const maxExchange = 32

func smallestAttacker(p *board.Position, sq board.Square, c board.Color) *board.Piece {
	var smallest *board.Piece
	for _, pc := range p.AttackersOf(sq, c) {
		if smallest == nil || PieceValue(pc.Type()) < PieceValue(smallest.Type()) {
			smallest = pc
		}
	}
	return smallest
}

// SEE is the static exchange evaluation of capture m: the net material the
// mover wins (or loses, if negative) on the destination square when both
// sides recapture with their least valuable attacker for as long as it pays.
// p is left unchanged.
func SEE(p *board.Position, m *board.Move) int {
	if m.Captured == nil {
		return 0
	}
	var moves [maxExchange]board.Move
	var gain [maxExchange]int
	sq := m.To
	d := 0
	onSquare := PieceValue(m.Piece.Type())
	gain[0] = PieceValue(m.Captured.Type())
	moves[0] = *m
	p.Apply(&moves[0])

	side := m.Piece.Color().Other()
	attacker := smallestAttacker(p, sq, side)
	for attacker != nil && d < maxExchange-1 {
		d++
		gain[d] = onSquare - gain[d-1]
		if max(-gain[d-1], gain[d]) < 0 {
			d--
			break
		}
		moves[d] = board.Move{
			Kind:        board.MoveKindSimple,
			Piece:       attacker,
			From:        attacker.Square(),
			To:          sq,
			Captured:    p.Get(sq),
			MovedBefore: attacker.Moved(),
		}
		p.Apply(&moves[d])
		side = side.Other()
		onSquare = PieceValue(attacker.Type())
		attacker = smallestAttacker(p, sq, side)
	}

	for i := d; i >= 1; i-- {
		gain[i-1] = -max(-gain[i-1], gain[i])
	}
	for i := d; i >= 0; i-- {
		p.Undo(&moves[i])
	}
	return gain[0]
}
