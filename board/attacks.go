package board

// Attack queries scan outward from the target square rather than generating
// the attack set of every piece of the attacking color. The answers are the
// same as testing membership in each piece's AttackSquares.

func (p *Position) scanAttackers(sq Square, c Color, firstOnly bool) []*Piece {
	var attackers []*Piece
	found := func(pc *Piece) bool {
		attackers = append(attackers, pc)
		return firstOnly
	}

	// A pawn of color c attacks sq from one row behind it (relative to the
	// pawn's direction of travel), on either adjacent column.
	back := -p.forward(c)
	for _, dc := range [2]int{-1, 1} {
		s := sq.Offset(back, dc)
		if s == NoSquare {
			continue
		}
		if pc := p.squares[s]; pc != nil && pc.color == c && pc.kind == Pawn {
			if found(pc) {
				return attackers
			}
		}
	}
	for _, d := range knightJumps {
		s := sq.Offset(d.dr, d.dc)
		if s == NoSquare {
			continue
		}
		if pc := p.squares[s]; pc != nil && pc.color == c && pc.kind == Knight {
			if found(pc) {
				return attackers
			}
		}
	}
	for _, d := range allDirs {
		s := sq.Offset(d.dr, d.dc)
		if s == NoSquare {
			continue
		}
		if pc := p.squares[s]; pc != nil && pc.color == c && pc.kind == King {
			if found(pc) {
				return attackers
			}
		}
	}
	for _, d := range orthogonals {
		if pc := p.firstAlong(sq, d); pc != nil && pc.color == c &&
			(pc.kind == Rook || pc.kind == Queen) {
			if found(pc) {
				return attackers
			}
		}
	}
	for _, d := range diagonals {
		if pc := p.firstAlong(sq, d); pc != nil && pc.color == c &&
			(pc.kind == Bishop || pc.kind == Queen) {
			if found(pc) {
				return attackers
			}
		}
	}
	return attackers
}

// firstAlong returns the first piece met walking from sq in direction d.
func (p *Position) firstAlong(sq Square, d direction) *Piece {
	s := sq
	for {
		s = s.Offset(d.dr, d.dc)
		if s == NoSquare {
			return nil
		}
		if pc := p.squares[s]; pc != nil {
			return pc
		}
	}
}

// AttackersOf returns every piece of color c that attacks sq.
func (p *Position) AttackersOf(sq Square, c Color) []*Piece {
	return p.scanAttackers(sq, c, false)
}

// IsAttacked reports whether any piece of color c attacks sq.
func (p *Position) IsAttacked(sq Square, c Color) bool {
	return len(p.scanAttackers(sq, c, true)) > 0
}

// InCheck reports whether the king of color c is attacked.
func (p *Position) InCheck(c Color) bool {
	k := p.King(c)
	if k == nil {
		return false
	}
	return p.IsAttacked(k.sq, c.Other())
}

// AttackedSquares returns the set of squares attacked by color c.
func (p *Position) AttackedSquares(c Color) [NumSquares]bool {
	var set [NumSquares]bool
	var buf [32]Square
	for t := Pawn; t <= King; t++ {
		for _, pc := range p.pieces[c][t] {
			for _, s := range p.destinations(pc, true, buf[:0]) {
				set[s] = true
			}
		}
	}
	return set
}
