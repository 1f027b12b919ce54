package board

import "fmt"

// MoveKind tags the Move variant.
type MoveKind uint8

const (
	MoveKindSimple MoveKind = iota
	MoveKindPromotion
	MoveKindCastle
)

func (k MoveKind) String() string {
	switch k {
	case MoveKindSimple:
		return "simple"
	case MoveKindPromotion:
		return "promotion"
	case MoveKindCastle:
		return "castle"
	}
	return "unknown"
}

// CastleSide is which way a king castles. The values double as the bits of
// CastlingRights.
type CastleSide uint8

const (
	CastleShort CastleSide = 1
	CastleLong  CastleSide = 2
)

// CastlingRights is a static eligibility fact derived from has-moved flags:
// 0 none, 1 short, 2 long, 3 both.
type CastlingRights uint8

const (
	NoCastling  CastlingRights = 0
	ShortCastle CastlingRights = CastlingRights(CastleShort)
	LongCastle  CastlingRights = CastlingRights(CastleLong)
	BothCastles CastlingRights = ShortCastle | LongCastle
)

func (r CastlingRights) Has(side CastleSide) bool {
	return r&CastlingRights(side) != 0
}

// A Move is a tagged variant. Fields that don't apply to a kind are left at
// their zero values. Moves are created by move generation and handed to
// Apply/Undo; apply writes bookkeeping into the unexported fields, so always
// pass the same *Move to Undo that was passed to Apply.
type Move struct {
	Kind        MoveKind
	Piece       *Piece
	From, To    Square
	Captured    *Piece
	MovedBefore bool

	// Promotion
	Upgrade *Piece

	// Castle
	Rook            *Piece
	RookFrom        Square
	RookTo          Square
	Side            CastleSide
	RookMovedBefore bool

	// membership-list slots, so that undo restores list order exactly.
	capturedIdx int
	pawnIdx     int
}

// IsCapture reports whether the move takes a piece.
func (m *Move) IsCapture() bool {
	return m.Captured != nil
}

// PromotionType is the type the pawn becomes, or NoPieceType.
func (m *Move) PromotionType() PieceType {
	if m.Kind != MoveKindPromotion || m.Upgrade == nil {
		return NoPieceType
	}
	return m.Upgrade.kind
}

// Equals compares the observable identity of two moves: kind, squares and
// promotion type. Either may be nil.
func (m *Move) Equals(o *Move) bool {
	if m == nil || o == nil {
		return m == o
	}
	return m.Kind == o.Kind && m.From == o.From && m.To == o.To &&
		m.PromotionType() == o.PromotionType()
}

// UCI renders the move in coordinate notation ("e2e4", "e7e8q"), which needs
// the board orientation to name the squares.
func (m *Move) UCI(near Color) string {
	s := m.From.Name(near) + m.To.Name(near)
	if pt := m.PromotionType(); pt != NoPieceType {
		s += string(pt.Letter() + ('a' - 'A'))
	}
	return s
}

// String provides a string just for debugging purposes.
func (m *Move) String() string {
	switch m.Kind {
	case MoveKindCastle:
		return fmt.Sprintf("<castle side:%d king %d->%d rook %d->%d>",
			m.Side, m.From, m.To, m.RookFrom, m.RookTo)
	case MoveKindPromotion:
		return fmt.Sprintf("<promotion %d->%d to %s captures:%v>",
			m.From, m.To, m.PromotionType(), m.Captured != nil)
	}
	return fmt.Sprintf("<move %s %d->%d captures:%v>",
		m.Piece.kind, m.From, m.To, m.Captured != nil)
}
