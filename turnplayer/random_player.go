package turnplayer

import (
	"context"

	"lukechampine.com/frand"

	"github.com/kestrel-chess/kestrel/board"
)

// RandomPlayer plays a uniformly random legal move.
type RandomPlayer struct {
	name  string
	color board.Color
}

func NewRandomPlayer(name string, color board.Color) *RandomPlayer {
	return &RandomPlayer{name: name, color: color}
}

func (p *RandomPlayer) Name() string       { return p.name }
func (p *RandomPlayer) Color() board.Color { return p.color }

func (p *RandomPlayer) NextMove(ctx context.Context, pos *board.Position) (*board.Move, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	moves := pos.LegalMoves(p.color)
	if len(moves) == 0 {
		return nil, nil
	}
	m := moves[frand.Intn(len(moves))]
	return &m, nil
}
