package turnplayer

import (
	"context"

	"github.com/kestrel-chess/kestrel/board"
)

// Player picks the moves of one side of a game.
type Player interface {
	Name() string
	Color() board.Color
	// NextMove returns the move to play in pos, which is the player's turn.
	// A nil move with a nil error resigns. pos must come back unchanged.
	NextMove(ctx context.Context, pos *board.Position) (*board.Move, error)
}
