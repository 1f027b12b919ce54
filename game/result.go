package game

import (
	"fmt"

	"github.com/kestrel-chess/kestrel/board"
)

type Outcome uint8

const (
	WhiteWins Outcome = iota
	BlackWins
	Draw
)

func (o Outcome) String() string {
	switch o {
	case WhiteWins:
		return "white-wins"
	case BlackWins:
		return "black-wins"
	}
	return "draw"
}

func winnerIs(c board.Color) Outcome {
	if c == board.White {
		return WhiteWins
	}
	return BlackWins
}

type EndReason uint8

const (
	Checkmate EndReason = iota
	Resignation
	Stalemate
	MoveLimit
)

func (r EndReason) String() string {
	return [...]string{"checkmate", "resignation", "stalemate", "move-limit"}[r]
}

type Result struct {
	Outcome   Outcome
	Reason    EndReason
	HalfMoves int
}

// Message is the line announced when the game ends.
func (r *Result) Message() string {
	switch r.Reason {
	case Checkmate:
		if r.Outcome == WhiteWins {
			return "Game Over. White Wins."
		}
		return "Game Over. Black Wins."
	case Resignation:
		if r.Outcome == WhiteWins {
			return "Game Over. White Wins through Black's Resignation."
		}
		return "Game Over. Black Wins through White's Resignation."
	case Stalemate:
		return "Game Over. Draw by stalemate."
	}
	return fmt.Sprintf("Game Over. Draw after %d half-moves.", r.HalfMoves)
}
