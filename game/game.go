// Package game runs a chess game between two players: it asks each player
// for a move in turn, keeps the move log and decides when the game is over.
package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/kestrel-chess/kestrel/board"
	"github.com/kestrel-chess/kestrel/notation"
	"github.com/kestrel-chess/kestrel/turnplayer"
)

var (
	ErrGameOver     = errors.New("game is over")
	ErrIllegalMove  = errors.New("player returned an illegal move")
	ErrPlayerColors = errors.New("players must be white and black")
)

// Game is the state of one game. It does not care how its players choose
// their moves.
type Game struct {
	id           string
	title        string
	pos          *board.Position
	players      [board.NumColors]turnplayer.Player
	display      Display
	onturn       board.Color
	moveLog      notation.Recorder
	halfMoves    int
	maxHalfMoves int
	result       *Result
}

// NewGame sets up a game on pos, with white to move first. A nil display
// shows nothing.
func NewGame(pos *board.Position, white, black turnplayer.Player, display Display) (*Game, error) {
	return NewGameFrom(pos, board.White, white, black, display)
}

// NewGameFrom is NewGame for a position where stm is to move.
func NewGameFrom(pos *board.Position, stm board.Color, white, black turnplayer.Player, display Display) (*Game, error) {
	if white.Color() != board.White || black.Color() != board.Black {
		return nil, ErrPlayerColors
	}
	if display == nil {
		display = NopDisplay{}
	}
	g := &Game{
		id:      newGameID(),
		pos:     pos,
		players: [board.NumColors]turnplayer.Player{white, black},
		display: display,
		onturn:  stm,
	}
	g.checkOver()
	return g, nil
}

func (g *Game) ID() string                             { return g.id }
func (g *Game) Position() *board.Position              { return g.pos }
func (g *Game) OnTurn() board.Color                    { return g.onturn }
func (g *Game) HalfMoves() int                         { return g.halfMoves }
func (g *Game) Result() *Result                        { return g.result }
func (g *Game) Playing() bool                          { return g.result == nil }
func (g *Game) MoveLog() string                        { return g.moveLog.String() }
func (g *Game) SANMoves() []string                     { return g.moveLog.Moves() }
func (g *Game) SetTitle(title string)                  { g.title = title }
func (g *Game) SetMaxHalfMoves(n int)                  { g.maxHalfMoves = n }
func (g *Game) Player(c board.Color) turnplayer.Player { return g.players[c] }

func (g *Game) finish(outcome Outcome, reason EndReason) {
	g.result = &Result{Outcome: outcome, Reason: reason, HalfMoves: g.halfMoves}
	log.Info().Str("game-id", g.id).Str("outcome", outcome.String()).
		Str("reason", reason.String()).Int("half-moves", g.halfMoves).Msg("game-over")
}

// checkOver ends the game if the side to move has no legal move or the
// half-move cap is reached.
func (g *Game) checkOver() {
	if !g.pos.HasLegalMove(g.onturn) {
		if g.pos.InCheck(g.onturn) {
			g.finish(winnerIs(g.onturn.Other()), Checkmate)
		} else {
			g.finish(Draw, Stalemate)
		}
		return
	}
	if g.maxHalfMoves > 0 && g.halfMoves >= g.maxHalfMoves {
		g.finish(Draw, MoveLimit)
	}
}

// PlayTurn asks the player on turn for a move and plays it.
func (g *Game) PlayTurn(ctx context.Context) error {
	if g.result != nil {
		return ErrGameOver
	}
	pl := g.players[g.onturn]
	if g.title != "" {
		g.display.SetTitle(g.title + ": " + pl.Name())
	} else {
		g.display.SetTitle(pl.Name())
	}
	m, err := pl.NextMove(ctx, g.pos)
	if err != nil {
		return err
	}
	if m == nil {
		log.Info().Str("player", pl.Name()).Msg("player-resigned")
		g.finish(winnerIs(g.onturn.Other()), Resignation)
		return nil
	}
	if !g.isLegal(m) {
		return fmt.Errorf("%w: %s by %s", ErrIllegalMove, m.UCI(g.pos.Near()), pl.Name())
	}
	if err := g.moveLog.Record(g.pos, g.onturn, m); err != nil {
		return err
	}
	moves := g.moveLog.Moves()
	san := moves[len(moves)-1]
	g.pos.Apply(m)
	g.halfMoves++
	g.display.ShowMove(m.From, m.To, san)
	log.Debug().Str("player", pl.Name()).Str("move", san).Int("half-moves", g.halfMoves).Msg("move-played")

	g.onturn = g.onturn.Other()
	g.checkOver()
	return nil
}

func (g *Game) isLegal(m *board.Move) bool {
	for _, lm := range g.pos.LegalMoves(g.onturn) {
		if lm.Equals(m) {
			return true
		}
	}
	return false
}

// Play plays turns until the game is over.
func (g *Game) Play(ctx context.Context) (*Result, error) {
	for g.result == nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := g.PlayTurn(ctx); err != nil {
			return nil, err
		}
	}
	return g.result, nil
}
