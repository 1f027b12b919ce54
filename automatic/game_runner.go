// Package automatic plays engine games with nobody at the board: the engine
// against itself or against a random mover, many games at once.
package automatic

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/kestrel-chess/kestrel/board"
	"github.com/kestrel-chess/kestrel/config"
	"github.com/kestrel-chess/kestrel/game"
	"github.com/kestrel-chess/kestrel/ttable"
	"github.com/kestrel-chess/kestrel/turnplayer"
)

const (
	EngineOpponent = "engine"
	RandomOpponent = "random"
)

// GameRecord is one finished game, from the point of view of the engine
// under test.
type GameRecord struct {
	GameID      string
	EngineColor board.Color
	Result      game.Result
	MoveLog     string
}

// EngineScore is 1 for an engine win, 0.5 for a draw and 0 for a loss.
func (r *GameRecord) EngineScore() float64 {
	switch r.Result.Outcome {
	case game.Draw:
		return 0.5
	case game.WhiteWins:
		if r.EngineColor == board.White {
			return 1
		}
	case game.BlackWins:
		if r.EngineColor == board.Black {
			return 1
		}
	}
	return 0
}

// GameRunner plays games one after another. Its players keep their
// solvers, and so their counter moves, from game to game.
type GameRunner struct {
	config   *config.Config
	near     board.Color
	engines  [board.NumColors]*turnplayer.EnginePlayer
	opponent [board.NumColors]turnplayer.Player
}

// NewGameRunner sets up players of both colors for the engine and for the
// opponent. All engines share store.
func NewGameRunner(cfg *config.Config, store *ttable.Store, opponent string) (*GameRunner, error) {
	near, err := board.ParseColor(cfg.GetString(config.ConfigNearColor))
	if err != nil {
		return nil, err
	}
	r := &GameRunner{config: cfg, near: near}
	for _, c := range []board.Color{board.White, board.Black} {
		r.engines[c] = turnplayer.NewEnginePlayerFromConfig(cfg, "kestrel-"+c.String(), c, store)
		switch opponent {
		case EngineOpponent:
			r.opponent[c] = turnplayer.NewEnginePlayerFromConfig(cfg, "opponent-"+c.String(), c, store)
		case RandomOpponent:
			r.opponent[c] = turnplayer.NewRandomPlayer("random-"+c.String(), c)
		default:
			return nil, fmt.Errorf("unknown opponent %q; use %s or %s", opponent, EngineOpponent, RandomOpponent)
		}
	}
	return r, nil
}

// PlayGame plays a game from the standard start with the engine on
// engineColor.
func (r *GameRunner) PlayGame(ctx context.Context, engineColor board.Color) (*GameRecord, error) {
	var players [board.NumColors]turnplayer.Player
	players[engineColor] = r.engines[engineColor]
	other := engineColor.Other()
	players[other] = r.opponent[other]

	g, err := game.NewGame(board.NewStandard(r.near), players[board.White], players[board.Black], nil)
	if err != nil {
		return nil, err
	}
	g.SetMaxHalfMoves(r.config.GetInt(config.ConfigMaxHalfMoves))
	res, err := g.Play(ctx)
	if err != nil {
		return nil, fmt.Errorf("game %s: %w", g.ID(), err)
	}
	log.Debug().Str("game-id", g.ID()).Str("engine", engineColor.String()).
		Str("outcome", res.Outcome.String()).Str("reason", res.Reason.String()).
		Int("half-moves", res.HalfMoves).Msg("game-finished")
	return &GameRecord{
		GameID:      g.ID(),
		EngineColor: engineColor,
		Result:      *res,
		MoveLog:     g.MoveLog(),
	}, nil
}
