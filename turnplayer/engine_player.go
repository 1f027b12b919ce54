package turnplayer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/kestrel-chess/kestrel/board"
	"github.com/kestrel-chess/kestrel/config"
	"github.com/kestrel-chess/kestrel/search"
	"github.com/kestrel-chess/kestrel/ttable"
)

// EnginePlayer plays the moves the search finds.
type EnginePlayer struct {
	name   string
	color  board.Color
	solver *search.Solver
	last   *search.Result
}

func NewEnginePlayer(name string, color board.Color, store *ttable.Store) *EnginePlayer {
	s := new(search.Solver)
	s.Init(store)
	return &EnginePlayer{name: name, color: color, solver: s}
}

// NewEnginePlayerFromConfig applies the search settings of cfg.
func NewEnginePlayerFromConfig(cfg *config.Config, name string, color board.Color, store *ttable.Store) *EnginePlayer {
	p := NewEnginePlayer(name, color, store)
	ConfigureSolver(cfg, p.solver)
	log.Debug().Str("player", name).Str("color", color.String()).
		Int("baseline-depth", p.solver.BaselineDepth()).Dur("play-time", p.solver.PlayTime()).
		Msg("engine-player-configured")
	return p
}

// ConfigureSolver copies the search settings of cfg onto s.
func ConfigureSolver(cfg *config.Config, s *search.Solver) {
	s.SetBaselineDepth(cfg.GetInt(config.ConfigBaselineDepth))
	s.SetMaxDepth(cfg.GetInt(config.ConfigMaxDepth))
	s.SetPlayTime(cfg.GetDuration(config.ConfigPlayTime))
	s.SetIterativeDeepening(cfg.GetBool(config.ConfigIterativeDeepen))
	s.SetNullMoveOptim(cfg.GetBool(config.ConfigNullMoveOptim))
	s.SetFutilityOptim(cfg.GetBool(config.ConfigFutilityOptim))
	s.SetCounterMoveOptim(cfg.GetBool(config.ConfigCounterMoveOptim))
	s.SetTranspositionTableOptim(cfg.GetBool(config.ConfigTranspositionOpt))
}

func (p *EnginePlayer) Name() string       { return p.name }
func (p *EnginePlayer) Color() board.Color { return p.color }

// Solver gives access to the search settings.
func (p *EnginePlayer) Solver() *search.Solver { return p.solver }

// LastResult is the result of the most recent search, or nil.
func (p *EnginePlayer) LastResult() *search.Result { return p.last }

func (p *EnginePlayer) NextMove(ctx context.Context, pos *board.Position) (*board.Move, error) {
	res, err := p.solver.Solve(ctx, pos, p.color)
	if err != nil {
		return nil, fmt.Errorf("%s: search: %w", p.name, err)
	}
	p.last = res
	return res.Move, nil
}
