package turnplayer

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/kestrel-chess/kestrel/board"
	"github.com/kestrel-chess/kestrel/config"
	"github.com/kestrel-chess/kestrel/ttable"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func legal(p *board.Position, c board.Color, m *board.Move) bool {
	for _, lm := range p.LegalMoves(c) {
		if lm.Equals(m) {
			return true
		}
	}
	return false
}

func TestRandomPlayerPlaysLegalMoves(t *testing.T) {
	is := is.New(t)
	p := board.NewStandard(board.Black)
	white := NewRandomPlayer("w", board.White)
	black := NewRandomPlayer("b", board.Black)
	var _ Player = white
	for i := 0; i < 40; i++ {
		pl := Player(white)
		if i%2 == 1 {
			pl = black
		}
		m, err := pl.NextMove(context.Background(), p)
		is.NoErr(err)
		if m == nil {
			is.True(!p.HasLegalMove(pl.Color()))
			break
		}
		is.True(legal(p, pl.Color(), m))
		p.Apply(m)
	}
}

func TestRandomPlayerResignsWithoutMoves(t *testing.T) {
	is := is.New(t)
	p, _, err := board.FromFEN("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", board.White)
	is.NoErr(err)
	m, err := NewRandomPlayer("b", board.Black).NextMove(context.Background(), p)
	is.NoErr(err)
	is.True(m == nil)
}

func TestEnginePlayerFromConfig(t *testing.T) {
	is := is.New(t)
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigBaselineDepth, 1)
	cfg.Set(config.ConfigIterativeDeepen, false)
	cfg.Set(config.ConfigPlayTime, 100*time.Millisecond)

	pl := NewEnginePlayerFromConfig(cfg, "kestrel", board.White, ttable.New(1000))
	is.Equal(pl.Solver().BaselineDepth(), 1)
	is.Equal(pl.Solver().PlayTime(), 100*time.Millisecond)
	is.Equal(pl.Name(), "kestrel")

	p, _, err := board.FromFEN("4k3/8/8/3q4/8/8/8/3QK3 w - - 0 1", board.White)
	is.NoErr(err)
	m, err := pl.NextMove(context.Background(), p)
	is.NoErr(err)
	is.Equal(m.UCI(board.White), "d1d5")
	is.Equal(pl.LastResult().Depth, 1)
}

func TestEnginePlayerWrapsErrors(t *testing.T) {
	is := is.New(t)
	pl := NewEnginePlayer("kestrel", board.White, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m, err := pl.NextMove(ctx, board.NewStandard(board.White))
	is.True(m == nil)
	is.True(err != nil)
}
