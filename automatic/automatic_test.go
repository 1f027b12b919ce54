package automatic

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/kestrel-chess/kestrel/board"
	"github.com/kestrel-chess/kestrel/config"
	"github.com/kestrel-chess/kestrel/game"
	"github.com/kestrel-chess/kestrel/ttable"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func quickConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigBaselineDepth, 1)
	cfg.Set(config.ConfigIterativeDeepen, false)
	cfg.Set(config.ConfigMaxHalfMoves, 16)
	return cfg
}

func TestEngineScore(t *testing.T) {
	is := is.New(t)
	rec := &GameRecord{EngineColor: board.Black, Result: game.Result{Outcome: game.BlackWins}}
	is.Equal(rec.EngineScore(), 1.0)
	rec.EngineColor = board.White
	is.Equal(rec.EngineScore(), 0.0)
	rec.Result.Outcome = game.Draw
	is.Equal(rec.EngineScore(), 0.5)
}

func TestUnknownOpponent(t *testing.T) {
	is := is.New(t)
	_, err := NewGameRunner(quickConfig(), ttable.New(1000), "grandmaster")
	is.True(err != nil)
}

func TestBadOpponentStartsNoWorkers(t *testing.T) {
	is := is.New(t)
	_, err := PlayGames(context.Background(), quickConfig(), ttable.New(1000), Options{
		Games: 4, Threads: 3, Opponent: "grandmaster",
	})
	is.True(err != nil)
	is.Equal(IsPlaying.Value(), int64(0))

	// A later batch is not blocked.
	recs, err := PlayGames(context.Background(), quickConfig(), ttable.New(100000), Options{
		Games: 1, Threads: 1, Opponent: RandomOpponent,
	})
	is.NoErr(err)
	is.Equal(len(recs), 1)
}

func TestPlayGamesAgainstRandom(t *testing.T) {
	is := is.New(t)
	var csvLog bytes.Buffer
	store := ttable.New(100000)
	recs, err := PlayGames(context.Background(), quickConfig(), store, Options{
		Games: 4, Threads: 2, Opponent: RandomOpponent, LogTo: &csvLog,
	})
	is.NoErr(err)
	is.Equal(len(recs), 4)
	is.Equal(CVCCounter.Value(), int64(4))
	is.Equal(IsPlaying.Value(), int64(0))

	colors := map[board.Color]int{}
	live := NewSummary()
	for _, r := range recs {
		is.True(r.Result.HalfMoves <= 16)
		is.True(r.GameID != "")
		colors[r.EngineColor]++
		live.Add(r)
	}
	is.Equal(colors[board.White], 2)
	is.Equal(colors[board.Black], 2)
	is.True(store.Len() > 0)

	is.Equal(strings.Count(csvLog.String(), "\n"), 5)
	parsed, err := analyzeLog(&csvLog)
	is.NoErr(err)
	is.Equal(parsed.Report(95), live.Report(95))
}

func TestEngineSelfplayRepeats(t *testing.T) {
	is := is.New(t)
	cfg := quickConfig()
	cfg.Set(config.ConfigTranspositionOpt, false)
	recs, err := PlayGames(context.Background(), cfg, ttable.New(100000), Options{
		Games: 2, Threads: 1, Opponent: EngineOpponent,
	})
	is.NoErr(err)
	s := NewSummary()
	for _, r := range recs {
		s.Add(r)
	}
	r := s.Report(95)
	is.Equal(r.Games, 2)
	// Every solver starts fresh and the table is off, so both games are the
	// same game with the colors swapped.
	is.Equal(r.Wins, r.Losses)
	is.Equal(r.DistinctGames, 1)
}

func TestCancelledBeforeStart(t *testing.T) {
	is := is.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	recs, err := PlayGames(ctx, quickConfig(), ttable.New(1000), Options{
		Games: 10, Threads: 2, Opponent: RandomOpponent,
	})
	is.NoErr(err)
	is.True(len(recs) < 10)
}

func TestAnalyzeLogRejectsGarbage(t *testing.T) {
	is := is.New(t)
	_, err := analyzeLog(strings.NewReader("g1,white,won,checkmate,10,1. e4 | \n"))
	is.True(err != nil)
}
