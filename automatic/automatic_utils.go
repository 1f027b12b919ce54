package automatic

import (
	"context"
	"encoding/csv"
	"errors"
	"expvar"
	"io"
	"strconv"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/kestrel-chess/kestrel/board"
	"github.com/kestrel-chess/kestrel/config"
	"github.com/kestrel-chess/kestrel/ttable"
)

var (
	CVCCounter *expvar.Int
	IsPlaying  *expvar.Int
)

func init() {
	CVCCounter = expvar.NewInt("cvcCounter")
	IsPlaying = expvar.NewInt("isPlaying")
}

var csvHeader = []string{"gameID", "engineColor", "outcome", "reason", "halfMoves", "moveLog"}

// Options for a batch of games.
type Options struct {
	Games    int
	Threads  int
	Opponent string
	// LogTo receives one CSV row per game. It may be nil.
	LogTo io.Writer
}

// OptionsFromConfig reads the selfplay settings.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Games:    cfg.GetInt(config.ConfigSelfplayGames),
		Threads:  cfg.GetInt(config.ConfigSelfplayThreads),
		Opponent: cfg.GetString(config.ConfigSelfplayOpponent),
	}
}

type job struct {
	idx int
}

// PlayGames plays opts.Games games on opts.Threads goroutines and returns
// them in the order they finished. The engine takes white in even-numbered
// games and black in odd ones. Cancelling ctx stops queueing games; games
// already finished are still returned.
func PlayGames(ctx context.Context, cfg *config.Config, store *ttable.Store, opts Options) ([]*GameRecord, error) {
	if IsPlaying.Value() > 0 {
		return nil, errors.New("games are already being played, please wait till complete")
	}
	threads := max(opts.Threads, 1)
	if threads > 1 {
		store.SetMultiThreadedMode()
		defer store.SetSingleThreadedMode()
	}
	log.Info().Int("games", opts.Games).Int("threads", threads).Str("opponent", opts.Opponent).
		Msg("starting-selfplay")

	runners := make([]*GameRunner, threads)
	for i := range runners {
		r, err := NewGameRunner(cfg, store, opts.Opponent)
		if err != nil {
			return nil, err
		}
		runners[i] = r
	}

	CVCCounter.Set(0)
	jobs := make(chan job, 100)
	records := make(chan *GameRecord, 100)

	g, gctx := errgroup.WithContext(ctx)
	for _, r := range runners {
		r := r
		g.Go(func() error {
			IsPlaying.Add(1)
			defer IsPlaying.Add(-1)
			for j := range jobs {
				color := board.White
				if j.idx%2 == 1 {
					color = board.Black
				}
				rec, err := r.PlayGame(gctx, color)
				if err != nil {
					return err
				}
				records <- rec
				CVCCounter.Add(1)
			}
			return nil
		})
	}

	go func() {
	gameLoop:
		for i := 0; i < opts.Games; i++ {
			select {
			case jobs <- job{idx: i}:
			case <-gctx.Done():
				log.Info().Msg("Got stop signal, exiting soon...")
				break gameLoop
			}
		}
		close(jobs)
	}()

	var werr error
	done := make(chan struct{})
	go func() {
		werr = g.Wait()
		close(records)
		close(done)
	}()

	var out []*GameRecord
	var w *csv.Writer
	if opts.LogTo != nil {
		w = csv.NewWriter(opts.LogTo)
		w.Write(csvHeader)
	}
	for rec := range records {
		out = append(out, rec)
		if w != nil {
			w.Write([]string{rec.GameID, rec.EngineColor.String(), rec.Result.Outcome.String(),
				rec.Result.Reason.String(), strconv.Itoa(rec.Result.HalfMoves), rec.MoveLog})
		}
	}
	<-done
	if w != nil {
		w.Flush()
		if err := w.Error(); err != nil {
			log.Err(err).Msg("selfplay-log-write-failed")
		}
	}
	log.Info().Int("finished", len(out)).Msg("All games finished.")
	if werr != nil && ctx.Err() != nil {
		// Stopped from outside; what finished is still good.
		return out, nil
	}
	return out, werr
}
