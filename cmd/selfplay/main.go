package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/kestrel-chess/kestrel/automatic"
	"github.com/kestrel-chess/kestrel/config"
	"github.com/kestrel-chess/kestrel/persist"
	"github.com/kestrel-chess/kestrel/stats"
	"github.com/kestrel-chess/kestrel/ttable"
)

const (
	confidence     = 95
	histogramBins  = 10
	shutdownWindow = 20 * time.Second
)

func setupLogging(debug bool) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(output).Level(level).With().Timestamp().Logger()
}

// Usage: selfplay [flags] [csv-log-file]
// With -analyze the file is read back and summarized instead of played.
func main() {
	ex, err := os.Executable()
	if err != nil {
		panic(err)
	}
	cfg := &config.Config{}
	args, err := cfg.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg.AdjustRelativePaths(filepath.Dir(ex))
	setupLogging(cfg.GetBool(config.ConfigDebug))

	if len(args) == 2 && args[0] == "analyze" {
		s, err := automatic.AnalyzeLogFile(args[1])
		if err != nil {
			log.Fatal().Err(err).Msg("analyze-failed")
		}
		printSummary(s)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	capacity := cfg.GetInt(config.ConfigTTCapacity)
	if capacity <= 0 {
		capacity = ttable.CapacityForMemory(cfg.GetFloat64(config.ConfigTTMemoryFraction))
	}
	store := ttable.New(capacity)

	var db *persist.DB
	if cfg.GetBool(config.ConfigSaveTable) || cfg.GetBool(config.ConfigRecordMoveLog) {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath()), 0o755); err != nil {
			log.Err(err).Msg("cannot-create-data-dir")
		} else if db, err = persist.Open(ctx, cfg.DBPath()); err != nil {
			log.Err(err).Msg("database-unavailable")
			db = nil
		} else {
			defer db.Close()
			if _, err := db.LoadTable(ctx, store, cfg.GetInt(config.ConfigTTMaxLoadRows)); err != nil {
				log.Err(err).Msg("table-load-failed-starting-empty")
				store.Reset()
			}
		}
	}

	opts := automatic.OptionsFromConfig(cfg)
	if len(args) > 0 {
		f, err := os.Create(args[0])
		if err != nil {
			log.Fatal().Err(err).Msg("cannot-create-log")
		}
		defer f.Close()
		opts.LogTo = f
	}

	records, err := automatic.PlayGames(ctx, cfg, store, opts)
	if err != nil {
		log.Err(err).Msg("selfplay-failed")
	}
	s := automatic.NewSummary()
	for _, r := range records {
		s.Add(r)
	}
	printSummary(s)

	if db == nil {
		return
	}
	sctx, cancel := context.WithTimeout(context.Background(), shutdownWindow)
	defer cancel()
	if cfg.GetBool(config.ConfigRecordMoveLog) {
		for _, r := range records {
			if err := db.AppendMoveLog(sctx, r.GameID, r.MoveLog); err != nil {
				log.Err(err).Str("game-id", r.GameID).Msg("record-move-log-failed")
			}
		}
	}
	hook := &persist.ShutdownHook{DB: db, Store: store, SaveTable: cfg.GetBool(config.ConfigSaveTable)}
	if err := hook.Run(sctx); err != nil {
		log.Err(err).Msg("shutdown-hook")
	}
}

func printSummary(s *automatic.Summary) {
	out, err := yaml.Marshal(s.Report(confidence))
	if err != nil {
		log.Err(err).Msg("summary")
		return
	}
	fmt.Print(string(out))
	fmt.Println("half-moves per game:")
	if err := stats.FprintHistogram(os.Stdout, s.LengthData, histogramBins); err != nil {
		log.Err(err).Msg("histogram")
	}
}
