package main

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kestrel-chess/kestrel/config"
	"github.com/kestrel-chess/kestrel/persist"
	"github.com/kestrel-chess/kestrel/shell"
	"github.com/kestrel-chess/kestrel/ttable"
)

var (
	GitVersion string
)

const (
	GracefulShutdownTimeout = 20 * time.Second
)

//go:embed kestrel.txt
var kestrelbanner string

func setupLogging(cfg *config.Config) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	output.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("%s", i)
	}
	output.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("%s:", i)
	}

	var logger zerolog.Logger
	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		logger = zerolog.New(output).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		logger = zerolog.New(output).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	}
	zerolog.DefaultContextLogger = &logger
	log.Logger = logger
	logger.Debug().Msg("Debug logging is on")
}

func newStore(cfg *config.Config) *ttable.Store {
	capacity := cfg.GetInt(config.ConfigTTCapacity)
	if capacity <= 0 {
		capacity = ttable.CapacityForMemory(cfg.GetFloat64(config.ConfigTTMemoryFraction))
	}
	return ttable.New(capacity)
}

// openDB opens the database and seeds the store from it. A database that
// can't be opened or read leaves the engine running with an empty table.
func openDB(ctx context.Context, cfg *config.Config, store *ttable.Store) *persist.DB {
	path := cfg.DBPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Err(err).Str("path", path).Msg("cannot-create-data-dir")
		return nil
	}
	db, err := persist.Open(ctx, path)
	if err != nil {
		log.Err(err).Msg("database-unavailable")
		return nil
	}
	n, err := db.LoadTable(ctx, store, cfg.GetInt(config.ConfigTTMaxLoadRows))
	if err != nil {
		log.Err(err).Msg("table-load-failed-starting-empty")
		store.Reset()
		return db
	}
	log.Info().Int("rows", n).Str("path", path).Msg("loaded-table")
	return db
}

func main() {

	// Relative data paths are relative to the executable.
	ex, err := os.Executable()
	if err != nil {
		panic(err)
	}
	exPath := filepath.Dir(ex)
	fmt.Println(kestrelbanner)
	fmt.Println(GitVersion)

	cfg := &config.Config{}
	args, err := cfg.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg.AdjustRelativePaths(exPath)
	setupLogging(cfg)

	log.Info().Msgf("executable path: %v", exPath)
	log.Info().Msgf("Loaded config: %v", cfg.SanitizedSettings())

	if cfg.GetString(config.ConfigCPUProfile) != "" {
		f, err := os.Create(cfg.GetString(config.ConfigCPUProfile))
		if err != nil {
			panic("could not create CPU profile: " + err.Error())
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			panic("could not start CPU profile: " + err.Error())
		}
		defer pprof.StopCPUProfile()
	}

	store := newStore(cfg)
	db := openDB(context.Background(), cfg, store)
	if db != nil {
		defer db.Close()
	}

	idleConnsClosed := make(chan struct{})
	sig := make(chan os.Signal, 2)
	go func() {
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info().Msg("got quit signal...")
		close(idleConnsClosed)
	}()

	argsLine := strings.TrimSpace(strings.Join(args, " "))

	sc := shell.NewShellController(cfg, store, db, exPath)
	if argsLine == "" {
		go sc.Loop(sig)
	} else {
		sc.Execute(sig, argsLine)
		sig <- syscall.SIGINT
	}

	log.Info().Msg("started loop")

	<-idleConnsClosed

	sc.Cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)
	defer cancel()
	hook := &persist.ShutdownHook{
		DB:            db,
		Store:         store,
		SaveTable:     cfg.GetBool(config.ConfigSaveTable),
		RecordMoveLog: cfg.GetBool(config.ConfigRecordMoveLog),
		GameID:        sc.GameID(),
		MoveLog:       sc.MoveLog,
	}
	if err := hook.Run(ctx); err != nil {
		log.Err(err).Msg("shutdown-hook")
	}
	log.Info().Msg("gracefully shutting down")
}
