package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDebug             = "debug"
	ConfigCPUProfile        = "cpu-profile"
	ConfigDataPath          = "data-path"
	ConfigDBFile            = "db-file"
	ConfigBaselineDepth     = "baseline-depth"
	ConfigMaxDepth          = "max-depth"
	ConfigPlayTime          = "play-time"
	ConfigIterativeDeepen   = "iterative-deepening"
	ConfigTTCapacity        = "tt-capacity"
	ConfigTTMemoryFraction  = "tt-memory-fraction"
	ConfigTTMaxLoadRows     = "tt-max-load-rows"
	ConfigSaveTable         = "save-table"
	ConfigRecordMoveLog     = "record-move-log"
	ConfigNearColor         = "near-color"
	ConfigMaxHalfMoves      = "max-half-moves"
	ConfigNullMoveOptim     = "null-move"
	ConfigFutilityOptim     = "futility"
	ConfigCounterMoveOptim  = "counter-move"
	ConfigTranspositionOpt  = "transposition-table"
	ConfigSelfplayGames     = "games"
	ConfigSelfplayThreads   = "threads"
	ConfigSelfplayOpponent  = "opponent"
	defaultEnvPrefix        = "KESTREL"
	defaultDataPath         = "./data"
	defaultDBFile           = "kestrel.db"
	defaultTTMaxLoadRows    = 6000000
	defaultMaxHalfMoves     = 400
	defaultTTMemoryFraction = 0.0
)

// Config wraps a viper instance. Everything reads settings through the
// embedded Get* methods.
type Config struct {
	*viper.Viper
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(ConfigDebug, false)
	v.SetDefault(ConfigCPUProfile, "")
	v.SetDefault(ConfigDataPath, defaultDataPath)
	v.SetDefault(ConfigDBFile, defaultDBFile)
	v.SetDefault(ConfigBaselineDepth, 2)
	v.SetDefault(ConfigMaxDepth, 32)
	v.SetDefault(ConfigPlayTime, 3500*time.Millisecond)
	v.SetDefault(ConfigIterativeDeepen, true)
	v.SetDefault(ConfigTTCapacity, 0)
	v.SetDefault(ConfigTTMemoryFraction, defaultTTMemoryFraction)
	v.SetDefault(ConfigTTMaxLoadRows, defaultTTMaxLoadRows)
	v.SetDefault(ConfigSaveTable, true)
	v.SetDefault(ConfigRecordMoveLog, true)
	v.SetDefault(ConfigNearColor, "black")
	v.SetDefault(ConfigMaxHalfMoves, defaultMaxHalfMoves)
	v.SetDefault(ConfigNullMoveOptim, true)
	v.SetDefault(ConfigFutilityOptim, true)
	v.SetDefault(ConfigCounterMoveOptim, true)
	v.SetDefault(ConfigTranspositionOpt, true)
	v.SetDefault(ConfigSelfplayGames, 10)
	v.SetDefault(ConfigSelfplayThreads, 2)
	v.SetDefault(ConfigSelfplayOpponent, "engine")
	return v
}

// DefaultConfig returns a config holding only the defaults. Meant for tests.
func DefaultConfig() *Config {
	return &Config{newViper()}
}

func flagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("kestrel", pflag.ContinueOnError)
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.String(ConfigCPUProfile, "", "write a cpu profile to this file")
	fs.String(ConfigDataPath, defaultDataPath, "directory holding the database")
	fs.String(ConfigDBFile, defaultDBFile, "database file name, relative to the data path")
	fs.Int(ConfigBaselineDepth, 2, "search depth that always completes")
	fs.Int(ConfigMaxDepth, 32, "deepest iteration of iterative deepening")
	fs.Duration(ConfigPlayTime, 3500*time.Millisecond, "time budget for one move")
	fs.Bool(ConfigIterativeDeepen, true, "deepen iteratively under the time budget")
	fs.Int(ConfigTTCapacity, 0, "transposition table capacity (0 for the default)")
	fs.Float64(ConfigTTMemoryFraction, defaultTTMemoryFraction, "size the table to this fraction of system memory instead")
	fs.Int(ConfigTTMaxLoadRows, defaultTTMaxLoadRows, "maximum table rows loaded at startup")
	fs.Bool(ConfigSaveTable, true, "save the table at shutdown")
	fs.Bool(ConfigRecordMoveLog, true, "append the move log at shutdown")
	fs.String(ConfigNearColor, "black", "the color drawn at the bottom of the board")
	fs.Int(ConfigMaxHalfMoves, defaultMaxHalfMoves, "adjudicate a draw after this many half-moves")
	fs.Bool(ConfigNullMoveOptim, true, "null-move pruning")
	fs.Bool(ConfigFutilityOptim, true, "reverse futility pruning")
	fs.Bool(ConfigCounterMoveOptim, true, "counter-move ordering")
	fs.Bool(ConfigTranspositionOpt, true, "use the transposition table while searching")
	fs.Int(ConfigSelfplayGames, 10, "selfplay: number of games")
	fs.Int(ConfigSelfplayThreads, 2, "selfplay: games played at once")
	fs.String(ConfigSelfplayOpponent, "engine", "selfplay: engine or random")
	return fs
}

// Load reads settings from args, then KESTREL_ environment variables, then
// the defaults. It returns the arguments that were not flags.
func (c *Config) Load(args []string) ([]string, error) {
	c.Viper = newViper()
	fs := flagSet()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := c.BindPFlags(fs); err != nil {
		return nil, err
	}
	c.SetEnvPrefix(defaultEnvPrefix)
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()
	return fs.Args(), nil
}

// AdjustRelativePaths makes a relative data path relative to basepath
// instead of the working directory.
func (c *Config) AdjustRelativePaths(basepath string) {
	p := c.GetString(ConfigDataPath)
	if p == "" || filepath.IsAbs(p) {
		return
	}
	c.Set(ConfigDataPath, filepath.Join(basepath, p))
}

// DBPath is the full path of the database file.
func (c *Config) DBPath() string {
	f := c.GetString(ConfigDBFile)
	if filepath.IsAbs(f) {
		return f
	}
	return filepath.Join(c.GetString(ConfigDataPath), f)
}

// SanitizedSettings is every setting, for logging.
func (c *Config) SanitizedSettings() string {
	var sb strings.Builder
	for _, k := range c.AllKeys() {
		fmt.Fprintf(&sb, "%s=%v ", k, c.Get(k))
	}
	return strings.TrimSpace(sb.String())
}
