package shell

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/kestrel-chess/kestrel/board"
	"github.com/kestrel-chess/kestrel/config"
	"github.com/kestrel-chess/kestrel/eval"
	"github.com/kestrel-chess/kestrel/game"
	"github.com/kestrel-chess/kestrel/search"
	"github.com/kestrel-chess/kestrel/turnplayer"
)

const defaultHistoryLength = 10

var settableKeys = []string{
	config.ConfigBaselineDepth, config.ConfigMaxDepth, config.ConfigPlayTime,
	config.ConfigIterativeDeepen, config.ConfigNullMoveOptim, config.ConfigFutilityOptim,
	config.ConfigCounterMoveOptim, config.ConfigTranspositionOpt, config.ConfigMaxHalfMoves,
}

var printer = message.NewPrinter(language.English)

func (sc *ShellController) requireGame() error {
	if sc.game == nil {
		return errNoGame
	}
	return nil
}

// recordFinishedGame saves the move log of the current game before it is
// replaced.
func (sc *ShellController) recordFinishedGame() {
	if sc.game == nil || sc.game.HalfMoves() == 0 || sc.db == nil ||
		!sc.config.GetBool(config.ConfigRecordMoveLog) {
		return
	}
	if err := sc.db.AppendMoveLog(sc.ctx, sc.game.ID(), sc.game.MoveLog()); err != nil {
		log.Err(err).Str("game-id", sc.game.ID()).Msg("could-not-record-move-log")
	}
}

func (sc *ShellController) newGame(cmd *shellcmd) (*Response, error) {
	near, err := board.ParseColor(sc.config.GetString(config.ConfigNearColor))
	if err != nil {
		return nil, err
	}
	humanSide := near.String()
	if h, ok := cmd.options["human"]; ok {
		humanSide = h
	}

	pos := board.NewStandard(near)
	stm := board.White
	if fen, ok := cmd.options["fen"]; ok {
		pos, stm, err = board.FromFEN(fen, near)
		if err != nil {
			return nil, err
		}
	}

	var players [board.NumColors]turnplayer.Player
	for _, c := range []board.Color{board.White, board.Black} {
		players[c] = sc.engines[c]
	}
	if humanSide != "none" {
		hc, err := board.ParseColor(humanSide)
		if err != nil {
			return nil, err
		}
		if sc.human == nil {
			sc.human = NewHumanPlayer("Me", hc, nil, sc.out)
		}
		sc.human.SetColor(hc)
		players[hc] = sc.human
	}

	sc.recordFinishedGame()
	g, err := game.NewGameFrom(pos, stm, players[board.White], players[board.Black],
		game.NewTextDisplay(sc.out, pos))
	if err != nil {
		return nil, err
	}
	g.SetTitle("Kestrel")
	g.SetMaxHalfMoves(sc.config.GetInt(config.ConfigMaxHalfMoves))
	sc.game = g
	log.Info().Str("game-id", g.ID()).Str("human", humanSide).Msg("new-game")
	if humanSide != "none" {
		if err := sc.playEngines(); err != nil {
			return nil, err
		}
	}
	return msg(pos.ToDisplayText() + "\n" + sc.turnSummary()), nil
}

func (sc *ShellController) turnSummary() string {
	if res := sc.game.Result(); res != nil {
		return res.Message() + "\n===== MOVE LOG =====\n" + sc.game.MoveLog()
	}
	stm := sc.game.OnTurn()
	return fmt.Sprintf("%s (%s) to move", sc.game.Player(stm).Name(), stm)
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	if err := sc.requireGame(); err != nil {
		return nil, err
	}
	return msg(sc.game.Position().ToDisplayText() + "\n" + sc.turnSummary()), nil
}

func (sc *ShellController) humanOnTurn() bool {
	return sc.human != nil && sc.game.Player(sc.game.OnTurn()) == turnplayer.Player(sc.human)
}

// playEngines lets the engine move until it is the human's turn or the game
// is over.
func (sc *ShellController) playEngines() error {
	for sc.game.Playing() && !sc.humanOnTurn() {
		if err := sc.game.PlayTurn(sc.ctx); err != nil {
			return err
		}
	}
	return nil
}

func (sc *ShellController) move(cmd *shellcmd) (*Response, error) {
	if err := sc.requireGame(); err != nil {
		return nil, err
	}
	if !sc.game.Playing() {
		return nil, game.ErrGameOver
	}
	if !sc.humanOnTurn() {
		return nil, errors.New("it is the engine's turn; use `go`")
	}
	if len(cmd.args) == 0 {
		return nil, errors.New("usage: move <move>")
	}
	sc.human.Queue(strings.Join(cmd.args, " "))
	if err := sc.game.PlayTurn(sc.ctx); err != nil {
		sc.human.pending = nil
		return nil, err
	}
	if err := sc.playEngines(); err != nil {
		return nil, err
	}
	return msg(sc.turnSummary()), nil
}

func (sc *ShellController) engineMove(cmd *shellcmd) (*Response, error) {
	if err := sc.requireGame(); err != nil {
		return nil, err
	}
	if !sc.game.Playing() {
		return nil, game.ErrGameOver
	}
	if sc.humanOnTurn() {
		return nil, errors.New("it is your turn; use `move`")
	}
	if err := sc.game.PlayTurn(sc.ctx); err != nil {
		return nil, err
	}
	return msg(sc.turnSummary()), nil
}

func (sc *ShellController) play(cmd *shellcmd) (*Response, error) {
	if err := sc.requireGame(); err != nil {
		return nil, err
	}
	if _, err := sc.game.Play(sc.ctx); err != nil {
		return nil, err
	}
	return msg(sc.turnSummary()), nil
}

func (sc *ShellController) solve(cmd *shellcmd) (*Response, error) {
	if err := sc.requireGame(); err != nil {
		return nil, err
	}
	s := new(search.Solver)
	s.Init(sc.store)
	turnplayer.ConfigureSolver(sc.config, s)
	if d, ok := cmd.options["depth"]; ok {
		depth, err := strconv.Atoi(d)
		if err != nil {
			return nil, err
		}
		s.SetBaselineDepth(depth)
	}
	if t, ok := cmd.options["time"]; ok {
		dur, err := time.ParseDuration(t)
		if err != nil {
			return nil, err
		}
		s.SetPlayTime(dur)
	}
	if cmd.options["disable-id"] == "true" {
		s.SetIterativeDeepening(false)
	}
	if cmd.options["log"] == "true" {
		s.SetLogStream(sc.out)
	}
	stm := sc.game.OnTurn()
	res, err := s.Solve(sc.ctx, sc.game.Position(), stm)
	if err != nil {
		return nil, err
	}
	sc.lastResult = res
	if res.Move == nil {
		return msg("No legal moves."), nil
	}
	var sb strings.Builder
	sb.WriteString(res.PV.String())
	printer.Fprintf(&sb, "depth %d, score %d, nodes %d (inner %d, quiescence %d, from table %d), %.2fs\n",
		res.Depth, res.Score, res.Stats.Total(), res.Stats.Inner, res.Stats.Quiescence,
		res.Stats.FromTT, res.Elapsed.Seconds())
	if res.IsMate() {
		sb.WriteString("Forced mate found.\n")
	}
	return msg(sb.String()), nil
}

func (sc *ShellController) eval(cmd *shellcmd) (*Response, error) {
	if err := sc.requireGame(); err != nil {
		return nil, err
	}
	pos := sc.game.Position()
	res := eval.Evaluate(pos)
	return msg(fmt.Sprintf("score %d (white's view), phase %d/%d, endgame %v, material %d/%d",
		res.Score, eval.Phase(pos), eval.MaxPhase, eval.IsEndgame(pos),
		eval.NonPawnMaterial(pos, board.White), eval.NonPawnMaterial(pos, board.Black))), nil
}

func (sc *ShellController) fen(cmd *shellcmd) (*Response, error) {
	if err := sc.requireGame(); err != nil {
		return nil, err
	}
	return msg(sc.game.Position().FEN(sc.game.OnTurn())), nil
}

func (sc *ShellController) moveLog(cmd *shellcmd) (*Response, error) {
	if err := sc.requireGame(); err != nil {
		return nil, err
	}
	return msg(sc.game.MoveLog()), nil
}

type tableStats struct {
	Size      int     `yaml:"size"`
	Capacity  int     `yaml:"capacity"`
	FillRatio float64 `yaml:"fill-ratio"`
	Created   uint64  `yaml:"created"`
	Lookups   uint64  `yaml:"lookups"`
	Hits      uint64  `yaml:"hits"`
	Locked    bool    `yaml:"locked"`
}

type searchStats struct {
	Depth      int     `yaml:"depth"`
	Score      int     `yaml:"score"`
	Inner      uint64  `yaml:"inner-nodes"`
	Quiescence uint64  `yaml:"quiescence-nodes"`
	FromTT     uint64  `yaml:"from-table"`
	Seconds    float64 `yaml:"seconds"`
}

type shellStats struct {
	Table      tableStats   `yaml:"table"`
	LastSearch *searchStats `yaml:"last-search,omitempty"`
}

func (sc *ShellController) stats(cmd *shellcmd) (*Response, error) {
	st := shellStats{Table: tableStats{
		Size:      sc.store.Len(),
		Capacity:  sc.store.Capacity(),
		FillRatio: sc.store.FillRatio(),
		Created:   sc.store.Created(),
		Lookups:   sc.store.Lookups(),
		Hits:      sc.store.Hits(),
		Locked:    sc.store.Locked(),
	}}
	if r := sc.lastResult; r != nil {
		st.LastSearch = &searchStats{
			Depth: r.Depth, Score: r.Score, Inner: r.Stats.Inner,
			Quiescence: r.Stats.Quiescence, FromTT: r.Stats.FromTT,
			Seconds: r.Elapsed.Seconds(),
		}
	}
	out, err := yaml.Marshal(st)
	if err != nil {
		return nil, err
	}
	return msg(string(out)), nil
}

func (sc *ShellController) history(cmd *shellcmd) (*Response, error) {
	if sc.db == nil {
		return nil, errors.New("no database is open")
	}
	n := defaultHistoryLength
	if v, ok := cmd.options["n"]; ok {
		var err error
		if n, err = strconv.Atoi(v); err != nil {
			return nil, err
		}
	}
	recs, err := sc.db.MoveLogs(sc.ctx, n)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return msg("No games recorded yet."), nil
	}
	out, err := yaml.Marshal(recs)
	if err != nil {
		return nil, err
	}
	return msg(string(out)), nil
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		var sb strings.Builder
		for _, k := range settableKeys {
			fmt.Fprintf(&sb, "%s: %v\n", k, sc.config.Get(k))
		}
		return msg(sb.String()), nil
	}
	key := cmd.args[0]
	if len(cmd.args) == 1 {
		return msg(fmt.Sprintf("%s: %v", key, sc.config.Get(key))), nil
	}
	val := cmd.args[1]
	var parsed any
	var err error
	switch key {
	case config.ConfigBaselineDepth, config.ConfigMaxDepth, config.ConfigMaxHalfMoves:
		parsed, err = strconv.Atoi(val)
	case config.ConfigPlayTime:
		parsed, err = time.ParseDuration(val)
	case config.ConfigIterativeDeepen, config.ConfigNullMoveOptim, config.ConfigFutilityOptim,
		config.ConfigCounterMoveOptim, config.ConfigTranspositionOpt:
		parsed, err = strconv.ParseBool(val)
	default:
		return nil, fmt.Errorf("%s is not a setting; try one of %s", key, strings.Join(settableKeys, ", "))
	}
	if err != nil {
		return nil, err
	}
	sc.config.Set(key, parsed)
	for _, e := range sc.engines {
		turnplayer.ConfigureSolver(sc.config, e.Solver())
	}
	if sc.game != nil {
		sc.game.SetMaxHalfMoves(sc.config.GetInt(config.ConfigMaxHalfMoves))
	}
	return msg(fmt.Sprintf("set %s to %v", key, parsed)), nil
}
