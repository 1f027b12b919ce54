// Package shell is the interactive front end: a readline loop that sets up
// games against the engine, plays them and inspects positions.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/kestrel-chess/kestrel/board"
	"github.com/kestrel-chess/kestrel/config"
	"github.com/kestrel-chess/kestrel/game"
	"github.com/kestrel-chess/kestrel/persist"
	"github.com/kestrel-chess/kestrel/search"
	"github.com/kestrel-chess/kestrel/ttable"
	"github.com/kestrel-chess/kestrel/turnplayer"
)

var (
	errNoData            = errors.New("no data in line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errNoGame            = errors.New("please start a game first with the `new` command")
	errQuit              = errors.New("quit")
)

type shellcmd struct {
	cmd     string
	args    []string
	options map[string]string
}

type Response struct {
	message string
}

func msg(message string) *Response {
	return &Response{message: message}
}

type ShellController struct {
	l        *readline.Instance
	out      io.Writer
	config   *config.Config
	execPath string

	store *ttable.Store
	db    *persist.DB

	game    *game.Game
	human   *HumanPlayer
	engines [board.NumColors]*turnplayer.EnginePlayer

	lastResult *search.Result
	ctx        context.Context
	cancel     context.CancelFunc

	// cmdMu is held while a command line runs. Cleanup takes it to wait
	// for the command, and with it any search, to finish.
	cmdMu  sync.Mutex
	closed bool
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

// NewShellController sets up the readline instance. db may be nil, in which
// case nothing is saved.
func NewShellController(cfg *config.Config, store *ttable.Store, db *persist.DB, execPath string) *ShellController {
	sc := newController(cfg, store, db, execPath, nil)
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31mkestrel>\033[0m ",
		HistoryFile:     "/tmp/kestrel_readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",
		AutoComplete:    NewShellCompleter(sc),

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	sc.l = l
	sc.out = l.Stderr()
	sc.human = NewHumanPlayer("Me", board.Black, l, sc.out)
	return sc
}

func newController(cfg *config.Config, store *ttable.Store, db *persist.DB, execPath string, out io.Writer) *ShellController {
	ctx, cancel := context.WithCancel(context.Background())
	sc := &ShellController{
		out:      out,
		config:   cfg,
		execPath: execPath,
		store:    store,
		db:       db,
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, c := range []board.Color{board.White, board.Black} {
		sc.engines[c] = turnplayer.NewEnginePlayerFromConfig(cfg, "Kestrel "+c.String(), c, store)
	}
	return sc
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.out)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

// extractFields splits a line into the command, its arguments and its
// -options. Every option takes exactly one value.
func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := map[string]string{}
	for idx := 1; idx < len(fields); idx++ {
		if strings.HasPrefix(fields[idx], "-") && len(fields[idx]) > 1 {
			if idx == len(fields)-1 {
				return nil, errWrongOptionSyntax
			}
			options[fields[idx][1:]] = fields[idx+1]
			idx++
			continue
		}
		args = append(args, fields[idx])
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

func (sc *ShellController) standardModeSwitch(line string, sig chan os.Signal) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	switch cmd.cmd {
	case "exit", "bye":
		sig <- syscall.SIGINT
		return nil, errQuit
	case "help":
		if cmd.args == nil {
			return usage("standard")
		}
		return usageTopic(cmd.args[0])
	case "new":
		return sc.newGame(cmd)
	case "show", "s":
		return sc.show(cmd)
	case "move", "m":
		return sc.move(cmd)
	case "go":
		return sc.engineMove(cmd)
	case "play":
		return sc.play(cmd)
	case "solve":
		return sc.solve(cmd)
	case "eval":
		return sc.eval(cmd)
	case "fen":
		return sc.fen(cmd)
	case "log":
		return sc.moveLog(cmd)
	case "stats":
		return sc.stats(cmd)
	case "history":
		return sc.history(cmd)
	case "set":
		return sc.set(cmd)
	case "script":
		return sc.script(cmd)
	default:
		log.Debug().Msgf("you said: %v", strconv.Quote(line))
		return nil, fmt.Errorf("unrecognized command %q; type `help`", cmd.cmd)
	}
}

// runCommand runs one line under cmdMu. Once Cleanup has run, every line
// is refused.
func (sc *ShellController) runCommand(line string, sig chan os.Signal) (*Response, error) {
	sc.cmdMu.Lock()
	defer sc.cmdMu.Unlock()
	if sc.closed {
		return nil, errQuit
	}
	return sc.standardModeSwitch(line, sig)
}

// Execute runs a single command line, as given on the command line of the
// binary.
func (sc *ShellController) Execute(sig chan os.Signal, line string) {
	resp, err := sc.runCommand(line, sig)
	if err != nil {
		if !errors.Is(err, errQuit) {
			sc.showError(err)
		}
		return
	}
	if resp != nil && resp.message != "" {
		sc.showMessage(resp.message)
	}
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		resp, err := sc.runCommand(line, sig)
		if errors.Is(err, errQuit) {
			break
		}
		if err != nil {
			sc.showError(err)
			continue
		}
		if resp != nil && resp.message != "" {
			sc.showMessage(resp.message)
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}

// GameID is the id of the current game, or empty.
func (sc *ShellController) GameID() string {
	if sc.game == nil {
		return ""
	}
	return sc.game.ID()
}

// MoveLog is the move log of the current game.
func (sc *ShellController) MoveLog() string {
	if sc.game == nil {
		return ""
	}
	return sc.game.MoveLog()
}

// Cleanup stops a running search and returns only once the command that
// started it has returned, so nothing writes to the store afterwards. A
// command waiting for a typed move is unblocked by closing the readline
// instance.
func (sc *ShellController) Cleanup() {
	sc.cancel()
	if sc.l != nil {
		sc.l.Close()
	}
	sc.cmdMu.Lock()
	sc.closed = true
	sc.cmdMu.Unlock()
}
