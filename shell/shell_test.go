package shell

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/kestrel-chess/kestrel/board"
	"github.com/kestrel-chess/kestrel/config"
	"github.com/kestrel-chess/kestrel/persist"
	"github.com/kestrel-chess/kestrel/ttable"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func TestExtractFields(t *testing.T) {
	is := is.New(t)
	type testdata struct {
		line   string
		expCmd *shellcmd
		expErr error
	}
	cases := []testdata{
		{"", nil, errNoData},
		{"new -human white",
			&shellcmd{"new", nil, map[string]string{"human": "white"}},
			nil},
		{"move Nf3",
			&shellcmd{"move", []string{"Nf3"}, map[string]string{}},
			nil},
		{`new -fen "4k3/8/8/8/8/8/8/4K3 w - - 0 1" -human none`,
			&shellcmd{"new", nil,
				map[string]string{"fen": "4k3/8/8/8/8/8/8/4K3 w - - 0 1", "human": "none"}},
			nil,
		},
		{"solve -depth 3 -time",
			nil, errWrongOptionSyntax},
	}
	for _, tc := range cases {
		cmd, err := extractFields(tc.line)
		is.Equal(cmd, tc.expCmd)
		is.Equal(err, tc.expErr)
	}
}

func testController(t *testing.T, db *persist.DB) (*ShellController, *bytes.Buffer) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigBaselineDepth, 1)
	cfg.Set(config.ConfigIterativeDeepen, false)
	var out bytes.Buffer
	sc := newController(cfg, ttable.New(100000), db, "", &out)
	t.Cleanup(sc.Cleanup)
	return sc, &out
}

func run(t *testing.T, sc *ShellController, line string) (*Response, error) {
	t.Helper()
	return sc.standardModeSwitch(line, make(chan os.Signal, 1))
}

func TestCommandsNeedAGame(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t, nil)
	for _, line := range []string{"show", "move e4", "go", "solve", "eval", "fen", "log"} {
		_, err := run(t, sc, line)
		is.Equal(err, errNoGame)
	}
}

func TestHumanAgainstEngine(t *testing.T) {
	is := is.New(t)
	sc, out := testController(t, nil)
	_, err := run(t, sc, "new -human white")
	is.NoErr(err)
	is.Equal(sc.game.OnTurn(), board.White)

	resp, err := run(t, sc, "move e4")
	is.NoErr(err)
	// The engine replied straight away.
	is.Equal(sc.game.HalfMoves(), 2)
	is.Equal(sc.game.OnTurn(), board.White)
	is.True(strings.Contains(resp.message, "Me (white) to move"))
	is.True(strings.Contains(out.String(), "Last move: e4"))

	_, err = run(t, sc, "go")
	is.True(err != nil)
	_, err = run(t, sc, "move Ke3")
	is.True(err != nil)
	is.Equal(sc.game.HalfMoves(), 2)
	is.Equal(len(sc.human.pending), 0)

	resp, err = run(t, sc, "log")
	is.NoErr(err)
	is.True(strings.HasPrefix(resp.message, "1. e4 "))
}

func TestEngineMovesFirstForBlackHuman(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t, nil)
	_, err := run(t, sc, "new -human black")
	is.NoErr(err)
	is.Equal(sc.game.HalfMoves(), 1)
	is.Equal(sc.game.OnTurn(), board.Black)
}

func TestEngineAgainstEngineFromFEN(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t, nil)
	cfg := sc.config
	cfg.Set(config.ConfigNearColor, "white")
	_, err := run(t, sc, `new -human none -fen "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1"`)
	is.NoErr(err)
	is.Equal(sc.game.HalfMoves(), 0)

	resp, err := run(t, sc, "fen")
	is.NoErr(err)
	is.Equal(resp.message, "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1")

	resp, err = run(t, sc, "solve -depth 2")
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "1: a1a8"))
	is.True(strings.Contains(resp.message, "Forced mate found."))
	is.Equal(sc.game.HalfMoves(), 0)

	resp, err = run(t, sc, "set baseline-depth 2")
	is.NoErr(err)
	is.Equal(resp.message, "set baseline-depth to 2")
	is.Equal(sc.engines[board.White].Solver().BaselineDepth(), 2)

	resp, err = run(t, sc, "go")
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "Game Over. White Wins."))
	is.True(strings.Contains(resp.message, "1. Ra8# | "))
	_, err = run(t, sc, "go")
	is.True(err != nil)
}

func TestCleanupWaitsForRunningSearch(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t, nil)
	sc.config.Set(config.ConfigIterativeDeepen, true)
	sc.config.Set(config.ConfigMaxDepth, 32)
	_, err := run(t, sc, "new -human none")
	is.NoErr(err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		sc.runCommand("solve -time 30s", make(chan os.Signal, 1))
	}()
	time.Sleep(100 * time.Millisecond)
	sc.Cleanup()

	// Nothing may write to the store once Cleanup has returned.
	sc.store.Lock()
	n := len(sc.store.Rows())
	time.Sleep(50 * time.Millisecond)
	is.Equal(len(sc.store.Rows()), n)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("solve still running after Cleanup")
	}
	_, err = sc.runCommand("fen", make(chan os.Signal, 1))
	is.Equal(err, errQuit)
}

func TestSetValidates(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t, nil)
	_, err := run(t, sc, "set play-time soon")
	is.True(err != nil)
	_, err = run(t, sc, "set lexicon NWL20")
	is.True(err != nil)
	_, err = run(t, sc, "set play-time 250ms")
	is.NoErr(err)
	is.Equal(sc.engines[board.Black].Solver().PlayTime(), 250*time.Millisecond)
	resp, err := run(t, sc, "set")
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "play-time: 250ms"))
}

func TestStatsIsYAML(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t, nil)
	_, err := run(t, sc, "new -human none")
	is.NoErr(err)
	_, err = run(t, sc, "solve")
	is.NoErr(err)
	resp, err := run(t, sc, "stats")
	is.NoErr(err)
	var st shellStats
	is.NoErr(yaml.Unmarshal([]byte(resp.message), &st))
	is.Equal(st.Table.Capacity, 100000)
	is.True(st.LastSearch != nil)
	is.Equal(st.LastSearch.Depth, 1)
}

func TestHistoryAndRecording(t *testing.T) {
	is := is.New(t)
	db, err := persist.Open(context.Background(), filepath.Join(t.TempDir(), "k.db"))
	is.NoErr(err)
	defer db.Close()
	sc, _ := testController(t, db)

	resp, err := run(t, sc, "history")
	is.NoErr(err)
	is.Equal(resp.message, "No games recorded yet.")

	_, err = run(t, sc, "new -human white")
	is.NoErr(err)
	_, err = run(t, sc, "move d4")
	is.NoErr(err)
	id := sc.GameID()
	_, err = run(t, sc, "new")
	is.NoErr(err)

	resp, err = run(t, sc, "history -n 5")
	is.NoErr(err)
	is.True(strings.Contains(resp.message, id))
	is.True(strings.Contains(resp.message, "1. d4 "))
}

func TestScript(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t, nil)
	dir := t.TempDir()
	path := filepath.Join(dir, "selfplay.lua")
	out := filepath.Join(dir, "out.json")
	src := `
local json = require("json")
kestrel_exec("set max-half-moves 6")
kestrel_exec("new -human none")
local n = 0
while kestrel_playing() do
	kestrel_exec("go")
	n = n + 1
end
local res, err = kestrel_exec("move e4")
local f = io.open("` + out + `", "w")
f:write(json.encode({moves = n, err = err}))
f:close()
`
	is.NoErr(os.WriteFile(path, []byte(src), 0o644))
	_, err := run(t, sc, "script "+path)
	is.NoErr(err)
	is.True(!sc.game.Playing())
	is.True(sc.game.HalfMoves() <= 6)
	data, err := os.ReadFile(out)
	is.NoErr(err)
	is.True(strings.Contains(string(data), `"err":"game is over"`))
}

func TestHelp(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t, nil)
	resp, err := run(t, sc, "help")
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "solve"))
	resp, err = run(t, sc, "help set")
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "max-half-moves"))
	_, err = run(t, sc, "help castling")
	is.True(err != nil)
}

func TestCompleter(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t, nil)
	c := NewShellCompleter(sc)

	matches, n := c.Do([]rune("so"), 2)
	is.Equal(n, 2)
	is.Equal(matches, [][]rune{[]rune("lve")})

	matches, _ = c.Do([]rune("new -human "), 11)
	is.Equal(len(matches), 3)

	_, err := run(t, sc, "new -human white")
	is.NoErr(err)
	matches, n = c.Do([]rune("move N"), 6)
	is.Equal(n, 1)
	is.Equal(len(matches), 4)
}

type fakeLines struct {
	lines []string
}

func (f *fakeLines) Readline() (string, error) {
	l := f.lines[0]
	f.lines = f.lines[1:]
	return l, nil
}

func TestHumanPlayerRetriesBadInput(t *testing.T) {
	is := is.New(t)
	var out bytes.Buffer
	h := NewHumanPlayer("Me", board.White, &fakeLines{[]string{"Ke2", "e9", "Nc3"}}, &out)
	m, err := h.NextMove(context.Background(), board.NewStandard(board.White))
	is.NoErr(err)
	is.Equal(m.UCI(board.White), "b1c3")
	is.Equal(strings.Count(out.String(), "Error:"), 2)

	h = NewHumanPlayer("Me", board.White, &fakeLines{[]string{"resign"}}, &out)
	m, err = h.NextMove(context.Background(), board.NewStandard(board.White))
	is.NoErr(err)
	is.True(m == nil)

	h = NewHumanPlayer("Me", board.White, nil, &out)
	_, err = h.NextMove(context.Background(), board.NewStandard(board.White))
	is.Equal(err, errNoInput)
}
