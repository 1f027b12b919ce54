package shell

import (
	"errors"
	"os"

	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"
	luajson "layeh.com/gopher-json"
)

func getShell(L *lua.LState) *ShellController {
	shell := L.GetGlobal("kestrel_shell")
	ud, ok := shell.(*lua.LUserData)
	if !ok {
		panic("luserdata not right type")
	}
	sc, ok := ud.Value.(*ShellController)
	if !ok {
		panic("shellcontroller not right type")
	}
	return sc
}

// Exec runs one shell command line and returns its output, or nil and an
// error message.
func Exec(L *lua.LState) int {
	line := L.CheckString(1)
	sc := getShell(L)
	// exit is not allowed from scripts; the signal channel is never read.
	sig := make(chan os.Signal, 1)
	r, err := sc.standardModeSwitch(line, sig)
	if errors.Is(err, errQuit) {
		L.Push(lua.LNil)
		L.Push(lua.LString("exit is not allowed in scripts"))
		return 2
	}
	if err != nil {
		log.Err(err).Str("line", line).Msg("error-executing-script-line")
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	out := ""
	if r != nil {
		out = r.message
	}
	L.Push(lua.LString(out))
	return 1
}

// Playing reports whether the current game is still on.
func Playing(L *lua.LState) int {
	sc := getShell(L)
	L.Push(lua.LBool(sc.game != nil && sc.game.Playing()))
	return 1
}

func (sc *ShellController) script(cmd *shellcmd) (*Response, error) {
	if cmd.args == nil {
		return nil, errors.New("need arguments for script")
	}

	filepath := cmd.args[0]

	L := lua.NewState()
	defer L.Close()
	luajson.Preload(L)

	lsc := L.NewUserData()
	lsc.Value = sc

	L.SetGlobal("kestrel_shell", lsc)
	L.SetGlobal("kestrel_exec", L.NewFunction(Exec))
	L.SetGlobal("kestrel_playing", L.NewFunction(Playing))

	if err := L.DoFile(filepath); err != nil {
		log.Err(err).Msg("there was a error")
		return nil, err
	}
	return msg("ran " + filepath), nil
}

