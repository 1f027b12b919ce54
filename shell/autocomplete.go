package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/kestrel-chess/kestrel/notation"
)

// ShellCompleter provides context-aware autocomplete for shell commands
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

// CommandMetadata holds autocomplete information for a command
type CommandMetadata struct {
	Options []string // Available options for this command (e.g., "-depth", "-time")
	Args    []string // Possible argument values (for non-option arguments)
}

var commandMetadata = map[string]CommandMetadata{
	"new": {
		Options: []string{"-fen", "-human"},
	},
	"solve": {
		Options: []string{"-depth", "-time", "-disable-id", "-log"},
	},
	"history": {
		Options: []string{"-n"},
	},
	"set": {
		Args: settableKeys,
	},
	"help": {
		Args: []string{"new", "move", "go", "play", "solve", "set", "script"},
	},
}

var commandNames = []string{
	"help", "new", "show", "s", "move", "m", "go", "play", "solve", "eval",
	"fen", "log", "stats", "history", "set", "script", "exit",
}

var boolValues = []string{"true", "false"}

// Do implements the readline.AutoComplete interface
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])

	fields, err := shellquote.Split(text)
	if err != nil {
		// An unterminated quote; fall back to plain splitting.
		fields = strings.Fields(text)
	}
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var completions []string

	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = commandNames
	} else {
		cmdName := fields[0]
		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}
		var lastCompleteField string
		if endsWithSpace {
			lastCompleteField = fields[len(fields)-1]
		} else if len(fields) > 1 {
			lastCompleteField = fields[len(fields)-2]
		}

		switch {
		case lastCompleteField == "-human":
			completions = []string{"white", "black", "none"}
		case lastCompleteField == "-disable-id" || lastCompleteField == "-log":
			completions = boolValues
		case cmdName == "move" || cmdName == "m":
			completions = c.legalMoves()
		}

		if completions == nil {
			if metadata, exists := commandMetadata[cmdName]; exists {
				if strings.HasPrefix(prefix, "-") || len(metadata.Args) == 0 {
					completions = metadata.Options
				} else {
					completions = metadata.Args
				}
			}
		}
	}

	var matches [][]rune
	for _, completion := range completions {
		if strings.HasPrefix(completion, prefix) {
			matches = append(matches, []rune(completion[len(prefix):]))
		}
	}
	return matches, len(prefix)
}

// legalMoves is the algebraic form of every move the side to move has.
func (c *ShellCompleter) legalMoves() []string {
	g := c.sc.game
	if g == nil || !g.Playing() {
		return nil
	}
	pos, stm := g.Position(), g.OnTurn()
	var sans []string
	for _, m := range pos.LegalMoves(stm) {
		san, err := notation.SAN(pos, stm, &m)
		if err != nil {
			log.Debug().Err(err).Str("move", m.UCI(pos.Near())).Msg("autocomplete-san")
			continue
		}
		sans = append(sans, san)
	}
	return sans
}
