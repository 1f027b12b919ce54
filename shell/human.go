package shell

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/kestrel-chess/kestrel/board"
	"github.com/kestrel-chess/kestrel/notation"
)

var errNoInput = errors.New("no move given")

type lineReader interface {
	Readline() (string, error)
}

// HumanPlayer reads moves typed in algebraic or coordinate notation.
// Moves queued with Queue are used before anything is read.
type HumanPlayer struct {
	name    string
	color   board.Color
	in      lineReader
	out     io.Writer
	pending []string
}

func NewHumanPlayer(name string, color board.Color, in lineReader, out io.Writer) *HumanPlayer {
	return &HumanPlayer{name: name, color: color, in: in, out: out}
}

func (h *HumanPlayer) Name() string       { return h.name }
func (h *HumanPlayer) Color() board.Color { return h.color }

func (h *HumanPlayer) SetColor(c board.Color) {
	h.color = c
}

func (h *HumanPlayer) Queue(text string) {
	h.pending = append(h.pending, text)
}

func (h *HumanPlayer) NextMove(ctx context.Context, pos *board.Position) (*board.Move, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		queued := len(h.pending) > 0
		var text string
		if queued {
			text, h.pending = h.pending[0], h.pending[1:]
		} else {
			if h.in == nil {
				return nil, errNoInput
			}
			io.WriteString(h.out, "Your move ("+h.color.String()+"), or `resign`:\n")
			line, err := h.in.Readline()
			if err != nil {
				return nil, err
			}
			text = line
		}
		text = strings.TrimSpace(text)
		if text == "resign" {
			return nil, nil
		}
		m, err := notation.ParseMove(pos, h.color, text)
		if err == nil {
			return m, nil
		}
		if queued {
			return nil, err
		}
		showMessage("Error: "+err.Error(), h.out)
	}
}
