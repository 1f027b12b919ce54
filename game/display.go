package game

import (
	"fmt"
	"io"
	"strings"

	"github.com/kestrel-chess/kestrel/board"
)

// Display shows a game as it is played.
type Display interface {
	SetTitle(title string)
	// ShowMove is called after a move has been applied to the position.
	ShowMove(from, to board.Square, label string)
}

type NopDisplay struct{}

func (NopDisplay) SetTitle(string)                             {}
func (NopDisplay) ShowMove(board.Square, board.Square, string) {}

// TextDisplay prints the board after every move, with the title and the last
// move beside it.
type TextDisplay struct {
	w     io.Writer
	pos   *board.Position
	title string
}

func NewTextDisplay(w io.Writer, pos *board.Position) *TextDisplay {
	return &TextDisplay{w: w, pos: pos}
}

func (d *TextDisplay) SetTitle(title string) {
	d.title = title
}

func (d *TextDisplay) ShowMove(from, to board.Square, label string) {
	near := d.pos.Near()
	bts := strings.Split(strings.TrimRight(d.pos.ToDisplayText(), "\n"), "\n")
	hpadding := 3
	addText(bts, 1, hpadding, d.title)
	addText(bts, 3, hpadding, fmt.Sprintf("Last move: %s (%s-%s)", label, from.Name(near), to.Name(near)))
	fmt.Fprintln(d.w, strings.Join(bts, "\n"))
}

func splitSubN(s string, n int) []string {
	sub := ""
	subs := []string{}

	runes := []rune(s)
	l := len(runes)
	for i, r := range runes {
		sub = sub + string(r)
		if (i+1)%n == 0 {
			subs = append(subs, sub)
			sub = ""
		} else if (i + 1) == l {
			subs = append(subs, sub)
		}
	}

	return subs
}

func addText(lines []string, row int, hpad int, text string) {
	maxTextSize := 42
	sp := splitSubN(text, maxTextSize)

	for _, chunk := range sp {
		if row >= len(lines) {
			return
		}
		lines[row] = lines[row] + strings.Repeat(" ", hpad) + chunk
		row++
	}
}
