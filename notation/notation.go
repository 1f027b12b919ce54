// Package notation renders and reads moves in standard algebraic notation.
package notation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/notnil/chess"

	"github.com/kestrel-chess/kestrel/board"
)

var ErrIllegalMove = errors.New("illegal move")

func referencePosition(pos *board.Position, stm board.Color) (*chess.Position, error) {
	opt, err := chess.FEN(pos.FEN(stm))
	if err != nil {
		return nil, fmt.Errorf("reading position: %w", err)
	}
	return chess.NewGame(opt).Position(), nil
}

// SAN renders m, a legal move for stm in pos, as "Nf3", "exd5", "O-O", "e8=Q+".
func SAN(pos *board.Position, stm board.Color, m *board.Move) (string, error) {
	ref, err := referencePosition(pos, stm)
	if err != nil {
		return "", err
	}
	rm, err := chess.UCINotation{}.Decode(ref, m.UCI(pos.Near()))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrIllegalMove, m.UCI(pos.Near()))
	}
	return chess.AlgebraicNotation{}.Encode(ref, rm), nil
}

// ParseMove finds the legal move of stm that text names. Both algebraic
// ("Nf3", "O-O") and coordinate ("g1f3") forms are accepted.
func ParseMove(pos *board.Position, stm board.Color, text string) (*board.Move, error) {
	text = strings.TrimSpace(text)
	ref, err := referencePosition(pos, stm)
	if err != nil {
		return nil, err
	}
	rm, err := chess.AlgebraicNotation{}.Decode(ref, text)
	if err != nil {
		rm, err = chess.UCINotation{}.Decode(ref, strings.ToLower(text))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrIllegalMove, text)
	}
	uci := chess.UCINotation{}.Encode(ref, rm)
	for _, m := range pos.LegalMoves(stm) {
		if m.UCI(pos.Near()) == uci {
			return &m, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrIllegalMove, text)
}

// FormatMoveLog numbers the moves of a game in pairs:
// "1. e4 e5 | 2. Nf3 Nc6 | 3. Bb5 | ".
func FormatMoveLog(sans []string) string {
	var sb strings.Builder
	for i := 0; i < len(sans); i += 2 {
		fmt.Fprintf(&sb, "%d. %s", i/2+1, sans[i])
		if i+1 < len(sans) {
			sb.WriteString(" " + sans[i+1])
		}
		sb.WriteString(" | ")
	}
	return sb.String()
}

// Recorder keeps the algebraic log of a game as it is played. Record must
// be called before the move is applied.
type Recorder struct {
	sans []string
}

func (r *Recorder) Record(pos *board.Position, stm board.Color, m *board.Move) error {
	san, err := SAN(pos, stm, m)
	if err != nil {
		return err
	}
	r.sans = append(r.sans, san)
	return nil
}

func (r *Recorder) Moves() []string {
	return r.sans
}

func (r *Recorder) Len() int {
	return len(r.sans)
}

func (r *Recorder) String() string {
	return FormatMoveLog(r.sans)
}
