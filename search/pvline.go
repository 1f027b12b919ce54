package search

import (
	"fmt"
	"strings"

	"github.com/kestrel-chess/kestrel/board"
)

// cutReason records why a node returned without searching its children.
type cutReason uint8

const (
	cutNone cutReason = iota
	cutTTExact
	cutTTUpper
	cutTTLower
	cutNullMove
	cutFutility
)

var cutReasonNames = [...]string{"", "tt-exact", "tt-upper", "tt-lower", "null-move", "futility"}

// PVLine is a principal variation as a linked chain: a best move and the
// line of best play after it. Each negamax node owns the line it fills in.
// Credit: the Update/Clear shape follows algerbrex/blunder's search.go.
type PVLine struct {
	move  *board.Move
	next  *PVLine
	score int
	cut   cutReason
	near  board.Color
}

func newPVLine(near board.Color) *PVLine {
	return &PVLine{near: near}
}

// Clear the principal variation line.
func (pv *PVLine) Clear() {
	pv.move = nil
	pv.next = nil
	pv.cut = cutNone
}

// Update the line with a new best move and the line of best play after it.
// The move is copied, since move slices are reused while searching.
func (pv *PVLine) Update(m *board.Move, child *PVLine, score int) {
	mc := *m
	pv.move = &mc
	pv.next = child
	pv.score = score
	pv.cut = cutNone
}

// GetPVMove returns the first move of the line, or nil if it is empty.
func (pv *PVLine) GetPVMove() *board.Move {
	if pv == nil {
		return nil
	}
	return pv.move
}

// Moves flattens the chain.
func (pv *PVLine) Moves() []*board.Move {
	var moves []*board.Move
	for l := pv; l != nil && l.move != nil; l = l.next {
		moves = append(moves, l.move)
	}
	return moves
}

func (pv *PVLine) Score() int {
	return pv.score
}

// tail returns the reason the line stops where it does.
func (pv *PVLine) tail() cutReason {
	l := pv
	for l.next != nil && l.move != nil {
		l = l.next
	}
	return l.cut
}

func (pv *PVLine) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "PV; val %d\n", pv.score)
	for i, m := range pv.Moves() {
		fmt.Fprintf(&sb, "%d: %s\n", i+1, m.UCI(pv.near))
	}
	if c := pv.tail(); c != cutNone {
		fmt.Fprintf(&sb, "(%s)\n", cutReasonNames[c])
	}
	return sb.String()
}

// NLBString is String with no line breaks.
func (pv *PVLine) NLBString() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "PV; val %d; ", pv.score)
	for i, m := range pv.Moves() {
		fmt.Fprintf(&sb, "%d: %s; ", i+1, m.UCI(pv.near))
	}
	if c := pv.tail(); c != cutNone {
		fmt.Fprintf(&sb, "(%s)", cutReasonNames[c])
	}
	return sb.String()
}

// moveText is the line's moves in coordinate notation, space separated.
func (pv *PVLine) moveText() string {
	moves := pv.Moves()
	parts := make([]string, len(moves))
	for i, m := range moves {
		parts[i] = m.UCI(pv.near)
	}
	s := strings.Join(parts, " ")
	if c := pv.tail(); c != cutNone {
		s += " (" + cutReasonNames[c] + ")"
	}
	return s
}
