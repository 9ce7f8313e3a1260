package term

import (
	"strings"
	"unicode/utf8"

	"inlinechange/types"

	"github.com/mattn/go-runewidth"
)

// CellKind tells the renderer how to style a cell
type CellKind int

const (
	Plain CellKind = iota
	Inserted
	Ghost
)

// Cell is one screen column (or two for wide runes)
type Cell struct {
	Rune  rune
	Comb  []rune // Zero-width runes drawn on top
	Width int
	Kind  CellKind
}

// Line is one document line laid out as cells
type Line []Cell

// Width returns the number of screen columns the line occupies
func (l Line) Width() int {
	w := 0
	for _, c := range l {
		w += c.Width
	}
	return w
}

// Layout turns text and its highlights into screen lines. Tabs expand to
// tabWidth stops, deletion markers become inline ghost cells, and an inserted
// line break is shown as a trailing highlighted blank.
func Layout(text string, h types.Highlights, tabWidth int) []Line {
	if tabWidth <= 0 {
		tabWidth = 4
	}
	ghosts := make(map[types.Position][]string)
	for _, g := range h.Deleted {
		ghosts[g.At] = append(ghosts[g.At], g.Text)
	}

	spans := h.Inserted
	k := 0
	inserted := func(p types.Position) bool {
		for k < len(spans) && !before(p, spans[k].End) {
			k++
		}
		return k < len(spans) && !before(p, spans[k].Start)
	}

	src := strings.Split(text, "\n")
	lines := make([]Line, 0, len(src))
	for i, s := range src {
		var line Line
		col := 0
		emitGhosts := func(at int) {
			for _, g := range ghosts[types.Position{Line: i, Col: at}] {
				line = appendGhost(line, g)
			}
		}

		for col < len(s) {
			r, size := utf8.DecodeRuneInString(s[col:])
			// Byte-level diffs can place a marker inside a multi-byte rune
			for b := col; b < col+size; b++ {
				emitGhosts(b)
			}
			if r == '\r' && col+size == len(s) {
				col += size
				continue
			}
			kind := Plain
			if inserted(types.Position{Line: i, Col: col}) {
				kind = Inserted
			}
			line = appendRune(line, r, kind, tabWidth)
			col += size
		}
		emitGhosts(col)
		if i < len(src)-1 && inserted(types.Position{Line: i, Col: col}) {
			line = append(line, Cell{Rune: ' ', Width: 1, Kind: Inserted})
		}
		lines = append(lines, line)
	}
	return lines
}

func before(a, b types.Position) bool {
	return a.Line < b.Line || (a.Line == b.Line && a.Col < b.Col)
}

func appendRune(line Line, r rune, kind CellKind, tabWidth int) Line {
	if r == '\t' {
		n := tabWidth - line.Width()%tabWidth
		for range n {
			line = append(line, Cell{Rune: ' ', Width: 1, Kind: kind})
		}
		return line
	}
	if r < ' ' || r == utf8.RuneError {
		r = '?'
	}
	w := runewidth.RuneWidth(r)
	if w == 0 {
		if len(line) > 0 {
			line[len(line)-1].Comb = append(line[len(line)-1].Comb, r)
		}
		return line
	}
	return append(line, Cell{Rune: r, Width: w, Kind: kind})
}

func appendGhost(line Line, text string) Line {
	for _, r := range text {
		switch r {
		case '\n':
			r = '↵'
		case '\r':
			continue
		case '\t':
			r = ' '
		}
		line = appendRune(line, r, Ghost, 1)
	}
	return line
}
