package text

import (
	"sort"
	"strings"

	"inlinechange/types"
)

// LineIndex maps byte offsets in a text to line/column positions
type LineIndex struct {
	starts []int // Byte offset where each line begins
	size   int
}

// NewLineIndex indexes the line starts of s
func NewLineIndex(s string) *LineIndex {
	starts := make([]int, 1, strings.Count(s, "\n")+1)
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{starts: starts, size: len(s)}
}

// LineCount returns the number of lines, counting a trailing empty line
func (x *LineIndex) LineCount() int { return len(x.starts) }

// Position converts an offset, clamped to the text, into a position
func (x *LineIndex) Position(offset int) types.Position {
	offset = max(0, min(offset, x.size))
	// Last line whose start is <= offset
	line := sort.Search(len(x.starts), func(i int) bool { return x.starts[i] > offset }) - 1
	return types.Position{Line: line, Col: offset - x.starts[line]}
}

// Offset converts a position back into a byte offset, clamping to the text
func (x *LineIndex) Offset(pos types.Position) int {
	if pos.Line < 0 {
		return 0
	}
	if pos.Line >= len(x.starts) {
		return x.size
	}
	return min(x.starts[pos.Line]+max(pos.Col, 0), x.size)
}

// Span translates a byte range into a span
func (x *LineIndex) Span(r types.Range) types.Span {
	return types.Span{Start: x.Position(r.Start), End: x.Position(r.End)}
}

// Spans translates every range
func (x *LineIndex) Spans(ranges []types.Range) []types.Span {
	if len(ranges) == 0 {
		return nil
	}
	spans := make([]types.Span, len(ranges))
	for i, r := range ranges {
		spans[i] = x.Span(r)
	}
	return spans
}

// Ghosts translates deletion points into positioned markers
func (x *LineIndex) Ghosts(points []DeletionPoint) []types.Ghost {
	if len(points) == 0 {
		return nil
	}
	ghosts := make([]types.Ghost, len(points))
	for i, p := range points {
		ghosts[i] = types.Ghost{At: x.Position(p.Offset), Text: p.Text}
	}
	return ghosts
}
