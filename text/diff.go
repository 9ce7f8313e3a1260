package text

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"inlinechange/types"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Diff computes the operations that turn baseline into current.
// The result is cleaned up semantically so edits land on word boundaries where an
// equivalent alignment exists. Concatenating the Equal+Delete fragments yields
// baseline and concatenating the Equal+Insert fragments yields current.
//
// Text that is not valid UTF-8 is diffed byte by byte so fragments stay exact
// slices of the input.
func Diff(baseline, current string) []types.Op {
	dmp := diffmatchpatch.New()
	if utf8.ValidString(baseline) && utf8.ValidString(current) {
		diffs := dmp.DiffMain(baseline, current, true)
		return fromDiffs(dmp.DiffCleanupSemantic(diffs), nil)
	}
	diffs := dmp.DiffMainRunes(byteRunes(baseline), byteRunes(current), true)
	return fromDiffs(dmp.DiffCleanupSemantic(diffs), runeBytes)
}

// byteRunes maps every byte to the rune with the same value
func byteRunes(s string) []rune {
	rs := make([]rune, len(s))
	for i := 0; i < len(s); i++ {
		rs[i] = rune(s[i])
	}
	return rs
}

// runeBytes undoes byteRunes on a diff fragment
func runeBytes(s string) string {
	b := make([]byte, 0, len(s))
	for _, r := range s {
		b = append(b, byte(r))
	}
	return string(b)
}

// fromDiffs converts diffmatchpatch diffs, dropping empty fragments.
// decode, when set, is applied to every fragment.
func fromDiffs(diffs []diffmatchpatch.Diff, decode func(string) string) []types.Op {
	if len(diffs) == 0 {
		return nil
	}
	ops := make([]types.Op, 0, len(diffs))
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		text := d.Text
		if decode != nil {
			text = decode(text)
		}
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			ops = append(ops, types.Op{Kind: types.OpEqual, Text: text})
		case diffmatchpatch.DiffInsert:
			ops = append(ops, types.Op{Kind: types.OpInsert, Text: text})
		case diffmatchpatch.DiffDelete:
			ops = append(ops, types.Op{Kind: types.OpDelete, Text: text})
		}
	}
	return ops
}

// Reconstruct rebuilds both sides of a diff from its operations
func Reconstruct(ops []types.Op) (oldText, newText string) {
	var oldB, newB strings.Builder
	for _, op := range ops {
		switch op.Kind {
		case types.OpEqual:
			oldB.WriteString(op.Text)
			newB.WriteString(op.Text)
		case types.OpDelete:
			oldB.WriteString(op.Text)
		case types.OpInsert:
			newB.WriteString(op.Text)
		}
	}
	return oldB.String(), newB.String()
}

// Validate checks that ops faithfully transform oldText into newText
func Validate(ops []types.Op, oldText, newText string) error {
	for i, op := range ops {
		if op.Text == "" {
			return fmt.Errorf("op[%d]: empty %s fragment", i, op.Kind)
		}
	}
	gotOld, gotNew := Reconstruct(ops)
	if gotOld != oldText {
		return fmt.Errorf("equal+delete fragments do not rebuild the old text (%d bytes, want %d)", len(gotOld), len(oldText))
	}
	if gotNew != newText {
		return fmt.Errorf("equal+insert fragments do not rebuild the new text (%d bytes, want %d)", len(gotNew), len(newText))
	}
	return nil
}

// InsertRanges walks ops and returns the byte ranges of inserted text in the new text.
// Whitespace-only insertions are skipped unless includeWhitespace is set.
// Deletions only advance the old offset: they have no extent in the new text.
func InsertRanges(ops []types.Op, includeWhitespace bool) []types.Range {
	var ranges []types.Range
	oldOffset, newOffset := 0, 0
	for _, op := range ops {
		n := len(op.Text)
		switch op.Kind {
		case types.OpEqual:
			oldOffset += n
			newOffset += n
		case types.OpInsert:
			if includeWhitespace || !IsBlank(op.Text) {
				ranges = append(ranges, types.Range{Start: newOffset, End: newOffset + n})
			}
			newOffset += n
		case types.OpDelete:
			oldOffset += n
		}
	}
	return ranges
}

// DeletionPoint is a zero-width location in the new text where baseline text was removed
type DeletionPoint struct {
	Offset int
	Text   string
}

// DeletionPoints returns where each deletion sits in new-text coordinates.
// Adjacent deletions at the same offset are merged.
func DeletionPoints(ops []types.Op) []DeletionPoint {
	var points []DeletionPoint
	newOffset := 0
	for _, op := range ops {
		switch op.Kind {
		case types.OpEqual, types.OpInsert:
			newOffset += len(op.Text)
		case types.OpDelete:
			if last := len(points) - 1; last >= 0 && points[last].Offset == newOffset {
				points[last].Text += op.Text
				continue
			}
			points = append(points, DeletionPoint{Offset: newOffset, Text: op.Text})
		}
	}
	return points
}

// IsBlank reports whether s has no non-whitespace character
func IsBlank(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) }) < 0
}
