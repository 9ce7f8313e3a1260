package text

import (
	"math/rand/v2"
	"strings"
	"testing"

	"inlinechange/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffReconstruction(t *testing.T) {
	tests := []struct {
		name     string
		baseline string
		current  string
	}{
		{"both empty", "", ""},
		{"empty baseline", "", "package main\n"},
		{"empty current", "func f() {}\n", ""},
		{"identical", "line 1\nline 2\n", "line 1\nline 2\n"},
		{"insert middle", "hello world", "hello brave world"},
		{"delete middle", "hello brave world", "hello world"},
		{"replace word", "the quick fox", "the slow fox"},
		{"multi line", "a\nb\nc\nd\n", "a\nB\nc\nnew\nd\n"},
		{"unicode", "naïve café", "naïve little café ☕"},
		{"whitespace only", "a b", "a   b"},
		{"crlf", "one\r\ntwo\r\n", "one\r\n1.5\r\ntwo\r\n"},
		{"invalid byte kept", "ab\xffcd", "ab\xffXcd"},
		{"invalid byte inserted", "abcd", "ab\xfecd"},
		{"invalid byte deleted", "ab\x80\x80cd", "abcd"},
		{"truncated sequence", "caf\xc3", "café \xc3"},
		{"invalid on both sides", "\xff\xfe\n", "\xfe\xff\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops := Diff(tt.baseline, tt.current)
			require.NoError(t, Validate(ops, tt.baseline, tt.current))

			oldText, newText := Reconstruct(ops)
			assert.Equal(t, tt.baseline, oldText, "old side")
			assert.Equal(t, tt.current, newText, "new side")
		})
	}
}

func TestInsertRangesInvalidUTF8(t *testing.T) {
	baseline := "ab\xffcd"
	current := "ab\xffXcd"

	ops := Diff(baseline, current)
	require.NoError(t, Validate(ops, baseline, current))

	ranges := InsertRanges(ops, true)
	assert.Equal(t, []types.Range{{Start: 3, End: 4}}, ranges, "range after a stray byte")
	assert.Equal(t, "X", current[ranges[0].Start:ranges[0].End], "inserted text")

	// A valid multi-byte rune after the stray byte keeps its byte width
	baseline = "\xff é"
	current = "\xff éZ"
	ranges = InsertRanges(Diff(baseline, current), true)
	assert.Equal(t, []types.Range{{Start: 4, End: 5}}, ranges, "range after a two byte rune")
}

// randomEdit applies a few random insertions and deletions to s
func randomEdit(r *rand.Rand, s string, pieces []string) string {
	for n := r.IntN(4); n >= 0; n-- {
		at := 0
		if len(s) > 0 {
			at = r.IntN(len(s) + 1)
		}
		if r.IntN(2) == 0 && at < len(s) {
			end := min(len(s), at+1+r.IntN(8))
			s = s[:at] + s[end:]
			continue
		}
		var b strings.Builder
		for k := r.IntN(6); k >= 0; k-- {
			b.WriteString(pieces[r.IntN(len(pieces))])
		}
		s = s[:at] + b.String() + s[at:]
	}
	return s
}

func TestDiffReconstructionRandom(t *testing.T) {
	pieces := []string{"a", "b", "word", " ", "\t", "\n", "é", "世", "☕", "\xff", "\xc3", "\x80"}
	r := rand.New(rand.NewPCG(42, 7))

	for i := 0; i < 500; i++ {
		var b strings.Builder
		for k := r.IntN(60); k > 0; k-- {
			b.WriteString(pieces[r.IntN(len(pieces))])
		}
		baseline := b.String()
		current := randomEdit(r, baseline, pieces)

		ops := Diff(baseline, current)
		require.NoError(t, Validate(ops, baseline, current), "case %d: %q -> %q", i, baseline, current)

		var inserts []string
		for _, op := range ops {
			if op.Kind == types.OpInsert {
				inserts = append(inserts, op.Text)
			}
		}
		ranges := InsertRanges(ops, true)
		require.Len(t, ranges, len(inserts), "case %d", i)
		for j, rg := range ranges {
			assert.Equal(t, inserts[j], current[rg.Start:rg.End], "case %d range %d", i, j)
		}
	}
}

func FuzzDiff(f *testing.F) {
	f.Add("", "")
	f.Add("hello world", "hello brave world")
	f.Add("ab\xffcd", "ab\xffXcd")
	f.Add("naïve café", "naïve little café ☕")
	f.Add("a\nb\nc\n", "a\nB\nc\n")

	f.Fuzz(func(t *testing.T, baseline, current string) {
		ops := Diff(baseline, current)
		if err := Validate(ops, baseline, current); err != nil {
			t.Fatalf("%q -> %q: %v", baseline, current, err)
		}
		for _, rg := range InsertRanges(ops, true) {
			if rg.Start < 0 || rg.End > len(current) || rg.Start >= rg.End {
				t.Fatalf("%q -> %q: range %v out of bounds", baseline, current, rg)
			}
		}
	})
}

func TestDiffEdgeShapes(t *testing.T) {
	ops := Diff("", "")
	assert.Empty(t, ops, "two empty strings")

	ops = Diff("", "abc")
	require.Len(t, ops, 1)
	assert.Equal(t, types.Op{Kind: types.OpInsert, Text: "abc"}, ops[0], "empty baseline")

	ops = Diff("abc", "")
	require.Len(t, ops, 1)
	assert.Equal(t, types.Op{Kind: types.OpDelete, Text: "abc"}, ops[0], "empty current")

	ops = Diff("same", "same")
	require.Len(t, ops, 1)
	assert.Equal(t, types.OpEqual, ops[0].Kind, "identical")
}

func TestDiffNoOpHasNoRanges(t *testing.T) {
	for _, s := range []string{"", "x", "line 1\nline 2\n", "  \t\n"} {
		ranges := InsertRanges(Diff(s, s), true)
		assert.Empty(t, ranges, "ranges for identical text %q", s)
	}
}

func TestInsertRangesOffsets(t *testing.T) {
	baseline := "hello world"
	current := "hello brave world"

	ops := Diff(baseline, current)
	ranges := InsertRanges(ops, true)
	require.Len(t, ranges, 1)

	got := current[ranges[0].Start:ranges[0].End]
	assert.Equal(t, "brave", strings.TrimSpace(got), "inserted word")
	assert.Equal(t, 6, ranges[0].Len(), "inserted length")

	// Every range must be exactly an insert fragment
	var inserts []string
	for _, op := range ops {
		if op.Kind == types.OpInsert {
			inserts = append(inserts, op.Text)
		}
	}
	require.Len(t, inserts, len(ranges))
	for i, r := range ranges {
		assert.Equal(t, inserts[i], current[r.Start:r.End], "range %d", i)
	}
}

func TestInsertRangesAfterDeletion(t *testing.T) {
	ops := []types.Op{
		{Kind: types.OpEqual, Text: "ab"},
		{Kind: types.OpDelete, Text: "XYZ"},
		{Kind: types.OpInsert, Text: "cd"},
		{Kind: types.OpEqual, Text: "ef"},
		{Kind: types.OpInsert, Text: "g"},
	}

	ranges := InsertRanges(ops, true)

	assert.Equal(t, []types.Range{{Start: 2, End: 4}, {Start: 6, End: 7}}, ranges, "deletions do not shift new offsets")
}

func TestInsertRangesWhitespacePolicy(t *testing.T) {
	baseline := "a b"
	current := "a   b"
	ops := Diff(baseline, current)

	assert.Empty(t, InsertRanges(ops, false), "whitespace excluded")

	ranges := InsertRanges(ops, true)
	require.Len(t, ranges, 1)
	assert.True(t, IsBlank(current[ranges[0].Start:ranges[0].End]), "range covers spaces")
	assert.Equal(t, 2, ranges[0].Len(), "two inserted spaces")
}

func TestInsertRangesMixedWhitespaceKept(t *testing.T) {
	ops := []types.Op{
		{Kind: types.OpEqual, Text: "x"},
		{Kind: types.OpInsert, Text: "\n\t"},
		{Kind: types.OpEqual, Text: "y"},
		{Kind: types.OpInsert, Text: " z "},
	}

	ranges := InsertRanges(ops, false)

	assert.Equal(t, []types.Range{{Start: 4, End: 7}}, ranges, "only the fragment with a letter survives")
}

func TestDeletionPoints(t *testing.T) {
	ops := []types.Op{
		{Kind: types.OpEqual, Text: "ab"},
		{Kind: types.OpDelete, Text: "X"},
		{Kind: types.OpDelete, Text: "Y"},
		{Kind: types.OpInsert, Text: "cd"},
		{Kind: types.OpDelete, Text: "Z"},
	}

	points := DeletionPoints(ops)

	assert.Equal(t, []DeletionPoint{{Offset: 2, Text: "XY"}, {Offset: 4, Text: "Z"}}, points, "deletion points")
}

func TestIsBlank(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"\t\n\r ", true},
		{" ", true},
		{" a ", false},
		{"_", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsBlank(tt.input), "IsBlank(%q)", tt.input)
	}
}

func TestValidateRejectsBrokenOps(t *testing.T) {
	ops := []types.Op{{Kind: types.OpEqual, Text: "abc"}}
	assert.Error(t, Validate(ops, "abd", "abc"), "old side mismatch")
	assert.Error(t, Validate(ops, "abc", "abd"), "new side mismatch")
	assert.Error(t, Validate([]types.Op{{Kind: types.OpInsert}}, "", ""), "empty fragment")
	assert.NoError(t, Validate(ops, "abc", "abc"), "valid ops")
}
