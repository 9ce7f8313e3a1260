package buffer

import (
	"strings"

	"inlinechange/types"
)

// Extmark is one nvim_buf_set_extmark call
type Extmark struct {
	Line int
	Col  int
	Opts map[string]any
}

// Extmarks converts highlights into extmark calls: a ranged highlight per
// inserted span and an inline virtual text chunk per deletion marker
func Extmarks(h types.Highlights) []Extmark {
	marks := make([]Extmark, 0, len(h.Inserted)+len(h.Deleted))
	for _, sp := range h.Inserted {
		marks = append(marks, Extmark{
			Line: sp.Start.Line,
			Col:  sp.Start.Col,
			Opts: map[string]any{
				"end_row":  sp.End.Line,
				"end_col":  sp.End.Col,
				"hl_group": GroupInserted,
			},
		})
	}
	for _, g := range h.Deleted {
		marks = append(marks, Extmark{
			Line: g.At.Line,
			Col:  g.At.Col,
			Opts: map[string]any{
				"virt_text":     [][]any{{ghostText(g.Text), GroupDeleted}},
				"virt_text_pos": "inline",
			},
		})
	}
	return marks
}

// ghostText flattens removed text onto one line
func ghostText(s string) string {
	return strings.NewReplacer("\r\n", "↵", "\n", "↵", "\t", "    ").Replace(s)
}
