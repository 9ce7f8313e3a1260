package buffer

import (
	"fmt"
	"strings"

	"inlinechange/config"
)

// Highlight groups owned by the plugin
const (
	GroupInserted = "InlineChangeInserted"
	GroupDeleted  = "InlineChangeDeleted"
)

// background the fill is composited over; Neovim cannot blend guibg
var background = config.Color{A: 1}

var underlines = map[string]string{
	"solid":  "underline",
	"dashed": "underdashed",
	"dotted": "underdotted",
	"double": "underdouble",
}

// HighlightCommands returns the :highlight commands that realise style.
// Unparseable tokens fall back to linking DiffAdd.
func HighlightCommands(style config.Style) []string {
	var attrs []string
	if fill, ok := style.Fill(); ok {
		attrs = append(attrs, "guibg="+fill.Over(background).Hex())
	}
	if border, ok := style.Outline(); ok && border.Width > 0 {
		attrs = append(attrs, "guisp="+border.Color.Over(background).Hex())
		attrs = append(attrs, "gui="+underlines[border.Line])
	}

	cmds := []string{"highlight clear " + GroupInserted}
	if len(attrs) == 0 {
		cmds = append(cmds, fmt.Sprintf("highlight default link %s DiffAdd", GroupInserted))
	} else {
		cmds = append(cmds, fmt.Sprintf("highlight %s %s", GroupInserted, strings.Join(attrs, " ")))
	}
	cmds = append(cmds, fmt.Sprintf("highlight default %s gui=strikethrough guifg=#808080", GroupDeleted))
	return cmds
}

// ClearCommands undoes HighlightCommands
func ClearCommands() []string {
	return []string{
		"highlight clear " + GroupInserted,
		"highlight clear " + GroupDeleted,
	}
}
