package term

import (
	"inlinechange/config"

	"github.com/gdamore/tcell/v2"
)

// Styles holds the cell styles for each CellKind
type Styles struct {
	Plain    tcell.Style
	Inserted tcell.Style
	Ghost    tcell.Style
	Status   tcell.Style
}

var black = config.Color{A: 1}

// NewStyles builds cell styles from the configured fill and border.
// Translucent colours are composited over black.
func NewStyles(style config.Style) Styles {
	s := DefaultStyles()

	ins := tcell.StyleDefault
	if fill, ok := style.Fill(); ok {
		ins = ins.Background(rgb(fill.Over(black)))
	}
	if border, ok := style.Outline(); ok && border.Width > 0 {
		ins = ins.Underline(true)
	}
	if ins == tcell.StyleDefault {
		ins = ins.Reverse(true)
	}
	s.Inserted = ins
	return s
}

// DefaultStyles draws nothing highlighted
func DefaultStyles() Styles {
	return Styles{
		Plain:    tcell.StyleDefault,
		Inserted: tcell.StyleDefault,
		Ghost:    tcell.StyleDefault.Foreground(tcell.ColorGray).StrikeThrough(true),
		Status:   tcell.StyleDefault.Reverse(true),
	}
}

// For returns the style for a cell kind
func (s Styles) For(kind CellKind) tcell.Style {
	switch kind {
	case Inserted:
		return s.Inserted
	case Ghost:
		return s.Ghost
	default:
		return s.Plain
	}
}

func rgb(c config.Color) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
