package term

import (
	"context"
	"fmt"
	"path/filepath"

	"inlinechange/config"
	"inlinechange/logger"
	"inlinechange/types"

	"github.com/gdamore/tcell/v2"
)

// Engine is the part of the scheduler the terminal drives
type Engine interface {
	TextChanged(doc types.DocumentID, editor types.EditorID)
	DocumentSaved(doc types.Document)
	ConfigChanged()
	Toggle()
	RebaselineActive()
}

// SettingsSource re-reads a settings.json file on every access
type SettingsSource string

// Config implements config.Source. Unreadable files yield the defaults.
func (s SettingsSource) Config() config.Config {
	if s == "" {
		return config.Default()
	}
	cfg, err := config.LoadSettings(string(s))
	if err != nil {
		logger.Warn("settings %s: %v", string(s), err)
	}
	return cfg
}

const help = "s accept  r rebaseline  t toggle  q quit"

// App draws one file with its highlights and maps keys to engine commands
type App struct {
	screen   tcell.Screen
	host     *Host
	eng      Engine
	watcher  *Watcher
	settings string
	tabWidth int

	top int
}

// NewApp wires a screen, host, engine and watcher together.
// settings is the watched settings file, or empty.
func NewApp(screen tcell.Screen, host *Host, eng Engine, watcher *Watcher, settings string) *App {
	if settings != "" {
		if abs, err := filepath.Abs(settings); err == nil {
			settings = abs
		}
	}
	return &App{
		screen:   screen,
		host:     host,
		eng:      eng,
		watcher:  watcher,
		settings: settings,
		tabWidth: 4,
	}
}

// Run draws until ctx ends or the user quits. The screen must be initialised.
func (a *App) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 16)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	var changes <-chan string
	if a.watcher != nil {
		changes = a.watcher.Changes()
	}

	a.draw()
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if a.handleEvent(ev) {
				return nil
			}

		case path, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			a.fileChanged(path)

		case <-a.host.Redraw():
			a.draw()
		}
	}
}

// handleEvent reacts to one terminal event and reports whether to quit
func (a *App) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
		a.draw()
	case *tcell.EventKey:
		return a.handleKey(ev)
	}
	return false
}

func (a *App) handleKey(ev *tcell.EventKey) bool {
	_, height := a.screen.Size()
	page := max(height-2, 1)

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		a.scroll(-1)
	case tcell.KeyDown:
		a.scroll(1)
	case tcell.KeyPgUp:
		a.scroll(-page)
	case tcell.KeyPgDn:
		a.scroll(page)
	case tcell.KeyHome:
		a.top = 0
		a.draw()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case 's':
			a.eng.DocumentSaved(a.host.Snapshot())
		case 'r':
			a.eng.RebaselineActive()
		case 't':
			a.eng.Toggle()
		case 'k':
			a.scroll(-1)
		case 'j':
			a.scroll(1)
		}
	}
	return false
}

func (a *App) fileChanged(path string) {
	switch path {
	case a.host.Path():
		if err := a.host.Reload(); err != nil {
			logger.Warn("%v", err)
			return
		}
		a.eng.TextChanged(a.host.ID(), Editor)
	case a.settings:
		a.eng.ConfigChanged()
	}
}

func (a *App) scroll(delta int) {
	lines := Layout(a.host.View().Text, types.Highlights{}, a.tabWidth)
	a.top = clamp(a.top+delta, 0, len(lines)-1)
	a.draw()
}

func clamp(n, lo, hi int) int {
	if n > hi {
		n = hi
	}
	if n < lo {
		n = lo
	}
	return n
}

// draw paints the visible lines and the status bar
func (a *App) draw() {
	v := a.host.View()
	width, height := a.screen.Size()
	a.screen.Clear()

	lines := Layout(v.Text, v.Marks, a.tabWidth)
	a.top = clamp(a.top, 0, len(lines)-1)
	for row := 0; row < height-1 && a.top+row < len(lines); row++ {
		drawLine(a.screen, row, width, lines[a.top+row], v.Styles)
	}

	status := fmt.Sprintf(" %s  %d/%d  %s", filepath.Base(a.host.Path()), a.top+1, len(lines), help)
	if v.Status != "" {
		status = fmt.Sprintf(" %s  |  %s", v.Status, help)
	}
	drawText(a.screen, height-1, width, status, v.Styles.Status)
	a.screen.Show()
}

func drawLine(s tcell.Screen, row, width int, line Line, styles Styles) {
	x := 0
	for _, c := range line {
		if x+c.Width > width {
			return
		}
		s.SetContent(x, row, c.Rune, c.Comb, styles.For(c.Kind))
		x += c.Width
	}
}

func drawText(s tcell.Screen, row, width int, text string, style tcell.Style) {
	line := appendGhost(nil, text)
	x := 0
	for _, c := range line {
		if x+c.Width > width {
			break
		}
		s.SetContent(x, row, c.Rune, c.Comb, style)
		x += c.Width
	}
	for ; x < width; x++ {
		s.SetContent(x, row, ' ', nil, style)
	}
}
