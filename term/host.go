package term

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"inlinechange/config"
	"inlinechange/types"
)

// Editor is the one editor the terminal host shows
const Editor types.EditorID = 1

var languages = map[string]string{
	".go":   "go",
	".lua":  "lua",
	".md":   "markdown",
	".py":   "python",
	".js":   "javascript",
	".ts":   "typescript",
	".rs":   "rust",
	".c":    "c",
	".h":    "c",
	".json": "json",
	".yaml": "yaml",
	".yml":  "yaml",
	".sh":   "shellscript",
	".txt":  "plaintext",
}

// LanguageID guesses a language identifier from a file name
func LanguageID(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if id, ok := languages[ext]; ok {
		return id
	}
	if ext == "" {
		return "plaintext"
	}
	return strings.TrimPrefix(ext, ".")
}

// Host shows a single file. It implements engine.Host.
type Host struct {
	path string
	lang string

	mu     sync.Mutex
	text   string
	hl     types.Highlights
	styles Styles
	status string

	redraw chan struct{}
}

// NewHost reads the file at path
func NewHost(path string) (*Host, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	h := &Host{
		path:   abs,
		lang:   LanguageID(abs),
		styles: DefaultStyles(),
		redraw: make(chan struct{}, 1),
	}
	if err := h.Reload(); err != nil {
		return nil, err
	}
	return h, nil
}

// Path is the absolute path of the shown file
func (h *Host) Path() string { return h.path }

// ID is the document identifier of the shown file
func (h *Host) ID() types.DocumentID { return types.DocumentID(h.path) }

// Reload re-reads the file from disk
func (h *Host) Reload() error {
	data, err := os.ReadFile(h.path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", h.path, err)
	}
	h.mu.Lock()
	h.text = string(data)
	h.mu.Unlock()
	h.invalidate()
	return nil
}

// Snapshot returns the current document
func (h *Host) Snapshot() types.Document {
	h.mu.Lock()
	defer h.mu.Unlock()
	return types.Document{ID: h.ID(), Text: h.text, LanguageID: h.lang}
}

// View is everything needed to draw one frame
type View struct {
	Text   string
	Marks  types.Highlights
	Styles Styles
	Status string
}

// View returns the state to draw
func (h *Host) View() View {
	h.mu.Lock()
	defer h.mu.Unlock()
	return View{Text: h.text, Marks: h.hl, Styles: h.styles, Status: h.status}
}

// Redraw signals when the view has changed
func (h *Host) Redraw() <-chan struct{} { return h.redraw }

func (h *Host) invalidate() {
	select {
	case h.redraw <- struct{}{}:
	default:
	}
}

// Document implements engine.Host
func (h *Host) Document(editor types.EditorID) (types.Document, bool) {
	if editor != Editor {
		return types.Document{}, false
	}
	return h.Snapshot(), true
}

// OpenDocuments implements engine.Host
func (h *Host) OpenDocuments() []types.Document {
	return []types.Document{h.Snapshot()}
}

// VisibleEditors implements engine.Host
func (h *Host) VisibleEditors() []types.EditorID {
	return []types.EditorID{Editor}
}

// EditorsFor implements engine.Host
func (h *Host) EditorsFor(doc types.DocumentID) []types.EditorID {
	if doc != h.ID() {
		return nil
	}
	return []types.EditorID{Editor}
}

// ActiveEditor implements engine.Host
func (h *Host) ActiveEditor() (types.EditorID, bool) {
	return Editor, true
}

// Render implements engine.Host
func (h *Host) Render(editor types.EditorID, hl types.Highlights) error {
	if editor != Editor {
		return fmt.Errorf("unknown editor %d", editor)
	}
	h.mu.Lock()
	h.hl = hl
	h.mu.Unlock()
	h.invalidate()
	return nil
}

// ApplyStyle implements engine.Host
func (h *Host) ApplyStyle(style config.Style) error {
	h.mu.Lock()
	h.styles = NewStyles(style)
	h.mu.Unlock()
	h.invalidate()
	return nil
}

// DisposeStyle implements engine.Host; existing marks disappear with the style
func (h *Host) DisposeStyle() error {
	h.mu.Lock()
	h.styles = DefaultStyles()
	h.hl = types.Highlights{}
	h.mu.Unlock()
	h.invalidate()
	return nil
}

// Notify implements engine.Host by showing msg in the status line
func (h *Host) Notify(msg string) {
	h.mu.Lock()
	h.status = msg
	h.mu.Unlock()
	h.invalidate()
}
