package buffer

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"inlinechange/config"
	"inlinechange/logger"
	"inlinechange/types"

	"github.com/neovim/go-client/nvim"
)

// ConfigVar is the global Lua/Vimscript table holding the settings
const ConfigVar = "inline_change_highlighter"

const (
	namespace = "inline_change_highlighter"
	docPrefix = "buffer://"
)

// Host renders highlights into Neovim through msgpack-RPC.
// It implements engine.Host and config.Source.
type Host struct {
	v  *nvim.Nvim
	ns int
}

// New creates the extmark namespace. v must already be serving.
func New(v *nvim.Nvim) (*Host, error) {
	ns, err := v.CreateNamespace(namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create namespace: %w", err)
	}
	return &Host{v: v, ns: ns}, nil
}

// DocumentID is the stable key for a buffer
func DocumentID(buf nvim.Buffer) types.DocumentID {
	return types.DocumentID(docPrefix + strconv.Itoa(int(buf)))
}

// BufferOf parses a DocumentID produced by DocumentID
func BufferOf(id types.DocumentID) (nvim.Buffer, bool) {
	s, ok := strings.CutPrefix(string(id), docPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return nvim.Buffer(n), true
}

// Install runs the autocmd and user command definitions for this channel
func (h *Host) Install() error {
	return h.commands(Autocmds(h.v.ChannelID()))
}

// Uninstall removes what Install defined
func (h *Host) Uninstall() error {
	return h.commands(RemoveAutocmds())
}

func (h *Host) commands(cmds []string) error {
	b := h.v.NewBatch()
	for _, cmd := range cmds {
		b.Command(cmd)
	}
	if err := b.Execute(); err != nil {
		return fmt.Errorf("failed to run commands: %w", err)
	}
	return nil
}

// ReadBuffer snapshots a buffer's text and filetype
func (h *Host) ReadBuffer(buf nvim.Buffer) (types.Document, error) {
	lines, err := h.v.BufferLines(buf, 0, -1, false)
	if err != nil {
		return types.Document{}, fmt.Errorf("failed to read buffer %d: %w", buf, err)
	}
	var ft string
	if err := h.v.Call("getbufvar", &ft, int(buf), "&filetype"); err != nil {
		return types.Document{}, fmt.Errorf("failed to read filetype of buffer %d: %w", buf, err)
	}
	return types.Document{
		ID:         DocumentID(buf),
		Text:       string(bytes.Join(lines, []byte("\n"))),
		LanguageID: ft,
	}, nil
}

// Document implements engine.Host
func (h *Host) Document(editor types.EditorID) (types.Document, bool) {
	buf, err := h.v.WindowBuffer(nvim.Window(editor))
	if err != nil {
		logger.Debug("buffer: window %d: %v", editor, err)
		return types.Document{}, false
	}
	doc, err := h.ReadBuffer(buf)
	if err != nil {
		logger.Debug("buffer: %v", err)
		return types.Document{}, false
	}
	return doc, true
}

// OpenDocuments implements engine.Host; only loaded, normal buffers count
func (h *Host) OpenDocuments() []types.Document {
	bufs, err := h.v.Buffers()
	if err != nil {
		logger.Error("failed to list buffers: %v", err)
		return nil
	}
	var docs []types.Document
	for _, buf := range bufs {
		loaded, err := h.v.IsBufferLoaded(buf)
		if err != nil || !loaded {
			continue
		}
		var bt string
		if err := h.v.Call("getbufvar", &bt, int(buf), "&buftype"); err != nil || bt != "" {
			continue
		}
		doc, err := h.ReadBuffer(buf)
		if err != nil {
			logger.Debug("buffer: %v", err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs
}

// VisibleEditors implements engine.Host: the windows of the current tabpage
func (h *Host) VisibleEditors() []types.EditorID {
	tab, err := h.v.CurrentTabpage()
	if err != nil {
		logger.Error("failed to get tabpage: %v", err)
		return nil
	}
	wins, err := h.v.TabpageWindows(tab)
	if err != nil {
		logger.Error("failed to list windows: %v", err)
		return nil
	}
	editors := make([]types.EditorID, len(wins))
	for i, w := range wins {
		editors[i] = types.EditorID(w)
	}
	return editors
}

// EditorsFor implements engine.Host
func (h *Host) EditorsFor(doc types.DocumentID) []types.EditorID {
	want, ok := BufferOf(doc)
	if !ok {
		return nil
	}
	var editors []types.EditorID
	for _, editor := range h.VisibleEditors() {
		buf, err := h.v.WindowBuffer(nvim.Window(editor))
		if err == nil && buf == want {
			editors = append(editors, editor)
		}
	}
	return editors
}

// ActiveEditor implements engine.Host
func (h *Host) ActiveEditor() (types.EditorID, bool) {
	w, err := h.v.CurrentWindow()
	if err != nil {
		logger.Debug("buffer: current window: %v", err)
		return 0, false
	}
	return types.EditorID(w), true
}

// Render implements engine.Host. Marks live on the window's buffer.
func (h *Host) Render(editor types.EditorID, hl types.Highlights) error {
	buf, err := h.v.WindowBuffer(nvim.Window(editor))
	if err != nil {
		return fmt.Errorf("failed to get buffer of window %d: %w", editor, err)
	}

	marks := Extmarks(hl)
	ids := make([]int, len(marks))
	b := h.v.NewBatch()
	b.ClearBufferNamespace(buf, h.ns, 0, -1)
	for i, m := range marks {
		b.SetBufferExtmark(buf, h.ns, m.Line, m.Col, m.Opts, &ids[i])
	}
	if err := b.Execute(); err != nil {
		return fmt.Errorf("failed to set extmarks in buffer %d: %w", buf, err)
	}
	return nil
}

// ApplyStyle implements engine.Host
func (h *Host) ApplyStyle(style config.Style) error {
	return h.commands(HighlightCommands(style))
}

// DisposeStyle implements engine.Host: groups are cleared and every mark removed
func (h *Host) DisposeStyle() error {
	bufs, err := h.v.Buffers()
	if err != nil {
		return fmt.Errorf("failed to list buffers: %w", err)
	}
	b := h.v.NewBatch()
	for _, cmd := range ClearCommands() {
		b.Command(cmd)
	}
	for _, buf := range bufs {
		b.ClearBufferNamespace(buf, h.ns, 0, -1)
	}
	if err := b.Execute(); err != nil {
		return fmt.Errorf("failed to dispose style: %w", err)
	}
	return nil
}

// Notify implements engine.Host
func (h *Host) Notify(msg string) {
	if err := h.v.WriteOut(msg + "\n"); err != nil {
		logger.Error("failed to show message: %v", err)
	}
}

// Config implements config.Source by reading g:inline_change_highlighter.
// A missing or malformed variable yields the defaults.
func (h *Host) Config() config.Config {
	var m map[string]any
	if err := h.v.Var(ConfigVar, &m); err != nil {
		logger.Debug("buffer: g:%s: %v", ConfigVar, err)
		return config.Default()
	}
	return config.FromMap(m)
}
