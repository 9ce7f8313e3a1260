package buffer

import (
	"strings"
	"testing"

	"inlinechange/config"
	"inlinechange/types"

	"github.com/neovim/go-client/nvim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentIDRoundTrip(t *testing.T) {
	id := DocumentID(nvim.Buffer(7))
	assert.Equal(t, types.DocumentID("buffer://7"), id, "id")

	buf, ok := BufferOf(id)
	assert.True(t, ok, "parsed")
	assert.Equal(t, nvim.Buffer(7), buf, "buffer")
}

func TestBufferOfRejectsForeignIDs(t *testing.T) {
	for _, id := range []types.DocumentID{"", "/tmp/file.go", "buffer://", "buffer://x", "buffer://0", "buffer://-2"} {
		_, ok := BufferOf(id)
		assert.False(t, ok, "BufferOf(%q)", id)
	}
}

func TestExtmarks(t *testing.T) {
	h := types.Highlights{
		Inserted: []types.Span{
			{Start: types.Position{Line: 0, Col: 6}, End: types.Position{Line: 0, Col: 12}},
			{Start: types.Position{Line: 2, Col: 0}, End: types.Position{Line: 4, Col: 0}},
		},
		Deleted: []types.Ghost{
			{At: types.Position{Line: 1, Col: 3}, Text: "gone\n"},
		},
	}

	marks := Extmarks(h)
	require.Len(t, marks, 3)

	assert.Equal(t, Extmark{Line: 0, Col: 6, Opts: map[string]any{
		"end_row": 0, "end_col": 12, "hl_group": GroupInserted,
	}}, marks[0], "single line span")
	assert.Equal(t, 4, marks[1].Opts["end_row"], "multi line end row")
	assert.Equal(t, 0, marks[1].Opts["end_col"], "multi line end col")

	assert.Equal(t, 1, marks[2].Line, "ghost line")
	assert.Equal(t, 3, marks[2].Col, "ghost col")
	assert.Equal(t, "inline", marks[2].Opts["virt_text_pos"], "ghost position")
	assert.Equal(t, [][]any{{"gone↵", GroupDeleted}}, marks[2].Opts["virt_text"], "ghost chunk")
}

func TestExtmarksEmpty(t *testing.T) {
	assert.Empty(t, Extmarks(types.Highlights{}), "no marks")
}

func TestHighlightCommands(t *testing.T) {
	tests := []struct {
		name  string
		style config.Style
		want  string
	}{
		{
			name:  "translucent",
			style: config.Style{Color: "rgba(255,215,0,0.35)", Border: "1px solid rgba(255,215,0,0.5)"},
			want:  "highlight InlineChangeInserted guibg=#594b00 guisp=#806c00 gui=underline",
		},
		{
			name:  "opaque fill, dashed border",
			style: config.Style{Color: "#ff0000", Border: "2px dashed #00ff00"},
			want:  "highlight InlineChangeInserted guibg=#ff0000 guisp=#00ff00 gui=underdashed",
		},
		{
			name:  "fill only",
			style: config.Style{Color: "rgb(0,0,255)", Border: "none"},
			want:  "highlight InlineChangeInserted guibg=#0000ff",
		},
		{
			name:  "zero width border",
			style: config.Style{Color: "#fff", Border: "0px solid #000"},
			want:  "highlight InlineChangeInserted guibg=#ffffff",
		},
		{
			name:  "nothing usable",
			style: config.Style{Color: "chartreuse-ish", Border: ""},
			want:  "highlight default link InlineChangeInserted DiffAdd",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := HighlightCommands(tt.style)
			require.Len(t, cmds, 3)
			assert.Equal(t, "highlight clear InlineChangeInserted", cmds[0], "clears first")
			assert.Equal(t, tt.want, cmds[1], "inserted group")
			assert.True(t, strings.HasPrefix(cmds[2], "highlight default InlineChangeDeleted"), "deleted group")
		})
	}
}

func TestAutocmds(t *testing.T) {
	cmds := Autocmds(3)

	assert.Equal(t, "augroup InlineChangeHighlighter", cmds[0], "group opened")
	assert.Equal(t, "autocmd!", cmds[1], "group reset")
	assert.Contains(t, cmds,
		"autocmd TextChanged,TextChangedI * call rpcnotify(3, 'inlinechange_event', 'changed', str2nr(expand('<abuf>')), win_getid())",
		"change notification")
	assert.Contains(t, cmds,
		"autocmd User InlineChangeHighlighterConfig call rpcnotify(3, 'inlinechange_event', 'config_changed', str2nr(expand('<abuf>')), win_getid())",
		"config notification")
	assert.Contains(t, cmds, "augroup END", "group closed")
	assert.Contains(t, cmds, "command! InlineChangeToggle call rpcrequest(3, 'inlinechange_toggle')", "toggle command")
	assert.Contains(t, cmds, "command! InlineChangeRebaseline call rpcrequest(3, 'inlinechange_rebaseline')", "rebaseline command")

	for _, a := range autocmds {
		found := false
		for _, c := range cmds {
			if strings.Contains(c, "'"+a.name+"'") {
				found = true
			}
		}
		assert.True(t, found, "notification %s wired", a.name)
	}
}

// recordingSink records the calls HandleEvent makes
type recordingSink struct {
	calls []string
	doc   types.DocumentID
	ed    types.EditorID
}

func (s *recordingSink) DocumentOpened(doc types.Document) {
	s.calls = append(s.calls, "opened")
	s.doc = doc.ID
}

func (s *recordingSink) TextChanged(doc types.DocumentID, editor types.EditorID) {
	s.calls = append(s.calls, "changed")
	s.doc, s.ed = doc, editor
}

func (s *recordingSink) DocumentSaved(doc types.Document) {
	s.calls = append(s.calls, "saved")
	s.doc = doc.ID
}

func (s *recordingSink) DocumentClosed(doc types.DocumentID) {
	s.calls = append(s.calls, "closed")
	s.doc = doc
}

func (s *recordingSink) ActiveEditorChanged(editor types.EditorID) {
	s.calls = append(s.calls, "win_enter")
	s.ed = editor
}

func (s *recordingSink) ConfigChanged()    { s.calls = append(s.calls, "config") }
func (s *recordingSink) Toggle()           { s.calls = append(s.calls, "toggle") }
func (s *recordingSink) RebaselineActive() { s.calls = append(s.calls, "rebaseline") }

func TestHandleEvent(t *testing.T) {
	// Events that need no buffer reads never touch the RPC client
	h := &Host{}

	tests := []struct {
		name     string
		bufnr    int
		winid    int
		wantCall string
		wantDoc  types.DocumentID
		wantEd   types.EditorID
	}{
		{"changed", 5, 1000, "changed", "buffer://5", 0},
		{"closed", 5, 1000, "closed", "buffer://5", 0},
		{"win_enter", 5, 1001, "win_enter", "", 1001},
		{"config_changed", 0, 1000, "config", "", 0},
		{"toggle", 0, 0, "toggle", "", 0},
		{"rebaseline", 0, 0, "rebaseline", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{}
			err := h.HandleEvent(sink, tt.name, tt.bufnr, tt.winid)
			require.NoError(t, err)
			assert.Equal(t, []string{tt.wantCall}, sink.calls, "calls")
			assert.Equal(t, tt.wantDoc, sink.doc, "document")
			assert.Equal(t, tt.wantEd, sink.ed, "editor")
		})
	}
}

func TestHandleEventUnknown(t *testing.T) {
	sink := &recordingSink{}
	err := (&Host{}).HandleEvent(sink, "diff_timeout", 1, 1)
	assert.Error(t, err, "internal events are not accepted from the editor")
	assert.Empty(t, sink.calls, "nothing forwarded")
}
