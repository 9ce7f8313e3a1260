package buffer

import (
	"fmt"

	"inlinechange/engine"
	"inlinechange/logger"
	"inlinechange/types"

	"github.com/neovim/go-client/nvim"
)

// Sink receives decoded editor notifications; *engine.Engine implements it
type Sink interface {
	DocumentOpened(doc types.Document)
	TextChanged(doc types.DocumentID, editor types.EditorID)
	DocumentSaved(doc types.Document)
	DocumentClosed(doc types.DocumentID)
	ActiveEditorChanged(editor types.EditorID)
	ConfigChanged()
	Toggle()
	RebaselineActive()
}

// HandleEvent decodes one inlinechange_event notification and forwards it to sink.
// Open and save read the buffer before forwarding.
func (h *Host) HandleEvent(sink Sink, name string, bufnr, winid int) error {
	buf := nvim.Buffer(bufnr)
	switch engine.EventTypeFromString(name) {
	case engine.EventDocumentOpened:
		doc, err := h.ReadBuffer(buf)
		if err != nil {
			return err
		}
		sink.DocumentOpened(doc)
	case engine.EventTextChanged:
		// The current window may not show the buffer; let the engine pick
		sink.TextChanged(DocumentID(buf), 0)
	case engine.EventDocumentSaved:
		doc, err := h.ReadBuffer(buf)
		if err != nil {
			return err
		}
		sink.DocumentSaved(doc)
	case engine.EventDocumentClosed:
		sink.DocumentClosed(DocumentID(buf))
	case engine.EventActiveEditorChanged:
		sink.ActiveEditorChanged(types.EditorID(winid))
	case engine.EventConfigChanged:
		sink.ConfigChanged()
	case engine.EventToggle:
		sink.Toggle()
	case engine.EventRebaseline:
		sink.RebaselineActive()
	default:
		logger.Warn("buffer: unknown event %q", name)
		return fmt.Errorf("unknown event %q", name)
	}
	return nil
}
