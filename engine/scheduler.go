package engine

import (
	"fmt"

	"inlinechange/config"
	"inlinechange/logger"
	"inlinechange/text"
	"inlinechange/types"
)

const msgRebaselined = "Rebaselined to current file content."

// onTextChanged resolves the editor for doc and schedules a diff
func (e *Engine) onTextChanged(doc types.DocumentID, editor types.EditorID) {
	if editor == 0 {
		editors := e.host.EditorsFor(doc)
		if len(editors) == 0 {
			logger.Debug("engine: no visible editor for %s", doc)
			return
		}
		editor = editors[0]
	}
	e.scheduleDiff(editor)
}

// scheduleDiff replaces any pending diff for the editor's document with a new one
func (e *Engine) scheduleDiff(editor types.EditorID) {
	doc, ok := e.host.Document(editor)
	if !ok {
		logger.Debug("engine: editor %d has no document", editor)
		return
	}

	cfg := e.source.Config()
	e.cancelPending(doc.ID)

	e.nextGen++
	gen := e.nextGen
	id := doc.ID
	timer := e.clock.AfterFunc(cfg.Debounce(), func() {
		e.post(Event{Type: EventDiffTimeout, Doc: id, Editor: editor, Gen: gen})
	})
	e.timers[id] = &pendingDiff{timer: timer, editor: editor, gen: gen}
}

// cancelPending stops and forgets the pending diff for doc.
// A fire event already queued is dropped by the generation check.
func (e *Engine) cancelPending(doc types.DocumentID) {
	if p, ok := e.timers[doc]; ok {
		p.timer.Stop()
		delete(e.timers, doc)
	}
}

// onDiffTimeout runs the diff unless it was superseded after the timer fired
func (e *Engine) onDiffTimeout(ev Event) {
	p, ok := e.timers[ev.Doc]
	if !ok || p.gen != ev.Gen {
		logger.Debug("engine: dropping stale diff for %s (gen %d)", ev.Doc, ev.Gen)
		return
	}
	delete(e.timers, ev.Doc)
	e.runDiff(p.editor, ev.Doc)
}

// runDiff diffs the editor's document against its baseline and renders the inserts
func (e *Engine) runDiff(editor types.EditorID, want types.DocumentID) {
	defer logger.Trace("engine.runDiff")()

	if !e.styled {
		return
	}
	doc, ok := e.host.Document(editor)
	if !ok {
		logger.Debug("engine: editor %d went away before diff", editor)
		return
	}
	if doc.ID != want {
		logger.Debug("engine: editor %d now shows %s, not %s", editor, doc.ID, want)
		return
	}

	cfg := e.source.Config()
	if !e.shouldProcess(doc, cfg) {
		e.clear(editor)
		return
	}

	h := Highlight(e.store.Get(doc.ID), doc.Text, cfg)
	e.diffRuns++
	logger.Debug("engine: %s has %d inserted spans, %d deletion markers", doc.ID, len(h.Inserted), len(h.Deleted))
	e.render(editor, h)
}

// Highlight computes the marks for current compared with baseline under cfg
func Highlight(baseline, current string, cfg config.Config) types.Highlights {
	ops := text.Diff(baseline, current)
	idx := text.NewLineIndex(current)

	h := types.Highlights{
		Inserted: idx.Spans(text.InsertRanges(ops, cfg.IncludeWhitespace)),
	}
	if cfg.ShowDeletions {
		h.Deleted = idx.Ghosts(text.DeletionPoints(ops))
	}
	return h
}

// shouldProcess applies the enabled flags, the size ceiling and the language allowlist
func (e *Engine) shouldProcess(doc types.Document, cfg config.Config) bool {
	if !e.enabled || !cfg.Enabled {
		return false
	}
	if !cfg.WithinSizeLimit(len(doc.Text)) {
		logger.Debug("engine: %s is over the size limit (%d bytes)", doc.ID, len(doc.Text))
		return false
	}
	return cfg.AllowsLanguage(doc.LanguageID)
}

func (e *Engine) render(editor types.EditorID, h types.Highlights) {
	if err := e.host.Render(editor, h); err != nil {
		logger.Error("failed to render editor %d: %v", editor, err)
	}
}

// clear removes the marks from one editor
func (e *Engine) clear(editor types.EditorID) {
	if !e.styled {
		return
	}
	e.render(editor, types.Highlights{})
}

// clearAll removes the marks from every visible editor
func (e *Engine) clearAll() {
	for _, editor := range e.host.VisibleEditors() {
		e.clear(editor)
	}
}

// rebaseline records doc's text and invalidates any diff scheduled against the old baseline
func (e *Engine) rebaseline(doc types.Document) {
	e.cancelPending(doc.ID)
	e.store.Rebaseline(doc.ID, doc.Text)
}

// onSave accepts the saved text: nothing stays highlighted
func (e *Engine) onSave(doc types.Document) {
	e.rebaseline(doc)
	for _, editor := range e.host.EditorsFor(doc.ID) {
		e.clear(editor)
	}
}

// onClose drops everything held for doc
func (e *Engine) onClose(doc types.DocumentID) {
	e.cancelPending(doc)
	e.store.Forget(doc)
}

// onConfigChanged recreates the style and re-runs the active editor only
func (e *Engine) onConfigChanged() {
	cfg := e.source.Config()
	e.ensureStyle(cfg)
	e.enabled = cfg.Enabled
	if editor, ok := e.host.ActiveEditor(); ok {
		e.scheduleDiff(editor)
	}
}

// ensureStyle disposes any existing style and creates a fresh one
func (e *Engine) ensureStyle(cfg config.Config) {
	if e.styled {
		if err := e.host.DisposeStyle(); err != nil {
			logger.Error("failed to dispose style: %v", err)
		}
		e.styled = false
	}
	if err := e.host.ApplyStyle(cfg.Style()); err != nil {
		logger.Error("failed to apply style: %v", err)
		return
	}
	e.styled = true
}

// toggle flips the enabled flag; baselines are never touched
func (e *Engine) toggle() {
	e.enabled = !e.enabled
	if !e.enabled {
		e.clearAll()
	} else if editor, ok := e.host.ActiveEditor(); ok {
		e.scheduleDiff(editor)
	}

	state := "disabled"
	if e.enabled {
		state = "enabled"
	}
	e.host.Notify(fmt.Sprintf("Inline Change Highlighter %s", state))
}

// rebaselineActive forces the active document's baseline to its current text
func (e *Engine) rebaselineActive() {
	editor, ok := e.host.ActiveEditor()
	if !ok {
		return
	}
	doc, ok := e.host.Document(editor)
	if !ok {
		return
	}
	e.rebaseline(doc)
	e.clear(editor)
	e.host.Notify(msgRebaselined)
}
