package engine

import (
	"context"
	"sync"

	"inlinechange/baseline"
	"inlinechange/config"
	"inlinechange/logger"
	"inlinechange/types"
)

// Host is the editor the engine highlights for
type Host interface {
	// Document returns the document currently shown by editor
	Document(editor types.EditorID) (types.Document, bool)
	// OpenDocuments lists every document already open at activation
	OpenDocuments() []types.Document
	// VisibleEditors lists editors currently on screen
	VisibleEditors() []types.EditorID
	// EditorsFor lists visible editors showing doc
	EditorsFor(doc types.DocumentID) []types.EditorID
	// ActiveEditor returns the focused editor, if any
	ActiveEditor() (types.EditorID, bool)
	// Render replaces every mark in editor with h
	Render(editor types.EditorID, h types.Highlights) error
	// ApplyStyle (re)creates the look of inserted text
	ApplyStyle(style config.Style) error
	// DisposeStyle removes the style created by ApplyStyle
	DisposeStyle() error
	// Notify shows a short informational message
	Notify(msg string)
}

// pendingDiff is the single scheduled diff for a document
type pendingDiff struct {
	timer  Timer
	editor types.EditorID
	gen    uint64
}

// Engine schedules and renders insert highlights.
// All state below is owned by the loop goroutine once Start has been called.
type Engine struct {
	host   Host
	store  *baseline.Store
	source config.Source
	clock  Clock

	enabled bool
	styled  bool
	timers  map[types.DocumentID]*pendingDiff
	nextGen uint64

	// Counters, read by tests and the stats log line
	diffRuns int

	eventChan chan Event
	mainCtx   context.Context
	cancel    context.CancelFunc
	started   bool
	done      chan struct{}
	stopOnce  sync.Once
}

// NewEngine creates an engine. Call Start to activate it.
func NewEngine(host Host, store *baseline.Store, source config.Source, clock Clock) *Engine {
	if clock == nil {
		clock = SystemClock{}
	}
	if store == nil {
		store = baseline.NewStore()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		host:      host,
		store:     store,
		source:    source,
		clock:     clock,
		timers:    make(map[types.DocumentID]*pendingDiff),
		eventChan: make(chan Event, 100),
		mainCtx:   ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

// Start activates the engine and runs its loop until ctx ends or Stop is called
func (e *Engine) Start(ctx context.Context) {
	e.activate()
	context.AfterFunc(ctx, e.cancel)
	e.started = true
	go e.eventLoop()
}

// Stop deactivates the engine: pending timers are cancelled and baselines dropped
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		e.cancel()
		if e.started {
			<-e.done
			return
		}
		e.deactivate()
	})
}

// Done is closed once the loop has exited
func (e *Engine) Done() <-chan struct{} { return e.done }

// Store exposes the baseline store
func (e *Engine) Store() *baseline.Store { return e.store }

// DocumentOpened records doc's text as its baseline
func (e *Engine) DocumentOpened(doc types.Document) {
	e.post(Event{Type: EventDocumentOpened, Doc: doc.ID, Document: &doc})
}

// TextChanged schedules a debounced diff for the document shown in editor
func (e *Engine) TextChanged(doc types.DocumentID, editor types.EditorID) {
	e.post(Event{Type: EventTextChanged, Doc: doc, Editor: editor})
}

// DocumentSaved rebaselines doc and clears its highlights
func (e *Engine) DocumentSaved(doc types.Document) {
	e.post(Event{Type: EventDocumentSaved, Doc: doc.ID, Document: &doc})
}

// DocumentClosed forgets doc's baseline and pending diff
func (e *Engine) DocumentClosed(doc types.DocumentID) {
	e.post(Event{Type: EventDocumentClosed, Doc: doc})
}

// ActiveEditorChanged schedules a diff for the newly focused editor
func (e *Engine) ActiveEditorChanged(editor types.EditorID) {
	e.post(Event{Type: EventActiveEditorChanged, Editor: editor})
}

// ConfigChanged refreshes style and enabled flag from the current settings
func (e *Engine) ConfigChanged() {
	e.post(Event{Type: EventConfigChanged})
}

// Toggle flips the enabled flag
func (e *Engine) Toggle() {
	e.post(Event{Type: EventToggle})
}

// RebaselineActive accepts the active editor's current text as its baseline
func (e *Engine) RebaselineActive() {
	e.post(Event{Type: EventRebaseline})
}

// post delivers ev to the loop; it gives up once the engine is stopped
func (e *Engine) post(ev Event) {
	select {
	case e.eventChan <- ev:
	case <-e.mainCtx.Done():
		logger.Debug("engine stopped, dropping %s event", ev.Type)
	}
}

func (e *Engine) eventLoop() {
	defer close(e.done)
	for {
		select {
		case <-e.mainCtx.Done():
			e.deactivate()
			return
		case ev := <-e.eventChan:
			e.handleEvent(ev)
		}
	}
}

// handleEvent runs one event to completion
func (e *Engine) handleEvent(ev Event) {
	switch ev.Type {
	case EventDocumentOpened:
		if ev.Document != nil {
			e.rebaseline(*ev.Document)
		}
	case EventTextChanged:
		e.onTextChanged(ev.Doc, ev.Editor)
	case EventDocumentSaved:
		if ev.Document != nil {
			e.onSave(*ev.Document)
		}
	case EventDocumentClosed:
		e.onClose(ev.Doc)
	case EventActiveEditorChanged:
		e.scheduleDiff(ev.Editor)
	case EventConfigChanged:
		e.onConfigChanged()
	case EventToggle:
		e.toggle()
	case EventRebaseline:
		e.rebaselineActive()
	case EventDiffTimeout:
		e.onDiffTimeout(ev)
	default:
		logger.Debug("engine: ignoring event %q", ev.Type)
	}
}

// activate creates the style, reads the enabled flag and baselines open documents
func (e *Engine) activate() {
	defer logger.Trace("engine.activate")()

	cfg := e.source.Config()
	e.ensureStyle(cfg)
	e.enabled = cfg.Enabled

	docs := e.host.OpenDocuments()
	for _, doc := range docs {
		e.rebaseline(doc)
	}
	logger.Info("engine activated: enabled=%t documents=%d", e.enabled, len(docs))
}

// deactivate tears down all process-wide state
func (e *Engine) deactivate() {
	defer logger.Trace("engine.deactivate")()

	if e.styled {
		if err := e.host.DisposeStyle(); err != nil {
			logger.Error("failed to dispose style: %v", err)
		}
		e.styled = false
	}
	for doc := range e.timers {
		e.cancelPending(doc)
	}
	st := e.store.Stats()
	e.store.Clear()
	logger.Info("engine deactivated: diffs=%d baselines=%d (%d bytes held, %d raw)",
		e.diffRuns, st.Documents, st.StoredBytes, st.RawBytes)
}
