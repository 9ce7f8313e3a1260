package engine

import "inlinechange/types"

// EventType identifies a notification handled by the engine loop
type EventType string

const (
	EventDocumentOpened      EventType = "open"
	EventTextChanged         EventType = "changed"
	EventDocumentSaved       EventType = "saved"
	EventDocumentClosed      EventType = "closed"
	EventActiveEditorChanged EventType = "win_enter"
	EventConfigChanged       EventType = "config_changed"
	EventToggle              EventType = "toggle"
	EventRebaseline          EventType = "rebaseline"

	// Internal
	EventDiffTimeout EventType = "diff_timeout"
)

var hostEvents = map[string]EventType{
	string(EventDocumentOpened):      EventDocumentOpened,
	string(EventTextChanged):         EventTextChanged,
	string(EventDocumentSaved):       EventDocumentSaved,
	string(EventDocumentClosed):      EventDocumentClosed,
	string(EventActiveEditorChanged): EventActiveEditorChanged,
	string(EventConfigChanged):       EventConfigChanged,
	string(EventToggle):              EventToggle,
	string(EventRebaseline):          EventRebaseline,
}

// EventTypeFromString maps a host notification name to an event type.
// Unknown names (and internal events) map to "".
func EventTypeFromString(s string) EventType {
	return hostEvents[s]
}

// Event is one message delivered to the engine loop
type Event struct {
	Type     EventType
	Doc      types.DocumentID
	Editor   types.EditorID
	Document *types.Document // Snapshot carried by open/save notifications
	Gen      uint64          // Timer generation for EventDiffTimeout
}
