package types

// DocumentID identifies an open document across the baseline store and the scheduler
type DocumentID string

// EditorID identifies an editor (a view onto one document)
type EditorID int

// Document is a snapshot of a document read from the host
type Document struct {
	ID         DocumentID
	Text       string
	LanguageID string
}

// OpKind tags a diff operation
type OpKind int

const (
	OpEqual OpKind = iota
	OpInsert
	OpDelete
)

// String returns a human-readable name for the op kind
func (k OpKind) String() string {
	switch k {
	case OpEqual:
		return "Equal"
	case OpInsert:
		return "Insert"
	case OpDelete:
		return "Delete"
	default:
		return "Unknown"
	}
}

// Op is one diff instruction with its text fragment
type Op struct {
	Kind OpKind
	Text string
}

// Range is a half-open byte range [Start, End) in the current text
type Range struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the range
func (r Range) Len() int { return r.End - r.Start }

// Position follows Neovim extmark conventions
type Position struct {
	Line int // 0-indexed
	Col  int // 0-indexed, bytes
}

// Span is a Range translated into line/column coordinates
type Span struct {
	Start Position
	End   Position
}

// Ghost marks text deleted from the baseline at a point in the current text
type Ghost struct {
	At   Position
	Text string // Deleted baseline text
}

// Highlights is the complete set of marks for one editor.
// Rendering replaces whatever was there before; the zero value clears.
type Highlights struct {
	Inserted []Span
	Deleted  []Ghost
}

// Empty reports whether there is nothing to draw
func (h Highlights) Empty() bool {
	return len(h.Inserted) == 0 && len(h.Deleted) == 0
}
