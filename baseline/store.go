package baseline

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"inlinechange/logger"
	"inlinechange/types"

	"github.com/andybalholm/brotli"
)

// DefaultCompressThreshold is the snapshot size at which text is held compressed
const DefaultCompressThreshold = 256 * 1024

// snapshot holds either the raw text or its brotli encoding
type snapshot struct {
	raw    string
	packed []byte
	size   int // Uncompressed size in bytes
}

// Store maps documents to the text they are compared against.
// Unknown documents read as empty text. Entries are only ever replaced whole.
type Store struct {
	mu        sync.RWMutex
	snapshots map[types.DocumentID]*snapshot
	threshold int
	level     int
}

// Option configures a Store
type Option func(*Store)

// WithCompressThreshold sets the size at which snapshots are compressed (<= 0 disables)
func WithCompressThreshold(n int) Option {
	return func(s *Store) { s.threshold = n }
}

// WithCompressLevel sets the brotli quality used for large snapshots
func WithCompressLevel(level int) Option {
	return func(s *Store) { s.level = level }
}

// NewStore creates an empty store
func NewStore(opts ...Option) *Store {
	s := &Store{
		snapshots: make(map[types.DocumentID]*snapshot),
		threshold: DefaultCompressThreshold,
		level:     brotli.BestSpeed,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rebaseline sets the snapshot for id to text, replacing any previous one
func (s *Store) Rebaseline(id types.DocumentID, text string) {
	snap := s.encode(text)

	s.mu.Lock()
	s.snapshots[id] = snap
	s.mu.Unlock()
}

// Get returns the snapshot for id, or "" when none was recorded
func (s *Store) Get(id types.DocumentID) string {
	s.mu.RLock()
	snap, ok := s.snapshots[id]
	s.mu.RUnlock()
	if !ok {
		return ""
	}
	if snap.packed == nil {
		return snap.raw
	}

	text, err := inflate(snap.packed, snap.size)
	if err != nil {
		logger.Error("baseline: failed to inflate snapshot for %s: %v", id, err)
		return ""
	}
	return text
}

// Has reports whether a snapshot was recorded for id
func (s *Store) Has(id types.DocumentID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.snapshots[id]
	return ok
}

// Forget drops the snapshot for id
func (s *Store) Forget(id types.DocumentID) {
	s.mu.Lock()
	delete(s.snapshots, id)
	s.mu.Unlock()
}

// Clear drops every snapshot
func (s *Store) Clear() {
	s.mu.Lock()
	s.snapshots = make(map[types.DocumentID]*snapshot)
	s.mu.Unlock()
}

// Len returns the number of tracked documents
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshots)
}

// Stats reports how many snapshots are held and their stored versus raw sizes
type Stats struct {
	Documents   int
	Compressed  int
	StoredBytes int
	RawBytes    int
}

// Stats summarises memory held by the store
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st Stats
	for _, snap := range s.snapshots {
		st.Documents++
		st.RawBytes += snap.size
		if snap.packed != nil {
			st.Compressed++
			st.StoredBytes += len(snap.packed)
		} else {
			st.StoredBytes += len(snap.raw)
		}
	}
	return st
}

// encode compresses text when it is large enough; failures fall back to raw storage
func (s *Store) encode(text string) *snapshot {
	if s.threshold <= 0 || len(text) < s.threshold {
		return &snapshot{raw: text, size: len(text)}
	}

	packed, err := deflate(text, s.level)
	if err != nil {
		logger.Warn("baseline: compression failed, keeping raw snapshot: %v", err)
		return &snapshot{raw: text, size: len(text)}
	}
	return &snapshot{packed: packed, size: len(text)}
}

func deflate(text string, level int) ([]byte, error) {
	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, level)
	if _, err := io.WriteString(w, text); err != nil {
		return nil, fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to flush snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

func inflate(packed []byte, size int) (string, error) {
	var buf bytes.Buffer
	buf.Grow(size)
	if _, err := io.Copy(&buf, brotli.NewReader(bytes.NewReader(packed))); err != nil {
		return "", fmt.Errorf("failed to read snapshot: %w", err)
	}
	if buf.Len() != size {
		return "", fmt.Errorf("snapshot size mismatch: got %d bytes, want %d", buf.Len(), size)
	}
	return buf.String(), nil
}
