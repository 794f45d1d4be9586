package host

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// MemoryNote is a Note held in memory
type MemoryNote struct {
	names  []string
	values map[string]string
}

// NewMemoryNote creates a note with the given fields, all empty
func NewMemoryNote(fieldNames ...string) *MemoryNote {
	n := &MemoryNote{values: make(map[string]string, len(fieldNames))}
	for _, name := range fieldNames {
		n.names = append(n.names, name)
		n.values[name] = ""
	}
	return n
}

// FieldNames returns the field names in order
func (n *MemoryNote) FieldNames() []string {
	return append([]string(nil), n.names...)
}

// Field returns a field value
func (n *MemoryNote) Field(name string) (string, bool) {
	v, ok := n.values[name]
	return v, ok
}

// SetField sets an existing field
func (n *MemoryNote) SetField(name, value string) error {
	if _, ok := n.values[name]; !ok {
		return fmt.Errorf("note has no field %q", name)
	}
	n.values[name] = value
	return nil
}

// MemoryMedia keeps media files in memory
type MemoryMedia struct {
	mu    sync.Mutex
	Files map[string][]byte
}

// NewMemoryMedia creates an empty media store
func NewMemoryMedia() *MemoryMedia {
	return &MemoryMedia{Files: make(map[string][]byte)}
}

// WriteMedia stores data under name
func (m *MemoryMedia) WriteMedia(name string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Files[name] = append([]byte(nil), data...)
	return name, nil
}

// DirMedia writes media files into a directory
type DirMedia struct {
	Dir string
}

// WriteMedia writes data to Dir/name
func (d DirMedia) WriteMedia(name string, data []byte) (string, error) {
	if err := os.MkdirAll(d.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(d.Dir, name), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write media file: %w", err)
	}
	return name, nil
}

// StaticWords is a StudiedWordSource over a fixed list
type StaticWords []string

// StudiedWords returns the cleaned, de-duplicated list; the deck is ignored
func (s StaticWords) StudiedWords(ctx context.Context, deckID *int64) ([]string, error) {
	return UniqueWords(s), nil
}

// ConsoleNotifier writes failures to a writer, one line each
type ConsoleNotifier struct {
	Out io.Writer
}

// Notify prints the failed step and its error
func (c ConsoleNotifier) Notify(step Step, err error) {
	out := c.Out
	if out == nil {
		out = os.Stderr
	}
	fmt.Fprintf(out, "LexiForge: %s failed: %v\n", step, err)
}

// RecordingNotifier remembers every notification
type RecordingNotifier struct {
	mu      sync.Mutex
	Entries []StepError
}

// Notify records the step and error
func (r *RecordingNotifier) Notify(step Step, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Entries = append(r.Entries, StepError{Step: step, Err: err})
}

// Steps returns the notified steps in order
func (r *RecordingNotifier) Steps() []Step {
	r.mu.Lock()
	defer r.mu.Unlock()
	steps := make([]Step, len(r.Entries))
	for i, e := range r.Entries {
		steps[i] = e.Step
	}
	return steps
}
