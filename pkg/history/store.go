// Package history persists a bounded, oldest-first log of login attempts
// across runs.
package history

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/entrhq/pdi-login/internal/fsutil"
	"github.com/entrhq/pdi-login/pkg/types"
)

// DefaultCapacity is the number of entries retained when no capacity is configured.
const DefaultCapacity = 50

// Entry records the result of processing one instance.
type Entry struct {
	Timestamp string        `json:"timestamp"`
	URL       string        `json:"url"`
	Status    types.Outcome `json:"status"`
	Title     *string       `json:"title"`
	Error     *string       `json:"error"`

	RunID      string `json:"run_id,omitempty"`
	Hibernated bool   `json:"hibernated,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`
}

// Store is a file-backed history log. It assumes a single writer.
type Store struct {
	path     string
	capacity int
}

// NewStore creates a store writing to path. A non-positive capacity selects
// DefaultCapacity.
func NewStore(path string, capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		path:     path,
		capacity: capacity,
	}
}

// Path returns the history file location.
func (s *Store) Path() string {
	return s.path
}

// Capacity returns the maximum number of retained entries.
func (s *Store) Capacity() int {
	return s.capacity
}

// Load returns the current log. A missing or unparseable file yields an empty log.
func (s *Store) Load() []Entry {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return []Entry{}
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return []Entry{}
	}
	if entries == nil {
		return []Entry{}
	}
	return entries
}

// Append adds entry to the end of the log, evicts the oldest entries beyond
// capacity and rewrites the file atomically. Only write failures are returned.
func (s *Store) Append(entry Entry) error {
	entries := append(s.Load(), entry)
	entries = trim(entries, s.capacity)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	data = append(data, '\n')

	if err := fsutil.WriteFileAtomic(s.path, data, 0o750); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}

// trim drops entries from the front until at most capacity remain.
func trim(entries []Entry, capacity int) []Entry {
	if len(entries) <= capacity {
		return entries
	}
	kept := make([]Entry, capacity)
	copy(kept, entries[len(entries)-capacity:])
	return kept
}
