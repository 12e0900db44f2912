package history

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/pdi-login/pkg/types"
)

func entryFor(i int) Entry {
	return Entry{
		Timestamp: fmt.Sprintf("2026-01-01T00:00:%02dZ", i%60),
		URL:       fmt.Sprintf("https://dev%d.service-now.com", i),
		Status:    types.OutcomeSuccess,
	}
}

func TestStore_AppendToMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.json")
	store := NewStore(path, 5)

	require.NoError(t, store.Append(entryFor(1)))

	entries := store.Load()
	require.Len(t, entries, 1)
	assert.Equal(t, "https://dev1.service-now.com", entries[0].URL)
}

func TestStore_PreservesOrder(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "history.json"), 10)

	for i := 0; i < 4; i++ {
		require.NoError(t, store.Append(entryFor(i)))
	}

	entries := store.Load()
	require.Len(t, entries, 4)
	for i, e := range entries {
		assert.Equal(t, entryFor(i).URL, e.URL)
	}
}

func TestStore_EvictsOldestFirst(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "history.json"), 3)

	for i := 0; i < 7; i++ {
		require.NoError(t, store.Append(entryFor(i)))
		assert.LessOrEqual(t, len(store.Load()), 3, "capacity exceeded after append %d", i)
	}

	entries := store.Load()
	require.Len(t, entries, 3)
	assert.Equal(t, entryFor(4).URL, entries[0].URL)
	assert.Equal(t, entryFor(5).URL, entries[1].URL)
	assert.Equal(t, entryFor(6).URL, entries[2].URL)
}

func TestStore_FullLogDropsSingleOldest(t *testing.T) {
	const capacity = 50
	store := NewStore(filepath.Join(t.TempDir(), "history.json"), capacity)

	for i := 0; i < capacity; i++ {
		require.NoError(t, store.Append(entryFor(i)))
	}
	require.Len(t, store.Load(), capacity)

	require.NoError(t, store.Append(entryFor(capacity)))

	entries := store.Load()
	require.Len(t, entries, capacity)
	assert.Equal(t, entryFor(1).URL, entries[0].URL)
	assert.Equal(t, entryFor(capacity).URL, entries[capacity-1].URL)
}

func TestStore_CorruptFileTreatedAsEmpty(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "garbage", content: "{not json"},
		{name: "object instead of array", content: `{"url": "x"}`},
		{name: "truncated array", content: `[{"url": "https://a"`},
		{name: "null", content: "null"},
		{name: "empty file", content: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "history.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			store := NewStore(path, 5)
			assert.Empty(t, store.Load())

			require.NoError(t, store.Append(entryFor(9)))
			entries := store.Load()
			require.Len(t, entries, 1)
			assert.Equal(t, entryFor(9).URL, entries[0].URL)
		})
	}
}

func TestStore_NullFieldsSerialized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	store := NewStore(path, 5)

	title := "Incident"
	require.NoError(t, store.Append(Entry{
		Timestamp: "2026-01-01T00:00:00Z",
		URL:       "https://dev1.service-now.com",
		Status:    types.OutcomeSuccess,
		Title:     &title,
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"title": "Incident"`)
	assert.Contains(t, string(data), `"error": null`)
	assert.NotContains(t, string(data), "run_id")
}

func TestStore_NoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "history.json"), 5)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Append(entryFor(i)))
	}

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "history.json", files[0].Name())
}

func TestNewStore_DefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultCapacity, NewStore("h.json", 0).Capacity())
	assert.Equal(t, DefaultCapacity, NewStore("h.json", -3).Capacity())
	assert.Equal(t, 100, NewStore("h.json", 100).Capacity())
}
