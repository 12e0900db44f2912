package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		data     string
	}{
		{name: "new file", data: "first\n"},
		{name: "replaces existing", existing: "old content that is longer\n", data: "new\n"},
		{name: "empty data", existing: "old\n", data: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "out.txt")
			if tt.existing != "" {
				require.NoError(t, os.WriteFile(path, []byte(tt.existing), 0600))
			}

			require.NoError(t, WriteFileAtomic(path, []byte(tt.data), 0o750))

			got, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.data, string(got))

			files, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Len(t, files, 1, "temp file left behind")
		})
	}
}

func TestWriteFileAtomic_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "status.txt")

	require.NoError(t, WriteFileAtomic(path, []byte("ok"), 0o755))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(got))
}

func TestWriteFileAtomic_DirectoryIsAFile(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	err := WriteFileAtomic(filepath.Join(blocker, "out.txt"), []byte("data"), 0o750)
	assert.Error(t, err)
}
