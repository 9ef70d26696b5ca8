package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))
}

func TestScanFiltersByExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.pdf"))
	writeFile(t, filepath.Join(dir, "b.PDF"))
	writeFile(t, filepath.Join(dir, "c.md"))
	writeFile(t, filepath.Join(dir, "d.txt"))
	writeFile(t, filepath.Join(dir, "e.exe"))

	files, err := Scan(dir)
	require.NoError(t, err)

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = filepath.Base(f)
	}
	assert.ElementsMatch(t, []string{"a.pdf", "b.PDF", "c.md", "d.txt"}, names)
}

func TestScanRecursesIntoSubdirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "top.txt"))
	writeFile(t, filepath.Join(dir, "nested", "deep", "notes.md"))
	writeFile(t, filepath.Join(dir, "nested", "skip.bin"))

	files, err := Scan(dir)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestScanEmptyDirectory(t *testing.T) {
	files, err := Scan(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("doc.pdf"))
	assert.True(t, IsSupported("README.MD"))
	assert.True(t, IsSupported("/abs/path/notes.TXT"))
	assert.False(t, IsSupported("binary.exe"))
	assert.False(t, IsSupported("noext"))
}
