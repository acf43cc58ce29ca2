package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "enero.xlsx"))
	touch(t, filepath.Join(dir, "febrero.xlsx"))
	touch(t, filepath.Join(dir, "~$enero.xlsx"))
	touch(t, filepath.Join(dir, "notas.txt"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.xlsx"), 0o755))

	files, err := ScanDir(dir)
	require.NoError(t, err)

	require.Len(t, files, 2)
	assert.Contains(t, files, filepath.Join(dir, "enero.xlsx"))
	assert.Contains(t, files, filepath.Join(dir, "febrero.xlsx"))
}

func TestScanDirMissing(t *testing.T) {
	_, err := ScanDir(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestMoveFile(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	path := filepath.Join(src, "enero.xlsx")
	touch(t, path)

	require.NoError(t, MoveFile(path, dest))

	_, err := os.Stat(filepath.Join(dest, "enero.xlsx"))
	assert.NoError(t, err)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestMoveFileCollisionGetsTimestampSuffix(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	path := filepath.Join(src, "enero.xlsx")
	touch(t, path)
	touch(t, filepath.Join(dest, "enero.xlsx"))

	require.NoError(t, MoveFile(path, dest))

	entries, err := os.ReadDir(dest)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var suffixed string
	for _, e := range entries {
		if e.Name() != "enero.xlsx" {
			suffixed = e.Name()
		}
	}
	assert.Regexp(t, `^enero_\d{8}_\d{6}\.xlsx$`, suffixed)
}

func TestMoveFileMissingSource(t *testing.T) {
	err := MoveFile(filepath.Join(t.TempDir(), "nope.xlsx"), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source file missing")
}
