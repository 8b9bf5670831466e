package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestListCandidateFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.txt", "m 1\n")
	writeFile(t, dir, "a.txt", "m 1\n")
	writeFile(t, dir, "notes.md", "ignored\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir.txt"), 0755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0755))
	writeFile(t, filepath.Join(dir, "nested"), "c.txt", "m 1\n")

	files := NewFS().ListCandidateFiles(dir)
	require.Equal(t, []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.txt"),
	}, files)
}

func TestListCandidateFiles_CustomPattern(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "")
	writeFile(t, dir, "b.prom", "")

	fs := &FS{Pattern: "*.{prom,txt}"}
	require.Len(t, fs.ListCandidateFiles(dir), 2)
}

func TestListCandidateFiles_MissingDir(t *testing.T) {
	files := NewFS().ListCandidateFiles(filepath.Join(t.TempDir(), "missing"))
	require.NotNil(t, files)
	require.Empty(t, files)
}

func TestReadLines(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "m.txt", "first 1\r\n\r\n  second 2\nthird 3")

	lines, err := NewFS().ReadLines(path)
	require.NoError(t, err)
	defer lines.Close()

	var got []string
	for lines.Next() {
		got = append(got, lines.Text())
	}
	require.NoError(t, lines.Err())
	require.Equal(t, []string{"first 1", "", "  second 2", "third 3"}, got)
}

func TestReadLines_MissingFile(t *testing.T) {
	_, err := NewFS().ReadLines(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	require.True(t, os.IsNotExist(err))
}

func TestNewLines_LineTooLong(t *testing.T) {
	lines := NewLines(strings.NewReader(strings.Repeat("x", 100)+"\n"), 16)
	require.False(t, lines.Next())
	require.Error(t, lines.Err())
	require.NoError(t, lines.Close())
}
