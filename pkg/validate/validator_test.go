package validate

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nicktill/promcheck/pkg/exposition"
	"github.com/nicktill/promcheck/pkg/source"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestValidateFile_Counts(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "metrics.txt", strings.Join([]string{
		`http_requests_total{method="GET"} 10`,
		``,
		`bad line`,
		`   `,
		`up 1 1700000000000`,
		`m{k=v} 1`,
	}, "\n"))

	summary := NewFS().ValidateFile(path)

	require.Equal(t, path, summary.FilePath)
	require.Equal(t, 6, summary.TotalLines)
	require.Equal(t, 2, summary.ValidLines)
	require.Equal(t, 2, summary.InvalidLines)
	require.False(t, summary.IsValid)

	require.Len(t, summary.Errors, 2)
	require.Equal(t, 3, summary.Errors[0].LineNumber)
	require.Equal(t, exposition.InvalidNumericValue, summary.Errors[0].Reason)
	require.Equal(t, "bad line", summary.Errors[0].RawContent)
	require.Equal(t, 6, summary.Errors[1].LineNumber)
	require.Equal(t, exposition.InvalidLabelFormat, summary.Errors[1].Reason)
}

func TestValidateFile_RawContentUntrimmed(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "metrics.txt", "  1metric 1  \n")

	summary := NewFS().ValidateFile(path)
	require.Len(t, summary.Errors, 1)
	require.Equal(t, "  1metric 1  ", summary.Errors[0].RawContent)
	require.Equal(t, exposition.InvalidMetricNameFormat, summary.Errors[0].Reason)
	require.NotEmpty(t, summary.Errors[0].Detail)
}

func TestValidateFile_AllValid(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "metrics.txt", "a 1\n\nb{x=\"y\"} 2\n")

	summary := NewFS().ValidateFile(path)
	require.Equal(t, 3, summary.TotalLines)
	require.Equal(t, 2, summary.ValidLines)
	require.Equal(t, 0, summary.InvalidLines)
	require.Empty(t, summary.Errors)
	require.True(t, summary.IsValid)
}

func TestValidateFile_Empty(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "empty.txt", "")

	summary := NewFS().ValidateFile(path)
	require.Equal(t, 0, summary.TotalLines)
	require.True(t, summary.IsValid)
}

func TestValidateFile_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.txt")

	summary := NewFS().ValidateFile(path)
	require.Equal(t, 0, summary.TotalLines)
	require.False(t, summary.IsValid)
	require.Len(t, summary.Errors, 1)
	require.Equal(t, 0, summary.Errors[0].LineNumber)
	require.Equal(t, FileNotFound, summary.Errors[0].Reason)
}

func TestValidateFile_OpenError(t *testing.T) {
	v := New(source.NewFS(), &fakeReader{openErr: errors.New("permission denied")})

	summary := v.ValidateFile("x.txt")
	require.False(t, summary.IsValid)
	require.Equal(t, IOError, summary.Errors[0].Reason)
	require.Equal(t, "permission denied", summary.Errors[0].Detail)
}

func TestValidateFile_ReadErrorMidFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "long.txt", "a 1\n"+strings.Repeat("x", 64)+"\n")

	fsys := &source.FS{MaxLineBytes: 16}
	summary := New(fsys, fsys).ValidateFile(path)

	require.Equal(t, 1, summary.TotalLines)
	require.Equal(t, 1, summary.ValidLines)
	require.False(t, summary.IsValid)
	require.Len(t, summary.Errors, 1)
	require.Equal(t, IOError, summary.Errors[0].Reason)
	require.Equal(t, 0, summary.Errors[0].LineNumber)
}

func TestValidateDirectory_AllValid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "a 1\n")
	writeFile(t, dir, "b.txt", "b 2\n")
	writeFile(t, dir, "ignored.md", "not a metric\n")

	results := NewFS().ValidateDirectory(dir)

	require.Equal(t, dir, results.DirectoryPath)
	require.Equal(t, 2, results.FileCount)
	require.Equal(t, 2, results.ValidFileCount)
	require.Equal(t, 0, results.InvalidFileCount)
	require.Equal(t, StatusValid, results.OverallStatus)
	require.True(t, results.Valid())
	require.Empty(t, results.Reason)
}

func TestValidateDirectory_OneInvalidFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "a 1\n")
	writeFile(t, dir, "b.txt", "b{1x=\"y\"} 2\n")
	writeFile(t, dir, "c.txt", "c 3\n")

	results := NewFS().ValidateDirectory(dir)

	require.Equal(t, StatusInvalid, results.OverallStatus)
	require.Equal(t, 3, results.FileCount)
	require.Equal(t, 2, results.ValidFileCount)
	require.Equal(t, 1, results.InvalidFileCount)
	require.Len(t, results.FileSummaries, 3)
	require.Equal(t, filepath.Join(dir, "b.txt"), results.FileSummaries[1].FilePath)
	require.Equal(t, exposition.InvalidLabelName, results.FileSummaries[1].Errors[0].Reason)
}

func TestValidateDirectory_Empty(t *testing.T) {
	results := NewFS().ValidateDirectory(t.TempDir())
	require.Equal(t, 0, results.FileCount)
	require.Equal(t, StatusValid, results.OverallStatus)
}

func TestValidateDirectory_Missing(t *testing.T) {
	results := NewFS().ValidateDirectory(filepath.Join(t.TempDir(), "missing"))

	require.Equal(t, StatusInvalid, results.OverallStatus)
	require.Equal(t, DirectoryNotFound, results.Reason)
	require.Empty(t, results.FileSummaries)
	require.Equal(t, 0, results.FileCount)
}

func TestValidateDirectory_NotADirectory(t *testing.T) {
	path := writeFile(t, t.TempDir(), "file.txt", "a 1\n")

	results := NewFS().ValidateDirectory(path)
	require.Equal(t, DirectoryNotFound, results.Reason)
}

func TestValidateDirectory_FileVanishesAfterListing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "a 1\n")
	lister := &fakeLister{files: []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "gone.txt")}}
	fsys := source.NewFS()

	results := New(lister, fsys).ValidateDirectory(dir)

	require.Equal(t, 2, results.FileCount)
	require.Equal(t, 1, results.InvalidFileCount)
	require.Equal(t, FileNotFound, results.FileSummaries[1].Errors[0].Reason)
	require.Equal(t, StatusInvalid, results.OverallStatus)
}

func TestValidateDirectory_ParallelKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	var expected []string
	for i := 0; i < 40; i++ {
		name := fmt.Sprintf("file_%02d.txt", i)
		content := fmt.Sprintf("m{i=\"%d\"} %d\n", i, i)
		if i%7 == 0 {
			content = "broken\n"
		}
		expected = append(expected, writeFile(t, dir, name, content))
	}

	results := NewFS(WithWorkers(8)).ValidateDirectory(dir)

	require.Equal(t, 40, results.FileCount)
	require.Equal(t, 6, results.InvalidFileCount)
	for i, s := range results.FileSummaries {
		require.Equal(t, expected[i], s.FilePath)
	}
}

type fakeLister struct {
	files []string
}

func (f *fakeLister) ListCandidateFiles(string) []string {
	return f.files
}

type fakeReader struct {
	openErr error
}

func (f *fakeReader) ReadLines(string) (source.Lines, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return source.NewLines(io.NopCloser(strings.NewReader("")), 0), nil
}
