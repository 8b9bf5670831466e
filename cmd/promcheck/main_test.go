package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func runCLI(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_ValidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "node.txt")
	writeFile(t, path, "up 1\nhttp_requests_total{code=\"200\"} 10 1700000000000\n")

	code, stdout, _ := runCLI(path)

	require.Equal(t, exitValid, code)
	require.Contains(t, stdout, path+": valid (2 lines)")
}

func TestRun_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "node.txt")
	writeFile(t, path, "up 1\nbad\n")

	code, stdout, _ := runCLI(path)

	require.Equal(t, exitInvalid, code)
	require.Contains(t, stdout, "invalid (1/2 lines invalid)")
	require.Contains(t, stdout, "line 2: MissingSpaceAfterMetricName")
}

func TestRun_MissingFile(t *testing.T) {
	code, stdout, _ := runCLI("--log-level", "error", filepath.Join(t.TempDir(), "missing.txt"))

	require.Equal(t, exitInvalid, code)
	require.Contains(t, stdout, "FileNotFound")
}

func TestRun_DirectoryJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "up 1\n")
	writeFile(t, filepath.Join(dir, "b.txt"), "up{job=\"x\" 1\n")
	writeFile(t, filepath.Join(dir, "ignored.log"), "not a metric\n")

	code, stdout, _ := runCLI("--json", "--workers", "2", dir)
	require.Equal(t, exitInvalid, code)

	var out Output
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	require.False(t, out.Valid)
	require.Empty(t, out.Files)
	require.Len(t, out.Directories, 1)

	results := out.Directories[0]
	require.Equal(t, 2, results.FileCount)
	require.Equal(t, 1, results.InvalidFileCount)
	require.Equal(t, filepath.Join(dir, "a.txt"), results.FileSummaries[0].FilePath)
	require.Equal(t, "UnclosedLabelBrackets", string(results.FileSummaries[1].Errors[0].Reason))
}

func TestRun_Pattern(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.prom"), "up 1\n")
	writeFile(t, filepath.Join(dir, "b.txt"), "bad\n")

	code, stdout, _ := runCLI("--pattern", "*.prom", dir)

	require.Equal(t, exitValid, code)
	require.Contains(t, stdout, dir+": valid (0/1 files invalid)")
}

func TestRun_Dedup(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "up{job=\"a\"} 1\nup{job=\"b\"} 1\nbad\n")
	extra := filepath.Join(t.TempDir(), "extra.txt")
	writeFile(t, extra, "up{job=\"a\"} 5\n")

	code, stdout, _ := runCLI("--dedup", dir, extra)

	require.Equal(t, exitValid, code)
	require.Equal(t, "up{job=\"a\"} 5\nup{job=\"b\"} 1\n", stdout)
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no paths", nil},
		{"unknown flag", []string{"--bogus", "x"}},
		{"bad workers", []string{"--workers", "0", "x"}},
		{"bad pattern", []string{"--pattern", "[", "x"}},
		{"bad log level", []string{"--log-level", "loud", "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(tt.args...)
			require.Equal(t, exitUsage, code)
			require.Contains(t, stderr, "promcheck:")
		})
	}
}

func TestRun_Help(t *testing.T) {
	code, stdout, _ := runCLI("--help")

	require.Equal(t, exitValid, code)
	require.Contains(t, stdout, "--dedup")
}
