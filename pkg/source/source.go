// Package source provides the file enumeration and line reading the validators
// run on top of. The validators only see the FileLister and LineReader
// interfaces; FS is the filesystem-backed implementation of both.
package source

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// DefaultPattern matches candidate exposition files
	DefaultPattern = "*.txt"

	// DefaultMaxLineBytes caps a single line; longer lines fail the read
	DefaultMaxLineBytes = 1024 * 1024
)

// FileLister enumerates candidate files inside a directory
type FileLister interface {
	// ListCandidateFiles returns matching files directly inside dir, in a stable order.
	// An unreadable directory yields an empty list, not an error.
	ListCandidateFiles(dir string) []string
}

// LineReader opens a file for sequential line reading
type LineReader interface {
	ReadLines(path string) (Lines, error)
}

// Lines is a finite, non-restartable sequence of raw lines with
// trailing line terminators stripped.
type Lines interface {
	Next() bool
	Text() string
	Err() error
	Close() error
}

// FS lists and reads files on the local filesystem
type FS struct {
	// Pattern is a doublestar glob relative to the listed directory (default "*.txt")
	Pattern string

	// MaxLineBytes caps the length of a single line (default 1 MiB)
	MaxLineBytes int
}

// NewFS creates a filesystem source with default settings
func NewFS() *FS {
	return &FS{Pattern: DefaultPattern, MaxLineBytes: DefaultMaxLineBytes}
}

// ListCandidateFiles returns regular files in dir matching the pattern, sorted by name
func (f *FS) ListCandidateFiles(dir string) []string {
	pattern := f.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}

	matches, err := doublestar.Glob(os.DirFS(dir), pattern, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
	if err != nil {
		return []string{}
	}

	sort.Strings(matches)
	files := make([]string, 0, len(matches))
	for _, m := range matches {
		files = append(files, filepath.Join(dir, filepath.FromSlash(m)))
	}
	return files
}

// ReadLines opens path and returns a line iterator over it
func (f *FS) ReadLines(path string) (Lines, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return NewLines(file, f.MaxLineBytes), nil
}

// scannerLines adapts bufio.Scanner to Lines
type scannerLines struct {
	*bufio.Scanner
	closer io.Closer
}

// NewLines wraps r in a line iterator. CRLF endings are normalized by the
// scanner. If r implements io.Closer, Close closes it.
func NewLines(r io.Reader, maxLineBytes int) Lines {
	if maxLineBytes <= 0 {
		maxLineBytes = DefaultMaxLineBytes
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, min(64*1024, maxLineBytes)), maxLineBytes)

	l := &scannerLines{Scanner: scanner}
	if c, ok := r.(io.Closer); ok {
		l.closer = c
	}
	return l
}

func (l *scannerLines) Next() bool {
	return l.Scan()
}

func (l *scannerLines) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
