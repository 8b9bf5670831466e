// Package canon deduplicates parsed series for re-emission to Prometheus scrapers.
//
// Lines are keyed by their series identity (metric name plus name-sorted
// labels). When a key repeats, the later raw line replaces the earlier one but
// keeps the position of the key's first appearance. Output lines are the
// original input text, never a re-serialization.
package canon

import (
	"io"
	"strings"

	"github.com/nicktill/promcheck/pkg/exposition"
	"github.com/nicktill/promcheck/pkg/source"
)

// ContentType is the Prometheus text format content type served with the output
const ContentType = "text/plain; version=0.0.4"

// Set is an insertion-ordered map from identity key to raw line.
// The zero value is ready to use. Set is not safe for concurrent use.
type Set struct {
	index map[string]int // key -> position in lines
	lines []string
}

// Add records a parsed line. Invalid outcomes are ignored.
func (s *Set) Add(o exposition.Outcome) {
	if !o.Valid() {
		return
	}
	s.Put(o.Record.IdentityKey(), o.Raw)
}

// AddLine parses raw and records it when valid
func (s *Set) AddLine(raw string) {
	s.Add(exposition.Parse(raw))
}

// Put stores raw under key, replacing any earlier line with the same key
func (s *Set) Put(key, raw string) {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if pos, ok := s.index[key]; ok {
		s.lines[pos] = raw
		return
	}
	s.index[key] = len(s.lines)
	s.lines = append(s.lines, raw)
}

// Lines returns the retained raw lines in first-insertion order
func (s *Set) Lines() []string {
	out := make([]string, len(s.lines))
	copy(out, s.lines)
	return out
}

// Len returns the number of distinct series
func (s *Set) Len() int {
	return len(s.lines)
}

// Canonicalize deduplicates outcomes in encounter order
func Canonicalize(outcomes []exposition.Outcome) []string {
	var s Set
	for _, o := range outcomes {
		s.Add(o)
	}
	return s.Lines()
}

// Collect runs every candidate file of dir through a Set, in enumeration
// order then line order. Files that cannot be read are skipped; the first
// such error is returned alongside the lines collected from the others.
func Collect(lister source.FileLister, reader source.LineReader, dir string) ([]string, error) {
	var (
		s        Set
		firstErr error
	)

	for _, path := range lister.ListCandidateFiles(dir) {
		if err := s.AddFile(reader, path); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return s.Lines(), firstErr
}

// AddFile records every valid line of the file at path
func (s *Set) AddFile(reader source.LineReader, path string) error {
	lines, err := reader.ReadLines(path)
	if err != nil {
		return err
	}
	defer lines.Close()

	for lines.Next() {
		s.AddLine(lines.Text())
	}
	return lines.Err()
}

// WriteTo writes lines newline-joined, with a trailing newline when non-empty
func WriteTo(w io.Writer, lines []string) (int64, error) {
	if len(lines) == 0 {
		return 0, nil
	}
	n, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return int64(n), err
}
