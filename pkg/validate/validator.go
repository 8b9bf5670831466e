// Package validate aggregates line validation results per file and per directory.
package validate

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/sourcegraph/conc/iter"

	"github.com/nicktill/promcheck/pkg/exposition"
	"github.com/nicktill/promcheck/pkg/source"
)

// Validator runs the line parser over files and directories.
// It holds no per-run state and is safe for concurrent use.
type Validator struct {
	lister  source.FileLister
	reader  source.LineReader
	statDir func(path string) error
	workers int
	logger  *slog.Logger
}

// Option configures a Validator
type Option func(*Validator)

// WithWorkers validates up to n files of a directory in parallel.
// Results keep the enumeration order regardless of n.
func WithWorkers(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.workers = n
		}
	}
}

// WithLogger sets the logger used for file-level failures
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// New creates a validator on top of the given collaborators
func New(lister source.FileLister, reader source.LineReader, opts ...Option) *Validator {
	v := &Validator{
		lister:  lister,
		reader:  reader,
		statDir: statDir,
		workers: 1,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// NewFS creates a validator reading from the local filesystem
func NewFS(opts ...Option) *Validator {
	fsys := source.NewFS()
	return New(fsys, fsys, opts...)
}

// ValidateFile validates every line of the file at path.
// Failing to open or read the file is recorded in the summary, never returned.
func (v *Validator) ValidateFile(path string) FileSummary {
	summary := FileSummary{
		FilePath: path,
		Errors:   []LineError{},
	}

	lines, err := v.reader.ReadLines(path)
	if err != nil {
		reason := IOError
		if errors.Is(err, fs.ErrNotExist) {
			reason = FileNotFound
		}
		v.logger.Warn("cannot open file", "path", path, "reason", reason, "error", err)
		summary.Errors = append(summary.Errors, LineError{
			LineNumber: 0,
			Reason:     reason,
			Detail:     err.Error(),
		})
		return summary
	}
	defer lines.Close()

	for lines.Next() {
		raw := lines.Text()
		summary.TotalLines++

		if strings.TrimSpace(raw) == "" {
			continue
		}

		if _, err := exposition.ParseLine(raw); err != nil {
			summary.InvalidLines++
			summary.Errors = append(summary.Errors, LineError{
				LineNumber: summary.TotalLines,
				Reason:     exposition.KindOf(err),
				Detail:     detailOf(err),
				RawContent: raw,
			})
			continue
		}
		summary.ValidLines++
	}

	if err := lines.Err(); err != nil {
		v.logger.Warn("read failed", "path", path, "after_lines", summary.TotalLines, "error", err)
		summary.Errors = append(summary.Errors, LineError{
			LineNumber: 0,
			Reason:     IOError,
			Detail:     fmt.Sprintf("read failed after line %d: %v", summary.TotalLines, err),
		})
		return summary
	}

	summary.IsValid = summary.InvalidLines == 0
	return summary
}

// ValidateDirectory validates every candidate file directly inside path.
// A missing directory aborts the run with no file summaries; a missing or
// unreadable file only fails its own summary.
func (v *Validator) ValidateDirectory(path string) DirectoryResults {
	results := DirectoryResults{
		DirectoryPath: path,
		FileSummaries: []FileSummary{},
		OverallStatus: StatusInvalid,
	}

	if err := v.statDir(path); err != nil {
		v.logger.Warn("directory unavailable", "path", path, "error", err)
		results.Reason = DirectoryNotFound
		results.Detail = err.Error()
		return results
	}

	files := v.lister.ListCandidateFiles(path)

	var summaries []FileSummary
	if v.workers > 1 && len(files) > 1 {
		mapper := iter.Mapper[string, FileSummary]{MaxGoroutines: v.workers}
		summaries = mapper.Map(files, func(file *string) FileSummary {
			return v.ValidateFile(*file)
		})
	} else {
		summaries = make([]FileSummary, 0, len(files))
		for _, file := range files {
			summaries = append(summaries, v.ValidateFile(file))
		}
	}

	for _, s := range summaries {
		results.FileCount++
		if s.IsValid {
			results.ValidFileCount++
		} else {
			results.InvalidFileCount++
		}
		results.FileSummaries = append(results.FileSummaries, s)
	}

	if results.InvalidFileCount == 0 {
		results.OverallStatus = StatusValid
	}

	v.logger.Debug("directory validated",
		"path", path,
		"files", results.FileCount,
		"invalid_files", results.InvalidFileCount,
	)
	return results
}

// statDir fails unless path exists and is a directory
func statDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

func detailOf(err error) string {
	var pe *exposition.ParseError
	if errors.As(err, &pe) {
		return pe.Detail
	}
	return err.Error()
}
