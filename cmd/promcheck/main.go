// Command promcheck validates Prometheus text exposition files from the shell.
//
//	promcheck ./data/metrics node.txt
//	promcheck --json ./data/metrics
//	promcheck --dedup ./data/metrics > merged.txt
//
// Exit status is 0 when every input is valid, 1 when any input is invalid or
// unreadable and 2 on usage errors.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/jessevdk/go-flags"

	"github.com/nicktill/promcheck/pkg/canon"
	"github.com/nicktill/promcheck/pkg/config"
	"github.com/nicktill/promcheck/pkg/logging"
	"github.com/nicktill/promcheck/pkg/source"
	"github.com/nicktill/promcheck/pkg/validate"
)

const (
	exitValid   = 0
	exitInvalid = 1
	exitUsage   = 2
)

// Options defines command line options
type Options struct {
	JSON     bool   `short:"j" long:"json" description:"print results as JSON"`
	Dedup    bool   `short:"d" long:"dedup" description:"print the deduplicated series of all inputs instead of a report"`
	Workers  int    `short:"w" long:"workers" description:"files validated in parallel per directory" default:"4"`
	Pattern  string `short:"p" long:"pattern" description:"glob selecting candidate files in a directory" default:"*.txt"`
	LogLevel string `short:"l" long:"log-level" description:"debug, info, warn or error" default:"warn"`
	NoColor  bool   `long:"no-color" description:"disable colored log output"`

	Args struct {
		Paths []string `positional-arg-name:"PATH" required:"1" description:"files or directories to validate"`
	} `positional-args:"yes"`
}

// Output is the JSON document printed with --json
type Output struct {
	Valid       bool                        `json:"valid"`
	Files       []validate.FileSummary      `json:"files"`
	Directories []validate.DirectoryResults `json:"directories"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var opts Options
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "promcheck"

	if _, err := parser.ParseArgs(args); err != nil {
		if flags.WroteHelp(err) {
			fmt.Fprintln(stdout, err)
			return exitValid
		}
		fmt.Fprintln(stderr, "promcheck:", err)
		return exitUsage
	}

	if _, err := logging.ParseLevel(opts.LogLevel); err != nil {
		fmt.Fprintln(stderr, "promcheck:", err)
		return exitUsage
	}
	if opts.Workers < 1 || opts.Workers > config.MaxWorkers {
		fmt.Fprintf(stderr, "promcheck: workers must be between 1 and %d\n", config.MaxWorkers)
		return exitUsage
	}
	if !doublestar.ValidatePattern(opts.Pattern) {
		fmt.Fprintf(stderr, "promcheck: invalid pattern %q\n", opts.Pattern)
		return exitUsage
	}

	logger := logging.New(logging.Options{
		Level:   opts.LogLevel,
		NoColor: opts.NoColor,
		Output:  stderr,
	})

	fsys := source.NewFS()
	fsys.Pattern = opts.Pattern

	if opts.Dedup {
		return dedup(fsys, opts.Args.Paths, stdout, logger)
	}

	validator := validate.New(fsys, fsys,
		validate.WithWorkers(opts.Workers),
		validate.WithLogger(logger),
	)

	out := Output{
		Valid:       true,
		Files:       []validate.FileSummary{},
		Directories: []validate.DirectoryResults{},
	}
	for _, path := range opts.Args.Paths {
		if isDir(path) {
			results := validator.ValidateDirectory(path)
			out.Directories = append(out.Directories, results)
			out.Valid = out.Valid && results.Valid()
			continue
		}
		summary := validator.ValidateFile(path)
		out.Files = append(out.Files, summary)
		out.Valid = out.Valid && summary.IsValid
	}

	if opts.JSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			logger.Error("failed to write output", "error", err)
			return exitInvalid
		}
	} else {
		printHuman(stdout, out)
	}

	if !out.Valid {
		return exitInvalid
	}
	return exitValid
}

// dedup prints the canonical series of all inputs, later lines winning
func dedup(fsys *source.FS, paths []string, stdout io.Writer, logger *slog.Logger) int {
	var (
		set    canon.Set
		failed bool
	)

	add := func(path string) {
		if err := set.AddFile(fsys, path); err != nil {
			logger.Error("failed to read file", "path", path, "error", err)
			failed = true
		}
	}

	for _, path := range paths {
		if !isDir(path) {
			add(path)
			continue
		}
		for _, file := range fsys.ListCandidateFiles(path) {
			add(file)
		}
	}

	if _, err := canon.WriteTo(stdout, set.Lines()); err != nil {
		logger.Error("failed to write output", "error", err)
		return exitInvalid
	}
	if failed {
		return exitInvalid
	}
	return exitValid
}

func printHuman(w io.Writer, out Output) {
	for _, results := range out.Directories {
		if results.Reason != "" {
			fmt.Fprintf(w, "%s: %s: %s\n", results.DirectoryPath, results.Reason, results.Detail)
			continue
		}
		fmt.Fprintf(w, "%s: %s (%d/%d files invalid)\n",
			results.DirectoryPath, results.OverallStatus, results.InvalidFileCount, results.FileCount)
		for _, summary := range results.FileSummaries {
			printFile(w, "  ", summary)
		}
	}
	for _, summary := range out.Files {
		printFile(w, "", summary)
	}
}

func printFile(w io.Writer, indent string, s validate.FileSummary) {
	if s.IsValid {
		fmt.Fprintf(w, "%s%s: valid (%d lines)\n", indent, s.FilePath, s.TotalLines)
		return
	}
	fmt.Fprintf(w, "%s%s: invalid (%d/%d lines invalid)\n", indent, s.FilePath, s.InvalidLines, s.TotalLines)
	for _, e := range s.Errors {
		msg := string(e.Reason)
		if e.Detail != "" {
			msg += ": " + e.Detail
		}
		fmt.Fprintf(w, "%s  line %d: %s: %q\n", indent, e.LineNumber, msg, e.RawContent)
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
