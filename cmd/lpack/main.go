// Command lpack packs files and directories into a single archive, or
// unpacks such an archive.
//
//	lpack [flags] FILE... OUTFILE   pack FILEs into OUTFILE
//	lpack [flags] INFILE            unpack INFILE into the current directory
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/meigma/lpack"
)

// Exit codes.
const (
	exitFailure = 1
	exitUsage   = 2
)

// exitError carries the exit code for a failed run.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func main() {
	os.Exit(exitStatus(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr)))
}

// exitStatus maps the result of run to a process exit code.
func exitStatus(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	return exitFailure
}

// config holds the parsed command line.
type config struct {
	dest     string
	quiet    bool
	sorted   bool
	logLevel slog.Level
	operands []string
}

// run encapsulates the command so it can be tested without exiting.
// Command-line errors are printed after the usage text; failures of the
// operation itself are logged at error level.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, help, err := parseArgs(args, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "lpack: %v\n", err)
		return err
	}
	if help {
		printUsage(stdout)
		return nil
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.logLevel}))

	var stats lpack.Stats
	if len(cfg.operands) > 1 {
		stats, err = pack(ctx, cfg, logger, stdout)
	} else {
		stats, err = unpack(ctx, cfg, logger, stdout)
	}
	if err != nil {
		logger.Error("lpack failed", "error", err)
		return &exitError{code: exitFailure, err: err}
	}

	if !cfg.quiet {
		fmt.Fprintf(stdout, "%d files, %d directories, %s", stats.Files, stats.Dirs, humanize.Bytes(uint64(stats.Bytes))) //nolint:gosec // sizes are non-negative
		if stats.Skipped > 0 {
			fmt.Fprintf(stdout, ", %d skipped", stats.Skipped)
		}
		fmt.Fprintln(stdout)
	}
	return nil
}

// parseArgs parses flags and operands. It reports help separately so the
// caller can print usage to stdout and exit successfully.
func parseArgs(args []string, stderr io.Writer) (config, bool, error) {
	var (
		cfg      config
		logLevel string
	)

	flagSet := pflag.NewFlagSet("lpack", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVarP(&cfg.dest, "directory", "C", ".", "unpack into `DIR` instead of the current directory")
	flagSet.BoolVarP(&cfg.quiet, "quiet", "q", false, "do not list entries")
	flagSet.BoolVar(&cfg.sorted, "sort", false, "pack directory children in name order")
	flagSet.StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, or error")
	help := flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return cfg, true, nil
		}
		printUsage(stderr)
		return cfg, false, &exitError{code: exitUsage, err: err}
	}
	if *help {
		return cfg, true, nil
	}

	if err := cfg.logLevel.UnmarshalText([]byte(strings.ToLower(logLevel))); err != nil {
		return cfg, false, &exitError{code: exitUsage, err: fmt.Errorf("invalid --log-level %q", logLevel)}
	}

	cfg.operands = flagSet.Args()
	if len(cfg.operands) == 0 {
		printUsage(stderr)
		return cfg, false, &exitError{code: exitUsage, err: errors.New("missing operands")}
	}
	if len(cfg.operands) > 1 && flagSet.Changed("directory") {
		return cfg, false, &exitError{code: exitUsage, err: errors.New("--directory only applies when unpacking")}
	}
	return cfg, false, nil
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `Usage:
  lpack [flags] FILE... OUTFILE   pack FILEs into OUTFILE, overwriting it
  lpack [flags] INFILE            unpack INFILE into the current directory

Flags:
  -C, --directory DIR     unpack into DIR instead of the current directory
  -q, --quiet             do not list entries
      --sort              pack directory children in name order
      --log-level LEVEL   debug, info, warn, or error (default warn)
  -h, --help              show help
`)
}

func pack(ctx context.Context, cfg config, logger *slog.Logger, stdout io.Writer) (lpack.Stats, error) {
	inputs := cfg.operands[:len(cfg.operands)-1]
	output := cfg.operands[len(cfg.operands)-1]

	opts := []lpack.PackOption{
		lpack.PackWithLogger(logger),
		lpack.PackWithSortedEntries(cfg.sorted),
	}
	if !cfg.quiet {
		fmt.Fprintln(stdout, "Contents of Archive:")
		opts = append(opts, lpack.PackWithProgress(listing(stdout, lpack.StagePacking)))
	}
	return lpack.PackFiles(ctx, output, inputs, opts...)
}

func unpack(ctx context.Context, cfg config, logger *slog.Logger, stdout io.Writer) (lpack.Stats, error) {
	opts := []lpack.UnpackOption{
		lpack.UnpackWithLogger(logger),
	}
	if !cfg.quiet {
		fmt.Fprintln(stdout, "Contents of Extracted Archive:")
		opts = append(opts, lpack.UnpackWithProgress(listing(stdout, lpack.StageUnpacking)))
	}
	return lpack.UnpackFile(ctx, cfg.operands[0], cfg.dest, opts...)
}

// listing prints one line per entry of the given stage, indented two
// spaces per level with top-level entries indented once.
func listing(w io.Writer, stage lpack.ProgressStage) lpack.ProgressFunc {
	return func(e lpack.ProgressEvent) {
		if e.Stage != stage {
			return
		}
		name := e.Entry.Name
		if e.Entry.Kind == lpack.KindDir {
			name += "/"
		}
		fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", e.Entry.Depth+1), name)
	}
}
