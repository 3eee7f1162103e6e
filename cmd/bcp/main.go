package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bamsammich/bcp/internal/config"
	"github.com/bamsammich/bcp/internal/engine"
	"github.com/bamsammich/bcp/internal/size"
	"github.com/bamsammich/bcp/internal/stats"
	"github.com/bamsammich/bcp/internal/ui"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// countFlag is a pflag.Value for --count. It keeps "not given" distinct from
// an explicit zero so the engine can default to the rest of the source.
type countFlag struct {
	n *int64
}

func (f *countFlag) String() string {
	if f.n == nil {
		return ""
	}
	return strconv.FormatInt(*f.n, 10)
}

func (*countFlag) Type() string { return "size" }

func (f *countFlag) Set(val string) error {
	n, err := size.Parse(val)
	if err != nil {
		return err
	}
	f.n = &n
	return nil
}

// sizeFlag is a pflag.Value for plain byte offsets that also accepts size
// suffixes.
type sizeFlag struct {
	n *int64
}

func (f sizeFlag) String() string { return strconv.FormatInt(*f.n, 10) }
func (sizeFlag) Type() string     { return "size" }

func (f sizeFlag) Set(val string) error {
	n, err := size.Parse(val)
	if err != nil {
		return err
	}
	*f.n = n
	return nil
}

var (
	_ pflag.Value = (*countFlag)(nil)
	_ pflag.Value = sizeFlag{}
)

type options struct {
	srcOffset   int64
	dstOffset   int64
	count       countFlag
	verbose     bool
	quiet       bool
	verify      bool
	bwLimitStr  string
	logFile     string
	showVersion bool
}

func run(args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd(stdout, stderr)
	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts options

	rootCmd := &cobra.Command{
		Use:   "bcp [flags] <source> <destination>",
		Short: "Copy a byte range from one file into another",
		Long: `Copy count bytes starting at src-offset in SOURCE to dst-offset in DESTINATION.

The destination is opened read-write and never truncated: bytes outside the
written range are left as they were, and writing past its end extends it.
A missing destination is created, but only for a destination offset of 0.
Source and destination may be the same file, including overlapping ranges.

A source named gen-docs is taken as the docs command; pass it as ./gen-docs.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.showVersion {
				return nil
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.showVersion {
				fmt.Fprintf(stdout, "bcp %s\n", version)
				return nil
			}
			return runCopy(cmd, &opts, args[0], args[1], stderr)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	flags := rootCmd.Flags()
	flags.BoolVar(&opts.showVersion, "version", false, "print version and exit")
	flags.VarP(sizeFlag{&opts.srcOffset}, "src-offset", "s", "byte offset to start reading the source at")
	flags.VarP(sizeFlag{&opts.dstOffset}, "dst-offset", "d", "byte offset to start writing the destination at")
	flags.VarP(&opts.count, "count", "c", "number of bytes to copy, e.g. 4096 or 64K (default: rest of source)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "show progress and debug logging")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress all output except errors")
	flags.BoolVar(&opts.verify, "verify", false, "verify the copied range with BLAKE3")
	flags.StringVar(&opts.bwLimitStr, "bwlimit", "", "bandwidth limit (e.g. 100M, 1G)")
	flags.StringVar(&opts.logFile, "log", "", "append a structured JSON log to FILE")

	rootCmd.AddCommand(newDocsCmd())
	return rootCmd
}

func runCopy(cmd *cobra.Command, opts *options, src, dst string, stderr io.Writer) error {
	// Load optional config file.
	cfg, cfgErr := config.Load()
	applyConfigDefaults(cmd, cfg.Defaults, opts)

	var bwLimit int64
	if opts.bwLimitStr != "" {
		var err error
		bwLimit, err = size.Parse(opts.bwLimitStr)
		if err != nil {
			return fmt.Errorf("invalid --bwlimit: %w", err)
		}
	}

	// Configure logging.
	logLevel := slog.LevelInfo
	switch {
	case opts.quiet:
		logLevel = slog.LevelWarn
	case opts.verbose:
		logLevel = slog.LevelDebug
	}
	textHandler := slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	var logHandler slog.Handler = textHandler
	if opts.logFile != "" {
		lf, err := os.OpenFile(opts.logFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer lf.Close()
		jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
		logHandler = ui.NewMultiHandler(textHandler, jsonHandler)
	}
	logger := slog.New(logHandler).With("copy_id", uuid.NewString())
	prevLogger := slog.Default()
	slog.SetDefault(logger)
	defer slog.SetDefault(prevLogger)

	if cfgErr != nil {
		slog.Warn("failed to load config", "error", cfgErr)
	}

	// Set up context with signal handling.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := stats.NewCollector()
	// Redraw only when writing straight to a terminal.
	var tty ui.Terminal
	if stderr == io.Writer(os.Stderr) {
		tty = ui.DetectTerminal(os.Stderr)
	}
	progress := ui.NewProgress(ui.Config{
		Writer:  stderr,
		Stats:   collector,
		Label:   src + " -> " + dst,
		Width:   tty.Width,
		IsTTY:   tty.IsTTY,
		Quiet:   opts.quiet,
		Verbose: opts.verbose,
	})

	engineOpts := engine.Options{
		Progress: progress,
		Verify:   opts.verify,
	}
	if bwLimit > 0 {
		engineOpts.Limiter = engine.NewBWLimiter(bwLimit)
	}

	req := engine.Request{
		SrcPath:   src,
		DstPath:   dst,
		SrcOffset: opts.srcOffset,
		DstOffset: opts.dstOffset,
		Count:     opts.count.n,
	}
	slog.Debug("starting copy",
		"src", src,
		"dst", dst,
		"src_offset", req.SrcOffset,
		"dst_offset", req.DstOffset,
		"count", opts.count.String(),
		"verify", opts.verify,
		"bwlimit", bwLimit,
	)

	result := engine.Run(ctx, req, engineOpts)

	if opts.verbose && !opts.quiet && result.Plan != nil {
		summary := progress.Summary()
		if result.Err != nil {
			summary = ui.CompletionSummary(collector.Snapshot(), result.Err)
		}
		if summary != "" {
			fmt.Fprintln(stderr, summary)
		}
	}

	if result.Err != nil {
		slog.Debug("copy failed", "error", result.Err, "copied", result.Copied)
		fmt.Fprintf(stderr, "Error: %v\n", result.Err)
		return &exitError{code: exitCode(result.Err)}
	}

	slog.Debug("copy complete", "bytes", result.Copied)
	return nil
}

// applyConfigDefaults applies config file defaults for flags not explicitly set on the CLI.
func applyConfigDefaults(cmd *cobra.Command, defaults config.DefaultsConfig, opts *options) {
	if !cmd.Flags().Changed("verbose") && defaults.Verbose != nil {
		opts.verbose = *defaults.Verbose
	}
	if !cmd.Flags().Changed("verify") && defaults.Verify != nil {
		opts.verify = *defaults.Verify
	}
	if !cmd.Flags().Changed("bwlimit") && defaults.BWLimit != nil {
		opts.bwLimitStr = *defaults.BWLimit
	}
	if !cmd.Flags().Changed("log") && defaults.Log != nil {
		opts.logFile = *defaults.Log
	}
}

// exitCode maps a copy error to the process exit status: 2 when the request
// was rejected before anything was written, 1 when the copy failed part way.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case engine.KindOf(err).Validation():
		return 2
	default:
		return 1
	}
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
