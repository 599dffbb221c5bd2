package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hamed0406/channelchecker/internal/config"
	"github.com/hamed0406/channelchecker/internal/logging"
	"github.com/hamed0406/channelchecker/internal/metrics"
	"github.com/hamed0406/channelchecker/internal/notify"
	"github.com/hamed0406/channelchecker/internal/playlist"
	"github.com/hamed0406/channelchecker/internal/report"
)

const (
	exitHealthy   = 0
	exitUnhealthy = 1
	exitUsage     = 2
)

// exitError carries a specific exit status out of RunE.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func setupError(format string, args ...any) error {
	return &exitError{code: exitUsage, err: fmt.Errorf(format, args...)}
}

type options struct {
	local       string
	verbose     int
	concurrency int
	captures    string
	noCapture   bool
	deadline    time.Duration
	report      string
	metricsFile string
	logDir      string
}

func run(args []string, stdout, stderr io.Writer) int {
	code := exitHealthy
	cmd := newRootCmd(stdout, &code)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		var ee *exitError
		if errors.As(err, &ee) {
			return ee.code
		}
		// flag parsing and missing required flags
		fmt.Fprint(stderr, cmd.UsageString())
		return exitUsage
	}
	return code
}

func newRootCmd(stdout io.Writer, code *int) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "channelcheck --local <playlist.m3u>",
		Short: "Check which channels of an M3U playlist are watchable",
		Long: `channelcheck validates each playlist entry's address, requests it over
HTTP, confirms a decodable audio or video stream with ffprobe, and grabs
one frame with ffmpeg as evidence. A channel is healthy when the first
three stages pass.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return &exitError{code: exitUsage, err: err}
			}
			if err := applyFlags(cmd, opts, &cfg); err != nil {
				return &exitError{code: exitUsage, err: err}
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c, err := checkPlaylist(ctx, stdout, opts, cfg)
			*code = c
			return err
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.local, "local", "l", "", "path to the M3U playlist (required)")
	f.CountVarP(&opts.verbose, "verbose", "v", "increase log verbosity (-v info, -vv debug)")
	f.IntVarP(&opts.concurrency, "concurrency", "c", 0, "channels evaluated at once (default from MAX_CONCURRENT_CHECKS, 4)")
	f.StringVar(&opts.captures, "captures", "", "directory for captured frames (default from CAPTURE_DIR)")
	f.BoolVar(&opts.noCapture, "no-capture", false, "skip the frame capture stage")
	f.DurationVar(&opts.deadline, "deadline", 0, "wall-clock budget for the whole run, e.g. 5m (0 = none)")
	f.StringVar(&opts.report, "report", "", "also write a structured report (.json, .yaml)")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics in textfile format")
	f.StringVar(&opts.logDir, "log-dir", "", "directory for a rotating JSON log")
	_ = cmd.MarkFlagRequired("local")
	return cmd
}

// applyFlags overrides env configuration with explicitly set flags.
func applyFlags(cmd *cobra.Command, opts options, cfg *config.Config) error {
	f := cmd.Flags()
	if f.Changed("concurrency") {
		cfg.Concurrency = opts.concurrency
	}
	if f.Changed("captures") {
		cfg.CaptureDir = opts.captures
	}
	if opts.noCapture {
		cfg.CaptureEnabled = false
	}
	if f.Changed("deadline") {
		cfg.RunDeadline = opts.deadline
	}
	if f.Changed("report") {
		cfg.ReportPath = opts.report
	}
	if f.Changed("metrics-file") {
		cfg.MetricsPath = opts.metricsFile
	}
	if f.Changed("log-dir") {
		cfg.LogDir = opts.logDir
	}
	return cfg.Validate()
}

func checkPlaylist(ctx context.Context, stdout io.Writer, opts options, cfg config.Config) (int, error) {
	logger, err := logging.NewLogger(cfg.LogDir, opts.verbose)
	if err != nil {
		return exitUsage, setupError("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	entries, err := playlist.Load(opts.local)
	switch {
	case errors.Is(err, playlist.ErrPartial):
		logger.Warn("playlist_partial", zap.String("path", opts.local), zap.Error(err))
	case err != nil:
		return exitUsage, setupError("%w", err)
	}
	logger.Info("playlist_loaded", zap.String("path", opts.local), zap.Int("entries", len(entries)))

	m := metrics.New()
	runner := newRunner(cfg, logger, m)
	rep := runner.Run(ctx, entries)

	if err := report.Print(stdout, rep); err != nil {
		logger.Error("report_print_error", zap.Error(err))
	}

	var errs []error
	if cfg.ReportPath != "" {
		if err := report.WriteFile(cfg.ReportPath, rep); err != nil {
			errs = append(errs, err)
		}
	}
	if err := m.WriteTextfile(cfg.MetricsPath); err != nil {
		errs = append(errs, fmt.Errorf("write metrics %s: %w", cfg.MetricsPath, err))
	}
	if s := notify.NewSlack(cfg.SlackWebhook); s != nil {
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
		if err := notify.SendReport(nctx, s, rep); err != nil {
			logger.Warn("notify_error", zap.Error(err))
		}
		cancel()
	}
	if err := errors.Join(errs...); err != nil {
		return exitUsage, &exitError{code: exitUsage, err: err}
	}

	if !rep.AnyHealthy {
		return exitUnhealthy, nil
	}
	return exitHealthy, nil
}
