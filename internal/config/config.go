package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	LogDir         string        `envconfig:"LOG_DIR"`                           // rotating JSON log; empty disables the file sink
	CaptureDir     string        `envconfig:"CAPTURE_DIR" default:"captures"`    // frame artifacts
	CaptureEnabled bool          `envconfig:"CAPTURE_ENABLED" default:"true"`    // FrameCapture stage on/off
	Concurrency    int           `envconfig:"MAX_CONCURRENT_CHECKS" default:"4"` // worker pool size
	HTTPTimeout    time.Duration `envconfig:"HTTP_TIMEOUT" default:"5s"`
	ProbeTimeout   time.Duration `envconfig:"PROBE_TIMEOUT" default:"10s"`
	CaptureTimeout time.Duration `envconfig:"CAPTURE_TIMEOUT" default:"30s"`
	CaptureOffset  time.Duration `envconfig:"CAPTURE_OFFSET" default:"2s"`
	RetryAttempts  int           `envconfig:"RETRY_ATTEMPTS" default:"2"` // timeouts only, capped at 2
	RetryBackoff   time.Duration `envconfig:"RETRY_BACKOFF" default:"300ms"`
	RunDeadline    time.Duration `envconfig:"RUN_DEADLINE" default:"0"` // 0 means no fleet-wide budget
	RequestsPerSec float64       `envconfig:"REQUESTS_PER_SECOND" default:"0"`
	FFprobePath    string        `envconfig:"FFPROBE_PATH" default:"ffprobe"`
	FFmpegPath     string        `envconfig:"FFMPEG_PATH" default:"ffmpeg"`
	UserAgent      string        `envconfig:"USER_AGENT" default:"channelcheck/1.0"`
	SlackWebhook   string        `envconfig:"SLACK_WEBHOOK_URL"`
	ReportPath     string        `envconfig:"REPORT_PATH"`
	MetricsPath    string        `envconfig:"METRICS_PATH"`
}

// MaxRetryAttempts bounds timeout retries to a single retry.
const MaxRetryAttempts = 2

func FromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate clamps soft limits and rejects values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.RetryAttempts < 1 {
		c.RetryAttempts = 1
	}
	if c.RetryAttempts > MaxRetryAttempts {
		c.RetryAttempts = MaxRetryAttempts
	}
	if c.RetryBackoff < 0 {
		c.RetryBackoff = 0
	}
	if c.RunDeadline < 0 {
		c.RunDeadline = 0
	}

	var errs []error
	if c.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency must be >= 1, got %d", c.Concurrency))
	}
	for name, d := range map[string]time.Duration{
		"HTTP_TIMEOUT":    c.HTTPTimeout,
		"PROBE_TIMEOUT":   c.ProbeTimeout,
		"CAPTURE_TIMEOUT": c.CaptureTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}
	if c.CaptureOffset < 0 {
		errs = append(errs, fmt.Errorf("CAPTURE_OFFSET must not be negative, got %s", c.CaptureOffset))
	}
	if c.CaptureEnabled && c.CaptureDir == "" {
		errs = append(errs, errors.New("CAPTURE_DIR is empty while capture is enabled"))
	}
	return errors.Join(errs...)
}
