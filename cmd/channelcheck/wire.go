package main

import (
	"math"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/hamed0406/channelchecker/internal/config"
	"github.com/hamed0406/channelchecker/internal/ffmpeg"
	"github.com/hamed0406/channelchecker/internal/fleet"
	"github.com/hamed0406/channelchecker/internal/metrics"
	"github.com/hamed0406/channelchecker/internal/probe"
)

func newEvaluator(cfg config.Config, logger *zap.Logger, m *metrics.Metrics) *probe.Evaluator {
	httpChk := probe.NewHTTPChecker(cfg.HTTPTimeout)
	httpChk.UserAgent = cfg.UserAgent
	if cfg.RequestsPerSec > 0 {
		burst := int(math.Ceil(cfg.RequestsPerSec))
		httpChk.Limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), burst)
	}

	transport := &probe.RetryChecker{
		Inner:    httpChk,
		Attempts: cfg.RetryAttempts,
		Backoff:  cfg.RetryBackoff,
	}
	stream := &probe.RetryChecker{
		Inner: &probe.StreamChecker{
			Prober:  &ffmpeg.Prober{Path: cfg.FFprobePath, UserAgent: cfg.UserAgent},
			Timeout: cfg.ProbeTimeout,
		},
		Attempts: cfg.RetryAttempts,
		Backoff:  cfg.RetryBackoff,
	}
	capture := &probe.FrameCapturer{
		Extractor: &ffmpeg.Extractor{Path: cfg.FFmpegPath, UserAgent: cfg.UserAgent},
		Dir:       cfg.CaptureDir,
		Offset:    cfg.CaptureOffset,
		Timeout:   cfg.CaptureTimeout,
		Disabled:  !cfg.CaptureEnabled,
	}

	ev := probe.NewEvaluator(logger, transport, stream, capture)
	if m != nil {
		ev.Observer = m
	}
	return ev
}

func newRunner(cfg config.Config, logger *zap.Logger, m *metrics.Metrics) *fleet.Runner {
	return fleet.NewRunner(logger, newEvaluator(cfg, logger, m), cfg.Concurrency, cfg.RunDeadline, m)
}
