// Package fleet evaluates a whole playlist with bounded concurrency and
// folds the verdicts into a report.
package fleet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/channelchecker/internal/domain"
	"github.com/hamed0406/channelchecker/internal/metrics"
)

const DefaultConcurrency = 4

// Evaluator produces the verdict for one entry.
type Evaluator interface {
	Evaluate(ctx context.Context, e domain.Entry) domain.Verdict
}

type Runner struct {
	Logger      *zap.Logger
	Evaluator   Evaluator
	Concurrency int
	// Deadline is the wall-clock budget for the whole run; 0 means none.
	Deadline time.Duration
	Metrics  *metrics.Metrics
}

func NewRunner(
	logger *zap.Logger,
	ev Evaluator,
	concurrency int,
	deadline time.Duration,
	m *metrics.Metrics,
) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	if deadline < 0 {
		deadline = 0
	}
	return &Runner{
		Logger:      logger,
		Evaluator:   ev,
		Concurrency: concurrency,
		Deadline:    deadline,
		Metrics:     m,
	}
}

// Run evaluates every entry and returns the report in playlist order.
// It returns once all workers have exited.
func (r *Runner) Run(ctx context.Context, entries []domain.Entry) domain.Report {
	rep := domain.Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	log := r.Logger.With(zap.String("run_id", rep.RunID))
	log.Info("run_started",
		zap.Int("channels", len(entries)),
		zap.Int("concurrency", r.Concurrency),
		zap.Duration("deadline", r.Deadline),
	)

	runCtx, cancel := ctx, context.CancelFunc(func() {})
	if r.Deadline > 0 {
		runCtx, cancel = context.WithTimeout(ctx, r.Deadline)
	}
	defer cancel()

	// Each slot has exactly one writer: the worker for that index.
	verdicts := make([]domain.Verdict, len(entries))
	started := make([]bool, len(entries))

	var g errgroup.Group
	g.SetLimit(max(r.Concurrency, 1))
	for i, e := range entries {
		if runCtx.Err() != nil {
			break
		}
		// Go blocks while all workers are busy.
		g.Go(func() error {
			if runCtx.Err() != nil {
				return nil
			}
			started[i] = true
			verdicts[i] = r.evaluate(runCtx, log, e)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	for i, e := range entries {
		if !started[i] {
			verdicts[i] = notStarted(runCtx, e)
		}
	}

	rep.Verdicts = verdicts
	rep.FinishedAt = time.Now().UTC()
	rep.Tally()
	r.Metrics.RecordReport(rep)

	log.Info("run_finished",
		zap.Int("healthy", rep.Healthy),
		zap.Int("total", rep.Total),
		zap.Bool("any_healthy", rep.AnyHealthy),
		zap.Duration("took", rep.FinishedAt.Sub(rep.StartedAt)),
	)
	return rep
}

// evaluate runs one entry and turns a panic into a failed verdict, so one
// bad channel cannot take down the run.
func (r *Runner) evaluate(ctx context.Context, log *zap.Logger, e domain.Entry) (v domain.Verdict) {
	r.Metrics.EvaluationStarted()
	defer r.Metrics.EvaluationDone()
	defer func() {
		if p := recover(); p != nil {
			log.Error("evaluation_panic",
				zap.Int("index", e.Index),
				zap.String("name", e.Name),
				zap.String("address", e.Address),
				zap.Any("panic", p),
				zap.Stack("stack"),
			)
			v = domain.NewVerdict(e, domain.Failed(domain.ReasonInternalError, fmt.Sprint(p)))
		}
	}()
	return r.Evaluator.Evaluate(ctx, e)
}

func notStarted(ctx context.Context, e domain.Entry) domain.Verdict {
	reason := domain.ReasonRunCancelled
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		reason = domain.ReasonRunDeadline
	}
	r := domain.TimedOut("not started")
	r.Reason = reason
	return domain.NewVerdict(e, r)
}
