package probe

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hamed0406/channelchecker/internal/domain"
)

// Evaluator chains the four stages for one entry. A stage only runs when
// every stage before it passed, except capture, which is the last stage
// and never gates anything.
type Evaluator struct {
	Logger    *zap.Logger
	Validator Validator
	Transport Checker
	Stream    Checker
	Capture   Capturer
	Observer  StageObserver
}

func NewEvaluator(logger *zap.Logger, transport, stream Checker, capture Capturer) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{
		Logger:    logger,
		Transport: transport,
		Stream:    stream,
		Capture:   capture,
	}
}

// Evaluate returns the verdict for entry and logs one channel_checked
// summary for it, whichever stage it stopped at.
func (e *Evaluator) Evaluate(ctx context.Context, entry domain.Entry) domain.Verdict {
	v := e.evaluate(ctx, entry)
	fields := []zap.Field{
		zap.Int("index", entry.Index),
		zap.String("name", entry.Name),
		zap.Bool("healthy", v.Overall),
	}
	if ff, ok := v.FirstFailure(); ok {
		fields = append(fields,
			zap.String("failed_stage", string(ff.Stage)),
			zap.String("reason", ff.Result.Reason),
		)
	}
	if v.CapturedFramePath != "" {
		fields = append(fields, zap.String("frame", v.CapturedFramePath))
	}
	e.logger().Debug("channel_checked", fields...)
	return v
}

func (e *Evaluator) evaluate(ctx context.Context, entry domain.Entry) domain.Verdict {
	results := make([]domain.Result, 0, len(domain.Stages))

	r := e.Validator.Validate(entry.Address)
	e.record(entry, domain.StageAddress, r)
	results = append(results, r)
	if !r.OK() {
		return domain.NewVerdict(entry, results...)
	}

	r = e.Transport.Check(ctx, entry.Address)
	e.record(entry, domain.StageTransport, r)
	results = append(results, r)
	if !r.OK() {
		return domain.NewVerdict(entry, results...)
	}

	r = e.Stream.Check(ctx, entry.Address)
	e.record(entry, domain.StageStream, r)
	results = append(results, r)
	if !r.OK() {
		return domain.NewVerdict(entry, results...)
	}

	if e.Capture == nil {
		r = domain.Skipped(domain.ReasonCaptureDisabled)
	} else {
		r = e.Capture.Capture(ctx, entry)
	}
	e.record(entry, domain.StageCapture, r)
	results = append(results, r)

	return domain.NewVerdict(entry, results...)
}

func (e *Evaluator) record(entry domain.Entry, st domain.Stage, r domain.Result) {
	if e.Observer != nil {
		e.Observer.ObserveStage(st, r)
	}

	level := zapcore.DebugLevel
	event := "stage_passed"
	switch {
	case r.Status == domain.StatusSkipped:
		event = "stage_skipped"
	case r.OK():
	case st == domain.StageAddress:
		level, event = zapcore.InfoLevel, "stage_failed"
	default:
		level, event = zapcore.WarnLevel, "stage_failed"
	}
	if ce := e.logger().Check(level, event); ce != nil {
		ce.Write(
			zap.String("stage", string(st)),
			zap.String("name", entry.Name),
			zap.String("address", entry.Address),
			zap.Stringer("status", r.Status),
			zap.String("reason", r.Reason),
			zap.String("detail", r.Detail),
			zap.Int("status_code", r.StatusCode),
			zap.Int("attempts", r.Attempts),
			zap.Duration("took", r.Duration),
		)
	}
}

func (e *Evaluator) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}
