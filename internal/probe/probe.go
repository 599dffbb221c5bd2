// Package probe implements the per-channel health stages (address syntax,
// HTTP transport, stream introspection, frame capture) and the evaluator
// that chains them into a verdict.
package probe

import (
	"context"
	"io"
	"time"

	"github.com/hamed0406/channelchecker/internal/domain"
)

// Checker performs a single check for a given address. Failures are data:
// implementations never return errors, only classified results.
type Checker interface {
	Check(ctx context.Context, address string) domain.Result
}

// Capturer persists visual evidence for an entry.
type Capturer interface {
	Capture(ctx context.Context, e domain.Entry) domain.Result
}

// StreamProber opens an address and reports the elementary streams it
// finds. Implementations must stop all work when ctx is done.
type StreamProber interface {
	ProbeStreams(ctx context.Context, address string) (*domain.MediaInfo, error)
}

// FrameExtractor decodes address up to offset and writes exactly one
// encoded image to w. Implementations must stop all work when ctx is done.
type FrameExtractor interface {
	ExtractFrame(ctx context.Context, address string, offset time.Duration, w io.Writer) error
}

// StageObserver receives every stage outcome, e.g. for metrics.
type StageObserver interface {
	ObserveStage(stage domain.Stage, r domain.Result)
}

const maxDetail = 512

func truncate(s string) string {
	if len(s) <= maxDetail {
		return s
	}
	return s[:maxDetail] + "..."
}
