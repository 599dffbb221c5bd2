package probe

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"

	"github.com/hamed0406/channelchecker/internal/domain"
)

const frameExt = ".jpg"

// FrameCapturer grabs one still per channel as proof of life. Its outcome
// is diagnostic and never gates a verdict.
//
// Two entries whose names sanitize to the same file overwrite each other;
// the last completed capture wins.
type FrameCapturer struct {
	Extractor FrameExtractor
	Dir       string
	Offset    time.Duration
	Timeout   time.Duration
	Disabled  bool
}

func (c *FrameCapturer) Capture(ctx context.Context, e domain.Entry) domain.Result {
	start := time.Now()
	out := c.capture(ctx, e)
	out.Duration = time.Since(start)
	return out
}

func (c *FrameCapturer) capture(ctx context.Context, e domain.Entry) domain.Result {
	if c.Disabled || c.Extractor == nil || c.Dir == "" {
		return domain.Skipped(domain.ReasonCaptureDisabled)
	}
	// MkdirAll succeeds when a sibling worker created the dir first.
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return domain.Failed(domain.ReasonCaptureError, err.Error())
	}

	dest := FramePath(c.Dir, e.Name)
	pf, err := renameio.NewPendingFile(dest, renameio.WithTempDir(c.Dir), renameio.WithPermissions(0o644))
	if err != nil {
		return domain.Failed(domain.ReasonCaptureError, err.Error())
	}
	// Removes the temp file unless it was committed below.
	defer pf.Cleanup()

	cctx := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	w := &countingWriter{w: pf}
	if err := c.Extractor.ExtractFrame(cctx, e.Address, c.Offset, w); err != nil {
		if cctx.Err() != nil {
			return domain.TimedOut(fmt.Sprintf("no frame within %s", c.Timeout))
		}
		return domain.Failed(domain.ReasonCaptureError, truncate(err.Error()))
	}
	if w.n == 0 {
		return domain.Failed(domain.ReasonEmptyFrame, "")
	}
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return domain.Failed(domain.ReasonCaptureError, err.Error())
	}

	r := domain.Passed()
	r.Artifact = dest
	return r
}

// FramePath is where the capture for a channel name lands.
func FramePath(dir, name string) string {
	return filepath.Join(dir, SanitizeName(name)+frameExt)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
