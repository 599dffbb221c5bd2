package probe

import (
	"context"
	"strings"
	"time"

	"github.com/hamed0406/channelchecker/internal/domain"
)

// maxAttempts caps the retry series: a timeout gets one more try, nothing else does.
const maxAttempts = 2

type RetryChecker struct {
	Inner    Checker
	Attempts int
	Backoff  time.Duration
}

func (r *RetryChecker) Check(ctx context.Context, target string) domain.Result {
	attempts := min(max(r.Attempts, 1), maxAttempts)

	var (
		last    domain.Result
		elapsed time.Duration
	)
	for i := 0; i < attempts; i++ {
		last = r.Inner.Check(ctx, target)
		elapsed += last.Duration
		last.Attempts = i + 1
		last.Duration = elapsed
		if last.Status != domain.StatusTimedOut || ctx.Err() != nil {
			return last
		}
		if i < attempts-1 && !sleep(ctx, r.Backoff) {
			return last
		}
	}
	if attempts > 1 {
		// annotate so the report shows it was a retry series
		last.Detail = strings.TrimSpace(last.Detail + " (after retry)")
	}
	return last
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
