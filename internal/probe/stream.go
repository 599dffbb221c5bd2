package probe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hamed0406/channelchecker/internal/domain"
)

// StreamChecker is the stream-decodability stage. It proves the payload is
// media, which a 200 from the transport stage does not.
type StreamChecker struct {
	Prober  StreamProber
	Timeout time.Duration
}

func (s *StreamChecker) Check(ctx context.Context, address string) domain.Result {
	start := time.Now()
	out := s.check(ctx, address)
	out.Duration = time.Since(start)
	return out
}

func (s *StreamChecker) check(ctx context.Context, address string) domain.Result {
	cctx := ctx
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	info, err := s.Prober.ProbeStreams(cctx, address)
	if err != nil {
		if cctx.Err() != nil {
			return domain.TimedOut(fmt.Sprintf("no stream info within %s", s.Timeout))
		}
		return domain.Failed(domain.ReasonProbeError, truncate(err.Error()))
	}

	streams := info.Decodable()
	if len(streams) == 0 {
		detail := ""
		if info != nil && info.Container != "" {
			detail = "container " + info.Container
		}
		return domain.Failed(domain.ReasonNoStream, detail)
	}

	r := domain.Passed()
	r.Detail = describe(info.Container, streams)
	return r
}

func describe(container string, streams []domain.MediaStream) string {
	parts := make([]string, 0, len(streams))
	for _, st := range streams {
		p := st.CodecType + "/" + st.CodecName
		if st.Width > 0 && st.Height > 0 {
			p += fmt.Sprintf(" %dx%d", st.Width, st.Height)
		}
		parts = append(parts, p)
	}
	if container == "" {
		return strings.Join(parts, ", ")
	}
	return container + ": " + strings.Join(parts, ", ")
}
