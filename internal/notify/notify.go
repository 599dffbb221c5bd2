package notify

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/hamed0406/channelchecker/internal/domain"
	"github.com/hamed0406/channelchecker/internal/report"
)

type Notifier interface {
	Send(ctx context.Context, title, text string) error
}

// Multi fans out to every notifier and returns all failures combined.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, title, text string) error {
	var err error
	for _, n := range m {
		if n == nil {
			continue
		}
		err = multierr.Append(err, n.Send(ctx, title, text))
	}
	return err
}

// maxListed keeps chat messages readable for large playlists.
const maxListed = 20

// SendReport posts a summary of a finished run: the aggregate line and
// the failing channels.
func SendReport(ctx context.Context, n Notifier, rep domain.Report) error {
	if n == nil {
		return nil
	}
	title := fmt.Sprintf("Channel check %s: %d/%d healthy", shortID(rep.RunID), rep.Healthy, rep.Total)

	var b strings.Builder
	b.WriteString(report.Summary(rep))
	listed := 0
	for _, v := range rep.Verdicts {
		if v.Overall {
			continue
		}
		if listed == maxListed {
			fmt.Fprintf(&b, "\n… and %d more", rep.Total-rep.Healthy-listed)
			break
		}
		b.WriteString("\n")
		b.WriteString(report.Line(v))
		listed++
	}
	return n.Send(ctx, title, b.String())
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
