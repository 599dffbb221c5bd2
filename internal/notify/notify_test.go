package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/multierr"

	"github.com/hamed0406/channelchecker/internal/domain"
)

type recorder struct {
	title, text string
	err         error
}

func (r *recorder) Send(_ context.Context, title, text string) error {
	r.title, r.text = title, text
	return r.err
}

func TestMulti_CollectsAllErrors(t *testing.T) {
	a := &recorder{err: errors.New("a down")}
	b := &recorder{}
	c := &recorder{err: errors.New("c down")}
	err := Multi{a, nil, b, c}.Send(context.Background(), "T", "x")
	if got := multierr.Errors(err); len(got) != 2 {
		t.Fatalf("want 2 errors, got %v", got)
	}
	if b.title != "T" {
		t.Fatal("healthy notifier skipped after an earlier failure")
	}
}

func TestSendReport(t *testing.T) {
	var verdicts []domain.Verdict
	for i := 0; i < 25; i++ {
		verdicts = append(verdicts, domain.NewVerdict(
			domain.Entry{Index: i, Name: fmt.Sprintf("ch%d", i), Address: "http://x"},
			domain.Passed(), domain.TimedOut(""),
		))
	}
	verdicts = append(verdicts, domain.NewVerdict(
		domain.Entry{Index: 25, Name: "good", Address: "http://y"},
		domain.Passed(), domain.Passed(), domain.Passed(),
	))
	rep := domain.Report{RunID: "0123456789abcdef", Verdicts: verdicts}
	rep.Tally()

	r := &recorder{}
	if err := SendReport(context.Background(), r, rep); err != nil {
		t.Fatal(err)
	}
	if r.title != "Channel check 01234567: 1/26 healthy" {
		t.Fatalf("title %q", r.title)
	}
	if strings.Count(r.text, "[FAIL]") != maxListed {
		t.Fatalf("want %d listed failures:\n%s", maxListed, r.text)
	}
	if !strings.HasSuffix(r.text, "and 5 more") || strings.Contains(r.text, "[ OK ]") {
		t.Fatalf("unexpected text:\n%s", r.text)
	}
}

func TestSendReport_NilNotifier(t *testing.T) {
	if err := SendReport(context.Background(), nil, domain.Report{}); err != nil {
		t.Fatal(err)
	}
}
