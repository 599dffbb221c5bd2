package probe

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hamed0406/channelchecker/internal/domain"
)

type countingChecker struct {
	mu     sync.Mutex
	calls  int
	result domain.Result
}

func (c *countingChecker) Check(ctx context.Context, address string) domain.Result {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.result
}

type countingCapturer struct {
	calls  int
	result domain.Result
}

func (c *countingCapturer) Capture(ctx context.Context, e domain.Entry) domain.Result {
	c.calls++
	return c.result
}

type stageLog struct {
	mu   sync.Mutex
	seen []domain.Stage
}

func (s *stageLog) ObserveStage(st domain.Stage, r domain.Result) {
	s.mu.Lock()
	s.seen = append(s.seen, st)
	s.mu.Unlock()
}

func passedCapture(path string) domain.Result {
	r := domain.Passed()
	r.Artifact = path
	return r
}

func newTestEvaluator(transport, stream domain.Result, capture domain.Result) (*Evaluator, *countingChecker, *countingChecker, *countingCapturer) {
	tr := &countingChecker{result: transport}
	st := &countingChecker{result: stream}
	cp := &countingCapturer{result: capture}
	return NewEvaluator(zap.NewNop(), tr, st, cp), tr, st, cp
}

func TestEvaluator_AllPass(t *testing.T) {
	ev, _, _, _ := newTestEvaluator(domain.Passed(), domain.Passed(), passedCapture("caps/a.jpg"))
	obs := &stageLog{}
	ev.Observer = obs

	v := ev.Evaluate(context.Background(), domain.Entry{Name: "a", Address: "http://example.com/a"})
	if !v.Overall {
		t.Fatalf("want healthy, got %+v", v)
	}
	if v.CapturedFramePath != "caps/a.jpg" {
		t.Fatalf("frame path %q", v.CapturedFramePath)
	}
	if len(obs.seen) != 4 {
		t.Fatalf("want 4 observed stages, got %v", obs.seen)
	}
}

func TestEvaluator_MalformedMakesNoNetworkCalls(t *testing.T) {
	ev, tr, st, cp := newTestEvaluator(domain.Passed(), domain.Passed(), passedCapture("x"))

	for _, addr := range []string{"", "not a url", "rtmp://example.com/live"} {
		v := ev.Evaluate(context.Background(), domain.Entry{Name: "bad", Address: addr})
		if v.Overall {
			t.Fatalf("%q: malformed address must not be healthy", addr)
		}
		if r := v.Stage(domain.StageAddress); r.Reason != domain.ReasonMalformed {
			t.Fatalf("%q: address stage %+v", addr, r)
		}
		for _, s := range []domain.Stage{domain.StageTransport, domain.StageStream, domain.StageCapture} {
			r := v.Stage(s)
			if r.Status != domain.StatusSkipped || r.Reason != domain.ReasonUpstreamFailure {
				t.Fatalf("%q: stage %s should be skipped, got %+v", addr, s, r)
			}
		}
	}
	if tr.calls+st.calls+cp.calls != 0 {
		t.Fatalf("network stages ran: transport=%d stream=%d capture=%d", tr.calls, st.calls, cp.calls)
	}
}

func TestEvaluator_TransportFailureShortCircuits(t *testing.T) {
	failed := domain.Failed("404 Not Found", "")
	failed.StatusCode = 404
	ev, _, st, cp := newTestEvaluator(failed, domain.Passed(), passedCapture("x"))

	v := ev.Evaluate(context.Background(), domain.Entry{Name: "b", Address: "http://example.com/b"})
	if v.Overall {
		t.Fatal("want unhealthy")
	}
	if got := v.Stage(domain.StageTransport); got.StatusCode != 404 {
		t.Fatalf("status code lost: %+v", got)
	}
	if st.calls != 0 || cp.calls != 0 {
		t.Fatalf("later stages ran: stream=%d capture=%d", st.calls, cp.calls)
	}
	if len(v.Stages) != 4 {
		t.Fatalf("verdict must carry all four stages, got %d", len(v.Stages))
	}
}

func TestEvaluator_CaptureDoesNotAffectOverall(t *testing.T) {
	for _, capture := range []domain.Result{
		domain.Failed(domain.ReasonCaptureError, "disk full"),
		domain.TimedOut("slow"),
		domain.Skipped(domain.ReasonCaptureDisabled),
	} {
		ev, _, _, _ := newTestEvaluator(domain.Passed(), domain.Passed(), capture)
		v := ev.Evaluate(context.Background(), domain.Entry{Name: "c", Address: "http://example.com/c"})
		if !v.Overall {
			t.Fatalf("capture %v flipped overall", capture.Status)
		}
		if v.CapturedFramePath != "" {
			t.Fatalf("frame path set without a passing capture")
		}
	}
}

func TestEvaluator_StreamTimeout(t *testing.T) {
	ev, _, _, cp := newTestEvaluator(domain.Passed(), domain.TimedOut("no stream info"), passedCapture("x"))
	v := ev.Evaluate(context.Background(), domain.Entry{Name: "d", Address: "http://example.com/d"})
	if v.Overall || v.Stage(domain.StageStream).Status != domain.StatusTimedOut {
		t.Fatalf("unexpected verdict %+v", v)
	}
	if cp.calls != 0 {
		t.Fatal("capture ran after stream timeout")
	}
}

func TestEvaluator_LogLevels(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ev, _, _, _ := newTestEvaluator(domain.Failed("500 Internal Server Error", ""), domain.Passed(), passedCapture("x"))
	ev.Logger = zap.New(core)

	ev.Evaluate(context.Background(), domain.Entry{Name: "bad", Address: "nope"})
	ev.Evaluate(context.Background(), domain.Entry{Name: "down", Address: "http://example.com/down"})

	failed := logs.FilterMessage("stage_failed").All()
	if len(failed) != 2 {
		t.Fatalf("want 2 stage_failed entries, got %d", len(failed))
	}
	if failed[0].Level != zap.InfoLevel {
		t.Fatalf("syntax failure should log at info, got %s", failed[0].Level)
	}
	if failed[1].Level != zap.WarnLevel {
		t.Fatalf("transport failure should log at warn, got %s", failed[1].Level)
	}
}

func TestEvaluator_OneSummaryPerChannel(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ev, _, st, _ := newTestEvaluator(domain.Passed(), domain.Passed(), passedCapture("caps/ok.jpg"))
	ev.Logger = zap.New(core)

	ev.Evaluate(context.Background(), domain.Entry{Index: 0, Name: "bad", Address: "nope"})
	st.result = domain.Failed(domain.ReasonNoStream, "")
	ev.Evaluate(context.Background(), domain.Entry{Index: 1, Name: "nostream", Address: "http://example.com/n"})
	st.result = domain.Passed()
	ev.Evaluate(context.Background(), domain.Entry{Index: 2, Name: "ok", Address: "http://example.com/ok"})

	summaries := logs.FilterMessage("channel_checked").All()
	if len(summaries) != 3 {
		t.Fatalf("want one summary per channel, got %d", len(summaries))
	}
	first := summaries[0].ContextMap()
	if first["healthy"] != false || first["failed_stage"] != "address" {
		t.Fatalf("address failure summary: %v", first)
	}
	if got := summaries[1].ContextMap()["failed_stage"]; got != "stream" {
		t.Fatalf("stream failure summary: %v", summaries[1].ContextMap())
	}
	last := summaries[2].ContextMap()
	if last["healthy"] != true || last["frame"] != "caps/ok.jpg" {
		t.Fatalf("healthy summary: %v", last)
	}
}
