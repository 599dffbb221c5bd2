package domain

import "time"

// Entry is one (name, address) pair from a playlist. Index is the position
// in the playlist and drives report ordering.
type Entry struct {
	Index   int    `json:"index" yaml:"index"`
	Name    string `json:"name" yaml:"name"`
	Address string `json:"address" yaml:"address"`
}

type Stage string

const (
	StageAddress   Stage = "address"
	StageTransport Stage = "transport"
	StageStream    Stage = "stream"
	StageCapture   Stage = "capture"
)

// Stages is the fixed evaluation order.
var Stages = []Stage{StageAddress, StageTransport, StageStream, StageCapture}

type StageResult struct {
	Stage  Stage  `json:"stage" yaml:"stage"`
	Result Result `json:"result" yaml:"result"`
}

type Verdict struct {
	Entry             Entry         `json:"entry" yaml:"entry"`
	Stages            []StageResult `json:"stages" yaml:"stages"`
	Overall           bool          `json:"overall" yaml:"overall"`
	CapturedFramePath string        `json:"captured_frame_path,omitempty" yaml:"captured_frame_path,omitempty"`
}

// NewVerdict assembles a verdict from the results of the stages that ran,
// in order. Stages after the first non-passing one, or missing from
// results, are recorded as skipped.
func NewVerdict(e Entry, results ...Result) Verdict {
	v := Verdict{Entry: e, Stages: make([]StageResult, 0, len(Stages))}
	stopped := false
	for i, st := range Stages {
		var r Result
		switch {
		case stopped || i >= len(results):
			r = Skipped(ReasonUpstreamFailure)
		default:
			r = results[i]
		}
		// Capture never gates later stages, but it is also the last one.
		if !r.OK() && st != StageCapture {
			stopped = true
		}
		v.Stages = append(v.Stages, StageResult{Stage: st, Result: r})
	}
	v.Overall = v.Stage(StageAddress).OK() &&
		v.Stage(StageTransport).OK() &&
		v.Stage(StageStream).OK()
	if c := v.Stage(StageCapture); c.OK() {
		v.CapturedFramePath = c.Artifact
	}
	return v
}

// Stage returns the recorded result for st, or a zero Result.
func (v Verdict) Stage(st Stage) Result {
	for _, sr := range v.Stages {
		if sr.Stage == st {
			return sr.Result
		}
	}
	return Result{Status: StatusSkipped}
}

// FirstFailure returns the first non-passing stage among the gating stages.
func (v Verdict) FirstFailure() (StageResult, bool) {
	for _, sr := range v.Stages {
		if sr.Stage == StageCapture {
			break
		}
		if !sr.Result.OK() {
			return sr, true
		}
	}
	return StageResult{}, false
}

type Report struct {
	RunID      string    `json:"run_id" yaml:"run_id"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
	Verdicts   []Verdict `json:"verdicts" yaml:"verdicts"`
	Healthy    int       `json:"healthy" yaml:"healthy"`
	Total      int       `json:"total" yaml:"total"`
	AnyHealthy bool      `json:"any_healthy" yaml:"any_healthy"`
}

// Tally recomputes Healthy, Total and AnyHealthy from the verdicts.
func (r *Report) Tally() {
	r.Total = len(r.Verdicts)
	r.Healthy = 0
	for _, v := range r.Verdicts {
		if v.Overall {
			r.Healthy++
		}
	}
	r.AnyHealthy = r.Healthy > 0
}

// MediaInfo is what a stream introspection capability reports.
type MediaInfo struct {
	Container string
	Streams   []MediaStream
}

type MediaStream struct {
	Index     int
	CodecType string
	CodecName string
	Width     int
	Height    int
}

// Decodable returns the audio and video streams that carry a codec name.
func (m *MediaInfo) Decodable() []MediaStream {
	if m == nil {
		return nil
	}
	var out []MediaStream
	for _, s := range m.Streams {
		if (s.CodecType == "video" || s.CodecType == "audio") && s.CodecName != "" {
			out = append(out, s)
		}
	}
	return out
}
