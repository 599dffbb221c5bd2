package domain

import (
	"fmt"
	"time"
)

type Status int

const (
	StatusPassed Status = iota
	StatusFailed
	StatusSkipped
	StatusTimedOut
)

var statusNames = map[Status]string{
	StatusPassed:   "passed",
	StatusFailed:   "failed",
	StatusSkipped:  "skipped",
	StatusTimedOut: "timed_out",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("status(%d)", int(s))
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	for k, v := range statusNames {
		if v == string(b) {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", string(b))
}

// Common reasons shared by stages and the runner.
const (
	ReasonUpstreamFailure = "upstream failure"
	ReasonMalformed       = "unsupported or malformed address"
	ReasonRedirectLoop    = "redirect loop"
	ReasonTransportError  = "transport error"
	ReasonNoStream        = "no decodable stream"
	ReasonProbeError      = "probe error"
	ReasonCaptureError    = "capture error"
	ReasonEmptyFrame      = "empty frame"
	ReasonCaptureDisabled = "capture disabled"
	ReasonInternalError   = "internal error"
	ReasonRunDeadline     = "run deadline exceeded"
	ReasonRunCancelled    = "run cancelled"
)

// Result is the tagged outcome of one stage.
//
// StatusCode is only filled by the transport stage, Artifact only by a
// passing capture stage.
type Result struct {
	Status     Status        `json:"status" yaml:"status"`
	Reason     string        `json:"reason,omitempty" yaml:"reason,omitempty"`
	Detail     string        `json:"detail,omitempty" yaml:"detail,omitempty"`
	StatusCode int           `json:"status_code,omitempty" yaml:"status_code,omitempty"`
	Artifact   string        `json:"artifact,omitempty" yaml:"artifact,omitempty"`
	Attempts   int           `json:"attempts,omitempty" yaml:"attempts,omitempty"`
	Duration   time.Duration `json:"duration_ns,omitempty" yaml:"duration,omitempty"`
}

func Passed() Result { return Result{Status: StatusPassed} }

func Failed(reason, detail string) Result {
	return Result{Status: StatusFailed, Reason: reason, Detail: detail}
}

func Skipped(reason string) Result {
	return Result{Status: StatusSkipped, Reason: reason}
}

func TimedOut(detail string) Result {
	return Result{Status: StatusTimedOut, Reason: "timed out", Detail: detail}
}

func (r Result) OK() bool { return r.Status == StatusPassed }

// Summary renders the result the way status lines show it, e.g.
// "failed: 404 Not Found".
func (r Result) Summary() string {
	if r.Reason == "" {
		return r.Status.String()
	}
	if r.Detail == "" {
		return r.Status.String() + ": " + r.Reason
	}
	return fmt.Sprintf("%s: %s (%s)", r.Status, r.Reason, r.Detail)
}
