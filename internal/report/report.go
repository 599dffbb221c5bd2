// Package report renders a finished run for people and for machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"

	"github.com/hamed0406/channelchecker/internal/domain"
)

// Line is the status line for one channel.
func Line(v domain.Verdict) string {
	if v.Overall {
		s := fmt.Sprintf("[ OK ] %s - %s", v.Entry.Name, v.Entry.Address)
		if v.CapturedFramePath != "" {
			s += " [frame: " + v.CapturedFramePath + "]"
		}
		return s
	}
	s := fmt.Sprintf("[FAIL] %s - %s", v.Entry.Name, v.Entry.Address)
	if ff, ok := v.FirstFailure(); ok {
		s += fmt.Sprintf(" (%s: %s)", ff.Stage, ff.Result.Reason)
	}
	return s
}

// Summary is the aggregate line printed after all channels.
func Summary(rep domain.Report) string {
	usable := "no"
	if rep.AnyHealthy {
		usable = "yes"
	}
	return fmt.Sprintf("Healthy channels: %d/%d - any channel usable: %s", rep.Healthy, rep.Total, usable)
}

// Print writes one line per channel in playlist order, then the summary.
func Print(w io.Writer, rep domain.Report) error {
	var b strings.Builder
	for _, v := range rep.Verdicts {
		b.WriteString(Line(v))
		b.WriteByte('\n')
	}
	b.WriteString(Summary(rep))
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}

// Marshal encodes the report as YAML for .yaml/.yml paths and JSON otherwise.
func Marshal(path string, rep domain.Report) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Marshal(rep)
	default:
		b, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	}
}

// WriteFile stores the structured report at path atomically.
func WriteFile(path string, rep domain.Report) error {
	b, err := Marshal(path, rep)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := renameio.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
