package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/hamed0406/channelchecker/internal/domain"
)

// waitDelay bounds how long Wait blocks on pipes held open by orphaned
// children after the process group was killed.
const waitDelay = 2 * time.Second

type Prober struct {
	Path      string // ffprobe binary, defaults to "ffprobe"
	UserAgent string
	// ProbeSize caps how many bytes of a live stream are read (0 = ffprobe default).
	ProbeSize int64
}

func (p *Prober) ProbeStreams(ctx context.Context, address string) (*domain.MediaInfo, error) {
	args := []string{
		"-v", "error",
		"-print_format", "json",
		"-show_format", "-show_streams",
	}
	if p.ProbeSize > 0 {
		args = append(args, "-probesize", fmt.Sprint(p.ProbeSize))
	}
	if p.UserAgent != "" {
		args = append(args, "-user_agent", p.UserAgent)
	}
	args = append(args, address)

	cmd := exec.CommandContext(ctx, binary(p.Path, "ffprobe"), args...)
	setProcessGroup(cmd)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// ffprobe may exit non-zero on a truncated live segment yet still have
	// printed usable stream info.
	info, parseErr := ParseJSON(stdout.Bytes())
	if parseErr == nil && (runErr == nil || len(info.Streams) > 0) {
		return info, nil
	}
	if runErr != nil {
		return nil, commandError("ffprobe", runErr, stderr.String())
	}
	return nil, parseErr
}

// ParseJSON converts raw ffprobe JSON output into MediaInfo.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (*domain.MediaInfo, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}
	info := &domain.MediaInfo{Container: raw.Format.FormatName}
	for _, s := range raw.Streams {
		info.Streams = append(info.Streams, domain.MediaStream{
			Index:     s.Index,
			CodecType: s.CodecType,
			CodecName: s.CodecName,
			Width:     s.Width,
			Height:    s.Height,
		})
	}
	return info, nil
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	FormatName string `json:"format_name"`
}

type ffprobeStream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

func binary(path, fallback string) string {
	if path == "" {
		return fallback
	}
	return path
}

func commandError(name string, err error, stderr string) error {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return fmt.Errorf("%s: %w", name, err)
	}
	// the last line is usually the one that explains the failure
	if i := strings.LastIndexByte(stderr, '\n'); i >= 0 {
		stderr = stderr[i+1:]
	}
	return fmt.Errorf("%s: %w: %s", name, err, stderr)
}
