package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"time"
)

// Extractor grabs a single JPEG still from a stream.
type Extractor struct {
	Path      string // ffmpeg binary, defaults to "ffmpeg"
	UserAgent string
}

// ExtractFrame decodes address up to offset and streams one MJPEG image
// to w. Nothing touches the filesystem here; the caller decides where
// the bytes land.
func (x *Extractor) ExtractFrame(ctx context.Context, address string, offset time.Duration, w io.Writer) error {
	args := []string{"-hide_banner", "-loglevel", "error", "-nostdin"}
	if x.UserAgent != "" {
		args = append(args, "-user_agent", x.UserAgent)
	}
	args = append(args, "-i", address)
	if offset > 0 {
		// output-side seek: live streams cannot seek on input
		args = append(args, "-ss", strconv.FormatFloat(offset.Seconds(), 'f', 3, 64))
	}
	args = append(args,
		"-frames:v", "1",
		"-an", "-sn",
		"-f", "image2pipe",
		"-vcodec", "mjpeg",
		"pipe:1",
	)

	cmd := exec.CommandContext(ctx, binary(x.Path, "ffmpeg"), args...)
	setProcessGroup(cmd)
	cmd.WaitDelay = waitDelay

	var stderr bytes.Buffer
	cmd.Stdout = w
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return commandError("ffmpeg", err, stderr.String())
	}
	return nil
}

// Version runs "<binary> -version" and returns its first line. Used by
// preflight to confirm the binaries are usable.
func Version(ctx context.Context, path string) (string, error) {
	out, err := exec.CommandContext(ctx, path, "-version").Output()
	if err != nil {
		return "", fmt.Errorf("%s -version: %w", path, err)
	}
	if i := bytes.IndexByte(out, '\n'); i >= 0 {
		out = out[:i]
	}
	return string(bytes.TrimSpace(out)), nil
}
