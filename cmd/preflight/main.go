// cmd/preflight/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/hamed0406/channelchecker/internal/config"
	"github.com/hamed0406/channelchecker/internal/ffmpeg"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	cfg, err := config.FromEnv()
	if err != nil {
		fail("config: " + err.Error())
	}
	ok(fmt.Sprintf("config valid (concurrency=%d, http=%s, probe=%s, capture=%s)",
		cfg.Concurrency, cfg.HTTPTimeout, cfg.ProbeTimeout, cfg.CaptureTimeout))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, bin := range []struct{ env, path string }{
		{"FFPROBE_PATH", cfg.FFprobePath},
		{"FFMPEG_PATH", cfg.FFmpegPath},
	} {
		resolved, err := exec.LookPath(bin.path)
		if err != nil {
			fail(fmt.Sprintf("%s=%s not found on PATH (stream checks cannot run)", bin.env, bin.path))
		}
		v, err := ffmpeg.Version(ctx, resolved)
		if err != nil {
			fail(err.Error())
		}
		ok(resolved + ": " + v)
	}

	if !cfg.CaptureEnabled {
		warn("CAPTURE_ENABLED=false, frames will not be captured.")
	} else if err := checkWritable(cfg.CaptureDir); err != nil {
		fail("CAPTURE_DIR " + cfg.CaptureDir + " not writable: " + err.Error())
	} else {
		ok("CAPTURE_DIR=" + cfg.CaptureDir + " writable")
	}

	if cfg.RunDeadline == 0 {
		warn("RUN_DEADLINE unset, a large playlist may run for a long time.")
	} else {
		ok("RUN_DEADLINE=" + cfg.RunDeadline.String())
	}

	if cfg.SlackWebhook == "" {
		warn("SLACK_WEBHOOK_URL empty, run summaries will not be posted.")
	} else {
		ok("SLACK_WEBHOOK_URL present")
	}

	ok("preflight passed")
}

func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".preflight-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(filepath.Clean(name))
}
