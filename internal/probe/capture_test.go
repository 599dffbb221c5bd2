package probe

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hamed0406/channelchecker/internal/domain"
)

type fakeExtractor struct {
	data    []byte
	partial []byte
	err     error
	block   bool
}

func (f *fakeExtractor) ExtractFrame(ctx context.Context, address string, offset time.Duration, w io.Writer) error {
	if len(f.partial) > 0 {
		if _, err := w.Write(f.partial); err != nil {
			return err
		}
	}
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if f.err != nil {
		return f.err
	}
	_, err := w.Write(f.data)
	return err
}

func entry(name string) domain.Entry {
	return domain.Entry{Name: name, Address: "http://example.com/" + name}
}

func TestFrameCapturer_WritesArtifact(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "captures")
	c := &FrameCapturer{Extractor: &fakeExtractor{data: []byte("\xff\xd8jpeg")}, Dir: dir, Timeout: time.Second}

	out := c.Capture(context.Background(), entry("Channel #1 (HD)!!"))
	if !out.OK() {
		t.Fatalf("want passed, got %+v", out)
	}
	want := filepath.Join(dir, "Channel__1__HD___.jpg")
	if out.Artifact != want {
		t.Fatalf("artifact %q, want %q", out.Artifact, want)
	}
	b, err := os.ReadFile(want)
	if err != nil || string(b) != "\xff\xd8jpeg" {
		t.Fatalf("artifact content %q err %v", b, err)
	}
}

func TestFrameCapturer_Disabled(t *testing.T) {
	c := &FrameCapturer{Extractor: &fakeExtractor{}, Dir: t.TempDir(), Disabled: true}
	out := c.Capture(context.Background(), entry("a"))
	if out.Status != domain.StatusSkipped || out.Reason != domain.ReasonCaptureDisabled {
		t.Fatalf("want skipped, got %+v", out)
	}
}

func TestFrameCapturer_NoPartialArtifact(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name   string
		ex     *fakeExtractor
		status domain.Status
		reason string
	}{
		{"err", &fakeExtractor{partial: []byte("half"), err: errors.New("decoder died")}, domain.StatusFailed, domain.ReasonCaptureError},
		{"timeout", &fakeExtractor{partial: []byte("half"), block: true}, domain.StatusTimedOut, "timed out"},
		{"empty", &fakeExtractor{}, domain.StatusFailed, domain.ReasonEmptyFrame},
	}
	for _, tc := range cases {
		c := &FrameCapturer{Extractor: tc.ex, Dir: dir, Timeout: 20 * time.Millisecond}
		out := c.Capture(context.Background(), entry(tc.name))
		if out.Status != tc.status || out.Reason != tc.reason {
			t.Fatalf("%s: got %+v", tc.name, out)
		}
		if out.Artifact != "" {
			t.Fatalf("%s: artifact reported on failure", tc.name)
		}
		if _, err := os.Stat(FramePath(dir, tc.name)); !os.IsNotExist(err) {
			t.Fatalf("%s: destination exists after failure (err=%v)", tc.name, err)
		}
	}
	left, _ := os.ReadDir(dir)
	if len(left) != 0 {
		t.Fatalf("temp files left behind: %v", left)
	}
}

func TestFrameCapturer_ConcurrentSameDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "caps")
	c := &FrameCapturer{Extractor: &fakeExtractor{data: []byte("img")}, Dir: dir, Timeout: time.Second}

	var wg sync.WaitGroup
	results := make([]domain.Result, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// all names collide on the same file
			results[i] = c.Capture(context.Background(), entry("same name"))
		}()
	}
	wg.Wait()
	for i, r := range results {
		if !r.OK() {
			t.Fatalf("worker %d: %+v", i, r)
		}
	}
	b, err := os.ReadFile(FramePath(dir, "same name"))
	if err != nil || string(b) != "img" {
		t.Fatalf("final artifact %q err %v", b, err)
	}
}

func TestFrameCapturer_DirIsFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := &FrameCapturer{Extractor: &fakeExtractor{data: []byte("img")}, Dir: f}
	out := c.Capture(context.Background(), entry("a"))
	if out.Status != domain.StatusFailed || out.Reason != domain.ReasonCaptureError {
		t.Fatalf("want capture error, got %+v", out)
	}
}
