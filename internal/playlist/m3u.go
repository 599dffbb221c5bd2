// Package playlist turns M3U/M3U8 playlist files into channel entries.
package playlist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/hamed0406/channelchecker/internal/domain"
)

const extinf = "#EXTINF:"

// ErrPartial marks a parse that kept going past lines it could not use.
// The entries returned alongside it are still valid.
var ErrPartial = errors.New("playlist partially parsed")

// maxLineBytes bounds a single line. Long #EXTINF lines with inline
// data-URI logos are kept; anything larger is skipped.
var maxLineBytes = 16 << 20

// Load opens path and parses it. Only the open itself is fatal; content
// problems degrade to fewer entries and an ErrPartial error.
func Load(path string) ([]domain.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open playlist: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads M3U content. Every #EXTINF line is paired with the next line
// that is neither blank nor a directive. Invalid UTF-8 is replaced with
// U+FFFD rather than rejected.
func Parse(r io.Reader) ([]domain.Entry, error) {
	br := bufio.NewReader(transform.NewReader(r, unicode.UTF8BOM.NewDecoder()))

	var (
		out     []domain.Entry
		pending *domain.Entry
		skipped int
		readErr error
	)
	flush := func() {
		if pending != nil {
			pending.Index = len(out)
			out = append(out, *pending)
			pending = nil
		}
	}

	for {
		raw, oversized, err := readLine(br)
		if oversized {
			skipped++
		} else {
			line := strings.TrimSpace(raw)
			switch {
			case line == "":
			case strings.HasPrefix(line, extinf):
				// An EXTINF without an address still becomes an entry so the
				// validator can report it.
				flush()
				pending = &domain.Entry{Name: displayName(line)}
			case strings.HasPrefix(line, "#"):
			case pending != nil:
				pending.Address = line
				flush()
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				readErr = err
			}
			break
		}
	}
	flush()

	switch {
	case readErr != nil:
		return out, fmt.Errorf("%w: read stopped after %d entries: %w", ErrPartial, len(out), readErr)
	case skipped > 0:
		return out, fmt.Errorf("%w: %d line(s) over %d bytes skipped", ErrPartial, skipped, maxLineBytes)
	}
	return out, nil
}

// readLine returns the next line without its terminator. A line longer
// than maxLineBytes is consumed in full but reported as oversized.
func readLine(br *bufio.Reader) (string, bool, error) {
	var (
		buf       []byte
		oversized bool
	)
	for {
		frag, isPrefix, err := br.ReadLine()
		if !oversized {
			if len(buf)+len(frag) > maxLineBytes {
				oversized, buf = true, nil
			} else {
				buf = append(buf, frag...)
			}
		}
		if err != nil || !isPrefix {
			return string(buf), oversized, err
		}
	}
}

// displayName returns the text after the first comma that is outside a
// quoted attribute value.
func displayName(line string) string {
	body := strings.TrimPrefix(line, extinf)
	inQuote := false
	for i, r := range body {
		switch r {
		case '"':
			inQuote = !inQuote
		case ',':
			if !inQuote {
				return norm.NFC.String(strings.TrimSpace(body[i+1:]))
			}
		}
	}
	return ""
}
