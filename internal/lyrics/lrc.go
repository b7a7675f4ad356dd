// Package lyrics retrieves synced or plain lyrics from a chain of providers
// and handles the LRC interchange format.
package lyrics

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cesargomez89/tunegrab/internal/domain"
)

var (
	lrcLineRe   = regexp.MustCompile(`^\[(\d{1,2}):(\d{2})\.(\d{2,3})\](.*)$`)
	lrcOffsetRe = regexp.MustCompile(`^\[offset:(-?\d+)\]$`)
)

// ParseLRC parses LRC content into synced lyrics. Metadata tags other than
// offset are ignored; lines without a timestamp are skipped.
func ParseLRC(content, source string) (*domain.SyncedLyrics, error) {
	lyrics := &domain.SyncedLyrics{Source: source}

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if m := lrcOffsetRe.FindStringSubmatch(line); m != nil {
			if off, err := strconv.Atoi(m[1]); err == nil {
				lyrics.Offset = off
			}
			continue
		}

		m := lrcLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		minutes, _ := strconv.Atoi(m[1])
		seconds, _ := strconv.Atoi(m[2])
		frac, _ := strconv.Atoi(m[3])

		ms := minutes*60000 + seconds*1000
		if len(m[3]) == 2 {
			ms += frac * 10 // centiseconds
		} else {
			ms += frac
		}

		lyrics.Lines = append(lyrics.Lines, domain.LyricsLine{
			TimestampMS: ms,
			Text:        strings.TrimSpace(m[4]),
		})
	}

	if len(lyrics.Lines) == 0 {
		return nil, fmt.Errorf("no timestamped lines in LRC content")
	}
	return lyrics, nil
}

// FormatLRC serializes synced lyrics to LRC. Timestamps round down to
// centiseconds; a non-zero global offset is emitted first.
func FormatLRC(lyrics *domain.SyncedLyrics) string {
	var b strings.Builder

	if lyrics.Offset != 0 {
		fmt.Fprintf(&b, "[offset:%d]\n", lyrics.Offset)
	}

	for _, line := range lyrics.Lines {
		minutes := line.TimestampMS / 60000
		seconds := (line.TimestampMS % 60000) / 1000
		centis := (line.TimestampMS % 1000) / 10
		fmt.Fprintf(&b, "[%02d:%02d.%02d]%s\n", minutes, seconds, centis, line.Text)
	}

	return b.String()
}
