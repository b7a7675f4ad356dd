package search

import (
	"regexp"
	"strings"

	"github.com/cesargomez89/tunegrab/internal/constants"
	"github.com/cesargomez89/tunegrab/internal/domain"
)

// nonTrackMarkers flag titles that are almost certainly not a single track.
var nonTrackMarkers = []string{
	"album",
	"full album",
	"mixtape",
	"ep",
	"compilation",
	"collection",
	"playlist",
	"deluxe",
	"remastered",
	"live album",
	"best of",
	"greatest hits",
	"soundtrack",
	"dj mix",
	"mix",
	"podcast",
	"interview",
}

// longFormTimestamp matches H:MM:SS durations embedded in titles, a telltale
// of full-album uploads with tracklists.
var longFormTimestamp = regexp.MustCompile(`\d{1,2}:\d{2}:\d{2}`)

// Filter applies the content-type and duration filters; both must pass.
func Filter(candidates []domain.SearchCandidate) []domain.SearchCandidate {
	var out []domain.SearchCandidate
	for _, c := range candidates {
		if !ValidContent(c.Title) {
			continue
		}
		if !ValidDuration(c.Duration) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// ValidContent rejects titles with non-track markers, an
// "Artist - Album - Track" triple-dash shape, or a long-form timestamp.
func ValidContent(title string) bool {
	lower := strings.ToLower(title)
	for _, marker := range nonTrackMarkers {
		if containsWord(lower, marker) {
			return false
		}
	}
	if len(strings.Split(title, " - ")) > 2 {
		return false
	}
	if longFormTimestamp.MatchString(title) {
		return false
	}
	return true
}

// containsWord reports whether marker appears in s bounded by non-letters,
// so "ep" does not reject "deepest" (the markers list holds plain words).
func containsWord(s, marker string) bool {
	idx := 0
	for {
		i := strings.Index(s[idx:], marker)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(marker)
		beforeOK := start == 0 || !isWordByte(s[start-1])
		afterOK := end == len(s) || !isWordByte(s[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
		if idx >= len(s) {
			return false
		}
	}
}

func isWordByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// ValidDuration accepts unknown durations and anything inside the single
// track window.
func ValidDuration(seconds int) bool {
	if seconds == 0 {
		return true
	}
	return seconds >= constants.MinTrackDurationSecs && seconds <= constants.MaxTrackDurationSecs
}
