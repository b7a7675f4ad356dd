// Package csvimport reads playlist CSV exports (Exportify and similar
// tools) into track metadata. Header names vary between exporters, so
// columns are matched against a set of known aliases.
package csvimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cesargomez89/tunegrab/internal/domain"
)

// columnAliases maps each field we care about to the header names seen in
// the wild, lowercased.
var columnAliases = map[string][]string{
	"title":    {"track name", "name", "title", "song"},
	"artist":   {"artist name(s)", "artist name", "artist(s)", "artists", "artist"},
	"album":    {"album name", "album"},
	"duration": {"duration (ms)", "duration_ms", "duration ms", "duration"},
	"uri":      {"track uri", "spotify uri", "track url", "spotify url", "uri", "url"},
}

// ReadFile parses the CSV file at path.
func ReadFile(path string) ([]domain.TrackMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening csv: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses CSV rows into track metadata. Rows missing both title and
// artist are skipped; everything else is best-effort.
func Read(r io.Reader) ([]domain.TrackMetadata, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // exporters disagree on trailing columns

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	cols := mapColumns(header)
	if _, ok := cols["title"]; !ok {
		return nil, fmt.Errorf("csv has no recognizable track name column (header: %s)", strings.Join(header, ", "))
	}

	var tracks []domain.TrackMetadata
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("reading csv line %d: %w", line, err)
		}

		track := domain.TrackMetadata{
			Title:  field(record, cols, "title"),
			Artist: field(record, cols, "artist"),
			Album:  field(record, cols, "album"),
		}
		if track.Title == "" && track.Artist == "" {
			continue
		}

		if d := field(record, cols, "duration"); d != "" {
			if ms, err := strconv.Atoi(strings.TrimSpace(d)); err == nil {
				track.DurationMS = ms
			}
		}
		if uri := field(record, cols, "uri"); uri != "" {
			track.SourceURL = normalizeRef(uri)
			track.ID = trackIDFromRef(uri)
		}

		tracks = append(tracks, track)
	}

	if len(tracks) == 0 {
		return nil, fmt.Errorf("csv contains no tracks")
	}
	return tracks, nil
}

// mapColumns resolves header names to field indices.
func mapColumns(header []string) map[string]int {
	cols := map[string]int{}
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		for field, aliases := range columnAliases {
			if _, taken := cols[field]; taken {
				continue
			}
			for _, alias := range aliases {
				if name == alias {
					cols[field] = i
					break
				}
			}
		}
	}
	return cols
}

func field(record []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// normalizeRef turns "spotify:track:<id>" URIs into open.spotify.com URLs
// and passes URLs through unchanged.
func normalizeRef(ref string) string {
	if id := uriTrackID(ref); id != "" {
		return "https://open.spotify.com/track/" + id
	}
	return ref
}

func trackIDFromRef(ref string) string {
	if id := uriTrackID(ref); id != "" {
		return id
	}
	// https://open.spotify.com/track/<id>?si=...
	if idx := strings.Index(ref, "/track/"); idx != -1 {
		id := ref[idx+len("/track/"):]
		if q := strings.IndexAny(id, "?#"); q != -1 {
			id = id[:q]
		}
		return id
	}
	return ""
}

func uriTrackID(ref string) string {
	if strings.HasPrefix(ref, "spotify:track:") {
		return strings.TrimPrefix(ref, "spotify:track:")
	}
	return ""
}
