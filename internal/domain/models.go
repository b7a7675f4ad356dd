package domain

// Platform identifies the source platform a search candidate came from.
type Platform string

const (
	PlatformYouTube    Platform = "youtube"
	PlatformSoundCloud Platform = "soundcloud"
)

// TrackMetadata is the canonical identity of a track to download. It is
// produced by a metadata provider or CSV import and passed by value through
// the pipeline; the pipeline never mutates it.
type TrackMetadata struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Artist       string            `json:"artist"`
	Album        string            `json:"album"`
	AlbumArtist  string            `json:"album_artist,omitempty"`
	TrackNumber  int               `json:"track_number,omitempty"`
	DiscNumber   int               `json:"disc_number,omitempty"`
	ReleaseDate  string            `json:"release_date,omitempty"`
	DurationMS   int               `json:"duration_ms"`
	Genres       []string          `json:"genres,omitempty"`
	SourceURL    string            `json:"source_url"`
	ExternalURLs map[string]string `json:"external_urls,omitempty"`
	CoverURL     string            `json:"cover_url,omitempty"`
	Composer     string            `json:"composer,omitempty"`
	Comment      string            `json:"comment,omitempty"`
}

// Year returns the release year parsed from the release date, or 0.
func (t TrackMetadata) Year() string {
	if len(t.ReleaseDate) >= 4 {
		return t.ReleaseDate[:4]
	}
	return ""
}

// AlbumMetadata groups an album's tracks as returned by a metadata provider.
type AlbumMetadata struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Artist      string          `json:"artist"`
	ReleaseDate string          `json:"release_date"`
	TotalTracks int             `json:"total_tracks"`
	Images      []ImageInfo     `json:"images"`
	SourceURL   string          `json:"source_url"`
	Tracks      []TrackMetadata `json:"tracks"`
}

// PlaylistMetadata groups a playlist's tracks as returned by a metadata provider.
type PlaylistMetadata struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Owner       string          `json:"owner"`
	TotalTracks int             `json:"total_tracks"`
	Images      []ImageInfo     `json:"images"`
	SourceURL   string          `json:"source_url"`
	Tracks      []TrackMetadata `json:"tracks"`
}

// ImageInfo describes one remote artwork variant.
type ImageInfo struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// TrackQuery is the immutable input to a source search.
type TrackQuery struct {
	Artist       string
	Title        string
	Album        string
	DurationHint int // seconds, 0 when unknown
}

// String returns the free-text form used for search and cache keying.
func (q TrackQuery) String() string {
	return q.Artist + " " + q.Title
}

// SearchCandidate is one possible audio source for a track. Candidates are
// ranked and filtered but never mutated after creation.
type SearchCandidate struct {
	Title     string   `json:"title"`
	URL       string   `json:"url"`
	Platform  Platform `json:"platform"`
	Duration  int      `json:"duration,omitempty"` // seconds, 0 when unknown
	Uploader  string   `json:"uploader,omitempty"`
	ViewCount int64    `json:"view_count"`
	Thumbnail string   `json:"thumbnail,omitempty"`
}
