package spotify

import "github.com/cesargomez89/tunegrab/internal/domain"

// Wire types for the subset of the Web API responses we read.

type apiArtist struct {
	Name string `json:"name"`
}

type apiImage struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type apiAlbumRef struct {
	Name        string      `json:"name"`
	ReleaseDate string      `json:"release_date"`
	Images      []apiImage  `json:"images"`
	Artists     []apiArtist `json:"artists"`
}

type apiTrack struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Artists      []apiArtist       `json:"artists"`
	Album        *apiAlbumRef      `json:"album,omitempty"`
	TrackNumber  int               `json:"track_number"`
	DiscNumber   int               `json:"disc_number"`
	DurationMS   int               `json:"duration_ms"`
	ExternalURLs map[string]string `json:"external_urls"`
}

func (t apiTrack) toDomain() domain.TrackMetadata {
	track := domain.TrackMetadata{
		ID:           t.ID,
		Title:        t.Name,
		Artist:       joinArtists(t.Artists),
		TrackNumber:  t.TrackNumber,
		DiscNumber:   t.DiscNumber,
		DurationMS:   t.DurationMS,
		ExternalURLs: t.ExternalURLs,
		SourceURL:    t.ExternalURLs["spotify"],
	}
	if t.Album != nil {
		track.Album = t.Album.Name
		track.ReleaseDate = t.Album.ReleaseDate
		track.AlbumArtist = joinArtists(t.Album.Artists)
		if len(t.Album.Images) > 0 {
			track.CoverURL = t.Album.Images[0].URL
		}
	}
	return track
}

type apiTrackPage struct {
	Items []apiTrack `json:"items"`
	Next  string     `json:"next"`
	Total int        `json:"total"`
}

type apiAlbum struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Artists      []apiArtist       `json:"artists"`
	ReleaseDate  string            `json:"release_date"`
	TotalTracks  int               `json:"total_tracks"`
	Images       []apiImage        `json:"images"`
	ExternalURLs map[string]string `json:"external_urls"`
	TracksPage   apiTrackPage      `json:"tracks"`
}

type apiPlaylistItem struct {
	Track *apiTrack `json:"track"`
}

type apiPlaylistPage struct {
	Items []apiPlaylistItem `json:"items"`
	Next  string            `json:"next"`
	Total int               `json:"total"`
}

type apiPlaylist struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Images       []apiImage `json:"images"`
	ExternalURLs map[string]string `json:"external_urls"`
	Owner        struct {
		DisplayName string `json:"display_name"`
	} `json:"owner"`
	TracksPage apiPlaylistPage `json:"tracks"`
}
