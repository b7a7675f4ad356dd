// Package covers resolves album artwork for a track through a chain of
// sources and normalizes it to the configured size and encoding.
package covers

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/cesargomez89/tunegrab/internal/constants"
	"github.com/cesargomez89/tunegrab/internal/domain"
	"github.com/cesargomez89/tunegrab/internal/httpclient"
	"github.com/cesargomez89/tunegrab/internal/logger"
	"github.com/cesargomez89/tunegrab/internal/spotify"
	"github.com/cesargomez89/tunegrab/internal/storage"
)

// MetadataSource re-fetches artwork by track id when the metadata in hand
// has no cover URL.
type MetadataSource interface {
	CoverURL(ctx context.Context, trackID string) (string, error)
}

// ArtworkSearcher finds artwork by text search, the secondary provider.
type ArtworkSearcher interface {
	AlbumArtwork(ctx context.Context, artist, album string) (string, error)
	TrackArtwork(ctx context.Context, artist, title string) (string, error)
}

// Fetcher walks the cover resolution chain: metadata URL, metadata provider
// re-fetch, album search, track search. First success wins; every failure
// falls through silently to the next source.
type Fetcher struct {
	http     *httpclient.Client
	metadata MetadataSource  // optional
	searcher ArtworkSearcher // optional
	log      *logger.Logger
}

func NewFetcher(http *httpclient.Client, metadata MetadataSource, searcher ArtworkSearcher, log *logger.Logger) *Fetcher {
	return &Fetcher{
		http:     http,
		metadata: metadata,
		searcher: searcher,
		log:      log.WithComponent("covers"),
	}
}

// Options controls the normalized output image.
type Options struct {
	Width  int
	Height int
	Format string // jpeg or png
}

// Fetch resolves, downloads and normalizes cover art for a track.
func (f *Fetcher) Fetch(ctx context.Context, track domain.TrackMetadata, opts Options) ([]byte, error) {
	for _, source := range f.sources(track) {
		coverURL, err := source.resolve(ctx)
		if err != nil {
			f.log.Debug("cover source miss", "source", source.name, "error", err)
			continue
		}

		data, err := f.http.Get(ctx, coverURL, nil)
		if err != nil {
			f.log.Debug("cover download failed", "source", source.name, "url", coverURL, "error", err)
			continue
		}

		processed, err := Normalize(data, opts)
		if err != nil {
			f.log.Debug("cover decode failed", "source", source.name, "error", err)
			continue
		}

		f.log.Info("resolved cover art", "source", source.name, "bytes", len(processed))
		return processed, nil
	}

	return nil, fmt.Errorf("%w: cover art for %q", domain.ErrNoSearchResults, track.Artist+" - "+track.Title)
}

type coverSource struct {
	name    string
	resolve func(ctx context.Context) (string, error)
}

func (f *Fetcher) sources(track domain.TrackMetadata) []coverSource {
	sources := []coverSource{
		{
			name: "metadata",
			resolve: func(context.Context) (string, error) {
				if track.CoverURL == "" {
					return "", fmt.Errorf("no cover url in metadata")
				}
				return track.CoverURL, nil
			},
		},
	}

	if f.metadata != nil {
		sources = append(sources, coverSource{
			name: "provider-refetch",
			resolve: func(ctx context.Context) (string, error) {
				id, err := spotify.TrackIDFromURL(track.SourceURL)
				if err != nil {
					return "", err
				}
				return f.metadata.CoverURL(ctx, id)
			},
		})
	}

	if f.searcher != nil {
		sources = append(sources,
			coverSource{
				name: "album-search",
				resolve: func(ctx context.Context) (string, error) {
					return f.searcher.AlbumArtwork(ctx, track.Artist, track.Album)
				},
			},
			coverSource{
				name: "track-search",
				resolve: func(ctx context.Context) (string, error) {
					return f.searcher.TrackArtwork(ctx, track.Artist, track.Title)
				},
			},
		)
	}

	return sources
}

// Normalize decodes raw image bytes, resizes to the requested dimensions
// with Lanczos resampling, and re-encodes.
func Normalize(data []byte, opts Options) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding cover image: %w", err)
	}

	resized := imaging.Resize(img, opts.Width, opts.Height, imaging.Lanczos)

	encoding := imaging.JPEG
	if opts.Format == "png" {
		encoding = imaging.PNG
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, encoding); err != nil {
		return nil, fmt.Errorf("encoding cover image: %w", err)
	}
	return buf.Bytes(), nil
}

// Ext returns the file extension for a cover format.
func Ext(format string) string {
	if format == "png" {
		return constants.ExtPNG
	}
	return constants.ExtJPG
}

// Save writes cover bytes to path, creating parent directories.
func Save(path string, data []byte) error {
	if err := storage.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("creating covers dir: %w", err)
	}
	return storage.WriteFile(path, data)
}
