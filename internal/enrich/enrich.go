// Package enrich gathers optional extras for a track: cover art and lyrics.
// Both halves run concurrently and independently; a miss on either side is
// logged and dropped, never surfaced as an error.
package enrich

import (
	"context"
	"sync"

	"github.com/cesargomez89/tunegrab/internal/covers"
	"github.com/cesargomez89/tunegrab/internal/domain"
	"github.com/cesargomez89/tunegrab/internal/logger"
)

// CoverFetcher resolves normalized cover bytes for a track.
type CoverFetcher interface {
	Fetch(ctx context.Context, track domain.TrackMetadata, opts covers.Options) ([]byte, error)
}

// LyricsFetcher resolves lyrics for a track.
type LyricsFetcher interface {
	Fetch(ctx context.Context, track domain.TrackMetadata) (*domain.LyricsResult, error)
}

// Fetcher runs cover and lyrics lookups side by side.
type Fetcher struct {
	covers CoverFetcher
	lyrics LyricsFetcher
	log    *logger.Logger
}

func NewFetcher(covers CoverFetcher, lyrics LyricsFetcher, log *logger.Logger) *Fetcher {
	return &Fetcher{
		covers: covers,
		lyrics: lyrics,
		log:    log.WithComponent("enrich"),
	}
}

// Fetch collects whatever extras are available for the track. Disabled or
// failed lookups leave their half of the result empty. Fetch never fails.
func (f *Fetcher) Fetch(ctx context.Context, track domain.TrackMetadata, opts domain.DownloadOptions) *domain.EnrichmentResult {
	result := &domain.EnrichmentResult{}

	var wg sync.WaitGroup

	if opts.DownloadCover && f.covers != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, err := f.covers.Fetch(ctx, track, covers.Options{
				Width:  opts.CoverWidth,
				Height: opts.CoverHeight,
				Format: opts.CoverFormat,
			})
			if err != nil {
				f.log.Warn("no cover art found", "artist", track.Artist, "title", track.Title, "error", err)
				return
			}
			result.Cover = data
		}()
	}

	if opts.DownloadLyrics && f.lyrics != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lyrics, err := f.lyrics.Fetch(ctx, track)
			if err != nil {
				f.log.Warn("no lyrics found", "artist", track.Artist, "title", track.Title, "error", err)
				return
			}
			result.Lyrics = lyrics
		}()
	}

	wg.Wait()
	return result
}
