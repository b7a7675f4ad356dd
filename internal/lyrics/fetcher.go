package lyrics

import (
	"context"
	"fmt"

	"github.com/cesargomez89/tunegrab/internal/domain"
	"github.com/cesargomez89/tunegrab/internal/httpclient"
	"github.com/cesargomez89/tunegrab/internal/logger"
)

// Fetcher tries synced lyrics first across all query variants; only when no
// provider has timings does it fall back to plain text. Synced always wins.
type Fetcher struct {
	synced   []SyncedProvider
	unsynced []UnsyncedProvider
	log      *logger.Logger
}

// Keys holds optional provider credentials. Providers without their key are
// left out of the chain.
type Keys struct {
	MusixmatchAPIKey  string
	GeniusAccessToken string
}

// NewFetcher wires the provider chain in priority order.
func NewFetcher(http *httpclient.Client, keys Keys, log *logger.Logger) *Fetcher {
	lrclib := NewLRClib(http)
	ovh := NewLyricsOvh(http)

	f := &Fetcher{
		synced:   []SyncedProvider{lrclib, ovh},
		unsynced: []UnsyncedProvider{lrclib, ovh},
		log:      log.WithComponent("lyrics"),
	}
	if keys.MusixmatchAPIKey != "" {
		f.unsynced = append(f.unsynced, NewMusixmatch(http, keys.MusixmatchAPIKey))
	}
	f.unsynced = append(f.unsynced, NewAZLyrics(http))
	f.unsynced = append(f.unsynced, NewGenius(http, keys.GeniusAccessToken))
	return f
}

// Fetch resolves lyrics for a track, or an error when every provider missed.
func (f *Fetcher) Fetch(ctx context.Context, track domain.TrackMetadata) (*domain.LyricsResult, error) {
	queries := Queries(track.Artist, track.Title)

	for _, query := range queries {
		for _, provider := range f.synced {
			lyrics, err := provider.Synced(ctx, track.Artist, track.Title, query)
			if err != nil {
				f.log.Debug("synced lyrics miss", "provider", provider.Name(), "query", query, "error", err)
				continue
			}
			f.log.Info("found synced lyrics", "provider", provider.Name(), "lines", len(lyrics.Lines))
			return &domain.LyricsResult{Synced: lyrics}, nil
		}
	}

	for _, query := range queries {
		for _, provider := range f.unsynced {
			lyrics, err := provider.Unsynced(ctx, track.Artist, track.Title, query)
			if err != nil {
				f.log.Debug("plain lyrics miss", "provider", provider.Name(), "query", query, "error", err)
				continue
			}
			f.log.Info("found plain lyrics", "provider", provider.Name())
			return &domain.LyricsResult{Unsynced: lyrics}, nil
		}
	}

	return nil, fmt.Errorf("%w: lyrics for %q", domain.ErrNoSearchResults, track.Artist+" - "+track.Title)
}
