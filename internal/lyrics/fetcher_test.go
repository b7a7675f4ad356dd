package lyrics

import (
	"context"
	"errors"
	"testing"

	"github.com/cesargomez89/tunegrab/internal/domain"
	"github.com/cesargomez89/tunegrab/internal/logger"
)

type fakeSynced struct {
	lyrics *domain.SyncedLyrics
	calls  int
}

func (f *fakeSynced) Name() string { return "fake-synced" }

func (f *fakeSynced) Synced(_ context.Context, _, _, _ string) (*domain.SyncedLyrics, error) {
	f.calls++
	if f.lyrics == nil {
		return nil, errors.New("miss")
	}
	return f.lyrics, nil
}

type fakeUnsynced struct {
	lyrics *domain.UnsyncedLyrics
	calls  int
}

func (f *fakeUnsynced) Name() string { return "fake-unsynced" }

func (f *fakeUnsynced) Unsynced(_ context.Context, _, _, _ string) (*domain.UnsyncedLyrics, error) {
	f.calls++
	if f.lyrics == nil {
		return nil, errors.New("miss")
	}
	return f.lyrics, nil
}

func track() domain.TrackMetadata {
	return domain.TrackMetadata{Artist: "Artist", Title: "Song"}
}

func TestSyncedWinsOverUnsynced(t *testing.T) {
	synced := &fakeSynced{lyrics: &domain.SyncedLyrics{
		Lines:  []domain.LyricsLine{{TimestampMS: 0, Text: "a"}},
		Source: "fake-synced",
	}}
	unsynced := &fakeUnsynced{lyrics: &domain.UnsyncedLyrics{Text: "plain", Source: "fake-unsynced"}}

	f := &Fetcher{
		synced:   []SyncedProvider{synced},
		unsynced: []UnsyncedProvider{unsynced},
		log:      logger.Default(),
	}

	result, err := f.Fetch(context.Background(), track())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result.Synced == nil || result.Unsynced != nil {
		t.Errorf("Expected synced result, got %+v", result)
	}
	if unsynced.calls != 0 {
		t.Error("Expected unsynced providers untouched when synced lyrics exist")
	}
}

func TestFallsBackToUnsynced(t *testing.T) {
	synced := &fakeSynced{}
	unsynced := &fakeUnsynced{lyrics: &domain.UnsyncedLyrics{Text: "plain", Source: "fake-unsynced"}}

	f := &Fetcher{
		synced:   []SyncedProvider{synced},
		unsynced: []UnsyncedProvider{unsynced},
		log:      logger.Default(),
	}

	result, err := f.Fetch(context.Background(), track())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result.Unsynced == nil || result.Unsynced.Text != "plain" {
		t.Errorf("Expected unsynced result, got %+v", result)
	}
	// Every query variant hits the synced provider before any fallback
	if synced.calls != 3 {
		t.Errorf("Expected 3 synced attempts (one per variant), got %d", synced.calls)
	}
}

func TestAllProvidersMiss(t *testing.T) {
	f := &Fetcher{
		synced:   []SyncedProvider{&fakeSynced{}},
		unsynced: []UnsyncedProvider{&fakeUnsynced{}},
		log:      logger.Default(),
	}

	if _, err := f.Fetch(context.Background(), track()); !errors.Is(err, domain.ErrNoSearchResults) {
		t.Errorf("Expected ErrNoSearchResults, got %v", err)
	}
}

func TestNewFetcherChain(t *testing.T) {
	f := NewFetcher(nil, Keys{}, logger.Default())
	if len(f.synced) != 2 {
		t.Errorf("Expected 2 synced providers, got %d", len(f.synced))
	}
	// Without a Musixmatch key: LRClib, lyrics.ovh, AZLyrics, Genius
	if len(f.unsynced) != 4 {
		t.Errorf("Expected 4 unsynced providers, got %d", len(f.unsynced))
	}

	withKey := NewFetcher(nil, Keys{MusixmatchAPIKey: "k"}, logger.Default())
	if len(withKey.unsynced) != 5 {
		t.Errorf("Expected 5 unsynced providers with Musixmatch key, got %d", len(withKey.unsynced))
	}
}

func TestWriteSidecar(t *testing.T) {
	dir := t.TempDir()

	syncedResult := &domain.LyricsResult{Synced: &domain.SyncedLyrics{
		Lines: []domain.LyricsLine{{TimestampMS: 61000, Text: "b"}},
	}}
	if SidecarExt(syncedResult) != ".lrc" {
		t.Errorf("Expected .lrc for synced lyrics")
	}

	path := dir + "/sub/Artist - Song.lrc"
	if err := WriteSidecar(path, syncedResult); err != nil {
		t.Fatalf("WriteSidecar: %v", err)
	}

	unsyncedResult := &domain.LyricsResult{Unsynced: &domain.UnsyncedLyrics{Text: "plain"}}
	if SidecarExt(unsyncedResult) != ".txt" {
		t.Errorf("Expected .txt for unsynced lyrics")
	}

	if err := WriteSidecar(dir+"/Artist - Song.txt", unsyncedResult); err != nil {
		t.Fatalf("WriteSidecar txt: %v", err)
	}

	if err := WriteSidecar(dir+"/empty.txt", &domain.LyricsResult{}); err == nil {
		t.Error("Expected error for empty lyrics result")
	}
}
