package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/cesargomez89/tunegrab/internal/domain"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRecordAndListDownloads(t *testing.T) {
	db := testDB(t)

	results := []domain.DownloadTaskResult{
		{
			Track:      domain.TrackMetadata{ID: "t1", Title: "One", Artist: "A", Album: "X"},
			Success:    true,
			OutputPath: "/music/tracks/A - One.mp3",
		},
		{
			Track:   domain.TrackMetadata{ID: "t2", Title: "Two", Artist: "B"},
			Success: false,
			Error:   "no search results",
		},
	}

	for _, r := range results {
		if err := db.RecordResult("batch-1", r); err != nil {
			t.Fatalf("RecordResult: %v", err)
		}
	}

	rows, err := db.ListBatch("batch-1")
	if err != nil {
		t.Fatalf("ListBatch: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if rows[0].TrackID != "t1" || !rows[0].Success {
		t.Errorf("Unexpected first row: %+v", rows[0])
	}
	if rows[1].Error != "no search results" || rows[1].Success {
		t.Errorf("Unexpected second row: %+v", rows[1])
	}

	recent, err := db.ListDownloads(1)
	if err != nil {
		t.Fatalf("ListDownloads: %v", err)
	}
	if len(recent) != 1 {
		t.Errorf("Expected 1 row with limit 1, got %d", len(recent))
	}
}

func TestCacheRoundTrip(t *testing.T) {
	db := testDB(t)

	if err := db.SetCache("artist title", []byte(`[{"url":"u"}]`), time.Hour); err != nil {
		t.Fatalf("SetCache: %v", err)
	}

	data, err := db.GetCache("artist title")
	if err != nil {
		t.Fatalf("GetCache: %v", err)
	}
	if string(data) != `[{"url":"u"}]` {
		t.Errorf("Unexpected cached data: %q", data)
	}

	// Missing key is not an error
	data, err = db.GetCache("missing")
	if err != nil || data != nil {
		t.Errorf("Expected nil,nil for missing key, got %v, %v", data, err)
	}
}

func TestCacheExpiry(t *testing.T) {
	db := testDB(t)

	if err := db.SetCache("old", []byte("stale"), -time.Minute); err != nil {
		t.Fatalf("SetCache: %v", err)
	}
	// ttl <= 0 means no expiry, so write one in the past directly
	past := time.Now().Add(-time.Minute)
	if _, err := db.Exec("UPDATE search_cache SET expires_at = ? WHERE key = ?", past, "old"); err != nil {
		t.Fatalf("forcing expiry: %v", err)
	}

	data, err := db.GetCache("old")
	if err != nil {
		t.Fatalf("GetCache: %v", err)
	}
	if data != nil {
		t.Errorf("Expected expired entry to read as nil, got %q", data)
	}
}

func TestSettingsRepo(t *testing.T) {
	db := testDB(t)
	repo := NewSettingsRepo(db)

	if err := repo.Set(SettingLastFormat, "flac"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	v, err := repo.Get(SettingLastFormat)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != "flac" {
		t.Errorf("Expected flac, got %q", v)
	}

	// Upsert
	if err := repo.Set(SettingLastFormat, "mp3"); err != nil {
		t.Fatalf("Set upsert: %v", err)
	}
	v, _ = repo.Get(SettingLastFormat)
	if v != "mp3" {
		t.Errorf("Expected mp3 after upsert, got %q", v)
	}

	// Missing key reads as empty
	v, err = repo.Get("nope")
	if err != nil || v != "" {
		t.Errorf("Expected empty value for missing key, got %q, %v", v, err)
	}

	if err := repo.Delete(SettingLastFormat); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	v, _ = repo.Get(SettingLastFormat)
	if v != "" {
		t.Errorf("Expected empty after delete, got %q", v)
	}
}
