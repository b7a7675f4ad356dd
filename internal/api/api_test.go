package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cesargomez89/tunegrab/internal/domain"
	"github.com/cesargomez89/tunegrab/internal/logger"
	"github.com/cesargomez89/tunegrab/internal/store"
)

type fakeStore struct {
	downloads []store.Download
	err       error
	lastLimit int
}

func (f *fakeStore) ListDownloads(limit int) ([]store.Download, error) {
	f.lastLimit = limit
	return f.downloads, f.err
}

func (f *fakeStore) ListBatch(batchID string) ([]store.Download, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []store.Download
	for _, d := range f.downloads {
		if d.BatchID == batchID {
			out = append(out, d)
		}
	}
	return out, nil
}

func newTestHandler(fs *fakeStore) *Handler {
	return NewHandler(fs, NewProgressState(), logger.Default())
}

func get(t *testing.T, h *Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestHandler(&fakeStore{}), "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestDownloads(t *testing.T) {
	fs := &fakeStore{downloads: []store.Download{
		{ID: 1, BatchID: "b1", TrackID: "t1", Title: "Song", Artist: "Artist", Success: true},
	}}

	rec := get(t, newTestHandler(fs), "/api/downloads")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if fs.lastLimit != defaultHistoryLimit {
		t.Errorf("limit = %d, want default %d", fs.lastLimit, defaultHistoryLimit)
	}

	var body []store.Download
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(body) != 1 || body[0].Title != "Song" {
		t.Errorf("body = %+v", body)
	}
}

func TestDownloadsCustomLimit(t *testing.T) {
	fs := &fakeStore{}
	rec := get(t, newTestHandler(fs), "/api/downloads?limit=5")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if fs.lastLimit != 5 {
		t.Errorf("limit = %d", fs.lastLimit)
	}

	// An empty history still encodes as a JSON array.
	if got := rec.Body.String(); got != "[]\n" {
		t.Errorf("body = %q", got)
	}
}

func TestDownloadsBadLimit(t *testing.T) {
	rec := get(t, newTestHandler(&fakeStore{}), "/api/downloads?limit=zero")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestDownloadsStoreError(t *testing.T) {
	rec := get(t, newTestHandler(&fakeStore{err: errors.New("db locked")}), "/api/downloads")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestBatch(t *testing.T) {
	fs := &fakeStore{downloads: []store.Download{
		{ID: 1, BatchID: "b1", TrackID: "t1", Title: "One", Success: true},
		{ID: 2, BatchID: "b2", TrackID: "t2", Title: "Two", Success: false},
	}}
	h := newTestHandler(fs)

	rec := get(t, h, "/api/batches/b1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body []store.Download
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(body) != 1 || body[0].BatchID != "b1" {
		t.Errorf("body = %+v", body)
	}

	if rec := get(t, h, "/api/batches/nope"); rec.Code != http.StatusNotFound {
		t.Errorf("missing batch status = %d", rec.Code)
	}
}

func TestProgressEndpoint(t *testing.T) {
	h := newTestHandler(&fakeStore{})
	h.progress.Update(domain.DownloadProgress{
		TrackID:  "t1",
		Stage:    domain.StageDownloadingAudio,
		Fraction: 0.45,
	})

	rec := get(t, h, "/api/progress")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body []domain.DownloadProgress
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(body) != 1 || body[0].Stage != domain.StageDownloadingAudio {
		t.Errorf("body = %+v", body)
	}
}

func TestProgressStateKeepsLatest(t *testing.T) {
	s := NewProgressState()
	events := make(chan domain.DownloadProgress, 4)
	events <- domain.DownloadProgress{TrackID: "t1", Stage: domain.StageQueued, Fraction: 0}
	events <- domain.DownloadProgress{TrackID: "t1", Stage: domain.StageCompleted, Fraction: 1}
	events <- domain.DownloadProgress{Stage: domain.StageQueued} // no track id, ignored
	close(events)

	s.Consume(events)

	snapshot := s.Snapshot()
	if len(snapshot) != 1 {
		t.Fatalf("snapshot = %+v", snapshot)
	}
	if snapshot[0].Stage != domain.StageCompleted {
		t.Errorf("Expected latest event kept, got %+v", snapshot[0])
	}
}
