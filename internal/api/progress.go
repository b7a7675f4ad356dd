package api

import (
	"sync"

	"github.com/cesargomez89/tunegrab/internal/domain"
)

// ProgressState keeps the latest progress event per track so the status API
// can report in-flight batches. It is fed from the pipeline's event channel
// and read concurrently by HTTP handlers.
type ProgressState struct {
	mu     sync.RWMutex
	tracks map[string]domain.DownloadProgress
}

func NewProgressState() *ProgressState {
	return &ProgressState{tracks: make(map[string]domain.DownloadProgress)}
}

// Consume drains the event channel until it closes. Run it in its own
// goroutine.
func (s *ProgressState) Consume(events <-chan domain.DownloadProgress) {
	for p := range events {
		s.Update(p)
	}
}

// Update records the latest event for a track.
func (s *ProgressState) Update(p domain.DownloadProgress) {
	if p.TrackID == "" {
		return
	}
	s.mu.Lock()
	s.tracks[p.TrackID] = p
	s.mu.Unlock()
}

// Snapshot returns a copy of the current per-track progress.
func (s *ProgressState) Snapshot() []domain.DownloadProgress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.DownloadProgress, 0, len(s.tracks))
	for _, p := range s.tracks {
		out = append(out, p)
	}
	return out
}
