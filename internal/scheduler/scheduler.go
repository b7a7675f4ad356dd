// Package scheduler fans a batch of tracks out to concurrent pipeline runs,
// bounded by a semaphore. A failing or panicking track never takes the rest
// of the batch down with it.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/cesargomez89/tunegrab/internal/constants"
	"github.com/cesargomez89/tunegrab/internal/domain"
	"github.com/cesargomez89/tunegrab/internal/logger"
	"github.com/cesargomez89/tunegrab/internal/pipeline"
)

// TrackRunner executes the download pipeline for one track.
type TrackRunner interface {
	Run(ctx context.Context, track domain.TrackMetadata, opts domain.DownloadOptions, emitter *pipeline.Emitter) (string, error)
}

// Scheduler limits how many tracks download at once.
type Scheduler struct {
	runner      TrackRunner
	concurrency int
	log         *logger.Logger
}

func New(runner TrackRunner, concurrency int, log *logger.Logger) *Scheduler {
	if concurrency < 1 {
		concurrency = constants.DefaultConcurrency
	}
	return &Scheduler{
		runner:      runner,
		concurrency: concurrency,
		log:         log.WithComponent("scheduler"),
	}
}

// Run downloads every track in the batch and returns one result per track,
// in input order. Tracks queue immediately but only `concurrency` of them
// run the pipeline at a time; each emits a queued event before waiting on
// the semaphore so the user sees the whole batch up front.
func (s *Scheduler) Run(ctx context.Context, batchID string, tracks []domain.TrackMetadata, opts domain.DownloadOptions, emitter *pipeline.Emitter) []domain.DownloadTaskResult {
	log := s.log.WithBatch(batchID)
	log.Info("starting batch", "tracks", len(tracks), "concurrency", s.concurrency)

	results := make([]domain.DownloadTaskResult, len(tracks))
	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup

	for i, track := range tracks {
		wg.Add(1)
		go func(i int, track domain.TrackMetadata) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Error("track download panicked", "track_id", track.ID, "panic", r)
					results[i] = failure(track, fmt.Sprintf("panic: %v", r))
					emitter.Emit(domain.DownloadProgress{
						TrackID: track.ID,
						Stage:   domain.StageError,
						Message: fmt.Sprintf("panic: %v", r),
					})
				}
			}()

			emitter.Emit(domain.DownloadProgress{
				TrackID:  track.ID,
				Stage:    domain.StageQueued,
				Fraction: domain.FractionQueued,
				Message:  "queued",
			})

			if ctx.Err() != nil {
				results[i] = failure(track, ctx.Err().Error())
				return
			}
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results[i] = failure(track, ctx.Err().Error())
				return
			}
			defer func() { <-sem }()

			path, err := s.runner.Run(ctx, track, opts, emitter)
			if err != nil {
				results[i] = failure(track, err.Error())
				return
			}
			results[i] = domain.DownloadTaskResult{
				Track:      track,
				Success:    true,
				OutputPath: path,
			}
		}(i, track)
	}

	wg.Wait()

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	log.Info("batch finished", "succeeded", succeeded, "failed", len(tracks)-succeeded)
	return results
}

func failure(track domain.TrackMetadata, message string) domain.DownloadTaskResult {
	return domain.DownloadTaskResult{
		Track:   track,
		Success: false,
		Error:   message,
	}
}
