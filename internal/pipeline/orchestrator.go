// Package pipeline runs the per-track download sequence: source search,
// audio fetch with fallbacks, conversion, enrichment, tag embedding. Stages
// advance through a forward-only state machine and report progress through a
// bounded emitter.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/cesargomez89/tunegrab/internal/covers"
	"github.com/cesargomez89/tunegrab/internal/domain"
	"github.com/cesargomez89/tunegrab/internal/logger"
	"github.com/cesargomez89/tunegrab/internal/lyrics"
	"github.com/cesargomez89/tunegrab/internal/storage"
	"github.com/cesargomez89/tunegrab/internal/ytdlp"
)

// SourceSearcher finds candidate audio sources for a track.
type SourceSearcher interface {
	Search(ctx context.Context, query domain.TrackQuery) ([]domain.SearchCandidate, error)
	SearchPlatform(ctx context.Context, query domain.TrackQuery, platform domain.Platform) ([]domain.SearchCandidate, error)
}

// AudioFetcher downloads a source URL as audio.
type AudioFetcher interface {
	IsAvailable(ctx context.Context) bool
	Download(ctx context.Context, url, outputPath string, format domain.AudioFormat, bitrate domain.Bitrate, progress ytdlp.ProgressFunc) error
}

// Transcoder converts audio between containers.
type Transcoder interface {
	NeedsConversion(inputPath string, format domain.AudioFormat) bool
	Convert(ctx context.Context, inputPath, outputPath string, format domain.AudioFormat, bitrate domain.Bitrate) error
}

// Enricher collects optional cover art and lyrics. It never fails.
type Enricher interface {
	Fetch(ctx context.Context, track domain.TrackMetadata, opts domain.DownloadOptions) *domain.EnrichmentResult
}

// MetadataEmbedder writes tags into a finished audio file.
type MetadataEmbedder interface {
	Embed(path string, track domain.TrackMetadata, enrichment *domain.EnrichmentResult, opts domain.DownloadOptions) error
}

// Orchestrator wires the per-track pipeline together.
type Orchestrator struct {
	search    SourceSearcher
	fetch     AudioFetcher
	transcode Transcoder
	enrich    Enricher
	embed     MetadataEmbedder
	log       *logger.Logger
}

func NewOrchestrator(search SourceSearcher, fetch AudioFetcher, transcode Transcoder, enrich Enricher, embed MetadataEmbedder, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		search:    search,
		fetch:     fetch,
		transcode: transcode,
		enrich:    enrich,
		embed:     embed,
		log:       log.WithComponent("pipeline"),
	}
}

// Run downloads one track end to end and returns the final audio path.
// Progress is reported through the emitter; on failure the terminal error
// stage is emitted before returning.
func (o *Orchestrator) Run(ctx context.Context, track domain.TrackMetadata, opts domain.DownloadOptions, emitter *Emitter) (string, error) {
	t := newTracker(track.ID, emitter)
	log := o.log.WithTrack(track.ID, track.Title)

	outputPath, err := o.run(ctx, t, log, track, opts)
	if err != nil {
		t.fail(err.Error())
		return "", err
	}

	t.advance(domain.StageCompleted, domain.FractionCompleted, "completed")
	return outputPath, nil
}

func (o *Orchestrator) run(ctx context.Context, t *tracker, log *logger.Logger, track domain.TrackMetadata, opts domain.DownloadOptions) (string, error) {
	query := domain.TrackQuery{
		Artist:       track.Artist,
		Title:        track.Title,
		Album:        track.Album,
		DurationHint: track.DurationMS / 1000,
	}
	layout := storage.Layout{Root: opts.OutputDir}
	outputPath := layout.TrackPath(track.Artist, track.Title, opts.Format.Ext())

	t.advance(domain.StageSearchingSource, domain.FractionSearching, "searching source")
	candidates, err := o.search.Search(ctx, query)
	if err != nil {
		log.Warn("source search failed, fallbacks still apply", "error", err)
	}

	t.advance(domain.StageDownloadingAudio, domain.FractionDownloading, "downloading audio")
	if err := o.fetchWithFallbacks(ctx, t, log, query, candidates, outputPath, opts); err != nil {
		return "", err
	}

	t.advance(domain.StageConvertingAudio, domain.FractionConverting, "converting audio")
	if o.transcode.NeedsConversion(outputPath, opts.Format) {
		if err := o.transcode.Convert(ctx, outputPath, outputPath, opts.Format, opts.Bitrate); err != nil {
			return "", err
		}
	}

	// Cover and lyrics run in parallel inside the enricher; both stages
	// share the same progress position. Stage events only fire for work
	// that was actually requested.
	if opts.DownloadCover {
		t.advance(domain.StageDownloadingCover, domain.FractionEnrichment, "downloading cover")
	}
	if opts.DownloadLyrics {
		t.advance(domain.StageDownloadingLyrics, domain.FractionEnrichment, "downloading lyrics")
	}
	enrichment := o.enrich.Fetch(ctx, track, opts)

	if opts.EmbedMetadata {
		t.advance(domain.StageEmbeddingMetadata, domain.FractionEmbedding, "embedding metadata")
		if err := o.embed.Embed(outputPath, track, enrichment, opts); err != nil {
			return "", err
		}
	} else if enrichment.Lyrics != nil {
		// Tags are off but the user asked for lyrics; keep the sidecar.
		path := layout.LyricsPath(outputPath, lyrics.SidecarExt(enrichment.Lyrics))
		if err := lyrics.WriteSidecar(path, enrichment.Lyrics); err != nil {
			log.Warn("failed to write lyrics sidecar", "path", path, "error", err)
		}
	}

	if opts.SaveCover && len(enrichment.Cover) > 0 {
		t.tick(domain.FractionCoverSave, "saving cover")
		coverPath := layout.CoverPath(track.Artist, track.Title, covers.Ext(opts.CoverFormat))
		if err := covers.Save(coverPath, enrichment.Cover); err != nil {
			log.Warn("failed to save cover copy", "path", coverPath, "error", err)
		}
	}

	return outputPath, nil
}

// fetchStrategy is one way to obtain the audio file. Strategies run in order
// until one succeeds.
type fetchStrategy struct {
	name string
	run  func(ctx context.Context) error
}

// fetchWithFallbacks tries the ranked candidates from the primary search,
// then a re-search on the platform not yet tried, then a direct free-text
// download as the last resort.
func (o *Orchestrator) fetchWithFallbacks(ctx context.Context, t *tracker, log *logger.Logger, query domain.TrackQuery, candidates []domain.SearchCandidate, outputPath string, opts domain.DownloadOptions) error {
	progress := func(fraction float64) {
		scaled := domain.FractionDownloading + fraction*(domain.FractionConverting-domain.FractionDownloading)
		t.tick(scaled, fmt.Sprintf("downloading %.0f%%", fraction*100))
	}

	strategies := []fetchStrategy{
		{
			name: "ranked candidates",
			run: func(ctx context.Context) error {
				return o.downloadCandidates(ctx, log, candidates, outputPath, opts, progress)
			},
		},
		{
			name: "secondary platform",
			run: func(ctx context.Context) error {
				platform := secondaryPlatform(candidates)
				retried, err := o.search.SearchPlatform(ctx, query, platform)
				if err != nil {
					return err
				}
				return o.downloadCandidates(ctx, log, retried, outputPath, opts, progress)
			},
		},
		{
			name: "direct search",
			run: func(ctx context.Context) error {
				if !o.fetch.IsAvailable(ctx) {
					return domain.ErrToolUnavailable
				}
				spec := "ytsearch1:" + query.String()
				return o.fetch.Download(ctx, spec, outputPath, opts.Format, opts.Bitrate, progress)
			},
		},
	}

	var errs []error
	for _, s := range strategies {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := s.run(ctx)
		if err == nil {
			return nil
		}
		log.Warn("fetch strategy failed", "strategy", s.name, "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
	}
	return fmt.Errorf("all fetch strategies failed: %w", errors.Join(errs...))
}

// downloadCandidates tries each candidate in rank order.
func (o *Orchestrator) downloadCandidates(ctx context.Context, log *logger.Logger, candidates []domain.SearchCandidate, outputPath string, opts domain.DownloadOptions, progress ytdlp.ProgressFunc) error {
	if len(candidates) == 0 {
		return domain.ErrNoSearchResults
	}

	var errs []error
	for _, c := range candidates {
		err := o.fetch.Download(ctx, c.URL, outputPath, opts.Format, opts.Bitrate, progress)
		if err == nil {
			log.Info("downloaded audio", "url", c.URL, "platform", c.Platform)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Debug("candidate failed", "url", c.URL, "error", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// secondaryPlatform picks the platform the primary search did not settle on.
func secondaryPlatform(candidates []domain.SearchCandidate) domain.Platform {
	if len(candidates) > 0 && candidates[0].Platform == domain.PlatformSoundCloud {
		return domain.PlatformYouTube
	}
	return domain.PlatformSoundCloud
}
