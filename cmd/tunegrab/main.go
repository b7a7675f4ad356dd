package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/cesargomez89/tunegrab/internal/api"
	"github.com/cesargomez89/tunegrab/internal/config"
	"github.com/cesargomez89/tunegrab/internal/constants"
	"github.com/cesargomez89/tunegrab/internal/convert"
	"github.com/cesargomez89/tunegrab/internal/covers"
	"github.com/cesargomez89/tunegrab/internal/csvimport"
	"github.com/cesargomez89/tunegrab/internal/domain"
	"github.com/cesargomez89/tunegrab/internal/enrich"
	"github.com/cesargomez89/tunegrab/internal/httpclient"
	"github.com/cesargomez89/tunegrab/internal/itunes"
	"github.com/cesargomez89/tunegrab/internal/logger"
	"github.com/cesargomez89/tunegrab/internal/lyrics"
	"github.com/cesargomez89/tunegrab/internal/pipeline"
	"github.com/cesargomez89/tunegrab/internal/scheduler"
	"github.com/cesargomez89/tunegrab/internal/search"
	"github.com/cesargomez89/tunegrab/internal/spotify"
	"github.com/cesargomez89/tunegrab/internal/store"
	"github.com/cesargomez89/tunegrab/internal/tagging"
	"github.com/cesargomez89/tunegrab/internal/ytdlp"
)

const minRequestInterval = 500 * time.Millisecond

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: tunegrab <spotify-url | spotify-uri | playlist.csv>")
		fmt.Fprintln(os.Stderr, "       tunegrab history")
		os.Exit(2)
	}
	input := os.Args[1]

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	if input == "history" {
		if err := printHistory(cfg.DBPath); err != nil {
			log.Fatalf("History error: %v", err)
		}
		return
	}

	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
			appLogger.Error("Failed to create db dir", "error", err)
			os.Exit(1)
		}
	}
	db, err := store.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to init DB", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	opts, err := cfg.Options()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	httpClient, err := httpclient.NewClient(nil, minRequestInterval, cfg.Proxy)
	if err != nil {
		log.Fatalf("HTTP client error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var spotifyClient *spotify.Client
	if cfg.SpotifyClientID != "" && cfg.SpotifyClientSecret != "" {
		spotifyClient = spotify.NewClient(httpClient, cfg.SpotifyClientID, cfg.SpotifyClientSecret, appLogger)
	}

	tracks, err := resolveTracks(ctx, input, spotifyClient)
	if err != nil {
		appLogger.Error("Failed to resolve tracks", "input", input, "error", err)
		os.Exit(1)
	}
	appLogger.Info("resolved tracks", "count", len(tracks))

	runner := ytdlp.New(appLogger, cfg.Proxy, cfg.SponsorBlockRemove)
	if !runner.IsAvailable(ctx) {
		appLogger.Error("yt-dlp not found on PATH")
		os.Exit(1)
	}

	cache := search.NewCache(db, constants.DefaultCacheTTL, appLogger)
	engine := search.NewEngine(runner, cache, appLogger)
	transcoder := convert.New(appLogger)
	itunesClient := itunes.NewClient(httpClient, appLogger)

	var metadataSource covers.MetadataSource
	if spotifyClient != nil {
		metadataSource = spotifyClient
	}
	coverFetcher := covers.NewFetcher(httpClient, metadataSource, itunesClient, appLogger)
	lyricsFetcher := lyrics.NewFetcher(httpClient, lyrics.Keys{
		MusixmatchAPIKey:  cfg.MusixmatchAPIKey,
		GeniusAccessToken: cfg.GeniusAccessToken,
	}, appLogger)
	enricher := enrich.NewFetcher(coverFetcher, lyricsFetcher, appLogger)
	embedder := tagging.NewEmbedder(appLogger)

	orchestrator := pipeline.NewOrchestrator(engine, runner, transcoder, enricher, embedder, appLogger)
	sched := scheduler.New(orchestrator, cfg.Concurrency, appLogger)

	emitter := pipeline.NewEmitter(constants.ProgressBufferSize)
	progress := api.NewProgressState()

	var consumerWG sync.WaitGroup
	consumerWG.Add(1)
	go func() {
		defer consumerWG.Done()
		for p := range emitter.Events() {
			progress.Update(p)
			printProgress(p)
		}
	}()

	srv := startStatusServer(cfg.StatusAddr, db, progress, appLogger)

	batchID := uuid.NewString()
	results := sched.Run(ctx, batchID, tracks, opts, emitter)
	emitter.Close()
	consumerWG.Wait()

	for _, r := range results {
		if err := db.RecordResult(batchID, r); err != nil {
			appLogger.Warn("failed to record result", "track_id", r.Track.ID, "error", err)
		}
	}
	saveSettings(db, cfg, appLogger)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	fmt.Printf("\nDone: %d/%d tracks downloaded (batch %s)\n", succeeded, len(results), batchID)
	for _, r := range results {
		if !r.Success {
			fmt.Printf("  failed: %s - %s: %s\n", r.Track.Artist, r.Track.Title, r.Error)
		}
	}
	if succeeded == 0 {
		os.Exit(1)
	}
}

// resolveTracks turns the CLI argument into a track list: a playlist CSV
// export, or a Spotify track/album/playlist reference.
func resolveTracks(ctx context.Context, input string, spotifyClient *spotify.Client) ([]domain.TrackMetadata, error) {
	if strings.HasSuffix(strings.ToLower(input), ".csv") {
		return csvimport.ReadFile(input)
	}

	if spotifyClient == nil {
		return nil, fmt.Errorf("SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET are required for Spotify URLs; use a CSV export instead")
	}
	return spotifyClient.Resolve(ctx, input)
}

func startStatusServer(addr string, db *store.DB, progress *api.ProgressState, appLogger *logger.Logger) *http.Server {
	if addr == "" {
		return nil
	}

	handler := api.NewHandler(db, progress, appLogger)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler.Router(),
	}
	go func() {
		appLogger.Info("status API listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("status API error", "error", err)
		}
	}()
	return srv
}

func printProgress(p domain.DownloadProgress) {
	fmt.Printf("[%3.0f%%] %-20s %s\n", p.Fraction*100, p.Stage.Display(), p.TrackID)
}

// printHistory lists the most recent download history rows.
func printHistory(dbPath string) error {
	db, err := store.NewSQLiteDB(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	downloads, err := db.ListDownloads(constants.MaxHistoryItems)
	if err != nil {
		return err
	}
	if len(downloads) == 0 {
		fmt.Println("no downloads yet")
		return nil
	}

	for _, d := range downloads {
		status := "ok"
		if !d.Success {
			status = "failed: " + d.Error
		}
		fmt.Printf("%s  %s - %s  [%s]\n", d.CompletedAt.Format("2006-01-02 15:04"), d.Artist, d.Title, status)
	}
	return nil
}

// saveSettings remembers the last-used options so the next run can surface
// them as defaults.
func saveSettings(db *store.DB, cfg *config.Config, appLogger *logger.Logger) {
	repo := store.NewSettingsRepo(db)
	pairs := map[string]string{
		store.SettingLastFormat:    cfg.Format,
		store.SettingLastBitrate:   strconv.Itoa(cfg.Bitrate),
		store.SettingLastOutputDir: cfg.OutputDir,
	}
	for key, value := range pairs {
		if err := repo.Set(key, value); err != nil {
			appLogger.Warn("failed to save setting", "key", key, "error", err)
		}
	}
}
