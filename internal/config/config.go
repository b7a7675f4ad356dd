package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cesargomez89/tunegrab/internal/constants"
	"github.com/cesargomez89/tunegrab/internal/domain"
)

// Config holds all application configuration
type Config struct {
	OutputDir   string
	DBPath      string
	Format      string
	Bitrate     int
	Concurrency int

	DownloadLyrics bool
	DownloadCover  bool
	EmbedMetadata  bool
	SaveCover      bool
	CoverWidth     int
	CoverHeight    int
	CoverFormat    string

	Proxy              string
	SponsorBlockRemove string

	SpotifyClientID     string
	SpotifyClientSecret string
	MusixmatchAPIKey    string
	GeniusAccessToken   string

	StatusAddr string
	LogLevel   string
	LogFormat  string
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	home, _ := os.UserHomeDir()
	defaultOutput := filepath.Join(home, "Music", "tunegrab")

	return &Config{
		OutputDir:   getEnv("OUTPUT_DIR", defaultOutput),
		DBPath:      getEnv("DB_PATH", constants.DefaultDBPath),
		Format:      getEnv("AUDIO_FORMAT", constants.DefaultFormat),
		Bitrate:     getEnvInt("AUDIO_BITRATE", constants.DefaultBitrate),
		Concurrency: getEnvInt("CONCURRENCY", constants.DefaultConcurrency),

		DownloadLyrics: getEnvBool("DOWNLOAD_LYRICS", true),
		DownloadCover:  getEnvBool("DOWNLOAD_COVER", true),
		EmbedMetadata:  getEnvBool("EMBED_METADATA", true),
		SaveCover:      getEnvBool("SAVE_COVER", true),
		CoverWidth:     getEnvInt("COVER_WIDTH", constants.DefaultCoverWidth),
		CoverHeight:    getEnvInt("COVER_HEIGHT", constants.DefaultCoverHeight),
		CoverFormat:    getEnv("COVER_FORMAT", constants.DefaultCoverFormat),

		Proxy:              getEnv("PROXY", ""),
		SponsorBlockRemove: getEnv("SPONSORBLOCK_REMOVE", ""),

		SpotifyClientID:     getEnv("SPOTIFY_CLIENT_ID", ""),
		SpotifyClientSecret: getEnv("SPOTIFY_CLIENT_SECRET", ""),
		MusixmatchAPIKey:    getEnv("MUSIXMATCH_API_KEY", ""),
		GeniusAccessToken:   getEnv("GENIUS_ACCESS_TOKEN", ""),

		StatusAddr: getEnv("STATUS_ADDR", constants.DefaultStatusAddr),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogFormat:  getEnv("LOG_FORMAT", "text"),
	}
}

// Validate validates the configuration and returns detailed errors
func (c *Config) Validate() error {
	var errors []string

	if c.OutputDir == "" {
		errors = append(errors, "OUTPUT_DIR cannot be empty")
	}

	if c.DBPath == "" {
		errors = append(errors, "DB_PATH cannot be empty")
	}

	if _, err := domain.ParseAudioFormat(c.Format); err != nil {
		errors = append(errors, fmt.Sprintf("AUDIO_FORMAT must be one of: mp3, m4a, flac, wav, got: %s", c.Format))
	}

	if _, err := domain.ParseBitrate(c.Bitrate); err != nil {
		errors = append(errors, fmt.Sprintf("AUDIO_BITRATE must be one of: 128, 192, 256, 320, got: %d", c.Bitrate))
	}

	if c.Concurrency < 1 {
		errors = append(errors, fmt.Sprintf("CONCURRENCY must be at least 1, got: %d", c.Concurrency))
	}

	if c.CoverWidth < 1 || c.CoverHeight < 1 {
		errors = append(errors, fmt.Sprintf("cover dimensions must be positive, got: %dx%d", c.CoverWidth, c.CoverHeight))
	}

	validCoverFormats := map[string]bool{
		"jpeg": true,
		"jpg":  true,
		"png":  true,
	}
	if !validCoverFormats[c.CoverFormat] {
		errors = append(errors, fmt.Sprintf("COVER_FORMAT must be one of: jpeg, png, got: %s", c.CoverFormat))
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: text, json, got: %s", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// Options builds the per-batch download options from the configuration.
func (c *Config) Options() (domain.DownloadOptions, error) {
	format, err := domain.ParseAudioFormat(c.Format)
	if err != nil {
		return domain.DownloadOptions{}, err
	}
	bitrate, err := domain.ParseBitrate(c.Bitrate)
	if err != nil {
		return domain.DownloadOptions{}, err
	}

	coverFormat := c.CoverFormat
	if coverFormat == "jpg" {
		coverFormat = "jpeg"
	}

	return domain.DownloadOptions{
		Format:         format,
		Bitrate:        bitrate,
		OutputDir:      c.OutputDir,
		DownloadLyrics: c.DownloadLyrics,
		DownloadCover:  c.DownloadCover,
		EmbedMetadata:  c.EmbedMetadata,
		SaveCover:      c.SaveCover,
		CoverWidth:     c.CoverWidth,
		CoverHeight:    c.CoverHeight,
		CoverFormat:    coverFormat,
		Embed:          domain.AllEmbedToggles(),
	}, nil
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
