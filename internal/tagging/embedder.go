// Package tagging embeds metadata, cover art and lyrics into downloaded
// audio files. MP3 gets the full ID3v2.4 treatment including synchronised
// lyrics; FLAC gets Vorbis comments and a picture block; M4A and WAV get
// best-effort generic tags. Every non-MP3 format additionally writes lyrics
// to a sidecar file so players without LRC support can still find them.
package tagging

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/cesargomez89/tunegrab/internal/domain"
	"github.com/cesargomez89/tunegrab/internal/logger"
	"github.com/cesargomez89/tunegrab/internal/lyrics"
	"github.com/cesargomez89/tunegrab/internal/storage"
)

// Embedder writes tags into finished audio files.
type Embedder struct {
	log *logger.Logger
}

func NewEmbedder(log *logger.Logger) *Embedder {
	return &Embedder{log: log.WithComponent("tagging")}
}

// Embed writes metadata, cover art and lyrics into the file at path. The
// strategy depends on the container; unsupported extensions are an error.
func (e *Embedder) Embed(path string, track domain.TrackMetadata, enrichment *domain.EnrichmentResult, opts domain.DownloadOptions) error {
	if enrichment == nil {
		enrichment = &domain.EnrichmentResult{}
	}

	ext := strings.ToLower(filepath.Ext(path))
	var err error
	switch ext {
	case ".mp3":
		err = e.embedMP3(path, track, enrichment, opts)
	case ".flac":
		err = e.embedFLAC(path, track, enrichment, opts)
	case ".m4a", ".mp4", ".wav":
		err = e.embedGeneric(path, track, opts)
	default:
		return fmt.Errorf("%w: unsupported file format %s", domain.ErrEmbed, ext)
	}
	if err != nil {
		return err
	}

	// Non-MP3 players rarely read embedded lyrics, so keep a sidecar too.
	if ext != ".mp3" {
		e.writeSidecar(path, enrichment, opts)
	}
	return nil
}

func (e *Embedder) writeSidecar(audioPath string, enrichment *domain.EnrichmentResult, opts domain.DownloadOptions) {
	result := enrichment.Lyrics
	if result == nil || (result.Synced == nil && result.Unsynced == nil) {
		return
	}

	layout := storage.Layout{Root: opts.OutputDir}
	path := layout.LyricsPath(audioPath, lyrics.SidecarExt(result))
	if err := lyrics.WriteSidecar(path, result); err != nil {
		e.log.Warn("failed to write lyrics sidecar", "path", path, "error", err)
		return
	}
	e.log.Info("wrote lyrics sidecar", "path", path)
}

// embedGeneric rewrites the file through ffmpeg with -metadata flags and
// stream copy. Cover art embedding is skipped here; the pipeline saves the
// cover next to the track instead.
func (e *Embedder) embedGeneric(path string, track domain.TrackMetadata, opts domain.DownloadOptions) error {
	args := []string{"-y", "-i", path}
	for _, kv := range metadataPairs(track, opts.Embed) {
		args = append(args, "-metadata", kv)
	}
	args = append(args, "-c", "copy")

	tmpPath := path + ".tagged" + filepath.Ext(path)
	args = append(args, tmpPath)

	cmd := exec.Command("ffmpeg", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: ffmpeg tagging failed: %s (%v)", domain.ErrEmbed, strings.TrimSpace(string(out)), err)
	}

	if err := storage.MoveFile(tmpPath, path); err != nil {
		return fmt.Errorf("%w: replacing tagged file: %v", domain.ErrEmbed, err)
	}
	return nil
}

// metadataPairs builds the key=value list for ffmpeg -metadata flags,
// honoring the per-field toggles.
func metadataPairs(track domain.TrackMetadata, toggles domain.EmbedToggles) []string {
	var pairs []string
	add := func(enabled bool, key, value string) {
		if enabled && value != "" {
			pairs = append(pairs, key+"="+value)
		}
	}

	add(toggles.Title, "title", track.Title)
	add(toggles.Artist, "artist", formatList(track.Artist))
	add(toggles.Album, "album", track.Album)
	add(toggles.AlbumArtist, "album_artist", formatList(track.AlbumArtist))
	add(toggles.Year, "date", track.Year())
	add(toggles.Genre, "genre", strings.Join(track.Genres, ", "))
	add(toggles.Composer, "composer", track.Composer)
	add(toggles.Comment, "comment", track.Comment)
	if toggles.TrackNumber && track.TrackNumber > 0 {
		pairs = append(pairs, fmt.Sprintf("track=%d", track.TrackNumber))
	}
	if toggles.DiscNumber && track.DiscNumber > 0 {
		pairs = append(pairs, fmt.Sprintf("disc=%d", track.DiscNumber))
	}
	return pairs
}

// formatList rewrites the provider's "A; B" multi-value join to the
// comma form used inside tags.
func formatList(s string) string {
	return strings.ReplaceAll(s, "; ", ", ")
}

// splitList breaks a provider's "A; B" join into individual values.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "; ")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
