package domain

import (
	"fmt"
	"strings"
)

// AudioFormat is the target container/codec for downloaded audio.
type AudioFormat string

const (
	FormatMP3  AudioFormat = "mp3"
	FormatM4A  AudioFormat = "m4a"
	FormatFLAC AudioFormat = "flac"
	FormatWAV  AudioFormat = "wav"
)

// ParseAudioFormat parses a user-supplied format name.
func ParseAudioFormat(s string) (AudioFormat, error) {
	switch strings.ToLower(s) {
	case "mp3":
		return FormatMP3, nil
	case "m4a":
		return FormatM4A, nil
	case "flac":
		return FormatFLAC, nil
	case "wav":
		return FormatWAV, nil
	default:
		return "", fmt.Errorf("%w: unknown audio format %q", ErrConfig, s)
	}
}

// Ext returns the file extension for the format, with leading dot.
func (f AudioFormat) Ext() string {
	return "." + string(f)
}

// Lossless reports whether the format carries no bitrate knob.
func (f AudioFormat) Lossless() bool {
	return f == FormatFLAC || f == FormatWAV
}

// Bitrate is a target encoding bitrate tier in kbps.
type Bitrate int

const (
	Bitrate128 Bitrate = 128
	Bitrate192 Bitrate = 192
	Bitrate256 Bitrate = 256
	Bitrate320 Bitrate = 320
)

// ParseBitrate parses a user-supplied bitrate tier.
func ParseBitrate(n int) (Bitrate, error) {
	switch n {
	case 128, 192, 256, 320:
		return Bitrate(n), nil
	default:
		return 0, fmt.Errorf("%w: unsupported bitrate %d (want 128, 192, 256 or 320)", ErrConfig, n)
	}
}

// Kbps returns the numeric kbps value.
func (b Bitrate) Kbps() int { return int(b) }

// EmbedToggles enables or disables individual tag fields.
type EmbedToggles struct {
	Title       bool
	Artist      bool
	Album       bool
	Year        bool
	Genre       bool
	TrackNumber bool
	DiscNumber  bool
	AlbumArtist bool
	Composer    bool
	Comment     bool
}

// AllEmbedToggles returns toggles with every field enabled.
func AllEmbedToggles() EmbedToggles {
	return EmbedToggles{
		Title:       true,
		Artist:      true,
		Album:       true,
		Year:        true,
		Genre:       true,
		TrackNumber: true,
		DiscNumber:  true,
		AlbumArtist: true,
		Composer:    true,
		Comment:     true,
	}
}

// DownloadOptions is supplied once per batch and immutable during a run.
type DownloadOptions struct {
	Format         AudioFormat
	Bitrate        Bitrate
	OutputDir      string
	DownloadLyrics bool
	DownloadCover  bool
	EmbedMetadata  bool
	SaveCover      bool // write a copy under covers/ in addition to embedding
	CoverWidth     int
	CoverHeight    int
	CoverFormat    string // jpeg or png
	Embed          EmbedToggles
}

// DefaultDownloadOptions returns the options used when nothing is configured.
func DefaultDownloadOptions(outputDir string) DownloadOptions {
	return DownloadOptions{
		Format:         FormatMP3,
		Bitrate:        Bitrate320,
		OutputDir:      outputDir,
		DownloadLyrics: true,
		DownloadCover:  true,
		EmbedMetadata:  true,
		SaveCover:      true,
		CoverWidth:     500,
		CoverHeight:    500,
		CoverFormat:    "jpeg",
		Embed:          AllEmbedToggles(),
	}
}
