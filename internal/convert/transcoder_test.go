package convert

import (
	"strings"
	"testing"

	"github.com/cesargomez89/tunegrab/internal/domain"
	"github.com/cesargomez89/tunegrab/internal/logger"
)

func TestNeedsConversion(t *testing.T) {
	tr := New(logger.Default())

	tests := []struct {
		name   string
		path   string
		format domain.AudioFormat
		want   bool
	}{
		{"matching extension skips", "/music/song.mp3", domain.FormatMP3, false},
		{"case-insensitive match skips", "/music/SONG.MP3", domain.FormatMP3, false},
		{"wav to mp3 converts", "/music/song.wav", domain.FormatMP3, true},
		{"mp3 to flac converts", "/music/song.mp3", domain.FormatFLAC, true},
		{"m4a match skips", "/music/song.m4a", domain.FormatM4A, false},
		// Bitrate is never inspected: same container means skip regardless.
		{"matching ext skips at any bitrate", "/music/song.mp3", domain.FormatMP3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tr.NeedsConversion(tt.path, tt.format); got != tt.want {
				t.Errorf("NeedsConversion(%q, %s) = %v, want %v", tt.path, tt.format, got, tt.want)
			}
		})
	}
}

func TestBuildArgs(t *testing.T) {
	tests := []struct {
		name    string
		format  domain.AudioFormat
		bitrate domain.Bitrate
		want    []string
		absent  []string
	}{
		{
			name:    "mp3 uses libmp3lame with quality knobs and bitrate",
			format:  domain.FormatMP3,
			bitrate: domain.Bitrate320,
			want:    []string{"-codec:a libmp3lame", "-q:a 2", "-compression_level 2", "-b:a 320k"},
		},
		{
			name:    "m4a uses aac low profile",
			format:  domain.FormatM4A,
			bitrate: domain.Bitrate256,
			want:    []string{"-codec:a aac", "-profile:a aac_low", "-b:a 256k"},
		},
		{
			name:    "flac is lossless, no bitrate",
			format:  domain.FormatFLAC,
			bitrate: domain.Bitrate320,
			want:    []string{"-codec:a flac", "-compression_level 5"},
			absent:  []string{"-b:a"},
		},
		{
			name:    "wav is pcm, no bitrate",
			format:  domain.FormatWAV,
			bitrate: domain.Bitrate128,
			want:    []string{"-codec:a pcm_s16le"},
			absent:  []string{"-b:a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := buildArgs("in.webm", "out"+tt.format.Ext(), tt.format, tt.bitrate)
			joined := strings.Join(args, " ")

			for _, want := range append(tt.want, "-threads 0", "-loglevel error", "-y") {
				if !strings.Contains(joined, want) {
					t.Errorf("Expected %q in args %q", want, joined)
				}
			}
			for _, absent := range tt.absent {
				if strings.Contains(joined, absent) {
					t.Errorf("Expected %q to be absent from %q", absent, joined)
				}
			}
			if args[len(args)-1] != "out"+tt.format.Ext() {
				t.Errorf("Expected output path last, got %q", args[len(args)-1])
			}
		})
	}
}
