// Package convert normalizes downloaded audio to the target format and
// bitrate by invoking ffmpeg.
package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/cesargomez89/tunegrab/internal/constants"
	"github.com/cesargomez89/tunegrab/internal/domain"
	"github.com/cesargomez89/tunegrab/internal/logger"
)

// Transcoder wraps the external conversion tool. Safe for concurrent use.
type Transcoder struct {
	binary string
	log    *logger.Logger

	probeOnce sync.Once
	probeErr  error
}

func New(log *logger.Logger) *Transcoder {
	return &Transcoder{
		binary: constants.FfmpegBinary,
		log:    log.WithComponent("convert"),
	}
}

// NeedsConversion compares the input extension against the target format's.
// Bitrate mismatches are not detected: a file whose container already
// matches is always skipped, even if it was encoded at a different bitrate.
func (t *Transcoder) NeedsConversion(inputPath string, format domain.AudioFormat) bool {
	return !strings.EqualFold(filepath.Ext(inputPath), format.Ext())
}

// Convert transcodes inputPath into outputPath. When both paths are equal
// the conversion goes through a temp file that replaces the original via
// rename. A missing tool is a hard error, never a silent skip.
func (t *Transcoder) Convert(ctx context.Context, inputPath, outputPath string, format domain.AudioFormat, bitrate domain.Bitrate) error {
	if err := t.ensureAvailable(ctx); err != nil {
		return err
	}

	target := outputPath
	samePath := inputPath == outputPath
	if samePath {
		target = filepath.Join(filepath.Dir(outputPath), ".convert-"+uuid.NewString()+format.Ext())
	}

	args := buildArgs(inputPath, target, format, bitrate)
	cmd := exec.CommandContext(ctx, t.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if samePath {
			_ = os.Remove(target)
		}
		return fmt.Errorf("%w: ffmpeg: %v: %s", domain.ErrConversion, err, firstLine(stderr.String()))
	}

	if samePath {
		if err := os.Rename(target, outputPath); err != nil {
			_ = os.Remove(target)
			return fmt.Errorf("%w: replacing original: %v", domain.ErrConversion, err)
		}
	}

	t.log.Debug("converted audio", "input", inputPath, "format", format, "bitrate", bitrate.Kbps())
	return nil
}

// ensureAvailable probes the tool once with -version.
func (t *Transcoder) ensureAvailable(ctx context.Context) error {
	t.probeOnce.Do(func() {
		if err := exec.CommandContext(ctx, t.binary, "-version").Run(); err != nil {
			t.probeErr = fmt.Errorf("%w: %s: %v", domain.ErrToolUnavailable, t.binary, err)
		}
	})
	return t.probeErr
}

// buildArgs assembles the ffmpeg invocation for one conversion. Lossy
// targets carry codec and quality knobs, lossless targets only the codec.
func buildArgs(inputPath, outputPath string, format domain.AudioFormat, bitrate domain.Bitrate) []string {
	args := []string{"-i", inputPath}

	switch format {
	case domain.FormatMP3:
		args = append(args, "-codec:a", "libmp3lame", "-q:a", "2", "-compression_level", "2")
	case domain.FormatM4A:
		args = append(args, "-codec:a", "aac", "-profile:a", "aac_low")
	case domain.FormatFLAC:
		args = append(args, "-codec:a", "flac", "-compression_level", "5")
	case domain.FormatWAV:
		args = append(args, "-codec:a", "pcm_s16le")
	}

	if !format.Lossless() {
		args = append(args, "-b:a", fmt.Sprintf("%dk", bitrate.Kbps()))
	}

	return append(args,
		"-threads", "0",
		"-loglevel", "error",
		"-y",
		outputPath,
	)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
