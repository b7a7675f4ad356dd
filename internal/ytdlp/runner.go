// Package ytdlp drives the yt-dlp extraction tool as a subprocess. It covers
// the two invocations the pipeline needs: JSON search dumps and tuned audio
// downloads with line-based progress reporting.
package ytdlp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/cesargomez89/tunegrab/internal/constants"
	"github.com/cesargomez89/tunegrab/internal/domain"
	"github.com/cesargomez89/tunegrab/internal/logger"
)

// ProgressFunc receives download progress in [0.0, 1.0].
type ProgressFunc func(fraction float64)

// Runner invokes yt-dlp. Safe for concurrent use; each call spawns its own
// subprocess and temp directory.
type Runner struct {
	binary       string
	proxy        string
	sponsorBlock string
	log          *logger.Logger

	probeOnce sync.Once
	probeErr  error
}

// New creates a Runner. proxy and sponsorBlock may be empty.
func New(log *logger.Logger, proxy, sponsorBlock string) *Runner {
	return &Runner{
		binary:       constants.YtdlpBinary,
		proxy:        proxy,
		sponsorBlock: sponsorBlock,
		log:          log.WithComponent("ytdlp"),
	}
}

// IsAvailable probes the tool once with --version and caches the verdict.
func (r *Runner) IsAvailable(ctx context.Context) bool {
	r.probeOnce.Do(func() {
		cmd := exec.CommandContext(ctx, r.binary, "--version")
		out, err := cmd.Output()
		if err != nil {
			r.probeErr = fmt.Errorf("%w: %s: %v", domain.ErrToolUnavailable, r.binary, err)
			return
		}
		r.log.Debug("yt-dlp available", "version", strings.TrimSpace(string(out)))
	})
	return r.probeErr == nil
}

// searchRecord is the subset of yt-dlp's JSON dump the search engine uses.
type searchRecord struct {
	Title      string  `json:"title"`
	WebpageURL string  `json:"webpage_url"`
	URL        string  `json:"url"`
	Duration   float64 `json:"duration"`
	Uploader   string  `json:"uploader"`
	ViewCount  int64   `json:"view_count"`
	Thumbnail  string  `json:"thumbnail"`
}

// Search runs a search spec like "ytsearch5:artist title" and returns one
// candidate per JSON line emitted by the tool.
func (r *Runner) Search(ctx context.Context, spec string, platform domain.Platform) ([]domain.SearchCandidate, error) {
	args := []string{
		"--dump-json",
		"--no-playlist",
		"--no-warnings",
		"--socket-timeout", strconv.Itoa(constants.SocketTimeoutSecs),
	}
	if r.proxy != "" {
		args = append(args, "--proxy", r.proxy)
	}
	args = append(args, spec)

	cmd := exec.CommandContext(ctx, r.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// yt-dlp exits non-zero when a search yields nothing; treat output
		// silence as an empty result and real diagnostics as failure.
		if stdout.Len() == 0 && stderr.Len() > 0 {
			return nil, fmt.Errorf("%w: search %q: %s", domain.ErrToolFailed, spec, firstLine(stderr.String()))
		}
		if stdout.Len() == 0 {
			return nil, nil
		}
	}

	var candidates []domain.SearchCandidate
	scanner := bufio.NewScanner(&stdout)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec searchRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			r.log.Debug("skipping unparseable search record", "error", err)
			continue
		}
		url := rec.WebpageURL
		if url == "" {
			url = rec.URL
		}
		if url == "" {
			continue
		}
		candidates = append(candidates, domain.SearchCandidate{
			Title:     rec.Title,
			URL:       url,
			Platform:  platform,
			Duration:  int(rec.Duration),
			Uploader:  rec.Uploader,
			ViewCount: rec.ViewCount,
			Thumbnail: rec.Thumbnail,
		})
	}
	return candidates, nil
}

var progressRe = regexp.MustCompile(`\[download\]\s+(\d+(?:\.\d+)?)%`)

// Download fetches url as audio into outputPath. The tool writes into the
// output directory through a per-invocation temp dir, then the first file
// matching the output stem is renamed into place.
func (r *Runner) Download(ctx context.Context, url, outputPath string, format domain.AudioFormat, bitrate domain.Bitrate, progress ProgressFunc) error {
	outDir := filepath.Dir(outputPath)
	stem := strings.TrimSuffix(filepath.Base(outputPath), filepath.Ext(outputPath))

	if err := os.MkdirAll(outDir, constants.DirPermissions); err != nil {
		return fmt.Errorf("%w: creating output dir: %v", domain.ErrToolFailed, err)
	}

	tempDir := filepath.Join(os.TempDir(), "tunegrab-"+uuid.NewString())
	if err := os.MkdirAll(tempDir, constants.DirPermissions); err != nil {
		return fmt.Errorf("%w: creating temp dir: %v", domain.ErrToolFailed, err)
	}
	defer r.cleanupTemp(tempDir)
	defer r.cleanupPartials(outDir, stem)

	args := r.downloadArgs(url, filepath.Join(outDir, stem), tempDir, format, bitrate)

	cmd := exec.CommandContext(ctx, r.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrToolFailed, err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: starting %s: %v", domain.ErrToolUnavailable, r.binary, err)
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()
		if progress == nil {
			continue
		}
		if m := progressRe.FindStringSubmatch(line); m != nil {
			if pct, err := strconv.ParseFloat(m[1], 64); err == nil {
				progress(pct / 100.0)
			}
		}
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("%w: %s: %s", domain.ErrToolFailed, err, firstLine(stderr.String()))
	}

	return r.locateOutput(outDir, stem, outputPath, format)
}

// downloadArgs builds the tuned argument profile for one fetch.
func (r *Runner) downloadArgs(url, outputStem, tempDir string, format domain.AudioFormat, bitrate domain.Bitrate) []string {
	args := []string{
		"--extract-audio",
		"--audio-format", string(format),
		"--audio-quality", fmt.Sprintf("%dK", bitrate.Kbps()),
		"--output", outputStem + ".%(ext)s",
		"--paths", "temp:" + tempDir,
		"--no-playlist",
		"--progress",
		"--newline",
		"--no-check-certificate",
		"--prefer-free-formats",
		"--socket-timeout", strconv.Itoa(constants.SocketTimeoutSecs),
		"--retries", strconv.Itoa(constants.SubprocessRetries),
		"--fragment-retries", strconv.Itoa(constants.FragmentRetries),
		"--concurrent-fragments", strconv.Itoa(constants.ConcurrentFragments),
		"--buffer-size", constants.BufferSize,
		"--http-chunk-size", constants.HTTPChunkSize,
		"--user-agent", constants.UserAgent,
	}
	if r.proxy != "" {
		args = append(args, "--proxy", r.proxy)
	}
	if r.sponsorBlock != "" {
		args = append(args, "--sponsorblock-remove", r.sponsorBlock)
	}
	return append(args, url)
}

// locateOutput finds the produced file and moves it to the expected path.
// yt-dlp occasionally appends format ids to the stem, so the first file with
// the stem prefix and the format extension wins. Plain prefix matching, not
// globbing: track titles may contain metacharacters like "[Live]".
func (r *Runner) locateOutput(outDir, stem, outputPath string, format domain.AudioFormat) error {
	if _, err := os.Stat(outputPath); err == nil {
		return nil
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		return fmt.Errorf("%w: reading output dir: %v", domain.ErrToolFailed, err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, stem) || !strings.HasSuffix(name, format.Ext()) {
			continue
		}
		if err := os.Rename(filepath.Join(outDir, name), outputPath); err != nil {
			return fmt.Errorf("%w: renaming output: %v", domain.ErrToolFailed, err)
		}
		return nil
	}
	return fmt.Errorf("%w: no output file matching %q after download", domain.ErrToolFailed, stem+"*"+format.Ext())
}

// cleanupTemp removes the per-invocation temp dir. Failures are logged only.
func (r *Runner) cleanupTemp(tempDir string) {
	if err := os.RemoveAll(tempDir); err != nil {
		r.log.Warn("failed to remove temp dir", "dir", tempDir, "error", err)
	}
}

// cleanupPartials removes leftover partial files next to the output stem.
func (r *Runner) cleanupPartials(outDir, stem string) {
	entries, err := os.ReadDir(outDir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, stem) {
			continue
		}
		if strings.Contains(name, ".part") || strings.Contains(name, ".ytdl") || strings.Contains(name, ".temp") {
			if err := os.Remove(filepath.Join(outDir, name)); err != nil {
				r.log.Warn("failed to remove partial file", "file", name, "error", err)
			}
		}
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
