package ytdlp

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cesargomez89/tunegrab/internal/domain"
	"github.com/cesargomez89/tunegrab/internal/logger"
)

func testRunner() *Runner {
	return New(logger.Default(), "", "")
}

func TestDownloadArgs(t *testing.T) {
	r := testRunner()
	args := r.downloadArgs("https://example.com/v", "/out/Artist - Song", "/tmp/work", domain.FormatMP3, domain.Bitrate320)

	joined := strings.Join(args, " ")
	for _, want := range []string{
		"--extract-audio",
		"--audio-format mp3",
		"--audio-quality 320K",
		"--output /out/Artist - Song.%(ext)s",
		"--paths temp:/tmp/work",
		"--no-playlist",
		"--newline",
		"--no-check-certificate",
		"--prefer-free-formats",
		"--socket-timeout 30",
		"--retries 3",
		"--fragment-retries 3",
		"--concurrent-fragments 4",
		"--buffer-size 16K",
		"--http-chunk-size 1M",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("Expected args to contain %q, got %q", want, joined)
		}
	}

	if args[len(args)-1] != "https://example.com/v" {
		t.Errorf("Expected url last, got %q", args[len(args)-1])
	}

	if strings.Contains(joined, "--proxy") || strings.Contains(joined, "--sponsorblock-remove") {
		t.Error("Expected no proxy or sponsorblock args when unconfigured")
	}
}

func TestDownloadArgsWithProxyAndSponsorBlock(t *testing.T) {
	r := New(logger.Default(), "socks5://127.0.0.1:9050", "sponsor,intro")
	args := r.downloadArgs("u", "/out/s", "/tmp/w", domain.FormatFLAC, domain.Bitrate128)

	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "--proxy socks5://127.0.0.1:9050") {
		t.Errorf("Expected proxy arg, got %q", joined)
	}
	if !strings.Contains(joined, "--sponsorblock-remove sponsor,intro") {
		t.Errorf("Expected sponsorblock arg, got %q", joined)
	}
}

func TestProgressLineParsing(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"[download]  42.3% of 3.5MiB at 1.2MiB/s", "42.3"},
		{"[download] 100% of 3.5MiB in 00:03", "100"},
		{"[info] extracting audio", ""},
		{"[download] Destination: out.mp3", ""},
	}

	for _, tt := range tests {
		m := progressRe.FindStringSubmatch(tt.line)
		if tt.want == "" {
			if m != nil {
				t.Errorf("Expected no match for %q, got %v", tt.line, m)
			}
			continue
		}
		if m == nil || m[1] != tt.want {
			t.Errorf("Expected %q from %q, got %v", tt.want, tt.line, m)
		}
	}
}

func TestLocateOutputRenamesNearMatch(t *testing.T) {
	r := testRunner()
	dir := t.TempDir()

	// yt-dlp wrote a file with a format id glued onto the stem
	produced := filepath.Join(dir, "Artist - Song.f251.mp3")
	if err := os.WriteFile(produced, []byte("audio"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	expected := filepath.Join(dir, "Artist - Song.mp3")
	if err := r.locateOutput(dir, "Artist - Song", expected, domain.FormatMP3); err != nil {
		t.Fatalf("locateOutput: %v", err)
	}
	if _, err := os.Stat(expected); err != nil {
		t.Errorf("Expected renamed output at %s: %v", expected, err)
	}
}

func TestLocateOutputBracketedStem(t *testing.T) {
	r := testRunner()
	dir := t.TempDir()

	// Brackets in the title must not be treated as a glob character class.
	produced := filepath.Join(dir, "Artist - Song [Live].f251.mp3")
	if err := os.WriteFile(produced, []byte("audio"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	expected := filepath.Join(dir, "Artist - Song [Live].mp3")
	if err := r.locateOutput(dir, "Artist - Song [Live]", expected, domain.FormatMP3); err != nil {
		t.Fatalf("locateOutput: %v", err)
	}
	if _, err := os.Stat(expected); err != nil {
		t.Errorf("Expected renamed output at %s: %v", expected, err)
	}
}

func TestLocateOutputMissing(t *testing.T) {
	r := testRunner()
	dir := t.TempDir()

	err := r.locateOutput(dir, "Nothing Here", filepath.Join(dir, "Nothing Here.mp3"), domain.FormatMP3)
	if err == nil {
		t.Fatal("Expected error when no output file exists")
	}
}

func TestCleanupPartials(t *testing.T) {
	r := testRunner()
	dir := t.TempDir()

	keep := filepath.Join(dir, "Artist - Song.mp3")
	partial := filepath.Join(dir, "Artist - Song.mp3.part")
	ytdl := filepath.Join(dir, "Artist - Song.mp3.ytdl")
	other := filepath.Join(dir, "Unrelated.mp3.part")

	for _, p := range []string{keep, partial, ytdl, other} {
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}

	r.cleanupPartials(dir, "Artist - Song")

	if _, err := os.Stat(keep); err != nil {
		t.Error("Expected final file to survive cleanup")
	}
	for _, p := range []string{partial, ytdl} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("Expected %s to be removed", p)
		}
	}
	if _, err := os.Stat(other); err != nil {
		t.Error("Expected unrelated partial to survive cleanup")
	}
}
