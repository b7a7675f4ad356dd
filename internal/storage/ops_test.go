package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"invalid chars become underscores", "Foo: Bar/Baz?", "Foo_ Bar_Baz_"},
		{"semicolon becomes comma", "A; B", "A, B"},
		{"clean name untouched", "Artist - Song Title", "Artist - Song Title"},
		{"all invalid chars", `a<b>c:d"e/f\g|h?i*j`, "a_b_c_d_e_f_g_h_i_j"},
		{"surrounding whitespace trimmed", "  Song  ", "Song"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatArtists(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Artist feat. Guest", "Artist, Guest"},
		{"Artist ft. Guest", "Artist, Guest"},
		{"Artist & Guest", "Artist, Guest"},
		{"Artist x Guest", "Artist, Guest"},
		{"Artist vs Guest", "Artist, Guest"},
		{"Artist featuring Guest", "Artist, Guest"},
		{"Solo Artist", "Solo Artist"},
		{"Xylophone Xpress", "Xylophone Xpress"},
	}

	for _, tt := range tests {
		if got := FormatArtists(tt.input); got != tt.want {
			t.Errorf("FormatArtists(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestLayoutPaths(t *testing.T) {
	l := Layout{Root: "/music"}

	got := l.TrackPath("Artist feat. Guest", "Song", ".mp3")
	want := filepath.Join("/music", "tracks", "Artist, Guest - Song.mp3")
	if got != want {
		t.Errorf("TrackPath = %q, want %q", got, want)
	}

	got = l.CoverPath("Artist", "Song", ".jpg")
	want = filepath.Join("/music", "covers", "Artist - Song.jpg")
	if got != want {
		t.Errorf("CoverPath = %q, want %q", got, want)
	}

	got = l.LyricsPath(filepath.Join("/music", "tracks", "Artist - Song.flac"), ".lrc")
	want = filepath.Join("/music", "lyrics", "Artist - Song.lrc")
	if got != want {
		t.Errorf("LyricsPath = %q, want %q", got, want)
	}
}

func TestMoveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")

	if err := os.WriteFile(src, []byte("payload"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := MoveFile(src, dst); err != nil {
		t.Fatalf("MoveFile: %v", err)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("reading moved file: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("moved content = %q", data)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("Expected source to be gone after move")
	}
}

func TestEnsureDir(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b", "c")
	if err := EnsureDir(nested); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	info, err := os.Stat(nested)
	if err != nil || !info.IsDir() {
		t.Errorf("Expected %s to be a directory, err=%v", nested, err)
	}
}
