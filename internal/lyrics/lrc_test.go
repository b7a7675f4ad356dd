package lyrics

import (
	"strings"
	"testing"

	"github.com/cesargomez89/tunegrab/internal/domain"
)

func TestParseLRC(t *testing.T) {
	content := "[ar:Artist]\n[00:12.34]first line\n[01:01.00]second line\n\nnot a lyric\n[10:59.999]third line\n"

	lyrics, err := ParseLRC(content, "test")
	if err != nil {
		t.Fatalf("ParseLRC: %v", err)
	}

	if len(lyrics.Lines) != 3 {
		t.Fatalf("Expected 3 lines, got %d", len(lyrics.Lines))
	}

	want := []domain.LyricsLine{
		{TimestampMS: 12340, Text: "first line"},
		{TimestampMS: 61000, Text: "second line"},
		{TimestampMS: 659999, Text: "third line"},
	}
	for i, w := range want {
		if lyrics.Lines[i] != w {
			t.Errorf("line %d = %+v, want %+v", i, lyrics.Lines[i], w)
		}
	}
}

func TestParseLRCOffset(t *testing.T) {
	lyrics, err := ParseLRC("[offset:-250]\n[00:01.00]hello\n", "test")
	if err != nil {
		t.Fatalf("ParseLRC: %v", err)
	}
	if lyrics.Offset != -250 {
		t.Errorf("Offset = %d, want -250", lyrics.Offset)
	}
}

func TestParseLRCNoTimestamps(t *testing.T) {
	if _, err := ParseLRC("just some text\nwithout timings\n", "test"); err == nil {
		t.Error("Expected error for content without timestamps")
	}
}

func TestLRCRoundTrip(t *testing.T) {
	original := &domain.SyncedLyrics{
		Lines: []domain.LyricsLine{
			{TimestampMS: 0, Text: "a"},
			{TimestampMS: 61000, Text: "b"},
		},
		Source: "test",
	}

	parsed, err := ParseLRC(FormatLRC(original), "test")
	if err != nil {
		t.Fatalf("round trip parse: %v", err)
	}

	if len(parsed.Lines) != len(original.Lines) {
		t.Fatalf("Expected %d lines, got %d", len(original.Lines), len(parsed.Lines))
	}
	for i := range original.Lines {
		if parsed.Lines[i].Text != original.Lines[i].Text {
			t.Errorf("line %d text = %q, want %q", i, parsed.Lines[i].Text, original.Lines[i].Text)
		}
		delta := parsed.Lines[i].TimestampMS - original.Lines[i].TimestampMS
		if delta < -10 || delta > 10 {
			t.Errorf("line %d timestamp drifted by %dms", i, delta)
		}
	}
}

func TestFormatLRCWithOffset(t *testing.T) {
	lyrics := &domain.SyncedLyrics{
		Lines:  []domain.LyricsLine{{TimestampMS: 1230, Text: "hi"}},
		Offset: 500,
	}

	out := FormatLRC(lyrics)
	if !strings.HasPrefix(out, "[offset:500]\n") {
		t.Errorf("Expected offset header, got %q", out)
	}
	if !strings.Contains(out, "[00:01.23]hi") {
		t.Errorf("Expected centisecond timestamp, got %q", out)
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"strips tags", "<div>hello <b>world</b></div>", "hello world"},
		{"br becomes newline", "line one<br>line two", "line one\nline two"},
		{"entities decoded", "rock &amp; roll", "rock & roll"},
		{"boilerplate suffix trimmed", "real words\nMore on Genius", "real words"},
		{"whitespace collapsed", "a\n\n\n\n\nb", "a\n\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.input); got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestQueries(t *testing.T) {
	got := Queries("Artist", "Song")
	want := []string{
		"Artist Song",
		"Artist - Song",
		`"Artist" "Song"`,
	}
	if len(got) != len(want) {
		t.Fatalf("Expected %d variants, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("variant %d = %q, want %q", i, got[i], want[i])
		}
	}
}
