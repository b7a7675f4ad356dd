// Package storage provides filesystem helpers and the on-disk output layout.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/cesargomez89/tunegrab/internal/constants"
)

// Sanitize makes a string safe for use as a file name. Invalid path
// characters become underscores; semicolons become commas so multi-value
// fields stay readable.
func Sanitize(s string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case strings.ContainsRune(constants.InvalidPathChars, r):
			return '_'
		case r == ';':
			return ','
		default:
			return r
		}
	}, s)

	return strings.TrimSpace(mapped)
}

// artistSeparators match joining words between artist names. Surrounding
// whitespace is required so "x" never matches inside a name.
var artistSeparators = regexp.MustCompile(`(?i)\s+(feat\.?|featuring|ft\.?|vs\.?|&|x)\s+`)

var multiSpace = regexp.MustCompile(`\s+`)

// FormatArtists normalizes multi-artist separators ("feat.", "ft.", "&",
// "x", "vs" ...) to a comma-separated list for file names.
func FormatArtists(artist string) string {
	out := artistSeparators.ReplaceAllString(artist, ", ")
	out = multiSpace.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// FileStem builds the "<Artist> - <Title>" stem used for every file the
// pipeline writes for a track.
func FileStem(artist, title string) string {
	return Sanitize(fmt.Sprintf("%s - %s", FormatArtists(artist), title))
}

// Layout resolves the output directory structure users rely on:
// tracks/, covers/ and lyrics/ under a configured root.
type Layout struct {
	Root string
}

// TrackPath returns the final audio path for a track.
func (l Layout) TrackPath(artist, title, ext string) string {
	return filepath.Join(l.Root, constants.TracksDir, FileStem(artist, title)+ext)
}

// CoverPath returns the sidecar cover path for a track.
func (l Layout) CoverPath(artist, title, ext string) string {
	return filepath.Join(l.Root, constants.CoversDir, FileStem(artist, title)+ext)
}

// LyricsPath returns the sidecar lyrics path for an audio file, named after
// the audio file's stem.
func (l Layout) LyricsPath(audioPath, ext string) string {
	stem := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	return filepath.Join(l.Root, constants.LyricsDir, stem+ext)
}

func EnsureDir(path string) error {
	return os.MkdirAll(path, constants.DirPermissions)
}

// MoveFile renames src to dst, falling back to copy+delete across devices.
func MoveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to move %s to %s: %w", src, dst, err)
	}
	if err := os.WriteFile(dst, data, constants.FilePermissions); err != nil {
		return fmt.Errorf("failed to move %s to %s: %w", src, dst, err)
	}
	return os.Remove(src)
}

func WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, constants.FilePermissions)
}

func RemoveFile(path string) error {
	return os.Remove(path)
}

func IsNotExist(err error) bool {
	return os.IsNotExist(err)
}
