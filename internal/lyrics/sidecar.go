package lyrics

import (
	"fmt"
	"path/filepath"

	"github.com/cesargomez89/tunegrab/internal/constants"
	"github.com/cesargomez89/tunegrab/internal/domain"
	"github.com/cesargomez89/tunegrab/internal/storage"
)

// SidecarExt returns the sidecar extension for a lyrics result.
func SidecarExt(result *domain.LyricsResult) string {
	if result != nil && result.Synced != nil {
		return constants.ExtLRC
	}
	return constants.ExtTXT
}

// WriteSidecar writes lyrics to path: LRC when synced, plain text otherwise.
func WriteSidecar(path string, result *domain.LyricsResult) error {
	if result == nil || (result.Synced == nil && result.Unsynced == nil) {
		return fmt.Errorf("no lyrics to write")
	}

	if err := storage.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("creating lyrics dir: %w", err)
	}

	var content string
	if result.Synced != nil {
		content = FormatLRC(result.Synced)
	} else {
		content = result.Unsynced.Text
	}

	return storage.WriteFile(path, []byte(content))
}
