package store

import (
	"time"

	"github.com/cesargomez89/tunegrab/internal/domain"
)

// Download is one row of download history.
type Download struct {
	ID          int64     `db:"id" json:"id"`
	BatchID     string    `db:"batch_id" json:"batch_id"`
	TrackID     string    `db:"track_id" json:"track_id"`
	Title       string    `db:"title" json:"title"`
	Artist      string    `db:"artist" json:"artist"`
	Album       string    `db:"album" json:"album,omitempty"`
	Success     bool      `db:"success" json:"success"`
	FilePath    string    `db:"file_path" json:"file_path,omitempty"`
	Error       string    `db:"error" json:"error,omitempty"`
	CompletedAt time.Time `db:"completed_at" json:"completed_at"`
}

// RecordResult appends one batch result to the history.
func (db *DB) RecordResult(batchID string, result domain.DownloadTaskResult) error {
	_, err := db.Exec(`
		INSERT INTO downloads (batch_id, track_id, title, artist, album, success, file_path, error, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		batchID,
		result.Track.ID,
		result.Track.Title,
		result.Track.Artist,
		result.Track.Album,
		result.Success,
		result.OutputPath,
		result.Error,
		time.Now(),
	)
	return err
}

// ListDownloads returns the most recent history rows.
func (db *DB) ListDownloads(limit int) ([]Download, error) {
	var downloads []Download
	err := db.Select(&downloads,
		`SELECT id, batch_id, track_id, title, artist, album, success, file_path, error, completed_at
		 FROM downloads ORDER BY completed_at DESC, id DESC LIMIT ?`, limit)
	return downloads, err
}

// ListBatch returns every history row for one batch.
func (db *DB) ListBatch(batchID string) ([]Download, error) {
	var downloads []Download
	err := db.Select(&downloads,
		`SELECT id, batch_id, track_id, title, artist, album, success, file_path, error, completed_at
		 FROM downloads WHERE batch_id = ? ORDER BY id`, batchID)
	return downloads, err
}
