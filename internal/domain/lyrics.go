package domain

// LyricsLine is a single timestamped lyrics line.
type LyricsLine struct {
	TimestampMS int    `json:"timestamp_ms"`
	Text        string `json:"text"`
}

// SyncedLyrics holds timestamped lyrics in emission order.
type SyncedLyrics struct {
	Lines  []LyricsLine `json:"lines"`
	Offset int          `json:"offset,omitempty"` // global offset in ms
	Source string       `json:"source"`
}

// UnsyncedLyrics holds plain-text lyrics.
type UnsyncedLyrics struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

// LyricsResult carries either synced or unsynced lyrics, never both.
type LyricsResult struct {
	Synced   *SyncedLyrics   `json:"synced,omitempty"`
	Unsynced *UnsyncedLyrics `json:"unsynced,omitempty"`
}

// Source returns the attribution label of whichever variant is present.
func (r *LyricsResult) SourceLabel() string {
	if r == nil {
		return ""
	}
	if r.Synced != nil {
		return r.Synced.Source
	}
	if r.Unsynced != nil {
		return r.Unsynced.Source
	}
	return ""
}

// EnrichmentResult holds the optional cover art and lyrics fetched for a
// track. Both halves are independently present-or-absent; a missing half is
// never an error. The value lives only for the duration of one embed step.
type EnrichmentResult struct {
	Cover  []byte
	Lyrics *LyricsResult
}
