// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultDBPath       = "tunegrab.db"
	DefaultFormat       = "mp3"
	DefaultBitrate      = 320
	DefaultConcurrency  = 2
	DefaultHTTPTimeout  = 30 * time.Second
	ImageHTTPTimeout    = 30 * time.Second
	DefaultRetryCount   = 3
	DefaultRetryBase    = 1 * time.Second
	DefaultCacheTTL     = 12 * time.Hour
	DefaultCoverWidth   = 500
	DefaultCoverHeight  = 500
	DefaultCoverFormat  = "jpeg"
	DefaultStatusAddr   = ""
	ProgressBufferSize  = 64
)

// External tool invocation
const (
	YtdlpBinary         = "yt-dlp"
	FfmpegBinary        = "ffmpeg"
	SocketTimeoutSecs   = 30
	SubprocessRetries   = 3
	FragmentRetries     = 3
	ConcurrentFragments = 4
	BufferSize          = "16K"
	HTTPChunkSize       = "1M"
	UserAgent           = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Search candidate acceptance window, in seconds. Tracks shorter than a
// minute are assumed to be snippets; longer than 16 minutes, full albums.
const (
	MinTrackDurationSecs = 61
	MaxTrackDurationSecs = 960
)

// Search tiers
const (
	NarrowResultCount = 1
	WideResultCount   = 5
)

// MIME Types
const (
	MimeTypeFLAC = "audio/flac"
	MimeTypeMP3  = "audio/mpeg"
	MimeTypeMP4  = "audio/mp4"
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
)

// Database
const (
	DownloadsTable   = "downloads"
	SearchCacheTable = "search_cache"
	SettingsTable    = "settings"
)

// File Extensions
const (
	ExtFLAC = ".flac"
	ExtMP3  = ".mp3"
	ExtM4A  = ".m4a"
	ExtWAV  = ".wav"
	ExtJPG  = ".jpg"
	ExtPNG  = ".png"
	ExtLRC  = ".lrc"
	ExtTXT  = ".txt"
)

// Output layout directories under the configured output dir.
const (
	TracksDir = "tracks"
	CoversDir = "covers"
	LyricsDir = "lyrics"
)

// File Permissions
const (
	DirPermissions  = 0755
	FilePermissions = 0644
)

// UI/UX
const (
	MaxHistoryItems = 50
)

// Characters replaced with underscores in filesystem paths
const InvalidPathChars = "<>:\"/\\|?*"
