package domain

// DownloadStage is a named point in a track's download lifecycle. Stages
// advance in a single forward direction per track; StageError is terminal
// and reachable from any non-terminal stage.
type DownloadStage string

const (
	StageQueued            DownloadStage = "queued"
	StageFetchingMetadata  DownloadStage = "fetching_metadata"
	StageSearchingSource   DownloadStage = "searching_source"
	StageDownloadingAudio  DownloadStage = "downloading_audio"
	StageConvertingAudio   DownloadStage = "converting_audio"
	StageDownloadingCover  DownloadStage = "downloading_cover"
	StageDownloadingLyrics DownloadStage = "downloading_lyrics"
	StageEmbeddingMetadata DownloadStage = "embedding_metadata"
	StageCompleted         DownloadStage = "completed"
	StageError             DownloadStage = "error"
)

// stageOrder gives each stage its position in the forward sequence. The two
// enrichment stages share a position since they run in parallel.
var stageOrder = map[DownloadStage]int{
	StageQueued:            0,
	StageFetchingMetadata:  1,
	StageSearchingSource:   2,
	StageDownloadingAudio:  3,
	StageConvertingAudio:   4,
	StageDownloadingCover:  5,
	StageDownloadingLyrics: 5,
	StageEmbeddingMetadata: 6,
	StageCompleted:         7,
}

// CanAdvance reports whether moving from one stage to the next respects the
// forward-only state machine. Error is reachable from anything non-terminal;
// nothing leaves Completed or Error.
func (s DownloadStage) CanAdvance(next DownloadStage) bool {
	if s == StageCompleted || s == StageError {
		return false
	}
	if next == StageError {
		return true
	}
	from, ok := stageOrder[s]
	if !ok {
		return false
	}
	to, ok := stageOrder[next]
	if !ok {
		return false
	}
	return to >= from
}

// Terminal reports whether the stage ends a track's lifecycle.
func (s DownloadStage) Terminal() bool {
	return s == StageCompleted || s == StageError
}

// Display returns the human-readable stage name.
func (s DownloadStage) Display() string {
	switch s {
	case StageQueued:
		return "Queued"
	case StageFetchingMetadata:
		return "Fetching Metadata"
	case StageSearchingSource:
		return "Searching Source"
	case StageDownloadingAudio:
		return "Downloading Audio"
	case StageConvertingAudio:
		return "Converting Audio"
	case StageDownloadingCover:
		return "Downloading Cover"
	case StageDownloadingLyrics:
		return "Downloading Lyrics"
	case StageEmbeddingMetadata:
		return "Embedding Metadata"
	case StageCompleted:
		return "Completed"
	case StageError:
		return "Error"
	default:
		return string(s)
	}
}

// Progress fractions emitted at each stage transition. Audio download
// sub-progress interpolates between FractionDownloading and FractionConverting.
const (
	FractionQueued      = 0.0
	FractionSearching   = 0.1
	FractionDownloading = 0.3
	FractionConverting  = 0.6
	FractionEnrichment  = 0.8
	FractionEmbedding   = 0.9
	FractionCoverSave   = 0.95
	FractionCompleted   = 1.0
)

// DownloadProgress is one progress event for one track.
type DownloadProgress struct {
	TrackID  string        `json:"track_id"`
	Stage    DownloadStage `json:"stage"`
	Fraction float64       `json:"fraction"` // 0.0 to 1.0
	Message  string        `json:"message"`
}

// DownloadTaskResult is the terminal record for one track in a batch.
type DownloadTaskResult struct {
	Track      TrackMetadata `json:"track"`
	Success    bool          `json:"success"`
	OutputPath string        `json:"output_path,omitempty"`
	Error      string        `json:"error,omitempty"`
}
