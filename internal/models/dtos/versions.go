package dtos

type VersionType string

const (
	VersionDemo         VersionType = "Demo"
	VersionStudio       VersionType = "Studio"
	VersionLive         VersionType = "Live"
	VersionRemix        VersionType = "Remix"
	VersionRemaster     VersionType = "Remaster"
	VersionAcoustic     VersionType = "Acoustic"
	VersionCover        VersionType = "Cover"
	VersionInstrumental VersionType = "Instrumental"
)

type VersionInfo struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Artist      string      `json:"artist"`
	VersionType VersionType `json:"version_type"`
	Duration    *float64    `json:"duration,omitempty"`
	FileSize    *int64      `json:"file_size,omitempty"`
	UploadDate  string      `json:"upload_date"`
	PlayCount   int         `json:"play_count"`
	VoteScore   int         `json:"vote_score"`
}

type Song struct {
	ID             string        `json:"id"`
	CanonicalTitle string        `json:"canonical_title"`
	Versions       []VersionInfo `json:"versions"`
	TotalVersions  int           `json:"total_versions"`
}
