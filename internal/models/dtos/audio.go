package dtos

type AudioFormat string

const (
	AudioMP3  AudioFormat = "mp3"
	AudioFLAC AudioFormat = "flac"
	AudioWAV  AudioFormat = "wav"
	AudioM4A  AudioFormat = "m4a"
	AudioOGG  AudioFormat = "ogg"
	AudioAIFF AudioFormat = "aiff"
)

// AudioMetadata mirrors the backend's metadata record. Only the fields
// the player displays are guaranteed on a fallback value.
type AudioMetadata struct {
	FilePath        string      `json:"file_path,omitempty"`
	Title           string      `json:"title,omitempty"`
	Artist          string      `json:"artist,omitempty"`
	Album           string      `json:"album,omitempty"`
	DurationSeconds *float64    `json:"duration_seconds"`
	FileSize        int64       `json:"file_size,omitempty"`
	Format          AudioFormat `json:"format,omitempty"`
	SampleRate      *int        `json:"sample_rate,omitempty"`
	Channels        *int        `json:"channels,omitempty"`
	Bitrate         *int        `json:"bitrate,omitempty"`
}
