package media

import "time"

// Settings is the tagged settings tree for a job. Exactly two variants
// exist: AudioSettings and VideoSettings, the latter a strict superset of
// the former. The unexported marker keeps the set closed so consumers can
// switch exhaustively.
type Settings interface {
	isSettings()
}

// Strictness maps to ffmpeg's -strict levels.
type Strictness string

const (
	StrictnessVery         Strictness = "very"
	StrictnessStrict       Strictness = "strict"
	StrictnessNormal       Strictness = "normal"
	StrictnessUnofficial   Strictness = "unofficial"
	StrictnessExperimental Strictness = "experimental"
)

// AudioSettings describes an audio-only transcode. Zero values mean "not
// set"; unset fields emit no tokens.
type AudioSettings struct {
	AudioBitrate *Bitrate
	AudioEncoder Encoder
	SampleRate   int
	Strictness   Strictness
	// Duration limits how much of the input is transcoded; SeekTo skips
	// ahead before decoding starts.
	Duration time.Duration
	SeekTo   time.Duration
	Threads  int
}

func (AudioSettings) isSettings() {}

// VideoSettings describes an audio+video transcode. It embeds the audio
// fields and adds the video-only ones.
type VideoSettings struct {
	AudioSettings

	VideoBitrate *Bitrate
	VideoEncoder Encoder
	Filters      FilterChain
	// Frames limits the number of video frames written.
	Frames int
	// ConstantRateFactor is only honored for encoders that support CRF;
	// nil means not requested. Zero is a valid (lossless) value, hence the
	// pointer.
	ConstantRateFactor *int
}

func (VideoSettings) isSettings() {}

// CRF is a convenience constructor for the ConstantRateFactor field.
func CRF(value int) *int {
	return &value
}
