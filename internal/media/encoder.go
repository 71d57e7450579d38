package media

// Encoder selects how one stream of a job is produced. Three variants
// exist: a Codec from the named vocabulary, a RawEncoder passed through
// verbatim, and StreamCopy. StreamCopy is mutually exclusive with every
// encoding-parameter field for the same stream; the argument compiler
// rejects such combinations.
type Encoder interface {
	// Token is the codec argument as handed to ffmpeg.
	Token() string
	isEncoder()
}

// Codec is an encoder from the named vocabulary.
type Codec string

// Audio codecs.
const (
	CodecAAC    Codec = "aac"
	CodecMP3    Codec = "libmp3lame"
	CodecOpus   Codec = "libopus"
	CodecVorbis Codec = "libvorbis"
	CodecFLAC   Codec = "flac"
	CodecPCM16  Codec = "pcm_s16le"
)

// Video codecs.
const (
	CodecH264   Codec = "libx264"
	CodecH265   Codec = "libx265"
	CodecVP8    Codec = "libvpx"
	CodecVP9    Codec = "libvpx-vp9"
	CodecAV1    Codec = "libaom-av1"
	CodecSVTAV1 Codec = "libsvtav1"
	CodecMPEG4  Codec = "mpeg4"
)

func (c Codec) Token() string { return string(c) }
func (Codec) isEncoder()      {}

// RawEncoder names an encoder outside the built-in vocabulary. The value
// is passed to ffmpeg untouched.
type RawEncoder string

func (r RawEncoder) Token() string { return string(r) }
func (RawEncoder) isEncoder()      {}

// StreamCopy passes the source stream through unmodified.
type StreamCopy struct{}

func (StreamCopy) Token() string { return "copy" }
func (StreamCopy) isEncoder()    {}

// IsCopy reports whether the encoder selection is the copy variant.
func IsCopy(enc Encoder) bool {
	_, ok := enc.(StreamCopy)
	return ok
}
