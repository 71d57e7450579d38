package media

import "strconv"

// Bitrate is a stream bitrate in bits per second. It renders as the most
// compact ffmpeg token: a k or M suffix when the value divides evenly,
// otherwise the raw number.
type Bitrate int64

// Kilobits builds a bitrate from kilobits per second.
func Kilobits(v int64) *Bitrate {
	b := Bitrate(v * 1000)
	return &b
}

// Megabits builds a bitrate from megabits per second.
func Megabits(v int64) *Bitrate {
	b := Bitrate(v * 1000 * 1000)
	return &b
}

// BitsPerSecond builds a bitrate from raw bits per second.
func BitsPerSecond(v int64) *Bitrate {
	b := Bitrate(v)
	return &b
}

// Token renders the bitrate as an ffmpeg argument value.
func (b Bitrate) Token() string {
	v := int64(b)
	switch {
	case v != 0 && v%(1000*1000) == 0:
		return strconv.FormatInt(v/(1000*1000), 10) + "M"
	case v != 0 && v%1000 == 0:
		return strconv.FormatInt(v/1000, 10) + "k"
	default:
		return strconv.FormatInt(v, 10)
	}
}
