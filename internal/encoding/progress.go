package encoding

import (
	"strconv"
	"strings"
)

// RateUnit is the unit suffix of a reported bitrate.
type RateUnit int

const (
	RateBits RateUnit = iota
	RateKilobits
	RateMegabits
)

func (u RateUnit) String() string {
	switch u {
	case RateKilobits:
		return "kbits/s"
	case RateMegabits:
		return "mbits/s"
	default:
		return "bits/s"
	}
}

// Rate is a bitrate as reported on the progress stream, kept in the unit the
// tool emitted it in.
type Rate struct {
	Value float64
	Unit  RateUnit
}

// Progress is one parsed snapshot from the ffmpeg progress stream. Pointer
// fields are absent when the tool reported N/A, which happens for stream
// kinds the key does not apply to (no frame counter for pure audio).
type Progress struct {
	Frame         *int64
	FPS           *float64
	Bitrate       Rate
	OutputSize    int64
	OutTimeMicros int64
	DupFrames     *int64
	DropFrames    *int64
	Speed         float64
}

// Seconds returns the output timestamp in whole seconds.
func (p Progress) Seconds() int64 {
	return p.OutTimeMicros / 1_000_000
}

// clone copies the snapshot, detaching the optional fields.
func (p Progress) clone() Progress {
	c := p
	if p.Frame != nil {
		v := *p.Frame
		c.Frame = &v
	}
	if p.FPS != nil {
		v := *p.FPS
		c.FPS = &v
	}
	if p.DupFrames != nil {
		v := *p.DupFrames
		c.DupFrames = &v
	}
	if p.DropFrames != nil {
		v := *p.DropFrames
		c.DropFrames = &v
	}
	return c
}

const notApplicable = "N/A"

// apply folds one key=value pair into the accumulating snapshot. Unknown
// keys and N/A values leave the snapshot untouched.
func (p *Progress) apply(key, value string) {
	value = strings.TrimSpace(value)
	if value == notApplicable {
		return
	}
	switch key {
	case "frame":
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			p.Frame = &v
		}
	case "fps":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			p.FPS = &v
		}
	case "bitrate":
		if rate, ok := parseRate(value); ok {
			p.Bitrate = rate
		}
	case "total_size":
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			p.OutputSize = v
		}
	case "out_time_us", "out_time_ms":
		// ffmpeg reports microseconds under both keys.
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			p.OutTimeMicros = v
		}
	case "dup_frames":
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			p.DupFrames = &v
		}
	case "drop_frames":
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			p.DropFrames = &v
		}
	case "speed":
		if v, err := strconv.ParseFloat(strings.TrimSuffix(value, "x"), 64); err == nil {
			p.Speed = v
		}
	}
}

// parseRate decodes ffmpeg's `<float><unit>/s` bitrate format. The unit is
// judged by the first letter after the number: k for kilo, m for mega,
// anything else (including no suffix at all) is raw bits per second.
func parseRate(value string) (Rate, bool) {
	value = strings.TrimSuffix(value, "/s")
	numberEnd := len(value)
	for i, r := range value {
		if (r < '0' || r > '9') && r != '.' && r != '-' && r != '+' {
			numberEnd = i
			break
		}
	}
	number, err := strconv.ParseFloat(value[:numberEnd], 64)
	if err != nil {
		return Rate{}, false
	}
	unit := RateBits
	if suffix := value[numberEnd:]; suffix != "" {
		switch suffix[0] {
		case 'k', 'K':
			unit = RateKilobits
		case 'm', 'M':
			unit = RateMegabits
		}
	}
	return Rate{Value: number, Unit: unit}, true
}
