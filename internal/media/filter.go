package media

import (
	"strconv"
	"strings"
)

// Filter is one element of a video filter graph. The closed variant set
// mirrors the encoder vocabulary: named filters plus a raw escape hatch.
type Filter interface {
	// Token is the filter expression as it appears in a -vf chain.
	Token() string
	isFilter()
}

// ScaleFilter resizes video. A dimension of -1 keeps the aspect ratio.
type ScaleFilter struct {
	Width  int
	Height int
}

func (f ScaleFilter) Token() string {
	return "scale=" + strconv.Itoa(f.Width) + ":" + strconv.Itoa(f.Height)
}
func (ScaleFilter) isFilter() {}

// CropFilter extracts a region of the video frame.
type CropFilter struct {
	Width  int
	Height int
	X      int
	Y      int
}

func (f CropFilter) Token() string {
	return "crop=" + strconv.Itoa(f.Width) + ":" + strconv.Itoa(f.Height) +
		":" + strconv.Itoa(f.X) + ":" + strconv.Itoa(f.Y)
}
func (CropFilter) isFilter() {}

// TransposeFilter rotates or flips the frame using ffmpeg's transpose
// directions (0-3).
type TransposeFilter int

const (
	TransposeCounterClockwiseFlip TransposeFilter = 0
	TransposeClockwise            TransposeFilter = 1
	TransposeCounterClockwise     TransposeFilter = 2
	TransposeClockwiseFlip        TransposeFilter = 3
)

func (f TransposeFilter) Token() string {
	return "transpose=" + strconv.Itoa(int(f))
}
func (TransposeFilter) isFilter() {}

// RawFilter is a filter expression passed through verbatim.
type RawFilter string

func (f RawFilter) Token() string { return string(f) }
func (RawFilter) isFilter()       {}

// FilterChain is an ordered filter graph; order is significant because
// filters apply left to right.
type FilterChain []Filter

// Token renders the chain as a single -vf argument value.
func (c FilterChain) Token() string {
	if len(c) == 0 {
		return ""
	}
	parts := make([]string, 0, len(c))
	for _, f := range c {
		parts = append(parts, f.Token())
	}
	return strings.Join(parts, ",")
}
