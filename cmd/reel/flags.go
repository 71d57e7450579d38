package main

import (
	"fmt"
	"strconv"
	"strings"

	"reel/internal/media"
)

// codecAliases maps CLI-friendly names onto the encoder vocabulary. Anything
// not listed here is handed to ffmpeg verbatim.
var codecAliases = map[string]media.Codec{
	"aac":        media.CodecAAC,
	"mp3":        media.CodecMP3,
	"libmp3lame": media.CodecMP3,
	"opus":       media.CodecOpus,
	"libopus":    media.CodecOpus,
	"vorbis":     media.CodecVorbis,
	"libvorbis":  media.CodecVorbis,
	"flac":       media.CodecFLAC,
	"pcm":        media.CodecPCM16,
	"pcm_s16le":  media.CodecPCM16,
	"h264":       media.CodecH264,
	"libx264":    media.CodecH264,
	"h265":       media.CodecH265,
	"hevc":       media.CodecH265,
	"libx265":    media.CodecH265,
	"vp8":        media.CodecVP8,
	"libvpx":     media.CodecVP8,
	"vp9":        media.CodecVP9,
	"libvpx-vp9": media.CodecVP9,
	"av1":        media.CodecAV1,
	"libaom-av1": media.CodecAV1,
	"svtav1":     media.CodecSVTAV1,
	"libsvtav1":  media.CodecSVTAV1,
	"mpeg4":      media.CodecMPEG4,
}

// parseEncoder resolves a CLI encoder value. Empty means "not requested",
// "copy" selects stream copy, known names map to the codec vocabulary, and
// everything else passes through as a raw encoder.
func parseEncoder(value string) media.Encoder {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		return nil
	case strings.EqualFold(value, "copy"):
		return media.StreamCopy{}
	}
	if codec, ok := codecAliases[strings.ToLower(value)]; ok {
		return codec
	}
	return media.RawEncoder(value)
}

// parseBitrate decodes human bitrate notation such as 128k, 2M, or a raw
// bits-per-second count. An empty value means "not requested".
func parseBitrate(value string) (*media.Bitrate, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	number := value
	multiplier := int64(1)
	switch value[len(value)-1] {
	case 'k', 'K':
		number = value[:len(value)-1]
		multiplier = 1000
	case 'm', 'M':
		number = value[:len(value)-1]
		multiplier = 1000 * 1000
	}
	parsed, err := strconv.ParseInt(number, 10, 64)
	if err != nil || parsed <= 0 {
		return nil, fmt.Errorf("invalid bitrate %q (expected forms: 96000, 128k, 2M)", value)
	}
	return media.BitsPerSecond(parsed * multiplier), nil
}

// parseStrictness validates a -strict level name.
func parseStrictness(value string) (media.Strictness, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	switch media.Strictness(value) {
	case "":
		return "", nil
	case media.StrictnessVery, media.StrictnessStrict, media.StrictnessNormal,
		media.StrictnessUnofficial, media.StrictnessExperimental:
		return media.Strictness(value), nil
	}
	return "", fmt.Errorf("invalid strictness %q (very, strict, normal, unofficial, experimental)", value)
}

// parseScale decodes a WxH scale spec; -1 for either dimension keeps the
// aspect ratio.
func parseScale(value string) (media.Filter, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	width, height, ok := strings.Cut(strings.ToLower(value), "x")
	if !ok {
		return nil, fmt.Errorf("invalid scale %q (expected WxH, e.g. 1280x720 or 1280x-1)", value)
	}
	w, errW := strconv.Atoi(width)
	h, errH := strconv.Atoi(height)
	if errW != nil || errH != nil {
		return nil, fmt.Errorf("invalid scale %q (expected WxH, e.g. 1280x720 or 1280x-1)", value)
	}
	return media.ScaleFilter{Width: w, Height: h}, nil
}

// buildFilterChain assembles the video filter graph from the scale shorthand
// and any raw filter expressions, in flag order.
func buildFilterChain(scale string, rawFilters []string) (media.FilterChain, error) {
	var chain media.FilterChain
	scaleFilter, err := parseScale(scale)
	if err != nil {
		return nil, err
	}
	if scaleFilter != nil {
		chain = append(chain, scaleFilter)
	}
	for _, raw := range rawFilters {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			chain = append(chain, media.RawFilter(trimmed))
		}
	}
	return chain, nil
}
