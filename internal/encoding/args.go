package encoding

import (
	"strconv"
	"strings"
	"time"

	"reel/internal/media"
	"reel/internal/services"
)

// Compile turns a job into the ordered ffmpeg token list. Ordering is
// significant: input flags, trim flags, audio section, video section, the
// output path, then the container override. The supervisor wraps the result
// in its own control header and trailer; callers must not supply those.
//
// A copy-stream encoder combined with any encoding parameter for the same
// stream is a validation failure naming the conflicting option. A constant
// rate factor for an encoder outside crfEncoders is silently dropped.
func Compile(job media.Job, crfEncoders []string) ([]string, error) {
	if strings.TrimSpace(job.InputPath) == "" {
		return nil, services.Wrap(services.ErrValidation, "compile", "input", "input path is required", nil)
	}
	if strings.TrimSpace(job.OutputPath) == "" {
		return nil, services.Wrap(services.ErrValidation, "compile", "output", "output path is required", nil)
	}

	args := []string{"-i", job.InputPath}

	switch settings := job.Settings.(type) {
	case media.AudioSettings:
		args = append(args, trimTokens(settings)...)
		audio, err := audioTokens(settings)
		if err != nil {
			return nil, err
		}
		args = append(args, audio...)
	case media.VideoSettings:
		args = append(args, trimTokens(settings.AudioSettings)...)
		audio, err := audioTokens(settings.AudioSettings)
		if err != nil {
			return nil, err
		}
		args = append(args, audio...)
		video, err := videoTokens(settings, crfEncoders)
		if err != nil {
			return nil, err
		}
		args = append(args, video...)
	default:
		return nil, services.Wrap(services.ErrValidation, "compile", "settings", "job settings must be audio or video", nil)
	}

	args = append(args, job.OutputPath)
	if container := strings.TrimSpace(job.Container); container != "" {
		args = append(args, "-f", container)
	}
	return args, nil
}

func trimTokens(s media.AudioSettings) []string {
	var args []string
	if s.SeekTo > 0 {
		args = append(args, "-ss", formatSeconds(s.SeekTo))
	}
	if s.Duration > 0 {
		args = append(args, "-t", formatSeconds(s.Duration))
	}
	return args
}

func audioTokens(s media.AudioSettings) ([]string, error) {
	if s.AudioEncoder != nil && media.IsCopy(s.AudioEncoder) {
		switch {
		case s.AudioBitrate != nil:
			return nil, copyConflict("audio bitrate")
		case s.SampleRate != 0:
			return nil, copyConflict("sample rate")
		case s.Strictness != "":
			return nil, copyConflict("strictness")
		}
	}

	var args []string
	if s.AudioEncoder != nil {
		args = append(args, "-c:a", s.AudioEncoder.Token())
	}
	if s.AudioBitrate != nil {
		args = append(args, "-b:a", s.AudioBitrate.Token())
	}
	if s.SampleRate > 0 {
		args = append(args, "-ar", strconv.Itoa(s.SampleRate))
	}
	if s.Strictness != "" {
		args = append(args, "-strict", string(s.Strictness))
	}
	if s.Threads > 0 {
		args = append(args, "-threads", strconv.Itoa(s.Threads))
	}
	return args, nil
}

func videoTokens(s media.VideoSettings, crfEncoders []string) ([]string, error) {
	if s.VideoEncoder != nil && media.IsCopy(s.VideoEncoder) {
		switch {
		case s.VideoBitrate != nil:
			return nil, copyConflict("video bitrate")
		case len(s.Filters) > 0:
			return nil, copyConflict("video filters")
		case s.ConstantRateFactor != nil:
			return nil, copyConflict("constant rate factor")
		}
	}

	var args []string
	if s.VideoEncoder != nil {
		args = append(args, "-c:v", s.VideoEncoder.Token())
	}
	if s.VideoBitrate != nil {
		args = append(args, "-b:v", s.VideoBitrate.Token())
	}
	if s.ConstantRateFactor != nil && s.VideoEncoder != nil && supportsCRF(s.VideoEncoder, crfEncoders) {
		args = append(args, "-crf", strconv.Itoa(*s.ConstantRateFactor))
	}
	if len(s.Filters) > 0 {
		args = append(args, "-vf", s.Filters.Token())
	}
	if s.Frames > 0 {
		args = append(args, "-frames:v", strconv.Itoa(s.Frames))
	}
	return args, nil
}

func supportsCRF(encoder media.Encoder, crfEncoders []string) bool {
	token := encoder.Token()
	for _, name := range crfEncoders {
		if name == token {
			return true
		}
	}
	return false
}

func copyConflict(option string) error {
	return services.Wrap(services.ErrValidation, "compile", option, "conflicts with stream copy", nil)
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}
