package encoding

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"reel/internal/media"
	"reel/internal/services"
)

var testCRFEncoders = []string{"libx264", "libx265", "libvpx", "libvpx-vp9", "libaom-av1", "libsvtav1"}

func TestCompileAudioOrdering(t *testing.T) {
	job := media.Job{
		InputPath:  "/media/in.wav",
		OutputPath: "/media/out.mp3",
		Settings: media.AudioSettings{
			AudioBitrate: media.Kilobits(192),
			AudioEncoder: media.CodecMP3,
			SampleRate:   44100,
			Threads:      2,
			SeekTo:       30 * time.Second,
			Duration:     90 * time.Second,
		},
	}

	args, err := Compile(job, testCRFEncoders)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}

	want := []string{
		"-i", "/media/in.wav",
		"-ss", "30",
		"-t", "90",
		"-c:a", "libmp3lame",
		"-b:a", "192k",
		"-ar", "44100",
		"-threads", "2",
		"/media/out.mp3",
	}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("unexpected args:\n got %v\nwant %v", args, want)
	}
}

func TestCompileVideoOrdering(t *testing.T) {
	job := media.Job{
		InputPath:  "/media/in.mkv",
		OutputPath: "/media/out.mp4",
		Container:  "mp4",
		Settings: media.VideoSettings{
			AudioSettings: media.AudioSettings{
				AudioEncoder: media.CodecAAC,
				AudioBitrate: media.Kilobits(128),
			},
			VideoEncoder:       media.CodecH264,
			VideoBitrate:       media.Megabits(2),
			ConstantRateFactor: media.CRF(23),
			Filters:            media.FilterChain{media.ScaleFilter{Width: 1280, Height: -1}},
			Frames:             300,
		},
	}

	args, err := Compile(job, testCRFEncoders)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}

	want := []string{
		"-i", "/media/in.mkv",
		"-c:a", "aac",
		"-b:a", "128k",
		"-c:v", "libx264",
		"-b:v", "2M",
		"-crf", "23",
		"-vf", "scale=1280:-1",
		"-frames:v", "300",
		"/media/out.mp4",
		"-f", "mp4",
	}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("unexpected args:\n got %v\nwant %v", args, want)
	}
}

func TestCompileContainerFollowsOutputPath(t *testing.T) {
	job := media.Job{
		InputPath:  "in.mkv",
		OutputPath: "out.webm",
		Container:  "webm",
		Settings:   media.AudioSettings{},
	}
	args, err := Compile(job, testCRFEncoders)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	if args[len(args)-3] != "out.webm" || args[len(args)-2] != "-f" || args[len(args)-1] != "webm" {
		t.Fatalf("expected container after output path, got %v", args)
	}
}

func TestCompileCopyConflictsFail(t *testing.T) {
	cases := []struct {
		name     string
		settings media.Settings
		fragment string
	}{
		{
			name: "audio bitrate with copy",
			settings: media.AudioSettings{
				AudioEncoder: media.StreamCopy{},
				AudioBitrate: media.Kilobits(128),
			},
			fragment: "audio bitrate",
		},
		{
			name: "sample rate with copy",
			settings: media.AudioSettings{
				AudioEncoder: media.StreamCopy{},
				SampleRate:   48000,
			},
			fragment: "sample rate",
		},
		{
			name: "video bitrate with copy",
			settings: media.VideoSettings{
				VideoEncoder: media.StreamCopy{},
				VideoBitrate: media.Megabits(4),
			},
			fragment: "video bitrate",
		},
		{
			name: "filters with copy",
			settings: media.VideoSettings{
				VideoEncoder: media.StreamCopy{},
				Filters:      media.FilterChain{media.RawFilter("hflip")},
			},
			fragment: "video filters",
		},
		{
			name: "crf with copy",
			settings: media.VideoSettings{
				VideoEncoder:       media.StreamCopy{},
				ConstantRateFactor: media.CRF(18),
			},
			fragment: "constant rate factor",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			job := media.Job{InputPath: "in", OutputPath: "out", Settings: tc.settings}
			_, err := Compile(job, testCRFEncoders)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation classification, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.fragment) {
				t.Fatalf("expected error to name %q, got %q", tc.fragment, err.Error())
			}
		})
	}
}

func TestCompileCopyAudioAllowedWithTrim(t *testing.T) {
	job := media.Job{
		InputPath:  "in.mkv",
		OutputPath: "out.mkv",
		Settings: media.AudioSettings{
			AudioEncoder: media.StreamCopy{},
			Duration:     time.Minute,
			Threads:      4,
		},
	}
	args, err := Compile(job, testCRFEncoders)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	want := []string{"-i", "in.mkv", "-t", "60", "-c:a", "copy", "-threads", "4", "out.mkv"}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("unexpected args:\n got %v\nwant %v", args, want)
	}
}

func TestCompileCRFSilentlyIgnoredForUnsupportedEncoder(t *testing.T) {
	job := media.Job{
		InputPath:  "in.mkv",
		OutputPath: "out.avi",
		Settings: media.VideoSettings{
			VideoEncoder:       media.CodecMPEG4,
			ConstantRateFactor: media.CRF(20),
		},
	}
	args, err := Compile(job, testCRFEncoders)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	for _, arg := range args {
		if arg == "-crf" {
			t.Fatalf("expected crf to be dropped for mpeg4, got %v", args)
		}
	}
}

func TestCompileFractionalSeek(t *testing.T) {
	job := media.Job{
		InputPath:  "in.mkv",
		OutputPath: "out.mkv",
		Settings:   media.AudioSettings{SeekTo: 1500 * time.Millisecond},
	}
	args, err := Compile(job, testCRFEncoders)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	want := []string{"-i", "in.mkv", "-ss", "1.5", "out.mkv"}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("unexpected args:\n got %v\nwant %v", args, want)
	}
}

func TestCompileRequiresPaths(t *testing.T) {
	if _, err := Compile(media.Job{OutputPath: "out", Settings: media.AudioSettings{}}, nil); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for missing input, got %v", err)
	}
	if _, err := Compile(media.Job{InputPath: "in", Settings: media.AudioSettings{}}, nil); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for missing output, got %v", err)
	}
}

func TestCompileDeterministic(t *testing.T) {
	job := media.Job{
		InputPath:  "in.mkv",
		OutputPath: "out.mkv",
		Settings: media.VideoSettings{
			AudioSettings: media.AudioSettings{AudioEncoder: media.CodecOpus},
			VideoEncoder:  media.CodecVP9,
		},
	}
	first, err := Compile(job, testCRFEncoders)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	second, err := Compile(job, testCRFEncoders)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected deterministic output, got %v then %v", first, second)
	}
}
