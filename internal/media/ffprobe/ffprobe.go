package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"reel/internal/services"
)

var commandContext = exec.CommandContext

// Options selects which metadata sections ffprobe reports. The zero value
// requests nothing beyond the embedded error object; most callers want at
// least Format and Streams.
type Options struct {
	Format   bool
	Streams  bool
	Chapters bool
}

// InspectAll requests every metadata section.
func InspectAll() Options {
	return Options{Format: true, Streams: true, Chapters: true}
}

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams  []Stream  `json:"streams"`
	Format   Format    `json:"format"`
	Chapters []Chapter `json:"chapters"`
	Error    *Error    `json:"error"`
	raw      []byte
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index      int               `json:"index"`
	CodecName  string            `json:"codec_name"`
	CodecType  string            `json:"codec_type"`
	CodecTag   string            `json:"codec_tag_string"`
	Duration   string            `json:"duration"`
	BitRate    string            `json:"bit_rate"`
	Width      int               `json:"width"`
	Height     int               `json:"height"`
	SampleRate string            `json:"sample_rate"`
	Channels   int               `json:"channels"`
	Tags       map[string]string `json:"tags"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string            `json:"filename"`
	NBStreams  int               `json:"nb_streams"`
	Duration   string            `json:"duration"`
	Size       string            `json:"size"`
	BitRate    string            `json:"bit_rate"`
	FormatName string            `json:"format_name"`
	Tags       map[string]string `json:"tags"`
}

// Chapter describes one chapter marker in the container.
type Chapter struct {
	ID        int64             `json:"id"`
	TimeBase  string            `json:"time_base"`
	StartTime string            `json:"start_time"`
	EndTime   string            `json:"end_time"`
	Tags      map[string]string `json:"tags"`
}

// Error is the error object ffprobe embeds in its JSON output when the
// inspection itself failed.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"string"`
}

// AsyncResult carries the outcome of a background inspection.
type AsyncResult struct {
	Result Result
	Err    error
}

// Inspect executes ffprobe against the provided path and decodes the JSON
// response. An error object embedded in the output is converted into a
// classified probe failure; partial metadata is never returned alongside it.
func Inspect(ctx context.Context, binary string, path string, opts Options) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, services.Wrap(services.ErrValidation, "probe", "inspect", "empty path", nil)
	}

	args := []string{"-v", "error", "-hide_banner", "-of", "json", "-show_error"}
	if opts.Format {
		args = append(args, "-show_format")
	}
	if opts.Streams {
		args = append(args, "-show_streams")
	}
	if opts.Chapters {
		args = append(args, "-show_chapters")
	}
	args = append(args, "--", path)

	cmd := commandContext(ctx, binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return Result{}, services.Wrap(services.ErrSpawn, "probe", "start", binary, runErr)
		}
	}

	var result Result
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = "unparseable output"
		}
		return Result{}, services.Wrap(services.ErrProbe, "probe", "decode", detail, err)
	}
	if result.Error != nil {
		message := fmt.Sprintf("code %d: %s", result.Error.Code, result.Error.Message)
		return Result{}, services.Wrap(services.ErrProbe, "probe", "inspect", message, nil)
	}
	if runErr != nil {
		detail := strings.TrimSpace(stderr.String())
		return Result{}, services.Wrap(services.ErrProbe, "probe", "run", detail, runErr)
	}
	result.raw = append([]byte(nil), stdout.Bytes()...)
	return result, nil
}

// InspectAsync performs the same inspection on a separate goroutine and
// delivers the outcome on the returned channel. The channel is buffered so
// the worker never blocks on a slow caller.
func InspectAsync(ctx context.Context, binary string, path string, opts Options) <-chan AsyncResult {
	out := make(chan AsyncResult, 1)
	go func() {
		result, err := Inspect(ctx, binary, path, opts)
		out <- AsyncResult{Result: result, Err: err}
		close(out)
	}()
	return out
}

// RawJSON returns the raw ffprobe JSON payload.
func (r Result) RawJSON() []byte {
	return append([]byte(nil), r.raw...)
}

// VideoStreamCount returns the number of video streams discovered.
func (r Result) VideoStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "video") {
			count++
		}
	}
	return count
}

// AudioStreamCount returns the number of audio streams discovered.
func (r Result) AudioStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			count++
		}
	}
	return count
}

// DurationSeconds returns the container duration in seconds, or 0 when unavailable.
func (r Result) DurationSeconds() float64 {
	return parseFloat(r.Format.Duration)
}

// SizeBytes returns the reported container size in bytes, or 0 when unavailable.
func (r Result) SizeBytes() int64 {
	size := parseFloat(r.Format.Size)
	if math.IsNaN(size) || size < 0 {
		return 0
	}
	return int64(size)
}

// BitRate returns the container bitrate in bits per second, or 0 when unavailable.
func (r Result) BitRate() int64 {
	rate := parseFloat(r.Format.BitRate)
	if math.IsNaN(rate) || rate < 0 {
		return 0
	}
	return int64(rate)
}

// Language returns the stream's language tag, or empty when untagged.
func (s Stream) Language() string {
	if s.Tags == nil {
		return ""
	}
	return strings.TrimSpace(s.Tags["language"])
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}
