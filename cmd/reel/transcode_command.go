package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/spf13/cobra"

	"reel/internal/encoding"
	"reel/internal/logging"
	"reel/internal/media"
	"reel/internal/media/ffprobe"
)

type transcodeFlags struct {
	audioEncoder string
	audioBitrate string
	sampleRate   int
	strictness   string

	videoEncoder string
	videoBitrate string
	crf          int
	scale        string
	rawFilters   []string
	frames       int

	seek      time.Duration
	duration  time.Duration
	threads   int
	container string
	timeout   time.Duration
}

func newTranscodeCommand(ctx *commandContext) *cobra.Command {
	var flags transcodeFlags

	cmd := &cobra.Command{
		Use:   "transcode <input> <output>",
		Short: "Transcode a media file with live progress",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranscode(cmd, ctx, args[0], args[1], flags)
		},
	}

	cmd.Flags().StringVar(&flags.audioEncoder, "audio-encoder", "", "Audio encoder (codec name or 'copy')")
	cmd.Flags().StringVar(&flags.audioBitrate, "audio-bitrate", "", "Audio bitrate (e.g. 128k)")
	cmd.Flags().IntVar(&flags.sampleRate, "sample-rate", 0, "Audio sample rate in Hz")
	cmd.Flags().StringVar(&flags.strictness, "strict", "", "Standards strictness (very, strict, normal, unofficial, experimental)")

	cmd.Flags().StringVar(&flags.videoEncoder, "video-encoder", "", "Video encoder (codec name or 'copy')")
	cmd.Flags().StringVar(&flags.videoBitrate, "video-bitrate", "", "Video bitrate (e.g. 2M)")
	cmd.Flags().IntVar(&flags.crf, "crf", -1, "Constant rate factor (encoder dependent)")
	cmd.Flags().StringVar(&flags.scale, "scale", "", "Scale video to WxH (-1 keeps aspect)")
	cmd.Flags().StringArrayVar(&flags.rawFilters, "vf", nil, "Raw video filter expression (repeatable)")
	cmd.Flags().IntVar(&flags.frames, "frames", 0, "Limit the number of video frames written")

	cmd.Flags().DurationVar(&flags.seek, "seek", 0, "Skip ahead before transcoding starts")
	cmd.Flags().DurationVar(&flags.duration, "duration", 0, "Limit how much of the input is transcoded")
	cmd.Flags().IntVar(&flags.threads, "threads", 0, "Encoder thread count")
	cmd.Flags().StringVar(&flags.container, "container", "", "Force the output container format")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "Cancel the job after this long")

	return cmd
}

func runTranscode(cmd *cobra.Command, ctx *commandContext, input, output string, flags transcodeFlags) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	settings, err := buildSettings(flags)
	if err != nil {
		return err
	}

	job := media.NewJob(input, output, settings)
	job.Container = flags.container

	runner := encoding.NewRunnerFromConfig(cfg, logger)
	handle, err := runner.Start(cmd.Context(), job)
	if err != nil {
		return err
	}
	if flags.timeout > 0 {
		handle.StartTimeout(flags.timeout)
	}

	out := cmd.OutOrStdout()
	var finish func(failed bool)
	if shouldColorize(out) {
		finish = attachProgressBar(cmd, ctx, handle, input, out)
	} else {
		attachProgressLog(handle, logger, job)
		finish = func(bool) {}
	}

	waitErr := handle.Wait(cmd.Context())
	finish(waitErr != nil)
	if waitErr != nil {
		return waitErr
	}

	if last := handle.LastProgress(); last != nil {
		fmt.Fprintf(out, "Wrote %s (%s, %s of output)\n",
			output,
			humanize.Bytes(uint64(last.OutputSize)),
			(time.Duration(last.OutTimeMicros) * time.Microsecond).Round(time.Second),
		)
	} else {
		fmt.Fprintf(out, "Wrote %s\n", output)
	}
	return nil
}

// buildSettings folds the flag values into the settings variant. Any video
// flag promotes the job to a video transcode.
func buildSettings(flags transcodeFlags) (media.Settings, error) {
	audioBitrate, err := parseBitrate(flags.audioBitrate)
	if err != nil {
		return nil, err
	}
	strictness, err := parseStrictness(flags.strictness)
	if err != nil {
		return nil, err
	}
	audio := media.AudioSettings{
		AudioEncoder: parseEncoder(flags.audioEncoder),
		AudioBitrate: audioBitrate,
		SampleRate:   flags.sampleRate,
		Strictness:   strictness,
		SeekTo:       flags.seek,
		Duration:     flags.duration,
		Threads:      flags.threads,
	}

	videoRequested := flags.videoEncoder != "" || flags.videoBitrate != "" ||
		flags.crf >= 0 || flags.scale != "" || len(flags.rawFilters) > 0 || flags.frames > 0
	if !videoRequested {
		return audio, nil
	}

	videoBitrate, err := parseBitrate(flags.videoBitrate)
	if err != nil {
		return nil, err
	}
	filters, err := buildFilterChain(flags.scale, flags.rawFilters)
	if err != nil {
		return nil, err
	}
	video := media.VideoSettings{
		AudioSettings: audio,
		VideoEncoder:  parseEncoder(flags.videoEncoder),
		VideoBitrate:  videoBitrate,
		Filters:       filters,
		Frames:        flags.frames,
	}
	if flags.crf >= 0 {
		video.ConstantRateFactor = media.CRF(flags.crf)
	}
	return video, nil
}

// attachProgressBar renders an interactive bar on a terminal. The tracker
// total comes from probing the input; when probing fails the bar stays
// indeterminate.
func attachProgressBar(cmd *cobra.Command, ctx *commandContext, handle *encoding.Handle, input string, out io.Writer) func(failed bool) {
	var total int64
	if cfg := ctx.configValue(); cfg != nil {
		result, err := ffprobe.Inspect(cmd.Context(), cfg.Tools.FFprobeBinary, input, ffprobe.Options{Format: true})
		if err == nil {
			total = int64(result.DurationSeconds())
		}
	}

	pw := progress.NewWriter()
	pw.SetOutputWriter(out)
	pw.SetUpdateFrequency(100 * time.Millisecond)
	pw.SetTrackerLength(32)

	tracker := &progress.Tracker{
		Message: "transcoding " + filepath.Base(input),
		Total:   total,
		Units:   progress.Units{Notation: "s", NotationPosition: progress.UnitsNotationPositionAfter},
	}
	pw.AppendTracker(tracker)
	go pw.Render()

	handle.AddListener(func(p encoding.Progress) {
		tracker.SetValue(p.Seconds())
	})

	return func(failed bool) {
		if failed {
			tracker.MarkAsErrored()
		} else {
			tracker.MarkAsDone()
		}
		pw.Stop()
		for pw.IsRenderInProgress() {
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// attachProgressLog emits throttled structured progress for non-interactive
// runs.
func attachProgressLog(handle *encoding.Handle, logger *slog.Logger, job media.Job) {
	var lastLog time.Time
	handle.AddListener(func(p encoding.Progress) {
		if time.Since(lastLog) < 2*time.Second {
			return
		}
		lastLog = time.Now()
		args := []any{
			logging.String(logging.FieldJobID, job.ID.String()),
			logging.Int64("out_time_s", p.Seconds()),
			logging.String("size", humanize.Bytes(uint64(p.OutputSize))),
			logging.Float64("speed", p.Speed),
		}
		if p.Frame != nil {
			args = append(args, logging.Int64("frame", *p.Frame))
		}
		logger.Info("transcode progress", args...)
	})
}
