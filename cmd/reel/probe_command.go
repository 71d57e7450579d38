package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"reel/internal/media/ffprobe"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var rawJSON bool
	var formatOnly bool
	var streamsOnly bool
	var chaptersOnly bool

	cmd := &cobra.Command{
		Use:   "probe <path>",
		Short: "Inspect media metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			opts := ffprobe.InspectAll()
			if formatOnly || streamsOnly || chaptersOnly {
				opts = ffprobe.Options{Format: formatOnly, Streams: streamsOnly, Chapters: chaptersOnly}
			}

			result, err := ffprobe.Inspect(cmd.Context(), cfg.Tools.FFprobeBinary, args[0], opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if rawJSON {
				fmt.Fprintln(out, string(result.RawJSON()))
				return nil
			}

			colorize := shouldColorize(out)
			if opts.Format {
				for _, line := range renderSectionHeader("Format", colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, renderFormatTable(result))
			}
			if opts.Streams {
				for _, line := range renderSectionHeader("Streams", colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, renderStreamsTable(result.Streams))
			}
			if opts.Chapters && len(result.Chapters) > 0 {
				for _, line := range renderSectionHeader("Chapters", colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, renderChaptersTable(result.Chapters))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&rawJSON, "json", false, "Print the raw ffprobe JSON")
	cmd.Flags().BoolVar(&formatOnly, "format", false, "Limit output to container metadata")
	cmd.Flags().BoolVar(&streamsOnly, "streams", false, "Limit output to stream metadata")
	cmd.Flags().BoolVar(&chaptersOnly, "chapters", false, "Limit output to chapter markers")

	return cmd
}

func renderFormatTable(result ffprobe.Result) string {
	format := result.Format
	rows := [][]string{
		{"File", format.Filename},
		{"Container", format.FormatName},
		{"Duration", formatSecondsValue(result.DurationSeconds())},
		{"Size", humanize.Bytes(uint64(result.SizeBytes()))},
		{"Bit rate", formatBitsPerSecond(result.BitRate())},
		{"Streams", fmt.Sprintf("%d (%d video, %d audio)", format.NBStreams, result.VideoStreamCount(), result.AudioStreamCount())},
	}
	if title := format.Tags["title"]; title != "" {
		rows = append(rows, []string{"Title", title})
	}
	return renderTable([]string{"Field", "Value"}, rows, nil)
}

func renderStreamsTable(streams []ffprobe.Stream) string {
	rows := make([][]string, 0, len(streams))
	for _, stream := range streams {
		rows = append(rows, []string{
			strconv.Itoa(stream.Index),
			stream.CodecType,
			stream.CodecName,
			streamDetails(stream),
			languageName(stream.Language()),
		})
	}
	return renderTable(
		[]string{"#", "Type", "Codec", "Details", "Language"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
	)
}

func renderChaptersTable(chapters []ffprobe.Chapter) string {
	rows := make([][]string, 0, len(chapters))
	for i, chapter := range chapters {
		title := chapter.Tags["title"]
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			chapter.StartTime,
			chapter.EndTime,
			title,
		})
	}
	return renderTable(
		[]string{"#", "Start", "End", "Title"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignLeft},
	)
}

func streamDetails(stream ffprobe.Stream) string {
	var parts []string
	switch stream.CodecType {
	case "video":
		if stream.Width > 0 && stream.Height > 0 {
			parts = append(parts, fmt.Sprintf("%dx%d", stream.Width, stream.Height))
		}
	case "audio":
		if stream.SampleRate != "" {
			parts = append(parts, stream.SampleRate+" Hz")
		}
		if stream.Channels > 0 {
			parts = append(parts, fmt.Sprintf("%d ch", stream.Channels))
		}
	}
	if stream.BitRate != "" {
		if rate, err := strconv.ParseInt(stream.BitRate, 10, 64); err == nil {
			parts = append(parts, formatBitsPerSecond(rate))
		}
	}
	return strings.Join(parts, ", ")
}

// languageName turns an ISO language tag into a display name; unrecognized
// tags pass through untouched.
func languageName(tag string) string {
	if tag == "" {
		return ""
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return tag
	}
	if name := display.English.Languages().Name(parsed); name != "" {
		return name
	}
	return tag
}

func formatSecondsValue(seconds float64) string {
	if seconds <= 0 {
		return "unknown"
	}
	return (time.Duration(seconds * float64(time.Second))).Round(time.Millisecond).String()
}

func formatBitsPerSecond(rate int64) string {
	switch {
	case rate <= 0:
		return "unknown"
	case rate >= 1000*1000:
		return fmt.Sprintf("%.1f Mbit/s", float64(rate)/(1000*1000))
	case rate >= 1000:
		return fmt.Sprintf("%.0f kbit/s", float64(rate)/1000)
	default:
		return fmt.Sprintf("%d bit/s", rate)
	}
}
