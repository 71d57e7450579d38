package config

const (
	defaultLogDir             = "~/.local/share/reel/logs"
	defaultFFmpegBinary       = "ffmpeg"
	defaultFFprobeBinary      = "ffprobe"
	defaultProgressPollMillis = 10
	defaultStderrTailLines    = 20
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

func defaultCRFEncoders() []string {
	return []string{
		"libx264",
		"libx265",
		"libvpx",
		"libvpx-vp9",
		"libaom-av1",
		"libsvtav1",
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Tools: Tools{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
		},
		Encoding: Encoding{
			CRFEncoders:        defaultCRFEncoders(),
			ProgressPollMillis: defaultProgressPollMillis,
			StderrTailLines:    defaultStderrTailLines,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
