package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTools(); err != nil {
		return err
	}
	if err := c.validateEncoding(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTools() error {
	if strings.TrimSpace(c.Tools.FFmpegBinary) == "" {
		return errors.New("tools.ffmpeg_binary must be set")
	}
	if strings.TrimSpace(c.Tools.FFprobeBinary) == "" {
		return errors.New("tools.ffprobe_binary must be set")
	}
	return nil
}

func (c *Config) validateEncoding() error {
	if err := ensurePositiveMap(map[string]int{
		"encoding.progress_poll_ms":  c.Encoding.ProgressPollMillis,
		"encoding.stderr_tail_lines": c.Encoding.StderrTailLines,
	}); err != nil {
		return err
	}
	if c.Encoding.ProgressPollMillis > 1000 {
		return errors.New("encoding.progress_poll_ms must be 1000 or less")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
