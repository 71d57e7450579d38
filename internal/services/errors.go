package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks option conflicts detected before any process is
	// spawned. Validation failures surface synchronously to the caller.
	ErrValidation = errors.New("validation error")
	// ErrSpawn marks an external tool that is missing or refused to start.
	ErrSpawn = errors.New("spawn error")
	// ErrExternalTool marks a tool that started and then exited nonzero.
	ErrExternalTool = errors.New("external tool error")
	// ErrProtocol marks a tool that ended without honoring the progress
	// protocol, or a supervision loop that faulted internally.
	ErrProtocol = errors.New("protocol violation")
	// ErrCanceled marks cooperative cancellation, including timeouts.
	ErrCanceled = errors.New("canceled")
	// ErrProbe marks an error object embedded in a metadata result.
	ErrProbe = errors.New("probe error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ExitCode maps a classified failure to the exit code the CLI process
// reports. Success maps to zero; unclassified errors map to one.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrValidation):
		return 2
	case errors.Is(err, ErrSpawn):
		return 3
	case errors.Is(err, ErrExternalTool):
		return 4
	case errors.Is(err, ErrProtocol):
		return 5
	case errors.Is(err, ErrCanceled):
		return 6
	case errors.Is(err, ErrProbe):
		return 7
	default:
		return 1
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
