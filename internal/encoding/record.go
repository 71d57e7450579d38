package encoding

import (
	"fmt"
	"strings"
)

// CanceledExitCode is the sentinel exit code recorded when a run was killed
// by cooperative cancellation rather than by the tool itself.
const CanceledExitCode = -1

// ErrorRecord is the immutable failure report for one job. It retains the
// full invocation and the captured stderr tail so the tool's behavior can be
// diagnosed without re-running it.
type ErrorRecord struct {
	// Kind is one of the services sentinel errors classifying the failure.
	Kind       error
	ExitCode   int
	StderrTail string
	Args       []string
	Cause      error
}

func (e *ErrorRecord) Error() string {
	var b strings.Builder
	if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	} else {
		b.WriteString("encoding failure")
	}
	if e.ExitCode != 0 {
		fmt.Fprintf(&b, ": exit code %d", e.ExitCode)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	if tail := strings.TrimSpace(e.StderrTail); tail != "" {
		if idx := strings.LastIndexByte(tail, '\n'); idx >= 0 {
			tail = tail[idx+1:]
		}
		b.WriteString(": ")
		b.WriteString(tail)
	}
	return b.String()
}

// Unwrap exposes the classification marker and the underlying cause so
// errors.Is matching works against both.
func (e *ErrorRecord) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// Event is one message from the supervision loop to the dispatcher.
type Event struct {
	// Snapshot is the progress report for non-terminal events, or the last
	// snapshot observed before a terminal event (nil when none was seen).
	Snapshot *Progress
	// Terminal marks the final event for a job; exactly one is sent.
	Terminal bool
	// Err carries the classified failure for a failed terminal event.
	Err error
}
