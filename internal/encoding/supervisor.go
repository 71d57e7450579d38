package encoding

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"reel/internal/config"
	"reel/internal/logging"
	"reel/internal/media"
	"reel/internal/procgroup"
	"reel/internal/services"
)

var commandContext = exec.CommandContext

var errNoTerminalEvent = errors.New("supervisor ended without a terminal event")

// Control flags injected around every compiled invocation. Callers must not
// supply these themselves.
var (
	controlHeader  = []string{"-hide_banner", "-v", "error", "-nostdin"}
	controlTrailer = []string{"-progress", "pipe:1", "-y"}
)

const (
	progressKey        = "progress"
	progressContinue   = "continue"
	progressEnd        = "end"
	defaultPollMillis  = 10
	defaultStderrLines = 20
)

// Runner launches and supervises ffmpeg runs. One supervision goroutine is
// started per job; there is no shared worker pool.
type Runner struct {
	binary       string
	crfEncoders  []string
	pollInterval time.Duration
	tailLines    int
	logger       *slog.Logger
}

// Option adjusts runner construction.
type Option func(*Runner)

// WithBinary overrides the ffmpeg executable.
func WithBinary(binary string) Option {
	return func(r *Runner) {
		if trimmed := strings.TrimSpace(binary); trimmed != "" {
			r.binary = trimmed
		}
	}
}

// WithCRFEncoders overrides the encoders that accept a -crf flag.
func WithCRFEncoders(encoders []string) Option {
	return func(r *Runner) {
		r.crfEncoders = append([]string(nil), encoders...)
	}
}

// WithPollInterval overrides how often the supervision loop checks for
// cancellation between progress lines.
func WithPollInterval(interval time.Duration) Option {
	return func(r *Runner) {
		if interval > 0 {
			r.pollInterval = interval
		}
	}
}

// WithStderrTail overrides how many trailing stderr lines failure reports
// retain.
func WithStderrTail(lines int) Option {
	return func(r *Runner) {
		if lines > 0 {
			r.tailLines = lines
		}
	}
}

// WithLogger attaches a logger to the runner.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner builds a runner with repository defaults.
func NewRunner(opts ...Option) *Runner {
	runner := &Runner{
		binary:       "ffmpeg",
		crfEncoders:  config.Default().Encoding.CRFEncoders,
		pollInterval: defaultPollMillis * time.Millisecond,
		tailLines:    defaultStderrLines,
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(runner)
	}
	runner.logger = logging.NewComponentLogger(runner.logger, "supervisor")
	return runner
}

// NewRunnerFromConfig builds a runner from loaded configuration.
func NewRunnerFromConfig(cfg *config.Config, logger *slog.Logger) *Runner {
	if cfg == nil {
		return NewRunner(WithLogger(logger))
	}
	return NewRunner(
		WithBinary(cfg.Tools.FFmpegBinary),
		WithCRFEncoders(cfg.Encoding.CRFEncoders),
		WithPollInterval(time.Duration(cfg.Encoding.ProgressPollMillis)*time.Millisecond),
		WithStderrTail(cfg.Encoding.StderrTailLines),
		WithLogger(logger),
	)
}

// Start compiles the job and begins supervising it on a fresh goroutine.
// Validation failures surface synchronously and spawn no process; every
// other failure is delivered through the handle's terminal event.
func (r *Runner) Start(ctx context.Context, job media.Job) (*Handle, error) {
	tokens, err := Compile(job, r.crfEncoders)
	if err != nil {
		return nil, err
	}

	args := make([]string, 0, len(controlHeader)+len(tokens)+len(controlTrailer))
	args = append(args, controlHeader...)
	args = append(args, tokens...)
	args = append(args, controlTrailer...)

	handle := newHandle(job, args, r.pollInterval)
	go r.supervise(ctx, handle)
	return handle, nil
}

// supervise drives one job to its terminal event. Exactly one terminal
// event is sent, even when the supervision loop itself faults.
func (r *Runner) supervise(ctx context.Context, h *Handle) {
	defer close(h.done)

	var runErr error
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				runErr = &ErrorRecord{
					Kind:     services.ErrProtocol,
					ExitCode: CanceledExitCode,
					Args:     h.args,
					Cause:    fmt.Errorf("supervision fault: %v", rec),
				}
			}
		}()
		runErr = r.run(ctx, h)
	}()

	h.events <- Event{Snapshot: h.LastProgress(), Terminal: true, Err: runErr}
	close(h.events)

	if runErr != nil {
		r.logger.Error("run failed",
			logging.String(logging.FieldJobID, h.job.ID.String()),
			logging.Error(runErr),
		)
		return
	}
	r.logger.Info("run succeeded",
		logging.String(logging.FieldJobID, h.job.ID.String()),
		logging.String("output", h.job.OutputPath),
	)
}

func (r *Runner) run(ctx context.Context, h *Handle) error {
	lock := flock.New(h.job.OutputPath + ".lock")
	locked, lockErr := lock.TryLock()
	if lockErr != nil {
		return &ErrorRecord{Kind: services.ErrSpawn, Args: h.args, Cause: lockErr}
	}
	if !locked {
		return &ErrorRecord{
			Kind:  services.ErrSpawn,
			Args:  h.args,
			Cause: fmt.Errorf("output path %s is locked by another job", h.job.OutputPath),
		}
	}
	defer func() {
		_ = lock.Unlock()
	}()

	cmd := commandContext(ctx, r.binary, h.args...)
	procgroup.Isolate(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &ErrorRecord{Kind: services.ErrSpawn, Args: h.args, Cause: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return &ErrorRecord{Kind: services.ErrSpawn, Args: h.args, Cause: err}
	}

	if err := cmd.Start(); err != nil {
		return &ErrorRecord{Kind: services.ErrSpawn, Args: h.args, Cause: err}
	}
	r.logger.Debug("process started",
		logging.String(logging.FieldJobID, h.job.ID.String()),
		logging.Int("pid", cmd.Process.Pid),
	)

	tail := newTailBuffer(r.tailLines)
	var tailWG sync.WaitGroup
	tailWG.Add(1)
	go func() {
		defer tailWG.Done()
		tail.consume(stderr)
	}()

	lines := make(chan string, 64)
	go feedLines(stdout, lines)

	acc := &Progress{}
	sawEnd := false
	timer := time.NewTimer(r.pollInterval)
	defer timer.Stop()

readLoop:
	for {
		if h.cancel.Load() {
			r.logger.Warn("cancellation requested, killing process",
				logging.String(logging.FieldJobID, h.job.ID.String()),
			)
			_ = procgroup.Kill(cmd)
			for range lines {
				// discard output written before the kill landed
			}
			tailWG.Wait()
			_ = cmd.Wait()
			return &ErrorRecord{Kind: services.ErrCanceled, ExitCode: CanceledExitCode, Args: h.args}
		}

		select {
		case line, ok := <-lines:
			if !ok {
				break readLoop
			}
			key, value, found := strings.Cut(line, "=")
			if !found {
				continue
			}
			if key != progressKey {
				acc.apply(key, value)
				continue
			}
			h.storeLast(acc)
			if strings.TrimSpace(value) == progressEnd {
				sawEnd = true
				for range lines {
					// drain until the process closes its pipe
				}
				break readLoop
			}
			snapshot := *acc
			h.events <- Event{Snapshot: &snapshot}
			acc = &Progress{}
		case <-timer.C:
			timer.Reset(r.pollInterval)
		}
	}

	tailWG.Wait()
	waitErr := cmd.Wait()
	exitCode := 0
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}

	if sawEnd && waitErr == nil {
		return nil
	}
	if exitCode > 0 {
		return &ErrorRecord{
			Kind:       services.ErrExternalTool,
			ExitCode:   exitCode,
			StderrTail: tail.String(),
			Args:       h.args,
		}
	}
	return &ErrorRecord{
		Kind:       services.ErrProtocol,
		ExitCode:   exitCode,
		StderrTail: tail.String(),
		Args:       h.args,
		Cause:      errors.New("process ended without progress end marker"),
	}
}

func feedLines(r io.Reader, out chan<- string) {
	defer close(out)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		out <- scanner.Text()
	}
}

// tailBuffer retains the last N lines written to it.
type tailBuffer struct {
	mu    sync.Mutex
	lines []string
	max   int
}

func newTailBuffer(max int) *tailBuffer {
	if max <= 0 {
		max = defaultStderrLines
	}
	return &tailBuffer{max: max}
}

func (t *tailBuffer) consume(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		t.mu.Lock()
		t.lines = append(t.lines, scanner.Text())
		if len(t.lines) > t.max {
			t.lines = t.lines[len(t.lines)-t.max:]
		}
		t.mu.Unlock()
	}
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.Join(t.lines, "\n")
}
