package encoding

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"reel/internal/media"
	"reel/internal/services"
)

// Listener receives one progress snapshot per non-terminal event.
type Listener func(Progress)

// ListenerID identifies a registered listener for later removal.
type ListenerID int

type listenerEntry struct {
	id ListenerID
	fn Listener
}

// Handle is the caller's view of a running job. Progress listeners run on
// the goroutine that calls Wait; registration changes take effect at the
// next poll cycle, never mid-dispatch.
type Handle struct {
	job          media.Job
	args         []string
	events       chan Event
	done         chan struct{}
	cancel       atomic.Bool
	pollInterval time.Duration

	mu        sync.Mutex
	listeners []listenerEntry
	nextID    ListenerID
	last      *Progress

	resolveOnce sync.Once
	result      error
}

func newHandle(job media.Job, args []string, pollInterval time.Duration) *Handle {
	return &Handle{
		job:          job,
		args:         args,
		events:       make(chan Event, 64),
		done:         make(chan struct{}),
		pollInterval: pollInterval,
	}
}

// Job returns the job this handle supervises.
func (h *Handle) Job() media.Job {
	return h.job
}

// Args returns the full invocation handed to the external tool.
func (h *Handle) Args() []string {
	return append([]string(nil), h.args...)
}

// AddListener registers a progress callback. It starts receiving events at
// the next poll cycle.
func (h *Handle) AddListener(fn Listener) ListenerID {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := h.nextID
	h.listeners = append(h.listeners, listenerEntry{id: id, fn: fn})
	return id
}

// RemoveListener deregisters a callback. It stops being invoked from the
// next poll cycle onward.
func (h *Handle) RemoveListener(id ListenerID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, entry := range h.listeners {
		if entry.id == id {
			h.listeners = append(h.listeners[:i], h.listeners[i+1:]...)
			return
		}
	}
}

// ClearListeners removes every registered callback.
func (h *Handle) ClearListeners() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = nil
}

// Cancel requests cooperative cancellation. The supervision loop observes
// the flag at its next poll boundary and kills the external process; the job
// then completes with a canceled failure. Partially written output is not
// rolled back.
func (h *Handle) Cancel() {
	h.cancel.Store(true)
}

// Canceled reports whether cancellation has been requested.
func (h *Handle) Canceled() bool {
	return h.cancel.Load()
}

// StartTimeout cancels the job if it is still running after d. Timeout is
// sugar over Cancel, not a separate mechanism.
func (h *Handle) StartTimeout(d time.Duration) {
	go func() {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
			h.Cancel()
		case <-h.done:
		}
	}()
}

// LastProgress returns a copy of the most recent snapshot, or nil when no
// progress has been reported yet.
func (h *Handle) LastProgress() *Progress {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.last == nil {
		return nil
	}
	snapshot := h.last.clone()
	return &snapshot
}

// Done is closed once the supervision goroutine has finished.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait runs the dispatch loop on the calling goroutine until the terminal
// event arrives, invoking registered listeners for each progress snapshot in
// emission order. It returns nil on success and the classified failure
// otherwise. Canceling ctx requests job cancellation and keeps waiting for
// the terminal event, so the exactly-once completion contract holds.
func (h *Handle) Wait(ctx context.Context) error {
	timer := time.NewTimer(h.pollInterval)
	defer timer.Stop()

	ctxDone := ctx.Done()
	for {
		listeners := h.snapshotListeners()

	drain:
		for {
			select {
			case event, ok := <-h.events:
				if !ok {
					return h.resolve(&ErrorRecord{
						Kind:     services.ErrProtocol,
						ExitCode: CanceledExitCode,
						Args:     h.args,
						Cause:    errNoTerminalEvent,
					})
				}
				if event.Terminal {
					return h.resolve(event.Err)
				}
				h.storeLast(event.Snapshot)
				for _, entry := range listeners {
					invokeListener(entry.fn, *event.Snapshot)
				}
			default:
				break drain
			}
		}

		select {
		case <-ctxDone:
			h.Cancel()
			ctxDone = nil
		case <-timer.C:
			timer.Reset(h.pollInterval)
		}
	}
}

func (h *Handle) snapshotListeners() []listenerEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]listenerEntry(nil), h.listeners...)
}

func (h *Handle) storeLast(snapshot *Progress) {
	if snapshot == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	copied := snapshot.clone()
	h.last = &copied
}

func (h *Handle) resolve(err error) error {
	h.resolveOnce.Do(func() {
		h.result = err
	})
	return h.result
}

// invokeListener contains a panicking listener so it cannot stop subsequent
// listeners or the job's own completion.
func invokeListener(fn Listener, snapshot Progress) {
	defer func() {
		_ = recover()
	}()
	fn(snapshot)
}
