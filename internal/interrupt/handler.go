// Package interrupt turns Ctrl+C into a two-step stop for long runs:
// the first press asks the work to wind down and keep what it has, a
// second press within the window aborts it.
package interrupt

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// Behavior is the outcome of an interrupted run.
type Behavior int

const (
	// Continue means keep the partial output.
	Continue Behavior = iota
	// Abort means discard the partial output.
	Abort
)

// String returns the string representation of the Behavior.
func (b Behavior) String() string {
	switch b {
	case Continue:
		return "Continue"
	case Abort:
		return "Abort"
	default:
		return fmt.Sprintf("Behavior(%d)", b)
	}
}

// ExitInterrupt is the exit code for interrupt (130 = 128 + SIGINT).
const ExitInterrupt = 130

// interruptWindow is the time window for a second Ctrl+C to trigger abort.
const interruptWindow = 2 * time.Second

// pollInterval is how often WaitForDecision checks for abort status.
const pollInterval = 100 * time.Millisecond

const (
	stopMessage  = "\nStopping after the current line. Press Ctrl+C again to abort."
	abortMessage = "\nAborted."
)

// Handler watches for SIGINT/SIGTERM.
// The first signal closes Stopping. A second signal within the window
// cancels the handler's context. A second signal after the window counts
// as a new first press and reopens the window.
type Handler struct {
	mu             sync.Mutex
	firstInterrupt time.Time
	interrupted    bool
	aborted        bool
	stopped        bool
	stopping       chan struct{}
	cancelFunc     context.CancelFunc
	done           chan struct{} // Signals listen goroutine to exit

	// Injected dependencies (for testing)
	nowFunc func() time.Time
	stderr  io.Writer
}

// Options holds injectable dependencies for testing.
type Options struct {
	SigCh   <-chan os.Signal
	NowFunc func() time.Time
	// Stderr is the writer for user-facing messages.
	// Must be safe for concurrent writes from multiple goroutines.
	Stderr io.Writer
}

// NewHandler creates a handler that listens for SIGINT/SIGTERM.
// The returned context is canceled on abort or when parent is done.
func NewHandler(parent context.Context) (*Handler, context.Context) {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return newHandler(parent, Options{SigCh: sigCh})
}

// NewHandlerWithOptions creates a handler with injectable dependencies.
func NewHandlerWithOptions(parent context.Context, opts Options) (*Handler, context.Context) {
	return newHandler(parent, opts)
}

func newHandler(parent context.Context, opts Options) (*Handler, context.Context) {
	ctx, cancel := context.WithCancel(parent)

	nowFunc := opts.NowFunc
	if nowFunc == nil {
		nowFunc = time.Now
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	h := &Handler{
		stopping:   make(chan struct{}),
		cancelFunc: cancel,
		done:       make(chan struct{}),
		nowFunc:    nowFunc,
		stderr:     stderr,
	}

	if opts.SigCh != nil {
		go h.listen(opts.SigCh)
	}

	return h, ctx
}

// listen handles incoming signals.
func (h *Handler) listen(sigCh <-chan os.Signal) {
	for {
		select {
		case <-h.done:
			return
		case _, ok := <-sigCh:
			if !ok {
				return
			}
			if !h.handle() {
				return
			}
		}
	}
}

// handle processes one signal and reports whether to keep listening.
func (h *Handler) handle() bool {
	h.mu.Lock()
	if h.stopped || h.aborted {
		h.mu.Unlock()
		return false
	}
	now := h.nowFunc()

	if h.interrupted && now.Sub(h.firstInterrupt) <= interruptWindow {
		h.aborted = true
		h.mu.Unlock()
		fmt.Fprintln(h.stderr, abortMessage)
		h.cancelFunc()
		return false
	}

	if !h.interrupted {
		h.interrupted = true
		close(h.stopping)
	}
	h.firstInterrupt = now
	h.mu.Unlock()
	fmt.Fprintln(h.stderr, stopMessage)
	return true
}

// Stopping is closed on the first interrupt.
func (h *Handler) Stopping() <-chan struct{} {
	return h.stopping
}

// WasInterrupted returns true if at least one interrupt was received.
func (h *Handler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interrupted
}

// Aborted returns true if a second interrupt arrived within the window.
func (h *Handler) Aborted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.aborted
}

// WaitForDecision waits out the rest of the interrupt window and returns
// the user's intent: Abort if a second Ctrl+C arrives, Continue otherwise.
// The message is shown only when there is still time to decide.
func (h *Handler) WaitForDecision(message string) Behavior {
	h.mu.Lock()
	if !h.interrupted {
		h.mu.Unlock()
		return Continue
	}
	if h.aborted {
		h.mu.Unlock()
		return Abort
	}
	firstInterrupt := h.firstInterrupt
	h.mu.Unlock()

	remaining := interruptWindow - h.nowFunc().Sub(firstInterrupt)
	if remaining <= 0 {
		return Continue
	}

	fmt.Fprintln(h.stderr, message)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	deadline := time.NewTimer(remaining)
	defer deadline.Stop()

	for {
		select {
		case <-deadline.C:
			if h.Aborted() {
				return Abort
			}
			return Continue
		case <-ticker.C:
			if h.Aborted() {
				return Abort
			}
		}
	}
}

// Stop cleans up the handler. Should be called when done.
func (h *Handler) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.stopped = true
	h.mu.Unlock()

	signal.Reset(syscall.SIGINT, syscall.SIGTERM)
	close(h.done)
}
