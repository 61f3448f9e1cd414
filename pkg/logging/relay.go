// Package logging relays timestamped log events from anywhere in a process
// to a single registered Sink.
package logging

import (
	"fmt"
	"io"
	"os/exec"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jingkaihe/logbridge/internal/errx"
)

// Relay forwards events to at most one registered Sink, stamping each with
// the milliseconds elapsed since the relay was first initialized.
//
// Emitting before Init is a silent no-op. Init may be called again to swap
// the sink; the start instant is kept from the first call so elapsed times
// continue without a reset.
//
// The zero value is not usable; construct with NewRelay. A Relay is safe for
// concurrent use.
type Relay struct {
	mu   sync.RWMutex
	sink Sink

	start atomic.Pointer[time.Time]
	now   func() time.Time

	hookMu        sync.Mutex
	hookInstalled bool
	reporting     atomic.Bool
}

// NewRelay returns a relay with no sink registered.
func NewRelay() *Relay {
	return &Relay{now: time.Now}
}

// InitOption configures optional behaviour installed by Init.
type InitOption func(*initOptions)

type initOptions struct {
	panicHook bool
	monitor   *exec.Cmd
}

// WithPanicHook starts monitor as a crash monitor and hands it the
// runtime's fatal crash output, so an unrecovered panic is reported as an
// error event labelled PanicLabel even though this process cannot run any
// more code. The monitor is usually this binary re-executed in a mode that
// calls RunCrashMonitor. It is installed once per relay; a nil monitor makes
// Init fail with ErrInstallHook. See also Relay.Recover.
func WithPanicHook(monitor *exec.Cmd) InitOption {
	return func(o *initOptions) {
		o.panicHook = true
		o.monitor = monitor
	}
}

// Init records the start instant if it is not yet set and makes sink the
// active sink, closing the previous one if it implements io.Closer.
//
// The only failure is installing the optional panic hook. The sink stays
// registered in that case so the caller may continue without the hook.
func (r *Relay) Init(sink Sink, opts ...InitOption) error {
	var o initOptions
	for _, opt := range opts {
		opt(&o)
	}

	now := r.now()
	r.start.CompareAndSwap(nil, &now)

	r.mu.Lock()
	prev := r.sink
	r.sink = sink
	r.mu.Unlock()

	if c, ok := prev.(io.Closer); ok && !sameSink(prev, sink) {
		_ = c.Close()
	}

	if o.panicHook {
		if err := r.installPanicHook(o.monitor); err != nil {
			return errx.Wrap(ErrInit, err)
		}
	}
	return nil
}

// sameSink reports whether a and b hold the same comparable value, so that
// re-registering a sink does not close it. Values that cannot be compared,
// including structs holding a SinkFunc, are never considered equal.
func sameSink(a, b Sink) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !va.IsValid() || !vb.IsValid() || va.Type() != vb.Type() {
		return false
	}
	if !va.Comparable() || !vb.Comparable() {
		return false
	}
	return a == b
}

// Log forwards one event to the active sink, or does nothing if none is
// registered. The sink runs on the calling goroutine while the read lock is
// held; a panicking sink panics the caller.
func (r *Relay) Log(level Level, label, msg string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.sink == nil {
		return
	}
	r.sink.Send(NewEvent(level, label, msg, r.elapsedMillis()))
}

func (r *Relay) elapsedMillis() int64 {
	start := r.start.Load()
	if start == nil {
		return 0
	}
	ms := r.now().Sub(*start).Milliseconds()
	if ms < 0 {
		return 0
	}
	return ms
}

// Enabled reports whether a sink is registered.
func (r *Relay) Enabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sink != nil
}

// Start returns the recorded start instant, if Init has been called.
func (r *Relay) Start() (time.Time, bool) {
	start := r.start.Load()
	if start == nil {
		return time.Time{}, false
	}
	return *start, true
}

// logf formats only when a sink is listening.
func (r *Relay) logf(level Level, label, format string, args ...interface{}) {
	if !r.Enabled() {
		return
	}
	r.Log(level, label, fmt.Sprintf(format, args...))
}

// Errorf emits a formatted error event.
func (r *Relay) Errorf(label, format string, args ...interface{}) {
	r.logf(LevelError, label, format, args...)
}

// Warnf emits a formatted warn event.
func (r *Relay) Warnf(label, format string, args ...interface{}) {
	r.logf(LevelWarn, label, format, args...)
}

// Infof emits a formatted info event.
func (r *Relay) Infof(label, format string, args ...interface{}) {
	r.logf(LevelInfo, label, format, args...)
}

// Debugf emits a formatted debug event.
func (r *Relay) Debugf(label, format string, args ...interface{}) {
	r.logf(LevelDebug, label, format, args...)
}

// Tracef emits a formatted trace event.
func (r *Relay) Tracef(label, format string, args ...interface{}) {
	r.logf(LevelTrace, label, format, args...)
}
