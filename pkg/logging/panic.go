package logging

import "fmt"

// PanicLabel labels the synthetic event emitted for a panic.
const PanicLabel = "panic"

// Recover reports a panic in flight as an error event and re-panics with the
// original value. It must be deferred directly:
//
//	defer relay.Recover()
func (r *Relay) Recover() {
	if v := recover(); v != nil {
		r.reportPanic(v)
		panic(v)
	}
}

// reportPanic emits one PanicLabel event. A panic raised while reporting is
// swallowed.
//
// The guard is relay-wide rather than per goroutine: while one report is in
// flight, any other report is dropped, whether it comes from the sink itself
// or from a second goroutine panicking at the same moment. Each caller still
// re-panics with its own value, so only the event is lost.
func (r *Relay) reportPanic(v interface{}) {
	if !r.reporting.CompareAndSwap(false, true) {
		return
	}
	defer r.reporting.Store(false)
	defer func() { _ = recover() }()

	r.Log(LevelError, PanicLabel, panicMessage(describePanic(v)))
}

func panicMessage(desc string) string {
	return "panic occurred: " + desc
}

func describePanic(v interface{}) string {
	switch p := v.(type) {
	case string:
		return p
	case error:
		return p.Error()
	default:
		return fmt.Sprintf("%v", p)
	}
}
