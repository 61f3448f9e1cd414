package logging

// std is the process-wide relay behind the package-level functions. It is
// the only package state; prefer passing a *Relay where the caller can.
var std = NewRelay()

// Default returns the process-wide relay.
func Default() *Relay { return std }

// Init registers sink on the process-wide relay. See Relay.Init.
func Init(sink Sink, opts ...InitOption) error {
	return std.Init(sink, opts...)
}

// Log emits on the process-wide relay. See Relay.Log.
func Log(level Level, label, msg string) {
	std.Log(level, label, msg)
}

// Errorf emits a formatted error event on the process-wide relay.
func Errorf(label, format string, args ...interface{}) { std.Errorf(label, format, args...) }

// Warnf emits a formatted warn event on the process-wide relay.
func Warnf(label, format string, args ...interface{}) { std.Warnf(label, format, args...) }

// Infof emits a formatted info event on the process-wide relay.
func Infof(label, format string, args ...interface{}) { std.Infof(label, format, args...) }

// Debugf emits a formatted debug event on the process-wide relay.
func Debugf(label, format string, args ...interface{}) { std.Debugf(label, format, args...) }

// Tracef emits a formatted trace event on the process-wide relay.
func Tracef(label, format string, args ...interface{}) { std.Tracef(label, format, args...) }

// Recover is Relay.Recover for the process-wide relay. It must be deferred
// directly: defer logging.Recover().
func Recover() {
	if v := recover(); v != nil {
		std.reportPanic(v)
		panic(v)
	}
}
