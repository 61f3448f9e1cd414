package logging

// Sink accepts events forwarded by a Relay.
//
// Send is called synchronously on the emitting goroutine, possibly from many
// goroutines at once, so implementations must be safe for concurrent use.
// Ownership of the event passes to the sink. If the sink also implements
// io.Closer it is closed when a Relay replaces it.
type Sink interface {
	Send(event Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) Send(event Event) { f(event) }
