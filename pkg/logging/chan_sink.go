package logging

import "sync"

// ChanSink delivers events to an in-process consumer over a channel.
//
// Send blocks while the buffer is full. Sending after Close panics; the
// panic reaches whoever emitted the event.
type ChanSink struct {
	ch        chan Event
	closeOnce sync.Once
}

// NewChanSink returns a sink whose channel holds up to buffer events.
func NewChanSink(buffer int) *ChanSink {
	if buffer < 0 {
		buffer = 0
	}
	return &ChanSink{ch: make(chan Event, buffer)}
}

// Send queues event, blocking while the buffer is full.
func (s *ChanSink) Send(event Event) {
	s.ch <- event
}

// Events returns the receive side. It is closed by Close.
func (s *ChanSink) Events() <-chan Event {
	return s.ch
}

// Close closes the channel. It is safe to call more than once.
func (s *ChanSink) Close() error {
	s.closeOnce.Do(func() { close(s.ch) })
	return nil
}
