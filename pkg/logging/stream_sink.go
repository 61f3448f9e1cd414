package logging

import (
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/fxamacker/cbor/v2"

	"github.com/jingkaihe/logbridge/internal/errx"
)

// StreamSink writes events as a stream of CBOR arrays to an io.Writer,
// typically a socket read by an external observer with Decoder.
//
// The first write error is latched: it is logged once, returned by Err, and
// every later event is dropped.
type StreamSink struct {
	mu     sync.Mutex
	w      io.Writer
	enc    *cbor.Encoder
	err    error
	logger *slog.Logger
}

// NewStreamSink wraps w. A nil logger uses slog.Default().
func NewStreamSink(w io.Writer, logger *slog.Logger) *StreamSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamSink{
		w:      w,
		enc:    cbor.NewEncoder(w),
		logger: logger,
	}
}

// Send encodes event onto the stream unless an earlier write failed.
func (s *StreamSink) Send(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return
	}
	if err := s.enc.Encode(event); err != nil {
		s.err = errx.Wrap(ErrWriteEvent, err)
		s.logger.Warn("event stream write failed; dropping further events", "error", err)
	}
}

// Err returns the latched write error, or ErrSinkClosed after Close.
func (s *StreamSink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close stops further writes and closes the writer if it is an io.Closer.
func (s *StreamSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if errors.Is(s.err, ErrSinkClosed) {
		return nil
	}
	s.err = ErrSinkClosed
	if c, ok := s.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Decoder reads events written by a StreamSink.
type Decoder struct {
	dec *cbor.Decoder
}

// NewDecoder reads a CBOR event stream from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: cbor.NewDecoder(r)}
}

// Decode returns the next event, or io.EOF at a clean end of stream.
func (d *Decoder) Decode() (Event, error) {
	var event Event
	if err := d.dec.Decode(&event); err != nil {
		if err == io.EOF {
			return Event{}, io.EOF
		}
		return Event{}, errx.Wrap(ErrDecodeEvent, err)
	}
	return event, nil
}
