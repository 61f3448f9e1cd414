package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/jingkaihe/logbridge/internal/errx"
)

// LineWriter writes one event per line to an io.Writer. It implements Sink
// and is safe for concurrent use. Like StreamSink, the first write error is
// latched and later events are dropped.
type LineWriter struct {
	mu     sync.Mutex
	w      io.Writer
	encode func(io.Writer, Event) error
	err    error
}

// NewJSONLWriter writes each event as its JSON tuple,
// e.g. [50,"connected",2,"net"].
func NewJSONLWriter(w io.Writer) *LineWriter {
	enc := json.NewEncoder(w)
	return &LineWriter{
		w: w,
		encode: func(_ io.Writer, event Event) error {
			return enc.Encode(event)
		},
	}
}

// NewTextWriter writes each event in its human-readable String form.
func NewTextWriter(w io.Writer) *LineWriter {
	return &LineWriter{
		w: w,
		encode: func(w io.Writer, event Event) error {
			_, err := fmt.Fprintln(w, event.String())
			return err
		},
	}
}

// Send writes event as one line unless an earlier write failed.
func (l *LineWriter) Send(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return
	}
	if err := l.encode(l.w, event); err != nil {
		l.err = errx.Wrap(ErrWriteEvent, err)
	}
}

// Err returns the latched write error.
func (l *LineWriter) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}
