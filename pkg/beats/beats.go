// Package beats ships relay events to a Beats/Logstash input over the
// lumberjack v2 protocol.
package beats

import (
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	lumberjack "github.com/elastic/go-lumber/client/v2"

	"github.com/jingkaihe/logbridge/internal/errx"
	"github.com/jingkaihe/logbridge/pkg/logging"
)

// DefaultTimeout bounds each send, including waiting for the ACK.
const DefaultTimeout = 3 * time.Second

// Sink sends each event as one lumberjack document and waits for the ACK.
// The first send error is latched; later events are dropped.
type Sink struct {
	mu     sync.Mutex
	client *lumberjack.SyncClient
	err    error
	logger *slog.Logger
	now    func() time.Time
}

var _ logging.Sink = (*Sink)(nil)

// Dial connects to endpoint (host:port). A zero timeout uses DefaultTimeout;
// a nil logger uses slog.Default().
func Dial(endpoint string, timeout time.Duration, logger *slog.Logger) (*Sink, error) {
	if endpoint == "" {
		return nil, ErrNoEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := lumberjack.SyncDial(endpoint,
		lumberjack.CompressionLevel(0),
		lumberjack.Timeout(timeout),
	)
	if err != nil {
		return nil, errx.Wrap(ErrDial, err)
	}
	return &Sink{
		client: client,
		logger: logger.With("component", "beats", "endpoint", endpoint),
		now:    time.Now,
	}, nil
}

func (s *Sink) Send(event logging.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return
	}
	if _, err := s.client.Send([]interface{}{Document(event, s.now())}); err != nil {
		s.err = errx.Wrap(ErrSend, err)
		s.logger.Warn("beats send failed; dropping further events", "error", err)
	}
}

// Err returns the latched send error, or ErrSinkClosed after Close.
func (s *Sink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if errors.Is(s.err, ErrSinkClosed) {
		return nil
	}
	s.err = ErrSinkClosed
	return s.client.Close()
}

// Document renders event in the shape Beats inputs expect. The relay only
// knows elapsed time, so @timestamp is the send time.
func Document(event logging.Event, ts time.Time) map[string]interface{} {
	return map[string]interface{}{
		"@timestamp": ts.UTC(),
		"message":    event.Message,
		"label":      event.Label,
		"elapsed_ms": event.ElapsedMillis,
		"log": map[string]interface{}{
			"level": event.Level.String(),
			"rank":  int(event.Level),
		},
		"process": map[string]interface{}{
			"pid": os.Getpid(),
		},
	}
}
