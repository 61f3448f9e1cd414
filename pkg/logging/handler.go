package logging

import (
	"context"
	"log/slog"
	"strings"
)

// Handler is a slog.Handler that forwards records to a Relay, so code
// logging through slog reaches the registered sink. Attributes are appended
// to the message as key=value pairs; groups extend the label.
type Handler struct {
	relay *Relay
	label string
	attrs string
}

var _ slog.Handler = (*Handler)(nil)

// NewHandler returns a handler emitting on r under label.
func NewHandler(r *Relay, label string) *Handler {
	return &Handler{relay: r, label: label}
}

// Enabled reports whether the relay has a sink; records are dropped early
// otherwise.
func (h *Handler) Enabled(context.Context, slog.Level) bool {
	return h.relay.Enabled()
}

// Handle emits rec on the relay with its attributes folded into the message.
func (h *Handler) Handle(_ context.Context, rec slog.Record) error {
	var b strings.Builder
	b.WriteString(rec.Message)
	b.WriteString(h.attrs)
	rec.Attrs(func(a slog.Attr) bool {
		appendAttr(&b, a)
		return true
	})
	h.relay.Log(FromSlog(rec.Level), h.label, b.String())
	return nil
}

// WithAttrs returns a handler that appends attrs to every message.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	var b strings.Builder
	b.WriteString(h.attrs)
	for _, a := range attrs {
		appendAttr(&b, a)
	}
	clone := *h
	clone.attrs = b.String()
	return &clone
}

// WithGroup returns a handler whose label is extended with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	if clone.label == "" {
		clone.label = name
	} else {
		clone.label = clone.label + "." + name
	}
	return &clone
}

func appendAttr(b *strings.Builder, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	b.WriteByte(' ')
	b.WriteString(a.Key)
	b.WriteByte('=')
	b.WriteString(a.Value.String())
}
