package logging

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/jingkaihe/logbridge/internal/errx"
)

// Event is one log occurrence handed to a Sink. It is built once per
// emission and never retained by the relay.
//
// On the wire an event is the ordered tuple
// (elapsed_millis, message, severity, label), encoded as a CBOR or JSON
// array. Field order below is that order.
type Event struct {
	_ struct{} `cbor:",toarray"`

	ElapsedMillis int64
	Message       string
	Level         Level
	Label         string
}

// NewEvent builds an event. Label and message are not validated.
func NewEvent(level Level, label, msg string, elapsedMillis int64) Event {
	return Event{
		ElapsedMillis: elapsedMillis,
		Message:       msg,
		Level:         level,
		Label:         label,
	}
}

func (e Event) String() string {
	return fmt.Sprintf("+%dms %s %s: %s", e.ElapsedMillis, e.Level, e.Label, e.Message)
}

// wireEvent shares Event's layout without its codec methods.
type wireEvent Event

// MarshalCBOR encodes the event as the array [elapsed_ms, msg, severity, label].
func (e Event) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(wireEvent(e))
}

// UnmarshalCBOR decodes the wire array, rejecting unknown severities.
func (e *Event) UnmarshalCBOR(data []byte) error {
	var w wireEvent
	if err := cbor.Unmarshal(data, &w); err != nil {
		return errx.Wrap(ErrInvalidEvent, err)
	}
	if !w.Level.Valid() {
		return errx.With(ErrInvalidEvent, fmt.Sprintf(": severity %d out of range", int(w.Level)))
	}
	*e = Event(w)
	return nil
}

// MarshalJSON encodes the event as the same 4-element array as the wire form.
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{e.ElapsedMillis, e.Message, int(e.Level), e.Label})
}

// UnmarshalJSON decodes a 4-element array, rejecting unknown severities.
func (e *Event) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return errx.Wrap(ErrInvalidEvent, err)
	}
	if len(parts) != 4 {
		return errx.With(ErrInvalidEvent, fmt.Sprintf(": expected 4 fields, got %d", len(parts)))
	}

	var (
		out  Event
		code int
	)
	for i, dst := range []interface{}{&out.ElapsedMillis, &out.Message, &code, &out.Label} {
		if err := json.Unmarshal(parts[i], dst); err != nil {
			return errx.Wrap(ErrInvalidEvent, err)
		}
	}
	level, err := LevelFromCode(code)
	if err != nil {
		return errx.Wrap(ErrInvalidEvent, err)
	}
	out.Level = level
	*e = out
	return nil
}
