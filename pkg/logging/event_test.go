package logging

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	event := NewEvent(LevelWarn, "", "", 7)

	assert.Equal(t, int64(7), event.ElapsedMillis)
	assert.Equal(t, LevelWarn, event.Level)
	assert.Empty(t, event.Label, "empty labels are legal")
	assert.Empty(t, event.Message, "empty messages are legal")
}

func TestEvent_JSONTuple(t *testing.T) {
	event := NewEvent(LevelInfo, "net", "connected", 50)

	got, err := json.Marshal(event)
	require.NoError(t, err)

	goldenPath := filepath.Join("testdata", "event_tuple.golden")
	if os.Getenv("UPDATE_GOLDEN") != "" {
		os.MkdirAll("testdata", 0755)
		os.WriteFile(goldenPath, append(got, '\n'), 0644)
		t.Skip("golden file updated")
	}

	expected, err := os.ReadFile(goldenPath)
	require.NoError(t, err, "golden file missing; run with UPDATE_GOLDEN=1 to create")

	assert.JSONEq(t, string(expected), string(got))
}

func TestEvent_JSONRoundTrip(t *testing.T) {
	in := NewEvent(LevelTrace, "db", "query took 3ms", 123456789)
	b, err := json.Marshal(in)
	require.NoError(t, err)

	var out Event
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, in, out)
}

func TestEvent_JSONRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"object":         `{"msg":"x"}`,
		"short tuple":    `[1,"x",2]`,
		"long tuple":     `[1,"x",2,"l","extra"]`,
		"bad severity":   `[1,"x",5,"l"]`,
		"string elapsed": `["1","x",2,"l"]`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			var event Event
			err := json.Unmarshal([]byte(input), &event)
			assert.ErrorIs(t, err, ErrInvalidEvent)
		})
	}
}

func TestEvent_CBORWireBytes(t *testing.T) {
	b, err := cbor.Marshal(NewEvent(LevelInfo, "net", "connected", 50))
	require.NoError(t, err)

	// array(4): uint 50, text "connected", uint 2, text "net"
	assert.Equal(t, "84183269636f6e6e656374656402636e6574", hex.EncodeToString(b))
}

func TestEvent_CBORRoundTrip(t *testing.T) {
	for l := LevelError; l <= LevelTrace; l++ {
		in := NewEvent(l, "label", "message", int64(l)*1000)
		b, err := cbor.Marshal(in)
		require.NoError(t, err)

		var out Event
		require.NoError(t, cbor.Unmarshal(b, &out))
		assert.Equal(t, in, out)
		assert.Equal(t, int(l), int(out.Level), "rank must survive the wire")
	}
}

func TestEvent_CBORRejectsMalformed(t *testing.T) {
	short, err := cbor.Marshal([]interface{}{1, "x", 2})
	require.NoError(t, err)
	var event Event
	assert.ErrorIs(t, cbor.Unmarshal(short, &event), ErrInvalidEvent)

	badLevel, err := cbor.Marshal([]interface{}{1, "x", 9, "l"})
	require.NoError(t, err)
	assert.ErrorIs(t, cbor.Unmarshal(badLevel, &event), ErrInvalidEvent)
}

func TestEvent_String(t *testing.T) {
	assert.Equal(t, "+50ms INFO net: connected", NewEvent(LevelInfo, "net", "connected", 50).String())
}
