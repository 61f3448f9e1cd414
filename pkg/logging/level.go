package logging

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jingkaihe/logbridge/internal/errx"
)

// Level ranks an event, most severe first. The numeric value is the wire
// encoding and must not be reordered.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

// SlogLevelTrace is the slog level that maps to LevelTrace when converting back.
const SlogLevelTrace = slog.LevelDebug - 4

var levelNames = [...]string{
	LevelError: "ERROR",
	LevelWarn:  "WARN",
	LevelInfo:  "INFO",
	LevelDebug: "DEBUG",
	LevelTrace: "TRACE",
}

func (l Level) String() string {
	if !l.Valid() {
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
	return levelNames[l]
}

// Valid reports whether l is one of the five defined levels.
func (l Level) Valid() bool {
	return l >= LevelError && l <= LevelTrace
}

// FromSlog converts a slog level. Every slog level maps to exactly one
// Level, and the mapping preserves ordering: anything below slog's debug
// threshold is treated as trace.
func FromSlog(l slog.Level) Level {
	switch {
	case l >= slog.LevelError:
		return LevelError
	case l >= slog.LevelWarn:
		return LevelWarn
	case l >= slog.LevelInfo:
		return LevelInfo
	case l >= slog.LevelDebug:
		return LevelDebug
	default:
		return LevelTrace
	}
}

// Slog returns the slog level corresponding to l.
func (l Level) Slog() slog.Level {
	switch l {
	case LevelError:
		return slog.LevelError
	case LevelWarn:
		return slog.LevelWarn
	case LevelInfo:
		return slog.LevelInfo
	case LevelDebug:
		return slog.LevelDebug
	default:
		return SlogLevelTrace
	}
}

// LevelFromCode decodes a wire rank (0 = error ... 4 = trace).
func LevelFromCode(code int) (Level, error) {
	l := Level(code)
	if !l.Valid() {
		return 0, errx.With(ErrInvalidLevel, fmt.Sprintf(": code %d out of range", code))
	}
	return l, nil
}

// ParseLevel converts a case-insensitive level name ("warning" is accepted
// for warn).
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return LevelError, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	case "trace":
		return LevelTrace, nil
	}
	return 0, errx.With(ErrInvalidLevel, fmt.Sprintf(": %q", s))
}
