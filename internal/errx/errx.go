// Package errx wraps sentinel errors with a cause or detail while keeping
// both reachable through errors.Is.
package errx

import "fmt"

// Wrap returns an error matching both sentinel and cause.
// A nil cause yields the sentinel unchanged.
func Wrap(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}

// With appends detail to the sentinel message. The detail is used verbatim,
// so callers include their own separator (e.g. ": bad value").
func With(sentinel error, detail string) error {
	return fmt.Errorf("%w%s", sentinel, detail)
}
