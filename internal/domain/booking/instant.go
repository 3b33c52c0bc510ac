package booking

import (
	"fmt"
	"time"
)

// UnparsableInstantError reports a date/time parameter that could not be
// parsed to an instant.
type UnparsableInstantError struct {
	Value string
}

func (e *UnparsableInstantError) Error() string {
	return fmt.Sprintf("unparsable instant: %q", e.Value)
}

// instantLayouts are tried in order. Bare dates resolve to midnight UTC;
// there is no implicit local-zone conversion anywhere in the engine.
var instantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
}

// ParseInstant parses an ISO-8601 timestamp or bare date into a UTC instant.
func ParseInstant(s string) (time.Time, error) {
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &UnparsableInstantError{Value: s}
}
