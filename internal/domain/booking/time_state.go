package booking

import (
	"fmt"
	"time"
)

// TimeState is the classification of a booking relative to a reference instant.
type TimeState string

const (
	StatePast      TimeState = "past"
	StateFuture    TimeState = "future"
	StateCurrent   TimeState = "current"
	StateCancelled TimeState = "cancelled"
)

var knownStates = map[TimeState]struct{}{
	StatePast:      {},
	StateFuture:    {},
	StateCurrent:   {},
	StateCancelled: {},
}

// IsValid returns true if the state is a recognized time state.
func (s TimeState) IsValid() bool {
	_, exists := knownStates[s]
	return exists
}

// String returns the string representation of the state.
func (s TimeState) String() string {
	return string(s)
}

// ParseTimeState converts a string to a TimeState, returning an error if invalid.
func ParseTimeState(s string) (TimeState, error) {
	state := TimeState(s)
	if !state.IsValid() {
		return "", fmt.Errorf("invalid time state: %s", s)
	}
	return state, nil
}

// --- Classifier ---
//
// The classifier partitions one owner's bookings by time state. All
// comparisons are strict: a booking starting or ending exactly at now is
// neither past, future, nor current. Every function is a pure filter over
// the given snapshot; now is always an explicit parameter so results are
// deterministic.

// Past returns the non-cancelled bookings whose end lies strictly before now.
// Bookings with an open end never become past.
func Past(bookings []*Booking, now time.Time) []*Booking {
	return filter(bookings, func(b *Booking) bool {
		return !b.IsCancelled() && b.endsAt != nil && b.endsAt.Before(now)
	})
}

// Future returns the non-cancelled bookings whose start lies strictly after
// now. Bookings with an open start never become future.
func Future(bookings []*Booking, now time.Time) []*Booking {
	return filter(bookings, func(b *Booking) bool {
		return !b.IsCancelled() && b.startsAt != nil && b.startsAt.After(now)
	})
}

// Current returns the non-cancelled bookings that bracket now on both sides:
// startsAt < now < endsAt. Both bounds must be present.
func Current(bookings []*Booking, now time.Time) []*Booking {
	return filter(bookings, func(b *Booking) bool {
		return !b.IsCancelled() &&
			b.startsAt != nil && b.startsAt.Before(now) &&
			b.endsAt != nil && b.endsAt.After(now)
	})
}

// Cancelled returns the bookings carrying a cancellation timestamp,
// regardless of their time bounds.
func Cancelled(bookings []*Booking) []*Booking {
	return filter(bookings, func(b *Booking) bool {
		return b.IsCancelled()
	})
}

// Classify returns the subset of bookings in the given state at the
// reference instant.
func Classify(bookings []*Booking, state TimeState, now time.Time) ([]*Booking, error) {
	switch state {
	case StatePast:
		return Past(bookings, now), nil
	case StateFuture:
		return Future(bookings, now), nil
	case StateCurrent:
		return Current(bookings, now), nil
	case StateCancelled:
		return Cancelled(bookings), nil
	default:
		return nil, fmt.Errorf("invalid time state: %s", state)
	}
}

func filter(bookings []*Booking, keep func(*Booking) bool) []*Booking {
	out := make([]*Booking, 0, len(bookings))
	for _, b := range bookings {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out
}
