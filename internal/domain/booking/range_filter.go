package booking

import (
	"fmt"
	"time"
)

// BoundField names the booking timestamp a range filter compares against.
type BoundField string

const (
	FieldStartsAt   BoundField = "starts_at"
	FieldEndsAt     BoundField = "ends_at"
	FieldCanceledAt BoundField = "canceled_at"
)

// IsValid returns true if the field is a recognized bound field.
func (f BoundField) IsValid() bool {
	switch f {
	case FieldStartsAt, FieldEndsAt, FieldCanceledAt:
		return true
	}
	return false
}

// ParseBoundField converts a string to a BoundField, returning an error if invalid.
func ParseBoundField(s string) (BoundField, error) {
	field := BoundField(s)
	if !field.IsValid() {
		return "", fmt.Errorf("invalid bound field: %s", s)
	}
	return field, nil
}

// FilterMode names the comparison a range filter applies.
type FilterMode string

const (
	ModeBefore  FilterMode = "before"
	ModeAfter   FilterMode = "after"
	ModeBetween FilterMode = "between"
)

// IsValid returns true if the mode is a recognized filter mode.
func (m FilterMode) IsValid() bool {
	switch m {
	case ModeBefore, ModeAfter, ModeBetween:
		return true
	}
	return false
}

// ParseFilterMode converts a string to a FilterMode, returning an error if invalid.
func ParseFilterMode(s string) (FilterMode, error) {
	mode := FilterMode(s)
	if !mode.IsValid() {
		return "", fmt.Errorf("invalid filter mode: %s", s)
	}
	return mode, nil
}

// --- Range Filter ---
//
// Range filters select bookings whose chosen timestamp falls strictly
// before, after, or between the given bounds. Filters on starts_at and
// ends_at apply only to non-cancelled bookings; filters on canceled_at
// apply only to cancelled ones, since cancellation is then the subject.
// A booking missing the chosen timestamp never matches.

// FilterBefore returns the bookings whose field value lies strictly before
// the cutoff.
func FilterBefore(bookings []*Booking, field BoundField, cutoff time.Time) []*Booking {
	return filter(bookings, func(b *Booking) bool {
		v, ok := boundValue(b, field)
		return ok && v.Before(cutoff)
	})
}

// FilterAfter returns the bookings whose field value lies strictly after
// the cutoff.
func FilterAfter(bookings []*Booking, field BoundField, cutoff time.Time) []*Booking {
	return filter(bookings, func(b *Booking) bool {
		v, ok := boundValue(b, field)
		return ok && v.After(cutoff)
	})
}

// FilterBetween returns the bookings whose field value lies strictly between
// from and to, exclusive on both ends. When from >= to the result is empty;
// an inverted window is not an error.
func FilterBetween(bookings []*Booking, field BoundField, from, to time.Time) []*Booking {
	return filter(bookings, func(b *Booking) bool {
		v, ok := boundValue(b, field)
		return ok && v.After(from) && v.Before(to)
	})
}

// boundValue resolves the filterable timestamp for a booking, applying the
// cancellation gate for the chosen field. The second return is false when
// the booking is not eligible for this field at all.
func boundValue(b *Booking, field BoundField) (time.Time, bool) {
	switch field {
	case FieldStartsAt:
		if b.IsCancelled() || b.startsAt == nil {
			return time.Time{}, false
		}
		return *b.startsAt, true
	case FieldEndsAt:
		if b.IsCancelled() || b.endsAt == nil {
			return time.Time{}, false
		}
		return *b.endsAt, true
	case FieldCanceledAt:
		if b.canceledAt == nil {
			return time.Time{}, false
		}
		return *b.canceledAt, true
	}
	return time.Time{}, false
}
