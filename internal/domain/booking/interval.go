package booking

import (
	"errors"
	"time"
)

// ErrInvalidInterval is returned when a candidate interval does not satisfy
// start < end. An inverted interval would produce meaningless conflict
// results, so the resolver rejects it up front.
var ErrInvalidInterval = errors.New("interval start must be before interval end")

// Interval is a half-open candidate window [Start, End) checked against an
// owner's existing bookings.
type Interval struct {
	start time.Time
	end   time.Time
}

// NewInterval builds a candidate interval, returning ErrInvalidInterval
// unless start < end.
func NewInterval(start, end time.Time) (Interval, error) {
	if !start.Before(end) {
		return Interval{}, ErrInvalidInterval
	}
	return Interval{start: start.UTC(), end: end.UTC()}, nil
}

// Start returns the inclusive start of the candidate window.
func (iv Interval) Start() time.Time { return iv.start }

// End returns the exclusive end of the candidate window.
func (iv Interval) End() time.Time { return iv.end }

// ConflictsWith reports whether an existing booking temporally overlaps the
// candidate window. Three cases, any of which is a conflict:
//
//  1. the booking starts inside the window: start in [Start, End)
//  2. the booking ends inside the window: end in (Start, End]
//  3. the booking strictly contains the window: start < Start and end > End
//
// The open edges make boundary touches legal: a booking ending exactly at
// Start, or starting exactly at End, is back-to-back, not a conflict.
// Cancelled bookings never conflict. A booking missing one bound can still
// match through the bound it has; case 3 needs both.
func (iv Interval) ConflictsWith(b *Booking) bool {
	if b.IsCancelled() {
		return false
	}

	if s := b.StartsAt(); s != nil {
		if !s.Before(iv.start) && s.Before(iv.end) {
			return true
		}
	}
	if e := b.EndsAt(); e != nil {
		if e.After(iv.start) && !e.After(iv.end) {
			return true
		}
	}
	if s, e := b.StartsAt(), b.EndsAt(); s != nil && e != nil {
		if s.Before(iv.start) && e.After(iv.end) {
			return true
		}
	}
	return false
}

// Conflicting returns every booking in the snapshot that conflicts with the
// candidate window. An empty result means the window is free to book; the
// accept/reject decision stays with the caller.
func Conflicting(bookings []*Booking, iv Interval) []*Booking {
	return filter(bookings, iv.ConflictsWith)
}
