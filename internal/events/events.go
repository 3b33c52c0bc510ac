// Package events keeps the booking read model in sync with the upstream
// booking service via Kafka.
package events

import (
	"time"

	"github.com/google/uuid"
)

// TopicBookingEvents is the topic the upstream booking service publishes to.
const TopicBookingEvents = "booking.events"

// Event types consumed from booking.events.
const (
	BookingScheduled = "booking.scheduled"
	BookingCancelled = "booking.cancelled"
)

// BookingScheduledEvent announces a new or rescheduled booking. StartsAt and
// EndsAt may be nil for open-ended bookings.
type BookingScheduledEvent struct {
	BookingID  uuid.UUID  `json:"booking_id"`
	OwnerRef   uuid.UUID  `json:"owner_ref"`
	StartsAt   *time.Time `json:"starts_at,omitempty"`
	EndsAt     *time.Time `json:"ends_at,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// BookingCancelledEvent announces that a booking was cancelled upstream.
type BookingCancelledEvent struct {
	BookingID   uuid.UUID `json:"booking_id"`
	OwnerRef    uuid.UUID `json:"owner_ref"`
	CancelledAt time.Time `json:"cancelled_at"`
	OccurredAt  time.Time `json:"occurred_at"`
}
