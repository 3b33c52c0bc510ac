package booking

import (
	"time"

	"github.com/bookwise/service-availability/internal/pkg/apperrors"
	"github.com/google/uuid"
)

// Booking is a time-bound reservation attached to one bookable entity.
// Records are immutable inputs to the query engine: the engine classifies
// and filters them, it never mutates them. The upstream booking service
// owns creation and cancellation; this service only mirrors the outcome.
type Booking struct {
	id         uuid.UUID
	ownerRef   uuid.UUID
	startsAt   *time.Time
	endsAt     *time.Time
	canceledAt *time.Time

	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a booking record for the read model. A nil startsAt or
// endsAt means the corresponding bound is open-ended. Bound ordering is the
// caller's responsibility and is not validated here.
func NewBooking(id, ownerRef uuid.UUID, startsAt, endsAt *time.Time) (*Booking, error) {
	if id == uuid.Nil {
		return nil, apperrors.NewValidationError("booking ID is required")
	}
	if ownerRef == uuid.Nil {
		return nil, apperrors.NewValidationError("owner reference is required")
	}

	now := time.Now().UTC()
	return &Booking{
		id:        id,
		ownerRef:  ownerRef,
		startsAt:  normalizeUTC(startsAt),
		endsAt:    normalizeUTC(endsAt),
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	ownerRef uuid.UUID,
	startsAt *time.Time,
	endsAt *time.Time,
	canceledAt *time.Time,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:         id,
		ownerRef:   ownerRef,
		startsAt:   startsAt,
		endsAt:     endsAt,
		canceledAt: canceledAt,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// OwnerRef returns the bookable entity this booking belongs to.
func (b *Booking) OwnerRef() uuid.UUID { return b.ownerRef }

// StartsAt returns the scheduled start, or nil if open-ended.
func (b *Booking) StartsAt() *time.Time { return b.startsAt }

// EndsAt returns the scheduled end, or nil if open-ended.
func (b *Booking) EndsAt() *time.Time { return b.endsAt }

// CanceledAt returns the cancellation time, or nil if the booking stands.
func (b *Booking) CanceledAt() *time.Time { return b.canceledAt }

// CreatedAt returns the creation timestamp of the read-model record.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp of the read-model record.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// IsCancelled reports whether the booking carries a cancellation timestamp.
// Cancelled bookings are excluded from every time-state classification and
// from overlap conflict sets.
func (b *Booking) IsCancelled() bool { return b.canceledAt != nil }

func normalizeUTC(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
