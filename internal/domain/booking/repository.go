package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StateCounts is a per-owner breakdown of bookings by time state at a
// reference instant.
type StateCounts struct {
	Total     int64 `json:"total"`
	Past      int64 `json:"past"`
	Future    int64 `json:"future"`
	Current   int64 `json:"current"`
	Cancelled int64 `json:"cancelled"`
}

// BookingRepository defines the persistence contract for the booking read
// model. ListByOwner is the accessor the query engine runs on. Upsert and
// MarkCancelled exist solely for event ingestion; nothing in the query path
// writes.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// ListByOwner retrieves the full booking collection for one bookable
	// entity, ordered by start time.
	ListByOwner(ctx context.Context, ownerRef uuid.UUID) ([]*Booking, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByTimeState returns per-state booking counts for one owner at the
	// reference instant, using the same predicates as the classifier.
	CountByTimeState(ctx context.Context, ownerRef uuid.UUID, now time.Time) (StateCounts, error)

	// Upsert inserts a booking record or refreshes its time bounds.
	Upsert(ctx context.Context, b *Booking) error

	// MarkCancelled stamps a booking with its cancellation time. Marking an
	// already-cancelled booking keeps the original timestamp.
	MarkCancelled(ctx context.Context, id uuid.UUID, at time.Time) error
}
