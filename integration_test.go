//go:build integration

package main_test

import (
	"context"
	"testing"
	"time"

	bookingDomain "github.com/bookwise/service-availability/internal/domain/booking"
	"github.com/bookwise/service-availability/internal/events"
	"github.com/bookwise/service-availability/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tp(t time.Time) *time.Time {
	return &t
}

// TestEventIngestion exercises the full path from the booking topic to the
// read model: a scheduled event creates a row, a cancellation marks it,
// and out-of-order cancellations leave a tombstone the late schedule
// event cannot revive.
func TestEventIngestion(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupAvailabilityStack(t, infra.DB, infra.KafkaBrokers)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	defer func() { _ = stack.Consumer.Close() }()

	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	t.Run("scheduled event creates booking", func(t *testing.T) {
		bookingID := uuid.New()
		ownerRef := uuid.New()
		publishBookingEvent(t, infra.KafkaBrokers, events.BookingScheduled, events.BookingScheduledEvent{
			BookingID:  bookingID,
			OwnerRef:   ownerRef,
			StartsAt:   tp(day.Add(10 * time.Hour)),
			EndsAt:     tp(day.Add(11 * time.Hour)),
			OccurredAt: time.Now().UTC(),
		})

		model := waitForBooking(t, infra.DB, bookingID, func(m repository.BookingModel) bool {
			return m.StartsAt != nil
		}, 30*time.Second)
		assert.Equal(t, ownerRef, model.OwnerRef)
		assert.Nil(t, model.CanceledAt)
	})

	t.Run("cancellation marks existing booking", func(t *testing.T) {
		bookingID := uuid.New()
		ownerRef := uuid.New()
		seedBooking(t, infra.DB, bookingID, ownerRef, tp(day.Add(14*time.Hour)), tp(day.Add(15*time.Hour)), nil)

		cancelledAt := day.Add(9 * time.Hour)
		publishBookingEvent(t, infra.KafkaBrokers, events.BookingCancelled, events.BookingCancelledEvent{
			BookingID:   bookingID,
			OwnerRef:    ownerRef,
			CancelledAt: cancelledAt,
			OccurredAt:  time.Now().UTC(),
		})

		model := waitForBooking(t, infra.DB, bookingID, func(m repository.BookingModel) bool {
			return m.CanceledAt != nil
		}, 30*time.Second)
		assert.True(t, model.CanceledAt.Equal(cancelledAt))
	})

	t.Run("late schedule event cannot revive a cancellation", func(t *testing.T) {
		bookingID := uuid.New()
		ownerRef := uuid.New()
		cancelledAt := day.Add(8 * time.Hour)

		publishBookingEvent(t, infra.KafkaBrokers, events.BookingCancelled, events.BookingCancelledEvent{
			BookingID:   bookingID,
			OwnerRef:    ownerRef,
			CancelledAt: cancelledAt,
			OccurredAt:  time.Now().UTC(),
		})
		waitForBooking(t, infra.DB, bookingID, func(m repository.BookingModel) bool {
			return m.CanceledAt != nil
		}, 30*time.Second)

		publishBookingEvent(t, infra.KafkaBrokers, events.BookingScheduled, events.BookingScheduledEvent{
			BookingID:  bookingID,
			OwnerRef:   ownerRef,
			StartsAt:   tp(day.Add(10 * time.Hour)),
			EndsAt:     tp(day.Add(11 * time.Hour)),
			OccurredAt: time.Now().UTC(),
		})
		model := waitForBooking(t, infra.DB, bookingID, func(m repository.BookingModel) bool {
			return m.StartsAt != nil
		}, 30*time.Second)
		assert.NotNil(t, model.CanceledAt, "cancellation must survive the late schedule event")
	})
}

// TestAvailabilityQueries runs the query engine against a seeded read model.
func TestAvailabilityQueries(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupAvailabilityStack(t, infra.DB, infra.KafkaBrokers)
	ctx := context.Background()
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	ownerRef := uuid.New()

	pastID := uuid.New()
	currentID := uuid.New()
	futureID := uuid.New()
	cancelledID := uuid.New()
	seedBooking(t, infra.DB, pastID, ownerRef, tp(day.Add(7*time.Hour)), tp(day.Add(8*time.Hour)), nil)
	seedBooking(t, infra.DB, currentID, ownerRef, tp(day.Add(10*time.Hour)), tp(day.Add(12*time.Hour)), nil)
	seedBooking(t, infra.DB, futureID, ownerRef, tp(day.Add(15*time.Hour)), tp(day.Add(16*time.Hour)), nil)
	seedBooking(t, infra.DB, cancelledID, ownerRef, tp(day.Add(10*time.Hour)), tp(day.Add(12*time.Hour)), tp(day.Add(9*time.Hour)))

	now := day.Add(11 * time.Hour)

	t.Run("classifier partitions", func(t *testing.T) {
		for state, wantID := range map[bookingDomain.TimeState]uuid.UUID{
			bookingDomain.StatePast:      pastID,
			bookingDomain.StateCurrent:   currentID,
			bookingDomain.StateFuture:    futureID,
			bookingDomain.StateCancelled: cancelledID,
		} {
			result, err := stack.Service.ListByState(ctx, ownerRef, state, now)
			require.NoError(t, err)
			require.Len(t, result, 1, "state %s", state)
			assert.Equal(t, wantID, result[0].ID, "state %s", state)
		}
	})

	t.Run("overlap check", func(t *testing.T) {
		// Overlaps the current booking but not the cancelled twin.
		result, err := stack.Service.CheckAvailability(ctx, ownerRef, day.Add(11*time.Hour), day.Add(13*time.Hour))
		require.NoError(t, err)
		assert.False(t, result.Available)
		require.Len(t, result.Conflicts, 1)
		assert.Equal(t, currentID, result.Conflicts[0].ID)

		// Back-to-back with the current booking.
		result, err = stack.Service.CheckAvailability(ctx, ownerRef, day.Add(12*time.Hour), day.Add(13*time.Hour))
		require.NoError(t, err)
		assert.True(t, result.Available)
	})

	t.Run("state counts", func(t *testing.T) {
		counts, err := stack.Service.OwnerStats(ctx, ownerRef, now)
		require.NoError(t, err)
		assert.Equal(t, int64(4), counts.Total)
		assert.Equal(t, int64(1), counts.Past)
		assert.Equal(t, int64(1), counts.Current)
		assert.Equal(t, int64(1), counts.Future)
		assert.Equal(t, int64(1), counts.Cancelled)
	})
}
