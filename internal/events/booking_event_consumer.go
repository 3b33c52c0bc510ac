package events

import (
	"context"

	bookingDomain "github.com/bookwise/service-availability/internal/domain/booking"
	"github.com/bookwise/service-availability/internal/pkg/apperrors"
	"github.com/bookwise/service-availability/internal/pkg/kafka"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// BookingEventConsumer ingests booking lifecycle events into the read model.
type BookingEventConsumer struct {
	consumer *kafka.Consumer
	repo     bookingDomain.BookingRepository
	logger   *zap.Logger
}

// NewBookingEventConsumer creates a new BookingEventConsumer.
func NewBookingEventConsumer(
	brokers []string,
	groupID string,
	repo bookingDomain.BookingRepository,
	logger *zap.Logger,
) *BookingEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, TopicBookingEvents, logger)
	return &BookingEventConsumer{
		consumer: consumer,
		repo:     repo,
		logger:   logger,
	}
}

// Start begins consuming booking events. This blocks until the context is
// cancelled.
func (c *BookingEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *BookingEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *BookingEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from booking topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case BookingScheduled:
		return c.handleScheduled(ctx, cloudEvent)
	case BookingCancelled:
		return c.handleCancelled(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled booking event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *BookingEventConsumer) handleScheduled(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt BookingScheduledEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse BookingScheduledEvent data", zap.Error(err))
		return nil // Don't retry malformed data
	}

	b, err := bookingDomain.NewBooking(evt.BookingID, evt.OwnerRef, evt.StartsAt, evt.EndsAt)
	if err != nil {
		c.logger.Error("rejecting invalid booking.scheduled event",
			zap.String("booking_id", evt.BookingID.String()),
			zap.Error(err),
		)
		return nil
	}

	if err := c.repo.Upsert(ctx, b); err != nil {
		c.logger.Error("failed to upsert booking from event",
			zap.String("booking_id", evt.BookingID.String()),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("booking recorded",
		zap.String("booking_id", evt.BookingID.String()),
		zap.String("owner_ref", evt.OwnerRef.String()),
	)
	return nil
}

func (c *BookingEventConsumer) handleCancelled(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt BookingCancelledEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse BookingCancelledEvent data", zap.Error(err))
		return nil // Don't retry malformed data
	}

	err := c.repo.MarkCancelled(ctx, evt.BookingID, evt.CancelledAt)
	if appErr, ok := apperrors.AsAppError(err); ok && appErr.Code == apperrors.CodeNotFound {
		// Cancellation arrived before its schedule event. Record a tombstone
		// so the late schedule event cannot resurrect the booking: Upsert
		// never touches canceled_at.
		c.logger.Warn("cancellation for unknown booking, recording tombstone",
			zap.String("booking_id", evt.BookingID.String()),
		)
		err = c.recordTombstone(ctx, evt)
	}
	if err != nil {
		c.logger.Error("failed to mark booking cancelled",
			zap.String("booking_id", evt.BookingID.String()),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("booking cancellation recorded",
		zap.String("booking_id", evt.BookingID.String()),
	)
	return nil
}

func (c *BookingEventConsumer) recordTombstone(ctx context.Context, evt BookingCancelledEvent) error {
	b, err := bookingDomain.NewBooking(evt.BookingID, evt.OwnerRef, nil, nil)
	if err != nil {
		c.logger.Error("rejecting invalid booking.cancelled event",
			zap.String("booking_id", evt.BookingID.String()),
			zap.Error(err),
		)
		return nil
	}
	if err := c.repo.Upsert(ctx, b); err != nil {
		return err
	}
	return c.repo.MarkCancelled(ctx, evt.BookingID, evt.CancelledAt)
}
