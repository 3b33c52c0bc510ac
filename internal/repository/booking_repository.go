package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingDomain "github.com/bookwise/service-availability/internal/domain/booking"
	"github.com/bookwise/service-availability/internal/pkg/apperrors"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookingModel is the GORM model for the bookings read-model table.
type BookingModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OwnerRef   uuid.UUID  `gorm:"type:uuid;index;not null"`
	StartsAt   *time.Time `gorm:"index"`
	EndsAt     *time.Time `gorm:"index"`
	CanceledAt *time.Time `gorm:""`
	CreatedAt  time.Time  `gorm:"not null"`
	UpdatedAt  time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model), nil
}

// ListByOwner retrieves the full booking collection for one bookable entity.
// Open-started bookings sort first so callers see a stable order.
func (r *GormBookingRepository) ListByOwner(ctx context.Context, ownerRef uuid.UUID) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("owner_ref = ?", ownerRef).
		Order("starts_at ASC NULLS FIRST, id ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list owner bookings: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bookings[i] = toDomainBooking(&m)
	}
	return bookings, nil
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bookings[i] = toDomainBooking(&m)
	}
	return bookings, total, nil
}

// CountByTimeState returns per-state booking counts for one owner. The WHERE
// clauses are the SQL translation of the classifier predicates: strict
// comparisons, cancelled rows excluded from the time states.
func (r *GormBookingRepository) CountByTimeState(ctx context.Context, ownerRef uuid.UUID, now time.Time) (bookingDomain.StateCounts, error) {
	var counts bookingDomain.StateCounts
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&BookingModel{}).Where("owner_ref = ?", ownerRef)
	}

	if err := base().Count(&counts.Total).Error; err != nil {
		return bookingDomain.StateCounts{}, fmt.Errorf("failed to count bookings: %w", err)
	}
	if err := base().
		Where("canceled_at IS NULL AND ends_at IS NOT NULL AND ends_at < ?", now).
		Count(&counts.Past).Error; err != nil {
		return bookingDomain.StateCounts{}, fmt.Errorf("failed to count past bookings: %w", err)
	}
	if err := base().
		Where("canceled_at IS NULL AND starts_at IS NOT NULL AND starts_at > ?", now).
		Count(&counts.Future).Error; err != nil {
		return bookingDomain.StateCounts{}, fmt.Errorf("failed to count future bookings: %w", err)
	}
	if err := base().
		Where("canceled_at IS NULL AND starts_at < ? AND ends_at > ?", now, now).
		Count(&counts.Current).Error; err != nil {
		return bookingDomain.StateCounts{}, fmt.Errorf("failed to count current bookings: %w", err)
	}
	if err := base().
		Where("canceled_at IS NOT NULL").
		Count(&counts.Cancelled).Error; err != nil {
		return bookingDomain.StateCounts{}, fmt.Errorf("failed to count cancelled bookings: %w", err)
	}

	return counts, nil
}

// Upsert inserts a booking record or refreshes its time bounds. The
// cancellation column is deliberately left out of the update set: a replayed
// schedule event must not resurrect a cancelled booking.
func (r *GormBookingRepository) Upsert(ctx context.Context, b *bookingDomain.Booking) error {
	model := toBookingModel(b)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"owner_ref", "starts_at", "ends_at", "updated_at"}),
		}).
		Create(model).Error; err != nil {
		return fmt.Errorf("failed to upsert booking: %w", err)
	}
	return nil
}

// MarkCancelled stamps a booking with its cancellation time. A booking that
// is already cancelled keeps its original timestamp.
func (r *GormBookingRepository) MarkCancelled(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND canceled_at IS NULL", id).
		Updates(map[string]interface{}{
			"canceled_at": at.UTC(),
			"updated_at":  time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark booking cancelled: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// Either the booking does not exist or it was already cancelled.
	var count int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check booking existence: %w", err)
	}
	if count == 0 {
		return apperrors.NewNotFoundError("Booking", id.String())
	}
	return nil
}

// --- Conversion Helpers ---

func toBookingModel(b *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:         b.ID(),
		OwnerRef:   b.OwnerRef(),
		StartsAt:   b.StartsAt(),
		EndsAt:     b.EndsAt(),
		CanceledAt: b.CanceledAt(),
		CreatedAt:  b.CreatedAt(),
		UpdatedAt:  b.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) *bookingDomain.Booking {
	return bookingDomain.ReconstructBooking(
		m.ID,
		m.OwnerRef,
		m.StartsAt,
		m.EndsAt,
		m.CanceledAt,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
