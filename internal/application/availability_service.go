package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingDomain "github.com/bookwise/service-availability/internal/domain/booking"
	"github.com/bookwise/service-availability/internal/pkg/apperrors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingDTO is the response representation of a booking record.
type BookingDTO struct {
	ID         uuid.UUID  `json:"id"`
	OwnerRef   uuid.UUID  `json:"owner_ref"`
	StartsAt   *time.Time `json:"starts_at,omitempty"`
	EndsAt     *time.Time `json:"ends_at,omitempty"`
	CanceledAt *time.Time `json:"canceled_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// AvailabilityDTO is the result of an overlap check for a candidate window.
type AvailabilityDTO struct {
	OwnerRef  uuid.UUID    `json:"owner_ref"`
	StartsAt  time.Time    `json:"starts_at"`
	EndsAt    time.Time    `json:"ends_at"`
	Available bool         `json:"available"`
	Conflicts []BookingDTO `json:"conflicts"`
}

// AvailabilityService answers time-state and conflict queries over one
// owner's bookings. It fetches a snapshot through the repository and runs
// the pure query engine on it; it never writes.
type AvailabilityService struct {
	repo   bookingDomain.BookingRepository
	logger *zap.Logger
}

// NewAvailabilityService creates a new AvailabilityService.
func NewAvailabilityService(repo bookingDomain.BookingRepository, logger *zap.Logger) *AvailabilityService {
	return &AvailabilityService{
		repo:   repo,
		logger: logger,
	}
}

// GetBooking retrieves a single booking by ID.
func (s *AvailabilityService) GetBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	b, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(b)
	return &result, nil
}

// ListBookings retrieves all bookings for one owner.
func (s *AvailabilityService) ListBookings(ctx context.Context, ownerRef uuid.UUID) ([]BookingDTO, error) {
	bookings, err := s.repo.ListByOwner(ctx, ownerRef)
	if err != nil {
		return nil, err
	}
	return toBookingDTOs(bookings), nil
}

// ListByState retrieves the owner's bookings in the given time state at the
// reference instant.
func (s *AvailabilityService) ListByState(ctx context.Context, ownerRef uuid.UUID, state bookingDomain.TimeState, at time.Time) ([]BookingDTO, error) {
	bookings, err := s.repo.ListByOwner(ctx, ownerRef)
	if err != nil {
		return nil, err
	}

	classified, err := bookingDomain.Classify(bookings, state, at)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	return toBookingDTOs(classified), nil
}

// ListWindow retrieves the owner's bookings whose chosen timestamp falls
// before, after, or between the given bounds. For between, from >= to yields
// an empty result rather than an error.
func (s *AvailabilityService) ListWindow(
	ctx context.Context,
	ownerRef uuid.UUID,
	field bookingDomain.BoundField,
	mode bookingDomain.FilterMode,
	from, to time.Time,
) ([]BookingDTO, error) {
	bookings, err := s.repo.ListByOwner(ctx, ownerRef)
	if err != nil {
		return nil, err
	}

	var matched []*bookingDomain.Booking
	switch mode {
	case bookingDomain.ModeBefore:
		matched = bookingDomain.FilterBefore(bookings, field, to)
	case bookingDomain.ModeAfter:
		matched = bookingDomain.FilterAfter(bookings, field, from)
	case bookingDomain.ModeBetween:
		matched = bookingDomain.FilterBetween(bookings, field, from, to)
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid filter mode: %s", mode))
	}
	return toBookingDTOs(matched), nil
}

// CheckAvailability resolves conflicts for a candidate window [startsAt,
// endsAt). The window is free when no non-cancelled booking overlaps it;
// boundary-touching bookings do not count. The service reports, callers
// decide.
func (s *AvailabilityService) CheckAvailability(ctx context.Context, ownerRef uuid.UUID, startsAt, endsAt time.Time) (*AvailabilityDTO, error) {
	iv, err := bookingDomain.NewInterval(startsAt, endsAt)
	if err != nil {
		if errors.Is(err, bookingDomain.ErrInvalidInterval) {
			return nil, apperrors.NewValidationError("booking end must be after start")
		}
		return nil, err
	}

	bookings, err := s.repo.ListByOwner(ctx, ownerRef)
	if err != nil {
		return nil, err
	}

	conflicts := bookingDomain.Conflicting(bookings, iv)
	if len(conflicts) > 0 {
		s.logger.Debug("candidate window conflicts with existing bookings",
			zap.String("owner_ref", ownerRef.String()),
			zap.Time("starts_at", iv.Start()),
			zap.Time("ends_at", iv.End()),
			zap.Int("conflicts", len(conflicts)),
		)
	}

	return &AvailabilityDTO{
		OwnerRef:  ownerRef,
		StartsAt:  iv.Start(),
		EndsAt:    iv.End(),
		Available: len(conflicts) == 0,
		Conflicts: toBookingDTOs(conflicts),
	}, nil
}

// FindConflicts returns the bookings conflicting with a candidate window.
func (s *AvailabilityService) FindConflicts(ctx context.Context, ownerRef uuid.UUID, startsAt, endsAt time.Time) ([]BookingDTO, error) {
	result, err := s.CheckAvailability(ctx, ownerRef, startsAt, endsAt)
	if err != nil {
		return nil, err
	}
	return result.Conflicts, nil
}

// --- Admin methods ---

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *AvailabilityService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return toBookingDTOs(bookings), total, nil
}

// OwnerStats returns per-state booking counts for one owner (admin).
func (s *AvailabilityService) OwnerStats(ctx context.Context, ownerRef uuid.UUID, at time.Time) (*bookingDomain.StateCounts, error) {
	counts, err := s.repo.CountByTimeState(ctx, ownerRef, at)
	if err != nil {
		return nil, fmt.Errorf("failed to get owner stats: %w", err)
	}
	return &counts, nil
}

// --- Helpers ---

func toBookingDTO(b *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:         b.ID(),
		OwnerRef:   b.OwnerRef(),
		StartsAt:   b.StartsAt(),
		EndsAt:     b.EndsAt(),
		CanceledAt: b.CanceledAt(),
		CreatedAt:  b.CreatedAt(),
		UpdatedAt:  b.UpdatedAt(),
	}
}

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, b := range bookings {
		dtos[i] = toBookingDTO(b)
	}
	return dtos
}
