package handler

import (
	"time"

	"github.com/bookwise/service-availability/internal/application"
	bookingDomain "github.com/bookwise/service-availability/internal/domain/booking"
	"github.com/bookwise/service-availability/internal/pkg/auth"
	"github.com/bookwise/service-availability/internal/pkg/middleware"
	"github.com/bookwise/service-availability/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AvailabilityHandler handles HTTP requests for booking queries.
type AvailabilityHandler struct {
	service *application.AvailabilityService
}

// NewAvailabilityHandler creates a new AvailabilityHandler.
func NewAvailabilityHandler(service *application.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

// RegisterRoutes registers all query routes on the given router group.
func (h *AvailabilityHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	owners := r.Group("/api/v1/owners")
	owners.Use(authMW)
	{
		owners.GET("/:owner_id/bookings", h.ListBookings)
		owners.GET("/:owner_id/bookings/window", h.ListWindow)
		owners.GET("/:owner_id/availability", h.CheckAvailability)
		owners.GET("/:owner_id/conflicts", h.FindConflicts)
	}

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(authMW)
	{
		bookings.GET("/:id", h.GetBooking)
	}
}

// ListBookings handles GET /api/v1/owners/:owner_id/bookings. Without a
// state parameter it returns the owner's full collection; with one it
// returns the matching classifier partition at the reference instant.
func (h *AvailabilityHandler) ListBookings(c *gin.Context) {
	ownerRef, err := uuid.Parse(c.Param("owner_id"))
	if err != nil {
		response.BadRequest(c, "invalid owner ID")
		return
	}

	stateParam := c.Query("state")
	if stateParam == "" {
		result, err := h.service.ListBookings(c.Request.Context(), ownerRef)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, result)
		return
	}

	state, err := bookingDomain.ParseTimeState(stateParam)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	at, ok := parseInstantQuery(c, "at", time.Now().UTC())
	if !ok {
		return
	}

	result, err := h.service.ListByState(c.Request.Context(), ownerRef, state, at)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListWindow handles GET /api/v1/owners/:owner_id/bookings/window. Modes
// before and after take a single "at" parameter; between takes "from" and
// "to". An inverted between window yields an empty list, not an error.
func (h *AvailabilityHandler) ListWindow(c *gin.Context) {
	ownerRef, err := uuid.Parse(c.Param("owner_id"))
	if err != nil {
		response.BadRequest(c, "invalid owner ID")
		return
	}

	field, err := bookingDomain.ParseBoundField(c.Query("field"))
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	mode, err := bookingDomain.ParseFilterMode(c.Query("mode"))
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var from, to time.Time
	switch mode {
	case bookingDomain.ModeBefore:
		cutoff, ok := requireInstantQuery(c, "at")
		if !ok {
			return
		}
		to = cutoff
	case bookingDomain.ModeAfter:
		cutoff, ok := requireInstantQuery(c, "at")
		if !ok {
			return
		}
		from = cutoff
	case bookingDomain.ModeBetween:
		var ok bool
		if from, ok = requireInstantQuery(c, "from"); !ok {
			return
		}
		if to, ok = requireInstantQuery(c, "to"); !ok {
			return
		}
	}

	result, err := h.service.ListWindow(c.Request.Context(), ownerRef, field, mode, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CheckAvailability handles GET /api/v1/owners/:owner_id/availability.
func (h *AvailabilityHandler) CheckAvailability(c *gin.Context) {
	ownerRef, startsAt, endsAt, ok := parseCandidateWindow(c)
	if !ok {
		return
	}

	result, err := h.service.CheckAvailability(c.Request.Context(), ownerRef, startsAt, endsAt)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// FindConflicts handles GET /api/v1/owners/:owner_id/conflicts.
func (h *AvailabilityHandler) FindConflicts(c *gin.Context) {
	ownerRef, startsAt, endsAt, ok := parseCandidateWindow(c)
	if !ok {
		return
	}

	result, err := h.service.FindConflicts(c.Request.Context(), ownerRef, startsAt, endsAt)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *AvailabilityHandler) GetBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// --- Helpers ---

func parseCandidateWindow(c *gin.Context) (uuid.UUID, time.Time, time.Time, bool) {
	ownerRef, err := uuid.Parse(c.Param("owner_id"))
	if err != nil {
		response.BadRequest(c, "invalid owner ID")
		return uuid.Nil, time.Time{}, time.Time{}, false
	}

	startsAt, ok := requireInstantQuery(c, "starts_at")
	if !ok {
		return uuid.Nil, time.Time{}, time.Time{}, false
	}
	endsAt, ok := requireInstantQuery(c, "ends_at")
	if !ok {
		return uuid.Nil, time.Time{}, time.Time{}, false
	}
	return ownerRef, startsAt, endsAt, true
}

// parseInstantQuery parses an optional instant parameter, writing a 400 and
// returning false when the value is present but unparsable.
func parseInstantQuery(c *gin.Context, name string, fallback time.Time) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	t, err := bookingDomain.ParseInstant(raw)
	if err != nil {
		response.BadRequest(c, err.Error())
		return time.Time{}, false
	}
	return t, true
}

// requireInstantQuery parses a mandatory instant parameter.
func requireInstantQuery(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		response.BadRequest(c, name+" is required")
		return time.Time{}, false
	}
	t, err := bookingDomain.ParseInstant(raw)
	if err != nil {
		response.BadRequest(c, err.Error())
		return time.Time{}, false
	}
	return t, true
}
