package handler

import (
	"strconv"
	"time"

	"github.com/bookwise/service-availability/internal/application"
	"github.com/bookwise/service-availability/internal/pkg/auth"
	"github.com/bookwise/service-availability/internal/pkg/middleware"
	"github.com/bookwise/service-availability/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminHandler handles admin endpoints for the booking read model.
type AdminHandler struct {
	service *application.AvailabilityService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(service *application.AvailabilityService) *AdminHandler {
	return &AdminHandler{service: service}
}

// RegisterRoutes registers admin routes on the given router group.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/bookings", h.ListAllBookings)
		admin.GET("/owners/:owner_id/stats", h.OwnerStats)
	}
}

// ListAllBookings handles GET /api/v1/admin/bookings.
func (h *AdminHandler) ListAllBookings(c *gin.Context) {
	page, limit := parsePagination(c)

	items, total, err := h.service.ListAllBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, items, total, page, limit)
}

// OwnerStats handles GET /api/v1/admin/owners/:owner_id/stats.
func (h *AdminHandler) OwnerStats(c *gin.Context) {
	ownerRef, err := uuid.Parse(c.Param("owner_id"))
	if err != nil {
		response.BadRequest(c, "invalid owner ID")
		return
	}

	at, ok := parseInstantQuery(c, "at", time.Now().UTC())
	if !ok {
		return
	}

	result, err := h.service.OwnerStats(c.Request.Context(), ownerRef, at)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}
