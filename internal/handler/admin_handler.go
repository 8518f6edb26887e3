package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/estatery/service-rental/internal/application"
	"github.com/estatery/service-rental/internal/platform/auth"
	"github.com/estatery/service-rental/internal/platform/middleware"
	"github.com/estatery/service-rental/internal/platform/response"
)

// AdminBookingHandler handles admin HTTP requests for booking management.
type AdminBookingHandler struct {
	bookings *application.BookingService
	sweeper  *application.LifecycleSweeper
}

// NewAdminBookingHandler creates a new AdminBookingHandler.
func NewAdminBookingHandler(bookings *application.BookingService, sweeper *application.LifecycleSweeper) *AdminBookingHandler {
	return &AdminBookingHandler{bookings: bookings, sweeper: sweeper}
}

// RegisterRoutes registers admin booking routes.
func (h *AdminBookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	admin := r.Group("/api/v1/admin")
	admin.Use(authMW, adminRole)
	{
		admin.POST("/bookings/:id/activate", h.ActivateBooking)
		admin.POST("/bookings/:id/complete", h.CompleteBooking)
		admin.POST("/transitions/run", h.RunTransitions)
		admin.GET("/stats/bookings", h.BookingStats)
	}
}

// ActivateBooking handles POST /api/v1/admin/bookings/:id/activate.
func (h *AdminBookingHandler) ActivateBooking(c *gin.Context) {
	bookingID, ok := pathID(c, "id", "booking")
	if !ok {
		return
	}
	result, err := h.bookings.ActivateBooking(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CompleteBooking handles POST /api/v1/admin/bookings/:id/complete.
func (h *AdminBookingHandler) CompleteBooking(c *gin.Context) {
	bookingID, ok := pathID(c, "id", "booking")
	if !ok {
		return
	}
	result, err := h.bookings.CompleteBooking(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// RunTransitions handles POST /api/v1/admin/transitions/run.
func (h *AdminBookingHandler) RunTransitions(c *gin.Context) {
	result, err := h.sweeper.RunDailyTransitions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// BookingStats handles GET /api/v1/admin/stats/bookings.
func (h *AdminBookingHandler) BookingStats(c *gin.Context) {
	stats, err := h.bookings.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}
