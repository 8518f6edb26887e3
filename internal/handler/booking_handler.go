package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/estatery/service-rental/internal/application"
	"github.com/estatery/service-rental/internal/platform/auth"
	"github.com/estatery/service-rental/internal/platform/middleware"
	"github.com/estatery/service-rental/internal/platform/response"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	bookings *application.BookingService
	payments *application.PaymentService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookings *application.BookingService, payments *application.PaymentService) *BookingHandler {
	return &BookingHandler{bookings: bookings, payments: payments}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	ownerOnly := middleware.RequireRole(auth.RoleOwner)

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(authMW)
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.PUT("/:id", h.UpdateBooking)
		bookings.POST("/:id/confirm", ownerOnly, h.ConfirmBooking)
		bookings.POST("/:id/reject", ownerOnly, h.RejectBooking)
		bookings.POST("/:id/cancel", h.CancelBooking)
		bookings.GET("/:id/payments", h.ListPayments)
		bookings.POST("/:id/payments/regenerate", ownerOnly, h.RegenerateSchedule)
		bookings.POST("/:id/deposit/refund", ownerOnly, h.RefundDeposit)
	}
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	renterID, ok := currentUser(c)
	if !ok {
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.bookings.CreateBooking(c.Request.Context(), renterID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListBookings handles GET /api/v1/bookings. Owners see requests on their properties,
// everyone else sees their own stays.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	role, _ := middleware.GetUserRole(c)
	page, limit := parsePagination(c)

	list := h.bookings.ListRenterBookings
	if role == auth.RoleOwner || c.Query("as") == "host" {
		list = h.bookings.ListHostBookings
	}

	result, err := list(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, ok := pathID(c, "id", "booking")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	result, err := h.bookings.GetBooking(c.Request.Context(), bookingID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateBooking handles PUT /api/v1/bookings/:id.
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	bookingID, ok := pathID(c, "id", "booking")
	if !ok {
		return
	}
	renterID, ok := currentUser(c)
	if !ok {
		return
	}

	var req application.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.bookings.UpdateBooking(c.Request.Context(), bookingID, renterID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ConfirmBooking handles POST /api/v1/bookings/:id/confirm.
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	bookingID, ok := pathID(c, "id", "booking")
	if !ok {
		return
	}
	ownerID, ok := currentUser(c)
	if !ok {
		return
	}

	result, err := h.bookings.ConfirmBooking(c.Request.Context(), bookingID, ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// RejectBooking handles POST /api/v1/bookings/:id/reject.
func (h *BookingHandler) RejectBooking(c *gin.Context) {
	bookingID, ok := pathID(c, "id", "booking")
	if !ok {
		return
	}
	ownerID, ok := currentUser(c)
	if !ok {
		return
	}

	var body reasonBody
	_ = c.ShouldBindJSON(&body)

	result, err := h.bookings.RejectBooking(c.Request.Context(), bookingID, ownerID, body.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	bookingID, ok := pathID(c, "id", "booking")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var body reasonBody
	_ = c.ShouldBindJSON(&body)

	result, err := h.bookings.CancelBooking(c.Request.Context(), bookingID, userID, body.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListPayments handles GET /api/v1/bookings/:id/payments.
func (h *BookingHandler) ListPayments(c *gin.Context) {
	bookingID, ok := pathID(c, "id", "booking")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	result, err := h.payments.ListPayments(c.Request.Context(), bookingID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// RegenerateSchedule handles POST /api/v1/bookings/:id/payments/regenerate.
func (h *BookingHandler) RegenerateSchedule(c *gin.Context) {
	bookingID, ok := pathID(c, "id", "booking")
	if !ok {
		return
	}
	ownerID, ok := currentUser(c)
	if !ok {
		return
	}

	result, err := h.bookings.RegenerateSchedule(c.Request.Context(), bookingID, ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// RefundDeposit handles POST /api/v1/bookings/:id/deposit/refund.
func (h *BookingHandler) RefundDeposit(c *gin.Context) {
	bookingID, ok := pathID(c, "id", "booking")
	if !ok {
		return
	}
	ownerID, ok := currentUser(c)
	if !ok {
		return
	}

	result, err := h.payments.RefundDeposit(c.Request.Context(), bookingID, ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
