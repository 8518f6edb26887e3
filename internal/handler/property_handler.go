package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/estatery/service-rental/internal/application"
	"github.com/estatery/service-rental/internal/platform/auth"
	"github.com/estatery/service-rental/internal/platform/middleware"
	"github.com/estatery/service-rental/internal/platform/response"
)

// PropertyHandler handles listing, pricing and availability requests.
type PropertyHandler struct {
	properties *application.PropertyService
	bookings   *application.BookingService
	reviews    *application.ReviewService
}

// NewPropertyHandler creates a new PropertyHandler.
func NewPropertyHandler(properties *application.PropertyService, bookings *application.BookingService, reviews *application.ReviewService) *PropertyHandler {
	return &PropertyHandler{properties: properties, bookings: bookings, reviews: reviews}
}

// RegisterRoutes registers all property routes on the given router group.
func (h *PropertyHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	ownerOnly := middleware.RequireRole(auth.RoleOwner)

	properties := r.Group("/api/v1/properties")
	properties.Use(authMW)
	{
		properties.POST("", ownerOnly, h.CreateProperty)
		properties.GET("/mine", ownerOnly, h.ListMyProperties)
		properties.GET("/:id", h.GetProperty)
		properties.PUT("/:id", ownerOnly, h.UpdateProperty)
		properties.POST("/:id/withdraw", ownerOnly, h.WithdrawProperty)
		properties.GET("/:id/quote", h.Quote)
		properties.GET("/:id/availability", h.CheckAvailability)
		properties.GET("/:id/calendar", h.Calendar)
		properties.GET("/:id/reviews", h.ListReviews)
	}
}

// CreateProperty handles POST /api/v1/properties.
func (h *PropertyHandler) CreateProperty(c *gin.Context) {
	ownerID, ok := currentUser(c)
	if !ok {
		return
	}

	var req application.CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.properties.CreateProperty(c.Request.Context(), ownerID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListMyProperties handles GET /api/v1/properties/mine.
func (h *PropertyHandler) ListMyProperties(c *gin.Context) {
	ownerID, ok := currentUser(c)
	if !ok {
		return
	}
	page, limit := parsePagination(c)

	result, err := h.properties.ListOwnerProperties(c.Request.Context(), ownerID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetProperty handles GET /api/v1/properties/:id.
func (h *PropertyHandler) GetProperty(c *gin.Context) {
	propertyID, ok := pathID(c, "id", "property")
	if !ok {
		return
	}

	result, err := h.properties.GetProperty(c.Request.Context(), propertyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateProperty handles PUT /api/v1/properties/:id.
func (h *PropertyHandler) UpdateProperty(c *gin.Context) {
	propertyID, ok := pathID(c, "id", "property")
	if !ok {
		return
	}
	ownerID, ok := currentUser(c)
	if !ok {
		return
	}

	var req application.UpdatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.properties.UpdateProperty(c.Request.Context(), propertyID, ownerID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// WithdrawProperty handles POST /api/v1/properties/:id/withdraw.
func (h *PropertyHandler) WithdrawProperty(c *gin.Context) {
	propertyID, ok := pathID(c, "id", "property")
	if !ok {
		return
	}
	ownerID, ok := currentUser(c)
	if !ok {
		return
	}

	result, err := h.properties.WithdrawProperty(c.Request.Context(), propertyID, ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Quote handles GET /api/v1/properties/:id/quote?check_in=&check_out=.
func (h *PropertyHandler) Quote(c *gin.Context) {
	req, ok := stayFromQuery(c)
	if !ok {
		return
	}

	result, err := h.bookings.QuoteBooking(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CheckAvailability handles GET /api/v1/properties/:id/availability?check_in=&check_out=&exclude_booking=.
func (h *PropertyHandler) CheckAvailability(c *gin.Context) {
	req, ok := stayFromQuery(c)
	if !ok {
		return
	}

	var exclude *uuid.UUID
	if raw := c.Query("exclude_booking"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "invalid exclude_booking ID")
			return
		}
		exclude = &id
	}

	result, err := h.bookings.CheckAvailability(c.Request.Context(), req, exclude)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Calendar handles GET /api/v1/properties/:id/calendar?year=&month=. Defaults to the current month.
func (h *PropertyHandler) Calendar(c *gin.Context) {
	propertyID, ok := pathID(c, "id", "property")
	if !ok {
		return
	}

	now := time.Now().UTC()
	year, err := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(now.Year())))
	if err != nil {
		response.BadRequest(c, "invalid year")
		return
	}
	month, err := strconv.Atoi(c.DefaultQuery("month", strconv.Itoa(int(now.Month()))))
	if err != nil || month < 1 || month > 12 {
		response.BadRequest(c, "invalid month")
		return
	}

	result, err := h.bookings.MonthlyCalendar(c.Request.Context(), propertyID, year, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListReviews handles GET /api/v1/properties/:id/reviews.
func (h *PropertyHandler) ListReviews(c *gin.Context) {
	propertyID, ok := pathID(c, "id", "property")
	if !ok {
		return
	}
	page, limit := parsePagination(c)

	result, err := h.reviews.ListPropertyReviews(c.Request.Context(), propertyID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func stayFromQuery(c *gin.Context) (application.StayRequest, bool) {
	propertyID, ok := pathID(c, "id", "property")
	if !ok {
		return application.StayRequest{}, false
	}
	in, out := c.Query("check_in"), c.Query("check_out")
	if in == "" || out == "" {
		response.BadRequest(c, "check_in and check_out are required")
		return application.StayRequest{}, false
	}
	return application.StayRequest{PropertyID: propertyID, CheckIn: in, CheckOut: out}, true
}
