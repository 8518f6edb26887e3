package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/estatery/service-rental/internal/application"
	"github.com/estatery/service-rental/internal/platform/auth"
	"github.com/estatery/service-rental/internal/platform/middleware"
	"github.com/estatery/service-rental/internal/platform/response"
)

// ReviewHandler handles post-stay reviews.
type ReviewHandler struct {
	service *application.ReviewService
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(service *application.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// RegisterRoutes registers review routes.
func (h *ReviewHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	reviews := r.Group("/api/v1/reviews")
	reviews.Use(middleware.AuthMiddleware(jwtManager))
	{
		reviews.POST("", h.CreateReview)
		reviews.POST("/:id/respond", middleware.RequireRole(auth.RoleOwner), h.Respond)
	}
}

// CreateReview handles POST /api/v1/reviews.
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	renterID, ok := currentUser(c)
	if !ok {
		return
	}

	var req application.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateReview(c.Request.Context(), renterID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Respond handles POST /api/v1/reviews/:id/respond.
func (h *ReviewHandler) Respond(c *gin.Context) {
	reviewID, ok := pathID(c, "id", "review")
	if !ok {
		return
	}
	ownerID, ok := currentUser(c)
	if !ok {
		return
	}

	var body struct {
		Response string `json:"response" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.RespondToReview(c.Request.Context(), reviewID, ownerID, body.Response)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
