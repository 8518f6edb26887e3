package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/estatery/service-rental/internal/application"
	"github.com/estatery/service-rental/internal/platform/auth"
	"github.com/estatery/service-rental/internal/platform/middleware"
	"github.com/estatery/service-rental/internal/platform/response"
)

// PaymentHandler lets owners settle scheduled payments received outside the gateway.
type PaymentHandler struct {
	service *application.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *application.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// RegisterRoutes registers payment routes.
func (h *PaymentHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	payments := r.Group("/api/v1/payments")
	payments.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleOwner))
	{
		payments.POST("/:id/mark-paid", h.MarkPaid)
	}
}

// MarkPaid handles POST /api/v1/payments/:id/mark-paid.
func (h *PaymentHandler) MarkPaid(c *gin.Context) {
	paymentID, ok := pathID(c, "id", "payment")
	if !ok {
		return
	}
	ownerID, ok := currentUser(c)
	if !ok {
		return
	}

	var body struct {
		TransactionID string `json:"transaction_id"`
	}
	_ = c.ShouldBindJSON(&body)

	result, err := h.service.MarkPaymentPaid(c.Request.Context(), paymentID, ownerID, body.TransactionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
