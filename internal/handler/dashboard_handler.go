package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/estatery/service-rental/internal/application"
	"github.com/estatery/service-rental/internal/platform/auth"
	"github.com/estatery/service-rental/internal/platform/middleware"
	"github.com/estatery/service-rental/internal/platform/response"
)

// DashboardHandler serves the host and tenant summaries.
type DashboardHandler struct {
	service *application.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(service *application.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// RegisterRoutes registers dashboard routes.
func (h *DashboardHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	dashboard := r.Group("/api/v1/dashboard")
	dashboard.Use(middleware.AuthMiddleware(jwtManager))
	{
		dashboard.GET("/host", middleware.RequireRole(auth.RoleOwner), h.Host)
		dashboard.GET("/tenant", h.Tenant)
	}
}

// Host handles GET /api/v1/dashboard/host.
func (h *DashboardHandler) Host(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	result, err := h.service.HostDashboard(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Tenant handles GET /api/v1/dashboard/tenant.
func (h *DashboardHandler) Tenant(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	result, err := h.service.TenantDashboard(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
