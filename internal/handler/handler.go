// Package handler exposes the rental services over HTTP.
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/estatery/service-rental/internal/platform/middleware"
	"github.com/estatery/service-rental/internal/platform/response"
)

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

// pathID parses the named path parameter as a uuid, writing a 400 on failure.
func pathID(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// currentUser returns the authenticated caller, writing a 401 when absent.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return uuid.Nil, false
	}
	return userID, true
}

type reasonBody struct {
	Reason string `json:"reason"`
}
