// Package response renders the JSON envelope shared by all HTTP handlers.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/estatery/service-rental/internal/platform/domain"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
	Meta    *PageMeta   `json:"meta,omitempty"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

// PageMeta describes a paginated listing.
type PageMeta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// Success writes 200 with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes 201 with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// Paginated writes 200 with items and paging metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Data:    items,
		Meta:    &PageMeta{Total: total, Page: page, Limit: limit},
	})
}

// BadRequest writes 400 for malformed requests rejected before reaching a service.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Envelope{Error: &ErrorBody{Code: "bad_request", Message: message}})
}

// Unauthorized writes 401.
func Unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, Envelope{Error: &ErrorBody{Code: "unauthorized", Message: message}})
}

// Error maps a domain error onto an HTTP status.
func Error(c *gin.Context, err error) {
	status, body := Classify(err)
	c.JSON(status, Envelope{Error: &body})
}

// Classify returns the HTTP status and error body for err.
func Classify(err error) (int, ErrorBody) {
	var (
		validation *domain.ValidationError
		conflict   *domain.ConflictError
		permission *domain.PermissionError
		notFound   *domain.NotFoundError
		transition *domain.InvalidTransitionError
	)

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, ErrorBody{Code: "validation_error", Message: validation.Message}
	case errors.As(err, &conflict):
		return http.StatusConflict, ErrorBody{Code: "conflict", Message: conflict.Message, Retryable: conflict.Retryable()}
	case errors.As(err, &permission):
		return http.StatusForbidden, ErrorBody{Code: "forbidden", Message: permission.Message}
	case errors.As(err, &notFound):
		return http.StatusNotFound, ErrorBody{Code: "not_found", Message: notFound.Error()}
	case errors.As(err, &transition):
		return http.StatusUnprocessableEntity, ErrorBody{Code: "invalid_transition", Message: transition.Error()}
	default:
		return http.StatusInternalServerError, ErrorBody{Code: "internal_error", Message: "an unexpected error occurred"}
	}
}
