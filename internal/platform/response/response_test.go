package response

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/estatery/service-rental/internal/platform/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", domain.NewValidationError("bad date"), http.StatusBadRequest, "validation_error"},
		{"conflict", fmt.Errorf("create: %w", domain.NewConflictError("taken")), http.StatusConflict, "conflict"},
		{"permission", domain.NewPermissionError("not yours"), http.StatusForbidden, "forbidden"},
		{"not found", domain.NewNotFoundError("Booking", "1"), http.StatusNotFound, "not_found"},
		{"transition", domain.NewInvalidTransitionError("completed", "active"), http.StatusUnprocessableEntity, "invalid_transition"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := Classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestClassify_ConflictIsRetryable(t *testing.T) {
	_, body := Classify(domain.NewConflictError("lock timeout"))
	assert.True(t, body.Retryable)
}
