package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/estatery/service-rental/internal/platform/domain"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{name: "unique violation", err: &pgconn.PgError{Code: pgUniqueViolation}, retryable: true},
		{name: "exclusion violation", err: &pgconn.PgError{Code: pgExclusionViolation}, retryable: true},
		{name: "lock timeout", err: fmt.Errorf("query: %w", &pgconn.PgError{Code: pgLockNotAvailable}), retryable: true},
		{name: "deadlock", err: &pgconn.PgError{Code: pgDeadlockDetected}, retryable: true},
		{name: "syntax error", err: &pgconn.PgError{Code: "42601"}, retryable: false},
		{name: "plain error", err: errors.New("connection reset"), retryable: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError(tt.err, "save booking")
			assert.Error(t, got)
			assert.Equal(t, tt.retryable, domain.IsRetryable(got))
		})
	}
	assert.NoError(t, translateError(nil, "noop"))
}

func TestTranslateCommitError_KeepsDomainErrors(t *testing.T) {
	perm := domain.NewPermissionError("nope")
	assert.Same(t, perm, translateCommitError(perm))

	conflict := translateCommitError(&pgconn.PgError{Code: pgSerializationFailure})
	var ce *domain.ConflictError
	assert.ErrorAs(t, conflict, &ce)
}

func TestPageOffset(t *testing.T) {
	assert.Equal(t, 0, pageOffset(1, 20))
	assert.Equal(t, 40, pageOffset(3, 20))
	assert.Equal(t, 0, pageOffset(0, 20))
}
