package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/estatery/service-rental/internal/platform/domain"
)

// PostgreSQL SQLSTATE codes that mean "another transaction got there first".
const (
	pgUniqueViolation      = "23505"
	pgExclusionViolation   = "23P01"
	pgLockNotAvailable     = "55P03"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgQueryCanceled        = "57014"
)

// translateError maps contention failures to retryable ConflictErrors and wraps the rest.
func translateError(err error, action string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgExclusionViolation:
			return domain.NewConflictError(fmt.Sprintf("%s: conflicting record already exists", action))
		case pgLockNotAvailable, pgQueryCanceled, pgSerializationFailure, pgDeadlockDetected:
			return domain.NewConflictError(fmt.Sprintf("%s: resource is busy, retry", action))
		}
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

func pageOffset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}
