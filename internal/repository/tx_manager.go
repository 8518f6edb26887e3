package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/estatery/service-rental/internal/application/uow"
	"github.com/estatery/service-rental/internal/domain/booking"
	"github.com/estatery/service-rental/internal/domain/payment"
	"github.com/estatery/service-rental/internal/domain/property"
	"github.com/estatery/service-rental/internal/domain/review"
)

// gormUnit binds the repositories to one *gorm.DB, which is either the pool or a transaction.
type gormUnit struct {
	properties *GormPropertyRepository
	bookings   *GormBookingRepository
	payments   *GormPaymentRepository
	reviews    *GormReviewRepository
}

func newGormUnit(db *gorm.DB) *gormUnit {
	return &gormUnit{
		properties: NewGormPropertyRepository(db),
		bookings:   NewGormBookingRepository(db),
		payments:   NewGormPaymentRepository(db),
		reviews:    NewGormReviewRepository(db),
	}
}

func (u *gormUnit) Properties() property.PropertyRepository { return u.properties }
func (u *gormUnit) Bookings() booking.BookingRepository     { return u.bookings }
func (u *gormUnit) Payments() payment.PaymentRepository     { return u.payments }
func (u *gormUnit) Reviews() review.ReviewRepository        { return u.reviews }

// GormTxManager runs units of work in PostgreSQL transactions. Every transaction sets a
// lock_timeout so a caller blocked on a row lock fails fast with a retryable conflict.
type GormTxManager struct {
	db          *gorm.DB
	lockTimeout time.Duration
	pool        *gormUnit
}

// NewGormTxManager creates a new GormTxManager.
func NewGormTxManager(db *gorm.DB, lockTimeout time.Duration) *GormTxManager {
	return &GormTxManager{db: db, lockTimeout: lockTimeout, pool: newGormUnit(db)}
}

// Repositories returns repositories that run outside any transaction.
func (m *GormTxManager) Repositories() uow.UnitOfWork {
	return m.pool
}

// WithinTransaction runs fn in a transaction, committing when it returns nil.
func (m *GormTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx uow.UnitOfWork) error) error {
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if m.lockTimeout > 0 {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", m.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("failed to set lock timeout: %w", err)
			}
		}
		return fn(ctx, newGormUnit(tx))
	})
	if err == nil {
		return nil
	}
	return translateCommitError(err)
}

// translateCommitError leaves domain errors from fn untouched and maps driver errors
// raised at commit (serialization failures) to conflicts.
func translateCommitError(err error) error {
	translated := translateError(err, "commit transaction")
	if _, wrapped := translated.(interface{ Unwrap() error }); wrapped {
		return err
	}
	return translated
}
