// Package uow defines the transaction boundary the application services run in.
package uow

import (
	"context"

	"github.com/estatery/service-rental/internal/domain/booking"
	"github.com/estatery/service-rental/internal/domain/payment"
	"github.com/estatery/service-rental/internal/domain/property"
	"github.com/estatery/service-rental/internal/domain/review"
)

// UnitOfWork exposes repositories bound to one transaction.
type UnitOfWork interface {
	Properties() property.PropertyRepository
	Bookings() booking.BookingRepository
	Payments() payment.PaymentRepository
	Reviews() review.ReviewRepository
}

// TxManager runs work atomically. Repositories() returns non-transactional repositories
// for plain reads.
type TxManager interface {
	Repositories() UnitOfWork

	// WithinTransaction commits when fn returns nil and rolls back otherwise. Row locks
	// taken through the unit of work are held until fn returns.
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx UnitOfWork) error) error
}
