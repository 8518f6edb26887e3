// Package memory is an in-process implementation of the unit of work, used by tests
// and local tooling. Transactions are serialized and applied to a private copy of the
// data that replaces the committed copy only when the work succeeds.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/estatery/service-rental/internal/application/uow"
	"github.com/estatery/service-rental/internal/domain/booking"
	"github.com/estatery/service-rental/internal/domain/payment"
	"github.com/estatery/service-rental/internal/domain/property"
	"github.com/estatery/service-rental/internal/domain/review"
)

type dataset struct {
	properties map[uuid.UUID]*property.Property
	bookings   map[uuid.UUID]*booking.Booking
	payments   map[uuid.UUID]*payment.BookingPayment
	reviews    map[uuid.UUID]*review.PropertyReview
}

func newDataset() *dataset {
	return &dataset{
		properties: map[uuid.UUID]*property.Property{},
		bookings:   map[uuid.UUID]*booking.Booking{},
		payments:   map[uuid.UUID]*payment.BookingPayment{},
		reviews:    map[uuid.UUID]*review.PropertyReview{},
	}
}

func (d *dataset) clone() *dataset {
	c := newDataset()
	for id, p := range d.properties {
		c.properties[id] = cloneProperty(p)
	}
	for id, b := range d.bookings {
		c.bookings[id] = cloneBooking(b)
	}
	for id, p := range d.payments {
		c.payments[id] = clonePayment(p)
	}
	for id, r := range d.reviews {
		c.reviews[id] = cloneReview(r)
	}
	return c
}

// Store holds committed data and serializes writers.
type Store struct {
	txMu   sync.Mutex
	dataMu sync.RWMutex
	data   *dataset
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{data: newDataset()}
}

// Repositories returns auto-committing repositories.
func (s *Store) Repositories() uow.UnitOfWork {
	return &unit{store: s}
}

// WithinTransaction runs fn against a private copy and publishes it if fn succeeds.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx uow.UnitOfWork) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.dataMu.RLock()
	work := s.data.clone()
	s.dataMu.RUnlock()

	if err := fn(ctx, &unit{store: s, work: work}); err != nil {
		return err
	}

	s.dataMu.Lock()
	s.data = work
	s.dataMu.Unlock()
	return nil
}

// unit is bound either to a transaction's working copy or, when work is nil, to the
// committed data with each call applied on its own.
type unit struct {
	store *Store
	work  *dataset
}

func (u *unit) Properties() property.PropertyRepository { return &propertyRepo{u: u} }
func (u *unit) Bookings() booking.BookingRepository     { return &bookingRepo{u: u} }
func (u *unit) Payments() payment.PaymentRepository     { return &paymentRepo{u: u} }
func (u *unit) Reviews() review.ReviewRepository        { return &reviewRepo{u: u} }

func (u *unit) read(fn func(d *dataset) error) error {
	if u.work != nil {
		return fn(u.work)
	}
	u.store.dataMu.RLock()
	defer u.store.dataMu.RUnlock()
	return fn(u.store.data)
}

func (u *unit) write(fn func(d *dataset) error) error {
	if u.work != nil {
		return fn(u.work)
	}
	u.store.txMu.Lock()
	defer u.store.txMu.Unlock()

	u.store.dataMu.Lock()
	defer u.store.dataMu.Unlock()
	work := u.store.data.clone()
	if err := fn(work); err != nil {
		return err
	}
	u.store.data = work
	return nil
}
