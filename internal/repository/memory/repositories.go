package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/estatery/service-rental/internal/domain/booking"
	"github.com/estatery/service-rental/internal/domain/payment"
	"github.com/estatery/service-rental/internal/domain/property"
	"github.com/estatery/service-rental/internal/domain/review"
	"github.com/estatery/service-rental/internal/platform/domain"
)

func paginate[T any](items []T, page, limit int) []T {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		return items
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func hasStatus(statuses []booking.BookingStatus, s booking.BookingStatus) bool {
	for _, st := range statuses {
		if st == s {
			return true
		}
	}
	return false
}

// --- Properties ---

type propertyRepo struct{ u *unit }

func (r *propertyRepo) FindByID(_ context.Context, id uuid.UUID) (*property.Property, error) {
	var out *property.Property
	err := r.u.read(func(d *dataset) error {
		p, ok := d.properties[id]
		if !ok {
			return domain.NewNotFoundError("Property", id.String())
		}
		out = cloneProperty(p)
		return nil
	})
	return out, err
}

// LockByID is FindByID: transactions are already serialized.
func (r *propertyRepo) LockByID(ctx context.Context, id uuid.UUID) (*property.Property, error) {
	return r.FindByID(ctx, id)
}

func (r *propertyRepo) FindByOwnerID(_ context.Context, ownerID uuid.UUID, page, limit int) ([]*property.Property, int64, error) {
	var (
		out   []*property.Property
		total int64
	)
	err := r.u.read(func(d *dataset) error {
		var all []*property.Property
		for _, p := range d.properties {
			if p.OwnerID() == ownerID {
				all = append(all, p)
			}
		}
		sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt().After(all[j].CreatedAt()) })
		total = int64(len(all))
		for _, p := range paginate(all, page, limit) {
			out = append(out, cloneProperty(p))
		}
		return nil
	})
	return out, total, err
}

func (r *propertyRepo) ListIDsByOwner(_ context.Context, ownerID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.u.read(func(d *dataset) error {
		for id, p := range d.properties {
			if p.OwnerID() == ownerID {
				ids = append(ids, id)
			}
		}
		return nil
	})
	return ids, err
}

func (r *propertyRepo) Save(_ context.Context, p *property.Property) error {
	return r.u.write(func(d *dataset) error {
		if _, exists := d.properties[p.ID()]; exists {
			return domain.NewConflictError("property already exists")
		}
		d.properties[p.ID()] = cloneProperty(p)
		return nil
	})
}

func (r *propertyRepo) Update(_ context.Context, p *property.Property) error {
	return r.u.write(func(d *dataset) error {
		current, ok := d.properties[p.ID()]
		if !ok || current.Version() != p.Version()-1 {
			return domain.NewConflictError("property was modified by another transaction")
		}
		d.properties[p.ID()] = cloneProperty(p)
		return nil
	})
}

// --- Bookings ---

type bookingRepo struct{ u *unit }

func (r *bookingRepo) FindByID(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	var out *booking.Booking
	err := r.u.read(func(d *dataset) error {
		b, ok := d.bookings[id]
		if !ok {
			return domain.NewNotFoundError("Booking", id.String())
		}
		out = cloneBooking(b)
		return nil
	})
	return out, err
}

func (r *bookingRepo) LockByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	return r.FindByID(ctx, id)
}

func (r *bookingRepo) filter(keep func(b *booking.Booking) bool) ([]*booking.Booking, error) {
	var out []*booking.Booking
	err := r.u.read(func(d *dataset) error {
		for _, b := range d.bookings {
			if keep(b) {
				out = append(out, cloneBooking(b))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt().Equal(out[j].CreatedAt()) {
			return out[i].CreatedAt().After(out[j].CreatedAt())
		}
		return out[i].ID().String() < out[j].ID().String()
	})
	return out, err
}

func (r *bookingRepo) FindOverlapping(_ context.Context, propertyID uuid.UUID, checkIn, checkOut time.Time, statuses []booking.BookingStatus, exclude *uuid.UUID) ([]*booking.Booking, error) {
	return r.filter(func(b *booking.Booking) bool {
		if b.PropertyID() != propertyID || !hasStatus(statuses, b.Status()) {
			return false
		}
		if exclude != nil && b.ID() == *exclude {
			return false
		}
		return b.OverlapsWith(checkIn, checkOut)
	})
}

func (r *bookingRepo) FindByPropertyAndStatus(_ context.Context, propertyID uuid.UUID, statuses []booking.BookingStatus) ([]*booking.Booking, error) {
	return r.filter(func(b *booking.Booking) bool {
		return b.PropertyID() == propertyID && hasStatus(statuses, b.Status())
	})
}

func (r *bookingRepo) FindByRenterID(_ context.Context, renterID uuid.UUID, page, limit int) ([]*booking.Booking, int64, error) {
	all, err := r.filter(func(b *booking.Booking) bool { return b.RenterID() == renterID })
	return paginate(all, page, limit), int64(len(all)), err
}

func (r *bookingRepo) FindByHostID(_ context.Context, hostID uuid.UUID, page, limit int) ([]*booking.Booking, int64, error) {
	all, err := r.filter(func(b *booking.Booking) bool { return b.HostID() == hostID })
	return paginate(all, page, limit), int64(len(all)), err
}

func (r *bookingRepo) FindDueForActivation(_ context.Context, date time.Time) ([]*booking.Booking, error) {
	return r.filter(func(b *booking.Booking) bool {
		return b.Status() == booking.StatusConfirmed && !b.CheckIn().After(date)
	})
}

func (r *bookingRepo) FindDueForCompletion(_ context.Context, date time.Time) ([]*booking.Booking, error) {
	return r.filter(func(b *booking.Booking) bool {
		return b.Status() == booking.StatusActive && !b.CheckOut().After(date)
	})
}

func (r *bookingRepo) countBy(keep func(b *booking.Booking) bool) (map[string]int64, error) {
	all, err := r.filter(keep)
	if err != nil {
		return nil, err
	}
	counts := map[string]int64{}
	for _, b := range all {
		counts[string(b.Status())]++
	}
	return counts, nil
}

func (r *bookingRepo) CountByStatusForHost(_ context.Context, hostID uuid.UUID) (map[string]int64, error) {
	return r.countBy(func(b *booking.Booking) bool { return b.HostID() == hostID })
}

func (r *bookingRepo) CountByStatusForRenter(_ context.Context, renterID uuid.UUID) (map[string]int64, error) {
	return r.countBy(func(b *booking.Booking) bool { return b.RenterID() == renterID })
}

func (r *bookingRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	return r.countBy(func(*booking.Booking) bool { return true })
}

func (r *bookingRepo) SumRevenueForHost(_ context.Context, hostID uuid.UUID, statuses []booking.BookingStatus) (decimal.Decimal, error) {
	all, err := r.filter(func(b *booking.Booking) bool { return b.HostID() == hostID && hasStatus(statuses, b.Status()) })
	sum := decimal.Zero
	for _, b := range all {
		sum = sum.Add(b.TotalPrice())
	}
	return sum, err
}

func (r *bookingRepo) Save(_ context.Context, b *booking.Booking) error {
	return r.u.write(func(d *dataset) error {
		if _, exists := d.bookings[b.ID()]; exists {
			return domain.NewConflictError("booking already exists")
		}
		d.bookings[b.ID()] = cloneBooking(b)
		return nil
	})
}

func (r *bookingRepo) Update(_ context.Context, b *booking.Booking) error {
	return r.u.write(func(d *dataset) error {
		current, ok := d.bookings[b.ID()]
		if !ok || current.Version() != b.Version()-1 {
			return domain.NewConflictError("booking was modified by another transaction")
		}
		d.bookings[b.ID()] = cloneBooking(b)
		return nil
	})
}

// --- Payments ---

type paymentRepo struct{ u *unit }

func (r *paymentRepo) SaveAll(_ context.Context, payments []*payment.BookingPayment) error {
	return r.u.write(func(d *dataset) error {
		type key struct {
			booking uuid.UUID
			month   int
			kind    payment.Type
		}
		taken := map[key]bool{}
		for _, p := range d.payments {
			taken[key{p.BookingID(), p.MonthNumber(), p.Type()}] = true
		}
		for _, p := range payments {
			k := key{p.BookingID(), p.MonthNumber(), p.Type()}
			if taken[k] {
				return domain.NewConflictError("payment already exists for this booking month")
			}
			taken[k] = true
			d.payments[p.ID()] = clonePayment(p)
		}
		return nil
	})
}

func (r *paymentRepo) DeleteByBookingID(_ context.Context, bookingID uuid.UUID) error {
	return r.u.write(func(d *dataset) error {
		for id, p := range d.payments {
			if p.BookingID() == bookingID {
				delete(d.payments, id)
			}
		}
		return nil
	})
}

func (r *paymentRepo) FindByID(_ context.Context, id uuid.UUID) (*payment.BookingPayment, error) {
	var out *payment.BookingPayment
	err := r.u.read(func(d *dataset) error {
		p, ok := d.payments[id]
		if !ok {
			return domain.NewNotFoundError("Payment", id.String())
		}
		out = clonePayment(p)
		return nil
	})
	return out, err
}

func (r *paymentRepo) LockByID(ctx context.Context, id uuid.UUID) (*payment.BookingPayment, error) {
	return r.FindByID(ctx, id)
}

func (r *paymentRepo) filter(keep func(p *payment.BookingPayment) bool) ([]*payment.BookingPayment, error) {
	var out []*payment.BookingPayment
	err := r.u.read(func(d *dataset) error {
		for _, p := range d.payments {
			if keep(p) {
				out = append(out, clonePayment(p))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate().Equal(out[j].DueDate()) {
			return out[i].DueDate().Before(out[j].DueDate())
		}
		return out[i].MonthNumber() < out[j].MonthNumber()
	})
	return out, err
}

func (r *paymentRepo) FindByBookingID(_ context.Context, bookingID uuid.UUID) ([]*payment.BookingPayment, error) {
	return r.filter(func(p *payment.BookingPayment) bool { return p.BookingID() == bookingID })
}

func (r *paymentRepo) FindPendingDueBefore(_ context.Context, date time.Time) ([]*payment.BookingPayment, error) {
	return r.filter(func(p *payment.BookingPayment) bool {
		return p.Status() == payment.StatusPending && p.DueDate().Before(date)
	})
}

func (r *paymentRepo) Update(_ context.Context, p *payment.BookingPayment) error {
	return r.u.write(func(d *dataset) error {
		if _, ok := d.payments[p.ID()]; !ok {
			return domain.NewNotFoundError("Payment", p.ID().String())
		}
		d.payments[p.ID()] = clonePayment(p)
		return nil
	})
}

func (r *paymentRepo) sumOutstanding(party func(b *booking.Booking) bool) (decimal.Decimal, error) {
	sum := decimal.Zero
	err := r.u.read(func(d *dataset) error {
		for _, p := range d.payments {
			b, ok := d.bookings[p.BookingID()]
			if ok && party(b) && p.Status().IsOutstanding() {
				sum = sum.Add(p.Amount())
			}
		}
		return nil
	})
	return sum, err
}

func (r *paymentRepo) SumOutstandingForHost(_ context.Context, hostID uuid.UUID) (decimal.Decimal, error) {
	return r.sumOutstanding(func(b *booking.Booking) bool { return b.HostID() == hostID })
}

func (r *paymentRepo) SumOutstandingForRenter(_ context.Context, renterID uuid.UUID) (decimal.Decimal, error) {
	return r.sumOutstanding(func(b *booking.Booking) bool { return b.RenterID() == renterID })
}

// --- Reviews ---

type reviewRepo struct{ u *unit }

func (r *reviewRepo) Save(_ context.Context, rv *review.PropertyReview) error {
	return r.u.write(func(d *dataset) error {
		for _, existing := range d.reviews {
			if existing.BookingID() == rv.BookingID() {
				return domain.NewConflictError("booking has already been reviewed")
			}
		}
		d.reviews[rv.ID()] = cloneReview(rv)
		return nil
	})
}

func (r *reviewRepo) Update(_ context.Context, rv *review.PropertyReview) error {
	return r.u.write(func(d *dataset) error {
		if _, ok := d.reviews[rv.ID()]; !ok {
			return domain.NewNotFoundError("Review", rv.ID().String())
		}
		d.reviews[rv.ID()] = cloneReview(rv)
		return nil
	})
}

func (r *reviewRepo) FindByID(_ context.Context, id uuid.UUID) (*review.PropertyReview, error) {
	var out *review.PropertyReview
	err := r.u.read(func(d *dataset) error {
		rv, ok := d.reviews[id]
		if !ok {
			return domain.NewNotFoundError("Review", id.String())
		}
		out = cloneReview(rv)
		return nil
	})
	return out, err
}

func (r *reviewRepo) ExistsForBooking(_ context.Context, bookingID uuid.UUID) (bool, error) {
	found := false
	err := r.u.read(func(d *dataset) error {
		for _, rv := range d.reviews {
			if rv.BookingID() == bookingID {
				found = true
				break
			}
		}
		return nil
	})
	return found, err
}

func (r *reviewRepo) forProperty(propertyID uuid.UUID) ([]*review.PropertyReview, error) {
	var out []*review.PropertyReview
	err := r.u.read(func(d *dataset) error {
		for _, rv := range d.reviews {
			if rv.PropertyID() == propertyID {
				out = append(out, cloneReview(rv))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().After(out[j].CreatedAt()) })
	return out, err
}

func (r *reviewRepo) FindByPropertyID(_ context.Context, propertyID uuid.UUID, page, limit int) ([]*review.PropertyReview, int64, error) {
	all, err := r.forProperty(propertyID)
	return paginate(all, page, limit), int64(len(all)), err
}

func (r *reviewRepo) AverageRating(_ context.Context, propertyID uuid.UUID) (float64, int64, error) {
	all, err := r.forProperty(propertyID)
	if err != nil || len(all) == 0 {
		return 0, 0, err
	}
	sum := 0
	for _, rv := range all {
		sum += rv.Rating()
	}
	return float64(sum) / float64(len(all)), int64(len(all)), nil
}
