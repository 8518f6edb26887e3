package memory

import (
	"time"

	"github.com/estatery/service-rental/internal/domain/booking"
	"github.com/estatery/service-rental/internal/domain/payment"
	"github.com/estatery/service-rental/internal/domain/property"
	"github.com/estatery/service-rental/internal/domain/review"
)

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneProperty(p *property.Property) *property.Property {
	deposit := p.DepositMonths()
	terms := property.Terms{
		DailyPrice:    p.DailyPrice(),
		Currency:      p.Currency(),
		MinStayMonths: p.MinStayMonths(),
		CycleStartDay: p.CycleStartDay(),
		DepositMonths: &deposit,
	}
	if m := p.MonthlyPrice(); m != nil {
		v := *m
		terms.MonthlyPrice = &v
	}
	if m := p.MaxStayMonths(); m != nil {
		v := *m
		terms.MaxStayMonths = &v
	}
	return property.ReconstructProperty(p.ID(), p.OwnerID(), p.Title(), p.City(), terms,
		p.Status(), p.Version(), p.CreatedAt(), p.UpdatedAt())
}

func cloneBooking(b *booking.Booking) *booking.Booking {
	s := b.Snapshot()
	s.ConfirmedAt = copyTime(s.ConfirmedAt)
	s.ActivatedAt = copyTime(s.ActivatedAt)
	s.CancelledAt = copyTime(s.CancelledAt)
	s.CompletedAt = copyTime(s.CompletedAt)
	s.DepositPaidAt = copyTime(s.DepositPaidAt)
	s.DepositRefundedAt = copyTime(s.DepositRefundedAt)
	return booking.ReconstructBooking(s)
}

func clonePayment(p *payment.BookingPayment) *payment.BookingPayment {
	return payment.ReconstructPayment(p.ID(), p.BookingID(), p.Type(), p.MonthNumber(), p.Amount(),
		p.DueDate(), p.Status(), copyTime(p.PaidDate()), p.TransactionID(), p.CreatedAt(), p.UpdatedAt())
}

func cloneReview(r *review.PropertyReview) *review.PropertyReview {
	return review.ReconstructReview(r.ID(), r.BookingID(), r.PropertyID(), r.RenterID(), r.HostID(),
		r.Rating(), r.Comment(), r.HostResponse(), copyTime(r.HostRespondedAt()), r.CreatedAt(), r.UpdatedAt())
}
