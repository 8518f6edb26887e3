package payment

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/estatery/service-rental/internal/domain/booking"
	"github.com/estatery/service-rental/internal/platform/domain"
)

// DepositDueDays is how long a renter has to pay the deposit after the schedule is generated.
const DepositDueDays = 3

// GenerateSchedule derives the payment obligations of a booking: the deposit as month 0
// and one rent installment of the agreed monthly rate per booked month, due on the
// property's cycle day. A rent due date already in the past at generation time moves one
// month forward.
func GenerateSchedule(b *booking.Booking, cycleStartDay int, now time.Time) []*BookingPayment {
	today := domain.DateOf(now)
	created := now.UTC()

	payments := make([]*BookingPayment, 0, b.MonthsBooked()+1)
	payments = append(payments, newPayment(b.ID(), TypeDeposit, 0, b.SecurityDeposit(),
		today.AddDate(0, 0, DepositDueDays), created))

	months := b.MonthsBooked()
	if months < 1 {
		return payments
	}
	rate := b.MonthlyRate()

	start := b.CheckIn()
	for m := 1; m <= months; m++ {
		due := time.Date(start.Year(), start.Month()+time.Month(m-1), cycleStartDay, 0, 0, 0, 0, time.UTC)
		if due.Before(today) {
			due = due.AddDate(0, 1, 0)
		}

		payments = append(payments, newPayment(b.ID(), TypeRent, m, rate, due, created))
	}
	return payments
}

// HasPaid reports whether any payment in the schedule has been settled or refunded.
func HasPaid(payments []*BookingPayment) bool {
	for _, p := range payments {
		if p.Status() == StatusPaid || p.Status() == StatusRefunded {
			return true
		}
	}
	return false
}

// Summary totals a booking's schedule by settlement state.
type Summary struct {
	Total       decimal.Decimal `json:"total"`
	Paid        decimal.Decimal `json:"paid"`
	Outstanding decimal.Decimal `json:"outstanding"`
	FullyPaid   bool            `json:"fully_paid"`
}

// Summarize totals the schedule. Cancelled payments are ignored.
func Summarize(payments []*BookingPayment) Summary {
	s := Summary{Total: decimal.Zero, Paid: decimal.Zero, Outstanding: decimal.Zero}
	for _, p := range payments {
		switch {
		case p.Status() == StatusPaid || p.Status() == StatusRefunded:
			s.Total = s.Total.Add(p.Amount())
			s.Paid = s.Paid.Add(p.Amount())
		case p.Status().IsOutstanding():
			s.Total = s.Total.Add(p.Amount())
			s.Outstanding = s.Outstanding.Add(p.Amount())
		}
	}
	s.FullyPaid = s.Total.IsPositive() && s.Outstanding.IsZero()
	return s
}
