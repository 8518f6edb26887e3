package payment

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/estatery/service-rental/internal/platform/domain"
)

// Type is the kind of obligation a payment represents.
type Type string

const (
	TypeDeposit Type = "deposit"
	TypeRent    Type = "rent"
	TypeLateFee Type = "late_fee"
	TypeUtility Type = "utility"
	TypeDamage  Type = "damage"
	TypeRefund  Type = "refund"
)

// Status is the settlement state of a payment.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusRefunded  Status = "refunded"
	StatusCancelled Status = "cancelled"
)

// IsOutstanding reports whether money is still owed.
func (s Status) IsOutstanding() bool {
	return s == StatusPending || s == StatusOverdue
}

// BookingPayment is a single dated obligation of a booking's payment schedule.
type BookingPayment struct {
	id            uuid.UUID
	bookingID     uuid.UUID
	paymentType   Type
	monthNumber   int
	amount        decimal.Decimal
	dueDate       time.Time
	status        Status
	paidDate      *time.Time
	transactionID string
	createdAt     time.Time
	updatedAt     time.Time
}

func newPayment(bookingID uuid.UUID, t Type, month int, amount decimal.Decimal, due, now time.Time) *BookingPayment {
	return &BookingPayment{
		id:          uuid.New(),
		bookingID:   bookingID,
		paymentType: t,
		monthNumber: month,
		amount:      amount,
		dueDate:     due,
		status:      StatusPending,
		createdAt:   now,
		updatedAt:   now,
	}
}

// ReconstructPayment rebuilds a BookingPayment from persistence data (no validation).
func ReconstructPayment(
	id, bookingID uuid.UUID,
	paymentType Type,
	monthNumber int,
	amount decimal.Decimal,
	dueDate time.Time,
	status Status,
	paidDate *time.Time,
	transactionID string,
	createdAt, updatedAt time.Time,
) *BookingPayment {
	return &BookingPayment{
		id:            id,
		bookingID:     bookingID,
		paymentType:   paymentType,
		monthNumber:   monthNumber,
		amount:        amount,
		dueDate:       dueDate,
		status:        status,
		paidDate:      paidDate,
		transactionID: transactionID,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

func (p *BookingPayment) ID() uuid.UUID           { return p.id }
func (p *BookingPayment) BookingID() uuid.UUID    { return p.bookingID }
func (p *BookingPayment) Type() Type              { return p.paymentType }
func (p *BookingPayment) MonthNumber() int        { return p.monthNumber }
func (p *BookingPayment) Amount() decimal.Decimal { return p.amount }
func (p *BookingPayment) DueDate() time.Time      { return p.dueDate }
func (p *BookingPayment) Status() Status          { return p.status }
func (p *BookingPayment) PaidDate() *time.Time    { return p.paidDate }
func (p *BookingPayment) TransactionID() string   { return p.transactionID }
func (p *BookingPayment) CreatedAt() time.Time    { return p.createdAt }
func (p *BookingPayment) UpdatedAt() time.Time    { return p.updatedAt }

// IsDeposit reports whether this is the security deposit.
func (p *BookingPayment) IsDeposit() bool {
	return p.paymentType == TypeDeposit
}

// MarkPaid settles an outstanding payment. It reports false without error when the
// payment was already paid.
func (p *BookingPayment) MarkPaid(transactionID string, now time.Time) (bool, error) {
	if p.status == StatusPaid {
		return false, nil
	}
	if !p.status.IsOutstanding() {
		return false, domain.NewInvalidTransitionError(string(p.status), string(StatusPaid))
	}
	paid := domain.DateOf(now)
	p.status = StatusPaid
	p.paidDate = &paid
	if tx := strings.TrimSpace(transactionID); tx != "" {
		p.transactionID = tx
	}
	p.updatedAt = now.UTC()
	return true, nil
}

// MarkOverdue flags a pending payment whose due date has passed. It reports whether anything changed.
func (p *BookingPayment) MarkOverdue(now time.Time) bool {
	if p.status != StatusPending || !p.dueDate.Before(domain.DateOf(now)) {
		return false
	}
	p.status = StatusOverdue
	p.updatedAt = now.UTC()
	return true
}

// Cancel voids an outstanding payment. It reports whether anything changed.
func (p *BookingPayment) Cancel(now time.Time) bool {
	if !p.status.IsOutstanding() {
		return false
	}
	p.status = StatusCancelled
	p.updatedAt = now.UTC()
	return true
}

// Refund returns a paid deposit to the renter.
func (p *BookingPayment) Refund(now time.Time) error {
	if !p.IsDeposit() {
		return domain.NewValidationError("only the security deposit can be refunded")
	}
	if p.status != StatusPaid {
		return domain.NewInvalidTransitionError(string(p.status), string(StatusRefunded))
	}
	p.status = StatusRefunded
	p.updatedAt = now.UTC()
	return nil
}
