package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/estatery/service-rental/internal/domain/property"
	"github.com/estatery/service-rental/internal/platform/domain"
)

const (
	// CancellationNoticeDays is the minimum notice before check-in for cancelling a confirmed stay.
	CancellationNoticeDays = 7
	// DefaultRejectionReason is recorded when the owner gives none.
	DefaultRejectionReason = "No reason provided"
	// WithdrawnReason is recorded on pending bookings cancelled because the listing was withdrawn.
	WithdrawnReason = "Property removed by host"
)

// Booking is the aggregate root for a monthly-cycle rental.
type Booking struct {
	id              uuid.UUID
	propertyID      uuid.UUID
	hostID          uuid.UUID
	renterID        uuid.UUID
	bookingType     BookingType
	checkIn         time.Time
	checkOut        time.Time
	monthlyRate     decimal.Decimal
	monthsBooked    int
	totalPrice      decimal.Decimal
	securityDeposit decimal.Decimal
	discountPct     decimal.Decimal
	currency        string
	status          BookingStatus
	reason          string
	specialRequests string

	confirmedAt       *time.Time
	activatedAt       *time.Time
	cancelledAt       *time.Time
	completedAt       *time.Time
	depositPaid       bool
	depositPaidAt     *time.Time
	depositRefunded   bool
	depositRefundedAt *time.Time

	version   int64
	createdAt time.Time
	updatedAt time.Time

	intents []Intent
}

// Request carries a renter's booking request.
type Request struct {
	RenterID        uuid.UUID
	CheckIn         time.Time
	CheckOut        time.Time
	BookingType     BookingType
	SpecialRequests string
}

// NewBooking validates the request against the property terms and prices it. The
// booking starts pending with schedule generation and owner notification intents.
// Availability is the caller's concern since it needs the property lock.
func NewBooking(p *property.Property, req Request, pricing PricingStrategy, now time.Time) (*Booking, error) {
	if req.RenterID == uuid.Nil {
		return nil, domain.NewValidationError("renter ID is required")
	}
	if p.IsOwnedBy(req.RenterID) {
		return nil, domain.NewPermissionError("owners cannot book their own property")
	}
	if !p.IsBookable() {
		return nil, domain.NewValidationError("property is not available for booking")
	}
	if req.BookingType == "" {
		req.BookingType = BookingTypeMonthly
	}
	if !req.BookingType.IsSupported() {
		return nil, domain.NewValidationError("only monthly bookings are supported")
	}

	checkIn, checkOut := domain.DateOf(req.CheckIn), domain.DateOf(req.CheckOut)
	months, err := ValidateStay(p, checkIn, checkOut, now)
	if err != nil {
		return nil, err
	}
	quote, err := pricing.Quote(p, months)
	if err != nil {
		return nil, err
	}

	now = now.UTC()
	b := &Booking{
		id:              uuid.New(),
		propertyID:      p.ID(),
		hostID:          p.OwnerID(),
		renterID:        req.RenterID,
		bookingType:     req.BookingType,
		checkIn:         checkIn,
		checkOut:        checkOut,
		monthlyRate:     quote.MonthlyRate,
		monthsBooked:    months,
		totalPrice:      quote.Total,
		securityDeposit: quote.SecurityDeposit,
		discountPct:     quote.DiscountPct,
		currency:        string(p.Currency()),
		status:          StatusPending,
		specialRequests: strings.TrimSpace(req.SpecialRequests),
		version:         1,
		createdAt:       now,
		updatedAt:       now,
	}
	b.record(Intent{Kind: IntentGenerateSchedule})
	b.record(notifyIntent(EventRequested, b.hostID))
	return b, nil
}

// ValidateStay checks the requested dates against the property terms and returns the
// number of billable months.
func ValidateStay(p *property.Property, checkIn, checkOut, now time.Time) (int, error) {
	checkIn, checkOut = domain.DateOf(checkIn), domain.DateOf(checkOut)
	if checkIn.Before(domain.DateOf(now)) {
		return 0, domain.NewValidationError("check-in cannot be in the past")
	}
	if !checkOut.After(checkIn) {
		return 0, domain.NewValidationError("check-out must be after check-in")
	}
	if checkIn.Day() != p.CycleStartDay() {
		return 0, domain.NewValidationError(
			fmt.Sprintf("check-in must fall on day %d of the month (the property's billing cycle)", p.CycleStartDay()))
	}
	months := MonthsBetween(checkIn, checkOut, p.MinStayMonths())
	if maxStay := p.MaxStayMonths(); maxStay != nil && months > *maxStay {
		return 0, domain.NewValidationError(fmt.Sprintf("stay exceeds the maximum of %d months", *maxStay))
	}
	return months, nil
}

// Snapshot is the persisted form of a Booking.
type Snapshot struct {
	ID                uuid.UUID
	PropertyID        uuid.UUID
	HostID            uuid.UUID
	RenterID          uuid.UUID
	BookingType       BookingType
	CheckIn           time.Time
	CheckOut          time.Time
	MonthlyRate       decimal.Decimal
	MonthsBooked      int
	TotalPrice        decimal.Decimal
	SecurityDeposit   decimal.Decimal
	DiscountPct       decimal.Decimal
	Currency          string
	Status            BookingStatus
	Reason            string
	SpecialRequests   string
	ConfirmedAt       *time.Time
	ActivatedAt       *time.Time
	CancelledAt       *time.Time
	CompletedAt       *time.Time
	DepositPaid       bool
	DepositPaidAt     *time.Time
	DepositRefunded   bool
	DepositRefundedAt *time.Time
	Version           int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(s Snapshot) *Booking {
	return &Booking{
		id:                s.ID,
		propertyID:        s.PropertyID,
		hostID:            s.HostID,
		renterID:          s.RenterID,
		bookingType:       s.BookingType,
		checkIn:           s.CheckIn,
		checkOut:          s.CheckOut,
		monthlyRate:       s.MonthlyRate,
		monthsBooked:      s.MonthsBooked,
		totalPrice:        s.TotalPrice,
		securityDeposit:   s.SecurityDeposit,
		discountPct:       s.DiscountPct,
		currency:          s.Currency,
		status:            s.Status,
		reason:            s.Reason,
		specialRequests:   s.SpecialRequests,
		confirmedAt:       s.ConfirmedAt,
		activatedAt:       s.ActivatedAt,
		cancelledAt:       s.CancelledAt,
		completedAt:       s.CompletedAt,
		depositPaid:       s.DepositPaid,
		depositPaidAt:     s.DepositPaidAt,
		depositRefunded:   s.DepositRefunded,
		depositRefundedAt: s.DepositRefundedAt,
		version:           s.Version,
		createdAt:         s.CreatedAt,
		updatedAt:         s.UpdatedAt,
	}
}

// Snapshot returns the persisted form of the booking.
func (b *Booking) Snapshot() Snapshot {
	return Snapshot{
		ID:                b.id,
		PropertyID:        b.propertyID,
		HostID:            b.hostID,
		RenterID:          b.renterID,
		BookingType:       b.bookingType,
		CheckIn:           b.checkIn,
		CheckOut:          b.checkOut,
		MonthlyRate:       b.monthlyRate,
		MonthsBooked:      b.monthsBooked,
		TotalPrice:        b.totalPrice,
		SecurityDeposit:   b.securityDeposit,
		DiscountPct:       b.discountPct,
		Currency:          b.currency,
		Status:            b.status,
		Reason:            b.reason,
		SpecialRequests:   b.specialRequests,
		ConfirmedAt:       b.confirmedAt,
		ActivatedAt:       b.activatedAt,
		CancelledAt:       b.cancelledAt,
		CompletedAt:       b.completedAt,
		DepositPaid:       b.depositPaid,
		DepositPaidAt:     b.depositPaidAt,
		DepositRefunded:   b.depositRefunded,
		DepositRefundedAt: b.depositRefundedAt,
		Version:           b.version,
		CreatedAt:         b.createdAt,
		UpdatedAt:         b.updatedAt,
	}
}

// --- Getters ---

func (b *Booking) ID() uuid.UUID                       { return b.id }
func (b *Booking) PropertyID() uuid.UUID               { return b.propertyID }
func (b *Booking) HostID() uuid.UUID                   { return b.hostID }
func (b *Booking) RenterID() uuid.UUID                 { return b.renterID }
func (b *Booking) BookingType() BookingType            { return b.bookingType }
func (b *Booking) CheckIn() time.Time                  { return b.checkIn }
func (b *Booking) CheckOut() time.Time                 { return b.checkOut }
func (b *Booking) MonthlyRate() decimal.Decimal        { return b.monthlyRate }
func (b *Booking) MonthsBooked() int                   { return b.monthsBooked }
func (b *Booking) TotalPrice() decimal.Decimal         { return b.totalPrice }
func (b *Booking) SecurityDeposit() decimal.Decimal    { return b.securityDeposit }
func (b *Booking) DiscountPct() decimal.Decimal        { return b.discountPct }
func (b *Booking) Currency() string                    { return b.currency }
func (b *Booking) Status() BookingStatus               { return b.status }
func (b *Booking) Reason() string                      { return b.reason }
func (b *Booking) SpecialRequests() string             { return b.specialRequests }
func (b *Booking) ConfirmedAt() *time.Time             { return b.confirmedAt }
func (b *Booking) ActivatedAt() *time.Time             { return b.activatedAt }
func (b *Booking) CancelledAt() *time.Time             { return b.cancelledAt }
func (b *Booking) CompletedAt() *time.Time             { return b.completedAt }
func (b *Booking) DepositPaid() bool                   { return b.depositPaid }
func (b *Booking) DepositPaidAt() *time.Time           { return b.depositPaidAt }
func (b *Booking) DepositRefunded() bool               { return b.depositRefunded }
func (b *Booking) DepositRefundedAt() *time.Time       { return b.depositRefundedAt }
func (b *Booking) Version() int64                      { return b.version }
func (b *Booking) CreatedAt() time.Time                { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time                { return b.updatedAt }
func (b *Booking) IsParty(userID uuid.UUID) bool       { return userID == b.renterID || userID == b.hostID }
func (b *Booking) OverlapsWith(in, out time.Time) bool { return Overlaps(b.checkIn, b.checkOut, in, out) }

// PullIntents returns the side effects recorded since the last call and clears them.
func (b *Booking) PullIntents() []Intent {
	out := b.intents
	b.intents = nil
	return out
}

func (b *Booking) record(i Intent) {
	b.intents = append(b.intents, i)
}

// --- Behavior ---

func (b *Booking) transitionTo(target BookingStatus, now time.Time) error {
	if !b.status.CanTransitionTo(target) {
		return domain.NewInvalidTransitionError(string(b.status), string(target))
	}
	b.status = target
	b.updatedAt = now.UTC()
	return nil
}

// Change carries a renter's edit to a pending booking.
type Change struct {
	CheckIn         time.Time
	CheckOut        time.Time
	SpecialRequests *string
}

// Reschedule moves a pending request to new dates and re-prices it against the current
// listing terms. The payment schedule is regenerated and the host is told.
// Availability is the caller's concern since it needs the property lock.
func (b *Booking) Reschedule(actor uuid.UUID, p *property.Property, change Change, pricing PricingStrategy, now time.Time) error {
	if actor != b.renterID {
		return domain.NewPermissionError("only the renter can update a booking")
	}
	if b.status != StatusPending {
		return domain.NewValidationError("only pending bookings can be updated")
	}
	if b.depositPaid {
		return domain.NewValidationError("booking cannot be updated after the deposit is paid")
	}
	if !p.IsBookable() {
		return domain.NewValidationError("property is not available for booking")
	}

	checkIn, checkOut := domain.DateOf(change.CheckIn), domain.DateOf(change.CheckOut)
	months, err := ValidateStay(p, checkIn, checkOut, now)
	if err != nil {
		return err
	}
	quote, err := pricing.Quote(p, months)
	if err != nil {
		return err
	}

	b.checkIn = checkIn
	b.checkOut = checkOut
	b.monthsBooked = months
	b.monthlyRate = quote.MonthlyRate
	b.totalPrice = quote.Total
	b.securityDeposit = quote.SecurityDeposit
	b.discountPct = quote.DiscountPct
	b.currency = string(p.Currency())
	if change.SpecialRequests != nil {
		b.specialRequests = strings.TrimSpace(*change.SpecialRequests)
	}
	b.updatedAt = now.UTC()

	b.record(Intent{Kind: IntentGenerateSchedule})
	b.record(notifyIntent(EventUpdated, b.hostID))
	return nil
}

// Confirm accepts a pending request. Only the host may confirm.
func (b *Booking) Confirm(actor uuid.UUID, now time.Time) error {
	if actor != b.hostID {
		return domain.NewPermissionError("only the property owner can confirm a booking")
	}
	if err := b.transitionTo(StatusConfirmed, now); err != nil {
		return err
	}
	t := now.UTC()
	b.confirmedAt = &t
	b.record(notifyIntent(EventConfirmed, b.renterID))
	return nil
}

// Reject declines a pending request. Only the host may reject.
func (b *Booking) Reject(actor uuid.UUID, reason string, now time.Time) error {
	if actor != b.hostID {
		return domain.NewPermissionError("only the property owner can reject a booking")
	}
	if err := b.transitionTo(StatusRejected, now); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultRejectionReason
	}
	b.reason = reason
	b.record(Intent{Kind: IntentCancelOutstandingPayments})
	b.record(notifyIntent(EventRejected, b.renterID))
	return nil
}

// Cancel ends the booking. The renter may cancel a pending request; once confirmed
// either party may cancel, but not within CancellationNoticeDays of check-in.
func (b *Booking) Cancel(actor uuid.UUID, reason string, now time.Time) error {
	if !b.IsParty(actor) {
		return domain.NewPermissionError("only the renter or the property owner can cancel a booking")
	}
	if !b.status.CanTransitionTo(StatusCancelled) {
		return domain.NewInvalidTransitionError(string(b.status), string(StatusCancelled))
	}
	switch b.status {
	case StatusPending:
		if actor != b.renterID {
			return domain.NewPermissionError("the owner must reject a pending booking instead of cancelling it")
		}
	case StatusConfirmed, StatusActive:
		if domain.DaysBetween(now, b.checkIn) < CancellationNoticeDays {
			return domain.NewValidationError("cannot cancel within 7 days of check-in")
		}
	}
	return b.cancel(reason, now)
}

// CancelForWithdrawal cancels a pending booking because its property was withdrawn.
func (b *Booking) CancelForWithdrawal(now time.Time) error {
	if b.status != StatusPending {
		return domain.NewInvalidTransitionError(string(b.status), string(StatusCancelled))
	}
	return b.cancel(WithdrawnReason, now)
}

func (b *Booking) cancel(reason string, now time.Time) error {
	if err := b.transitionTo(StatusCancelled, now); err != nil {
		return err
	}
	t := now.UTC()
	b.cancelledAt = &t
	b.reason = strings.TrimSpace(reason)
	b.record(Intent{Kind: IntentCancelOutstandingPayments})
	b.record(notifyIntent(EventCancelled, b.renterID, b.hostID))
	return nil
}

// Activate moves a confirmed booking to active once check-in is reached. It reports
// false without error when the booking is already active.
func (b *Booking) Activate(now time.Time) (bool, error) {
	if b.status == StatusActive {
		return false, nil
	}
	if !b.status.CanTransitionTo(StatusActive) {
		return false, domain.NewInvalidTransitionError(string(b.status), string(StatusActive))
	}
	if domain.DateOf(now).Before(b.checkIn) {
		return false, domain.NewValidationError("booking cannot be activated before check-in")
	}
	if err := b.transitionTo(StatusActive, now); err != nil {
		return false, err
	}
	t := now.UTC()
	b.activatedAt = &t
	return true, nil
}

// Complete moves an active booking to completed once check-out is reached. It reports
// false without error when the booking is already completed.
func (b *Booking) Complete(now time.Time) (bool, error) {
	if b.status == StatusCompleted {
		return false, nil
	}
	if !b.status.CanTransitionTo(StatusCompleted) {
		return false, domain.NewInvalidTransitionError(string(b.status), string(StatusCompleted))
	}
	if domain.DateOf(now).Before(b.checkOut) {
		return false, domain.NewValidationError("booking cannot be completed before check-out")
	}
	if err := b.transitionTo(StatusCompleted, now); err != nil {
		return false, err
	}
	t := now.UTC()
	b.completedAt = &t
	return true, nil
}

// MarkDepositPaid records receipt of the security deposit.
func (b *Booking) MarkDepositPaid(now time.Time) {
	if b.depositPaid {
		return
	}
	t := now.UTC()
	b.depositPaid = true
	b.depositPaidAt = &t
	b.updatedAt = t
}

// MarkDepositRefunded records the deposit refund once the stay has ended or will not happen.
func (b *Booking) MarkDepositRefunded(now time.Time) error {
	if b.status != StatusCompleted && b.status != StatusCancelled && b.status != StatusRejected {
		return domain.NewValidationError("deposit can only be refunded for completed, cancelled or rejected bookings")
	}
	if !b.depositPaid {
		return domain.NewValidationError("deposit has not been paid")
	}
	if b.depositRefunded {
		return domain.NewValidationError("deposit has already been refunded")
	}
	t := now.UTC()
	b.depositRefunded = true
	b.depositRefundedAt = &t
	b.updatedAt = t
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
}
