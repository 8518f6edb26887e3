package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/estatery/service-rental/internal/application/uow"
	"github.com/estatery/service-rental/internal/domain/booking"
	"github.com/estatery/service-rental/internal/domain/payment"
	"github.com/estatery/service-rental/internal/domain/property"
	"github.com/estatery/service-rental/internal/platform/domain"
)

// BookingService is the application service orchestrating the booking lifecycle.
type BookingService struct {
	tx       uow.TxManager
	pricing  booking.PricingStrategy
	notifier Notifier
	clock    Clock
	logger   *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	tx uow.TxManager,
	pricing booking.PricingStrategy,
	notifier Notifier,
	clock Clock,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		tx:       tx,
		pricing:  pricing,
		notifier: notifier,
		clock:    clock,
		logger:   logger,
	}
}

// QuoteBooking prices a prospective stay without reserving anything.
func (s *BookingService) QuoteBooking(ctx context.Context, req StayRequest) (*QuoteDTO, error) {
	checkIn, checkOut, err := req.dates()
	if err != nil {
		return nil, err
	}
	repos := s.tx.Repositories()
	p, err := repos.Properties().FindByID(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}

	months, err := booking.ValidateStay(p, checkIn, checkOut, s.clock.Now())
	if err != nil {
		return nil, err
	}
	quote, err := s.pricing.Quote(p, months)
	if err != nil {
		return nil, err
	}
	existing, err := repos.Bookings().FindOverlapping(ctx, p.ID(), checkIn, checkOut, booking.BlockingStatuses, nil)
	if err != nil {
		return nil, err
	}

	return &QuoteDTO{
		PropertyID: p.ID(),
		CheckIn:    domain.FormatDate(checkIn),
		CheckOut:   domain.FormatDate(checkOut),
		Currency:   string(p.Currency()),
		Available:  booking.IsAvailable(existing, checkIn, checkOut, nil),
		Quote:      quote,
	}, nil
}

// CheckAvailability reports whether no confirmed or active booking overlaps the stay.
// exclude omits one booking, for re-validating an existing booking.
func (s *BookingService) CheckAvailability(ctx context.Context, req StayRequest, exclude *uuid.UUID) (*AvailabilityDTO, error) {
	checkIn, checkOut, err := req.dates()
	if err != nil {
		return nil, err
	}
	if !checkOut.After(checkIn) {
		return nil, domain.NewValidationError("check-out must be after check-in")
	}
	repos := s.tx.Repositories()
	if _, err := repos.Properties().FindByID(ctx, req.PropertyID); err != nil {
		return nil, err
	}
	existing, err := repos.Bookings().FindOverlapping(ctx, req.PropertyID, checkIn, checkOut, booking.BlockingStatuses, exclude)
	if err != nil {
		return nil, err
	}
	return &AvailabilityDTO{
		PropertyID: req.PropertyID,
		CheckIn:    domain.FormatDate(checkIn),
		CheckOut:   domain.FormatDate(checkOut),
		Available:  booking.IsAvailable(existing, checkIn, checkOut, exclude),
	}, nil
}

// MonthlyCalendar returns day-by-day availability of a property for one month.
func (s *BookingService) MonthlyCalendar(ctx context.Context, propertyID uuid.UUID, year, month int) (*CalendarDTO, error) {
	if month < 1 || month > 12 {
		return nil, domain.NewValidationError("month must be between 1 and 12")
	}
	if year < 2000 || year > 2100 {
		return nil, domain.NewValidationError("year is out of range")
	}
	repos := s.tx.Repositories()
	if _, err := repos.Properties().FindByID(ctx, propertyID); err != nil {
		return nil, err
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	bookings, err := repos.Bookings().FindOverlapping(ctx, propertyID, first, first.AddDate(0, 1, 0), booking.BlockingStatuses, nil)
	if err != nil {
		return nil, err
	}
	return &CalendarDTO{
		PropertyID: propertyID,
		Year:       year,
		Month:      month,
		Days:       booking.MonthCalendar(year, time.Month(month), bookings),
	}, nil
}

// CreateBooking requests a stay. The property row stays locked from the availability
// check until the booking and its payment schedule are written.
func (s *BookingService) CreateBooking(ctx context.Context, renterID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	checkIn, checkOut, err := req.dates()
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()

	var (
		bk      *booking.Booking
		notices []booking.Intent
	)
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context, tx uow.UnitOfWork) error {
		p, err := tx.Properties().LockByID(ctx, req.PropertyID)
		if err != nil {
			return err
		}

		bk, err = booking.NewBooking(p, booking.Request{
			RenterID:        renterID,
			CheckIn:         checkIn,
			CheckOut:        checkOut,
			BookingType:     booking.BookingType(req.BookingType),
			SpecialRequests: req.SpecialRequests,
		}, s.pricing, now)
		if err != nil {
			return err
		}

		held, err := tx.Bookings().FindOverlapping(ctx, p.ID(), bk.CheckIn(), bk.CheckOut(), booking.HoldingStatuses, nil)
		if err != nil {
			return err
		}
		if len(booking.Conflicting(held, bk.CheckIn(), bk.CheckOut(), nil, booking.HoldingStatuses)) > 0 {
			return domain.NewConflictError("property is not available for the selected dates")
		}

		if err := tx.Bookings().Save(ctx, bk); err != nil {
			return err
		}
		notices, err = applyIntents(ctx, tx, bk, p, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking requested",
		zap.String("booking_id", bk.ID().String()),
		zap.String("property_id", bk.PropertyID().String()),
		zap.Int("months", bk.MonthsBooked()),
	)
	s.dispatch(ctx, bk, notices)

	result := toBookingDTO(bk, now)
	return &result, nil
}

// UpdateBooking moves a pending request to new dates. Under the property lock the stay is
// re-validated, checked against other holds excluding itself, re-priced and given a
// fresh payment schedule.
func (s *BookingService) UpdateBooking(ctx context.Context, bookingID, renterID uuid.UUID, req UpdateBookingRequest) (*BookingDTO, error) {
	checkIn, checkOut, err := StayRequest{CheckIn: req.CheckIn, CheckOut: req.CheckOut}.dates()
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, bookingID, true, func(ctx context.Context, tx uow.UnitOfWork, bk *booking.Booking, now time.Time) error {
		p, err := tx.Properties().FindByID(ctx, bk.PropertyID())
		if err != nil {
			return err
		}
		if err := bk.Reschedule(renterID, p, booking.Change{
			CheckIn:         checkIn,
			CheckOut:        checkOut,
			SpecialRequests: req.SpecialRequests,
		}, s.pricing, now); err != nil {
			return err
		}

		existing, err := tx.Payments().FindByBookingID(ctx, bk.ID())
		if err != nil {
			return err
		}
		if payment.HasPaid(existing) {
			return domain.NewValidationError("booking has payments recorded and cannot be updated")
		}

		id := bk.ID()
		held, err := tx.Bookings().FindOverlapping(ctx, p.ID(), bk.CheckIn(), bk.CheckOut(), booking.HoldingStatuses, &id)
		if err != nil {
			return err
		}
		if len(booking.Conflicting(held, bk.CheckIn(), bk.CheckOut(), &id, booking.HoldingStatuses)) > 0 {
			return domain.NewConflictError("property is not available for the selected dates")
		}
		return nil
	})
}

// ConfirmBooking accepts a pending request. Availability is re-checked under the
// property lock in case another stay was confirmed over the same dates.
func (s *BookingService) ConfirmBooking(ctx context.Context, bookingID, ownerID uuid.UUID) (*BookingDTO, error) {
	return s.transition(ctx, bookingID, true, func(ctx context.Context, tx uow.UnitOfWork, bk *booking.Booking, now time.Time) error {
		if err := bk.Confirm(ownerID, now); err != nil {
			return err
		}
		id := bk.ID()
		taken, err := tx.Bookings().FindOverlapping(ctx, bk.PropertyID(), bk.CheckIn(), bk.CheckOut(), booking.BlockingStatuses, &id)
		if err != nil {
			return err
		}
		if !booking.IsAvailable(taken, bk.CheckIn(), bk.CheckOut(), &id) {
			return domain.NewConflictError("dates were booked by another renter")
		}
		return nil
	})
}

// RejectBooking declines a pending request.
func (s *BookingService) RejectBooking(ctx context.Context, bookingID, ownerID uuid.UUID, reason string) (*BookingDTO, error) {
	return s.transition(ctx, bookingID, false, func(_ context.Context, _ uow.UnitOfWork, bk *booking.Booking, now time.Time) error {
		return bk.Reject(ownerID, reason, now)
	})
}

// CancelBooking cancels a booking on behalf of the renter or the owner.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, actorID uuid.UUID, reason string) (*BookingDTO, error) {
	return s.transition(ctx, bookingID, false, func(_ context.Context, _ uow.UnitOfWork, bk *booking.Booking, now time.Time) error {
		return bk.Cancel(actorID, reason, now)
	})
}

// ActivateBooking starts a confirmed stay once check-in is reached. Safe to call repeatedly.
func (s *BookingService) ActivateBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	return s.idempotent(ctx, bookingID, func(bk *booking.Booking, now time.Time) (bool, error) {
		return bk.Activate(now)
	})
}

// CompleteBooking ends an active stay once check-out is reached. Safe to call repeatedly.
func (s *BookingService) CompleteBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	return s.idempotent(ctx, bookingID, func(bk *booking.Booking, now time.Time) (bool, error) {
		return bk.Complete(now)
	})
}

// RegenerateSchedule replaces a booking's payment schedule. Refused once money has moved.
func (s *BookingService) RegenerateSchedule(ctx context.Context, bookingID, ownerID uuid.UUID) ([]PaymentDTO, error) {
	now := s.clock.Now()
	var schedule []*payment.BookingPayment
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, tx uow.UnitOfWork) error {
		bk, err := tx.Bookings().LockByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if bk.HostID() != ownerID {
			return domain.NewPermissionError("only the property owner can regenerate the payment schedule")
		}
		if bk.Status() != booking.StatusPending && bk.Status() != booking.StatusConfirmed {
			return domain.NewValidationError("payment schedule can only be regenerated before the stay starts")
		}
		existing, err := tx.Payments().FindByBookingID(ctx, bk.ID())
		if err != nil {
			return err
		}
		if payment.HasPaid(existing) {
			return domain.NewValidationError("payment schedule has payments recorded and cannot be regenerated")
		}
		p, err := tx.Properties().FindByID(ctx, bk.PropertyID())
		if err != nil {
			return err
		}
		schedule, err = replaceSchedule(ctx, tx, bk, p, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	dtos := make([]PaymentDTO, len(schedule))
	for i, p := range schedule {
		dtos[i] = toPaymentDTO(p)
	}
	return dtos, nil
}

// GetBooking returns a booking visible to one of its parties.
func (s *BookingService) GetBooking(ctx context.Context, bookingID, userID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.tx.Repositories().Bookings().FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.IsParty(userID) {
		return nil, domain.NewPermissionError("booking does not belong to this user")
	}
	result := toBookingDTO(bk, s.clock.Now())
	return &result, nil
}

// ListRenterBookings returns the renter's bookings, newest first.
func (s *BookingService) ListRenterBookings(ctx context.Context, renterID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.tx.Repositories().Bookings().FindByRenterID(ctx, renterID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings, s.clock.Now()), total, page, limit)
	return &result, nil
}

// ListHostBookings returns bookings on the owner's properties, newest first.
func (s *BookingService) ListHostBookings(ctx context.Context, hostID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.tx.Repositories().Bookings().FindByHostID(ctx, hostID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings, s.clock.Now()), total, page, limit)
	return &result, nil
}

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.tx.Repositories().Bookings().CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	return &BookingStatsDTO{TotalBookings: total, ByStatus: counts}, nil
}

// --- Helpers ---

type transitionFunc func(ctx context.Context, tx uow.UnitOfWork, bk *booking.Booking, now time.Time) error

// transition applies a lifecycle command in one transaction and dispatches its
// notifications after commit. With lockProperty the property row is locked before the
// booking row, the same order CreateBooking and WithdrawProperty use.
func (s *BookingService) transition(ctx context.Context, bookingID uuid.UUID, lockProperty bool, cmd transitionFunc) (*BookingDTO, error) {
	now := s.clock.Now()
	var (
		bk      *booking.Booking
		notices []booking.Intent
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, tx uow.UnitOfWork) error {
		var p *property.Property
		if lockProperty {
			current, err := tx.Bookings().FindByID(ctx, bookingID)
			if err != nil {
				return err
			}
			if p, err = tx.Properties().LockByID(ctx, current.PropertyID()); err != nil {
				return err
			}
		}

		var err error
		bk, err = tx.Bookings().LockByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := cmd(ctx, tx, bk, now); err != nil {
			return err
		}

		bk.IncrementVersion()
		if err := tx.Bookings().Update(ctx, bk); err != nil {
			return err
		}
		notices, err = applyIntents(ctx, tx, bk, p, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking transitioned",
		zap.String("booking_id", bk.ID().String()),
		zap.String("status", bk.Status().String()),
	)
	s.dispatch(ctx, bk, notices)

	result := toBookingDTO(bk, now)
	return &result, nil
}

// idempotent applies a date-triggered transition, persisting only when it changed state.
func (s *BookingService) idempotent(ctx context.Context, bookingID uuid.UUID, cmd func(*booking.Booking, time.Time) (bool, error)) (*BookingDTO, error) {
	now := s.clock.Now()
	var bk *booking.Booking
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, tx uow.UnitOfWork) error {
		var err error
		bk, err = tx.Bookings().LockByID(ctx, bookingID)
		if err != nil {
			return err
		}
		changed, err := cmd(bk, now)
		if err != nil || !changed {
			return err
		}
		bk.IncrementVersion()
		return tx.Bookings().Update(ctx, bk)
	})
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk, now)
	return &result, nil
}

// applyIntents carries out the in-transaction side effects a command recorded and
// returns the notifications to send after commit. p may be nil when the command did
// not need the property.
func applyIntents(ctx context.Context, tx uow.UnitOfWork, bk *booking.Booking, p *property.Property, now time.Time) ([]booking.Intent, error) {
	var notices []booking.Intent
	for _, intent := range bk.PullIntents() {
		switch intent.Kind {
		case booking.IntentGenerateSchedule:
			if p == nil {
				var err error
				if p, err = tx.Properties().FindByID(ctx, bk.PropertyID()); err != nil {
					return nil, err
				}
			}
			if _, err := replaceSchedule(ctx, tx, bk, p, now); err != nil {
				return nil, err
			}
		case booking.IntentCancelOutstandingPayments:
			if err := cancelOutstanding(ctx, tx, bk.ID(), now); err != nil {
				return nil, err
			}
		case booking.IntentNotify:
			notices = append(notices, intent)
		}
	}
	return notices, nil
}

// replaceSchedule deletes any prior schedule and inserts a freshly generated one.
func replaceSchedule(ctx context.Context, tx uow.UnitOfWork, bk *booking.Booking, p *property.Property, now time.Time) ([]*payment.BookingPayment, error) {
	if err := tx.Payments().DeleteByBookingID(ctx, bk.ID()); err != nil {
		return nil, err
	}
	schedule := payment.GenerateSchedule(bk, p.CycleStartDay(), now)
	if err := tx.Payments().SaveAll(ctx, schedule); err != nil {
		return nil, err
	}
	return schedule, nil
}

func cancelOutstanding(ctx context.Context, tx uow.UnitOfWork, bookingID uuid.UUID, now time.Time) error {
	payments, err := tx.Payments().FindByBookingID(ctx, bookingID)
	if err != nil {
		return err
	}
	for _, p := range payments {
		if !p.Cancel(now) {
			continue
		}
		if err := tx.Payments().Update(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// dispatch sends notifications. Failures are logged and never undo the committed transition.
func (s *BookingService) dispatch(ctx context.Context, bk *booking.Booking, notices []booking.Intent) {
	dispatchNotices(ctx, s.notifier, s.logger, bk, notices)
}

func dispatchNotices(ctx context.Context, notifier Notifier, logger *zap.Logger, bk *booking.Booking, notices []booking.Intent) {
	if notifier == nil {
		return
	}
	for _, n := range notices {
		if err := notifier.Notify(ctx, n.Event, n.Recipients, notificationFor(bk)); err != nil {
			logger.Warn("failed to send booking notification",
				zap.String("booking_id", bk.ID().String()),
				zap.String("event", string(n.Event)),
				zap.Error(err),
			)
		}
	}
}
