package application

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/estatery/service-rental/internal/application/uow"
	"github.com/estatery/service-rental/internal/domain/booking"
	"github.com/estatery/service-rental/internal/domain/payment"
	"github.com/estatery/service-rental/internal/platform/domain"
)

// PaymentService settles and reports on booking payment schedules.
type PaymentService struct {
	tx     uow.TxManager
	clock  Clock
	logger *zap.Logger
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(tx uow.TxManager, clock Clock, logger *zap.Logger) *PaymentService {
	return &PaymentService{tx: tx, clock: clock, logger: logger}
}

// MarkPaymentPaid records a payment as settled by the property owner.
func (s *PaymentService) MarkPaymentPaid(ctx context.Context, paymentID, ownerID uuid.UUID, transactionID string) (*PaymentDTO, error) {
	return s.markPaid(ctx, paymentID, &ownerID, transactionID)
}

// RecordGatewayPayment records a payment captured by the payment gateway.
func (s *PaymentService) RecordGatewayPayment(ctx context.Context, paymentID uuid.UUID, transactionID string) (*PaymentDTO, error) {
	return s.markPaid(ctx, paymentID, nil, transactionID)
}

// markPaid settles the payment and, for the deposit, flags the booking in the same
// transaction. A nil actor means the system.
func (s *PaymentService) markPaid(ctx context.Context, paymentID uuid.UUID, actor *uuid.UUID, transactionID string) (*PaymentDTO, error) {
	now := s.clock.Now()
	var p *payment.BookingPayment
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, tx uow.UnitOfWork) error {
		var err error
		p, err = tx.Payments().LockByID(ctx, paymentID)
		if err != nil {
			return err
		}
		bk, err := tx.Bookings().FindByID(ctx, p.BookingID())
		if err != nil {
			return err
		}
		if actor != nil && bk.HostID() != *actor {
			return domain.NewPermissionError("only the property owner can mark payments as paid")
		}

		changed, err := p.MarkPaid(transactionID, now)
		if err != nil || !changed {
			return err
		}
		if err := tx.Payments().Update(ctx, p); err != nil {
			return err
		}

		if p.IsDeposit() && !bk.DepositPaid() {
			bk.MarkDepositPaid(now)
			bk.IncrementVersion()
			return tx.Bookings().Update(ctx, bk)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment marked paid",
		zap.String("payment_id", p.ID().String()),
		zap.String("booking_id", p.BookingID().String()),
		zap.String("payment_type", string(p.Type())),
	)
	result := toPaymentDTO(p)
	return &result, nil
}

// ListPayments returns a booking's schedule to one of its parties.
func (s *PaymentService) ListPayments(ctx context.Context, bookingID, userID uuid.UUID) (*PaymentScheduleDTO, error) {
	repos := s.tx.Repositories()
	bk, err := repos.Bookings().FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.IsParty(userID) {
		return nil, domain.NewPermissionError("booking does not belong to this user")
	}
	payments, err := repos.Payments().FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = toPaymentDTO(p)
	}
	return &PaymentScheduleDTO{
		BookingID: bookingID,
		Payments:  dtos,
		Summary:   payment.Summarize(payments),
	}, nil
}

// RefundDeposit returns the paid deposit of a finished stay.
func (s *PaymentService) RefundDeposit(ctx context.Context, bookingID, ownerID uuid.UUID) (*BookingDTO, error) {
	now := s.clock.Now()
	var bk *booking.Booking
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, tx uow.UnitOfWork) error {
		var err error
		bk, err = tx.Bookings().LockByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if bk.HostID() != ownerID {
			return domain.NewPermissionError("only the property owner can refund the deposit")
		}
		if err := bk.MarkDepositRefunded(now); err != nil {
			return err
		}

		payments, err := tx.Payments().FindByBookingID(ctx, bk.ID())
		if err != nil {
			return err
		}
		for _, p := range payments {
			if !p.IsDeposit() {
				continue
			}
			if err := p.Refund(now); err != nil {
				return err
			}
			if err := tx.Payments().Update(ctx, p); err != nil {
				return err
			}
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

// MarkOverduePayments flags every pending payment whose due date has passed.
func (s *PaymentService) MarkOverduePayments(ctx context.Context) (int, error) {
	now := s.clock.Now()
	marked := 0
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, tx uow.UnitOfWork) error {
		due, err := tx.Payments().FindPendingDueBefore(ctx, domain.DateOf(now))
		if err != nil {
			return err
		}
		for _, p := range due {
			if !p.MarkOverdue(now) {
				continue
			}
			if err := tx.Payments().Update(ctx, p); err != nil {
				return err
			}
			marked++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if marked > 0 {
		s.logger.Info("payments marked overdue", zap.Int("count", marked))
	}
	return marked, nil
}
