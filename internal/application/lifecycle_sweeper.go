package application

import (
	"context"

	"go.uber.org/zap"

	"github.com/estatery/service-rental/internal/platform/domain"
)

// SweepResult counts what one daily sweep changed.
type SweepResult struct {
	Activated int `json:"activated"`
	Completed int `json:"completed"`
	Overdue   int `json:"overdue"`
	Failed    int `json:"failed"`
}

// LifecycleSweeper drives the date-triggered transitions. It is invoked by an external
// scheduler; every step is idempotent so overlapping or repeated runs are harmless.
type LifecycleSweeper struct {
	bookings *BookingService
	payments *PaymentService
	clock    Clock
	logger   *zap.Logger
}

// NewLifecycleSweeper creates a new LifecycleSweeper.
func NewLifecycleSweeper(bookings *BookingService, payments *PaymentService, clock Clock, logger *zap.Logger) *LifecycleSweeper {
	return &LifecycleSweeper{bookings: bookings, payments: payments, clock: clock, logger: logger}
}

// RunDailyTransitions activates stays that reached check-in, completes stays that
// reached check-out and flags overdue payments. A failing booking is logged and skipped.
func (w *LifecycleSweeper) RunDailyTransitions(ctx context.Context) (*SweepResult, error) {
	today := domain.DateOf(w.clock.Now())
	repos := w.bookings.tx.Repositories()
	result := &SweepResult{}

	toActivate, err := repos.Bookings().FindDueForActivation(ctx, today)
	if err != nil {
		return nil, err
	}
	for _, bk := range toActivate {
		if _, err := w.bookings.ActivateBooking(ctx, bk.ID()); err != nil {
			result.Failed++
			w.logger.Warn("failed to activate booking", zap.String("booking_id", bk.ID().String()), zap.Error(err))
			continue
		}
		result.Activated++
	}

	toComplete, err := repos.Bookings().FindDueForCompletion(ctx, today)
	if err != nil {
		return nil, err
	}
	for _, bk := range toComplete {
		if _, err := w.bookings.CompleteBooking(ctx, bk.ID()); err != nil {
			result.Failed++
			w.logger.Warn("failed to complete booking", zap.String("booking_id", bk.ID().String()), zap.Error(err))
			continue
		}
		result.Completed++
	}

	if result.Overdue, err = w.payments.MarkOverduePayments(ctx); err != nil {
		return nil, err
	}

	w.logger.Info("daily transitions finished",
		zap.Int("activated", result.Activated),
		zap.Int("completed", result.Completed),
		zap.Int("overdue", result.Overdue),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}
