package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estatery/service-rental/internal/domain/payment"
	"github.com/estatery/service-rental/internal/platform/domain"
)

func TestMarkPaymentPaid_DepositFlagsBooking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.listProperty(t)
	b := env.book(t, p.ID, "2026-02-01", "2026-05-01")

	schedule, err := env.payments.ListPayments(ctx, b.ID, env.ownerID)
	require.NoError(t, err)
	deposit := schedule.Payments[0]
	require.Equal(t, string(payment.TypeDeposit), deposit.PaymentType)

	_, err = env.payments.MarkPaymentPaid(ctx, deposit.ID, env.renterID, "tx-1")
	var pe *domain.PermissionError
	assert.ErrorAs(t, err, &pe, "renter cannot settle")

	paid, err := env.payments.MarkPaymentPaid(ctx, deposit.ID, env.ownerID, "tx-1")
	require.NoError(t, err)
	assert.Equal(t, string(payment.StatusPaid), paid.Status)
	require.NotNil(t, paid.PaidDate)
	assert.Equal(t, "2026-01-10", *paid.PaidDate)

	got, err := env.bookings.GetBooking(ctx, b.ID, env.renterID)
	require.NoError(t, err)
	assert.True(t, got.DepositPaid)
	require.NotNil(t, got.DepositPaidAt)

	again, err := env.payments.RecordGatewayPayment(ctx, deposit.ID, "tx-2")
	require.NoError(t, err, "repeated capture is a no-op")
	assert.Equal(t, "tx-1", again.TransactionID)
}

func TestRefundDeposit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.listProperty(t)
	b := env.book(t, p.ID, "2026-02-01", "2026-05-01")
	_, err := env.bookings.ConfirmBooking(ctx, b.ID, env.ownerID)
	require.NoError(t, err)

	schedule, err := env.payments.ListPayments(ctx, b.ID, env.ownerID)
	require.NoError(t, err)
	_, err = env.payments.MarkPaymentPaid(ctx, schedule.Payments[0].ID, env.ownerID, "tx-dep")
	require.NoError(t, err)

	_, err = env.payments.RefundDeposit(ctx, b.ID, env.ownerID)
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve, "stay not finished")

	env.clock.Set(time.Date(2026, 2, 1, 1, 0, 0, 0, time.UTC))
	_, err = env.bookings.ActivateBooking(ctx, b.ID)
	require.NoError(t, err)
	env.clock.Set(time.Date(2026, 5, 2, 1, 0, 0, 0, time.UTC))
	_, err = env.bookings.CompleteBooking(ctx, b.ID)
	require.NoError(t, err)

	refunded, err := env.payments.RefundDeposit(ctx, b.ID, env.ownerID)
	require.NoError(t, err)
	assert.True(t, refunded.DepositRefunded)

	schedule, err = env.payments.ListPayments(ctx, b.ID, env.renterID)
	require.NoError(t, err)
	assert.Equal(t, string(payment.StatusRefunded), schedule.Payments[0].Status)

	_, err = env.payments.RefundDeposit(ctx, b.ID, env.ownerID)
	assert.ErrorAs(t, err, &ve, "second refund")
}

func TestRefundDeposit_AfterReject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.listProperty(t)
	b := env.book(t, p.ID, "2026-02-01", "2026-05-01")

	schedule, err := env.payments.ListPayments(ctx, b.ID, env.renterID)
	require.NoError(t, err)
	deposit := schedule.Payments[0]
	_, err = env.payments.MarkPaymentPaid(ctx, deposit.ID, env.ownerID, "tx-dep")
	require.NoError(t, err)

	_, err = env.bookings.RejectBooking(ctx, b.ID, env.ownerID, "")
	require.NoError(t, err)

	refunded, err := env.payments.RefundDeposit(ctx, b.ID, env.ownerID)
	require.NoError(t, err)
	assert.True(t, refunded.DepositRefunded)

	schedule, err = env.payments.ListPayments(ctx, b.ID, env.renterID)
	require.NoError(t, err)
	assert.Equal(t, string(payment.StatusRefunded), schedule.Payments[0].Status)
	for _, rent := range schedule.Payments[1:] {
		assert.Equal(t, string(payment.StatusCancelled), rent.Status)
	}
}

func TestMarkOverduePayments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.listProperty(t)
	b := env.book(t, p.ID, "2026-02-01", "2026-05-01")

	env.clock.Set(time.Date(2026, 1, 13, 12, 0, 0, 0, time.UTC))
	marked, err := env.payments.MarkOverduePayments(ctx)
	require.NoError(t, err)
	assert.Zero(t, marked, "due today is not overdue")

	env.clock.Set(time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC))
	marked, err = env.payments.MarkOverduePayments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, marked, "deposit and first rent")

	schedule, err := env.payments.ListPayments(ctx, b.ID, env.renterID)
	require.NoError(t, err)
	assert.Equal(t, string(payment.StatusOverdue), schedule.Payments[0].Status)

	paid, err := env.payments.RecordGatewayPayment(ctx, schedule.Payments[0].ID, "late")
	require.NoError(t, err, "overdue payments can still be settled")
	assert.Equal(t, string(payment.StatusPaid), paid.Status)

	_, err = env.payments.ListPayments(ctx, b.ID, uuid.New())
	var pe *domain.PermissionError
	assert.ErrorAs(t, err, &pe)
}
