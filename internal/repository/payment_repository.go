package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/estatery/service-rental/internal/domain/payment"
	"github.com/estatery/service-rental/internal/platform/domain"
)

var outstandingStatuses = []string{string(payment.StatusPending), string(payment.StatusOverdue)}

// PaymentModel is the GORM model for the booking_payments table.
type PaymentModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BookingID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uq_booking_payment_slot,priority:1"`
	PaymentType   string          `gorm:"not null;size:20;uniqueIndex:uq_booking_payment_slot,priority:3"`
	MonthNumber   int             `gorm:"not null;uniqueIndex:uq_booking_payment_slot,priority:2"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	DueDate       time.Time       `gorm:"type:date;not null;index"`
	Status        string          `gorm:"not null;size:20;index"`
	PaidDate      *time.Time      `gorm:"type:date"`
	TransactionID string          `gorm:"size:100"`
	CreatedAt     time.Time       `gorm:"not null"`
	UpdatedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (PaymentModel) TableName() string {
	return "booking_payments"
}

// GormPaymentRepository is the GORM-based implementation of PaymentRepository.
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository.
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// SaveAll inserts a schedule in one batch.
func (r *GormPaymentRepository) SaveAll(ctx context.Context, payments []*payment.BookingPayment) error {
	if len(payments) == 0 {
		return nil
	}
	models := make([]*PaymentModel, len(payments))
	for i, p := range payments {
		models[i] = toPaymentModel(p)
	}
	if err := r.db.WithContext(ctx).CreateInBatches(models, 100).Error; err != nil {
		return translateError(err, "save payment schedule")
	}
	return nil
}

// DeleteByBookingID removes a booking's schedule.
func (r *GormPaymentRepository) DeleteByBookingID(ctx context.Context, bookingID uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).Delete(&PaymentModel{}).Error; err != nil {
		return translateError(err, "delete payment schedule")
	}
	return nil
}

// FindByID retrieves a payment by its unique identifier.
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.BookingPayment, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// LockByID retrieves a payment with SELECT ... FOR UPDATE.
func (r *GormPaymentRepository) LockByID(ctx context.Context, id uuid.UUID) (*payment.BookingPayment, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormPaymentRepository) find(q *gorm.DB, id uuid.UUID) (*payment.BookingPayment, error) {
	var model PaymentModel
	if err := q.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Payment", id.String())
		}
		return nil, translateError(err, "find payment")
	}
	return toDomainPayment(&model), nil
}

// FindByBookingID returns the schedule ordered by due date and month number.
func (r *GormPaymentRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*payment.BookingPayment, error) {
	var models []PaymentModel
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("due_date ASC, month_number ASC").
		Find(&models).Error; err != nil {
		return nil, translateError(err, "find booking payments")
	}
	return toDomainPayments(models), nil
}

// FindPendingDueBefore returns pending payments due strictly before date.
func (r *GormPaymentRepository) FindPendingDueBefore(ctx context.Context, date time.Time) ([]*payment.BookingPayment, error) {
	var models []PaymentModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND due_date < ?", string(payment.StatusPending), domain.DateOf(date)).
		Order("due_date ASC").
		Find(&models).Error; err != nil {
		return nil, translateError(err, "find due payments")
	}
	return toDomainPayments(models), nil
}

// Update persists a payment's settlement state.
func (r *GormPaymentRepository) Update(ctx context.Context, p *payment.BookingPayment) error {
	model := toPaymentModel(p)
	result := r.db.WithContext(ctx).
		Model(&PaymentModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"amount":         model.Amount,
			"due_date":       model.DueDate,
			"status":         model.Status,
			"paid_date":      model.PaidDate,
			"transaction_id": model.TransactionID,
			"updated_at":     model.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error, "update payment")
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Payment", model.ID.String())
	}
	return nil
}

// SumOutstandingForHost totals pending and overdue payments on a host's bookings.
func (r *GormPaymentRepository) SumOutstandingForHost(ctx context.Context, hostID uuid.UUID) (decimal.Decimal, error) {
	return r.sumOutstanding(ctx, "b.host_id = ?", hostID)
}

// SumOutstandingForRenter totals pending and overdue payments owed by a renter.
func (r *GormPaymentRepository) SumOutstandingForRenter(ctx context.Context, renterID uuid.UUID) (decimal.Decimal, error) {
	return r.sumOutstanding(ctx, "b.renter_id = ?", renterID)
}

func (r *GormPaymentRepository) sumOutstanding(ctx context.Context, cond string, id uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	row := r.db.WithContext(ctx).
		Table("booking_payments AS p").
		Joins("JOIN bookings b ON b.id = p.booking_id").
		Select("COALESCE(SUM(p.amount), 0)").
		Where(cond, id).
		Where("p.status IN ?", outstandingStatuses).
		Row()
	if err := row.Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum outstanding payments: %w", err)
	}
	return sum, nil
}

// --- Conversion Helpers ---

func toPaymentModel(p *payment.BookingPayment) *PaymentModel {
	return &PaymentModel{
		ID:            p.ID(),
		BookingID:     p.BookingID(),
		PaymentType:   string(p.Type()),
		MonthNumber:   p.MonthNumber(),
		Amount:        p.Amount(),
		DueDate:       p.DueDate(),
		Status:        string(p.Status()),
		PaidDate:      p.PaidDate(),
		TransactionID: p.TransactionID(),
		CreatedAt:     p.CreatedAt(),
		UpdatedAt:     p.UpdatedAt(),
	}
}

func toDomainPayment(m *PaymentModel) *payment.BookingPayment {
	var paid *time.Time
	if m.PaidDate != nil {
		d := domain.DateOf(*m.PaidDate)
		paid = &d
	}
	return payment.ReconstructPayment(
		m.ID,
		m.BookingID,
		payment.Type(m.PaymentType),
		m.MonthNumber,
		m.Amount,
		domain.DateOf(m.DueDate),
		payment.Status(m.Status),
		paid,
		m.TransactionID,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func toDomainPayments(models []PaymentModel) []*payment.BookingPayment {
	out := make([]*payment.BookingPayment, len(models))
	for i := range models {
		out[i] = toDomainPayment(&models[i])
	}
	return out
}
