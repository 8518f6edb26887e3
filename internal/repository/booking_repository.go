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

	bookingDomain "github.com/estatery/service-rental/internal/domain/booking"
	"github.com/estatery/service-rental/internal/platform/domain"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PropertyID        uuid.UUID       `gorm:"type:uuid;index:idx_bookings_property_dates;not null"`
	HostID            uuid.UUID       `gorm:"type:uuid;index;not null"`
	RenterID          uuid.UUID       `gorm:"type:uuid;index;not null"`
	BookingType       string          `gorm:"not null;size:20;default:'monthly'"`
	CheckIn           time.Time       `gorm:"type:date;index:idx_bookings_property_dates;not null"`
	CheckOut          time.Time       `gorm:"type:date;index:idx_bookings_property_dates;not null"`
	AgreedMonthlyRate decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	MonthsBooked      int             `gorm:"not null"`
	TotalPrice        decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	SecurityDeposit   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	DiscountApplied   decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0"`
	Currency          string          `gorm:"not null;size:3"`
	Status            string          `gorm:"not null;size:20;index"`
	RejectionReason   string          `gorm:"size:500"`
	SpecialRequests   string          `gorm:"size:1000"`
	ConfirmedAt       *time.Time      `gorm:""`
	ActivatedAt       *time.Time      `gorm:""`
	CancelledAt       *time.Time      `gorm:""`
	CompletedAt       *time.Time      `gorm:""`
	DepositPaid       bool            `gorm:"not null;default:false"`
	DepositPaidAt     *time.Time      `gorm:""`
	DepositRefunded   bool            `gorm:"not null;default:false"`
	DepositRefundedAt *time.Time      `gorm:""`
	Version           int64           `gorm:"not null;default:1"`
	CreatedAt         time.Time       `gorm:"not null"`
	UpdatedAt         time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// LockByID retrieves a booking with SELECT ... FOR UPDATE.
func (r *GormBookingRepository) LockByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormBookingRepository) find(q *gorm.DB, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := q.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, translateError(err, "find booking")
	}
	return toDomainBooking(&model)
}

// FindOverlapping returns the property's bookings in the statuses whose stay intersects
// [checkIn, checkOut). Back-to-back stays do not overlap.
func (r *GormBookingRepository) FindOverlapping(
	ctx context.Context,
	propertyID uuid.UUID,
	checkIn, checkOut time.Time,
	statuses []bookingDomain.BookingStatus,
	exclude *uuid.UUID,
) ([]*bookingDomain.Booking, error) {
	q := r.db.WithContext(ctx).
		Where("property_id = ? AND status IN ?", propertyID, statusStrings(statuses)).
		Where("check_in < ? AND check_out > ?", checkOut, checkIn)
	if exclude != nil {
		q = q.Where("id <> ?", *exclude)
	}

	var models []BookingModel
	if err := q.Order("check_in ASC").Find(&models).Error; err != nil {
		return nil, translateError(err, "find overlapping bookings")
	}
	return toDomainBookings(models)
}

// FindByPropertyAndStatus returns a property's bookings in the given statuses.
func (r *GormBookingRepository) FindByPropertyAndStatus(ctx context.Context, propertyID uuid.UUID, statuses []bookingDomain.BookingStatus) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("property_id = ? AND status IN ?", propertyID, statusStrings(statuses)).
		Order("check_in ASC").
		Find(&models).Error; err != nil {
		return nil, translateError(err, "find property bookings")
	}
	return toDomainBookings(models)
}

// FindByRenterID retrieves bookings made by a renter with pagination.
func (r *GormBookingRepository) FindByRenterID(ctx context.Context, renterID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.paged(ctx, "renter_id = ?", renterID, page, limit)
}

// FindByHostID retrieves bookings on a host's properties with pagination.
func (r *GormBookingRepository) FindByHostID(ctx context.Context, hostID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.paged(ctx, "host_id = ?", hostID, page, limit)
}

func (r *GormBookingRepository) paged(ctx context.Context, cond string, id uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where(cond, id).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where(cond, id).
		Order("created_at DESC").
		Offset(pageOffset(page, limit)).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find bookings: %w", err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// FindDueForActivation returns confirmed bookings whose check-in is on or before date.
func (r *GormBookingRepository) FindDueForActivation(ctx context.Context, date time.Time) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND check_in <= ?", string(bookingDomain.StatusConfirmed), domain.DateOf(date)).
		Order("check_in ASC").
		Find(&models).Error; err != nil {
		return nil, translateError(err, "find bookings due for activation")
	}
	return toDomainBookings(models)
}

// FindDueForCompletion returns active bookings whose check-out is on or before date.
func (r *GormBookingRepository) FindDueForCompletion(ctx context.Context, date time.Time) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND check_out <= ?", string(bookingDomain.StatusActive), domain.DateOf(date)).
		Order("check_out ASC").
		Find(&models).Error; err != nil {
		return nil, translateError(err, "find bookings due for completion")
	}
	return toDomainBookings(models)
}

// CountByStatusForHost returns booking counts grouped by status for a host.
func (r *GormBookingRepository) CountByStatusForHost(ctx context.Context, hostID uuid.UUID) (map[string]int64, error) {
	return r.countByStatus(r.db.WithContext(ctx).Where("host_id = ?", hostID))
}

// CountByStatusForRenter returns booking counts grouped by status for a renter.
func (r *GormBookingRepository) CountByStatusForRenter(ctx context.Context, renterID uuid.UUID) (map[string]int64, error) {
	return r.countByStatus(r.db.WithContext(ctx).Where("renter_id = ?", renterID))
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return r.countByStatus(r.db.WithContext(ctx))
}

func (r *GormBookingRepository) countByStatus(q *gorm.DB) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := q.Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// SumRevenueForHost totals the price of a host's bookings in the statuses.
func (r *GormBookingRepository) SumRevenueForHost(ctx context.Context, hostID uuid.UUID, statuses []bookingDomain.BookingStatus) (decimal.Decimal, error) {
	var sum decimal.Decimal
	row := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("COALESCE(SUM(total_price), 0)").
		Where("host_id = ? AND status IN ?", hostID, statusStrings(statuses)).
		Row()
	if err := row.Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum host revenue: %w", err)
	}
	return sum, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	if err := r.db.WithContext(ctx).Create(toBookingModel(bk)).Error; err != nil {
		return translateError(err, "save booking")
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	// IncrementVersion has already been called, so the stored row must hold version-1.
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"check_in":            model.CheckIn,
			"check_out":           model.CheckOut,
			"special_requests":    model.SpecialRequests,
			"currency":            model.Currency,
			"agreed_monthly_rate": model.AgreedMonthlyRate,
			"months_booked":       model.MonthsBooked,
			"total_price":         model.TotalPrice,
			"security_deposit":    model.SecurityDeposit,
			"discount_applied":    model.DiscountApplied,
			"status":              model.Status,
			"rejection_reason":    model.RejectionReason,
			"confirmed_at":        model.ConfirmedAt,
			"activated_at":        model.ActivatedAt,
			"cancelled_at":        model.CancelledAt,
			"completed_at":        model.CompletedAt,
			"deposit_paid":        model.DepositPaid,
			"deposit_paid_at":     model.DepositPaidAt,
			"deposit_refunded":    model.DepositRefunded,
			"deposit_refunded_at": model.DepositRefundedAt,
			"version":             model.Version,
			"updated_at":          model.UpdatedAt,
		})

	if result.Error != nil {
		return translateError(result.Error, "update booking")
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// --- Conversion Helpers ---

func statusStrings(statuses []bookingDomain.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	s := bk.Snapshot()
	return &BookingModel{
		ID:                s.ID,
		PropertyID:        s.PropertyID,
		HostID:            s.HostID,
		RenterID:          s.RenterID,
		BookingType:       string(s.BookingType),
		CheckIn:           s.CheckIn,
		CheckOut:          s.CheckOut,
		AgreedMonthlyRate: s.MonthlyRate,
		MonthsBooked:      s.MonthsBooked,
		TotalPrice:        s.TotalPrice,
		SecurityDeposit:   s.SecurityDeposit,
		DiscountApplied:   s.DiscountPct,
		Currency:          s.Currency,
		Status:            string(s.Status),
		RejectionReason:   s.Reason,
		SpecialRequests:   s.SpecialRequests,
		ConfirmedAt:       s.ConfirmedAt,
		ActivatedAt:       s.ActivatedAt,
		CancelledAt:       s.CancelledAt,
		CompletedAt:       s.CompletedAt,
		DepositPaid:       s.DepositPaid,
		DepositPaidAt:     s.DepositPaidAt,
		DepositRefunded:   s.DepositRefunded,
		DepositRefundedAt: s.DepositRefundedAt,
		Version:           s.Version,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return bookingDomain.ReconstructBooking(bookingDomain.Snapshot{
		ID:                m.ID,
		PropertyID:        m.PropertyID,
		HostID:            m.HostID,
		RenterID:          m.RenterID,
		BookingType:       bookingDomain.BookingType(m.BookingType),
		CheckIn:           domain.DateOf(m.CheckIn),
		CheckOut:          domain.DateOf(m.CheckOut),
		MonthlyRate:       m.AgreedMonthlyRate,
		MonthsBooked:      m.MonthsBooked,
		TotalPrice:        m.TotalPrice,
		SecurityDeposit:   m.SecurityDeposit,
		DiscountPct:       m.DiscountApplied,
		Currency:          m.Currency,
		Status:            status,
		Reason:            m.RejectionReason,
		SpecialRequests:   m.SpecialRequests,
		ConfirmedAt:       m.ConfirmedAt,
		ActivatedAt:       m.ActivatedAt,
		CancelledAt:       m.CancelledAt,
		CompletedAt:       m.CompletedAt,
		DepositPaid:       m.DepositPaid,
		DepositPaidAt:     m.DepositPaidAt,
		DepositRefunded:   m.DepositRefunded,
		DepositRefundedAt: m.DepositRefundedAt,
		Version:           m.Version,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}), nil
}

func toDomainBookings(models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}
