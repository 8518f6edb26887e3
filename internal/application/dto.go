package application

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/estatery/service-rental/internal/domain/booking"
	"github.com/estatery/service-rental/internal/domain/payment"
	"github.com/estatery/service-rental/internal/domain/property"
	"github.com/estatery/service-rental/internal/domain/review"
	"github.com/estatery/service-rental/internal/platform/domain"
)

// --- Requests ---

// StayRequest names a property and a date range in YYYY-MM-DD form.
type StayRequest struct {
	PropertyID uuid.UUID `json:"property_id" binding:"required"`
	CheckIn    string    `json:"check_in" binding:"required"`
	CheckOut   string    `json:"check_out" binding:"required"`
}

func (r StayRequest) dates() (time.Time, time.Time, error) {
	in, err := domain.ParseDate("check_in", r.CheckIn)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	out, err := domain.ParseDate("check_out", r.CheckOut)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return in, out, nil
}

// CreateBookingRequest holds the data needed to request a booking.
type CreateBookingRequest struct {
	StayRequest
	BookingType     string `json:"booking_type"`
	SpecialRequests string `json:"special_requests"`
}

// UpdateBookingRequest holds a renter's edit to a pending booking.
type UpdateBookingRequest struct {
	CheckIn         string  `json:"check_in" binding:"required"`
	CheckOut        string  `json:"check_out" binding:"required"`
	SpecialRequests *string `json:"special_requests"`
}

// CreatePropertyRequest holds a new listing's terms. Prices are decimal strings.
type CreatePropertyRequest struct {
	Title                 string  `json:"title" binding:"required"`
	City                  string  `json:"city"`
	DailyPrice            string  `json:"daily_price" binding:"required"`
	MonthlyPrice          *string `json:"monthly_price"`
	Currency              string  `json:"currency"`
	MinStayMonths         int     `json:"min_stay_months"`
	MaxStayMonths         *int    `json:"max_stay_months"`
	MonthlyCycleStart     int     `json:"monthly_cycle_start"`
	SecurityDepositMonths *string `json:"security_deposit_months"`
}

// UpdatePropertyRequest replaces a listing's details and terms.
type UpdatePropertyRequest struct {
	CreatePropertyRequest
}

// CreateReviewRequest holds a renter's review.
type CreateReviewRequest struct {
	BookingID uuid.UUID `json:"booking_id" binding:"required"`
	Rating    int       `json:"rating" binding:"required"`
	Comment   string    `json:"comment" binding:"required"`
}

// --- Responses ---

// PropertyDTO is the response representation of a property.
type PropertyDTO struct {
	ID                    uuid.UUID        `json:"id"`
	OwnerID               uuid.UUID        `json:"owner_id"`
	Title                 string           `json:"title"`
	City                  string           `json:"city"`
	DailyPrice            decimal.Decimal  `json:"daily_price"`
	MonthlyPrice          *decimal.Decimal `json:"monthly_price,omitempty"`
	EffectiveMonthlyPrice decimal.Decimal  `json:"effective_monthly_price"`
	Currency              string           `json:"currency"`
	MinStayMonths         int              `json:"min_stay_months"`
	MaxStayMonths         *int             `json:"max_stay_months,omitempty"`
	MonthlyCycleStart     int              `json:"monthly_cycle_start"`
	SecurityDepositMonths decimal.Decimal  `json:"security_deposit_months"`
	SecurityDeposit       decimal.Decimal  `json:"security_deposit"`
	Status                string           `json:"status"`
	CreatedAt             time.Time        `json:"created_at"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID                uuid.UUID       `json:"id"`
	PropertyID        uuid.UUID       `json:"property_id"`
	HostID            uuid.UUID       `json:"host_id"`
	RenterID          uuid.UUID       `json:"renter_id"`
	BookingType       string          `json:"booking_type"`
	CheckIn           string          `json:"check_in"`
	CheckOut          string          `json:"check_out"`
	MonthlyRate       decimal.Decimal `json:"agreed_monthly_rate"`
	MonthsBooked      int             `json:"months_booked"`
	MonthsRemaining   int             `json:"months_remaining"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	SecurityDeposit   decimal.Decimal `json:"security_deposit"`
	DiscountApplied   decimal.Decimal `json:"discount_applied"`
	Currency          string          `json:"currency"`
	Status            string          `json:"status"`
	Reason            string          `json:"rejection_reason,omitempty"`
	SpecialRequests   string          `json:"special_requests,omitempty"`
	ConfirmedAt       *time.Time      `json:"confirmed_at,omitempty"`
	ActivatedAt       *time.Time      `json:"activated_at,omitempty"`
	CancelledAt       *time.Time      `json:"cancelled_at,omitempty"`
	CompletedAt       *time.Time      `json:"completed_at,omitempty"`
	DepositPaid       bool            `json:"deposit_paid"`
	DepositPaidAt     *time.Time      `json:"deposit_paid_at,omitempty"`
	DepositRefunded   bool            `json:"deposit_refunded"`
	DepositRefundedAt *time.Time      `json:"deposit_refunded_at,omitempty"`
	Version           int64           `json:"version"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// PaymentDTO is the response representation of a booking payment.
type PaymentDTO struct {
	ID            uuid.UUID       `json:"id"`
	BookingID     uuid.UUID       `json:"booking_id"`
	PaymentType   string          `json:"payment_type"`
	MonthNumber   int             `json:"month_number"`
	Amount        decimal.Decimal `json:"amount"`
	DueDate       string          `json:"due_date"`
	Status        string          `json:"status"`
	PaidDate      *string         `json:"paid_date,omitempty"`
	TransactionID string          `json:"transaction_id,omitempty"`
}

// PaymentScheduleDTO is a booking's payments plus totals.
type PaymentScheduleDTO struct {
	BookingID uuid.UUID       `json:"booking_id"`
	Payments  []PaymentDTO    `json:"payments"`
	Summary   payment.Summary `json:"summary"`
}

// ReviewDTO is the response representation of a property review.
type ReviewDTO struct {
	ID              uuid.UUID  `json:"id"`
	BookingID       uuid.UUID  `json:"booking_id"`
	PropertyID      uuid.UUID  `json:"property_id"`
	RenterID        uuid.UUID  `json:"renter_id"`
	Rating          int        `json:"rating"`
	Comment         string     `json:"comment"`
	HostResponse    string     `json:"host_response,omitempty"`
	HostRespondedAt *time.Time `json:"host_responded_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// PropertyReviewsDTO is a page of reviews plus the property's rating.
type PropertyReviewsDTO struct {
	domain.PaginatedResult[ReviewDTO]
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int64   `json:"review_count"`
}

// QuoteDTO prices a prospective stay.
type QuoteDTO struct {
	PropertyID uuid.UUID          `json:"property_id"`
	CheckIn    string             `json:"check_in"`
	CheckOut   string             `json:"check_out"`
	Currency   string             `json:"currency"`
	Available  bool               `json:"available"`
	Quote      booking.PriceQuote `json:"quote"`
}

// AvailabilityDTO answers an availability check.
type AvailabilityDTO struct {
	PropertyID uuid.UUID `json:"property_id"`
	CheckIn    string    `json:"check_in"`
	CheckOut   string    `json:"check_out"`
	Available  bool      `json:"available"`
}

// CalendarDTO is a month of day-by-day availability.
type CalendarDTO struct {
	PropertyID uuid.UUID                 `json:"property_id"`
	Year       int                       `json:"year"`
	Month      int                       `json:"month"`
	Days       []booking.DayAvailability `json:"days"`
}

// --- Mapping ---

func toPropertyDTO(p *property.Property) PropertyDTO {
	return PropertyDTO{
		ID:                    p.ID(),
		OwnerID:               p.OwnerID(),
		Title:                 p.Title(),
		City:                  p.City(),
		DailyPrice:            p.DailyPrice(),
		MonthlyPrice:          p.MonthlyPrice(),
		EffectiveMonthlyPrice: p.EffectiveMonthlyPrice().Round(2),
		Currency:              string(p.Currency()),
		MinStayMonths:         p.MinStayMonths(),
		MaxStayMonths:         p.MaxStayMonths(),
		MonthlyCycleStart:     p.CycleStartDay(),
		SecurityDepositMonths: p.DepositMonths(),
		SecurityDeposit:       p.SecurityDepositAmount().Round(2),
		Status:                string(p.Status()),
		CreatedAt:             p.CreatedAt(),
	}
}

func toBookingDTO(b *booking.Booking, today time.Time) BookingDTO {
	return BookingDTO{
		ID:                b.ID(),
		PropertyID:        b.PropertyID(),
		HostID:            b.HostID(),
		RenterID:          b.RenterID(),
		BookingType:       string(b.BookingType()),
		CheckIn:           domain.FormatDate(b.CheckIn()),
		CheckOut:          domain.FormatDate(b.CheckOut()),
		MonthlyRate:       b.MonthlyRate(),
		MonthsBooked:      b.MonthsBooked(),
		MonthsRemaining:   booking.MonthsRemaining(b, today),
		TotalPrice:        b.TotalPrice(),
		SecurityDeposit:   b.SecurityDeposit(),
		DiscountApplied:   b.DiscountPct(),
		Currency:          b.Currency(),
		Status:            string(b.Status()),
		Reason:            b.Reason(),
		SpecialRequests:   b.SpecialRequests(),
		ConfirmedAt:       b.ConfirmedAt(),
		ActivatedAt:       b.ActivatedAt(),
		CancelledAt:       b.CancelledAt(),
		CompletedAt:       b.CompletedAt(),
		DepositPaid:       b.DepositPaid(),
		DepositPaidAt:     b.DepositPaidAt(),
		DepositRefunded:   b.DepositRefunded(),
		DepositRefundedAt: b.DepositRefundedAt(),
		Version:           b.Version(),
		CreatedAt:         b.CreatedAt(),
		UpdatedAt:         b.UpdatedAt(),
	}
}

func toBookingDTOs(bookings []*booking.Booking, today time.Time) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, b := range bookings {
		dtos[i] = toBookingDTO(b, today)
	}
	return dtos
}

func toPaymentDTO(p *payment.BookingPayment) PaymentDTO {
	dto := PaymentDTO{
		ID:            p.ID(),
		BookingID:     p.BookingID(),
		PaymentType:   string(p.Type()),
		MonthNumber:   p.MonthNumber(),
		Amount:        p.Amount(),
		DueDate:       domain.FormatDate(p.DueDate()),
		Status:        string(p.Status()),
		TransactionID: p.TransactionID(),
	}
	if p.PaidDate() != nil {
		paid := domain.FormatDate(*p.PaidDate())
		dto.PaidDate = &paid
	}
	return dto
}

func toReviewDTO(r *review.PropertyReview) ReviewDTO {
	return ReviewDTO{
		ID:              r.ID(),
		BookingID:       r.BookingID(),
		PropertyID:      r.PropertyID(),
		RenterID:        r.RenterID(),
		Rating:          r.Rating(),
		Comment:         r.Comment(),
		HostResponse:    r.HostResponse(),
		HostRespondedAt: r.HostRespondedAt(),
		CreatedAt:       r.CreatedAt(),
	}
}

func notificationFor(b *booking.Booking) BookingNotification {
	return BookingNotification{
		BookingID:  b.ID(),
		PropertyID: b.PropertyID(),
		RenterID:   b.RenterID(),
		HostID:     b.HostID(),
		Status:     string(b.Status()),
		CheckIn:    domain.FormatDate(b.CheckIn()),
		CheckOut:   domain.FormatDate(b.CheckOut()),
		Reason:     b.Reason(),
	}
}
