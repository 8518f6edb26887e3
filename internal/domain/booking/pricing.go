package booking

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/estatery/service-rental/internal/domain/property"
	"github.com/estatery/service-rental/internal/platform/domain"
)

var hundred = decimal.NewFromInt(100)

// discountTiers are checked in order; the first tier whose threshold is met applies.
var discountTiers = []struct {
	minMonths int
	percent   decimal.Decimal
}{
	{12, decimal.NewFromInt(15)},
	{6, decimal.NewFromInt(10)},
	{3, decimal.NewFromInt(5)},
}

// PriceQuote is the priced breakdown of a stay.
type PriceQuote struct {
	Months          int             `json:"months"`
	MonthlyRate     decimal.Decimal `json:"monthly_rate"`
	BaseTotal       decimal.Decimal `json:"base_total"`
	DiscountPct     decimal.Decimal `json:"discount_pct"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	Total           decimal.Decimal `json:"total"`
	SecurityDeposit decimal.Decimal `json:"security_deposit"`
}

// PricingStrategy defines the interface for pricing a stay.
type PricingStrategy interface {
	// Quote prices a stay of the given number of months at the property.
	Quote(p *property.Property, months int) (PriceQuote, error)
}

// MonthlyPricingStrategy prices stays at the effective monthly rate with tiered discounts.
type MonthlyPricingStrategy struct{}

// NewMonthlyPricingStrategy creates a new MonthlyPricingStrategy.
func NewMonthlyPricingStrategy() *MonthlyPricingStrategy {
	return &MonthlyPricingStrategy{}
}

// Quote computes the price breakdown.
//
// Pricing formula:
//   - Monthly rate: listed monthly price, else daily price x 30.44
//   - Discount: 15% from 12 months, 10% from 6, 5% from 3
//   - Total: rate x months x (1 - discount)
//   - Deposit: rate x security deposit months
//
// Amounts are rounded to cents at the end so the rate is never rounded twice.
func (s *MonthlyPricingStrategy) Quote(p *property.Property, months int) (PriceQuote, error) {
	if months < 1 {
		return PriceQuote{}, domain.NewValidationError("stay must be at least one month")
	}
	rate := p.EffectiveMonthlyPrice()
	if !rate.IsPositive() {
		return PriceQuote{}, domain.NewValidationError("property has no valid monthly price")
	}

	pct := DiscountPercent(months)
	base := rate.Mul(decimal.NewFromInt(int64(months)))
	total := base.Mul(hundred.Sub(pct)).Div(hundred)

	return PriceQuote{
		Months:          months,
		MonthlyRate:     rate.Round(2),
		BaseTotal:       base.Round(2),
		DiscountPct:     pct,
		DiscountAmount:  base.Sub(total).Round(2),
		Total:           total.Round(2),
		SecurityDeposit: p.SecurityDepositAmount().Round(2),
	}, nil
}

// DiscountPercent returns the tiered long-stay discount for a number of months.
func DiscountPercent(months int) decimal.Decimal {
	for _, tier := range discountTiers {
		if months >= tier.minMonths {
			return tier.percent
		}
	}
	return decimal.Zero
}

// calendarMonths counts calendar months from a to b. A trailing partial month counts as a full one.
func calendarMonths(a, b time.Time) int {
	months := (b.Year()-a.Year())*12 + int(b.Month()-a.Month())
	if b.Day() > a.Day() {
		months++
	}
	return months
}

// MonthsBetween returns the billable months of a stay, never fewer than minStay.
func MonthsBetween(checkIn, checkOut time.Time, minStay int) int {
	months := calendarMonths(checkIn, checkOut)
	if months < minStay {
		return minStay
	}
	return months
}

// MonthsRemaining returns how many billable months of a confirmed or active stay are
// left as of today.
func MonthsRemaining(b *Booking, today time.Time) int {
	if b.Status() != StatusConfirmed && b.Status() != StatusActive {
		return 0
	}
	today = domain.DateOf(today)
	if today.Before(b.CheckIn()) {
		return b.MonthsBooked()
	}
	if !today.Before(b.CheckOut()) {
		return 0
	}
	return calendarMonths(today, b.CheckOut())
}
