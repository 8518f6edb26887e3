package property

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/estatery/service-rental/internal/platform/domain"
)

// AverageDaysPerMonth converts a daily price into a monthly one when no monthly price is listed.
var AverageDaysPerMonth = decimal.RequireFromString("30.44")

const (
	DefaultMinStayMonths  = 12
	DefaultCycleStartDay  = 1
	MaxCycleStartDay      = 28
	defaultDepositMonths  = "2.0"
	maxSecurityDepositMon = 12
)

// Status is the listing status of a property.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusRented      Status = "rented"
	StatusMaintenance Status = "maintenance"
)

// IsValid returns true if the status is recognized.
func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusRented, StatusMaintenance:
		return true
	}
	return false
}

// Currency is an opaque ISO-ish code carried through pricing untouched.
type Currency string

const (
	CurrencyGHS Currency = "ghs"
	CurrencyUSD Currency = "usd"
	CurrencyCFA Currency = "cfa"
)

// IsValid returns true if the currency is one of the supported listing currencies.
func (c Currency) IsValid() bool {
	switch c {
	case CurrencyGHS, CurrencyUSD, CurrencyCFA:
		return true
	}
	return false
}

// Property is the aggregate root for a long-term rental listing.
type Property struct {
	id            uuid.UUID
	ownerID       uuid.UUID
	title         string
	city          string
	dailyPrice    decimal.Decimal
	monthlyPrice  *decimal.Decimal
	currency      Currency
	minStayMonths int
	maxStayMonths *int
	cycleStartDay int
	depositMonths decimal.Decimal
	status        Status
	version       int64
	createdAt     time.Time
	updatedAt     time.Time
}

// Terms are the owner-supplied commercial terms of a listing.
type Terms struct {
	DailyPrice    decimal.Decimal
	MonthlyPrice  *decimal.Decimal
	Currency      Currency
	MinStayMonths int
	MaxStayMonths *int
	CycleStartDay int
	DepositMonths *decimal.Decimal
}

// NewProperty validates the terms and creates an available listing.
func NewProperty(ownerID uuid.UUID, title, city string, terms Terms, now time.Time) (*Property, error) {
	if ownerID == uuid.Nil {
		return nil, domain.NewValidationError("owner ID is required")
	}
	title, terms, deposit, err := validateListing(title, terms)
	if err != nil {
		return nil, err
	}

	now = now.UTC()
	return &Property{
		id:            uuid.New(),
		ownerID:       ownerID,
		title:         title,
		city:          strings.TrimSpace(city),
		dailyPrice:    terms.DailyPrice,
		monthlyPrice:  terms.MonthlyPrice,
		currency:      terms.Currency,
		minStayMonths: terms.MinStayMonths,
		maxStayMonths: terms.MaxStayMonths,
		cycleStartDay: terms.CycleStartDay,
		depositMonths: deposit,
		status:        StatusAvailable,
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// validateListing applies defaults to the terms and checks them. It returns the trimmed
// title, the completed terms and the deposit months rounded to one decimal.
func validateListing(title string, terms Terms) (string, Terms, decimal.Decimal, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", terms, decimal.Zero, domain.NewValidationError("title is required")
	}
	if !terms.DailyPrice.IsPositive() {
		return "", terms, decimal.Zero, domain.NewValidationError("daily price must be positive")
	}
	if terms.MonthlyPrice != nil && !terms.MonthlyPrice.IsPositive() {
		return "", terms, decimal.Zero, domain.NewValidationError("monthly price must be positive when set")
	}
	if terms.Currency == "" {
		terms.Currency = CurrencyGHS
	}
	if !terms.Currency.IsValid() {
		return "", terms, decimal.Zero, domain.NewValidationError(fmt.Sprintf("unsupported currency: %s", terms.Currency))
	}
	if terms.MinStayMonths == 0 {
		terms.MinStayMonths = DefaultMinStayMonths
	}
	if terms.MinStayMonths < 1 {
		return "", terms, decimal.Zero, domain.NewValidationError("minimum stay must be at least 1 month")
	}
	if terms.MaxStayMonths != nil && *terms.MaxStayMonths < terms.MinStayMonths {
		return "", terms, decimal.Zero, domain.NewValidationError("maximum stay cannot be less than minimum stay")
	}
	if terms.CycleStartDay == 0 {
		terms.CycleStartDay = DefaultCycleStartDay
	}
	if terms.CycleStartDay < 1 || terms.CycleStartDay > MaxCycleStartDay {
		return "", terms, decimal.Zero, domain.NewValidationError("monthly cycle start must be between 1 and 28")
	}
	deposit := decimal.RequireFromString(defaultDepositMonths)
	if terms.DepositMonths != nil {
		deposit = terms.DepositMonths.Round(1)
	}
	if deposit.IsNegative() || deposit.GreaterThan(decimal.NewFromInt(maxSecurityDepositMon)) {
		return "", terms, decimal.Zero, domain.NewValidationError("security deposit months must be between 0 and 12")
	}
	return title, terms, deposit, nil
}

// ReconstructProperty rebuilds a Property from persistence data (no validation).
func ReconstructProperty(
	id, ownerID uuid.UUID,
	title, city string,
	terms Terms,
	status Status,
	version int64,
	createdAt, updatedAt time.Time,
) *Property {
	deposit := decimal.RequireFromString(defaultDepositMonths)
	if terms.DepositMonths != nil {
		deposit = *terms.DepositMonths
	}
	return &Property{
		id:            id,
		ownerID:       ownerID,
		title:         title,
		city:          city,
		dailyPrice:    terms.DailyPrice,
		monthlyPrice:  terms.MonthlyPrice,
		currency:      terms.Currency,
		minStayMonths: terms.MinStayMonths,
		maxStayMonths: terms.MaxStayMonths,
		cycleStartDay: terms.CycleStartDay,
		depositMonths: deposit,
		status:        status,
		version:       version,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// --- Getters ---

func (p *Property) ID() uuid.UUID                  { return p.id }
func (p *Property) OwnerID() uuid.UUID             { return p.ownerID }
func (p *Property) Title() string                  { return p.title }
func (p *Property) City() string                   { return p.city }
func (p *Property) DailyPrice() decimal.Decimal    { return p.dailyPrice }
func (p *Property) MonthlyPrice() *decimal.Decimal { return p.monthlyPrice }
func (p *Property) Currency() Currency             { return p.currency }
func (p *Property) MinStayMonths() int             { return p.minStayMonths }
func (p *Property) MaxStayMonths() *int            { return p.maxStayMonths }
func (p *Property) CycleStartDay() int             { return p.cycleStartDay }
func (p *Property) DepositMonths() decimal.Decimal { return p.depositMonths }
func (p *Property) Status() Status                 { return p.status }
func (p *Property) Version() int64                 { return p.version }
func (p *Property) CreatedAt() time.Time           { return p.createdAt }
func (p *Property) UpdatedAt() time.Time           { return p.updatedAt }

// EffectiveMonthlyPrice is the listed monthly price, or the daily price times 30.44.
func (p *Property) EffectiveMonthlyPrice() decimal.Decimal {
	if p.monthlyPrice != nil {
		return *p.monthlyPrice
	}
	return p.dailyPrice.Mul(AverageDaysPerMonth)
}

// SecurityDepositAmount is the effective monthly price times the deposit months.
func (p *Property) SecurityDepositAmount() decimal.Decimal {
	return p.EffectiveMonthlyPrice().Mul(p.depositMonths)
}

// IsOwnedBy reports whether the user owns this listing.
func (p *Property) IsOwnedBy(userID uuid.UUID) bool {
	return p.ownerID == userID
}

// IsBookable reports whether new bookings may be requested.
func (p *Property) IsBookable() bool {
	return p.status == StatusAvailable
}

// Withdraw takes the listing off the market.
func (p *Property) Withdraw(now time.Time) error {
	if p.status == StatusMaintenance {
		return domain.NewValidationError("property is already withdrawn")
	}
	p.status = StatusMaintenance
	p.updatedAt = now.UTC()
	return nil
}

// Update replaces the listing details and terms. Existing bookings keep the rate and
// deposit they were priced with.
func (p *Property) Update(title, city string, terms Terms, now time.Time) error {
	title, terms, deposit, err := validateListing(title, terms)
	if err != nil {
		return err
	}
	p.title = title
	p.city = strings.TrimSpace(city)
	p.dailyPrice = terms.DailyPrice
	p.monthlyPrice = terms.MonthlyPrice
	p.currency = terms.Currency
	p.minStayMonths = terms.MinStayMonths
	p.maxStayMonths = terms.MaxStayMonths
	p.cycleStartDay = terms.CycleStartDay
	p.depositMonths = deposit
	p.updatedAt = now.UTC()
	return nil
}

// IncrementVersion bumps the optimistic locking version.
func (p *Property) IncrementVersion() {
	p.version++
}
