package application

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/estatery/service-rental/internal/application/uow"
	"github.com/estatery/service-rental/internal/domain/booking"
	"github.com/estatery/service-rental/internal/domain/property"
	"github.com/estatery/service-rental/internal/platform/domain"
)

// PropertyService manages rental listings.
type PropertyService struct {
	tx       uow.TxManager
	notifier Notifier
	clock    Clock
	logger   *zap.Logger
}

// NewPropertyService creates a new PropertyService.
func NewPropertyService(tx uow.TxManager, notifier Notifier, clock Clock, logger *zap.Logger) *PropertyService {
	return &PropertyService{tx: tx, notifier: notifier, clock: clock, logger: logger}
}

// CreateProperty lists a new property for the owner.
func (s *PropertyService) CreateProperty(ctx context.Context, ownerID uuid.UUID, req CreatePropertyRequest) (*PropertyDTO, error) {
	terms, err := req.terms()
	if err != nil {
		return nil, err
	}
	p, err := property.NewProperty(ownerID, req.Title, req.City, terms, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.tx.Repositories().Properties().Save(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("property listed",
		zap.String("property_id", p.ID().String()),
		zap.String("owner_id", ownerID.String()),
	)
	result := toPropertyDTO(p)
	return &result, nil
}

// GetProperty returns a listing.
func (s *PropertyService) GetProperty(ctx context.Context, propertyID uuid.UUID) (*PropertyDTO, error) {
	p, err := s.tx.Repositories().Properties().FindByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	result := toPropertyDTO(p)
	return &result, nil
}

// ListOwnerProperties returns the owner's listings, newest first.
func (s *PropertyService) ListOwnerProperties(ctx context.Context, ownerID uuid.UUID, page, limit int) (*domain.PaginatedResult[PropertyDTO], error) {
	props, total, err := s.tx.Repositories().Properties().FindByOwnerID(ctx, ownerID, page, limit)
	if err != nil {
		return nil, err
	}
	dtos := make([]PropertyDTO, len(props))
	for i, p := range props {
		dtos[i] = toPropertyDTO(p)
	}
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// UpdateProperty replaces the owner's listing terms. Bookings already made keep the price
// they were quoted.
func (s *PropertyService) UpdateProperty(ctx context.Context, propertyID, ownerID uuid.UUID, req UpdatePropertyRequest) (*PropertyDTO, error) {
	terms, err := req.terms()
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	var p *property.Property
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context, tx uow.UnitOfWork) error {
		var err error
		p, err = tx.Properties().LockByID(ctx, propertyID)
		if err != nil {
			return err
		}
		if !p.IsOwnedBy(ownerID) {
			return domain.NewPermissionError("only the owner can update this property")
		}
		if err := p.Update(req.Title, req.City, terms, now); err != nil {
			return err
		}
		p.IncrementVersion()
		return tx.Properties().Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("property updated", zap.String("property_id", p.ID().String()))
	result := toPropertyDTO(p)
	return &result, nil
}

// WithdrawProperty takes a listing off the market and cancels its pending requests.
// Confirmed and active stays are honoured.
func (s *PropertyService) WithdrawProperty(ctx context.Context, propertyID, ownerID uuid.UUID) (*PropertyDTO, error) {
	now := s.clock.Now()
	var (
		p         *property.Property
		cancelled []*booking.Booking
		notices   = map[uuid.UUID][]booking.Intent{}
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, tx uow.UnitOfWork) error {
		var err error
		p, err = tx.Properties().LockByID(ctx, propertyID)
		if err != nil {
			return err
		}
		if !p.IsOwnedBy(ownerID) {
			return domain.NewPermissionError("only the owner can withdraw this property")
		}
		if err := p.Withdraw(now); err != nil {
			return err
		}
		p.IncrementVersion()
		if err := tx.Properties().Update(ctx, p); err != nil {
			return err
		}

		pending, err := tx.Bookings().FindByPropertyAndStatus(ctx, p.ID(), []booking.BookingStatus{booking.StatusPending})
		if err != nil {
			return err
		}
		for _, bk := range pending {
			if err := bk.CancelForWithdrawal(now); err != nil {
				return err
			}
			bk.IncrementVersion()
			if err := tx.Bookings().Update(ctx, bk); err != nil {
				return err
			}
			n, err := applyIntents(ctx, tx, bk, p, now)
			if err != nil {
				return err
			}
			notices[bk.ID()] = n
			cancelled = append(cancelled, bk)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("property withdrawn",
		zap.String("property_id", p.ID().String()),
		zap.Int("cancelled_bookings", len(cancelled)),
	)
	for _, bk := range cancelled {
		dispatchNotices(ctx, s.notifier, s.logger, bk, notices[bk.ID()])
	}
	result := toPropertyDTO(p)
	return &result, nil
}

func (r CreatePropertyRequest) terms() (property.Terms, error) {
	daily, err := parseMoney("daily_price", r.DailyPrice)
	if err != nil {
		return property.Terms{}, err
	}
	terms := property.Terms{
		DailyPrice:    daily,
		Currency:      property.Currency(r.Currency),
		MinStayMonths: r.MinStayMonths,
		MaxStayMonths: r.MaxStayMonths,
		CycleStartDay: r.MonthlyCycleStart,
	}
	if r.MonthlyPrice != nil {
		monthly, err := parseMoney("monthly_price", *r.MonthlyPrice)
		if err != nil {
			return property.Terms{}, err
		}
		terms.MonthlyPrice = &monthly
	}
	if r.SecurityDepositMonths != nil {
		months, err := parseMoney("security_deposit_months", *r.SecurityDepositMonths)
		if err != nil {
			return property.Terms{}, err
		}
		terms.DepositMonths = &months
	}
	return terms, nil
}

// parseMoney parses a decimal amount. Malformed input is a validation error, never a silent zero.
func parseMoney(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, domain.NewValidationError(field + " must be a decimal number")
	}
	return d, nil
}
