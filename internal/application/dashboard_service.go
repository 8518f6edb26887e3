package application

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/estatery/service-rental/internal/application/uow"
	"github.com/estatery/service-rental/internal/domain/booking"
)

// revenueStatuses are the statuses whose total counts as earned or committed revenue.
var revenueStatuses = []booking.BookingStatus{booking.StatusConfirmed, booking.StatusActive, booking.StatusCompleted}

// HostDashboardDTO summarises an owner's rental business.
type HostDashboardDTO struct {
	Properties          int              `json:"properties"`
	BookingsByStatus    map[string]int64 `json:"bookings_by_status"`
	PendingRequests     int64            `json:"pending_requests"`
	TotalRevenue        decimal.Decimal  `json:"total_revenue"`
	OutstandingPayments decimal.Decimal  `json:"outstanding_payments"`
}

// TenantDashboardDTO summarises a renter's stays.
type TenantDashboardDTO struct {
	BookingsByStatus    map[string]int64 `json:"bookings_by_status"`
	ActiveStays         int64            `json:"active_stays"`
	OutstandingPayments decimal.Decimal  `json:"outstanding_payments"`
}

// DashboardService builds per-user summaries.
type DashboardService struct {
	tx uow.TxManager
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(tx uow.TxManager) *DashboardService {
	return &DashboardService{tx: tx}
}

// HostDashboard summarises bookings and money across the owner's properties.
func (s *DashboardService) HostDashboard(ctx context.Context, hostID uuid.UUID) (*HostDashboardDTO, error) {
	repos := s.tx.Repositories()
	ids, err := repos.Properties().ListIDsByOwner(ctx, hostID)
	if err != nil {
		return nil, err
	}
	counts, err := repos.Bookings().CountByStatusForHost(ctx, hostID)
	if err != nil {
		return nil, err
	}
	revenue, err := repos.Bookings().SumRevenueForHost(ctx, hostID, revenueStatuses)
	if err != nil {
		return nil, err
	}
	outstanding, err := repos.Payments().SumOutstandingForHost(ctx, hostID)
	if err != nil {
		return nil, err
	}

	return &HostDashboardDTO{
		Properties:          len(ids),
		BookingsByStatus:    withAllStatuses(counts),
		PendingRequests:     counts[string(booking.StatusPending)],
		TotalRevenue:        revenue,
		OutstandingPayments: outstanding,
	}, nil
}

// TenantDashboard summarises the renter's bookings and what they still owe.
func (s *DashboardService) TenantDashboard(ctx context.Context, renterID uuid.UUID) (*TenantDashboardDTO, error) {
	repos := s.tx.Repositories()
	counts, err := repos.Bookings().CountByStatusForRenter(ctx, renterID)
	if err != nil {
		return nil, err
	}
	outstanding, err := repos.Payments().SumOutstandingForRenter(ctx, renterID)
	if err != nil {
		return nil, err
	}
	return &TenantDashboardDTO{
		BookingsByStatus:    withAllStatuses(counts),
		ActiveStays:         counts[string(booking.StatusActive)],
		OutstandingPayments: outstanding,
	}, nil
}

func withAllStatuses(counts map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(booking.AllStatuses))
	for _, st := range booking.AllStatuses {
		out[string(st)] = counts[string(st)]
	}
	return out
}
