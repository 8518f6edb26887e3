package application

import (
	"context"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/estatery/service-rental/internal/application/uow"
	"github.com/estatery/service-rental/internal/domain/booking"
	"github.com/estatery/service-rental/internal/domain/review"
	"github.com/estatery/service-rental/internal/platform/domain"
)

// ReviewService handles post-stay reviews.
type ReviewService struct {
	tx     uow.TxManager
	clock  Clock
	logger *zap.Logger
}

// NewReviewService creates a new ReviewService.
func NewReviewService(tx uow.TxManager, clock Clock, logger *zap.Logger) *ReviewService {
	return &ReviewService{tx: tx, clock: clock, logger: logger}
}

// CreateReview records the renter's review of a completed stay.
func (s *ReviewService) CreateReview(ctx context.Context, renterID uuid.UUID, req CreateReviewRequest) (*ReviewDTO, error) {
	now := s.clock.Now()
	var r *review.PropertyReview
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, tx uow.UnitOfWork) error {
		bk, err := tx.Bookings().FindByID(ctx, req.BookingID)
		if err != nil {
			return err
		}
		exists, err := tx.Reviews().ExistsForBooking(ctx, bk.ID())
		if err != nil {
			return err
		}
		r, err = review.NewReview(subjectOf(bk), renterID, req.Rating, req.Comment, exists, now)
		if err != nil {
			return err
		}
		return tx.Reviews().Save(ctx, r)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("review created",
		zap.String("review_id", r.ID().String()),
		zap.String("booking_id", r.BookingID().String()),
	)
	result := toReviewDTO(r)
	return &result, nil
}

// RespondToReview records the property owner's reply.
func (s *ReviewService) RespondToReview(ctx context.Context, reviewID, ownerID uuid.UUID, response string) (*ReviewDTO, error) {
	now := s.clock.Now()
	var r *review.PropertyReview
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, tx uow.UnitOfWork) error {
		var err error
		r, err = tx.Reviews().FindByID(ctx, reviewID)
		if err != nil {
			return err
		}
		if err := r.Respond(ownerID, response, now); err != nil {
			return err
		}
		return tx.Reviews().Update(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	result := toReviewDTO(r)
	return &result, nil
}

// ListPropertyReviews returns a page of reviews with the property's average rating.
func (s *ReviewService) ListPropertyReviews(ctx context.Context, propertyID uuid.UUID, page, limit int) (*PropertyReviewsDTO, error) {
	repos := s.tx.Repositories()
	if _, err := repos.Properties().FindByID(ctx, propertyID); err != nil {
		return nil, err
	}
	reviews, total, err := repos.Reviews().FindByPropertyID(ctx, propertyID, page, limit)
	if err != nil {
		return nil, err
	}
	avg, count, err := repos.Reviews().AverageRating(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	dtos := make([]ReviewDTO, len(reviews))
	for i, r := range reviews {
		dtos[i] = toReviewDTO(r)
	}
	return &PropertyReviewsDTO{
		PaginatedResult: domain.NewPaginatedResult(dtos, total, page, limit),
		AverageRating:   math.Round(avg*10) / 10,
		ReviewCount:     count,
	}, nil
}

func subjectOf(bk *booking.Booking) review.Subject {
	return review.Subject{
		BookingID:  bk.ID(),
		PropertyID: bk.PropertyID(),
		RenterID:   bk.RenterID(),
		HostID:     bk.HostID(),
		Completed:  bk.Status() == booking.StatusCompleted,
	}
}
