package review

import (
	"context"

	"github.com/google/uuid"
)

// ReviewRepository defines the persistence contract for property reviews.
type ReviewRepository interface {
	// Save inserts a review. A second review for the same booking is a conflict.
	Save(ctx context.Context, r *PropertyReview) error
	Update(ctx context.Context, r *PropertyReview) error
	FindByID(ctx context.Context, id uuid.UUID) (*PropertyReview, error)
	ExistsForBooking(ctx context.Context, bookingID uuid.UUID) (bool, error)
	FindByPropertyID(ctx context.Context, propertyID uuid.UUID, page, limit int) ([]*PropertyReview, int64, error)

	// AverageRating returns the mean rating of a property and the number of reviews.
	AverageRating(ctx context.Context, propertyID uuid.UUID) (float64, int64, error)
}
