package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/estatery/service-rental/internal/domain/review"
	"github.com/estatery/service-rental/internal/platform/domain"
)

// ReviewModel is the GORM model for the property_reviews table.
type ReviewModel struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BookingID       uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null"`
	PropertyID      uuid.UUID  `gorm:"type:uuid;index;not null"`
	RenterID        uuid.UUID  `gorm:"type:uuid;not null"`
	HostID          uuid.UUID  `gorm:"type:uuid;not null"`
	Rating          int        `gorm:"not null"`
	Comment         string     `gorm:"type:text;not null"`
	HostResponse    string     `gorm:"type:text"`
	HostRespondedAt *time.Time `gorm:""`
	CreatedAt       time.Time  `gorm:"not null"`
	UpdatedAt       time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ReviewModel) TableName() string {
	return "property_reviews"
}

// GormReviewRepository is the GORM-based implementation of ReviewRepository.
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GormReviewRepository.
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// Save inserts a review; the unique booking_id index turns a second review into a conflict.
func (r *GormReviewRepository) Save(ctx context.Context, rv *review.PropertyReview) error {
	if err := r.db.WithContext(ctx).Create(toReviewModel(rv)).Error; err != nil {
		return translateError(err, "save review")
	}
	return nil
}

// Update persists the host's response.
func (r *GormReviewRepository) Update(ctx context.Context, rv *review.PropertyReview) error {
	result := r.db.WithContext(ctx).
		Model(&ReviewModel{}).
		Where("id = ?", rv.ID()).
		Updates(map[string]interface{}{
			"host_response":     rv.HostResponse(),
			"host_responded_at": rv.HostRespondedAt(),
			"updated_at":        rv.UpdatedAt(),
		})
	if result.Error != nil {
		return translateError(result.Error, "update review")
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Review", rv.ID().String())
	}
	return nil
}

// FindByID retrieves a review by its unique identifier.
func (r *GormReviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*review.PropertyReview, error) {
	var model ReviewModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Review", id.String())
		}
		return nil, fmt.Errorf("failed to find review by ID: %w", err)
	}
	return toDomainReview(&model), nil
}

// ExistsForBooking reports whether the booking has been reviewed.
func (r *GormReviewRepository) ExistsForBooking(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&ReviewModel{}).Where("booking_id = ?", bookingID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check review existence: %w", err)
	}
	return count > 0, nil
}

// FindByPropertyID retrieves a property's reviews, newest first.
func (r *GormReviewRepository) FindByPropertyID(ctx context.Context, propertyID uuid.UUID, page, limit int) ([]*review.PropertyReview, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&ReviewModel{}).Where("property_id = ?", propertyID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count property reviews: %w", err)
	}

	var models []ReviewModel
	if err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("created_at DESC").
		Offset(pageOffset(page, limit)).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find property reviews: %w", err)
	}

	reviews := make([]*review.PropertyReview, len(models))
	for i := range models {
		reviews[i] = toDomainReview(&models[i])
	}
	return reviews, total, nil
}

// AverageRating returns the mean rating of a property and the number of reviews.
func (r *GormReviewRepository) AverageRating(ctx context.Context, propertyID uuid.UUID) (float64, int64, error) {
	var (
		avg   float64
		count int64
	)
	row := r.db.WithContext(ctx).Model(&ReviewModel{}).
		Select("COALESCE(AVG(rating), 0), COUNT(*)").
		Where("property_id = ?", propertyID).
		Row()
	if err := row.Scan(&avg, &count); err != nil {
		return 0, 0, fmt.Errorf("failed to average ratings: %w", err)
	}
	return avg, count, nil
}

// --- Conversion Helpers ---

func toReviewModel(rv *review.PropertyReview) *ReviewModel {
	return &ReviewModel{
		ID:              rv.ID(),
		BookingID:       rv.BookingID(),
		PropertyID:      rv.PropertyID(),
		RenterID:        rv.RenterID(),
		HostID:          rv.HostID(),
		Rating:          rv.Rating(),
		Comment:         rv.Comment(),
		HostResponse:    rv.HostResponse(),
		HostRespondedAt: rv.HostRespondedAt(),
		CreatedAt:       rv.CreatedAt(),
		UpdatedAt:       rv.UpdatedAt(),
	}
}

func toDomainReview(m *ReviewModel) *review.PropertyReview {
	return review.ReconstructReview(
		m.ID,
		m.BookingID,
		m.PropertyID,
		m.RenterID,
		m.HostID,
		m.Rating,
		m.Comment,
		m.HostResponse,
		m.HostRespondedAt,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
