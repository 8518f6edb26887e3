package review

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/estatery/service-rental/internal/platform/domain"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Subject identifies the stay being reviewed. It is built from the booking by the caller
// so the gate never has to load related records itself.
type Subject struct {
	BookingID  uuid.UUID
	PropertyID uuid.UUID
	RenterID   uuid.UUID
	HostID     uuid.UUID
	Completed  bool
}

// CheckEligibility returns nil when the reviewer may review the stay.
func CheckEligibility(s Subject, reviewer uuid.UUID, alreadyReviewed bool) error {
	if reviewer != s.RenterID {
		return domain.NewPermissionError("only the renter of this booking can review it")
	}
	if !s.Completed {
		return domain.NewValidationError("only completed bookings can be reviewed")
	}
	if alreadyReviewed {
		return domain.NewValidationError("this booking has already been reviewed")
	}
	return nil
}

// CanReview reports whether the reviewer may review the stay.
func CanReview(s Subject, reviewer uuid.UUID, alreadyReviewed bool) bool {
	return CheckEligibility(s, reviewer, alreadyReviewed) == nil
}

// PropertyReview is a renter's review of a completed stay, with an optional host response.
type PropertyReview struct {
	id              uuid.UUID
	bookingID       uuid.UUID
	propertyID      uuid.UUID
	renterID        uuid.UUID
	hostID          uuid.UUID
	rating          int
	comment         string
	hostResponse    string
	hostRespondedAt *time.Time
	createdAt       time.Time
	updatedAt       time.Time
}

// NewReview checks eligibility and creates the review.
func NewReview(s Subject, reviewer uuid.UUID, rating int, comment string, alreadyReviewed bool, now time.Time) (*PropertyReview, error) {
	if err := CheckEligibility(s, reviewer, alreadyReviewed); err != nil {
		return nil, err
	}
	if rating < MinRating || rating > MaxRating {
		return nil, domain.NewValidationError("rating must be between 1 and 5")
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, domain.NewValidationError("comment is required")
	}
	now = now.UTC()
	return &PropertyReview{
		id:         uuid.New(),
		bookingID:  s.BookingID,
		propertyID: s.PropertyID,
		renterID:   s.RenterID,
		hostID:     s.HostID,
		rating:     rating,
		comment:    comment,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// ReconstructReview rebuilds a PropertyReview from persistence data (no validation).
func ReconstructReview(
	id, bookingID, propertyID, renterID, hostID uuid.UUID,
	rating int,
	comment, hostResponse string,
	hostRespondedAt *time.Time,
	createdAt, updatedAt time.Time,
) *PropertyReview {
	return &PropertyReview{
		id:              id,
		bookingID:       bookingID,
		propertyID:      propertyID,
		renterID:        renterID,
		hostID:          hostID,
		rating:          rating,
		comment:         comment,
		hostResponse:    hostResponse,
		hostRespondedAt: hostRespondedAt,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

func (r *PropertyReview) ID() uuid.UUID               { return r.id }
func (r *PropertyReview) BookingID() uuid.UUID        { return r.bookingID }
func (r *PropertyReview) PropertyID() uuid.UUID       { return r.propertyID }
func (r *PropertyReview) RenterID() uuid.UUID         { return r.renterID }
func (r *PropertyReview) HostID() uuid.UUID           { return r.hostID }
func (r *PropertyReview) Rating() int                 { return r.rating }
func (r *PropertyReview) Comment() string             { return r.comment }
func (r *PropertyReview) HostResponse() string        { return r.hostResponse }
func (r *PropertyReview) HostRespondedAt() *time.Time { return r.hostRespondedAt }
func (r *PropertyReview) CreatedAt() time.Time        { return r.createdAt }
func (r *PropertyReview) UpdatedAt() time.Time        { return r.updatedAt }

// Respond records the host's public reply. A later reply replaces the earlier one.
func (r *PropertyReview) Respond(actor uuid.UUID, response string, now time.Time) error {
	if actor != r.hostID {
		return domain.NewPermissionError("only the property owner can respond to this review")
	}
	response = strings.TrimSpace(response)
	if response == "" {
		return domain.NewValidationError("response cannot be empty")
	}
	t := now.UTC()
	r.hostResponse = response
	r.hostRespondedAt = &t
	r.updatedAt = t
	return nil
}
