package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estatery/service-rental/internal/platform/domain"
)

func completedStay(t *testing.T, env *testEnv) (*PropertyDTO, *BookingDTO) {
	t.Helper()
	ctx := context.Background()
	p := env.listProperty(t)
	b := env.book(t, p.ID, "2026-02-01", "2026-05-01")
	_, err := env.bookings.ConfirmBooking(ctx, b.ID, env.ownerID)
	require.NoError(t, err)

	env.clock.Set(time.Date(2026, 2, 1, 1, 0, 0, 0, time.UTC))
	_, err = env.bookings.ActivateBooking(ctx, b.ID)
	require.NoError(t, err)
	env.clock.Set(time.Date(2026, 5, 1, 1, 0, 0, 0, time.UTC))
	done, err := env.bookings.CompleteBooking(ctx, b.ID)
	require.NoError(t, err)
	return p, done
}

func TestCreateReview_Gate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.listProperty(t)
	pending := env.book(t, p.ID, "2026-02-01", "2026-05-01")

	_, err := env.reviews.CreateReview(ctx, env.renterID, CreateReviewRequest{BookingID: pending.ID, Rating: 5, Comment: "Great"})
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve, "stay not completed")
}

func TestCreateReview_OncePerBooking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p, b := completedStay(t, env)

	_, err := env.reviews.CreateReview(ctx, env.ownerID, CreateReviewRequest{BookingID: b.ID, Rating: 5, Comment: "Own place"})
	var pe *domain.PermissionError
	assert.ErrorAs(t, err, &pe)

	_, err = env.reviews.CreateReview(ctx, env.renterID, CreateReviewRequest{BookingID: b.ID, Rating: 6, Comment: "Too good"})
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve, "rating out of range")

	created, err := env.reviews.CreateReview(ctx, env.renterID, CreateReviewRequest{BookingID: b.ID, Rating: 4, Comment: "Quiet street"})
	require.NoError(t, err)
	assert.Equal(t, p.ID, created.PropertyID)

	_, err = env.reviews.CreateReview(ctx, env.renterID, CreateReviewRequest{BookingID: b.ID, Rating: 5, Comment: "Again"})
	assert.ErrorAs(t, err, &ve, "second review")

	list, err := env.reviews.ListPropertyReviews(ctx, p.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.ReviewCount)
	assert.InDelta(t, 4.0, list.AverageRating, 0.001)
}

func TestRespondToReview(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, b := completedStay(t, env)
	created, err := env.reviews.CreateReview(ctx, env.renterID, CreateReviewRequest{BookingID: b.ID, Rating: 3, Comment: "Noisy"})
	require.NoError(t, err)

	_, err = env.reviews.RespondToReview(ctx, created.ID, env.renterID, "thanks")
	var pe *domain.PermissionError
	assert.ErrorAs(t, err, &pe)

	first, err := env.reviews.RespondToReview(ctx, created.ID, env.ownerID, "Sorry about the works")
	require.NoError(t, err)
	assert.Equal(t, "Sorry about the works", first.HostResponse)

	second, err := env.reviews.RespondToReview(ctx, created.ID, env.ownerID, "Works are finished")
	require.NoError(t, err)
	assert.Equal(t, "Works are finished", second.HostResponse)
}
