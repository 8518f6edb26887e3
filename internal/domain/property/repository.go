package property

import (
	"context"

	"github.com/google/uuid"
)

// PropertyRepository defines the persistence contract for property aggregates.
type PropertyRepository interface {
	// FindByID retrieves a property without locking it.
	FindByID(ctx context.Context, id uuid.UUID) (*Property, error)

	// LockByID retrieves a property and holds an exclusive row lock until the transaction ends.
	LockByID(ctx context.Context, id uuid.UUID) (*Property, error)

	// FindByOwnerID retrieves properties listed by an owner with pagination.
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*Property, int64, error)

	// ListIDsByOwner returns every property id owned by the user.
	ListIDsByOwner(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error)

	Save(ctx context.Context, p *Property) error

	// Update persists changes with optimistic locking.
	Update(ctx context.Context, p *Property) error
}
