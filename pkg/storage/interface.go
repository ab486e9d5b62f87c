package storage

import (
	"context"

	"github.com/google/uuid"
)

// LinkStorage abstracts persistence for shortened links. Implementations
// return (nil, nil) when a record does not exist.
type LinkStorage interface {
	Create(ctx context.Context, link *Link) error
	GetBySlug(ctx context.Context, slug string) (*Link, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Link, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Link, error)
	Update(ctx context.Context, link *Link) error

	// ResolveAndCount increments the visit counter and returns the updated
	// link in a single statement, so concurrent resolutions never lose
	// updates.
	ResolveAndCount(ctx context.Context, slug string) (*Link, error)

	// IncrementVisits bumps the counter without reading the row back. Used
	// on the redirect hot path where the destination comes from cache.
	IncrementVisits(ctx context.Context, slug string) error
}

type UserStorage interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}
