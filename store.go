package userdb

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrUniquenessViolation reports a write that would produce two documents
// with the same id, the same email, or the same oauth (provider, account_id)
// pair. Adapters attach it to the storage engine's error so callers can match
// it with errors.Is while the engine error stays inspectable in the chain.
var ErrUniquenessViolation = errors.New("uniqueness violation")

// Store defines the persistence operations an identity-management framework
// needs for its users.
//
// Lookups return (nil, nil) when no user matches: absence is a normal
// outcome, never an error. Update and Delete against an id that is not
// stored succeed silently without creating anything; callers are expected to
// have obtained the user through one of the lookups first.
type Store[T Model] interface {
	Get(ctx context.Context, id uuid.UUID) (*T, error)
	GetByEmail(ctx context.Context, email string) (*T, error)
	GetByOAuthAccount(ctx context.Context, provider, accountID string) (*T, error)
	Create(ctx context.Context, user T) (T, error)
	Update(ctx context.Context, user T) (T, error)
	Delete(ctx context.Context, user T) error
}
