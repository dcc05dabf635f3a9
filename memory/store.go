// Package memory implements the userdb.Store contract in process memory. It
// mirrors the mongodb adapter's semantics — uniqueness of id, plain-equality
// email and oauth pairs on writes, collated email lookups — so it can stand
// in for it in tests and development setups.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/identkit/userdb"
)

var _ userdb.Store[userdb.BaseUser] = (*Store[userdb.BaseUser])(nil)

// Store keeps users of type T in a map keyed by id. Safe for concurrent use.
type Store[T userdb.Model] struct {
	mu       sync.Mutex
	collator *collate.Collator
	users    map[uuid.UUID]T
}

type config struct {
	collator *collate.Collator
}

// Option configures a Store.
type Option func(*config)

// WithCollator overrides the collator used by GetByEmail lookups. The default
// is case-insensitive, accent-sensitive English, matching the mongodb
// adapter's default collation.
func WithCollator(c *collate.Collator) Option {
	return func(cfg *config) {
		cfg.collator = c
	}
}

// New creates an empty in-memory store.
func New[T userdb.Model](opts ...Option) *Store[T] {
	cfg := config{
		collator: collate.New(language.English, collate.IgnoreCase),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Store[T]{
		collator: cfg.collator,
		users:    make(map[uuid.UUID]T),
	}
}

// Get fetches the user with the given id. Returns (nil, nil) when no user
// matches.
func (s *Store[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user, ok := s.users[id]; ok {
		return &user, nil
	}
	return nil, nil
}

// GetByEmail fetches the user whose email equals the argument under the
// configured collator. Returns (nil, nil) when no user matches.
func (s *Store[T]) GetByEmail(ctx context.Context, email string) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if s.collator.CompareString(user.UserEmail(), email) == 0 {
			return &user, nil
		}
	}
	return nil, nil
}

// GetByOAuthAccount fetches the user holding an oauth account with exactly
// this provider and account id. Returns (nil, nil) when no user matches.
func (s *Store[T]) GetByOAuthAccount(ctx context.Context, provider, accountID string) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		for _, account := range user.UserOAuthAccounts() {
			if account.Provider == provider && account.AccountID == accountID {
				return &user, nil
			}
		}
	}
	return nil, nil
}

// Create stores the user as a new entry. A duplicate id, email or oauth pair
// surfaces as an error matching userdb.ErrUniquenessViolation.
func (s *Store[T]) Create(ctx context.Context, user T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.UserID()]; ok {
		return user, fmt.Errorf("failed to create user: %w: id %s", userdb.ErrUniquenessViolation, user.UserID())
	}
	if err := s.conflicts(user, user.UserID()); err != nil {
		return user, fmt.Errorf("failed to create user: %w", err)
	}

	s.users[user.UserID()] = user
	return user, nil
}

// Update replaces the stored user with the same id wholesale. When no entry
// matches, nothing is written and no error is returned.
func (s *Store[T]) Update(ctx context.Context, user T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.UserID()]; !ok {
		return user, nil
	}
	if err := s.conflicts(user, user.UserID()); err != nil {
		return user, fmt.Errorf("failed to update user: %w", err)
	}

	s.users[user.UserID()] = user
	return user, nil
}

// Delete removes the user with the same id. Deleting an id that is not
// stored is a no-op.
func (s *Store[T]) Delete(ctx context.Context, user T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.users, user.UserID())
	return nil
}

// conflicts reports a uniqueness violation against any stored user other
// than skip. Email is compared by plain equality, matching the non-collated
// unique index of the mongodb adapter.
func (s *Store[T]) conflicts(user T, skip uuid.UUID) error {
	for id, existing := range s.users {
		if id == skip {
			continue
		}
		if existing.UserEmail() == user.UserEmail() {
			return fmt.Errorf("%w: email %q", userdb.ErrUniquenessViolation, user.UserEmail())
		}
		for _, a := range existing.UserOAuthAccounts() {
			for _, b := range user.UserOAuthAccounts() {
				if a.Provider == b.Provider && a.AccountID == b.AccountID {
					return fmt.Errorf("%w: oauth account (%s, %s)", userdb.ErrUniquenessViolation, a.Provider, a.AccountID)
				}
			}
		}
	}
	return nil
}
