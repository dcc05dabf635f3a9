// Package mongodb implements the userdb.Store contract on top of a MongoDB
// collection of user documents.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/identkit/userdb"
)

var _ userdb.Store[userdb.BaseUser] = (*Store[userdb.BaseUser])(nil)

// DefaultEmailCollation is the comparison policy used for email lookups when
// none is configured: strength 2 for the "en" locale, i.e. case-insensitive
// but accent-sensitive.
func DefaultEmailCollation() *options.Collation {
	return &options.Collation{Locale: "en", Strength: 2}
}

// Store persists users of type T in a single MongoDB collection. Documents
// are keyed by the entity's id field; email and oauth (provider, account_id)
// uniqueness is enforced by indexes the store establishes before its first
// operation (see EnsureIndexes).
//
// A Store is safe for concurrent use; it holds no per-call state beyond the
// one-time index guard.
type Store[T userdb.Model] struct {
	coll           *mongo.Collection
	emailCollation *options.Collation
	ciEmailIndex   bool
	logger         *slog.Logger

	mu          sync.Mutex
	initialized bool
}

type config struct {
	emailCollation *options.Collation
	ciEmailIndex   bool
	logger         *slog.Logger
}

// Option configures a Store.
type Option func(*config)

// WithEmailCollation overrides the collation used by GetByEmail lookups.
func WithEmailCollation(c *options.Collation) Option {
	return func(cfg *config) {
		cfg.emailCollation = c
	}
}

// WithCaseInsensitiveEmailIndex additionally establishes a unique email index
// under the configured collation, so that email uniqueness is enforced with
// the same policy the lookups use. Off by default: the plain-equality index
// alone matches the historical behavior of this adapter, where "A@B.com" and
// "a@b.com" can coexist even though GetByEmail treats them as equal.
func WithCaseInsensitiveEmailIndex() Option {
	return func(cfg *config) {
		cfg.ciEmailIndex = true
	}
}

// WithLogger sets the logger used for index-bootstrap events.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = l
	}
}

// New creates a Store over the given collection handle. The collection is
// not touched until the first operation (or an explicit EnsureIndexes call).
func New[T userdb.Model](coll *mongo.Collection, opts ...Option) *Store[T] {
	cfg := config{
		emailCollation: DefaultEmailCollation(),
		logger:         slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Store[T]{
		coll:           coll,
		emailCollation: cfg.emailCollation,
		ciEmailIndex:   cfg.ciEmailIndex,
		logger:         cfg.logger,
	}
}

// EnsureIndexes establishes the uniqueness indexes on the collection: one on
// id, one on plain-equality email, and a partial compound one on the oauth
// (provider, account_id) pair. Index creation is idempotent on the server, so
// calling this repeatedly, or from several store instances over the same
// collection, is harmless.
//
// Every operation calls EnsureIndexes before touching the collection; the
// first successful run latches and later calls return immediately. A failed
// run leaves the guard open so the next operation retries. Callers that
// prefer explicit initialization can invoke it once at startup.
func (s *Store[T]) EnsureIndexes(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return nil
	}

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_email"),
		},
		{
			// Both keys traverse the same array, so the pair is matched
			// within one element. Partial: users without oauth accounts
			// must not collide on a null entry.
			Keys: bson.D{
				{Key: "oauth_accounts.provider", Value: 1},
				{Key: "oauth_accounts.account_id", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetName("unique_oauth_account").
				SetPartialFilterExpression(bson.D{
					{Key: "oauth_accounts.0", Value: bson.D{{Key: "$exists", Value: true}}},
				}),
		},
	}
	if s.ciEmailIndex {
		indexes = append(indexes, mongo.IndexModel{
			Keys: bson.D{{Key: "email", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("unique_email_ci").
				SetCollation(s.emailCollation),
		})
	}

	names, err := s.coll.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create uniqueness indexes: %w", err)
	}
	s.logger.DebugContext(ctx, "uniqueness indexes ready",
		"collection", s.coll.Name(), "indexes", names)

	s.initialized = true
	return nil
}

// Get fetches the user whose id equals the argument. Returns (nil, nil) when
// no user matches.
func (s *Store[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	if err := s.EnsureIndexes(ctx); err != nil {
		return nil, err
	}

	return s.findOne(ctx, bson.D{{Key: "id", Value: id}})
}

// GetByEmail fetches the user whose email equals the argument under the
// configured collation, so the match may be case-insensitive even though the
// value is stored verbatim. Returns (nil, nil) when no user matches.
func (s *Store[T]) GetByEmail(ctx context.Context, email string) (*T, error) {
	if err := s.EnsureIndexes(ctx); err != nil {
		return nil, err
	}

	return s.findOne(ctx,
		bson.D{{Key: "email", Value: email}},
		options.FindOne().SetCollation(s.emailCollation),
	)
}

// GetByOAuthAccount fetches the user holding an oauth account whose provider
// AND account id both match within the same array element. Returns (nil, nil)
// when no user matches.
func (s *Store[T]) GetByOAuthAccount(ctx context.Context, provider, accountID string) (*T, error) {
	if err := s.EnsureIndexes(ctx); err != nil {
		return nil, err
	}

	filter := bson.D{{Key: "oauth_accounts", Value: bson.D{{Key: "$elemMatch", Value: bson.D{
		{Key: "provider", Value: provider},
		{Key: "account_id", Value: accountID},
	}}}}}

	return s.findOne(ctx, filter)
}

// Create inserts the user as a new document. A duplicate id, email or oauth
// pair surfaces as an error matching userdb.ErrUniquenessViolation with the
// driver error preserved in the chain.
func (s *Store[T]) Create(ctx context.Context, user T) (T, error) {
	if err := s.EnsureIndexes(ctx); err != nil {
		return user, err
	}

	if _, err := s.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user, fmt.Errorf("failed to create user: %w: %w", userdb.ErrUniquenessViolation, err)
		}
		return user, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Update replaces the document matching the user's id wholesale. When no
// document matches, nothing is written and no error is returned.
func (s *Store[T]) Update(ctx context.Context, user T) (T, error) {
	if err := s.EnsureIndexes(ctx); err != nil {
		return user, err
	}

	if _, err := s.coll.ReplaceOne(ctx, bson.D{{Key: "id", Value: user.UserID()}}, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user, fmt.Errorf("failed to update user: %w: %w", userdb.ErrUniquenessViolation, err)
		}
		return user, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// Delete removes the document matching the user's id. Deleting an id that is
// not stored is a no-op.
func (s *Store[T]) Delete(ctx context.Context, user T) error {
	if err := s.EnsureIndexes(ctx); err != nil {
		return err
	}

	if _, err := s.coll.DeleteOne(ctx, bson.D{{Key: "id", Value: user.UserID()}}); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return nil
}

func (s *Store[T]) findOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) (*T, error) {
	var user T
	err := s.coll.FindOne(ctx, filter, opts...).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	return &user, nil
}
