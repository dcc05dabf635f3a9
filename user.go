// Package userdb defines the persistence contract an identity-management
// framework programs against: the user entity shape and the Store interface
// its database adapters implement.
package userdb

import "github.com/google/uuid"

// OAuthAccount links a user to an external identity provider. The
// (Provider, AccountID) pair is unique across all users; a single user may
// hold any number of accounts.
type OAuthAccount struct {
	Provider     string `bson:"provider" json:"provider"`
	AccountID    string `bson:"account_id" json:"account_id"`
	AccountEmail string `bson:"account_email,omitempty" json:"account_email,omitempty"`
	AccessToken  string `bson:"access_token,omitempty" json:"-"`
	RefreshToken string `bson:"refresh_token,omitempty" json:"-"`
	ExpiresAt    int64  `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
}

// Model is the shape contract a user entity must satisfy to be stored.
// Stores interpret only the id, email and oauth account fields; everything
// else the entity carries is round-tripped untouched.
type Model interface {
	UserID() uuid.UUID
	UserEmail() string
	UserOAuthAccounts() []OAuthAccount
}

// BaseUser carries the fields every stored user has. Applications embed it
// inline and add their own fields:
//
//	type AppUser struct {
//		userdb.BaseUser `bson:",inline"`
//		DisplayName     string `bson:"display_name"`
//	}
type BaseUser struct {
	ID             uuid.UUID      `bson:"id" json:"id"`
	Email          string         `bson:"email" json:"email"`
	HashedPassword string         `bson:"hashed_password,omitempty" json:"-"`
	IsActive       bool           `bson:"is_active" json:"is_active"`
	IsSuperuser    bool           `bson:"is_superuser" json:"is_superuser"`
	IsVerified     bool           `bson:"is_verified" json:"is_verified"`
	OAuthAccounts  []OAuthAccount `bson:"oauth_accounts,omitempty" json:"oauth_accounts,omitempty"`
}

// UserID implements Model.
func (u BaseUser) UserID() uuid.UUID { return u.ID }

// UserEmail implements Model.
func (u BaseUser) UserEmail() string { return u.Email }

// UserOAuthAccounts implements Model.
func (u BaseUser) UserOAuthAccounts() []OAuthAccount { return u.OAuthAccounts }
