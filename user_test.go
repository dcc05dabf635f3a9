package userdb

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBaseUser_ModelAccessors(t *testing.T) {
	id := uuid.New()
	u := BaseUser{
		ID:    id,
		Email: "user@example.com",
		OAuthAccounts: []OAuthAccount{
			{Provider: "github", AccountID: "42"},
		},
	}

	assert.Equal(t, id, u.UserID())
	assert.Equal(t, "user@example.com", u.UserEmail())
	assert.Len(t, u.UserOAuthAccounts(), 1)
	assert.Equal(t, "github", u.UserOAuthAccounts()[0].Provider)
}

type profileUser struct {
	BaseUser    `bson:",inline"`
	DisplayName string `bson:"display_name"`
}

func TestBaseUser_EmbeddingSatisfiesModel(t *testing.T) {
	var m Model = profileUser{
		BaseUser:    BaseUser{ID: uuid.New(), Email: "e@example.com"},
		DisplayName: "E",
	}

	assert.Equal(t, "e@example.com", m.UserEmail())
	assert.Empty(t, m.UserOAuthAccounts())
}
