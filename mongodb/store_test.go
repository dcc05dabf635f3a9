package mongodb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/identkit/userdb"
	"github.com/identkit/userdb/internal/testutil"
)

func TestNew_Defaults(t *testing.T) {
	store := New[userdb.BaseUser](nil)

	assert.NotNil(t, store)
	assert.Nil(t, store.coll)
	assert.Equal(t, DefaultEmailCollation(), store.emailCollation)
	assert.False(t, store.ciEmailIndex)
	assert.False(t, store.initialized)
}

func TestNew_Options(t *testing.T) {
	collation := &options.Collation{Locale: "fr", Strength: 1}
	l := testutil.MakeNoopLogger().Logger

	store := New[userdb.BaseUser](nil,
		WithEmailCollation(collation),
		WithCaseInsensitiveEmailIndex(),
		WithLogger(l),
	)

	assert.Equal(t, collation, store.emailCollation)
	assert.True(t, store.ciEmailIndex)
	assert.Equal(t, l, store.logger)
}

func TestDefaultEmailCollation(t *testing.T) {
	c := DefaultEmailCollation()

	assert.Equal(t, "en", c.Locale)
	assert.Equal(t, 2, c.Strength)
}
