package auth

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&AdminUser{}))
	return NewStore(db)
}

func seedUser(t *testing.T, s *Store, email, password string, active bool) *AdminUser {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	u := &AdminUser{Email: email, PasswordHash: hash, Roles: []string{"editor"}, Active: active}
	require.NoError(t, s.Create(context.Background(), u))
	return u
}

func TestStoreAuthenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		s := newTestStore(t)
		seedUser(t, s, "ed@example.org", "secret123", true)

		u, err := s.Authenticate(ctx, "ed@example.org", "secret123")
		require.NoError(t, err)
		assert.Equal(t, "ed@example.org", u.Email)
	})

	t.Run("email lookup ignores case", func(t *testing.T) {
		s := newTestStore(t)
		seedUser(t, s, "Ed@Example.ORG", "secret123", true)

		u, err := s.Authenticate(ctx, "ed@example.org", "secret123")
		require.NoError(t, err)
		assert.Equal(t, "ed@example.org", u.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		s := newTestStore(t)
		seedUser(t, s, "ed@example.org", "secret123", true)

		_, err := s.Authenticate(ctx, "ed@example.org", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("disabled account", func(t *testing.T) {
		s := newTestStore(t)
		seedUser(t, s, "ed@example.org", "secret123", false)

		_, err := s.Authenticate(ctx, "ed@example.org", "secret123")
		assert.ErrorIs(t, err, ErrUserDisabled)
	})

	t.Run("unknown account", func(t *testing.T) {
		s := newTestStore(t)
		_, err := s.Authenticate(ctx, "nobody@example.org", "x")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestStoreEmailByID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := seedUser(t, s, "ed@example.org", "secret123", true)

	email, err := s.EmailByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ed@example.org", email)

	// Unknown ids are not an error, just an empty email.
	email, err = s.EmailByID(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, email)
}
