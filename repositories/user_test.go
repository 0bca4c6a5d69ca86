package repositories

import (
	"context"
	"testing"
	"time"

	"taskhub/domain"
	"taskhub/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestUserRepository_Save_And_Get(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openDB(t))
	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	user := domain.User{
		ID:          "alice",
		DisplayName: "Alice",
		Email:       "alice@example.com",
		Role:        domain.RoleManager,
		Active:      true,
		CreatedAt:   createdAt,
	}

	req.NoError(repository.SaveUser(user))

	fetched, err := repository.GetUser(context.Background(), "alice")
	req.NoError(err)
	req.Equal(user, fetched)
}

func TestUserRepository_Unknown_User(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openDB(t))

	_, err := repository.GetUser(context.Background(), "ghost")
	req.ErrorIs(err, errors.ErrUserNotFound)
}

func TestUserRepository_SetActive(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openDB(t))
	ctx := context.Background()
	req.NoError(repository.SaveUser(domain.User{ID: "bob", Role: domain.RoleMember, Active: true}))

	// When an administrator deactivates bob
	req.NoError(repository.SetActive(ctx, "bob", false))

	// Then the directory reports him inactive
	user, err := repository.GetUser(ctx, "bob")
	req.NoError(err)
	req.False(user.Active)
	req.False(user.CreatedAt.IsZero())

	req.ErrorIs(repository.SetActive(ctx, "ghost", true), errors.ErrUserNotFound)
}

func TestUserRepository_Rejects_Empty_ID(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openDB(t))

	req.ErrorIs(repository.SaveUser(domain.User{}), errors.ErrInvalidPayload)
}
