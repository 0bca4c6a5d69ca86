package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"taskhub/auth"
	"taskhub/domain"
	"taskhub/infrastructure/sqlstore"
	"taskhub/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func TestToken_Is_Accepted_By_The_Hub(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer

	err := run([]string{"token", "--user", "alice", "--secret", "s3cret", "--issuer", "taskhub", "--ttl", "1h"}, &out)
	req.NoError(err)

	claims, err := auth.NewTokenManager("s3cret", "taskhub").Validate(strings.TrimSpace(out.String()))
	req.NoError(err)
	req.Equal("alice", claims.Subject)
}

func TestToken_Requires_User(t *testing.T) {
	req := require.New(t)
	req.Error(run([]string{"token", "--secret", "s3cret"}, &bytes.Buffer{}))
}

func TestSeed_Badger(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()

	err := run([]string{"seed", "--driver", "badger", "--path", dir, "-u", "bob", "--name", "Bob", "-p", "P1", "-p", "P2"}, &bytes.Buffer{})
	req.NoError(err)

	db, err := badger.Open(badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()
	ctx := context.Background()

	user, err := repositories.NewUserRepository(db).GetUser(ctx, "bob")
	req.NoError(err)
	req.Equal("Bob", user.DisplayName)
	req.True(user.Active)

	projects, err := repositories.NewMembershipRepository(db).ProjectsOf(ctx, "bob")
	req.NoError(err)
	req.Equal([]string{"P1", "P2"}, projects)
}

func TestSeed_SQLite_Inactive_User(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "hub.db")

	err := run([]string{"seed", "--driver", "sqlite", "--path", path, "-u", "carol", "--inactive", "--role", "admin"}, &bytes.Buffer{})
	req.NoError(err)

	store, err := sqlstore.Open(path)
	req.NoError(err)
	defer store.Close()
	user, err := store.GetUser(context.Background(), "carol")
	req.NoError(err)
	req.False(user.Active)
	req.Equal(domain.RoleAdmin, user.Role)
}

func TestRun_Unknown_Command(t *testing.T) {
	req := require.New(t)
	req.Error(run([]string{"deploy"}, &bytes.Buffer{}))
	req.Error(run(nil, &bytes.Buffer{}))
}

func TestInspect_Lists_Seeded_Keys(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	req.NoError(run([]string{"seed", "--driver", "badger", "--path", dir, "-u", "dave", "-p", "P9"}, &bytes.Buffer{}))

	var out bytes.Buffer
	err := run([]string{"inspect", "--path", dir, "--prefix", "member:"}, &out)

	req.NoError(err)
	req.Contains(out.String(), "member:dave:P9")
	req.Contains(out.String(), "MEMBER")
	req.NotContains(out.String(), "user:dave")
}
