package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"taskhub/domain"
	"taskhub/errors"
	"taskhub/mocks"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestAuthenticator(t *testing.T) (*Authenticator, *TokenManager, *mocks.MockIUserDirectory) {
	ctrl := gomock.NewController(t)
	directory := mocks.NewMockIUserDirectory(ctrl)
	tokens := NewTokenManager("a-very-long-secret-for-tests", "taskhub")
	return NewAuthenticator(tokens, directory), tokens, directory
}

func TestAuthenticator_Valid_Token_Active_User(t *testing.T) {
	req := require.New(t)
	authenticator, tokens, directory := newTestAuthenticator(t)
	token, err := tokens.Generate("alice", domain.RoleMember, time.Hour)
	req.NoError(err)

	// Given alice exists and is active
	directory.EXPECT().GetUser(gomock.Any(), "alice").Return(domain.User{
		ID:          "alice",
		DisplayName: "Alice",
		Role:        domain.RoleAdmin,
		Active:      true,
	}, nil).Times(1)

	identity, err := authenticator.Authenticate(context.Background(), token)

	// Then the identity comes from the directory, not from the token
	req.NoError(err)
	req.Equal(domain.UserIdentity{ID: "alice", DisplayName: "Alice", Role: domain.RoleAdmin}, identity)
}

func TestAuthenticator_Deactivated_User(t *testing.T) {
	req := require.New(t)
	authenticator, tokens, directory := newTestAuthenticator(t)
	token, _ := tokens.Generate("bob", domain.RoleMember, time.Hour)

	directory.EXPECT().GetUser(gomock.Any(), "bob").Return(domain.User{ID: "bob", Active: false}, nil).Times(1)

	_, err := authenticator.Authenticate(context.Background(), token)
	req.ErrorIs(err, errors.ErrAuthFailure)
	req.ErrorIs(err, errors.ErrUserDeactivated)
}

func TestAuthenticator_Unknown_User(t *testing.T) {
	req := require.New(t)
	authenticator, tokens, directory := newTestAuthenticator(t)
	token, _ := tokens.Generate("ghost", domain.RoleMember, time.Hour)

	directory.EXPECT().GetUser(gomock.Any(), "ghost").Return(domain.User{}, errors.ErrUserNotFound).Times(1)

	_, err := authenticator.Authenticate(context.Background(), token)
	req.ErrorIs(err, errors.ErrAuthFailure)
	req.ErrorIs(err, errors.ErrUserNotFound)
}

func TestAuthenticator_Directory_Failure(t *testing.T) {
	req := require.New(t)
	authenticator, tokens, directory := newTestAuthenticator(t)
	token, _ := tokens.Generate("carol", domain.RoleMember, time.Hour)

	directory.EXPECT().GetUser(gomock.Any(), "carol").Return(domain.User{}, fmt.Errorf("disk I/O")).Times(1)

	_, err := authenticator.Authenticate(context.Background(), token)
	req.ErrorIs(err, errors.ErrAuthFailure)
}

func TestAuthenticator_Invalid_Token_Skips_Directory(t *testing.T) {
	req := require.New(t)
	authenticator, _, _ := newTestAuthenticator(t)

	// No expectation on the directory: any call fails the test
	_, err := authenticator.Authenticate(context.Background(), "garbage")
	req.ErrorIs(err, errors.ErrAuthFailure)
	req.ErrorIs(err, errors.ErrTokenInvalid)
}
