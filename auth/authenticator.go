package auth

import (
	"context"
	"fmt"

	"taskhub/contract"
	"taskhub/domain"
	"taskhub/errors"
)

// Authenticator resolves a bearer token to the identity of an active user.
// Every failure wraps errors.ErrAuthFailure so callers only need one check.
type Authenticator struct {
	tokens    *TokenManager
	directory contract.IUserDirectory
}

func NewAuthenticator(tokens *TokenManager, directory contract.IUserDirectory) *Authenticator {
	return &Authenticator{tokens: tokens, directory: directory}
}

func (a *Authenticator) Authenticate(ctx context.Context, credential string) (domain.UserIdentity, error) {
	claims, err := a.tokens.Validate(credential)
	if err != nil {
		return domain.UserIdentity{}, fmt.Errorf("%w: %w", errors.ErrAuthFailure, err)
	}

	user, err := a.directory.GetUser(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, errors.ErrUserNotFound) {
			return domain.UserIdentity{}, fmt.Errorf("%w: %w", errors.ErrAuthFailure, err)
		}
		return domain.UserIdentity{}, fmt.Errorf("%w: directory lookup: %v", errors.ErrAuthFailure, err)
	}
	if !user.Active {
		return domain.UserIdentity{}, fmt.Errorf("%w: %w", errors.ErrAuthFailure, errors.ErrUserDeactivated)
	}
	return user.Identity(), nil
}
