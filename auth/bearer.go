package auth

import (
	"context"
	"net/http"
	"strings"

	"taskhub/contract"
	"taskhub/domain"
	"taskhub/errors"
)

type contextKey string

const identityKey contextKey = "identity"

// BearerFromRequest extracts the credential from the Authorization header,
// falling back to the "token" query parameter used by browser websocket clients.
func BearerFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

// Middleware authenticates plain HTTP calls and injects the identity into the request context.
func Middleware(authenticator contract.IAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := authenticator.Authenticate(r.Context(), BearerFromRequest(r))
			if err != nil {
				http.Error(w, "unauthorized", errors.MapToHTTPStatus(err))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

func WithIdentity(ctx context.Context, identity domain.UserIdentity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFromContext(ctx context.Context) (domain.UserIdentity, bool) {
	identity, ok := ctx.Value(identityKey).(domain.UserIdentity)
	return identity, ok
}
