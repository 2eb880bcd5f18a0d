package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/Ly-yang/wechat-editor/internal/apperror"
)

// contextKey is unexported so no other package can read or shadow the
// Identity stored by RequireAuth.
type contextKey string

const identityKey contextKey = "identity"

// RequireAuth guards protected routes.
//
// It reads "Authorization: Bearer <token>". A missing header, another scheme
// or an empty token answers 401; a token that fails verification answers 403.
// On success the Identity is stored in the request context for the handlers
// below.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := tokens.Verify(bearerToken(r))
			if err != nil {
				writeAuthError(w, r, err)
				return
			}

			ctx := WithIdentity(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithIdentity returns a copy of ctx carrying id. Handler tests use it to
// simulate an authenticated request without minting a token.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext retrieves the authenticated caller.
// Returns false when the request did not pass through RequireAuth.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok && id.UserID > 0
}

// bearerToken extracts the token from the Authorization header. The scheme
// is matched case-insensitively.
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := http.StatusForbidden, "invalid_token"
	if errors.Is(err, apperror.ErrUnauthenticated) {
		status, code = http.StatusUnauthorized, "unauthenticated"
	}
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": err.Error(), "code": code})
}
