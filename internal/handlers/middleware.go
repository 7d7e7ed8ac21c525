package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/freefinder/apiserver/internal/auth"
)

type contextKey string

const contextIdentityKey contextKey = "identity"

// IdentityFromContext extracts the authenticated identity attached by
// RequireAuth or AttachIdentity. ok is false for anonymous requests.
func IdentityFromContext(ctx context.Context) (auth.Identity, bool) {
	identity, ok := ctx.Value(contextIdentityKey).(auth.Identity)
	return identity, ok
}

// RequireAuth enforces a valid session token: missing, malformed,
// tampered, or expired tokens all fail with 401. On success the identity
// is attached to the request context.
func RequireAuth(tokens *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			identity, err := tokens.VerifySession(tokenString)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), contextIdentityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AttachIdentity is the best-effort variant: a valid token attaches the
// identity, anything else (including no token at all) lets the request
// through anonymously. It never blocks. Handlers behind it render
// differently for authenticated callers, e.g. the isAuthor flag and
// profile contact fields.
func AttachIdentity(tokens *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err == nil {
				if identity, err := tokens.VerifySession(tokenString); err == nil {
					ctx := context.WithValue(r.Context(), contextIdentityKey, identity)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}
