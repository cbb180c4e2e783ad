package identity

import (
	"context"
	"net/http"
	"strings"
)

type contextKey struct{}

// WithUser attaches a resolved user to the context.
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// FromContext returns the authenticated user, or ErrUnauthorized when the
// request carried none.
func FromContext(ctx context.Context) (*User, error) {
	user, ok := ctx.Value(contextKey{}).(*User)
	if !ok || user == nil {
		return nil, ErrUnauthorized
	}
	return user, nil
}

// TokenFromRequest extracts the session token from the Authorization header
// or, for WebSocket upgrades where headers are awkward, the token query
// parameter.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, found := strings.CutPrefix(h, "Bearer "); found {
			return token
		}
	}
	return r.URL.Query().Get("token")
}

// RequireAuth resolves the session token and rejects the request with 401
// when it is missing or invalid.
func RequireAuth(p *Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			user, err := p.CurrentUser(r.Context(), token)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// OptionalAuth resolves the session token when present but lets anonymous
// requests through. Read endpoints use it so signed-in users get
// personalized views (bookmark flags) without making browsing private.
func OptionalAuth(p *Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := TokenFromRequest(r); token != "" {
				if user, err := p.CurrentUser(r.Context(), token); err == nil {
					r = r.WithContext(WithUser(r.Context(), user))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
