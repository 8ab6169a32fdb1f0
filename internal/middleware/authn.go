package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/tharsikan/shop-web-app-backend/internal/session"
	"github.com/tharsikan/shop-web-app-backend/internal/telemetry"
)

// SessionResolver maps a raw session token to its live session.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*session.Session, error)
}

// Authenticate binds the live session named by the session cookie to the request context.
// Requests without a valid cookie continue unauthenticated; RequireAuthenticated and
// RequirePermission reject them where a session is needed.
func Authenticate(resolver SessionResolver, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(session.CookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := resolver.Resolve(r.Context(), cookie.Value)
			if err != nil {
				if !errors.Is(err, session.ErrInvalidSession) {
					logger.Error().Err(err).Msg("session lookup failed")
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(session.WithContext(r.Context(), sess)))
		})
	}
}

// RequireAuthenticated rejects requests without a session with 401.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := session.FromContext(r.Context()); !ok {
			unauthenticated(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthenticated(w http.ResponseWriter) {
	telemetry.RecordAuthzDenial("unauthenticated")
	http.Error(w, "authentication required", http.StatusUnauthorized)
}
