package middleware

import (
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/tharsikan/shop-web-app-backend/internal/auth"
	"github.com/tharsikan/shop-web-app-backend/internal/services/iam"
	"github.com/tharsikan/shop-web-app-backend/internal/session"
	"github.com/tharsikan/shop-web-app-backend/internal/telemetry"
)

// RequirePermission allows the request when any authority of the session's principal may
// perform act on obj. Authorities are read at request time, so role edits apply immediately.
func RequirePermission(policy *auth.Policy, obj, act string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := session.FromContext(r.Context())
			if !ok {
				unauthenticated(w)
				return
			}

			principal := sess.Principal()
			allowed, err := policy.Allowed(principal.Authorities(), obj, act)
			if err != nil {
				hlog.FromRequest(r).Error().Err(err).Str("obj", obj).Str("act", act).Msg("authorization error")
				http.Error(w, "authorization error", http.StatusInternalServerError)
				return
			}
			if !allowed {
				telemetry.RecordAuthzDenial("policy")
				hlog.FromRequest(r).Info().Str("subject", principal.SubjectID()).
					Str("obj", obj).Str("act", act).Msg("permission denied")
				http.Error(w, iam.AccessDeniedMessage, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
