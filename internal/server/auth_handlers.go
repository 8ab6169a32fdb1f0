package server

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/hlog"
	"github.com/zitadel/oidc/v3/pkg/client/rp"
	"github.com/zitadel/oidc/v3/pkg/oidc"

	"github.com/tharsikan/shop-web-app-backend/internal/auth"
	"github.com/tharsikan/shop-web-app-backend/internal/services/iam"
	"github.com/tharsikan/shop-web-app-backend/internal/session"
)

// HandleSSOLogin starts the authorization code flow against the external IdP.
// An optional redirect_uri query parameter names where to land after the callback.
// It must be a same-site path or a URL on one of allowedOrigins; anything else is ignored.
func HandleSSOLogin(rpAuth *auth.RelyingParty, allowedOrigins []string) http.HandlerFunc {
	authURLHandler := rp.AuthURLHandler(func() string {
		state, _ := auth.GenerateNonce()
		return state
	}, rpAuth.RP())
	return func(w http.ResponseWriter, r *http.Request) {
		if redirectURI := r.URL.Query().Get("redirect_uri"); redirectURI != "" {
			if auth.SafeRedirect(redirectURI, allowedOrigins) {
				auth.SetRedirectURICookie(w, r, redirectURI)
			} else {
				hlog.FromRequest(r).Warn().Str("redirect_uri", redirectURI).Msg("sso login: ignoring redirect outside allowed origins")
			}
		}
		authURLHandler.ServeHTTP(w, r)
	}
}

// HandleSSOCallback exchanges the code, provisions the user from the ID token and starts a session.
func HandleSSOCallback(rpAuth *auth.RelyingParty, iamService iam.Service, store *session.Store, groupsClaim string, ttl time.Duration, allowedOrigins []string) http.HandlerFunc {
	callback := func(w http.ResponseWriter, r *http.Request, tokens *oidc.Tokens[*oidc.IDTokenClaims], _ string, _ rp.RelyingParty) {
		ctx := r.Context()
		logger := hlog.FromRequest(r)

		claims := auth.ClaimsMap(tokens.IDTokenClaims)
		principal, err := auth.PrincipalFromClaims(claims, groupsClaim)
		if err != nil {
			logger.Warn().Err(err).Msg("sso callback: unusable id token claims")
			http.Error(w, "Invalid identity token", http.StatusBadRequest)
			return
		}

		user, err := iamService.ProvisionUser(ctx, principal)
		if err != nil {
			logger.Error().Err(err).Str("subject", principal.SubjectID()).Msg("sso callback: provision user")
			http.Error(w, "Failed to provision user", http.StatusInternalServerError)
			return
		}

		token, sess, err := store.Create(ctx, user, claims, ttl)
		if err != nil {
			logger.Error().Err(err).Str("user_id", user.ID).Msg("sso callback: create session")
			http.Error(w, "Failed to create session", http.StatusInternalServerError)
			return
		}

		setSessionCookie(w, r, token, sess.ExpiresAt)

		redirectURI := auth.GetRedirectURICookie(w, r)
		if !auth.SafeRedirect(redirectURI, allowedOrigins) {
			redirectURI = "/"
		}
		http.Redirect(w, r, redirectURI, http.StatusFound)
	}
	return rp.CodeExchangeHandler(callback, rpAuth.RP())
}

// HandleLogout revokes the current session and clears its cookie.
func HandleLogout(store *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := session.FromContext(r.Context())
		if !ok {
			http.Error(w, "No active session", http.StatusUnauthorized)
			return
		}
		if err := store.Revoke(r.Context(), sess); err != nil {
			hlog.FromRequest(r).Error().Err(err).Str("session_id", sess.ID).Msg("logout: revoke session")
			http.Error(w, "Failed to revoke session", http.StatusInternalServerError)
			return
		}
		setSessionCookie(w, r, "", time.Unix(0, 0))
		writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out"})
	}
}

// HandleLogoutAll revokes every session of the caller, including those on other devices.
func HandleLogoutAll(store *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := session.FromContext(r.Context())
		if !ok {
			http.Error(w, "No active session", http.StatusUnauthorized)
			return
		}
		n, err := store.RevokeUser(r.Context(), sess.UserID)
		if err != nil {
			hlog.FromRequest(r).Error().Err(err).Str("user_id", sess.UserID).Msg("logout all: revoke sessions")
			http.Error(w, "Failed to revoke sessions", http.StatusInternalServerError)
			return
		}
		setSessionCookie(w, r, "", time.Unix(0, 0))
		writeJSON(w, http.StatusOK, revokedResponse{Message: "Logged out everywhere", Sessions: n})
	}
}

type revokedResponse struct {
	Message  string `json:"message"`
	Sessions int    `json:"sessions"`
}

type whoAmIResponse struct {
	UserID      string   `json:"user_id"`
	Subject     string   `json:"subject"`
	Email       string   `json:"email,omitempty"`
	Authorities []string `json:"authorities"`
}

// HandleWhoAmI describes the caller's session principal.
func HandleWhoAmI(iamService iam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := iamService.LoggedInUser(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		sess, _ := session.FromContext(r.Context())
		p := sess.Principal()
		authorities := auth.RoleStrings(p.Authorities())
		if authorities == nil {
			authorities = []string{}
		}
		writeJSON(w, http.StatusOK, whoAmIResponse{
			UserID:      user.ID,
			Subject:     p.SubjectID(),
			Email:       user.Email,
			Authorities: authorities,
		})
	}
}

func setSessionCookie(w http.ResponseWriter, r *http.Request, value string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}
