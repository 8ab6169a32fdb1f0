package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zitadel/oidc/v3/pkg/client/rp"
	httphelper "github.com/zitadel/oidc/v3/pkg/http"
	"github.com/zitadel/oidc/v3/pkg/oidc"

	"github.com/tharsikan/shop-web-app-backend/internal/config"
)

const (
	redirectURICookieName = "muzfi.redirect_uri"
	flowCookieLifetime    = 10 * time.Minute
)

// RelyingParty handles the SSO login against the external IdP by wrapping
// the zitadel/oidc RelyingParty implementation.
type RelyingParty struct {
	rp rp.RelyingParty
}

// NewRelyingParty discovers the issuer and builds a PKCE-enabled relying party.
func NewRelyingParty(ctx context.Context, cfg *config.ExternalIdPConfig, secureCookies bool) (*RelyingParty, error) {
	// Cookie keys only protect the short-lived PKCE verifier, so per-process keys are enough.
	hashKey, err := generateRandomBytes(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate cookie hash key: %w", err)
	}
	cryptoKey, err := generateRandomBytes(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate cookie crypto key: %w", err)
	}

	var cookieOpts []httphelper.CookieHandlerOpt
	if !secureCookies {
		cookieOpts = append(cookieOpts, httphelper.WithUnsecure())
	}
	cookieHandler := httphelper.NewCookieHandler(hashKey, cryptoKey, cookieOpts...)

	options := []rp.Option{
		rp.WithCookieHandler(cookieHandler),
		rp.WithVerifierOpts(rp.WithIssuedAtMaxAge(10 * time.Second)),
		rp.WithPKCE(cookieHandler),
	}

	relyingParty, err := rp.NewRelyingPartyOIDC(ctx, cfg.Issuer, cfg.ClientID, cfg.ClientSecret, cfg.RedirectURI,
		cfg.Scopes, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC relying party: %w", err)
	}

	return &RelyingParty{rp: relyingParty}, nil
}

// RP exposes the underlying zitadel relying party for its HTTP handlers.
func (r *RelyingParty) RP() rp.RelyingParty {
	return r.rp
}

// ClaimsMap returns every claim of the ID token, with the typed standard claims filled in.
func ClaimsMap(claims *oidc.IDTokenClaims) map[string]any {
	out := make(map[string]any, len(claims.Claims)+3)
	maps.Copy(out, claims.Claims)
	out["sub"] = claims.Subject
	if claims.Email != "" {
		out["email"] = claims.Email
	}
	if claims.Name != "" {
		out["name"] = claims.Name
	}
	return out
}

// generateRandomBytes creates a slice of random bytes of a specified size.
func generateRandomBytes(size int) ([]byte, error) {
	b := make([]byte, size)
	_, err := io.ReadFull(rand.Reader, b)
	if err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}

// GenerateNonce generates a random nonce string.
func GenerateNonce() (string, error) {
	b, err := generateRandomBytes(32)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// SetRedirectURICookie remembers where to send the browser after the callback.
func SetRedirectURICookie(w http.ResponseWriter, r *http.Request, redirectURI string) {
	setFlowCookie(w, r, redirectURICookieName, redirectURI, time.Now().Add(flowCookieLifetime))
}

// SafeRedirect reports whether redirectURI may be used as a post-login destination.
// Only same-site absolute paths and URLs on one of allowedOrigins qualify.
func SafeRedirect(redirectURI string, allowedOrigins []string) bool {
	if redirectURI == "" || strings.ContainsAny(redirectURI, "\\\r\n\t") {
		return false
	}
	u, err := url.Parse(redirectURI)
	if err != nil {
		return false
	}
	if u.Scheme == "" && u.Host == "" && u.User == nil {
		return strings.HasPrefix(redirectURI, "/") && !strings.HasPrefix(redirectURI, "//")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	origin := u.Scheme + "://" + u.Host
	for _, allowed := range allowedOrigins {
		if allowed != "*" && strings.EqualFold(strings.TrimSuffix(allowed, "/"), origin) {
			return u.User == nil
		}
	}
	return false
}

// GetRedirectURICookie retrieves and clears the redirect URI cookie.
// Returns empty string if cookie not found or expired.
func GetRedirectURICookie(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(redirectURICookieName)
	if err != nil {
		return ""
	}
	setFlowCookie(w, r, redirectURICookieName, "", time.Unix(0, 0))
	return cookie.Value
}

func setFlowCookie(w http.ResponseWriter, r *http.Request, name, value string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}
