package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/tharsikan/shop-web-app-backend/internal/auth"
	"github.com/tharsikan/shop-web-app-backend/internal/config"
	muzfimiddleware "github.com/tharsikan/shop-web-app-backend/internal/middleware"
	"github.com/tharsikan/shop-web-app-backend/internal/services/iam"
	"github.com/tharsikan/shop-web-app-backend/internal/services/social"
	"github.com/tharsikan/shop-web-app-backend/internal/session"
)

// RouterOptions controls the construction of the HTTP router.
type RouterOptions struct {
	IAM          iam.Service
	Social       *social.Service
	Sessions     *session.Store
	Policy       *auth.Policy
	RelyingParty *auth.RelyingParty // nil disables SSO login
	Cfg          *config.Config
	Logger       zerolog.Logger
	CORSOptions  *cors.Options
}

// DefaultCORSOptions returns the CORS policy for the configured web origins.
func DefaultCORSOptions(origins []string) cors.Options {
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NewRouter assembles a chi.Router with shared middleware, the CORS policy and all handlers.
func NewRouter(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	// Baseline middleware shared across entrypoints.
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(opts.Logger))
	r.Use(hlog.RequestIDHandler("req_id", "X-Request-Id"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(middleware.Recoverer)

	var origins []string
	if opts.Cfg != nil {
		origins = opts.Cfg.CORSAllowedOrigins
	}
	corsCfg := DefaultCORSOptions(origins)
	if opts.CORSOptions != nil {
		corsCfg = *opts.CORSOptions
	}
	r.Use(cors.Handler(corsCfg))

	r.Use(muzfimiddleware.Authenticate(opts.Sessions, opts.Logger))

	r.Get("/healthz", healthHandler)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	sessionTTL := time.Duration(0)
	if opts.Cfg != nil {
		sessionTTL = opts.Cfg.SessionTTL
	}
	if opts.RelyingParty != nil {
		groupsClaim := "groups"
		if opts.Cfg != nil && opts.Cfg.GroupsClaimField != "" {
			groupsClaim = opts.Cfg.GroupsClaimField
		}
		r.Get("/auth/sso/login", HandleSSOLogin(opts.RelyingParty, origins))
		r.Get("/auth/sso/callback", HandleSSOCallback(opts.RelyingParty, opts.IAM, opts.Sessions, groupsClaim, sessionTTL, origins))
	}
	r.With(muzfimiddleware.RequireAuthenticated).Post("/auth/logout", HandleLogout(opts.Sessions))
	r.With(muzfimiddleware.RequireAuthenticated).Post("/auth/logout-all", HandleLogoutAll(opts.Sessions))

	r.Route("/api", func(r chi.Router) {
		r.With(muzfimiddleware.RequireAuthenticated).Get("/auth/whoami", HandleWhoAmI(opts.IAM))

		// Public reads
		r.Get("/users/{userId}/following", HandleFollowing(opts.Social))
		r.Get("/users/{userId}/followers", HandleFollowers(opts.Social))
		r.Get("/posts/{postId}/likes", HandleLikedUsers(opts.Social))

		r.Group(func(r chi.Router) {
			r.Use(muzfimiddleware.RequirePermission(opts.Policy, auth.ObjectUsers, auth.ActionSocial))
			r.Post("/users/{userId}/follow/{targetId}", HandleSocialAction(opts.Social.Follow, "followed"))
			r.Post("/users/{userId}/unfollow/{targetId}", HandleSocialAction(opts.Social.Unfollow, "unfollowed"))
			r.Post("/users/{userId}/block/{targetId}", HandleSocialAction(opts.Social.Block, "blocked"))
			r.Post("/users/{userId}/unblock/{targetId}", HandleSocialAction(opts.Social.Unblock, "unblocked"))
		})

		r.Group(func(r chi.Router) {
			r.Use(muzfimiddleware.RequirePermission(opts.Policy, auth.ObjectPosts, auth.ActionLike))
			r.Post("/posts/{postId}/like/{userId}", HandleLikeAction(opts.Social.Like, "liked"))
			r.Post("/posts/{postId}/remove-like/{userId}", HandleLikeAction(opts.Social.Unlike, "like removed"))
		})

		r.Group(func(r chi.Router) {
			r.Use(muzfimiddleware.RequirePermission(opts.Policy, auth.ObjectRoles, auth.ActionSelf))
			// Any Member may promote or demote themselves to Elite; Elite is an opt-in tier, not a privilege grant.
			// HandleSelfRoleEdit limits the edit to the caller's own account.
			r.Post("/users/{userId}/roles/elite", HandleSelfRoleEdit(opts.IAM, opts.IAM.PromoteToElite))
			r.Delete("/users/{userId}/roles/elite", HandleSelfRoleEdit(opts.IAM, opts.IAM.RemoveElite))
			r.Post("/users/{userId}/roles/sync", HandleSelfRoleEdit(opts.IAM, opts.IAM.SyncRoles))
		})

		r.Group(func(r chi.Router) {
			r.Use(muzfimiddleware.RequirePermission(opts.Policy, auth.ObjectRoles, auth.ActionAdmin))
			r.Get("/admin/users", HandleListUsers(opts.IAM))
			r.Put("/admin/users/{userId}/roles/{role}", HandleAdminRoleEdit(opts.IAM, auth.RoleEditAdd))
			r.Delete("/admin/users/{userId}/roles/{role}", HandleAdminRoleEdit(opts.IAM, auth.RoleEditRemove))
		})
	})

	return r
}
