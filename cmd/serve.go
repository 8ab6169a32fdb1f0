package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tharsikan/shop-web-app-backend/internal/auth"
	"github.com/tharsikan/shop-web-app-backend/internal/db/bunx"
	"github.com/tharsikan/shop-web-app-backend/internal/logging"
	"github.com/tharsikan/shop-web-app-backend/internal/migrations"
	"github.com/tharsikan/shop-web-app-backend/internal/okta"
	"github.com/tharsikan/shop-web-app-backend/internal/repository"
	"github.com/tharsikan/shop-web-app-backend/internal/server"
	"github.com/tharsikan/shop-web-app-backend/internal/services/iam"
	"github.com/tharsikan/shop-web-app-backend/internal/services/social"
	"github.com/tharsikan/shop-web-app-backend/internal/session"
)

var (
	autoMigrate   bool
	purgeInterval time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Muzfi API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.New("muzfiapi", cfg.LogLevel)
		ctx := cmd.Context()

		db, err := bunx.NewDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer func() { _ = bunx.Close(db) }()
		logger.Info().Str("dialect", string(bunx.DetectDatabaseType(cfg.DatabaseURL))).Msg("connected to database")

		if autoMigrate {
			group, err := migrations.Migrate(ctx, db)
			if err != nil {
				return err
			}
			logger.Info().Int64("group", group.ID).Msg("migrations applied")
		}

		userRepo := repository.NewBunUserRepository(db)
		sessionRepo := repository.NewBunSessionRepository(db)
		postRepo := repository.NewBunPostRepository(db)

		store := session.NewStore(sessionRepo, userRepo, cfg.SessionCacheSize, cfg.SessionTTL, logger,
			session.WithRevalidateInterval(cfg.SessionRevalidateInterval))

		iamDeps := iam.Dependencies{Users: userRepo, Sessions: store, Logger: logger}
		if cfg.Okta.Enabled() {
			client, err := okta.NewClient(cfg.Okta, okta.WithLogger(logger))
			if err != nil {
				return fmt.Errorf("failed to create okta client: %w", err)
			}
			iamDeps.IdP = client
			logger.Info().Str("org", cfg.Okta.OrgURL).Msg("okta role sync enabled")
		} else {
			logger.Warn().Msg("OKTA_ORG_URL not set, role edits are disabled")
		}
		iamService := iam.NewService(iamDeps)

		socialService := social.NewService(social.Dependencies{
			Gate:    iamService,
			Users:   userRepo,
			Follows: repository.NewBunFollowRepository(db),
			Blocks:  repository.NewBunBlockRepository(db),
			Posts:   postRepo,
			Likes:   repository.NewBunLikeRepository(db),
			Logger:  logger,
		})

		policy, err := auth.NewPolicy()
		if err != nil {
			return fmt.Errorf("configure authority policy: %w", err)
		}

		var relyingParty *auth.RelyingParty
		if cfg.ExternalIdP != nil {
			secure := strings.HasPrefix(cfg.ServerURL, "https://")
			relyingParty, err = auth.NewRelyingParty(ctx, cfg.ExternalIdP, secure)
			if err != nil {
				return fmt.Errorf("failed to create relying party: %w", err)
			}
			logger.Info().Str("issuer", cfg.ExternalIdP.Issuer).Msg("sso login enabled")
		}

		r := server.NewRouter(server.RouterOptions{
			IAM:          iamService,
			Social:       socialService,
			Sessions:     store,
			Policy:       policy,
			RelyingParty: relyingParty,
			Cfg:          cfg,
			Logger:       logger,
		})

		srv := &http.Server{
			Addr:         cfg.ServerAddr,
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		purgeCtx, cancelPurge := context.WithCancel(ctx)
		defer cancelPurge()
		go purgeSessions(purgeCtx, store, purgeInterval, logger)

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info().Str("addr", cfg.ServerAddr).Str("url", cfg.ServerURL).Msg("starting server")
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)
		case sig := <-shutdown:
			logger.Info().Str("signal", sig.String()).Msg("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				_ = srv.Close()
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}
			logger.Info().Msg("server stopped")
			return nil
		}
	},
}

// purgeSessions deletes expired session rows every interval until ctx is done.
func purgeSessions(ctx context.Context, store *session.Store, interval time.Duration, logger zerolog.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			n, err := store.PurgeExpired(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("session purge failed")
				continue
			}
			if n > 0 {
				logger.Info().Int64("deleted", n).Msg("purged expired sessions")
			}
		case <-ctx.Done():
			return
		}
	}
}

func init() {
	serveCmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Apply pending migrations before serving")
	serveCmd.Flags().DurationVar(&purgeInterval, "session-purge-interval", 15*time.Minute, "How often expired sessions are deleted (0 disables)")
	rootCmd.AddCommand(serveCmd)
}
