package cmdutil

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/uptrace/bun"

	"github.com/tharsikan/shop-web-app-backend/internal/config"
	"github.com/tharsikan/shop-web-app-backend/internal/db/bunx"
	"github.com/tharsikan/shop-web-app-backend/internal/okta"
	"github.com/tharsikan/shop-web-app-backend/internal/repository"
	"github.com/tharsikan/shop-web-app-backend/internal/services/iam"
	"github.com/tharsikan/shop-web-app-backend/internal/session"
)

// IAMServiceBundle bundles the service with its underlying DB connection so callers can
// reuse the connection for other repositories when necessary.
type IAMServiceBundle struct {
	Service  iam.Service
	Sessions *session.Store
	Okta     *okta.Client // nil when Okta is not configured
	DB       *bun.DB
}

// Close releases the underlying database connection.
func (b *IAMServiceBundle) Close() {
	if b == nil || b.DB == nil {
		return
	}
	_ = bunx.Close(b.DB)
}

// NewIAMServiceBundle builds the IAM service for CLI commands. The Okta client is wired
// only when OKTA_ORG_URL is set; role edits fail with iam.ErrRoleSyncUnavailable otherwise.
func NewIAMServiceBundle(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*IAMServiceBundle, error) {
	db, err := bunx.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	users := repository.NewBunUserRepository(db)
	// The CLI holds no live sessions; the store satisfies the registry contract and
	// revokes session rows so servers drop them on their next revalidation.
	store := session.NewStore(repository.NewBunSessionRepository(db), users, 1, cfg.SessionTTL, logger)

	bundle := &IAMServiceBundle{Sessions: store, DB: db}
	deps := iam.Dependencies{
		Users:    users,
		Sessions: store,
		Logger:   logger,
	}
	if cfg.Okta.Enabled() {
		client, err := okta.NewClient(cfg.Okta, okta.WithLogger(logger))
		if err != nil {
			_ = bunx.Close(db)
			return nil, fmt.Errorf("failed to create okta client: %w", err)
		}
		deps.IdP = client
		bundle.Okta = client
	}

	bundle.Service = iam.NewService(deps)
	return bundle, nil
}
