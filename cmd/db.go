package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	"github.com/tharsikan/shop-web-app-backend/internal/db/bunx"
	"github.com/tharsikan/shop-web-app-backend/internal/logging"
	"github.com/tharsikan/shop-web-app-backend/internal/migrations"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database management commands",
	Long:  `Commands for managing database migrations and schema.`,
}

// withMigrator opens the database and hands a migrator over it to fn.
func withMigrator(cmd *cobra.Command, fn func(*migrate.Migrator) error) error {
	db, err := bunx.NewDB(cmd.Context(), cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func(db *bun.DB) { _ = bunx.Close(db) }(db)

	return fn(migrate.NewMigrator(db, migrations.Migrations))
}

// locked runs fn while holding the migration lock.
func locked(cmd *cobra.Command, m *migrate.Migrator, fn func() error) error {
	ctx := cmd.Context()
	if err := m.Lock(ctx); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	defer func() {
		if err := m.Unlock(ctx); err != nil {
			log := logging.NewConsole(cfg.LogLevel)
			log.Warn().Err(err).Msg("failed to release migration lock")
		}
	}()
	return fn()
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize migration tables",
	Long:  `Creates the migration tracking tables in the database. Run this once during initial setup.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.NewConsole(cfg.LogLevel)
		return withMigrator(cmd, func(m *migrate.Migrator) error {
			if err := m.Init(cmd.Context()); err != nil {
				return fmt.Errorf("failed to initialize migrator: %w", err)
			}
			log.Info().Msg("migration tables initialized")
			return nil
		})
	},
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long:  `Applies all pending migrations to the database with locking to prevent concurrent migrations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.NewConsole(cfg.LogLevel)
		return withMigrator(cmd, func(m *migrate.Migrator) error {
			return locked(cmd, m, func() error {
				group, err := m.Migrate(cmd.Context())
				if err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				if group.IsZero() {
					log.Info().Msg("no new migrations to apply")
				} else {
					log.Info().Int64("group", group.ID).Msg("applied migration group")
				}
				return nil
			})
		})
	},
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd, func(m *migrate.Migrator) error {
			ms, err := m.MigrationsWithStatus(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}
			out := cmd.OutOrStdout()
			for _, mig := range ms {
				status := "pending"
				if mig.GroupID > 0 {
					status = fmt.Sprintf("applied (group %d)", mig.GroupID)
				}
				fmt.Fprintf(out, "%s\t%s\n", mig.Name, status)
			}
			return nil
		})
	},
}

var dbRollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Rollback last migration group",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.NewConsole(cfg.LogLevel)
		return withMigrator(cmd, func(m *migrate.Migrator) error {
			return locked(cmd, m, func() error {
				group, err := m.Rollback(cmd.Context())
				if err != nil {
					return fmt.Errorf("rollback failed: %w", err)
				}
				if group.IsZero() {
					log.Info().Msg("no migrations to roll back")
				} else {
					log.Info().Int64("group", group.ID).Msg("rolled back migration group")
				}
				return nil
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbInitCmd)
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbStatusCmd)
	dbCmd.AddCommand(dbRollbackCmd)
}
