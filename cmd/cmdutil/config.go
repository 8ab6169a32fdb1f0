// Package cmdutil holds helpers shared by the muzfiapi subcommands.
package cmdutil

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tharsikan/shop-web-app-backend/internal/config"
)

// LoadConfig reads the environment configuration and applies the global flag overrides.
func LoadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	overrides := map[string]*string{
		"db-url":      &cfg.DatabaseURL,
		"server-addr": &cfg.ServerAddr,
		"server-url":  &cfg.ServerURL,
		"log-level":   &cfg.LogLevel,
	}
	for name, target := range overrides {
		flag := cmd.Flag(name)
		if flag == nil || !flag.Changed {
			continue
		}
		*target = flag.Value.String()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
