package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/givehope/donation-api/internal/config"
	"github.com/givehope/donation-api/internal/database"
	"github.com/givehope/donation-api/internal/models"
	"github.com/givehope/donation-api/internal/ratelimit"
)

// NewPresetsCmd creates the rate limit preset command with list, set and
// delete subcommands.
func NewPresetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "Manage rate limit preset overrides",
		Long:  "List, set or delete per-preset rate limit overrides. Overrides are stored in the database and hot-reloaded by running servers.",
	}
	cmd.AddCommand(newPresetsListCmd())
	cmd.AddCommand(newPresetsSetCmd())
	cmd.AddCommand(newPresetsDeleteCmd())
	return cmd
}

func newPresetsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List presets with any stored overrides",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer func() { _ = db.Close() }()

			repo := database.NewRatelimitPresetRepository(db)
			overrides, err := repo.ListOverrides(context.Background())
			if err != nil {
				return fmt.Errorf("list preset overrides: %w", err)
			}

			registry := ratelimit.NewRegistry()
			registry.Apply(overrides)

			overridden := make(map[string]bool, len(overrides))
			for _, o := range overrides {
				overridden[o.Name] = true
			}

			fmt.Println("Rate limit presets:")
			for _, name := range registry.Names() {
				p, _ := registry.Get(name)
				marker := ""
				if overridden[name] {
					marker = " (override)"
				}
				fmt.Printf("  %-16s %d requests / %s%s\n", p.Name, p.MaxRequests, p.Window, marker)
			}
			return nil
		},
	}
}

func newPresetsSetCmd() *cobra.Command {
	var name string
	var maxRequests int
	var window time.Duration
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set an override for a named preset",
		Long:  "Store an override for a preset (e.g. --name AUTH --max 5 --window 10m). Running servers pick it up on the next reload.",
		RunE: func(cmd *cobra.Command, args []string) error {
			name = strings.ToUpper(strings.TrimSpace(name))
			if name == "" {
				return fmt.Errorf("--name is required")
			}
			if maxRequests <= 0 {
				return fmt.Errorf("--max must be positive")
			}
			if window <= 0 {
				return fmt.Errorf("--window must be positive")
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer func() { _ = db.Close() }()

			repo := database.NewRatelimitPresetRepository(db)
			p := &models.RatelimitPreset{
				PresetName:  name,
				MaxRequests: maxRequests,
				WindowMS:    window.Milliseconds(),
			}
			if err := repo.Set(context.Background(), p); err != nil {
				return fmt.Errorf("set preset override: %w", err)
			}
			fmt.Printf("Preset %s overridden: %d requests / %s\n", name, maxRequests, window)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Preset name, e.g. AUTH, STANDARD (required)")
	cmd.Flags().IntVar(&maxRequests, "max", 0, "Maximum requests per window (required)")
	cmd.Flags().DurationVar(&window, "window", 0, "Window length, e.g. 1m, 5m, 1h (required)")
	return cmd
}

func newPresetsDeleteCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a preset override, restoring the default",
		RunE: func(cmd *cobra.Command, args []string) error {
			name = strings.ToUpper(strings.TrimSpace(name))
			if name == "" {
				return fmt.Errorf("--name is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer func() { _ = db.Close() }()

			repo := database.NewRatelimitPresetRepository(db)
			if err := repo.Delete(context.Background(), name); err != nil {
				return fmt.Errorf("delete preset override: %w", err)
			}
			fmt.Printf("Preset override %s deleted.\n", name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Preset name (required)")
	return cmd
}
