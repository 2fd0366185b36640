package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/ecotrack/internal/config"
	"github.com/rshade/ecotrack/internal/emission"
)

// NewConfigValidateCmd creates the config validate command for validating configuration.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validates the configuration file for syntax and semantic correctness.

This includes:
- General configuration syntax validation
- The custom emission catalog, if catalog.file is set`,
		Example: `  # Validate current configuration
  ecotrack config validate

  # Validate and show detailed information
  ecotrack config validate --verbose`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")

	return cmd
}

// runConfigValidate executes the configuration validation logic.
func runConfigValidate(cmd *cobra.Command, verbose bool) error {
	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	catalogVersion := "built-in"
	if cfg.Catalog.File != "" {
		catalog, err := emission.Load(cfg.Catalog.File)
		if err != nil {
			return fmt.Errorf("configuration validation failed: %w", err)
		}
		catalogVersion = catalog.Version()
	}

	cmd.Printf("✅ Configuration is valid\n")

	if verbose {
		printVerboseDetails(cmd, cfg, catalogVersion)
	}

	return nil
}

// printVerboseDetails prints detailed configuration information.
func printVerboseDetails(cmd *cobra.Command, cfg *config.Config, catalogVersion string) {
	cmd.Println()
	cmd.Println("Configuration details:")
	cmd.Printf("  Config file: %s\n", cfg.Path())
	cmd.Printf("  Output format: %s\n", cfg.Output.DefaultFormat)
	cmd.Printf("  Output precision: %d\n", cfg.Output.Precision)
	cmd.Printf("  Logging level: %s\n", cfg.Logging.Level)
	cmd.Printf("  Log file: %s\n", cfg.Logging.File)
	cmd.Printf("  Store driver: %s\n", cfg.Store.Driver)
	cmd.Printf("  Catalog: %s\n", catalogVersion)
	cmd.Printf("  User: %s\n", cfg.User.ID)
	if cfg.Budget.IsEnabled() {
		cmd.Printf("  Budget: %.2f kg CO₂ %s\n", cfg.Budget.LimitKg, cfg.Budget.GetPeriod())
	} else {
		cmd.Println("  No carbon budget configured")
	}
}
