package cli

import (
	"fmt"
	"io"
	"net/url"
	"sort"

	"github.com/spf13/cobra"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage planner configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (PLANNER_* prefix)
2. Config file (config.yaml)
3. Default values

User preferences (default catalog, output format) are stored in
~/.planner/config.json

Examples:
  planner config show
  planner config set-catalog ./factory.yaml
  planner config set-output json
  planner config clear`,
	}

	// Add subcommands
	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCatalogCommand())
	cmd.AddCommand(newConfigSetOutputCommand())
	cmd.AddCommand(newConfigClearCommand())

	return cmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long: `Display the current configuration settings.

Shows both system configuration and user preferences.

Example:
  planner config show`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				if configPath != "" {
					return err
				}
				fmt.Fprintf(out, "Warning: Failed to load config: %v\n", err)
				fmt.Fprintln(out, "Using default configuration.")
				cfg = config.LoadConfigOrDefault("")
			}

			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}

			userCfg, err := userConfigHandler.Load()
			if err != nil {
				fmt.Fprintf(out, "Warning: Failed to load user config: %v\n\n", err)
				userCfg = &config.UserConfig{}
			}

			if jsonOutput {
				return writeJSON(out, map[string]interface{}{
					"config": redactedConfig(cfg),
					"user":   userCfg,
				})
			}

			printConfig(out, cfg, userCfg, userConfigHandler.GetConfigPath())
			return nil
		},
	}

	return cmd
}

func printConfig(out io.Writer, cfg *config.Config, userCfg *config.UserConfig, userPath string) {
	fmt.Fprintln(out, "Planner Configuration")
	fmt.Fprintln(out, "=====================")

	fmt.Fprintln(out, "User Preferences:")
	fmt.Fprintf(out, "  Config file:      %s\n", userPath)
	fmt.Fprintf(out, "  Default Catalog:  %s\n", orNotSet(userCfg.DefaultCatalog))
	fmt.Fprintf(out, "  Default Output:   %s\n", orNotSet(userCfg.DefaultOutput))

	fmt.Fprintln(out, "\nDatabase:")
	fmt.Fprintf(out, "  Type:             %s\n", cfg.Database.Type)
	switch {
	case cfg.Database.Type == "sqlite":
		fmt.Fprintf(out, "  Path:             %s\n", cfg.Database.Path)
	case cfg.Database.URL != "":
		fmt.Fprintf(out, "  URL:              %s\n", maskPassword(cfg.Database.URL))
	default:
		fmt.Fprintf(out, "  Host:             %s\n", cfg.Database.Host)
		fmt.Fprintf(out, "  Port:             %d\n", cfg.Database.Port)
		fmt.Fprintf(out, "  Database:         %s\n", cfg.Database.Name)
		fmt.Fprintf(out, "  User:             %s\n", cfg.Database.User)
	}
	fmt.Fprintf(out, "  Max Connections:  %d\n", cfg.Database.Pool.MaxOpen)

	fmt.Fprintln(out, "\nPlanner:")
	fmt.Fprintf(out, "  Catalog:          %s\n", orNotSet(cfg.Planner.Catalog))
	fmt.Fprintf(out, "  Max Iterations:   %d\n", cfg.Planner.MaxIterations)
	fmt.Fprintf(out, "  Epsilon:          %g\n", cfg.Planner.Epsilon)
	fmt.Fprintf(out, "  Cost Strategy:    %s\n", cfg.Planner.Cost.Strategy)
	if len(cfg.Planner.Cost.Penalties) > 0 {
		refs := make([]string, 0, len(cfg.Planner.Cost.Penalties))
		for ref := range cfg.Planner.Cost.Penalties {
			refs = append(refs, ref)
		}
		sort.Strings(refs)
		for _, ref := range refs {
			fmt.Fprintf(out, "    %-16s%g\n", ref, cfg.Planner.Cost.Penalties[ref])
		}
	}

	fmt.Fprintln(out, "\nServer:")
	fmt.Fprintf(out, "  Address:          %s\n", cfg.Server.Address)
	fmt.Fprintf(out, "  Timeout:          %s\n", cfg.Server.Timeout)
	fmt.Fprintf(out, "  Rate Limit:       %d req/s (burst: %d)\n",
		cfg.Server.RateLimit.Requests, cfg.Server.RateLimit.Burst)

	fmt.Fprintln(out, "\nDaemon:")
	fmt.Fprintf(out, "  Address:          %s\n", cfg.DaemonAddress())
	fmt.Fprintf(out, "  PID File:         %s\n", cfg.Daemon.PIDFile)
	fmt.Fprintf(out, "  Shutdown Timeout: %s\n", cfg.Daemon.ShutdownTimeout)

	fmt.Fprintln(out, "\nLogging:")
	fmt.Fprintf(out, "  Level:            %s\n", cfg.Logging.Level)
	fmt.Fprintf(out, "  Format:           %s\n", cfg.Logging.Format)
	fmt.Fprintf(out, "  Output:           %s\n", cfg.Logging.Output)

	fmt.Fprintln(out, "\nMetrics:")
	fmt.Fprintf(out, "  Enabled:          %t\n", cfg.Metrics.Enabled)
	if cfg.Metrics.Enabled {
		fmt.Fprintf(out, "  Endpoint:         %s:%d%s\n", cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path)
	}
}

// newConfigSetCatalogCommand creates the config set-catalog subcommand
func newConfigSetCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-catalog <path>",
		Short: "Set the default catalog file",
		Long: `Set the catalog file used when neither --catalog nor planner.catalog
is given. The file must exist and decode as a catalog.

Example:
  planner config set-catalog ./factory.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := catalogFileSnapshot(a, path); err != nil {
				return fmt.Errorf("catalog %s is not usable: %w", path, err)
			}

			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := userConfigHandler.SetDefaultCatalog(path); err != nil {
				return fmt.Errorf("failed to set default catalog: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "✓ Default catalog set successfully")
			fmt.Fprintf(cmd.OutOrStdout(), "  Catalog: %s\n", path)
			return nil
		},
	}

	return cmd
}

// newConfigSetOutputCommand creates the config set-output subcommand
func newConfigSetOutputCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-output <text|json>",
		Short: "Set the default output format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := userConfigHandler.SetDefaultOutput(args[0]); err != nil {
				return fmt.Errorf("failed to set default output: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Default output set to %s\n", args[0])
			return nil
		},
	}

	return cmd
}

// newConfigClearCommand creates the config clear subcommand
func newConfigClearCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear user preferences",
		Long: `Remove the default catalog and output format.

Example:
  planner config clear`,
		RunE: func(cmd *cobra.Command, args []string) error {
			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}

			if err := userConfigHandler.Clear(); err != nil {
				return fmt.Errorf("failed to clear user config: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "✓ User preferences cleared")
			return nil
		},
	}

	return cmd
}

// maskPassword hides the password of a connection URL for display
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); !ok {
		return raw
	}
	u.User = url.UserPassword(u.User.Username(), "xxxxx")
	return u.String()
}

// redactedConfig returns a copy of cfg that is safe to print
func redactedConfig(cfg *config.Config) config.Config {
	out := *cfg
	if out.Database.Password != "" {
		out.Database.Password = "xxxxx"
	}
	out.Database.URL = maskPassword(out.Database.URL)
	return out
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
