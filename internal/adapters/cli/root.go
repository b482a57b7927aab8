package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath  string
	catalogPath string
	useDaemon   bool
	daemonAddr  string
	jsonOutput  bool
	verbose     bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "planner",
		Short: "Production chain planner",
		Long: `Planner computes recipe execution rates that satisfy target output rates.

Catalogs are read from a YAML/JSON file (--catalog, planner.catalog or the
user default) or from the database after 'planner catalog import'.
Solves run in-process unless --daemon is given.

Examples:
  planner solve --catalog factory.yaml --target circuit=10 --ignore iron
  planner solve --target circuit=10 --tree
  planner groups --complex
  planner plan save --name "Circuit Line" --output circuit=10 --input iron
  planner plan solve plan-circuit-line-1a2b3c4d
  planner catalog import factory.yaml`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: search ., ./configs, /etc/planner)")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "",
		"Catalog file (YAML or JSON); the database catalog is used when unset")
	rootCmd.PersistentFlags().BoolVar(&useDaemon, "daemon", false,
		"Send solves to the planner daemon instead of solving in-process")
	rootCmd.PersistentFlags().StringVar(&daemonAddr, "address", "",
		"Daemon address, unix:/path or host:port (default from config)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Print results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	// Add command groups
	rootCmd.AddCommand(NewSolveCommand())
	rootCmd.AddCommand(NewGroupsCommand())
	rootCmd.AddCommand(NewPlanCommand())
	rootCmd.AddCommand(NewCatalogCommand())
	rootCmd.AddCommand(NewConfigCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
