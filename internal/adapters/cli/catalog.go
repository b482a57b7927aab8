package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/adapters/catalog"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/planning/commands"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/production"
)

// NewCatalogCommand creates the catalog command with subcommands
func NewCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Import and export recipe catalogs",
		Long: `Move recipe catalogs between files and the database.

Examples:
  planner catalog import factory.yaml
  planner catalog export --format json --out factory.json
  planner catalog export --catalog factory.yaml --format json`,
	}

	cmd.AddCommand(newCatalogImportCommand())
	cmd.AddCommand(newCatalogExportCommand())

	return cmd
}

func newCatalogImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Validate a catalog file and store it in the database",
		Long: `Validate a YAML or JSON catalog file and replace the database catalog
with it. An invalid file leaves the stored catalog untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := a.context()

			m, err := a.mediator(ctx, true)
			if err != nil {
				return err
			}
			resp, err := m.Send(ctx, &commands.ImportCatalogCommand{Source: catalog.NewFileProvider(args[0])})
			if err != nil {
				return err
			}
			imported := resp.(*commands.ImportCatalogResponse)

			if a.outputJSON() {
				return writeJSON(cmd.OutOrStdout(), imported)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Catalog imported: %d resources, %d recipes (version %d)\n",
				imported.Resources, imported.Recipes, imported.Version)
			return nil
		},
	}
}

func newCatalogExportCommand() *cobra.Command {
	var (
		format  string
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the current catalog as YAML or JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := catalog.ParseFormat(format)
			if err != nil {
				return err
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := a.context()

			source, err := a.catalogSource()
			if err != nil {
				return err
			}
			snapshot, err := source.LoadSnapshot(ctx)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if outPath != "" {
				file, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", outPath, err)
				}
				defer file.Close()
				w = file
			}
			return catalog.Export(w, snapshot, f)
		},
	}

	cmd.Flags().StringVar(&format, "format", "yaml", "Output format: yaml or json")
	cmd.Flags().StringVar(&outPath, "out", "", "Write to a file instead of stdout")

	return cmd
}

// catalogFileSnapshot loads and validates a catalog file
func catalogFileSnapshot(a *app, path string) (production.Snapshot, error) {
	snapshot, err := catalog.NewFileProvider(path).LoadSnapshot(a.context())
	if err != nil {
		return production.Snapshot{}, err
	}
	if err := production.ValidateSnapshot(snapshot); err != nil {
		return production.Snapshot{}, err
	}
	return snapshot, nil
}
