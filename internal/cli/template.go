package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"assetimport/internal/app"
	"assetimport/internal/domain"
)

func newTemplateCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "template <kind>",
		Short: "Write a blank import template",
		Long: `Template writes an .xlsx file with the header row the importer expects and
an Instructions sheet describing every column. Required columns are marked *.`,
		Example: `  assetimport template categories
  assetimport template assets --out ~/Desktop/assets.xlsx`,
		Args: cobra.ExactArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return kindNames(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseImportKind(args[0])
			if err != nil {
				return err
			}
			rt, err := runtimeFrom(cmd)
			if err != nil {
				return err
			}
			a, err := app.New(cmd.Context(), rt.cfg, rt.logger)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			dl, err := a.Imports.Template(kind)
			if err != nil {
				return err
			}
			path := out
			if path == "" {
				path = dl.FileName
			}
			if err := os.WriteFile(path, dl.Data, 0o644); err != nil {
				return fmt.Errorf("writing template: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Template written to %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Output path (default: <kind>_import_template.xlsx)")
	return cmd
}
