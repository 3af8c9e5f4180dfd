package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"assetimport/internal/app"
	"assetimport/internal/domain"
	"assetimport/internal/report"
	"assetimport/internal/service"
)

type importOptions struct {
	validateOnly bool
	out          string
	rejectedCSV  string
	output       string
}

func newImportCommand() *cobra.Command {
	opts := &importOptions{}
	cmd := &cobra.Command{
		Use:   "import <kind> <file>",
		Short: "Validate and submit a spreadsheet",
		Long: `Import reads an .xlsx spreadsheet, validates each row, submits the valid rows
to the inventory API in a single bulk request, and prints a row-by-row report.

Kinds: categories, assets, asset-updates.`,
		Example: `  # Import categories and save the results workbook
  assetimport import categories ./categories.xlsx --out results.xlsx

  # Check a file without touching the inventory
  assetimport import assets ./assets.xlsx --validate-only

  # Machine-readable report
  assetimport import asset-updates ./updates.xlsx -o json`,
		Args: cobra.ExactArgs(2),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return kindNames(), cobra.ShellCompDirectiveNoFileComp
			}
			return []string{"xlsx", "xls"}, cobra.ShellCompDirectiveFilterFileExt
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], args[1], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.validateOnly, "validate-only", false, "Run local checks only; nothing is submitted")
	cmd.Flags().StringVar(&opts.out, "out", "", "Write the results workbook to this path")
	cmd.Flags().StringVar(&opts.rejectedCSV, "rejected-csv", "", "Write rejected rows as CSV to this path")
	cmd.Flags().StringVarP(&opts.output, "output", "o", formatTable, "Output format (table|json)")
	_ = cmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{formatTable, formatJSON}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runImport(cmd *cobra.Command, kindArg, path string, opts *importOptions) error {
	if opts.output != formatTable && opts.output != formatJSON {
		return fmt.Errorf("unknown output format %q", opts.output)
	}
	kind, err := domain.ParseImportKind(kindArg)
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

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening spreadsheet: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("reading spreadsheet: %w", err)
	}

	result, err := a.Imports.Import(cmd.Context(), service.ImportInput{
		Kind:         kind,
		FileName:     filepath.Base(path),
		Size:         info.Size(),
		File:         f,
		ValidateOnly: opts.validateOnly,
	})
	if err != nil {
		return err
	}

	if opts.out != "" {
		dl, err := a.Imports.ExportResult(cmd.Context(), result.ID)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.out, dl.Data, 0o644); err != nil {
			return fmt.Errorf("writing results workbook: %w", err)
		}
	}
	if opts.rejectedCSV != "" {
		dl, err := a.Imports.ExportRejected(cmd.Context(), result.ID)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.rejectedCSV, dl.Data, 0o644); err != nil {
			return fmt.Errorf("writing rejected rows: %w", err)
		}
	}

	view := report.Render(result)
	if opts.output == formatJSON {
		return renderJSON(cmd.OutOrStdout(), view)
	}
	renderTable(cmd.OutOrStdout(), view)
	if opts.out != "" {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Results workbook: %s\n", opts.out)
	}
	return nil
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func kindNames() []string {
	names := make([]string, len(domain.ImportKinds))
	for i, k := range domain.ImportKinds {
		names[i] = string(k)
	}
	return names
}
