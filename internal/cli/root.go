// Package cli provides the assetimport command-line interface.
package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"assetimport/internal/config"
	"assetimport/internal/logging"
)

// Version information (set at build time).
var Version = "dev"

type runtimeKey struct{}

// runtime is what PersistentPreRunE hands to subcommands.
type runtime struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "assetimport",
		Short: "Bulk spreadsheet import for the asset inventory",
		Long: `assetimport reads category and asset spreadsheets, validates every row,
submits the valid ones to the inventory API in one bulk request, and reports
which rows were added and why the others were rejected.

Configuration comes from ASSETIMPORT_* environment variables or a .env file;
the flags below override them.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			applyFlags(cfg, cmd.Root().PersistentFlags())

			logger, err := logging.NewWithWriter(&cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(context.WithValue(ctx, runtimeKey{}, &runtime{cfg: cfg, logger: logger}))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("api-url", "", "Inventory API base URL")
	flags.String("token", "", "Bearer token for the inventory API")
	flags.String("store", "", "Result store provider (memory|redis)")
	flags.String("log-level", "", "Log level (debug|info|warn|error)")

	_ = rootCmd.RegisterFlagCompletionFunc("store", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"memory", "redis"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newTemplateCommand())
	rootCmd.AddCommand(newServeCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// applyFlags overrides configuration with the flags that were set explicitly.
func applyFlags(cfg *config.Config, flags *pflag.FlagSet) {
	set := func(name string, dst *string) {
		if f := flags.Lookup(name); f != nil && f.Changed {
			*dst = f.Value.String()
		}
	}
	set("api-url", &cfg.API.BaseURL)
	set("token", &cfg.API.Token)
	set("store", &cfg.Store.Provider)
	set("log-level", &cfg.Log.Level)
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
}

func runtimeFrom(cmd *cobra.Command) (*runtime, error) {
	rt, ok := cmd.Context().Value(runtimeKey{}).(*runtime)
	if !ok {
		return nil, errors.New("configuration not loaded")
	}
	return rt, nil
}
