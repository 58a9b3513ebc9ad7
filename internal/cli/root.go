// Package cli implements the gqlcodegen command line.
package cli

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/syssam/gqlcodegen/compiler/load"
	"github.com/syssam/gqlcodegen/config"
	"github.com/syssam/gqlcodegen/internal/logging"
	"github.com/syssam/gqlcodegen/server"
)

var (
	configPath string
	silent     bool
)

var rootCmd = &cobra.Command{
	Use:   "gqlcodegen",
	Short: "Generate TypeScript types from a GraphQL schema",
	Long: `gqlcodegen reads the schema files listed in gqlcodegen.yml and writes
resolver, loader and operation types for a Mercurius GraphQL server.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultFilename, "configuration file")
	rootCmd.PersistentFlags().BoolVarP(&silent, "silent", "s", false, "only report errors")
}

// Execute runs the command line.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// setup loads the configuration and builds the logger of a command.
func setup(cmd *cobra.Command) (*config.Config, *logrus.Logger, error) {
	logger := logging.New(silent)
	logger.SetOutput(cmd.ErrOrStderr())
	cfg, err := config.Load(configPath, logger)
	if err != nil {
		return nil, nil, err
	}
	if silent {
		cfg.Silent = true
	}
	return cfg, logger, nil
}

// staticServer loads the schema once and serves it from memory.
func staticServer(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger, extra ...load.Option) (*server.Static, []string, error) {
	loader, err := load.New(cfg.Schema, append(cfg.LoadOptions(logger), extra...)...)
	if err != nil {
		return nil, nil, err
	}
	res, err := loader.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	// The snapshot is written in the background; the process may exit next.
	loader.Flush()
	srv, err := server.FromSources(res.Sources)
	if err != nil {
		return nil, nil, err
	}
	return srv, res.Sources, nil
}
