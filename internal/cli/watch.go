package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/syssam/gqlcodegen"
	"github.com/syssam/gqlcodegen/server"
	"github.com/syssam/gqlcodegen/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate the code on schema and operation changes",
	Long: `Generates the code, then watches the schema and operation files and
regenerates on every change until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	manager := watch.NewManager()
	defer manager.CloseAll()

	srv := server.NewStatic(nil)
	opts := append(cfg.CodegenOptions(logger, true, manager), gqlcodegen.WithDisable(false))
	schema, err := gqlcodegen.WatchSchema(ctx, srv, cfg.Schema, cfg.LoadOptions(logger), opts...)
	if err != nil {
		return err
	}
	res, err := gqlcodegen.Codegen(ctx, srv, opts...)
	if err != nil {
		return err
	}
	if err := schema.Ready(ctx); err != nil {
		return err
	}
	if err := res.Ready(ctx); err != nil {
		return err
	}
	cmd.Printf("Watching, press Ctrl+C to stop\n")
	<-ctx.Done()
	return nil
}
