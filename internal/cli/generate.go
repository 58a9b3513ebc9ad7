package cli

import (
	"github.com/spf13/cobra"

	"github.com/syssam/gqlcodegen"
)

var generateForce bool

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the code once",
	Long: `Loads the schema, generates the code and writes it to the target path
when it changed. Generation is skipped in production unless --force is given
or the configuration sets disable: false.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().BoolVarP(&generateForce, "force", "f", false, "generate even when disabled")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	srv, _, err := staticServer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	opts := cfg.CodegenOptions(logger, false, nil)
	if generateForce {
		opts = append(opts, gqlcodegen.WithDisable(false))
	}
	res, err := gqlcodegen.Codegen(ctx, srv, opts...)
	if err != nil {
		return err
	}
	switch {
	case res.Disabled:
		cmd.Println("Code generation is disabled.")
	case res.Changed:
		cmd.Printf("Wrote %s\n", res.Path)
	default:
		cmd.Printf("%s is up to date\n", res.Path)
	}
	return nil
}
