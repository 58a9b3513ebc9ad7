package cli

import (
	"github.com/spf13/cobra"

	"github.com/syssam/gqlcodegen/compiler/gen"
)

var printSchemaOutput string

var printSchemaCmd = &cobra.Command{
	Use:   "print-schema",
	Short: "Print the merged schema",
	Long: `Merges the schema files and prints the schema with its directives, or
writes it to the file given with --output.`,
	Args: cobra.NoArgs,
	RunE: runPrintSchema,
}

func init() {
	printSchemaCmd.Flags().StringVarP(&printSchemaOutput, "output", "o", "", "write the schema to this file")
	rootCmd.AddCommand(printSchemaCmd)
}

func runPrintSchema(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	srv, _, err := staticServer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	formatter := gen.TextFormatter{Path: printSchemaOutput}
	if printSchemaOutput != "" {
		path, err := gen.WriteOutputSchema(ctx, srv.Schema(), printSchemaOutput, formatter)
		if err != nil {
			return err
		}
		cmd.Printf("Wrote %s\n", path)
		return nil
	}
	sdl, err := gen.PrintSchema(srv.Schema())
	if err != nil {
		return err
	}
	sdl, err = formatter.Format(ctx, sdl, gen.ParserGraphQL)
	if err != nil {
		return err
	}
	cmd.Print(sdl)
	return nil
}
