package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/syssam/gqlcodegen/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if _, err := os.Stat(configPath); err == nil && !initForce {
			return fmt.Errorf("%s already exists, use --force to overwrite it", configPath)
		}
		if err := config.Save(configPath, config.Default()); err != nil {
			return err
		}
		cmd.Printf("Wrote %s\n", configPath)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing file")
	rootCmd.AddCommand(initCmd)
}
