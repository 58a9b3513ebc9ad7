package cli

import (
	"github.com/spf13/cobra"

	"github.com/syssam/gqlcodegen/compiler/load"
)

var prebuildCmd = &cobra.Command{
	Use:   "prebuild",
	Short: "Write the schema snapshots",
	Long: `Discovers the schema files, checks that they form a valid schema and
writes the JSON snapshot, and the Go snapshot when prebuild.goSnapshot is
set. Production starts read the snapshot instead of the files.`,
	Args: cobra.NoArgs,
	RunE: runPrebuild,
}

func init() {
	rootCmd.AddCommand(prebuildCmd)
}

func runPrebuild(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	_, sources, err := staticServer(ctx, cfg, logger, load.WithPrebuild(false), load.WithoutSnapshotWrite())
	if err != nil {
		return err
	}

	path := cfg.Prebuild.SnapshotPath
	if path == "" {
		path = load.DefaultSnapshotPath
	}
	if _, err := load.WriteSnapshot(path, sources); err != nil {
		return err
	}
	cmd.Printf("Wrote %d schema fragments to %s\n", len(sources), path)

	if cfg.Prebuild.GoSnapshot != "" {
		if _, err := load.WriteGoSnapshot(cfg.Prebuild.GoSnapshot, cfg.Prebuild.GoPackage, sources); err != nil {
			return err
		}
		cmd.Printf("Wrote %s\n", cfg.Prebuild.GoSnapshot)
	}
	return nil
}
