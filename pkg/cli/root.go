package cli

import (
	"github.com/spf13/cobra"
)

var (
	configPath     string
	migrationsPath string
)

// NewRootCmd builds the morty-pipeline command tree.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "morty-pipeline",
		Short:   "Rick and Morty API pipeline: ingest, load, transform, and check",
		Version: version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&migrationsPath, "migrations", "migrations", "path to the schema migrations directory")

	rootCmd.AddCommand(
		newMigrateCmd(version),
		newIngestCmd(version),
		newLoadRawCmd(version),
		newTransformCmd(version),
		newQualityCmd(version),
		newAllCmd(version),
	)

	return rootCmd
}
