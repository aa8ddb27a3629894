package cli

import (
	"github.com/spf13/cobra"
)

func newMigrateCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := newApp(cmd.Context(), configPath, version, false)
			if err != nil {
				return err
			}
			defer cleanup()

			return a.runMigrations(migrationsPath)
		},
	}
}
