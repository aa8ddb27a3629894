package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schwifty-labs/morty-pipeline/pkg/landing"
	"github.com/schwifty-labs/morty-pipeline/pkg/repositories"
	"github.com/schwifty-labs/morty-pipeline/pkg/services"
)

func newLoadRawCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "load-raw",
		Short: "Load the latest JSON snapshots into the raw landing tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := newApp(cmd.Context(), configPath, version, true)
			if err != nil {
				return err
			}
			defer cleanup()

			store := landing.NewStore(a.cfg.RawDataPath, a.logger)
			svc := services.NewRawLoadService(
				store,
				repositories.NewRawCharacterRepository(a.db),
				repositories.NewRawEpisodeRepository(a.db),
				a.logger,
			)

			summary, err := svc.Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("Loaded %d characters (%d in table) and %d episodes (%d in table)\n",
				summary.CharactersLoaded, summary.CharactersInTable,
				summary.EpisodesLoaded, summary.EpisodesInTable)
			return nil
		},
	}
}
