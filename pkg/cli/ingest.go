package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schwifty-labs/morty-pipeline/pkg/api"
	"github.com/schwifty-labs/morty-pipeline/pkg/landing"
	"github.com/schwifty-labs/morty-pipeline/pkg/services"
)

func newIngestCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Fetch characters and episodes from the API and land JSON snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := newApp(cmd.Context(), configPath, version, false)
			if err != nil {
				return err
			}
			defer cleanup()

			client := api.NewClient(a.cfg.API, a.logger)
			store := landing.NewStore(a.cfg.RawDataPath, a.logger)
			svc := services.NewIngestService(client, store, a.logger)

			summary, err := svc.Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("Ingested %d characters and %d episodes to %s\n",
				summary.Characters, summary.Episodes, a.cfg.RawDataPath)
			return nil
		},
	}
}
