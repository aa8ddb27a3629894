package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schwifty-labs/morty-pipeline/pkg/api"
	"github.com/schwifty-labs/morty-pipeline/pkg/landing"
	"github.com/schwifty-labs/morty-pipeline/pkg/repositories"
	"github.com/schwifty-labs/morty-pipeline/pkg/services"
)

func newAllCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run the full pipeline: migrate, ingest, load-raw, transform, quality",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := newApp(cmd.Context(), configPath, version, true)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := a.runMigrations(migrationsPath); err != nil {
				return err
			}

			client := api.NewClient(a.cfg.API, a.logger)
			store := landing.NewStore(a.cfg.RawDataPath, a.logger)
			rawCharacters := repositories.NewRawCharacterRepository(a.db)
			rawEpisodes := repositories.NewRawEpisodeRepository(a.db)

			pipeline := services.NewPipeline(
				services.NewIngestService(client, store, a.logger),
				services.NewRawLoadService(store, rawCharacters, rawEpisodes, a.logger),
				services.NewTransformService(rawCharacters, rawEpisodes,
					repositories.NewDimensionRepository(a.db), a.logger),
				services.NewQualityService(repositories.NewQualityRepository(a.db), a.logger),
				a.logger,
			)

			result, err := pipeline.Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("Ingested %d characters and %d episodes\n",
				result.Ingest.Characters, result.Ingest.Episodes)
			printTransformSummary(result.Transform)
			renderReport(result.Report)
			return reportExitError(result.Report)
		},
	}
}
