package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schwifty-labs/morty-pipeline/pkg/repositories"
	"github.com/schwifty-labs/morty-pipeline/pkg/services"
)

func newTransformCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "transform",
		Short: "Flatten raw documents into dimension and bridge tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := newApp(cmd.Context(), configPath, version, true)
			if err != nil {
				return err
			}
			defer cleanup()

			svc := services.NewTransformService(
				repositories.NewRawCharacterRepository(a.db),
				repositories.NewRawEpisodeRepository(a.db),
				repositories.NewDimensionRepository(a.db),
				a.logger,
			)

			summary, err := svc.Run(cmd.Context())
			if err != nil {
				return err
			}

			printTransformSummary(summary)
			return nil
		},
	}
}

func printTransformSummary(summary *services.TransformSummary) {
	fmt.Printf("Characters: %d inserted, %d updated, %d skipped\n",
		summary.Characters.Inserted, summary.Characters.Updated, summary.Characters.Skipped)
	fmt.Printf("Episodes:   %d inserted, %d updated, %d skipped\n",
		summary.Episodes.Inserted, summary.Episodes.Updated, summary.Episodes.Skipped)
	fmt.Printf("Bridge:     %d inserted, %d existing, %d refs skipped\n",
		summary.Bridge.Inserted, summary.Bridge.Existing, summary.Bridge.SkippedRefs)
}
