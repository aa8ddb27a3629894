package cli

import (
	"github.com/spf13/cobra"

	"github.com/schwifty-labs/morty-pipeline/pkg/apperrors"
	"github.com/schwifty-labs/morty-pipeline/pkg/models"
	"github.com/schwifty-labs/morty-pipeline/pkg/repositories"
	"github.com/schwifty-labs/morty-pipeline/pkg/services"
)

func newQualityCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "quality",
		Short: "Run the data quality check battery against the dbo tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := newApp(cmd.Context(), configPath, version, true)
			if err != nil {
				return err
			}
			defer cleanup()

			svc := services.NewQualityService(repositories.NewQualityRepository(a.db), a.logger)

			report, err := svc.Run(cmd.Context())
			if err != nil {
				return err
			}

			renderReport(report)
			return reportExitError(report)
		},
	}
}

// reportExitError maps a quality report to the command's exit status. A hard
// FAIL means the data is not fit for downstream use; an ERROR means we could
// not certify it either way. Both are nonzero exits.
func reportExitError(report *models.QualityReport) error {
	if !report.AllHardChecksPassed() || report.HasErrors() {
		return apperrors.ErrQualityFailed
	}
	return nil
}
