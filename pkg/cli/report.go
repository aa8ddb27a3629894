package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/schwifty-labs/morty-pipeline/pkg/models"
)

var (
	passColor    = color.New(color.FgGreen)
	failColor    = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgMagenta, color.Bold)
)

func statusLabel(status models.CheckStatus) string {
	switch status {
	case models.CheckStatusPass:
		return passColor.Sprint("PASS   ")
	case models.CheckStatusFail:
		return failColor.Sprint("FAIL   ")
	case models.CheckStatusWarning:
		return warningColor.Sprint("WARNING")
	default:
		return errorColor.Sprint("ERROR  ")
	}
}

// renderReport prints the check battery in execution order, one line per
// check, followed by the hard-check tally and the overall verdict.
func renderReport(report *models.QualityReport) {
	fmt.Println()
	fmt.Printf("Data quality report %s (%s)\n",
		report.RunID, report.RanAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Println(strings.Repeat("-", 60))

	for _, res := range report.Results {
		fmt.Printf("  %s  %s", statusLabel(res.Status), res.Name)
		switch res.Status {
		case models.CheckStatusPass:
		case models.CheckStatusError:
			fmt.Printf("  (%v)", res.Err)
		default:
			fmt.Printf("  (metric=%d)", res.Metric)
		}
		fmt.Println()
		if len(res.Detail) > 0 {
			fmt.Printf("           %s\n", strings.Join(res.Detail, ", "))
		}
	}

	fmt.Println(strings.Repeat("-", 60))
	passed, total := report.HardCheckCounts()
	fmt.Printf("%d of %d hard checks passed", passed, total)
	if n := report.CountByStatus(models.CheckStatusWarning); n > 0 {
		fmt.Printf(", %d warning(s)", n)
	}
	if n := report.CountByStatus(models.CheckStatusError); n > 0 {
		fmt.Printf(", %d error(s)", n)
	}
	fmt.Println()

	switch {
	case report.HasErrors():
		errorColor.Println("Verdict: UNDETERMINED (some checks could not run)")
	case report.AllHardChecksPassed():
		passColor.Println("Verdict: PASSED")
	default:
		failColor.Println("Verdict: FAILED")
	}
}
