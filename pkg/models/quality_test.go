package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQualityReport_AllHardChecksPassed(t *testing.T) {
	report := &QualityReport{Results: []CheckResult{
		{Name: "a", Severity: SeverityHard, Status: CheckStatusPass},
		{Name: "b", Severity: SeveritySoft, Status: CheckStatusWarning},
	}}
	assert.True(t, report.AllHardChecksPassed(), "warnings must not affect the verdict")

	report.Results = append(report.Results, CheckResult{Name: "c", Severity: SeverityHard, Status: CheckStatusFail})
	assert.False(t, report.AllHardChecksPassed())
}

func TestQualityReport_ErrorsDoNotFailTheVerdict(t *testing.T) {
	report := &QualityReport{Results: []CheckResult{
		{Name: "a", Severity: SeverityHard, Status: CheckStatusPass},
		{Name: "b", Severity: SeverityHard, Status: CheckStatusError, Err: errors.New("relation missing")},
	}}

	assert.True(t, report.AllHardChecksPassed())
	assert.True(t, report.HasErrors())
}

func TestQualityReport_HardCheckCounts(t *testing.T) {
	report := &QualityReport{Results: []CheckResult{
		{Severity: SeverityHard, Status: CheckStatusPass},
		{Severity: SeverityHard, Status: CheckStatusFail},
		{Severity: SeverityHard, Status: CheckStatusError},
		{Severity: SeveritySoft, Status: CheckStatusWarning},
	}}

	passed, total := report.HardCheckCounts()
	assert.Equal(t, 1, passed)
	assert.Equal(t, 3, total)
	assert.Equal(t, 1, report.CountByStatus(CheckStatusWarning))
}
