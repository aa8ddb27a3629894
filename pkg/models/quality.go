package models

import (
	"time"

	"github.com/google/uuid"
)

// CheckStatus is the outcome of one quality check.
type CheckStatus string

const (
	// CheckStatusPass means the check's metric was zero.
	CheckStatusPass CheckStatus = "PASS"
	// CheckStatusFail means a hard check found defects; downstream
	// consumption should be blocked.
	CheckStatusFail CheckStatus = "FAIL"
	// CheckStatusWarning means a soft check found anomalies; visible but
	// non-blocking.
	CheckStatusWarning CheckStatus = "WARNING"
	// CheckStatusError means the check itself could not execute. The state
	// of the data is unknown, which is distinct from known-bad.
	CheckStatusError CheckStatus = "ERROR"
)

// CheckSeverity distinguishes structural defects from advisory anomalies.
type CheckSeverity string

const (
	// SeverityHard checks report FAIL on a nonzero metric.
	SeverityHard CheckSeverity = "hard"
	// SeveritySoft checks report WARNING on a nonzero metric.
	SeveritySoft CheckSeverity = "soft"
)

// CheckResult is one line of the validation report.
type CheckResult struct {
	Name     string        `json:"name"`
	Severity CheckSeverity `json:"severity"`
	Status   CheckStatus   `json:"status"`
	// Metric is the diagnostic count: duplicated rows, null values, orphans,
	// row-count difference, or uncovered characters depending on the check.
	Metric int `json:"metric"`
	// Detail carries diagnostic identifiers (e.g. orphaned character_ids).
	Detail []string `json:"detail,omitempty"`
	// Err holds the execution failure when Status is ERROR.
	Err error `json:"-"`
}

// QualityReport is the ordered outcome of the full check battery.
type QualityReport struct {
	RunID   uuid.UUID     `json:"run_id"`
	RanAt   time.Time     `json:"ran_at"`
	Results []CheckResult `json:"results"`
}

// AllHardChecksPassed is true iff no FAIL is present. WARNINGs never affect
// it; ERRORs are surfaced separately via HasErrors.
func (r *QualityReport) AllHardChecksPassed() bool {
	for _, res := range r.Results {
		if res.Status == CheckStatusFail {
			return false
		}
	}
	return true
}

// HasErrors reports whether any check could not execute.
func (r *QualityReport) HasErrors() bool {
	for _, res := range r.Results {
		if res.Status == CheckStatusError {
			return true
		}
	}
	return false
}

// HardCheckCounts returns how many hard checks passed out of the total number
// of hard checks, for the "N of M hard checks passed" summary line.
func (r *QualityReport) HardCheckCounts() (passed, total int) {
	for _, res := range r.Results {
		if res.Severity != SeverityHard {
			continue
		}
		total++
		if res.Status == CheckStatusPass {
			passed++
		}
	}
	return passed, total
}

// CountByStatus returns the number of results with the given status.
func (r *QualityReport) CountByStatus(status CheckStatus) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}
