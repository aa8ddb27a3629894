package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/schwifty-labs/morty-pipeline/pkg/models"
	"github.com/schwifty-labs/morty-pipeline/pkg/repositories"
)

// mockQualityRepo implements repositories.QualityRepository for testing. The
// zero value describes a fully healthy store.
type mockQualityRepo struct {
	duplicates   map[string]int // keyed by table
	nulls        map[string]int // keyed by table.column
	orphans      map[string][]int
	rowCounts    map[string]int
	uncovered    []int
	failingTable string // RowCount on this table returns an error
	checkErr     error
}

func (m *mockQualityRepo) DuplicateKeyRows(_ context.Context, table string, _ ...string) (int, error) {
	if m.checkErr != nil {
		return 0, m.checkErr
	}
	return m.duplicates[table], nil
}

func (m *mockQualityRepo) NullCount(_ context.Context, table, column string) (int, error) {
	return m.nulls[table+"."+column], nil
}

func (m *mockQualityRepo) OrphanedBridgeIDs(_ context.Context, fkColumn, _ string) ([]int, error) {
	return m.orphans[fkColumn], nil
}

func (m *mockQualityRepo) RowCount(_ context.Context, table string) (int, error) {
	if table == m.failingTable {
		return 0, errors.New("store unreachable")
	}
	return m.rowCounts[table], nil
}

func (m *mockQualityRepo) CharactersWithoutEpisodes(_ context.Context) ([]int, error) {
	return m.uncovered, nil
}

func checkByName(t *testing.T, report *models.QualityReport, name string) models.CheckResult {
	t.Helper()
	for _, res := range report.Results {
		if res.Name == name {
			return res
		}
	}
	t.Fatalf("check %s not found in report", name)
	return models.CheckResult{}
}

func TestQualityRun_AllClean(t *testing.T) {
	svc := NewQualityService(&mockQualityRepo{}, zap.NewNop())

	report, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Results, 13)

	for _, res := range report.Results {
		assert.Equal(t, models.CheckStatusPass, res.Status, "check %s", res.Name)
		assert.Zero(t, res.Metric)
	}

	assert.True(t, report.AllHardChecksPassed())
	assert.False(t, report.HasErrors())

	passed, total := report.HardCheckCounts()
	assert.Equal(t, 12, total)
	assert.Equal(t, 12, passed)
}

func TestQualityRun_BatteryOrderIsStable(t *testing.T) {
	svc := NewQualityService(&mockQualityRepo{}, zap.NewNop())

	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	want := []string{
		"PK_CHARACTERS_UNIQUE",
		"PK_EPISODES_UNIQUE",
		"PK_BRIDGE_UNIQUE",
		"NOT_NULL_CHARACTER_ID",
		"NOT_NULL_CHARACTER_NAME",
		"NOT_NULL_EPISODE_ID",
		"NOT_NULL_EPISODE_NAME",
		"NOT_NULL_EPISODE_CODE",
		"FK_BRIDGE_TO_CHARACTERS",
		"FK_BRIDGE_TO_EPISODES",
		"ROW_COUNT_CHARACTERS",
		"ROW_COUNT_EPISODES",
		"BRIDGE_MIN_EPISODES_PER_CHARACTER",
	}
	got := make([]string, len(report.Results))
	for i, res := range report.Results {
		got[i] = res.Name
	}
	assert.Equal(t, want, got)
}

func TestQualityRun_DuplicatePrimaryKeysFail(t *testing.T) {
	repo := &mockQualityRepo{
		duplicates: map[string]int{repositories.TableDimCharacters: 2},
	}
	svc := NewQualityService(repo, zap.NewNop())

	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	res := checkByName(t, report, "PK_CHARACTERS_UNIQUE")
	assert.Equal(t, models.CheckStatusFail, res.Status)
	assert.Equal(t, 2, res.Metric, "metric counts the rows involved in duplication")
	assert.False(t, report.AllHardChecksPassed())
}

func TestQualityRun_NullNamesFail(t *testing.T) {
	repo := &mockQualityRepo{
		nulls: map[string]int{repositories.TableDimCharacters + ".name": 3},
	}
	svc := NewQualityService(repo, zap.NewNop())

	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	res := checkByName(t, report, "NOT_NULL_CHARACTER_NAME")
	assert.Equal(t, models.CheckStatusFail, res.Status)
	assert.Equal(t, 3, res.Metric)
}

func TestQualityRun_OrphanedBridgeRowsFailWithDiagnostics(t *testing.T) {
	repo := &mockQualityRepo{
		orphans: map[string][]int{"character_id": {999}},
	}
	svc := NewQualityService(repo, zap.NewNop())

	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	res := checkByName(t, report, "FK_BRIDGE_TO_CHARACTERS")
	assert.Equal(t, models.CheckStatusFail, res.Status)
	assert.Equal(t, 1, res.Metric)
	assert.Contains(t, res.Detail, "999", "the orphaned character_id is listed in diagnostics")

	// The sibling check stays green.
	assert.Equal(t, models.CheckStatusPass, checkByName(t, report, "FK_BRIDGE_TO_EPISODES").Status)
}

func TestQualityRun_RowCountMismatchFailsEitherDirection(t *testing.T) {
	tests := []struct {
		name string
		raw  int
		dim  int
		want models.CheckStatus
	}{
		{"exact match", 826, 826, models.CheckStatusPass},
		{"dim behind raw", 826, 825, models.CheckStatusFail},
		{"dim ahead of raw", 826, 827, models.CheckStatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockQualityRepo{
				rowCounts: map[string]int{
					repositories.TableRawCharacters: tt.raw,
					repositories.TableDimCharacters: tt.dim,
				},
			}
			svc := NewQualityService(repo, zap.NewNop())

			report, err := svc.Run(context.Background())
			require.NoError(t, err)

			res := checkByName(t, report, "ROW_COUNT_CHARACTERS")
			assert.Equal(t, tt.want, res.Status)
		})
	}
}

func TestQualityRun_CoverageIsAdvisory(t *testing.T) {
	repo := &mockQualityRepo{
		uncovered: []int{12, 99},
	}
	svc := NewQualityService(repo, zap.NewNop())

	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	res := checkByName(t, report, "BRIDGE_MIN_EPISODES_PER_CHARACTER")
	assert.Equal(t, models.CheckStatusWarning, res.Status, "coverage downgrades to WARNING, not FAIL")
	assert.Equal(t, 2, res.Metric)
	assert.True(t, report.AllHardChecksPassed(), "WARNINGs do not affect hard check status")
}

func TestQualityRun_CheckErrorDoesNotStopBattery(t *testing.T) {
	repo := &mockQualityRepo{
		failingTable: repositories.TableRawCharacters,
	}
	svc := NewQualityService(repo, zap.NewNop())

	report, err := svc.Run(context.Background())
	require.NoError(t, err, "a failing check is recorded, not propagated")
	require.Len(t, report.Results, 13, "every check still runs")

	res := checkByName(t, report, "ROW_COUNT_CHARACTERS")
	assert.Equal(t, models.CheckStatusError, res.Status, "unable-to-execute is ERROR, not FAIL")
	require.Error(t, res.Err)

	assert.True(t, report.HasErrors())
	assert.True(t, report.AllHardChecksPassed(), "ERROR means unknown, not known-bad")

	// Checks after the failing one still evaluated.
	assert.Equal(t, models.CheckStatusPass, checkByName(t, report, "BRIDGE_MIN_EPISODES_PER_CHARACTER").Status)
}

func TestQualityRun_DetailIDsAreCapped(t *testing.T) {
	ids := make([]int, 50)
	for i := range ids {
		ids[i] = i + 1
	}
	repo := &mockQualityRepo{uncovered: ids}
	svc := NewQualityService(repo, zap.NewNop())

	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	res := checkByName(t, report, "BRIDGE_MIN_EPISODES_PER_CHARACTER")
	assert.Equal(t, 50, res.Metric, "metric counts everything")
	assert.Len(t, res.Detail, maxDetailIDs, "detail is capped")
}
