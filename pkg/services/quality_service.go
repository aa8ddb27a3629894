package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/schwifty-labs/morty-pipeline/pkg/models"
	"github.com/schwifty-labs/morty-pipeline/pkg/repositories"
)

// maxDetailIDs caps how many diagnostic ids a single check carries in its
// report line; the metric still counts everything.
const maxDetailIDs = 20

// QualityService runs the fixed validation battery against the normalized and
// raw stores. Checks execute independently: one check failing, or erroring,
// never prevents the rest from running.
type QualityService interface {
	// Run evaluates the full battery in order and returns the report.
	Run(ctx context.Context) (*models.QualityReport, error)
}

type qualityService struct {
	repo   repositories.QualityRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewQualityService creates a new QualityService.
func NewQualityService(repo repositories.QualityRepository, logger *zap.Logger) QualityService {
	return &qualityService{
		repo:   repo,
		logger: logger.Named("quality"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

var _ QualityService = (*qualityService)(nil)

// check is one entry of the battery: a pure function from the store to a
// metric plus optional diagnostics.
type check struct {
	name     string
	severity models.CheckSeverity
	run      func(ctx context.Context) (metric int, detail []string, err error)
}

func (s *qualityService) battery() []check {
	return []check{
		{
			name:     "PK_CHARACTERS_UNIQUE",
			severity: models.SeverityHard,
			run: func(ctx context.Context) (int, []string, error) {
				n, err := s.repo.DuplicateKeyRows(ctx, repositories.TableDimCharacters, "id")
				return n, nil, err
			},
		},
		{
			name:     "PK_EPISODES_UNIQUE",
			severity: models.SeverityHard,
			run: func(ctx context.Context) (int, []string, error) {
				n, err := s.repo.DuplicateKeyRows(ctx, repositories.TableDimEpisodes, "id")
				return n, nil, err
			},
		},
		{
			name:     "PK_BRIDGE_UNIQUE",
			severity: models.SeverityHard,
			run: func(ctx context.Context) (int, []string, error) {
				n, err := s.repo.DuplicateKeyRows(ctx, repositories.TableBridge, "character_id", "episode_id")
				return n, nil, err
			},
		},
		s.notNullCheck("NOT_NULL_CHARACTER_ID", repositories.TableDimCharacters, "id"),
		s.notNullCheck("NOT_NULL_CHARACTER_NAME", repositories.TableDimCharacters, "name"),
		s.notNullCheck("NOT_NULL_EPISODE_ID", repositories.TableDimEpisodes, "id"),
		s.notNullCheck("NOT_NULL_EPISODE_NAME", repositories.TableDimEpisodes, "name"),
		s.notNullCheck("NOT_NULL_EPISODE_CODE", repositories.TableDimEpisodes, "episode_code"),
		{
			name:     "FK_BRIDGE_TO_CHARACTERS",
			severity: models.SeverityHard,
			run: func(ctx context.Context) (int, []string, error) {
				ids, err := s.repo.OrphanedBridgeIDs(ctx, "character_id", repositories.TableDimCharacters)
				if err != nil {
					return 0, nil, err
				}
				return len(ids), detailIDs(ids), nil
			},
		},
		{
			name:     "FK_BRIDGE_TO_EPISODES",
			severity: models.SeverityHard,
			run: func(ctx context.Context) (int, []string, error) {
				ids, err := s.repo.OrphanedBridgeIDs(ctx, "episode_id", repositories.TableDimEpisodes)
				if err != nil {
					return 0, nil, err
				}
				return len(ids), detailIDs(ids), nil
			},
		},
		s.rowCountCheck("ROW_COUNT_CHARACTERS", repositories.TableRawCharacters, repositories.TableDimCharacters),
		s.rowCountCheck("ROW_COUNT_EPISODES", repositories.TableRawEpisodes, repositories.TableDimEpisodes),
		{
			name:     "BRIDGE_MIN_EPISODES_PER_CHARACTER",
			severity: models.SeveritySoft,
			run: func(ctx context.Context) (int, []string, error) {
				ids, err := s.repo.CharactersWithoutEpisodes(ctx)
				if err != nil {
					return 0, nil, err
				}
				return len(ids), detailIDs(ids), nil
			},
		},
	}
}

func (s *qualityService) notNullCheck(name, table, column string) check {
	return check{
		name:     name,
		severity: models.SeverityHard,
		run: func(ctx context.Context) (int, []string, error) {
			n, err := s.repo.NullCount(ctx, table, column)
			return n, nil, err
		},
	}
}

// rowCountCheck compares raw vs normalized counts for exact equality; a
// surplus on either side is a defect.
func (s *qualityService) rowCountCheck(name, rawTable, dimTable string) check {
	return check{
		name:     name,
		severity: models.SeverityHard,
		run: func(ctx context.Context) (int, []string, error) {
			rawCount, err := s.repo.RowCount(ctx, rawTable)
			if err != nil {
				return 0, nil, err
			}
			dimCount, err := s.repo.RowCount(ctx, dimTable)
			if err != nil {
				return 0, nil, err
			}
			diff := rawCount - dimCount
			if diff < 0 {
				diff = -diff
			}
			detail := []string{
				fmt.Sprintf("raw=%d", rawCount),
				fmt.Sprintf("dbo=%d", dimCount),
			}
			return diff, detail, nil
		},
	}
}

func (s *qualityService) Run(ctx context.Context) (*models.QualityReport, error) {
	report := &models.QualityReport{
		RunID: uuid.New(),
		RanAt: s.now(),
	}

	s.logger.Info("Running data quality checks", zap.String("run_id", report.RunID.String()))

	for _, c := range s.battery() {
		result := models.CheckResult{
			Name:     c.name,
			Severity: c.severity,
		}

		metric, detail, err := c.run(ctx)
		switch {
		case err != nil:
			// The check could not execute: unknown, not known-bad. Record it
			// and keep evaluating the rest of the battery.
			result.Status = models.CheckStatusError
			result.Err = err
			s.logger.Error("Check execution failed",
				zap.String("check", c.name),
				zap.Error(err))
		case metric == 0:
			result.Status = models.CheckStatusPass
			result.Metric = 0
		case c.severity == models.SeveritySoft:
			result.Status = models.CheckStatusWarning
			result.Metric = metric
			result.Detail = detail
			s.logger.Warn("Check reported warning",
				zap.String("check", c.name),
				zap.Int("metric", metric),
				zap.Strings("detail", detail))
		default:
			result.Status = models.CheckStatusFail
			result.Metric = metric
			result.Detail = detail
			s.logger.Error("Check failed",
				zap.String("check", c.name),
				zap.Int("metric", metric),
				zap.Strings("detail", detail))
		}

		report.Results = append(report.Results, result)
	}

	passed, total := report.HardCheckCounts()
	s.logger.Info("Quality battery complete",
		zap.Int("hard_passed", passed),
		zap.Int("hard_total", total),
		zap.Int("warnings", report.CountByStatus(models.CheckStatusWarning)),
		zap.Int("errors", report.CountByStatus(models.CheckStatusError)),
		zap.Bool("all_hard_checks_passed", report.AllHardChecksPassed()))

	return report, nil
}

func detailIDs(ids []int) []string {
	if len(ids) > maxDetailIDs {
		ids = ids[:maxDetailIDs]
	}
	return repositories.IDsToStrings(ids)
}
