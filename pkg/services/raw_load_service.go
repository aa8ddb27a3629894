package services

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/schwifty-labs/morty-pipeline/pkg/landing"
	"github.com/schwifty-labs/morty-pipeline/pkg/models"
	"github.com/schwifty-labs/morty-pipeline/pkg/repositories"
)

// SnapshotReader reads the latest landed snapshot for an entity.
type SnapshotReader interface {
	Latest(entity string) (*landing.Snapshot, string, error)
}

// RawLoadSummary reports one raw load run.
type RawLoadSummary struct {
	CharactersLoaded  int
	EpisodesLoaded    int
	CharactersInTable int
	EpisodesInTable   int
}

// RawLoadService moves the latest landed JSON snapshots into the raw tables.
// Documents are keyed by their payload id; reloading the same snapshot
// replaces payloads in place rather than duplicating rows.
type RawLoadService interface {
	Run(ctx context.Context) (*RawLoadSummary, error)
}

type rawLoadService struct {
	snapshots     SnapshotReader
	rawCharacters repositories.RawRepository
	rawEpisodes   repositories.RawRepository
	logger        *zap.Logger
	now           func() time.Time
}

// NewRawLoadService creates a new RawLoadService.
func NewRawLoadService(
	snapshots SnapshotReader,
	rawCharacters repositories.RawRepository,
	rawEpisodes repositories.RawRepository,
	logger *zap.Logger,
) RawLoadService {
	return &rawLoadService{
		snapshots:     snapshots,
		rawCharacters: rawCharacters,
		rawEpisodes:   rawEpisodes,
		logger:        logger.Named("raw-load"),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

var _ RawLoadService = (*rawLoadService)(nil)
var _ SnapshotReader = (*landing.Store)(nil)

func (s *rawLoadService) Run(ctx context.Context) (*RawLoadSummary, error) {
	summary := &RawLoadSummary{}
	var err error

	if summary.CharactersLoaded, err = s.loadEntity(ctx, "characters", s.rawCharacters); err != nil {
		return nil, err
	}
	if summary.EpisodesLoaded, err = s.loadEntity(ctx, "episodes", s.rawEpisodes); err != nil {
		return nil, err
	}

	// Verify what actually landed.
	if summary.CharactersInTable, err = s.rawCharacters.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to verify raw characters: %w", err)
	}
	if summary.EpisodesInTable, err = s.rawEpisodes.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to verify raw episodes: %w", err)
	}

	s.logger.Info("Raw load complete",
		zap.Int("characters_loaded", summary.CharactersLoaded),
		zap.Int("episodes_loaded", summary.EpisodesLoaded),
		zap.Int("characters_in_table", summary.CharactersInTable),
		zap.Int("episodes_in_table", summary.EpisodesInTable))

	return summary, nil
}

func (s *rawLoadService) loadEntity(ctx context.Context, entity string, repo repositories.RawRepository) (int, error) {
	snap, path, err := s.snapshots.Latest(entity)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s snapshot: %w", entity, err)
	}

	sourceLabel := filepath.Base(path)
	loadedAt := s.now()

	records := make([]models.RawRecord, 0, len(snap.Data))
	skipped := 0
	for _, doc := range snap.Data {
		id, ok := doc.Int("id")
		if !ok {
			// A document without a usable id has no key to land under.
			skipped++
			continue
		}
		records = append(records, models.RawRecord{
			EntityID:    id,
			Payload:     doc,
			SourceLabel: sourceLabel,
			IngestedAt:  loadedAt,
		})
	}
	if skipped > 0 {
		s.logger.Warn("Skipped documents without id during raw load",
			zap.String("entity", entity),
			zap.Int("skipped", skipped))
	}

	loaded, err := repo.Replace(ctx, records)
	if err != nil {
		return loaded, fmt.Errorf("failed to load %s from %s: %w", entity, sourceLabel, err)
	}

	s.logger.Info("Loaded snapshot into raw table",
		zap.String("entity", entity),
		zap.String("source", sourceLabel),
		zap.Int("rows", loaded))

	// Spot check: log a few landed names. Advisory only.
	if names, err := repo.SampleNames(ctx, 5); err != nil {
		s.logger.Warn("Failed to sample landed rows", zap.String("entity", entity), zap.Error(err))
	} else if len(names) > 0 {
		s.logger.Info("Sample of landed rows",
			zap.String("entity", entity),
			zap.Strings("names", names))
	}

	return loaded, nil
}
