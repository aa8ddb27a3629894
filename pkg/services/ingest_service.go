package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/schwifty-labs/morty-pipeline/pkg/landing"
	"github.com/schwifty-labs/morty-pipeline/pkg/models"
)

// EntityFetcher is the slice of the API client the ingest step needs.
type EntityFetcher interface {
	FetchAllCharacters(ctx context.Context) ([]models.Document, error)
	FetchAllEpisodes(ctx context.Context) ([]models.Document, error)
}

// SnapshotWriter lands fetched documents on disk.
type SnapshotWriter interface {
	Write(entity, source string, docs []models.Document) (string, error)
}

// IngestSummary reports one ingestion run.
type IngestSummary struct {
	Characters int
	Episodes   int
}

// IngestService pulls the full paginated character and episode listings from
// the API and lands them as JSON snapshots.
type IngestService interface {
	Run(ctx context.Context) (*IngestSummary, error)
}

type ingestService struct {
	fetcher EntityFetcher
	store   SnapshotWriter
	logger  *zap.Logger
}

// NewIngestService creates a new IngestService.
func NewIngestService(fetcher EntityFetcher, store SnapshotWriter, logger *zap.Logger) IngestService {
	return &ingestService{
		fetcher: fetcher,
		store:   store,
		logger:  logger.Named("ingest"),
	}
}

var _ IngestService = (*ingestService)(nil)
var _ SnapshotWriter = (*landing.Store)(nil)

func (s *ingestService) Run(ctx context.Context) (*IngestSummary, error) {
	characters, err := s.fetcher.FetchAllCharacters(ctx)
	if err != nil {
		return nil, fmt.Errorf("character ingestion failed: %w", err)
	}
	if _, err := s.store.Write("characters", "character", characters); err != nil {
		return nil, fmt.Errorf("failed to land characters: %w", err)
	}

	episodes, err := s.fetcher.FetchAllEpisodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("episode ingestion failed: %w", err)
	}
	if _, err := s.store.Write("episodes", "episode", episodes); err != nil {
		return nil, fmt.Errorf("failed to land episodes: %w", err)
	}

	summary := &IngestSummary{
		Characters: len(characters),
		Episodes:   len(episodes),
	}

	s.logger.Info("Ingestion complete",
		zap.Int("characters", summary.Characters),
		zap.Int("episodes", summary.Episodes))

	return summary, nil
}
