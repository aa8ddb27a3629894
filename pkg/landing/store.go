package landing

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/schwifty-labs/morty-pipeline/pkg/apperrors"
	"github.com/schwifty-labs/morty-pipeline/pkg/models"
)

// Snapshot is the on-disk envelope of one ingestion run for one entity.
type Snapshot struct {
	IngestedAt   time.Time         `json:"ingested_at"`
	Source       string            `json:"source"`
	TotalRecords int               `json:"total_records"`
	Data         []models.Document `json:"data"`
}

// Store lands ingested JSON snapshots under a base directory, one
// subdirectory per entity. Only the most recent snapshot per entity is kept;
// writing a new one removes its predecessors.
type Store struct {
	baseDir string
	logger  *zap.Logger
}

// NewStore creates a Store rooted at baseDir.
func NewStore(baseDir string, logger *zap.Logger) *Store {
	return &Store{
		baseDir: baseDir,
		logger:  logger.Named("landing"),
	}
}

// Write lands a snapshot for the entity and prunes older snapshot files.
// Returns the path of the written file.
func (s *Store) Write(entity, source string, docs []models.Document) (string, error) {
	dir := filepath.Join(s.baseDir, entity)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create landing directory %s: %w", dir, err)
	}

	now := time.Now().UTC()
	snap := Snapshot{
		IngestedAt:   now,
		Source:       source,
		TotalRecords: len(docs),
		Data:         docs,
	}

	name := fmt.Sprintf("%s_%s.json", entity, now.Format("2006-01-02T15-04-05"))
	path := filepath.Join(dir, name)

	payload, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s snapshot: %w", entity, err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	s.pruneOld(dir, entity, name)

	s.logger.Info("Landed snapshot",
		zap.String("entity", entity),
		zap.String("path", path),
		zap.Int("records", len(docs)))

	return path, nil
}

// Latest reads the most recent snapshot for the entity. Returns
// apperrors.ErrNoSnapshot when nothing has been landed yet.
func (s *Store) Latest(entity string) (*Snapshot, string, error) {
	files, err := s.snapshotFiles(entity)
	if err != nil {
		return nil, "", err
	}
	if len(files) == 0 {
		return nil, "", fmt.Errorf("%w for entity %s in %s", apperrors.ErrNoSnapshot, entity, s.baseDir)
	}

	// Names embed the timestamp, so lexicographic order is chronological.
	latest := files[len(files)-1]
	raw, err := os.ReadFile(latest)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read snapshot %s: %w", latest, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, "", fmt.Errorf("failed to parse snapshot %s: %w", latest, err)
	}

	return &snap, latest, nil
}

func (s *Store) snapshotFiles(entity string) ([]string, error) {
	pattern := filepath.Join(s.baseDir, entity, entity+"_*.json")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to glob %s: %w", pattern, err)
	}
	sort.Strings(files)
	return files, nil
}

func (s *Store) pruneOld(dir, entity, keep string) {
	files, err := s.snapshotFiles(entity)
	if err != nil {
		s.logger.Warn("Failed to list old snapshots", zap.String("entity", entity), zap.Error(err))
		return
	}
	for _, f := range files {
		if filepath.Base(f) == keep {
			continue
		}
		if err := os.Remove(f); err != nil {
			s.logger.Warn("Failed to delete old snapshot", zap.String("path", f), zap.Error(err))
			continue
		}
		s.logger.Debug("Deleted old snapshot", zap.String("path", f))
	}
}
