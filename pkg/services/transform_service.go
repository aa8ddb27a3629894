package services

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/schwifty-labs/morty-pipeline/pkg/models"
	"github.com/schwifty-labs/morty-pipeline/pkg/repositories"
)

// trailingIDPattern matches the final run of digits in an episode reference
// URL, e.g. ".../episode/7". A reference with no trailing digits carries no
// usable id and is skipped.
var trailingIDPattern = regexp.MustCompile(`(\d+)$`)

// TransformSummary reports one full transform run.
type TransformSummary struct {
	Characters models.UpsertResult
	Episodes   models.UpsertResult
	Bridge     models.InsertResult
}

// TransformService deterministically flattens raw documents into the
// dimension tables and explodes episode-reference arrays into the bridge
// table. Re-running on the same input converges to the same state: dimensions
// are upserted by id, bridge pairs are inserted only when absent.
type TransformService interface {
	// Run transforms everything currently landed in the raw tables.
	Run(ctx context.Context) (*TransformSummary, error)

	// TransformCharacters flattens and upserts the given raw character
	// documents. A malformed document (missing or non-integer id) is skipped
	// and counted, never failing the batch; a store-level write failure
	// aborts the step.
	TransformCharacters(ctx context.Context, raws []models.RawRecord) (models.UpsertResult, error)

	// TransformEpisodes flattens and upserts the given raw episode documents.
	TransformEpisodes(ctx context.Context, raws []models.RawRecord) (models.UpsertResult, error)

	// ExplodeBridge materializes the character-episode relation from each
	// character's episode-reference array. Pairs are deduplicated within the
	// batch and inserted only when absent.
	ExplodeBridge(ctx context.Context, raws []models.RawRecord) (models.InsertResult, error)
}

type transformService struct {
	rawCharacters repositories.RawRepository
	rawEpisodes   repositories.RawRepository
	dims          repositories.DimensionRepository
	logger        *zap.Logger
	// now is swappable for deterministic tests.
	now func() time.Time
}

// NewTransformService creates a new TransformService.
func NewTransformService(
	rawCharacters repositories.RawRepository,
	rawEpisodes repositories.RawRepository,
	dims repositories.DimensionRepository,
	logger *zap.Logger,
) TransformService {
	return &transformService{
		rawCharacters: rawCharacters,
		rawEpisodes:   rawEpisodes,
		dims:          dims,
		logger:        logger.Named("transform"),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

var _ TransformService = (*transformService)(nil)

func (s *transformService) Run(ctx context.Context) (*TransformSummary, error) {
	rawChars, err := s.rawCharacters.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read raw characters: %w", err)
	}
	rawEps, err := s.rawEpisodes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read raw episodes: %w", err)
	}

	summary := &TransformSummary{}

	if summary.Characters, err = s.TransformCharacters(ctx, rawChars); err != nil {
		return nil, err
	}
	if summary.Episodes, err = s.TransformEpisodes(ctx, rawEps); err != nil {
		return nil, err
	}
	if summary.Bridge, err = s.ExplodeBridge(ctx, rawChars); err != nil {
		return nil, err
	}

	s.logger.Info("Transform run complete",
		zap.Int("characters_written", summary.Characters.Total()),
		zap.Int("episodes_written", summary.Episodes.Total()),
		zap.Int("bridge_inserted", summary.Bridge.Inserted),
		zap.Int("bridge_existing", summary.Bridge.Existing))

	return summary, nil
}

func (s *transformService) TransformCharacters(ctx context.Context, raws []models.RawRecord) (models.UpsertResult, error) {
	var result models.UpsertResult
	ingestedAt := s.now()

	for _, raw := range raws {
		row, ok := s.flattenCharacter(raw, ingestedAt)
		if !ok {
			result.Skipped++
			continue
		}

		inserted, err := s.dims.UpsertCharacter(ctx, row)
		if err != nil {
			return result, fmt.Errorf("character transform aborted: %w", err)
		}
		if inserted {
			result.Inserted++
		} else {
			result.Updated++
		}
	}

	s.logger.Info("Transformed characters",
		zap.Int("inserted", result.Inserted),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped))

	return result, nil
}

func (s *transformService) TransformEpisodes(ctx context.Context, raws []models.RawRecord) (models.UpsertResult, error) {
	var result models.UpsertResult
	ingestedAt := s.now()

	for _, raw := range raws {
		row, ok := s.flattenEpisode(raw, ingestedAt)
		if !ok {
			result.Skipped++
			continue
		}

		inserted, err := s.dims.UpsertEpisode(ctx, row)
		if err != nil {
			return result, fmt.Errorf("episode transform aborted: %w", err)
		}
		if inserted {
			result.Inserted++
		} else {
			result.Updated++
		}
	}

	s.logger.Info("Transformed episodes",
		zap.Int("inserted", result.Inserted),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped))

	return result, nil
}

func (s *transformService) ExplodeBridge(ctx context.Context, raws []models.RawRecord) (models.InsertResult, error) {
	var result models.InsertResult
	createdAt := s.now()

	type pair struct{ characterID, episodeID int }
	seen := make(map[pair]struct{})

	for _, raw := range raws {
		characterID, ok := raw.Payload.Int("id")
		if !ok {
			s.logger.Warn("Skipping character without usable id during bridge explosion",
				zap.Int("entity_id", raw.EntityID))
			result.SkippedRefs++
			continue
		}

		for _, ref := range raw.Payload.Strings("episode") {
			episodeID, ok := extractTrailingID(ref)
			if !ok {
				// Reference carries no trailing digits: treated as absent.
				result.SkippedRefs++
				continue
			}

			p := pair{characterID, episodeID}
			if _, dup := seen[p]; dup {
				// The source array may repeat a reference; collapse within the batch.
				continue
			}
			seen[p] = struct{}{}

			inserted, err := s.dims.InsertBridge(ctx, &models.BridgeRow{
				CharacterID: characterID,
				EpisodeID:   episodeID,
				CreatedAt:   createdAt,
			})
			if err != nil {
				return result, fmt.Errorf("bridge explosion aborted: %w", err)
			}
			if inserted {
				result.Inserted++
			} else {
				result.Existing++
			}
		}
	}

	s.logger.Info("Exploded bridge",
		zap.Int("inserted", result.Inserted),
		zap.Int("existing", result.Existing),
		zap.Int("skipped_refs", result.SkippedRefs))

	return result, nil
}

// flattenCharacter projects one raw character document into a dimension row.
// Only a missing or non-integer id makes the document malformed; every other
// absent leaf flattens to NULL.
func (s *transformService) flattenCharacter(raw models.RawRecord, ingestedAt time.Time) (*models.CharacterRow, bool) {
	id, ok := raw.Payload.Int("id")
	if !ok {
		s.logger.Warn("Skipping malformed character document",
			zap.Int("entity_id", raw.EntityID),
			zap.String("reason", "missing or non-integer id"))
		return nil, false
	}

	row := &models.CharacterRow{
		ID:           id,
		Name:         leafPtr(raw.Payload, "name"),
		Status:       leafPtr(raw.Payload, "status"),
		Species:      leafPtr(raw.Payload, "species"),
		Type:         leafPtr(raw.Payload, "type"),
		Gender:       leafPtr(raw.Payload, "gender"),
		OriginName:   nestedLeafPtr(raw.Payload, "origin", "name"),
		OriginURL:    nestedLeafPtr(raw.Payload, "origin", "url"),
		LocationName: nestedLeafPtr(raw.Payload, "location", "name"),
		LocationURL:  nestedLeafPtr(raw.Payload, "location", "url"),
		Image:        leafPtr(raw.Payload, "image"),
		URL:          leafPtr(raw.Payload, "url"),
		CreatedAt:    timeLeafPtr(raw.Payload, "created"),
		IngestedAt:   ingestedAt,
	}
	return row, true
}

func (s *transformService) flattenEpisode(raw models.RawRecord, ingestedAt time.Time) (*models.EpisodeRow, bool) {
	id, ok := raw.Payload.Int("id")
	if !ok {
		s.logger.Warn("Skipping malformed episode document",
			zap.Int("entity_id", raw.EntityID),
			zap.String("reason", "missing or non-integer id"))
		return nil, false
	}

	row := &models.EpisodeRow{
		ID:          id,
		Name:        leafPtr(raw.Payload, "name"),
		EpisodeCode: leafPtr(raw.Payload, "episode"),
		AirDate:     leafPtr(raw.Payload, "air_date"),
		URL:         leafPtr(raw.Payload, "url"),
		CreatedAt:   timeLeafPtr(raw.Payload, "created"),
		IngestedAt:  ingestedAt,
	}
	return row, true
}

// extractTrailingID pulls the final run of digits off a reference URL.
func extractTrailingID(ref string) (int, bool) {
	m := trailingIDPattern.FindString(ref)
	if m == "" {
		return 0, false
	}
	var id int
	if _, err := fmt.Sscanf(m, "%d", &id); err != nil {
		return 0, false
	}
	return id, true
}

func leafPtr(doc models.Document, key string) *string {
	v, ok := doc.String(key)
	if !ok {
		return nil
	}
	return &v
}

func nestedLeafPtr(doc models.Document, objKey, leafKey string) *string {
	v, ok := doc.StringAt(objKey, leafKey)
	if !ok {
		return nil
	}
	return &v
}

func timeLeafPtr(doc models.Document, key string) *time.Time {
	t, ok := doc.Time(key)
	if !ok {
		return nil
	}
	return &t
}
