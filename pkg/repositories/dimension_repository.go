package repositories

import (
	"context"
	"fmt"

	"github.com/schwifty-labs/morty-pipeline/pkg/database"
	"github.com/schwifty-labs/morty-pipeline/pkg/models"
)

// DimensionRepository applies flattened rows to the dimension and bridge
// tables. Dimensions are upsert-by-id: fields legitimately change between API
// runs, so every column is overwritten. Bridge rows are insert-if-absent: a
// many-to-many fact, once true, is never revised by this pipeline.
type DimensionRepository interface {
	// UpsertCharacter writes the row atomically (single statement) and
	// reports whether it was inserted (true) or updated (false).
	UpsertCharacter(ctx context.Context, row *models.CharacterRow) (bool, error)

	// UpsertEpisode writes the row atomically and reports inserted vs updated.
	UpsertEpisode(ctx context.Context, row *models.EpisodeRow) (bool, error)

	// InsertBridge inserts the pair if absent and reports whether a row was
	// actually written. Existing pairs are left untouched.
	InsertBridge(ctx context.Context, row *models.BridgeRow) (bool, error)

	CountCharacters(ctx context.Context) (int, error)
	CountEpisodes(ctx context.Context) (int, error)
	CountBridge(ctx context.Context) (int, error)
}

type dimensionRepository struct {
	db *database.DB
}

// NewDimensionRepository creates a new DimensionRepository.
func NewDimensionRepository(db *database.DB) DimensionRepository {
	return &dimensionRepository{db: db}
}

var _ DimensionRepository = (*dimensionRepository)(nil)

func (r *dimensionRepository) UpsertCharacter(ctx context.Context, row *models.CharacterRow) (bool, error) {
	// xmax = 0 distinguishes a fresh insert from a conflict-update without a
	// separate read, keeping the upsert a single atomic statement.
	sql := `
		INSERT INTO dbo.dim_characters (
			id, name, status, species, type, gender,
			origin_name, origin_url, location_name, location_url,
			image, url, created_at, ingested_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			status = EXCLUDED.status,
			species = EXCLUDED.species,
			type = EXCLUDED.type,
			gender = EXCLUDED.gender,
			origin_name = EXCLUDED.origin_name,
			origin_url = EXCLUDED.origin_url,
			location_name = EXCLUDED.location_name,
			location_url = EXCLUDED.location_url,
			image = EXCLUDED.image,
			url = EXCLUDED.url,
			created_at = EXCLUDED.created_at,
			ingested_at = EXCLUDED.ingested_at
		RETURNING (xmax = 0) AS inserted`

	var inserted bool
	err := r.db.QueryRow(ctx, sql,
		row.ID, row.Name, row.Status, row.Species, row.Type, row.Gender,
		row.OriginName, row.OriginURL, row.LocationName, row.LocationURL,
		row.Image, row.URL, row.CreatedAt, row.IngestedAt,
	).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert character %d: %w", row.ID, err)
	}
	return inserted, nil
}

func (r *dimensionRepository) UpsertEpisode(ctx context.Context, row *models.EpisodeRow) (bool, error) {
	sql := `
		INSERT INTO dbo.dim_episodes (
			id, name, episode_code, air_date, url, created_at, ingested_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			episode_code = EXCLUDED.episode_code,
			air_date = EXCLUDED.air_date,
			url = EXCLUDED.url,
			created_at = EXCLUDED.created_at,
			ingested_at = EXCLUDED.ingested_at
		RETURNING (xmax = 0) AS inserted`

	var inserted bool
	err := r.db.QueryRow(ctx, sql,
		row.ID, row.Name, row.EpisodeCode, row.AirDate, row.URL, row.CreatedAt, row.IngestedAt,
	).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert episode %d: %w", row.ID, err)
	}
	return inserted, nil
}

func (r *dimensionRepository) InsertBridge(ctx context.Context, row *models.BridgeRow) (bool, error) {
	sql := `
		INSERT INTO dbo.bridge_character_episodes (character_id, episode_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (character_id, episode_id) DO NOTHING`

	tag, err := r.db.Exec(ctx, sql, row.CharacterID, row.EpisodeID, row.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to insert bridge row (%d, %d): %w", row.CharacterID, row.EpisodeID, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *dimensionRepository) CountCharacters(ctx context.Context) (int, error) {
	return r.count(ctx, TableDimCharacters)
}

func (r *dimensionRepository) CountEpisodes(ctx context.Context) (int, error) {
	return r.count(ctx, TableDimEpisodes)
}

func (r *dimensionRepository) CountBridge(ctx context.Context) (int, error) {
	return r.count(ctx, TableBridge)
}

func (r *dimensionRepository) count(ctx context.Context, table string) (int, error) {
	var count int
	sql := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
	if err := r.db.QueryRow(ctx, sql).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return count, nil
}
