package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/schwifty-labs/morty-pipeline/pkg/database"
	"github.com/schwifty-labs/morty-pipeline/pkg/models"
)

// RawRepository persists immutable raw documents keyed by entity id. A
// re-ingest replaces the payload wholesale; partial updates to a landed
// payload do not exist.
type RawRepository interface {
	// Replace upserts the records by entity id, overwriting any previously
	// landed payload for the same id. Returns the number of rows written.
	Replace(ctx context.Context, records []models.RawRecord) (int, error)

	// List returns all raw records ordered by entity id.
	List(ctx context.Context) ([]models.RawRecord, error)

	// Count returns the number of landed documents.
	Count(ctx context.Context) (int, error)

	// SampleNames returns up to limit name leaves from landed payloads,
	// ordered by id, for post-load spot checks.
	SampleNames(ctx context.Context, limit int) ([]string, error)
}

type rawRepository struct {
	db    *database.DB
	table string
}

// NewRawCharacterRepository creates the RawRepository over raw.characters.
func NewRawCharacterRepository(db *database.DB) RawRepository {
	return &rawRepository{db: db, table: TableRawCharacters}
}

// NewRawEpisodeRepository creates the RawRepository over raw.episodes.
func NewRawEpisodeRepository(db *database.DB) RawRepository {
	return &rawRepository{db: db, table: TableRawEpisodes}
}

var _ RawRepository = (*rawRepository)(nil)

func (r *rawRepository) Replace(ctx context.Context, records []models.RawRecord) (int, error) {
	sql := fmt.Sprintf(`
		INSERT INTO %s (id, payload, source_label, ingested_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			payload = EXCLUDED.payload,
			source_label = EXCLUDED.source_label,
			ingested_at = EXCLUDED.ingested_at`, r.table)

	written := 0
	for _, rec := range records {
		payload, err := json.Marshal(rec.Payload)
		if err != nil {
			return written, fmt.Errorf("failed to marshal payload for id %d: %w", rec.EntityID, err)
		}
		if _, err := r.db.Exec(ctx, sql, rec.EntityID, payload, rec.SourceLabel, rec.IngestedAt); err != nil {
			return written, fmt.Errorf("failed to land raw document id %d into %s: %w", rec.EntityID, r.table, err)
		}
		written++
	}
	return written, nil
}

func (r *rawRepository) List(ctx context.Context) ([]models.RawRecord, error) {
	sql := fmt.Sprintf(`
		SELECT id, payload, source_label, ingested_at
		FROM %s
		ORDER BY id`, r.table)

	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to list raw documents from %s: %w", r.table, err)
	}
	defer rows.Close()

	records := make([]models.RawRecord, 0)
	for rows.Next() {
		var rec models.RawRecord
		var payload []byte
		if err := rows.Scan(&rec.EntityID, &payload, &rec.SourceLabel, &rec.IngestedAt); err != nil {
			return nil, fmt.Errorf("failed to scan raw document: %w", err)
		}
		if err := json.Unmarshal(payload, &rec.Payload); err != nil {
			return nil, fmt.Errorf("failed to parse payload for id %d: %w", rec.EntityID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating raw documents: %w", err)
	}

	return records, nil
}

func (r *rawRepository) SampleNames(ctx context.Context, limit int) ([]string, error) {
	sql := fmt.Sprintf(`
		SELECT payload->>'name'
		FROM %s
		WHERE payload->>'name' IS NOT NULL
		ORDER BY id
		LIMIT $1`, r.table)

	rows, err := r.db.Query(ctx, sql, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to sample %s: %w", r.table, err)
	}
	defer rows.Close()

	names := make([]string, 0, limit)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan sample from %s: %w", r.table, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating samples from %s: %w", r.table, err)
	}
	return names, nil
}

func (r *rawRepository) Count(ctx context.Context) (int, error) {
	var count int
	sql := fmt.Sprintf("SELECT COUNT(*) FROM %s", r.table)
	if err := r.db.QueryRow(ctx, sql).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", r.table, err)
	}
	return count, nil
}
