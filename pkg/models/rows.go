package models

import "time"

// RawRecord is one landed raw document: the unmodified payload keyed by the
// entity's natural id. One record per (table, entity id); a re-ingest
// replaces the record wholesale.
type RawRecord struct {
	EntityID    int       `json:"entity_id"`
	Payload     Document  `json:"payload"`
	SourceLabel string    `json:"source_label"`
	IngestedAt  time.Time `json:"ingested_at"`
}

// CharacterRow is the flattened projection of a raw character document.
// Nullable columns are pointers; absence of a leaf lands as NULL, never as an
// error.
type CharacterRow struct {
	ID           int
	Name         *string
	Status       *string
	Species      *string
	Type         *string
	Gender       *string
	OriginName   *string
	OriginURL    *string
	LocationName *string
	LocationURL  *string
	Image        *string
	URL          *string
	CreatedAt    *time.Time
	IngestedAt   time.Time
}

// EpisodeRow is the flattened projection of a raw episode document.
type EpisodeRow struct {
	ID          int
	Name        *string
	EpisodeCode *string
	AirDate     *string
	URL         *string
	CreatedAt   *time.Time
	IngestedAt  time.Time
}

// BridgeRow materializes one character-episode pair. The pair is the
// composite key; rows are inserted once and never updated.
type BridgeRow struct {
	CharacterID int
	EpisodeID   int
	CreatedAt   time.Time
}

// UpsertResult reports the outcome of a dimension transform batch.
type UpsertResult struct {
	Inserted int
	Updated  int
	// Skipped counts malformed documents that were dropped from the batch
	// (logged, never silently).
	Skipped int
}

// Total returns the number of rows written.
func (r UpsertResult) Total() int {
	return r.Inserted + r.Updated
}

// InsertResult reports the outcome of a bridge explosion batch.
type InsertResult struct {
	Inserted int
	// Existing counts pairs already present in the bridge table; re-runs
	// converge here instead of erroring.
	Existing int
	// SkippedRefs counts episode references with no trailing digits plus
	// documents without a usable character id.
	SkippedRefs int
}
