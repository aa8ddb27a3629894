package repositories

import (
	"context"
	"fmt"
	"strconv"

	"github.com/schwifty-labs/morty-pipeline/pkg/database"
)

// QualityRepository runs the diagnostic queries backing the validation
// battery. It only reads; enforcement is the transformer's job, detection is
// this layer's.
type QualityRepository interface {
	// DuplicateKeyRows returns the number of rows that participate in a
	// duplicated key (rows in groups with more than one member).
	DuplicateKeyRows(ctx context.Context, table string, keyColumns ...string) (int, error)

	// NullCount returns how many rows have NULL in the given column.
	NullCount(ctx context.Context, table, column string) (int, error)

	// OrphanedBridgeIDs returns the bridge foreign-key values that do not
	// exist in the referenced dimension table, one per orphaned bridge row.
	OrphanedBridgeIDs(ctx context.Context, fkColumn, dimTable string) ([]int, error)

	// RowCount returns the total row count of a table.
	RowCount(ctx context.Context, table string) (int, error)

	// CharactersWithoutEpisodes returns ids of dimension characters that
	// have no bridge row at all.
	CharactersWithoutEpisodes(ctx context.Context) ([]int, error)
}

type qualityRepository struct {
	db *database.DB
}

// NewQualityRepository creates a new QualityRepository.
func NewQualityRepository(db *database.DB) QualityRepository {
	return &qualityRepository{db: db}
}

var _ QualityRepository = (*qualityRepository)(nil)

// Table and column names are compile-time constants owned by this package,
// never user input, so building statements with Sprintf is safe here.

func (r *qualityRepository) DuplicateKeyRows(ctx context.Context, table string, keyColumns ...string) (int, error) {
	key := keyColumns[0]
	for _, col := range keyColumns[1:] {
		key += ", " + col
	}

	sql := fmt.Sprintf(`
		SELECT COALESCE(SUM(cnt), 0)
		FROM (
			SELECT COUNT(*) AS cnt
			FROM %s
			GROUP BY %s
			HAVING COUNT(*) > 1
		) dupes`, table, key)

	var count int
	if err := r.db.QueryRow(ctx, sql).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count duplicate keys in %s: %w", table, err)
	}
	return count, nil
}

func (r *qualityRepository) NullCount(ctx context.Context, table, column string) (int, error) {
	sql := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s IS NULL", table, column)

	var count int
	if err := r.db.QueryRow(ctx, sql).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count nulls in %s.%s: %w", table, column, err)
	}
	return count, nil
}

func (r *qualityRepository) OrphanedBridgeIDs(ctx context.Context, fkColumn, dimTable string) ([]int, error) {
	sql := fmt.Sprintf(`
		SELECT b.%s
		FROM %s b
		LEFT JOIN %s d ON d.id = b.%s
		WHERE d.id IS NULL
		ORDER BY b.%s`, fkColumn, TableBridge, dimTable, fkColumn, fkColumn)

	return r.queryIDs(ctx, sql, "orphaned bridge rows")
}

func (r *qualityRepository) RowCount(ctx context.Context, table string) (int, error) {
	var count int
	sql := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
	if err := r.db.QueryRow(ctx, sql).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return count, nil
}

func (r *qualityRepository) CharactersWithoutEpisodes(ctx context.Context) ([]int, error) {
	sql := fmt.Sprintf(`
		SELECT c.id
		FROM %s c
		LEFT JOIN %s b ON b.character_id = c.id
		WHERE b.character_id IS NULL
		ORDER BY c.id`, TableDimCharacters, TableBridge)

	return r.queryIDs(ctx, sql, "characters without episodes")
}

func (r *qualityRepository) queryIDs(ctx context.Context, sql, what string) ([]int, error) {
	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", what, err)
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", what, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", what, err)
	}
	return ids, nil
}

// IDsToStrings renders diagnostic ids for report detail lines.
func IDsToStrings(ids []int) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = strconv.Itoa(id)
	}
	return out
}
