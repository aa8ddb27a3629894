package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schwifty-labs/morty-pipeline/pkg/models"
	"github.com/schwifty-labs/morty-pipeline/pkg/testhelpers"
)

func strPtr(s string) *string { return &s }

func TestDimensionRepository_UpsertCharacter(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	testhelpers.TruncateTables(t, testDB.DB)

	ctx := context.Background()
	repo := NewDimensionRepository(testDB.DB)
	now := time.Now().UTC()

	row := &models.CharacterRow{
		ID:         1,
		Name:       strPtr("Rick Sanchez"),
		Status:     strPtr("Alive"),
		IngestedAt: now,
	}

	inserted, err := repo.UpsertCharacter(ctx, row)
	require.NoError(t, err)
	assert.True(t, inserted, "first write should report an insert")

	row.Status = strPtr("Dead")
	inserted, err = repo.UpsertCharacter(ctx, row)
	require.NoError(t, err)
	assert.False(t, inserted, "second write of the same id should report an update")

	count, err := repo.CountCharacters(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var status string
	err = testDB.DB.QueryRow(ctx, "SELECT status FROM dbo.dim_characters WHERE id = 1").Scan(&status)
	require.NoError(t, err)
	assert.Equal(t, "Dead", status, "update must overwrite every column")
}

func TestDimensionRepository_UpsertCharacterNullableColumns(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	testhelpers.TruncateTables(t, testDB.DB)

	ctx := context.Background()
	repo := NewDimensionRepository(testDB.DB)

	// Only the id and ingested_at are required; every other column may be NULL.
	_, err := repo.UpsertCharacter(ctx, &models.CharacterRow{ID: 7, IngestedAt: time.Now().UTC()})
	require.NoError(t, err)

	var name *string
	err = testDB.DB.QueryRow(ctx, "SELECT name FROM dbo.dim_characters WHERE id = 7").Scan(&name)
	require.NoError(t, err)
	assert.Nil(t, name)
}

func TestDimensionRepository_UpsertEpisode(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	testhelpers.TruncateTables(t, testDB.DB)

	ctx := context.Background()
	repo := NewDimensionRepository(testDB.DB)
	now := time.Now().UTC()

	row := &models.EpisodeRow{
		ID:          1,
		Name:        strPtr("Pilot"),
		EpisodeCode: strPtr("S01E01"),
		AirDate:     strPtr("December 2, 2013"),
		IngestedAt:  now,
	}

	inserted, err := repo.UpsertEpisode(ctx, row)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.UpsertEpisode(ctx, row)
	require.NoError(t, err)
	assert.False(t, inserted)

	count, err := repo.CountEpisodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDimensionRepository_InsertBridgeIfAbsent(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	testhelpers.TruncateTables(t, testDB.DB)

	ctx := context.Background()
	repo := NewDimensionRepository(testDB.DB)
	now := time.Now().UTC()

	row := &models.BridgeRow{CharacterID: 1, EpisodeID: 1, CreatedAt: now}

	inserted, err := repo.InsertBridge(ctx, row)
	require.NoError(t, err)
	assert.True(t, inserted)

	// Existing pairs are left untouched, including created_at.
	later := &models.BridgeRow{CharacterID: 1, EpisodeID: 1, CreatedAt: now.Add(time.Hour)}
	inserted, err = repo.InsertBridge(ctx, later)
	require.NoError(t, err)
	assert.False(t, inserted)

	count, err := repo.CountBridge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// A different pair for the same character is a new row.
	inserted, err = repo.InsertBridge(ctx, &models.BridgeRow{CharacterID: 1, EpisodeID: 2, CreatedAt: now})
	require.NoError(t, err)
	assert.True(t, inserted)
}
