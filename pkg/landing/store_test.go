package landing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/schwifty-labs/morty-pipeline/pkg/apperrors"
	"github.com/schwifty-labs/morty-pipeline/pkg/models"
)

func TestStore_WriteAndLatest(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, zap.NewNop())

	docs := []models.Document{
		{"id": float64(1), "name": "Rick Sanchez"},
		{"id": float64(2), "name": "Morty Smith"},
	}

	path, err := store.Write("characters", "https://example.test/api/character", docs)
	require.NoError(t, err)
	assert.FileExists(t, path)

	snap, latestPath, err := store.Latest("characters")
	require.NoError(t, err)
	assert.Equal(t, path, latestPath)
	assert.Equal(t, 2, snap.TotalRecords)
	require.Len(t, snap.Data, 2)

	name, ok := snap.Data[0].String("name")
	require.True(t, ok)
	assert.Equal(t, "Rick Sanchez", name)
}

func TestStore_WritePrunesOldSnapshots(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, zap.NewNop())

	// Pre-seed an older snapshot file by hand.
	entityDir := filepath.Join(dir, "episodes")
	require.NoError(t, os.MkdirAll(entityDir, 0o755))
	old := filepath.Join(entityDir, "episodes_2020-01-01T00-00-00.json")
	require.NoError(t, os.WriteFile(old, []byte(`{"data":[]}`), 0o644))

	_, err := store.Write("episodes", "src", []models.Document{{"id": float64(1)}})
	require.NoError(t, err)

	files, err := filepath.Glob(filepath.Join(entityDir, "episodes_*.json"))
	require.NoError(t, err)
	assert.Len(t, files, 1, "only the latest snapshot is kept")
	assert.NotEqual(t, old, files[0])
}

func TestStore_LatestWithoutSnapshot(t *testing.T) {
	store := NewStore(t.TempDir(), zap.NewNop())

	_, _, err := store.Latest("characters")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNoSnapshot)
}
