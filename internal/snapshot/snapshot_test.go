package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iwvelando/project-finance/internal/config"
	"github.com/iwvelando/project-finance/internal/forecast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Minute)
		return current
	}
}

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(nil, t.TempDir())
	require.NoError(t, err)
	store.now = fixedClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	return store
}

func TestFileStoreSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	store := newTestFileStore(t)

	conf := config.Baseline()
	conf.Components[2].Assumptions.GraceYears = 2
	conf.Snapshots.DatabaseURL = "postgres://secret"

	info, err := store.Save(ctx, "grace-case", conf)
	require.NoError(t, err)
	assert.Equal(t, "grace-case", info.Name)
	assert.Equal(t, 1, info.Version)
	assert.NotEmpty(t, info.ID)

	snap, err := store.Load(ctx, "grace-case")
	require.NoError(t, err)
	assert.Equal(t, info.ID, snap.ID)
	assert.Equal(t, 2, snap.Configuration.Components[2].Assumptions.GraceYears)
	assert.Empty(t, snap.Configuration.Snapshots.DatabaseURL)
	assert.Equal(t, conf.Components[1].Revenue, snap.Configuration.Components[1].Revenue)
}

func TestFileStoreSaveReplacesAndBumpsVersion(t *testing.T) {
	ctx := context.Background()
	store := newTestFileStore(t)

	first, err := store.Save(ctx, "case", config.Baseline())
	require.NoError(t, err)

	conf := config.Baseline()
	conf.Common.DiscountRate = 0.08
	second, err := store.Save(ctx, "case", conf)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, second.Version)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
	assert.True(t, second.CreatedAt.Equal(first.CreatedAt))

	snap, err := store.Load(ctx, "case")
	require.NoError(t, err)
	assert.InDelta(t, 0.08, snap.Configuration.Common.DiscountRate, 1e-12)

	infos, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, infos, 1)
}

func TestFileStoreListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := newTestFileStore(t)

	for _, name := range []string{"first", "second", "third"} {
		_, err := store.Save(ctx, name, config.Baseline())
		require.NoError(t, err)
	}
	_, err := store.Save(ctx, "first", config.Baseline())
	require.NoError(t, err)

	// Stray files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(store.dir, "notes.txt"), []byte("x"), 0o644))

	infos, err := store.List(ctx)
	require.NoError(t, err)

	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name)
	}
	assert.Equal(t, []string{"first", "third", "second"}, names)
}

func TestFileStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestFileStore(t)

	_, err := store.Save(ctx, "gone", config.Baseline())
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "gone"))
	assert.ErrorIs(t, store.Delete(ctx, "gone"), ErrNotFound)

	_, err = store.Load(ctx, "gone")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreRejectsBadNames(t *testing.T) {
	ctx := context.Background()
	store := newTestFileStore(t)

	_, err := store.Save(ctx, "../escape", config.Baseline())
	assert.Error(t, err)

	_, err = store.Load(ctx, "../escape")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRestoredSnapshotEvaluatesIdentically(t *testing.T) {
	ctx := context.Background()
	store := newTestFileStore(t)

	conf := config.Baseline()
	conf.Components[1].Assumptions.TenorYears = 12
	_, err := store.Save(ctx, "restore", conf)
	require.NoError(t, err)

	snap, err := store.Load(ctx, "restore")
	require.NoError(t, err)

	fresh, err := forecast.GetForecast(nil, conf)
	require.NoError(t, err)
	restored, err := forecast.GetForecast(nil, snap.Configuration)
	require.NoError(t, err)

	assert.Equal(t, fresh.Combined.Result.ProjectCashFlows, restored.Combined.Result.ProjectCashFlows)
	assert.Equal(t, fresh.Combined.NPV, restored.Combined.NPV)
	for i := range fresh.Components {
		assert.Equal(t, fresh.Components[i].Result.EquityCashFlowsPostTax, restored.Components[i].Result.EquityCashFlowsPostTax)
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	store, err := New(ctx, nil, config.SnapshotConfig{Backend: "file", Directory: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)
	store.Close()

	_, err = New(ctx, nil, config.SnapshotConfig{Backend: "s3"})
	assert.Error(t, err)

	_, err = New(ctx, nil, config.SnapshotConfig{Backend: "postgres"})
	assert.Error(t, err)
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("PROJECT_FINANCE_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("PROJECT_FINANCE_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	store, err := NewPostgresStore(ctx, nil, url)
	require.NoError(t, err)
	defer store.Close()

	name := "test-" + time.Now().UTC().Format("20060102150405.000000000")
	defer func() { _ = store.Delete(ctx, name) }()

	first, err := store.Save(ctx, name, config.Baseline())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Version)

	conf := config.Baseline()
	conf.Common.FXRate = 17.25
	second, err := store.Save(ctx, name, conf)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, second.Version)

	snap, err := store.Load(ctx, name)
	require.NoError(t, err)
	assert.InDelta(t, 17.25, snap.Configuration.Common.FXRate, 1e-12)

	infos, err := store.List(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, infos)

	require.NoError(t, store.Delete(ctx, name))
	assert.ErrorIs(t, store.Delete(ctx, name), ErrNotFound)
	_, err = store.Load(ctx, name)
	assert.ErrorIs(t, err, ErrNotFound)
}
