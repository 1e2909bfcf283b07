package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/mirrorer/internal/catalog"
	"github.com/alexanderramin/mirrorer/internal/repository"
	"github.com/alexanderramin/mirrorer/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportFile_WritesWholeCatalog(t *testing.T) {
	database := testutil.NewTestDB(t)
	obs := &recordingObserver{}
	svc := NewImportService(testutil.NewTestUoW(database), obs)
	ctx := context.Background()

	res, err := svc.ImportFile(ctx, testCatalog)
	require.NoError(t, err)
	assert.Equal(t, &ImportResult{
		Users:         3,
		HistoryItems:  5,
		ExposureItems: 7,
		ModelOutputs:  2,
	}, res)

	repo := repository.NewSQLiteCatalogRepo(database)
	users, err := repo.ListUsers(ctx, "")
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "books-001", users[0].ID())
	assert.Equal(t, "books-002", users[1].ID())
	assert.Equal(t, "movie-001", users[2].ID())

	theo := users[1]
	require.Len(t, theo.Exposure, 2)
	assert.Equal(t, "Sandman", theo.Exposure[0].Title)

	cached, ok, err := repo.CachedResult(ctx, "books-001", "Fine-tuned_model")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "B", cached.Behavior)

	event := obs.last()
	assert.Equal(t, "import-catalog", event.Name)
	assert.True(t, event.Success)
	assert.Equal(t, 3, event.Fields["users"])
}

func TestImportFile_MatchesFileProvider(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := NewImportService(testutil.NewTestUoW(database))
	ctx := context.Background()

	_, err := svc.ImportFile(ctx, testCatalog)
	require.NoError(t, err)

	fromFile := catalog.NewFileProvider(testCatalog)
	fromDB := repository.NewSQLiteCatalogRepo(database)

	want, err := fromFile.GetUser(ctx, "books-002")
	require.NoError(t, err)
	got, err := fromDB.GetUser(ctx, "books-002")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	wantDomains, err := fromFile.Domains(ctx)
	require.NoError(t, err)
	gotDomains, err := fromDB.Domains(ctx)
	require.NoError(t, err)
	assert.Equal(t, wantDomains, gotDomains)
}

func TestImportFile_ReimportReplacesUsers(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := NewImportService(testutil.NewTestUoW(database))
	ctx := context.Background()

	_, err := svc.ImportFile(ctx, testCatalog)
	require.NoError(t, err)
	res, err := svc.ImportFile(ctx, testCatalog)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Users)
	assert.Equal(t, 3, res.Replaced)

	n, err := repository.NewSQLiteCatalogRepo(database).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestImportCatalog_InvalidWritesNothing(t *testing.T) {
	database := testutil.NewTestDB(t)
	obs := &recordingObserver{}
	svc := NewImportService(testutil.NewTestUoW(database), obs)
	ctx := context.Background()

	f := &catalog.File{Domains: map[string]catalog.DomainUsers{
		"Books": {Users: []catalog.RawUser{
			{ID: "ok", Name: "Ok", History: []catalog.RawHistoryItem{{Title: "Dune"}},
				ExposureList: []catalog.RawExposureItem{{Title: "Emma"}}},
			{ID: "", Name: "No Id", ExposureList: []catalog.RawExposureItem{{Title: "Emma"}}},
			{ID: "empty", Name: "No Candidates"},
		}},
	}}

	_, err := svc.ImportCatalog(ctx, f)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCatalog)
	assert.Contains(t, err.Error(), "(2 errors)")

	n, err := repository.NewSQLiteCatalogRepo(database).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	event := obs.last()
	assert.False(t, event.Success)
	assert.Equal(t, 2, event.Fields["validation_errors"])
}

func TestImportFile_MissingFile(t *testing.T) {
	svc := NewImportService(testutil.NewTestUoW(testutil.NewTestDB(t)))

	_, err := svc.ImportFile(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading catalog file")
}
