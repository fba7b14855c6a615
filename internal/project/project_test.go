package project_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/dataloom-cli/internal/analysis"
	"github.com/KaramelBytes/dataloom-cli/internal/project"
	"github.com/KaramelBytes/dataloom-cli/internal/utils"
)

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestInitLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ws, err := project.Init(dir, "sales")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, utils.WorkspaceFile))

	_, err = project.Init(dir, "again")
	require.ErrorIs(t, err, project.ErrWorkspaceExists)

	csv := writeCSV(t, dir, "orders.csv", "region,sales\nSeoul,10\nBusan,20\n")
	d, err := ws.AddDataset(csv, " Q3 orders ", analysis.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "orders.csv", d.Name)
	assert.Equal(t, "Q3 orders", d.Description)
	assert.Equal(t, 2, d.Rows)
	assert.Equal(t, []string{"region", "sales"}, d.Columns)
	require.NoError(t, ws.Save())

	loaded, err := project.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "sales", loaded.Name)
	require.Len(t, loaded.Datasets, 1)
	assert.Equal(t, d.ID, loaded.List()[0].ID)
	assert.Equal(t, dir, loaded.RootDir())

	root, err := utils.FindWorkspaceRoot(csv)
	require.NoError(t, err)
	assert.Equal(t, dir, root)
}

func TestAddDatasetRejects(t *testing.T) {
	dir := t.TempDir()
	ws := project.NewWorkspace("w", dir)

	_, err := ws.AddDataset(writeCSV(t, dir, "notes.pdf", "x"), "", analysis.DefaultOptions())
	require.Error(t, err)

	_, err = ws.AddDataset(writeCSV(t, dir, "dup.csv", "a,a\n1,2\n"), "", analysis.DefaultOptions())
	require.ErrorIs(t, err, analysis.ErrDuplicateColumn)

	ok := writeCSV(t, dir, "ok.csv", "a\n1\n")
	_, err = ws.AddDataset(ok, "", analysis.DefaultOptions())
	require.NoError(t, err)
	_, err = ws.AddDataset(ok, "", analysis.DefaultOptions())
	require.Error(t, err)
	assert.Len(t, ws.Datasets, 1)
}

func TestFindListRemove(t *testing.T) {
	dir := t.TempDir()
	ws := project.NewWorkspace("w", dir)
	b, err := ws.AddDataset(writeCSV(t, dir, "b.csv", "x\n1\n"), "", analysis.DefaultOptions())
	require.NoError(t, err)
	a, err := ws.AddDataset(writeCSV(t, dir, "a.csv", "x\n1\n"), "", analysis.DefaultOptions())
	require.NoError(t, err)

	list := ws.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a.csv", list[0].Name)
	assert.Equal(t, "b.csv", list[1].Name)

	got, err := ws.Find("B.CSV")
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
	got, err = ws.Find(a.ID)
	require.NoError(t, err)
	assert.Equal(t, "a.csv", got.Name)

	_, err = ws.Find("missing.csv")
	require.ErrorIs(t, err, project.ErrDatasetNotFound)

	ws.Datasets["manual"] = &project.Dataset{ID: "manual", Name: "a.csv"}
	_, err = ws.Find("a.csv")
	require.ErrorIs(t, err, project.ErrAmbiguousName)

	removed, err := ws.Remove(b.ID)
	require.NoError(t, err)
	assert.Equal(t, "b.csv", removed.Name)
	assert.Len(t, ws.Datasets, 2)
}

func TestRepositoryGetCachesUntilModified(t *testing.T) {
	dir := t.TempDir()
	ws := project.NewWorkspace("w", dir)
	p := writeCSV(t, dir, "m.csv", "city,temp\nSeoul,10\n")
	d, err := ws.AddDataset(p, "", analysis.DefaultOptions())
	require.NoError(t, err)

	repo := project.NewRepository(ws, analysis.DefaultOptions(), nil)
	ctx := context.Background()

	first, err := repo.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.NumRows())

	second, err := repo.Get(ctx, "m.csv")
	require.NoError(t, err)
	assert.Same(t, first, second)

	require.NoError(t, os.WriteFile(p, []byte("city,temp\nSeoul,10\nBusan,14\n"), 0o644))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(p, later, later))

	third, err := repo.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, third.NumRows())

	_, err = repo.Get(ctx, "nope")
	require.ErrorIs(t, err, project.ErrDatasetNotFound)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = repo.Get(cancelled, d.ID)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRepositoryReloadDropsRemoved(t *testing.T) {
	dir := t.TempDir()
	ws := project.NewWorkspace("w", dir)
	d, err := ws.AddDataset(writeCSV(t, dir, "r.csv", "x\n1\n"), "", analysis.DefaultOptions())
	require.NoError(t, err)
	repo := project.NewRepository(ws, analysis.DefaultOptions(), nil)
	_, err = repo.Get(context.Background(), d.ID)
	require.NoError(t, err)

	repo.Reload(project.NewWorkspace("w", dir))
	_, err = repo.Get(context.Background(), d.ID)
	require.ErrorIs(t, err, project.ErrDatasetNotFound)
	assert.Empty(t, repo.List())
}
