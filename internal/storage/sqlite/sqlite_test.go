package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashita-ai/knapsack/internal/solver"
	"github.com/ashita-ai/knapsack/internal/storage/sqlite"
	"github.com/ashita-ai/knapsack/internal/storage/storagetest"
	"github.com/ashita-ai/knapsack/internal/testutil"
	"github.com/ashita-ai/knapsack/migrations"
)

func openStore(t *testing.T, path string) *sqlite.Store {
	t.Helper()
	ctx := context.Background()
	s, err := sqlite.Open(ctx, path, testutil.TestLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.RunMigrations(ctx, migrations.SQLite()))
	return s
}

func TestStoreContractFile(t *testing.T) {
	storagetest.Run(t, openStore(t, filepath.Join(t.TempDir(), "knapsack.db")))
}

func TestStoreContractMemory(t *testing.T) {
	storagetest.Run(t, openStore(t, ":memory:"))
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := sqlite.Open(context.Background(), "  ", testutil.TestLogger())
	require.Error(t, err)
}

func TestRunMigrationsIdempotent(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "knapsack.db"))
	require.NoError(t, s.RunMigrations(context.Background(), migrations.SQLite()))

	var applied int
	require.NoError(t, s.DB().Get(&applied, `SELECT count(*) FROM schema_migrations`))
	assert.Equal(t, 1, applied)
}

func TestDataSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "knapsack.db")

	s, err := sqlite.Open(ctx, path, testutil.TestLogger())
	require.NoError(t, err)
	require.NoError(t, s.RunMigrations(ctx, migrations.SQLite()))
	u := storagetest.NewUser(t, s)

	p := solver.Problem{
		Items:     []solver.Item{{ID: 7, Weight: 1.5, Value: 3}},
		Capacity:  2,
		Algorithm: solver.Fractional,
	}
	sol, err := solver.Solve(p)
	require.NoError(t, err)
	rec, err := s.SaveProblem(ctx, u.ID, p, sol)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened := openStore(t, path)
	got, err := reopened.GetProblem(ctx, u.ID, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Items, got.Items)
	assert.InDelta(t, 3, got.Solution.TotalValue, 1e-9)
}
