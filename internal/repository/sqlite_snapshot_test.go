package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/mediantree/internal/domain"
	"github.com/alexanderramin/mediantree/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedClock returns a clock that advances one second per call.
func fixedClock(start time.Time) func() time.Time {
	cur := start
	return func() time.Time {
		cur = cur.Add(time.Second)
		return cur
	}
}

func newTestRepo(t *testing.T) *SQLiteSnapshotRepo {
	t.Helper()
	repo := NewSQLiteSnapshotRepo(testutil.NewTestDB(t))
	repo.now = fixedClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	return repo
}

func TestSnapshotRepo_SaveAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	g := testutil.NewSampleGraph()
	require.NoError(t, repo.Save(ctx, "launch", g))

	snap, err := repo.Get(ctx, "launch")
	require.NoError(t, err)
	assert.Equal(t, "launch", snap.Name)
	assert.Equal(t, g.Nodes, snap.Graph.Nodes)
	assert.Equal(t, g.Edges, snap.Graph.Edges)

	root := snap.Graph.Root()
	require.NotNil(t, root)
	assert.Equal(t, 10.0, root.EffortHours)
	require.NotNil(t, root.Estimate)
	assert.Greater(t, root.Estimate.P99, root.Estimate.P70)
}

func TestSnapshotRepo_SavePreservesCreatedAt(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "launch", testutil.NewSampleGraph()))
	first, err := repo.Get(ctx, "launch")
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, "launch", testutil.NewTestGraph("Launch")))
	second, err := repo.Get(ctx, "launch")
	require.NoError(t, err)

	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.True(t, second.LastUpdatedAt.After(first.LastUpdatedAt))
	assert.Len(t, second.Graph.Nodes, 1, "save replaces the stored graph")
	assert.Empty(t, second.Graph.Edges)
}

func TestSnapshotRepo_SaveDropsDuplicateEdges(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	g := testutil.NewTestGraph("Dup",
		testutil.WithTask("a", "", 2),
		testutil.WithEdge("root", "a"),
	)
	require.NoError(t, repo.Save(ctx, "dup", g))

	snap, err := repo.Get(ctx, "dup")
	require.NoError(t, err)
	assert.Equal(t, []domain.Edge{{Source: "root", Target: "a"}}, snap.Graph.Edges)
}

func TestSnapshotRepo_SaveRejectsInvalidGraph(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	g := testutil.NewTestGraph("Bad", testutil.WithEdge("root", "ghost"))
	err := repo.Save(ctx, "bad", g)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown target")

	_, err = repo.Get(ctx, "bad")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSnapshotRepo_GetNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSnapshotRepo_Latest(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Latest(ctx)
	assert.True(t, errors.Is(err, ErrNotFound), "empty store has no latest project")

	require.NoError(t, repo.Save(ctx, "alpha", testutil.NewTestGraph("Alpha")))
	require.NoError(t, repo.Save(ctx, "beta", testutil.NewTestGraph("Beta")))
	require.NoError(t, repo.Save(ctx, "alpha", testutil.NewSampleGraph()))

	latest, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alpha", latest.Name)
}

func TestSnapshotRepo_List(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "sample", testutil.NewSampleGraph()))
	require.NoError(t, repo.Save(ctx, "empty", testutil.NewTestGraph("Empty")))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "empty", list[0].Name, "most recently updated first")
	assert.Equal(t, 1, list[0].NodeCount)
	assert.Equal(t, 0.0, list[0].EffortHours)

	assert.Equal(t, "sample", list[1].Name)
	assert.Equal(t, 6, list[1].NodeCount)
	assert.Equal(t, 10.0, list[1].EffortHours)
}

func TestSnapshotRepo_Delete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "gone", testutil.NewSampleGraph()))
	require.NoError(t, repo.Delete(ctx, "gone"))

	_, err := repo.Get(ctx, "gone")
	assert.True(t, errors.Is(err, ErrNotFound))

	var nodes int
	require.NoError(t, repo.db.QueryRow(`SELECT COUNT(*) FROM nodes`).Scan(&nodes))
	assert.Zero(t, nodes, "nodes cascade with their project")

	err = repo.Delete(ctx, "gone")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSnapshotRepo_SaveRollsBackOnFailure(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()

	good := NewSQLiteSnapshotRepoWithUoW(database, testutil.NewTestUoW(database))
	require.NoError(t, good.Save(ctx, "launch", testutil.NewSampleGraph()))

	// Exec order: upsert project, clear nodes, then one insert per node.
	// Failing on the fourth exec aborts after the clear and one insert.
	uow := &testutil.FailOnNthExecUoW{DB: database, FailOn: 4, Err: errors.New("disk full")}
	failing := NewSQLiteSnapshotRepoWithUoW(database, uow)

	err := failing.Save(ctx, "launch", testutil.NewTestGraph("Replacement", testutil.WithTask("x", "", 1)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	snap, err := good.Get(ctx, "launch")
	require.NoError(t, err)
	assert.Len(t, snap.Graph.Nodes, 6, "original snapshot survives a failed save")
	assert.Equal(t, "Launch", snap.Graph.Root().Title)
}
