package persistence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/rescount/resource"
	"github.com/pthm-cable/rescount/telemetry"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCreateAndGetRun(t *testing.T) {
	db := openTestDB(t)

	id, err := db.CreateRun(42, 8, 6, []byte("world: {}\n"))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	run, err := db.GetRun(id)
	require.NoError(t, err)
	assert.Equal(t, int64(42), run.Seed)
	assert.Equal(t, 8, run.Width)
	assert.Equal(t, 6, run.Height)
	assert.Equal(t, int32(0), run.LastTick)
	assert.Equal(t, "world: {}\n", run.ConfigYAML)

	latest, err := db.LatestRun()
	require.NoError(t, err)
	assert.Equal(t, id, latest.ID)

	_, err = db.GetRun("missing")
	assert.ErrorIs(t, err, ErrNoRun)
}

func TestLatestRunEmpty(t *testing.T) {
	db := openTestDB(t)
	_, err := db.LatestRun()
	assert.ErrorIs(t, err, ErrNoRun)
}

func TestWindowsRoundTrip(t *testing.T) {
	db := openTestDB(t)
	id, err := db.CreateRun(1, 4, 4, nil)
	require.NoError(t, err)

	first := telemetry.WindowStats{WindowStartTick: 0, WindowEndTick: 100, Total: 12.5, Mean: 0.78, Min: 0, Max: 3, Empty: 2, Inflow: 36, Foragers: 4}
	second := telemetry.WindowStats{WindowStartTick: 100, WindowEndTick: 200, Total: 13, Outflow: 1.5, Imbalance: 0.25}

	require.NoError(t, db.SaveWindow(id, second))
	require.NoError(t, db.SaveWindow(id, first))

	windows, err := db.Windows(id)
	require.NoError(t, err)
	assert.Equal(t, []telemetry.WindowStats{first, second}, windows)

	other, err := db.Windows("other")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestBookmarksRoundTrip(t *testing.T) {
	db := openTestDB(t)
	id, err := db.CreateRun(1, 4, 4, nil)
	require.NoError(t, err)

	b := telemetry.Bookmark{Type: telemetry.BookmarkDepletion, Tick: 300, Description: "fell"}
	require.NoError(t, db.SaveBookmark(id, b))

	got, err := db.Bookmarks(id)
	require.NoError(t, err)
	assert.Equal(t, []telemetry.Bookmark{b}, got)
}

func TestGridStateCheckpoint(t *testing.T) {
	db := openTestDB(t)
	id, err := db.CreateRun(1, 3, 2, nil)
	require.NoError(t, err)

	g := resource.NewGrid(3, 2, resource.GeometryTorus)
	for i := 0; i < g.Size(); i++ {
		g.SetCellAmount(i, float64(i)+0.5)
	}
	require.NoError(t, db.SaveGridState(id, 250, g))

	// Saving again replaces the previous checkpoint
	g.SetCellAmount(0, 9)
	require.NoError(t, db.SaveGridState(id, 300, g))

	restored := resource.NewGrid(3, 2, resource.GeometryTorus)
	tick, err := db.LoadGridState(id, restored)
	require.NoError(t, err)
	assert.Equal(t, int32(300), tick)
	assert.Equal(t, g.Amounts(), restored.Amounts())

	_, err = db.LoadGridState(id, resource.NewGrid(4, 4, resource.GeometryTorus))
	assert.Error(t, err, "dimension mismatch must be rejected")

	assert.ErrorIs(t, db.SaveGridState("missing", 1, g), ErrNoRun)
}
