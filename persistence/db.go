// Package persistence provides SQLite-based storage for run history and
// grid checkpoints.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/pthm-cable/rescount/resource"
	"github.com/pthm-cable/rescount/telemetry"
)

// ErrNoRun is returned when a requested run does not exist.
var ErrNoRun = errors.New("persistence: no such run")

// DB wraps a SQLite connection for run persistence.
type DB struct {
	conn *sqlx.DB
}

// Run describes one stored simulation run.
type Run struct {
	ID         string `db:"id"`
	StartedAt  string `db:"started_at"`
	Seed       int64  `db:"seed"`
	Width      int    `db:"width"`
	Height     int    `db:"height"`
	LastTick   int32  `db:"last_tick"`
	ConfigYAML string `db:"config_yaml"`
}

// CellState is one checkpointed cell.
type CellState struct {
	CellID int     `db:"cell_id"`
	Amount float64 `db:"amount"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		seed INTEGER NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		last_tick INTEGER NOT NULL DEFAULT 0,
		config_yaml TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS windows (
		run_id TEXT NOT NULL,
		window_start INTEGER NOT NULL,
		window_end INTEGER NOT NULL,
		total REAL NOT NULL,
		mean REAL NOT NULL,
		std REAL NOT NULL,
		min REAL NOT NULL,
		max REAL NOT NULL,
		p10 REAL NOT NULL,
		p50 REAL NOT NULL,
		p90 REAL NOT NULL,
		empty_cells INTEGER NOT NULL,
		inflow REAL NOT NULL,
		outflow REAL NOT NULL,
		consumed REAL NOT NULL,
		imbalance REAL NOT NULL,
		foragers INTEGER NOT NULL,
		PRIMARY KEY (run_id, window_end)
	);

	CREATE TABLE IF NOT EXISTS bookmarks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		type TEXT NOT NULL,
		description TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS cells (
		run_id TEXT NOT NULL,
		cell_id INTEGER NOT NULL,
		amount REAL NOT NULL,
		PRIMARY KEY (run_id, cell_id)
	);

	CREATE INDEX IF NOT EXISTS idx_bookmarks_run ON bookmarks(run_id, tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// CreateRun registers a new run and returns its ID.
func (db *DB) CreateRun(seed int64, width, height int, configYAML []byte) (string, error) {
	id := uuid.NewString()
	_, err := db.conn.Exec(
		`INSERT INTO runs (id, started_at, seed, width, height, config_yaml) VALUES (?, ?, ?, ?, ?, ?)`,
		id, time.Now().UTC().Format(time.RFC3339), seed, width, height, string(configYAML),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// GetRun returns the stored run with the given ID.
func (db *DB) GetRun(id string) (Run, error) {
	var r Run
	err := db.conn.Get(&r, `SELECT id, started_at, seed, width, height, last_tick, config_yaml FROM runs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNoRun
	}
	return r, err
}

// LatestRun returns the most recently started run.
func (db *DB) LatestRun() (Run, error) {
	var r Run
	err := db.conn.Get(&r, `SELECT id, started_at, seed, width, height, last_tick, config_yaml FROM runs ORDER BY started_at DESC, rowid DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNoRun
	}
	return r, err
}

type windowRow struct {
	RunID string `db:"run_id"`
	telemetry.WindowStats
}

// SaveWindow appends a stats window to a run.
func (db *DB) SaveWindow(runID string, stats telemetry.WindowStats) error {
	_, err := db.conn.NamedExec(`INSERT OR REPLACE INTO windows
		(run_id, window_start, window_end, total, mean, std, min, max, p10, p50, p90,
		 empty_cells, inflow, outflow, consumed, imbalance, foragers)
		VALUES (:run_id, :window_start, :window_end, :total, :mean, :std, :min, :max, :p10, :p50, :p90,
		 :empty_cells, :inflow, :outflow, :consumed, :imbalance, :foragers)`,
		windowRow{RunID: runID, WindowStats: stats},
	)
	if err != nil {
		return fmt.Errorf("insert window %d: %w", stats.WindowEndTick, err)
	}
	return nil
}

// Windows returns a run's stats windows in tick order.
func (db *DB) Windows(runID string) ([]telemetry.WindowStats, error) {
	var windows []telemetry.WindowStats
	err := db.conn.Select(&windows, `SELECT window_start, window_end, total, mean, std, min, max,
		p10, p50, p90, empty_cells, inflow, outflow, consumed, imbalance, foragers
		FROM windows WHERE run_id = ? ORDER BY window_end`, runID)
	return windows, err
}

// SaveBookmark appends a bookmark to a run.
func (db *DB) SaveBookmark(runID string, b telemetry.Bookmark) error {
	_, err := db.conn.Exec(
		"INSERT INTO bookmarks (run_id, tick, type, description) VALUES (?, ?, ?, ?)",
		runID, b.Tick, string(b.Type), b.Description,
	)
	return err
}

// Bookmarks returns a run's bookmarks in tick order.
func (db *DB) Bookmarks(runID string) ([]telemetry.Bookmark, error) {
	var bookmarks []telemetry.Bookmark
	err := db.conn.Select(&bookmarks,
		"SELECT tick, type, description FROM bookmarks WHERE run_id = ? ORDER BY tick, id",
		runID,
	)
	return bookmarks, err
}

// SaveGridState checkpoints every committed cell amount of g (full replace)
// and records tick as the run's last tick.
func (db *DB) SaveGridState(runID string, tick int32, g *resource.Grid) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM cells WHERE run_id = ?", runID); err != nil {
		return err
	}

	stmt, err := tx.Preparex("INSERT INTO cells (run_id, cell_id, amount) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := 0; i < g.Size(); i++ {
		if _, err := stmt.Exec(runID, i, g.GetAmount(i)); err != nil {
			return fmt.Errorf("insert cell %d: %w", i, err)
		}
	}

	res, err := tx.Exec("UPDATE runs SET last_tick = ? WHERE id = ?", tick, runID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoRun
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("grid state saved", "run", runID, "tick", tick, "cells", g.Size())
	return nil
}

// LoadGridState restores a run's checkpointed amounts into g and returns
// the tick they were saved at. The grid must match the run's dimensions.
func (db *DB) LoadGridState(runID string, g *resource.Grid) (int32, error) {
	run, err := db.GetRun(runID)
	if err != nil {
		return 0, err
	}
	if run.Width != g.Width() || run.Height != g.Height() {
		return 0, fmt.Errorf("run %s is %dx%d, grid is %dx%d", runID, run.Width, run.Height, g.Width(), g.Height())
	}

	var cells []CellState
	if err := db.conn.Select(&cells, "SELECT cell_id, amount FROM cells WHERE run_id = ?", runID); err != nil {
		return 0, fmt.Errorf("select cells: %w", err)
	}
	for _, c := range cells {
		g.SetCellAmount(c.CellID, c.Amount)
	}
	return run.LastTick, nil
}
