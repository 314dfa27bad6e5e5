package sim

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/rescount/persistence"
)

// openStore opens the run database and either registers a new run or
// restores the grid and tick of a stored one.
func (s *Simulation) openStore(path, resume string, seed int64) error {
	db, err := persistence.Open(path)
	if err != nil {
		return fmt.Errorf("opening run database: %w", err)
	}
	s.db = db

	if resume == "" {
		data, err := s.cfg.YAML()
		if err != nil {
			s.closeStore()
			return err
		}
		id, err := db.CreateRun(seed, s.grid.Width(), s.grid.Height(), data)
		if err != nil {
			s.closeStore()
			return fmt.Errorf("registering run: %w", err)
		}
		s.runID = id
		return nil
	}

	var run persistence.Run
	if resume == "latest" {
		run, err = db.LatestRun()
	} else {
		run, err = db.GetRun(resume)
	}
	if err != nil {
		s.closeStore()
		return fmt.Errorf("finding run %q: %w", resume, err)
	}

	tick, err := db.LoadGridState(run.ID, s.grid)
	if err != nil {
		s.closeStore()
		return fmt.Errorf("restoring run %s: %w", run.ID, err)
	}
	s.runID = run.ID
	s.tick = tick
	slog.Info("resumed run", "run", run.ID, "tick", tick, "started_at", run.StartedAt)
	return nil
}

func (s *Simulation) closeStore() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
