package sim

import "log/slog"

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (s *Simulation) flushTelemetry() {
	if !s.collector.ShouldFlush(s.tick) {
		return
	}

	stats := s.collector.Flush(s.tick, s.grid.Amounts(), s.foraging.Count())
	perfStats := s.perfCollector.Stats()

	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if s.outputManager != nil {
		if err := s.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := s.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.SaveWindow(s.runID, stats); err != nil {
			slog.Error("failed to store window", "error", err)
		}
	}

	for _, bm := range s.bookmarkDetector.Check(stats) {
		if s.logStats {
			bm.LogBookmark()
		}
		if s.outputManager != nil {
			if err := s.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}
		if s.db != nil {
			if err := s.db.SaveBookmark(s.runID, bm); err != nil {
				slog.Error("failed to store bookmark", "error", err)
			}
		}
	}
}
