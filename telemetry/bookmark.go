package telemetry

import (
	"fmt"
	"log/slog"
	"math"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkDepletion   BookmarkType = "depletion"
	BookmarkRecovery    BookmarkType = "recovery"
	BookmarkSteadyState BookmarkType = "steady_state"
	BookmarkImbalance   BookmarkType = "imbalance"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type" db:"type"`
	Tick        int32        `csv:"tick" db:"tick"`
	Description string       `csv:"description" db:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects notable changes in the grid's total mass.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	recentPeak         float64 // peak total since the last depletion
	recentMin          float64 // minimum total since the last recovery
	haveMin            bool
	steadyWindowsCount int // consecutive windows with a flat total
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for steady state detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		// Depletion: total dropped >30% from recent peak
		if b := bd.checkDepletion(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Recovery: total climbed to 3x a recent low
		if b := bd.checkRecovery(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		if b := bd.checkSteadyState(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	// Imbalance: clamping created more than 1% of the total
	if b := checkImbalance(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)

	if !bd.haveMin || stats.Total < bd.recentMin {
		bd.recentMin = stats.Total
		bd.haveMin = true
	}
	if stats.Total > bd.recentPeak {
		bd.recentPeak = stats.Total
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// recent returns up to n of the most recent windows, oldest first.
func (bd *BookmarkDetector) recent(n int) []WindowStats {
	count := bd.historyIdx
	if bd.historyFull {
		count = bd.historySize
	}
	if n > count {
		n = count
	}
	out := make([]WindowStats, 0, n)
	for i := n; i > 0; i-- {
		idx := (bd.historyIdx - i + bd.historySize) % bd.historySize
		out = append(out, bd.history[idx])
	}
	return out
}

func (bd *BookmarkDetector) checkDepletion(stats WindowStats) *Bookmark {
	if bd.recentPeak <= 0 {
		return nil
	}

	drop := 1.0 - stats.Total/bd.recentPeak
	if drop > 0.30 {
		oldPeak := bd.recentPeak
		bd.recentPeak = stats.Total

		return &Bookmark{
			Type:        BookmarkDepletion,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Total fell %.0f%% from peak %.2f to %.2f", drop*100, oldPeak, stats.Total),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkRecovery(stats WindowStats) *Bookmark {
	if !bd.haveMin || bd.recentMin <= 0 {
		return nil
	}

	if stats.Total >= bd.recentMin*3 {
		oldMin := bd.recentMin
		bd.recentMin = stats.Total

		return &Bookmark{
			Type:        BookmarkRecovery,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Total recovered from %.2f to %.2f", oldMin, stats.Total),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkSteadyState(stats WindowStats) *Bookmark {
	window := append(bd.recent(3), stats)
	if len(window) < 4 || stats.Total <= 0 {
		bd.steadyWindowsCount = 0
		return nil
	}

	var sum float64
	for _, h := range window {
		sum += h.Total
	}
	mean := sum / float64(len(window))

	var variance float64
	for _, h := range window {
		d := h.Total - mean
		variance += d * d
	}
	variance /= float64(len(window))

	// CV^2 < 0.0004 means CV < 2%
	if mean > 0 && variance/(mean*mean) < 0.0004 {
		bd.steadyWindowsCount++
	} else {
		bd.steadyWindowsCount = 0
	}

	if bd.steadyWindowsCount == 5 { // trigger exactly once per steady run
		return &Bookmark{
			Type:        BookmarkSteadyState,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Total steady near %.2f (mean %.4f per cell)", mean, stats.Mean),
		}
	}

	return nil
}

func checkImbalance(stats WindowStats) *Bookmark {
	if stats.Total <= 0 || math.Abs(stats.Imbalance) <= 0.01*stats.Total {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkImbalance,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Unaccounted change %.4f against total %.2f", stats.Imbalance, stats.Total),
	}
}
