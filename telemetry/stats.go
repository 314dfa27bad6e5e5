package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32 `csv:"window_start" db:"window_start"`
	WindowEndTick   int32 `csv:"window_end" db:"window_end"`

	// Distribution of committed cell amounts at window end
	Total float64 `csv:"total" db:"total"`
	Mean  float64 `csv:"mean" db:"mean"`
	Std   float64 `csv:"std" db:"std"`
	Min   float64 `csv:"min" db:"min"`
	Max   float64 `csv:"max" db:"max"`
	P10   float64 `csv:"p10" db:"p10"`
	P50   float64 `csv:"p50" db:"p50"`
	P90   float64 `csv:"p90" db:"p90"`
	Empty int     `csv:"empty_cells" db:"empty_cells"`

	// Mass exchanged during the window
	Inflow   float64 `csv:"inflow" db:"inflow"`
	Outflow  float64 `csv:"outflow" db:"outflow"`
	Consumed float64 `csv:"consumed" db:"consumed"`

	// Change in total not explained by the exchanges above (clamping at zero)
	Imbalance float64 `csv:"imbalance" db:"imbalance"`

	Foragers int `csv:"foragers" db:"foragers"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Distribution summarizes a set of cell amounts.
type Distribution struct {
	Total, Mean, Std float64
	Min, Max         float64
	P10, P50, P90    float64
	Empty            int
}

// ComputeDistribution calculates totals, moments and percentiles of values.
// Std is the population standard deviation. values is not modified.
func ComputeDistribution(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean, std := stat.PopMeanStdDev(sorted, nil)

	var empty int
	for _, v := range sorted {
		if v > 0 {
			break
		}
		empty++
	}

	return Distribution{
		Total: floats.Sum(sorted),
		Mean:  mean,
		Std:   std,
		Min:   floats.Min(sorted),
		Max:   floats.Max(sorted),
		P10:   Percentile(sorted, 0.10),
		P50:   Percentile(sorted, 0.50),
		P90:   Percentile(sorted, 0.90),
		Empty: empty,
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("total", s.Total),
		slog.Float64("mean", s.Mean),
		slog.Float64("std", s.Std),
		slog.Float64("min", s.Min),
		slog.Float64("max", s.Max),
		slog.Float64("p10", s.P10),
		slog.Float64("p50", s.P50),
		slog.Float64("p90", s.P90),
		slog.Int("empty_cells", s.Empty),
		slog.Float64("inflow", s.Inflow),
		slog.Float64("outflow", s.Outflow),
		slog.Float64("consumed", s.Consumed),
		slog.Float64("imbalance", s.Imbalance),
		slog.Int("foragers", s.Foragers),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"total", s.Total,
		"mean", s.Mean,
		"std", s.Std,
		"min", s.Min,
		"max", s.Max,
		"p10", s.P10,
		"p50", s.P50,
		"p90", s.P90,
		"empty_cells", s.Empty,
		"inflow", s.Inflow,
		"outflow", s.Outflow,
		"consumed", s.Consumed,
		"imbalance", s.Imbalance,
		"foragers", s.Foragers,
	)
}
