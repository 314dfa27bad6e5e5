package telemetry

import (
	"log/slog"
	"time"
)

// Phase identifies one stage of the simulation step.
type Phase uint8

// Phases in step order.
const (
	PhaseSource Phase = iota
	PhaseSink
	PhaseCellFlow
	PhaseForaging
	PhaseFlow
	PhaseState
	PhaseTelemetry
	numPhases
)

var phaseNames = [numPhases]string{
	PhaseSource:    "source",
	PhaseSink:      "sink",
	PhaseCellFlow:  "cell_flow",
	PhaseForaging:  "foraging",
	PhaseFlow:      "flow",
	PhaseState:     "state",
	PhaseTelemetry: "telemetry",
}

func (p Phase) String() string {
	if p >= numPhases {
		return "unknown"
	}
	return phaseNames[p]
}

// tickSample is the timing of one step.
type tickSample struct {
	total  time.Duration
	phases [numPhases]time.Duration
}

// PerfCollector times step phases over a rolling window of ticks.
type PerfCollector struct {
	samples     []tickSample
	writeIndex  int
	sampleCount int

	current    tickSample
	tickStart  time.Time
	phaseStart time.Time
	inPhase    bool
	phase      Phase
}

// NewPerfCollector creates a collector averaging over windowSize ticks.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{samples: make([]tickSample, windowSize)}
}

// StartTick begins timing a new step.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.current = tickSample{}
	p.inPhase = false
}

// StartPhase ends the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	now := time.Now()
	p.endPhase(now)
	p.phaseStart = now
	p.phase = phase
	p.inPhase = phase < numPhases
}

func (p *PerfCollector) endPhase(now time.Time) {
	if p.inPhase {
		p.current.phases[p.phase] += now.Sub(p.phaseStart)
	}
}

// EndTick closes the running phase and records the step.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.endPhase(now)
	p.inPhase = false
	p.current.total = now.Sub(p.tickStart)

	p.samples[p.writeIndex] = p.current
	p.writeIndex = (p.writeIndex + 1) % len(p.samples)
	if p.sampleCount < len(p.samples) {
		p.sampleCount++
	}
}

// PerfStats summarizes step timing over the collector's window.
type PerfStats struct {
	AvgTick        time.Duration
	MinTick        time.Duration
	MaxTick        time.Duration
	TicksPerSecond float64

	// Share of the average step spent in each phase, in percent.
	PhasePct [numPhases]float64
}

// Stats aggregates the samples currently in the window.
func (p *PerfCollector) Stats() PerfStats {
	var s PerfStats
	if p.sampleCount == 0 {
		return s
	}

	var total time.Duration
	var phases [numPhases]time.Duration
	for i, sample := range p.samples[:p.sampleCount] {
		total += sample.total
		if i == 0 || sample.total < s.MinTick {
			s.MinTick = sample.total
		}
		s.MaxTick = max(s.MaxTick, sample.total)
		for k, d := range sample.phases {
			phases[k] += d
		}
	}

	s.AvgTick = total / time.Duration(p.sampleCount)
	if total > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTick)
		for k, d := range phases {
			s.PhasePct[k] = float64(d) / float64(total) * 100
		}
	}
	return s
}

// LogStats logs the timing summary, skipping phases under 0.1%.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTick.Microseconds(),
		"max_tick_us", s.MaxTick.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}
	for k, pct := range s.PhasePct {
		if pct > 0.1 {
			attrs = append(attrs, Phase(k).String()+"_pct", int(pct*10)/10.0)
		}
	}
	slog.Info("perf", attrs...)
}

// PerfStatsCSV is one row of perf.csv.
type PerfStatsCSV struct {
	WindowEnd    int32   `csv:"window_end"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	SourcePct    float64 `csv:"source_pct"`
	SinkPct      float64 `csv:"sink_pct"`
	CellFlowPct  float64 `csv:"cell_flow_pct"`
	ForagingPct  float64 `csv:"foraging_pct"`
	FlowPct      float64 `csv:"flow_pct"`
	StatePct     float64 `csv:"state_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the stats into a perf.csv row.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgTickUS:    s.AvgTick.Microseconds(),
		MinTickUS:    s.MinTick.Microseconds(),
		MaxTickUS:    s.MaxTick.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		SourcePct:    s.PhasePct[PhaseSource],
		SinkPct:      s.PhasePct[PhaseSink],
		CellFlowPct:  s.PhasePct[PhaseCellFlow],
		ForagingPct:  s.PhasePct[PhaseForaging],
		FlowPct:      s.PhasePct[PhaseFlow],
		StatePct:     s.PhasePct[PhaseState],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
	}
}
