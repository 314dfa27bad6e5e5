package telemetry

// Collector accumulates mass exchanges within time windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int32

	// Current window tracking
	windowStartTick int32
	startTotal      float64

	// Exchange counters for current window
	inflow   float64
	outflow  float64
	consumed float64
}

// NewCollector creates a new stats collector.
// windowTicks: how many ticks each stats window lasts.
// initialTotal: grid total at the start of the first window.
func NewCollector(windowTicks int, initialTotal float64) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{
		windowDurationTicks: int32(windowTicks),
		startTotal:          initialTotal,
	}
}

// RecordInflow records mass staged into the grid by Source or CellInflow.
func (c *Collector) RecordInflow(amount float64) {
	c.inflow += amount
}

// RecordOutflow records mass staged out of the grid by Sink or CellOutflow.
// amount is the magnitude removed.
func (c *Collector) RecordOutflow(amount float64) {
	c.outflow += amount
}

// RecordConsumed records mass taken by foragers.
func (c *Collector) RecordConsumed(amount float64) {
	c.consumed += amount
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats from the committed cell amounts and resets
// counters for the next window.
func (c *Collector) Flush(currentTick int32, amounts []float64, foragers int) WindowStats {
	d := ComputeDistribution(amounts)

	net := c.inflow - c.outflow - c.consumed

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,

		Total: d.Total,
		Mean:  d.Mean,
		Std:   d.Std,
		Min:   d.Min,
		Max:   d.Max,
		P10:   d.P10,
		P50:   d.P50,
		P90:   d.P90,
		Empty: d.Empty,

		Inflow:    c.inflow,
		Outflow:   c.outflow,
		Consumed:  c.consumed,
		Imbalance: d.Total - c.startTotal - net,

		Foragers: foragers,
	}

	c.windowStartTick = currentTick
	c.startTotal = d.Total
	c.inflow = 0
	c.outflow = 0
	c.consumed = 0

	return stats
}

// StartTotal returns the grid total at the start of the current window.
func (c *Collector) StartTotal() float64 {
	return c.startTotal
}

// StartAt restarts the current window at tick with the given grid total,
// discarding anything recorded so far.
func (c *Collector) StartAt(tick int32, total float64) {
	c.windowStartTick = tick
	c.startTotal = total
	c.inflow = 0
	c.outflow = 0
	c.consumed = 0
}
