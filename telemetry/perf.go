package telemetry

import (
	"log/slog"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Step phases, in order.
const (
	PhaseMotion    = "motion"
	PhaseCollision = "collision"
	PhaseCleanup   = "cleanup"
	PhaseTelemetry = "telemetry"
)

var phases = []string{PhaseMotion, PhaseCollision, PhaseCleanup, PhaseTelemetry}

// tickSample is the wall time of one tick and of each phase inside it.
type tickSample struct {
	total  time.Duration
	phases map[string]time.Duration
}

// PerfCollector times ticks and their phases over the last windowSize ticks.
// Phases are delimited by StartPhase calls; the open phase ends at the next
// StartPhase or at EndTick.
type PerfCollector struct {
	ring []tickSample
	next int
	full bool

	current    tickSample
	tickStart  time.Time
	phase      string
	phaseStart time.Time
}

// NewPerfCollector keeps windowSize ticks; values below 1 mean 60.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{ring: make([]tickSample, windowSize)}
}

// StartTick begins timing a tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.current = tickSample{phases: make(map[string]time.Duration, len(phases))}
	p.phase = ""
}

// StartPhase closes the open phase, if any, and opens phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	p.closePhase(now)
	p.phase = phase
	p.phaseStart = now
}

// EndTick closes the open phase and stores the tick.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)
	p.current.total = now.Sub(p.tickStart)

	p.ring[p.next] = p.current
	p.next++
	if p.next == len(p.ring) {
		p.next = 0
		p.full = true
	}
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.phase != "" {
		p.current.phases[p.phase] += now.Sub(p.phaseStart)
	}
}

func (p *PerfCollector) samples() []tickSample {
	if p.full {
		return p.ring
	}
	return p.ring[:p.next]
}

// PerfStats summarises tick timing over the window.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	P95TickDuration time.Duration

	// Per-phase mean duration and share of the mean tick, in percent
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	TicksPerSecond float64
}

// Stats aggregates the stored ticks.
func (p *PerfCollector) Stats() PerfStats {
	out := PerfStats{
		PhaseAvg: make(map[string]time.Duration),
		PhasePct: make(map[string]float64),
	}
	samples := p.samples()
	if len(samples) == 0 {
		return out
	}

	totals := make([]float64, len(samples))
	phaseSum := make(map[string]time.Duration)
	for i, s := range samples {
		totals[i] = float64(s.total)
		for name, d := range s.phases {
			phaseSum[name] += d
		}
	}
	sort.Float64s(totals)

	mean := stat.Mean(totals, nil)
	out.AvgTickDuration = time.Duration(mean)
	out.MinTickDuration = time.Duration(totals[0])
	out.MaxTickDuration = time.Duration(totals[len(totals)-1])
	out.P95TickDuration = time.Duration(stat.Quantile(0.95, stat.Empirical, totals, nil))
	if mean > 0 {
		out.TicksPerSecond = float64(time.Second) / mean
	}

	n := time.Duration(len(samples))
	for name, sum := range phaseSum {
		avg := sum / n
		out.PhaseAvg[name] = avg
		if mean > 0 {
			out.PhasePct[name] = float64(avg) / mean * 100
		}
	}
	return out
}

// LogStats logs the window with the share of every known phase above 0.1%.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"p95_tick_us", s.P95TickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}
	for _, name := range phases {
		if pct := s.PhasePct[name]; pct > 0.1 {
			attrs = append(attrs, name+"_pct", float64(int(pct*10))/10)
		}
	}
	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Int64("p95_tick_us", s.P95TickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	for _, name := range phases {
		attrs = append(attrs, slog.Float64(name+"_pct", s.PhasePct[name]))
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	WindowEnd    int32   `csv:"window_end"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	P95TickUS    int64   `csv:"p95_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	MotionPct    float64 `csv:"motion_pct"`
	CollisionPct float64 `csv:"collision_pct"`
	CleanupPct   float64 `csv:"cleanup_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the stats for the window ending at windowEnd.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgTickUS:    s.AvgTickDuration.Microseconds(),
		MinTickUS:    s.MinTickDuration.Microseconds(),
		MaxTickUS:    s.MaxTickDuration.Microseconds(),
		P95TickUS:    s.P95TickDuration.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		MotionPct:    s.PhasePct[PhaseMotion],
		CollisionPct: s.PhasePct[PhaseCollision],
		CleanupPct:   s.PhasePct[PhaseCleanup],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
	}
}
