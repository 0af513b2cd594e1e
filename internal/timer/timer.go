// Package timer implements the APU's three periodic counters: a master-cycle
// accumulator that emits an internal tick every resolution cycles, and an
// 8-bit counter pair that the bus exposes as a destructive-read 4-bit value.
package timer

import "apucore/internal/debug"

// Timer is a single hardware timer. Resolution is the number of master
// cycles that make up one internal tick (256 for timers 0/1, 32 for timer 2).
type Timer struct {
	resolution int
	running    bool
	ticks      int

	// target is the comparison value for counterLow. A target of zero
	// behaves like "no target": the hardware's register wraps at 256 when
	// zero is written, and the match never explicitly fires against it, so
	// counterLow free-wraps through uint8 overflow and counterHigh is
	// never incremented. hasTarget distinguishes a timer that has never
	// had SetTarget called (same observable behavior as target == 0).
	target    uint8
	hasTarget bool

	counterLow  uint8
	counterHigh uint8

	logger *debug.Logger
}

// New creates a stopped timer with the given resolution.
func New(resolution int) *Timer {
	return &Timer{resolution: resolution}
}

// SetLogger attaches a logger for diagnostic messages. Nil disables logging.
func (t *Timer) SetLogger(logger *debug.Logger) {
	t.logger = logger
}

// Tick advances the timer by one master cycle. A no-op while stopped.
// Uses >= against resolution so resolution master cycles produce exactly
// one internal tick (the original hardware reference used >, yielding
// resolution+1 cycles per tick; treated here as an off-by-one to fix).
func (t *Timer) Tick() {
	if !t.running {
		return
	}
	t.ticks++
	if t.ticks >= t.resolution {
		t.ticks -= t.resolution
		t.internalTick()
	}
}

// internalTick fires once per resolution master cycles while running.
func (t *Timer) internalTick() {
	t.counterLow++
	if t.hasTarget && t.target != 0 && t.counterLow == t.target {
		t.counterHigh++
		t.counterLow = 0
	}
}

// SetRunning transitions the run flag. A false->true edge zeroes the tick
// accumulator and counterLow; counterHigh and the target are untouched.
func (t *Timer) SetRunning(running bool) {
	if running && !t.running {
		t.ticks = 0
		t.counterLow = 0
		if t.logger != nil {
			t.logger.Logf(debug.ComponentTimer, debug.LogLevelDebug, "timer started (resolution=%d)", t.resolution)
		}
	}
	t.running = running
}

// SetTarget stores the new comparison target. In-flight counterLow is not
// retroactively reset; the new target only applies to future comparisons.
func (t *Timer) SetTarget(value uint8) {
	t.target = value
	t.hasTarget = true
}

// ReadCounter returns the low 4 bits of counterHigh and clears counterHigh.
func (t *Timer) ReadCounter() uint8 {
	ret := t.counterHigh & 0x0f
	t.counterHigh = 0
	return ret
}

// CyclesCallback applies n master cycles worth of ticks.
func (t *Timer) CyclesCallback(n int) {
	for i := 0; i < n; i++ {
		t.Tick()
	}
}

// State is the gob-serializable snapshot of every field a save/restore
// cycle needs to reproduce this timer's future behavior exactly.
type State struct {
	Resolution  int
	Running     bool
	Ticks       int
	Target      uint8
	HasTarget   bool
	CounterLow  uint8
	CounterHigh uint8
}

// State captures the timer's current fields into a State value.
func (t *Timer) State() State {
	return State{
		Resolution:  t.resolution,
		Running:     t.running,
		Ticks:       t.ticks,
		Target:      t.target,
		HasTarget:   t.hasTarget,
		CounterLow:  t.counterLow,
		CounterHigh: t.counterHigh,
	}
}

// Restore overwrites every field from a previously captured State.
func (t *Timer) Restore(s State) {
	t.resolution = s.Resolution
	t.running = s.Running
	t.ticks = s.Ticks
	t.target = s.Target
	t.hasTarget = s.HasTarget
	t.counterLow = s.CounterLow
	t.counterHigh = s.CounterHigh
}
