// Package busclock paces instruction execution to a target frequency, the
// same role jmchacon-6502/cpu.Chip.SetClock plays for that emulator's
// tick loop, but factored out as its own throttle that a driver loop calls
// after each cpu.ExecuteOne rather than be grown as CPU.SetClock state.
package busclock

import "time"

const (
	// nsPerCycleAt1MHz is one cycle's worth of wall time at 1MHz.
	nsPerCycleAt1MHz = 1000 * time.Nanosecond
	// resolutionFloor is the smallest delay worth attempting; below this
	// scheduler jitter dominates and busy-waiting for it is pointless.
	resolutionFloor = 250 * time.Nanosecond
	minMHz          = 1
	maxMHz          = 1000
)

// BusClock throttles cycle consumption to approximate a target frequency.
// It measures its own Delay overhead once at construction and subtracts
// that calibration from every subsequent wait, the same empirical
// calibrate-then-subtract approach jmchacon-6502/cpu.SetClock uses for its
// instruction-level delay loop.
type BusClock struct {
	mhz           uint16
	nsPerCycle    time.Duration
	calibration   time.Duration
	emulateTiming bool
	// accumCycles holds cycles not yet converted into a Delay call, so
	// single-cycle callers (e.g. a loop ticking one cycle at a time) don't
	// pay resolutionFloor's busy-wait N times over for what should be one
	// coalesced wait.
	accumCycles int
	now         func() time.Time
}

// New returns a BusClock targeting mhz, clamped to [1,1000]. Timing
// emulation is enabled by default; call DisableTimingEmulation for tests
// that need to run at full host speed.
func New(mhz uint16) *BusClock {
	b := &BusClock{
		mhz:           boundMHz(mhz),
		emulateTiming: true,
		now:           time.Now,
	}
	b.calibrate()
	b.nsPerCycle = nsPerCycleAt1MHz / time.Duration(b.mhz)
	if b.nsPerCycle < resolutionFloor {
		b.nsPerCycle = resolutionFloor
	}
	return b
}

func boundMHz(mhz uint16) uint16 {
	if mhz < minMHz {
		return minMHz
	}
	if mhz > maxMHz {
		return maxMHz
	}
	return mhz
}

// calibrate measures the overhead of two back-to-back now() calls so Delay
// can subtract it out, mirroring clock.h's _calibrate().
func (b *BusClock) calibrate() {
	start := b.now()
	end := b.now()
	b.calibration = end.Sub(start)
}

// EnableTimingEmulation turns throttling back on.
func (b *BusClock) EnableTimingEmulation() { b.emulateTiming = true }

// DisableTimingEmulation turns off throttling entirely; Delay becomes a
// no-op. Tests that need deterministic, fast execution use this instead of
// constructing a high MHz value, since even 1000MHz still busy-waits
// resolutionFloor per call.
func (b *BusClock) DisableTimingEmulation() { b.emulateTiming = false }

// FrequencyMHz returns the clamped target frequency.
func (b *BusClock) FrequencyMHz() uint16 { return b.mhz }

// Delay accounts for cycles consumed by an instruction, busy-waiting once
// enough cycles have accumulated to clear resolutionFloor. Cycles smaller
// than that floor are coalesced into accumCycles rather than each paying
// their own wait, so a CPU ticking one cycle at a time still gets an
// accurate long-run average rate instead of an inflated one.
func (b *BusClock) Delay(cycles int) {
	if !b.emulateTiming {
		return
	}
	b.accumCycles += cycles
	want := b.nsPerCycle*time.Duration(b.accumCycles) - b.calibration
	if want < resolutionFloor {
		return
	}
	start := b.now()
	end := start.Add(want)
	for b.now().Before(end) {
	}
	b.accumCycles = 0
}
