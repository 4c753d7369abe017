// Package delay provides blocking delays: a calibrated busy-wait loop and
// a loop measured against a time source.
package delay

import (
	"runtime"
	"sync/atomic"
	"time"

	"github.com/robotalks/blink.go/pkg/hal"
)

// DefaultIterationsPerMs is calibrated for a 72MHz SYSCLK.
const DefaultIterationsPerMs uint64 = 8000

// Spinner executes one iteration of a busy loop.
type Spinner interface {
	Nop()
}

// Delayer blocks the caller for a duration.
type Delayer interface {
	Delay(time.Duration)
}

// DelayFunc is the func form of Delayer.
type DelayFunc func(time.Duration)

// Delay implements Delayer.
func (f DelayFunc) Delay(d time.Duration) {
	f(d)
}

// Calibration computes iterations per millisecond when each iteration
// costs cyclesPerIteration cycles at clockHz.
func Calibration(clockHz, cyclesPerIteration uint64) uint64 {
	if cyclesPerIteration == 0 {
		return 0
	}
	return clockHz / 1000 / cyclesPerIteration
}

// Spin counts Nop iterations. Accuracy depends entirely on how closely
// IterationsPerMs matches the real cost of an iteration.
type Spin struct {
	Spinner         Spinner
	IterationsPerMs uint64
}

// NewSpin creates Spin with the default calibration.
func NewSpin(s Spinner) *Spin {
	return &Spin{Spinner: s, IterationsPerMs: DefaultIterationsPerMs}
}

func (s *Spin) perMs() uint64 {
	if s.IterationsPerMs == 0 {
		return DefaultIterationsPerMs
	}
	return s.IterationsPerMs
}

func (s *Spin) spin(total uint64) (n uint64) {
	for ; n < total; n++ {
		s.Spinner.Nop()
	}
	return
}

// DelayMs runs exactly ms*IterationsPerMs iterations and returns the count.
func (s *Spin) DelayMs(ms uint32) uint64 {
	return s.spin(uint64(ms) * s.perMs())
}

// Iterations is the number of iterations Delay(d) runs, d truncated to
// whole milliseconds.
func (s *Spin) Iterations(d time.Duration) uint64 {
	if d <= 0 {
		return 0
	}
	return uint64(d/time.Millisecond) * s.perMs()
}

// Delay implements Delayer.
func (s *Spin) Delay(d time.Duration) {
	s.spin(s.Iterations(d))
}

// Timed waits until the clock reports the duration has elapsed.
type Timed struct {
	Clock hal.Clock
	// Idle runs while waiting. runtime.Gosched is used if nil.
	Idle Spinner
}

// Delay implements Delayer.
func (t *Timed) Delay(d time.Duration) {
	start := t.Clock.Now()
	for t.Clock.ElapsedSince(start) < d {
		if t.Idle != nil {
			t.Idle.Nop()
		} else {
			runtime.Gosched()
		}
	}
}

// Sleep yields to the Go scheduler with time.Sleep.
type Sleep struct{}

// Delay implements Delayer.
func (Sleep) Delay(d time.Duration) {
	time.Sleep(d)
}

// HostSpinner is a Spinner running on the host CPU.
type HostSpinner struct {
	count uint32
}

// Nop implements Spinner.
func (s *HostSpinner) Nop() {
	atomic.AddUint32(&s.count, 1)
}
