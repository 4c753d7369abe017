package blinker

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/robotalks/blink.go/pkg/delay"
	"github.com/robotalks/blink.go/pkg/hal"
	"github.com/robotalks/blink.go/pkg/hal/host"
	"github.com/robotalks/blink.go/pkg/sim/mcu"
)

// Backends
const (
	BackendSim  = "sim"
	BackendHost = "host"
)

// Delay strategies
const (
	DelaySpin  = "spin"
	DelayTimed = "timed"
	DelaySleep = "sleep"
)

// Config defines the configurations of a blinker.
type Config struct {
	Pin       string
	Interval  time.Duration
	Speed     string
	OpenDrain bool
	// Delay is the delay strategy, empty selects DefaultDelay(Backend).
	Delay string
	// IterationsPerMs calibrates the spin delay, derived from ClockHz
	// and the simulated cost of an iteration if 0.
	IterationsPerMs uint64
	Backend         string
	ClockHz         uint64
	// Pace keeps the simulated clock from running ahead of wall time.
	Pace bool
}

var defaultConfig = Config{
	Pin:             DefaultPin,
	Interval:        DefaultInterval,
	Speed:           DefaultPinConfig.Speed.String(),
	Delay:           "",
	IterationsPerMs: delay.DefaultIterationsPerMs,
	Backend:         BackendSim,
	ClockHz:         mcu.DefaultClockHz,
	Pace:            true,
}

func init() {
	if val := os.Getenv("BLINK_PIN"); val != "" {
		defaultConfig.Pin = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Pin, "pin", defaultConfig.Pin, "Output pin, e.g. PA5")
	flag.DurationVar(&defaultConfig.Interval, "interval", defaultConfig.Interval, "Time between transitions")
	flag.StringVar(&defaultConfig.Speed, "speed", defaultConfig.Speed, "Output speed: 2MHz, 10MHz or 50MHz")
	flag.BoolVar(&defaultConfig.OpenDrain, "open-drain", defaultConfig.OpenDrain, "Drive the pin open-drain instead of push-pull")
	flag.StringVar(&defaultConfig.Delay, "delay", defaultConfig.Delay, "Delay strategy: spin, timed or sleep (default spin on sim, timed on host)")
	flag.Uint64Var(&defaultConfig.IterationsPerMs, "iterations-per-ms", defaultConfig.IterationsPerMs, "Spin iterations per millisecond, 0 to derive from -clock-hz")
	flag.StringVar(&defaultConfig.Backend, "backend", defaultConfig.Backend, "Board backend: sim or host")
	flag.Uint64Var(&defaultConfig.ClockHz, "clock-hz", defaultConfig.ClockHz, "Simulated MCU clock in Hz")
	flag.BoolVar(&defaultConfig.Pace, "pace", defaultConfig.Pace, "Pace the simulated MCU to wall time")
}

// DefaultDelay is the delay strategy of a backend. The spin calibration
// only holds on the simulated MCU.
func DefaultDelay(backend string) string {
	if backend == BackendHost {
		return DelayTimed
	}
	return DelaySpin
}

// DelayStrategy resolves Delay.
func (c *Config) DelayStrategy() string {
	if c.Delay == "" {
		return DefaultDelay(c.Backend)
	}
	return c.Delay
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// PinConfig parses pin related options.
func (c *Config) PinConfig() (hal.PinID, hal.PinConfig, error) {
	pin, err := hal.ParsePin(c.Pin)
	if err != nil {
		return pin, hal.PinConfig{}, err
	}
	conf := DefaultPinConfig
	if c.Speed != "" {
		if conf.Speed, err = hal.ParseSpeed(c.Speed); err != nil {
			return pin, conf, err
		}
	}
	if c.OpenDrain {
		conf.Mode = hal.ModeOutputOpenDrain
	}
	return pin, conf, nil
}

// NewBlinker creates a Blinker on the configured backend. For BackendSim,
// Board is a *mcu.MCU.
func (c *Config) NewBlinker() (*Blinker, error) {
	pin, pinConf, err := c.PinConfig()
	if err != nil {
		return nil, err
	}
	if c.Interval < 0 {
		return nil, fmt.Errorf("invalid interval: %v", c.Interval)
	}

	var b *Blinker
	var sim *mcu.MCU
	switch c.Backend {
	case BackendSim, "":
		sim = mcu.New()
		if c.ClockHz != 0 {
			sim.ClockHz = c.ClockHz
		}
		sim.Pace = c.Pace
		b = New(sim, sim, sim)
	case BackendHost:
		b = New(host.New(), hal.SystemClock{}, &delay.HostSpinner{})
	default:
		return nil, fmt.Errorf("unknown backend: %q", c.Backend)
	}
	b.Pin, b.PinConfig, b.Interval = pin, pinConf, c.Interval

	switch c.DelayStrategy() {
	case DelaySpin:
		spin := b.Delay.(*delay.Spin)
		spin.IterationsPerMs = c.IterationsPerMs
		if spin.IterationsPerMs == 0 {
			cycles := mcu.DefaultCyclesPerNop
			if sim != nil {
				cycles = sim.CyclesPerNop
			}
			spin.IterationsPerMs = delay.Calibration(c.ClockHz, cycles)
		}
	case DelayTimed:
		timed := &delay.Timed{Clock: b.Clock}
		if sim != nil {
			timed.Idle = sim
		}
		b.Delay = timed
	case DelaySleep:
		if sim != nil {
			b.Delay = delay.DelayFunc(func(d time.Duration) {
				time.Sleep(d)
				sim.Advance(sim.CyclesOf(d))
			})
		} else {
			b.Delay = delay.Sleep{}
		}
	default:
		return nil, fmt.Errorf("unknown delay: %q", c.Delay)
	}
	return b, nil
}
