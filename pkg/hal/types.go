// Package hal abstracts the few hardware capabilities a blinker needs:
// gating a GPIO bank's clock, configuring a pin, driving its level and
// reading time.
package hal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Level is the electrical level of a digital pin.
type Level = gpio.Level

// Levels
const (
	Low  = gpio.Low
	High = gpio.High
)

// Port identifies a GPIO bank.
type Port uint8

// Ports
const (
	PortA Port = iota
	PortB
	PortC
	PortD
	PortE

	NumPorts int = iota
)

// LinesPerPort is the number of pin lines on a bank.
const LinesPerPort = 16

var (
	// ErrInvalidPin indicates the pin name or number is out of range.
	ErrInvalidPin = errors.New("invalid pin")
	// ErrUnsupportedMode indicates the backend can't apply the pin mode.
	ErrUnsupportedMode = errors.New("unsupported pin mode")
	// ErrNotConfigured indicates the pin is driven before ConfigurePin.
	ErrNotConfigured = errors.New("pin not configured")
)

// String implements fmt.Stringer.
func (p Port) String() string {
	if int(p) >= NumPorts {
		return "P?"
	}
	return "P" + string(rune('A'+p))
}

// PinID identifies a single pin line on a bank.
type PinID struct {
	Port Port
	Line uint8
}

// IsValid indicates the pin exists.
func (p PinID) IsValid() bool {
	return int(p.Port) < NumPorts && p.Line < LinesPerPort
}

// Mask is the bit of the line in 16-bit port registers.
func (p PinID) Mask() uint32 {
	return 1 << p.Line
}

// String implements fmt.Stringer.
func (p PinID) String() string {
	return p.Port.String() + strconv.Itoa(int(p.Line))
}

// ParsePin parses names like "PA5" or "pc13".
func ParsePin(name string) (PinID, error) {
	s := strings.ToUpper(strings.TrimSpace(name))
	if len(s) < 3 || s[0] != 'P' || s[1] < 'A' || int(s[1]-'A') >= NumPorts {
		return PinID{}, fmt.Errorf("%w: %q", ErrInvalidPin, name)
	}
	line, err := strconv.ParseUint(s[2:], 10, 8)
	if err != nil || line >= LinesPerPort {
		return PinID{}, fmt.Errorf("%w: %q", ErrInvalidPin, name)
	}
	return PinID{Port: Port(s[1] - 'A'), Line: uint8(line)}, nil
}

// MustParsePin parses the pin name and panics on error.
func MustParsePin(name string) PinID {
	pin, err := ParsePin(name)
	if err != nil {
		panic(err)
	}
	return pin
}

// Mode is the pin driving mode.
type Mode uint8

// Modes
const (
	ModeInputFloating Mode = iota
	ModeOutputPushPull
	ModeOutputOpenDrain
)

// IsOutput indicates the mode drives the pin.
func (m Mode) IsOutput() bool {
	return m == ModeOutputPushPull || m == ModeOutputOpenDrain
}

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeInputFloating:
		return "input-floating"
	case ModeOutputPushPull:
		return "output-push-pull"
	case ModeOutputOpenDrain:
		return "output-open-drain"
	}
	return "mode(" + strconv.Itoa(int(m)) + ")"
}

// Speed is the maximum slew rate of an output.
type Speed uint8

// Speeds
const (
	Speed10MHz Speed = iota + 1
	Speed2MHz
	Speed50MHz
)

// String implements fmt.Stringer.
func (s Speed) String() string {
	switch s {
	case Speed10MHz:
		return "10MHz"
	case Speed2MHz:
		return "2MHz"
	case Speed50MHz:
		return "50MHz"
	}
	return "speed(" + strconv.Itoa(int(s)) + ")"
}

// ParseSpeed parses "2MHz", "10MHz" or "50MHz".
func ParseSpeed(s string) (Speed, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "2MHZ", "2":
		return Speed2MHz, nil
	case "10MHZ", "10":
		return Speed10MHz, nil
	case "50MHZ", "50":
		return Speed50MHz, nil
	}
	return 0, fmt.Errorf("invalid speed: %q", s)
}

// PinConfig is applied by ConfigurePin.
type PinConfig struct {
	Mode  Mode
	Speed Speed
}

// Board is the capability to drive GPIO pins.
type Board interface {
	// EnableClock ungates the peripheral clock feeding the bank.
	EnableClock(Port) error
	// ConfigurePin sets the mode and speed of a pin.
	ConfigurePin(PinID, PinConfig) error
	// SetLevel drives an output pin.
	SetLevel(PinID, Level) error
}

// Clock is the time source used to measure delays.
type Clock interface {
	Now() time.Time
	ElapsedSince(start time.Time) time.Duration
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// ElapsedSince implements Clock.
func (SystemClock) ElapsedSince(start time.Time) time.Duration { return time.Since(start) }
