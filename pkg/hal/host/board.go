// Package host drives real GPIO lines of a Linux single board computer
// through periph.io.
package host

import (
	"fmt"
	"sync"

	"github.com/golang/glog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/robotalks/blink.go/pkg/hal"
)

// Resolver maps a pin to the name registered in gpioreg.
type Resolver func(hal.PinID) string

// LineResolver names pins by line only, e.g. PA5 is GPIO5.
func LineResolver(pin hal.PinID) string {
	return fmt.Sprintf("GPIO%d", pin.Line)
}

// FlatResolver numbers lines across ports, e.g. PB1 is GPIO17.
func FlatResolver(pin hal.PinID) string {
	return fmt.Sprintf("GPIO%d", int(pin.Port)*hal.LinesPerPort+int(pin.Line))
}

// Board implements hal.Board with periph.io.
type Board struct {
	Resolver Resolver
	// Lookup finds a pin by name, gpioreg.ByName if nil.
	Lookup func(name string) gpio.PinIO
	// Init initializes host drivers, host.Init if nil.
	Init func() error

	initOnce sync.Once
	initErr  error
	pins     map[hal.PinID]*hostPin
	lock     sync.Mutex
}

type hostPin struct {
	io   gpio.PinIO
	mode hal.Mode
}

// New creates a Board using LineResolver.
func New() *Board {
	return &Board{Resolver: LineResolver}
}

// EnableClock implements hal.Board. GPIO banks on the host are always
// clocked, the first call initializes periph drivers.
func (b *Board) EnableClock(port hal.Port) error {
	if int(port) >= hal.NumPorts {
		return fmt.Errorf("%w: port %d", hal.ErrInvalidPin, port)
	}
	b.initOnce.Do(func() {
		initFn := b.Init
		if initFn == nil {
			initFn = func() error {
				_, err := host.Init()
				return err
			}
		}
		if b.initErr = initFn(); b.initErr != nil {
			b.initErr = fmt.Errorf("host init error: %v", b.initErr)
		}
	})
	return b.initErr
}

// ConfigurePin implements hal.Board. Only output modes are supported.
// Open-drain is emulated by floating the pin for High.
func (b *Board) ConfigurePin(pin hal.PinID, conf hal.PinConfig) error {
	if !pin.IsValid() {
		return fmt.Errorf("%w: %v", hal.ErrInvalidPin, pin)
	}
	if !conf.Mode.IsOutput() {
		return fmt.Errorf("%w: %v on %v", hal.ErrUnsupportedMode, conf.Mode, pin)
	}
	if err := b.EnableClock(pin.Port); err != nil {
		return err
	}
	name := b.resolve(pin)
	lookup := b.Lookup
	if lookup == nil {
		lookup = gpioreg.ByName
	}
	io := lookup(name)
	if io == nil {
		return fmt.Errorf("%w: %v: %s not found", hal.ErrInvalidPin, pin, name)
	}
	p := &hostPin{io: io, mode: conf.Mode}
	if err := p.set(hal.Low); err != nil {
		return fmt.Errorf("configure %v (%s) error: %v", pin, name, err)
	}
	b.lock.Lock()
	if b.pins == nil {
		b.pins = make(map[hal.PinID]*hostPin)
	}
	b.pins[pin] = p
	b.lock.Unlock()
	glog.V(1).Infof("pin %v mapped to %s as %v", pin, name, conf.Mode)
	return nil
}

// SetLevel implements hal.Board.
func (b *Board) SetLevel(pin hal.PinID, level hal.Level) error {
	b.lock.Lock()
	p := b.pins[pin]
	b.lock.Unlock()
	if p == nil {
		return fmt.Errorf("%w: %v", hal.ErrNotConfigured, pin)
	}
	return p.set(level)
}

func (b *Board) resolve(pin hal.PinID) string {
	if b.Resolver != nil {
		return b.Resolver(pin)
	}
	return LineResolver(pin)
}

func (p *hostPin) set(level hal.Level) error {
	if p.mode == hal.ModeOutputOpenDrain && level == hal.High {
		return p.io.In(gpio.Float, gpio.NoEdge)
	}
	return p.io.Out(level)
}
