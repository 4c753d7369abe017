// Package mcu simulates the GPIO and RCC registers of an STM32F1 together
// with an instruction cycle counter, so that blinking logic runs unchanged
// against a deterministic model of the hardware.
package mcu

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/robotalks/blink.go/pkg/hal"
)

// Defaults
const (
	// DefaultClockHz is the SYSCLK of the modeled configuration.
	DefaultClockHz uint64 = 72000000
	// DefaultCyclesPerNop is the cost of one iteration of the delay loop,
	// so that 8000 iterations take 1ms at DefaultClockHz.
	DefaultCyclesPerNop uint64 = 9
)

// Transition records a change of an output data bit.
type Transition struct {
	Pin   hal.PinID
	Level hal.Level
	Cycle uint64
	Time  time.Time
}

// MCU is the simulated microcontroller.
type MCU struct {
	cycles uint64 // accessed atomically, keep 64-bit aligned.

	ClockHz      uint64
	CyclesPerNop uint64
	Epoch        time.Time
	// Pace throttles the cycle counter so simulated time never runs
	// ahead of wall time.
	Pace bool

	regs    map[uint32]uint32
	trace   []Transition
	dropped int
	started time.Time
	lock    sync.Mutex
}

// New creates an MCU in reset state.
func New() *MCU {
	m := &MCU{
		ClockHz:      DefaultClockHz,
		CyclesPerNop: DefaultCyclesPerNop,
		Epoch:        time.Now(),
	}
	m.Reset()
	return m
}

// Reset restores all registers and the cycle counter to reset values.
// The trace is cleared.
func (m *MCU) Reset() {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.regs = make(map[uint32]uint32)
	m.regs[RCCAPB2ENR] = 0
	for port := 0; port < hal.NumPorts; port++ {
		base := PortBase(hal.Port(port))
		m.regs[base+GPIOCRL] = CRResetValue
		m.regs[base+GPIOCRH] = CRResetValue
		m.regs[base+GPIOODR] = 0
	}
	m.trace, m.dropped = nil, 0
	atomic.StoreUint64(&m.cycles, 0)
	m.started = time.Now()
}

// Read32 reads a register. Unmapped addresses and write-only registers
// read as zero.
func (m *MCU) Read32(addr uint32) uint32 {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.read(addr)
}

// Write32 writes a register. Writes to a GPIO bank with its APB2 clock
// gated are silently dropped, as on the real part.
func (m *MCU) Write32(addr, val uint32) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.write(addr, val)
}

// DroppedWrites is the number of writes dropped because of a gated clock.
func (m *MCU) DroppedWrites() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.dropped
}

// Trace returns a copy of recorded output transitions.
func (m *MCU) Trace() []Transition {
	m.lock.Lock()
	defer m.lock.Unlock()
	return append([]Transition(nil), m.trace...)
}

// Level reads the output data bit of the pin.
func (m *MCU) Level(pin hal.PinID) hal.Level {
	return m.Read32(PortBase(pin.Port)+GPIOODR)&pin.Mask() != 0
}

// PinConfig decodes the current configuration of the pin.
func (m *MCU) PinConfig(pin hal.PinID) (hal.PinConfig, bool) {
	addr, shift := CRAddr(pin)
	return DecodeConfig((m.Read32(addr) >> shift) & 0xf)
}

// ClockEnabled indicates the APB2 clock of the bank is ungated.
func (m *MCU) ClockEnabled(port hal.Port) bool {
	return m.Read32(RCCAPB2ENR)&IOPENBit(port) != 0
}

// EnableClock implements hal.Board.
func (m *MCU) EnableClock(port hal.Port) error {
	if int(port) >= hal.NumPorts {
		return hal.ErrInvalidPin
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	m.write(RCCAPB2ENR, m.read(RCCAPB2ENR)|IOPENBit(port))
	return nil
}

// ConfigurePin implements hal.Board.
func (m *MCU) ConfigurePin(pin hal.PinID, conf hal.PinConfig) error {
	if !pin.IsValid() {
		return hal.ErrInvalidPin
	}
	nibble, err := EncodeConfig(conf)
	if err != nil {
		return err
	}
	addr, shift := CRAddr(pin)
	m.lock.Lock()
	defer m.lock.Unlock()
	m.write(addr, m.read(addr)&^(0xf<<shift)|nibble<<shift)
	return nil
}

// SetLevel implements hal.Board using a single BSRR write.
func (m *MCU) SetLevel(pin hal.PinID, level hal.Level) error {
	if !pin.IsValid() {
		return hal.ErrInvalidPin
	}
	val := pin.Mask()
	if !level {
		val <<= 16
	}
	m.Write32(PortBase(pin.Port)+GPIOBSRR, val)
	return nil
}

// Cycles is the number of elapsed instruction cycles since reset.
func (m *MCU) Cycles() uint64 {
	return atomic.LoadUint64(&m.cycles)
}

// Nop implements delay.Spinner.
func (m *MCU) Nop() {
	m.Advance(m.CyclesPerNop)
}

// Advance runs the cycle counter forward.
func (m *MCU) Advance(cycles uint64) {
	now := atomic.AddUint64(&m.cycles, cycles)
	if !m.Pace {
		return
	}
	perMs := m.ClockHz / 1000
	if perMs == 0 || (now-cycles)/perMs == now/perMs {
		return
	}
	if ahead := m.durationOf(now) - time.Since(m.started); ahead > 0 {
		time.Sleep(ahead)
	}
}

// Now implements hal.Clock.
func (m *MCU) Now() time.Time {
	return m.Epoch.Add(m.durationOf(m.Cycles()))
}

// ElapsedSince implements hal.Clock.
func (m *MCU) ElapsedSince(start time.Time) time.Duration {
	return m.Now().Sub(start)
}

// CyclesOf converts a duration to cycles at ClockHz.
func (m *MCU) CyclesOf(d time.Duration) uint64 {
	if d <= 0 {
		return 0
	}
	secs, rem := uint64(d/time.Second), uint64(d%time.Second)
	return secs*m.ClockHz + rem*m.ClockHz/uint64(time.Second)
}

func (m *MCU) durationOf(cycles uint64) time.Duration {
	hz := m.ClockHz
	secs, rem := cycles/hz, cycles%hz
	return time.Duration(secs)*time.Second + time.Duration(rem*uint64(time.Second)/hz)
}

func (m *MCU) read(addr uint32) uint32 {
	if port, off, ok := gpioRegister(addr); ok {
		switch off {
		case GPIOBSRR, GPIOBRR:
			return 0
		case GPIOIDR:
			return m.regs[PortBase(port)+GPIOODR]
		}
	}
	return m.regs[addr]
}

func (m *MCU) write(addr, val uint32) {
	port, off, ok := gpioRegister(addr)
	if !ok {
		if addr == RCCAPB2ENR {
			m.regs[addr] = val
		}
		return
	}
	if m.regs[RCCAPB2ENR]&IOPENBit(port) == 0 {
		m.dropped++
		return
	}
	odrAddr := PortBase(port) + GPIOODR
	switch off {
	case GPIOCRL, GPIOCRH:
		m.regs[addr] = val
	case GPIOODR:
		m.setODR(port, val&0xffff)
	case GPIOBSRR:
		set, reset := val&0xffff, val>>16
		m.setODR(port, (m.regs[odrAddr]|set)&^(reset&^set))
	case GPIOBRR:
		m.setODR(port, m.regs[odrAddr]&^(val&0xffff))
	}
}

func (m *MCU) setODR(port hal.Port, val uint32) {
	addr := PortBase(port) + GPIOODR
	changed := m.regs[addr] ^ val
	m.regs[addr] = val
	if changed == 0 {
		return
	}
	cycle := m.Cycles()
	t := m.Epoch.Add(m.durationOf(cycle))
	for line := uint8(0); line < hal.LinesPerPort; line++ {
		pin := hal.PinID{Port: port, Line: line}
		if changed&pin.Mask() != 0 {
			m.trace = append(m.trace, Transition{
				Pin:   pin,
				Level: val&pin.Mask() != 0,
				Cycle: cycle,
				Time:  t,
			})
		}
	}
}

func gpioRegister(addr uint32) (hal.Port, uint32, bool) {
	if addr < GPIOABase {
		return 0, 0, false
	}
	port := (addr - GPIOABase) / GPIOPortSpan
	off := (addr - GPIOABase) % GPIOPortSpan
	if port >= uint32(hal.NumPorts) || off > GPIOBRR || off%4 != 0 {
		return 0, 0, false
	}
	return hal.Port(port), off, true
}
