package mcu

import "github.com/robotalks/blink.go/pkg/hal"

// Register map of the STM32F1 subset being simulated (RM0008).
const (
	RCCBase      uint32 = 0x40021000
	RCCAPB2ENR   uint32 = RCCBase + 0x18
	GPIOABase    uint32 = 0x40010800
	GPIOPortSpan uint32 = 0x400
	GPIOCRL      uint32 = 0x00
	GPIOCRH      uint32 = 0x04
	GPIOIDR      uint32 = 0x08
	GPIOODR      uint32 = 0x0C
	GPIOBSRR     uint32 = 0x10
	GPIOBRR      uint32 = 0x14

	// CRResetValue configures every line as floating input.
	CRResetValue uint32 = 0x44444444
)

// APB2ENR bits
const (
	APB2ENRAFIOEN uint32 = 1 << 0
	APB2ENRIOPAEN uint32 = 1 << 2
)

// Pin configuration nibble fields.
const (
	crModeInput   uint32 = 0x0
	crMode10MHz   uint32 = 0x1
	crMode2MHz    uint32 = 0x2
	crMode50MHz   uint32 = 0x3
	crCnfPushPull uint32 = 0x0 << 2
	crCnfOpenDrn  uint32 = 0x1 << 2
	crCnfFloating uint32 = 0x1 << 2
)

// PortBase is the base address of a GPIO bank.
func PortBase(port hal.Port) uint32 {
	return GPIOABase + uint32(port)*GPIOPortSpan
}

// IOPENBit is the APB2ENR clock enable bit of a GPIO bank.
func IOPENBit(port hal.Port) uint32 {
	return APB2ENRIOPAEN << uint(port)
}

// CRAddr returns the CRL/CRH register holding the pin configuration and
// the bit offset of its nibble.
func CRAddr(pin hal.PinID) (addr uint32, shift uint) {
	addr = PortBase(pin.Port) + GPIOCRL
	line := uint(pin.Line)
	if line >= 8 {
		addr, line = PortBase(pin.Port)+GPIOCRH, line-8
	}
	return addr, line * 4
}

// EncodeConfig encodes the MODE/CNF nibble of a pin.
func EncodeConfig(conf hal.PinConfig) (uint32, error) {
	if !conf.Mode.IsOutput() {
		if conf.Mode == hal.ModeInputFloating {
			return crModeInput | crCnfFloating, nil
		}
		return 0, hal.ErrUnsupportedMode
	}
	var nibble uint32
	switch conf.Speed {
	case hal.Speed10MHz:
		nibble = crMode10MHz
	case hal.Speed2MHz:
		nibble = crMode2MHz
	case hal.Speed50MHz:
		nibble = crMode50MHz
	default:
		return 0, hal.ErrUnsupportedMode
	}
	if conf.Mode == hal.ModeOutputOpenDrain {
		nibble |= crCnfOpenDrn
	} else {
		nibble |= crCnfPushPull
	}
	return nibble, nil
}

// DecodeConfig decodes a MODE/CNF nibble. Input modes other than floating
// and alternate-function outputs are reported with ok == false.
func DecodeConfig(nibble uint32) (conf hal.PinConfig, ok bool) {
	mode, cnf := nibble&0x3, nibble&0xc
	switch mode {
	case crModeInput:
		return hal.PinConfig{Mode: hal.ModeInputFloating}, cnf == crCnfFloating
	case crMode10MHz:
		conf.Speed = hal.Speed10MHz
	case crMode2MHz:
		conf.Speed = hal.Speed2MHz
	case crMode50MHz:
		conf.Speed = hal.Speed50MHz
	}
	switch cnf {
	case crCnfPushPull:
		conf.Mode = hal.ModeOutputPushPull
	case crCnfOpenDrn:
		conf.Mode = hal.ModeOutputOpenDrain
	default:
		return conf, false
	}
	return conf, true
}
