package host

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"

	"github.com/robotalks/blink.go/pkg/hal"
)

func newTestBoard(pins ...*gpiotest.Pin) *Board {
	b := New()
	b.Init = func() error { return nil }
	b.Lookup = func(name string) gpio.PinIO {
		for _, p := range pins {
			if p.N == name {
				return p
			}
		}
		return nil
	}
	return b
}

func TestResolvers(t *testing.T) {
	testCases := []struct {
		pin  string
		line string
		flat string
	}{
		{pin: "PA5", line: "GPIO5", flat: "GPIO5"},
		{pin: "PB1", line: "GPIO1", flat: "GPIO17"},
		{pin: "PC13", line: "GPIO13", flat: "GPIO45"},
	}
	for _, tc := range testCases {
		t.Run(tc.pin, func(t *testing.T) {
			pin := hal.MustParsePin(tc.pin)
			require.Equal(t, tc.line, LineResolver(pin))
			require.Equal(t, tc.flat, FlatResolver(pin))
		})
	}
}

func TestPushPull(t *testing.T) {
	io := &gpiotest.Pin{N: "GPIO5", L: gpio.High}
	b := newTestBoard(io)
	pin := hal.MustParsePin("PA5")

	require.True(t, errors.Is(b.SetLevel(pin, hal.High), hal.ErrNotConfigured))
	require.NoError(t, b.EnableClock(pin.Port))
	require.NoError(t, b.ConfigurePin(pin, hal.PinConfig{Mode: hal.ModeOutputPushPull, Speed: hal.Speed2MHz}))
	require.Equal(t, gpio.Low, io.Read())
	require.NoError(t, b.SetLevel(pin, hal.High))
	require.Equal(t, gpio.High, io.Read())
	require.NoError(t, b.SetLevel(pin, hal.Low))
	require.Equal(t, gpio.Low, io.Read())
}

func TestOpenDrain(t *testing.T) {
	io := &gpiotest.Pin{N: "GPIO13"}
	b := newTestBoard(io)
	pin := hal.MustParsePin("PC13")
	require.NoError(t, b.ConfigurePin(pin, hal.PinConfig{Mode: hal.ModeOutputOpenDrain}))
	require.NoError(t, b.SetLevel(pin, hal.High))
	require.Equal(t, gpio.Float, io.Pull())
}

func TestConfigureErrors(t *testing.T) {
	b := newTestBoard(&gpiotest.Pin{N: "GPIO5"})
	testCases := []struct {
		name string
		pin  hal.PinID
		conf hal.PinConfig
		err  error
	}{
		{name: "input", pin: hal.MustParsePin("PA5"), conf: hal.PinConfig{Mode: hal.ModeInputFloating}, err: hal.ErrUnsupportedMode},
		{name: "missing", pin: hal.MustParsePin("PA6"), conf: hal.PinConfig{Mode: hal.ModeOutputPushPull}, err: hal.ErrInvalidPin},
		{name: "invalid", pin: hal.PinID{Port: hal.PortA, Line: 16}, conf: hal.PinConfig{Mode: hal.ModeOutputPushPull}, err: hal.ErrInvalidPin},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := b.ConfigurePin(tc.pin, tc.conf)
			require.True(t, errors.Is(err, tc.err), "%v", err)
		})
	}
}

func TestInitError(t *testing.T) {
	b := New()
	calls := 0
	b.Init = func() error {
		calls++
		return errors.New("no gpio")
	}
	require.Error(t, b.EnableClock(hal.PortA))
	require.Error(t, b.EnableClock(hal.PortB))
	require.Equal(t, 1, calls)
}
