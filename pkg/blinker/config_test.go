package blinker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/blink.go/pkg/delay"
	"github.com/robotalks/blink.go/pkg/hal"
	"github.com/robotalks/blink.go/pkg/hal/host"
	"github.com/robotalks/blink.go/pkg/sim/mcu"
)

func TestNewBlinker(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*Config)
		check  func(*testing.T, *Blinker)
	}{
		{
			name: "default",
			check: func(t *testing.T, b *Blinker) {
				require.IsType(t, &mcu.MCU{}, b.Board)
				require.Equal(t, hal.MustParsePin("PA5"), b.Pin)
				require.Equal(t, DefaultPinConfig, b.PinConfig)
				require.Equal(t, 500*time.Millisecond, b.Interval)
				require.Equal(t, uint64(8000), b.Delay.(*delay.Spin).IterationsPerMs)
				require.True(t, b.Board.(*mcu.MCU).Pace)
			},
		},
		{
			name: "derived calibration",
			modify: func(c *Config) {
				c.IterationsPerMs = 0
				c.ClockHz = 8000000
			},
			check: func(t *testing.T, b *Blinker) {
				require.Equal(t, uint64(888), b.Delay.(*delay.Spin).IterationsPerMs)
				require.Equal(t, uint64(8000000), b.Board.(*mcu.MCU).ClockHz)
			},
		},
		{
			name: "open drain",
			modify: func(c *Config) {
				c.Pin = "pc13"
				c.Speed = "50MHz"
				c.OpenDrain = true
			},
			check: func(t *testing.T, b *Blinker) {
				require.Equal(t, hal.PinID{Port: hal.PortC, Line: 13}, b.Pin)
				require.Equal(t, hal.PinConfig{Mode: hal.ModeOutputOpenDrain, Speed: hal.Speed50MHz}, b.PinConfig)
			},
		},
		{
			name:   "timed",
			modify: func(c *Config) { c.Delay = DelayTimed },
			check: func(t *testing.T, b *Blinker) {
				timed := b.Delay.(*delay.Timed)
				require.Equal(t, b.Board, timed.Idle)
				require.Equal(t, b.Clock, timed.Clock)
			},
		},
		{
			name: "sleep advances simulated clock",
			modify: func(c *Config) {
				c.Delay = DelaySleep
				c.Pace = false
			},
			check: func(t *testing.T, b *Blinker) {
				m := b.Board.(*mcu.MCU)
				b.Delay.Delay(time.Millisecond)
				require.Equal(t, time.Millisecond, m.ElapsedSince(m.Epoch))
			},
		},
		{
			name: "host",
			modify: func(c *Config) {
				c.Backend = BackendHost
				c.Delay = DelaySleep
			},
			check: func(t *testing.T, b *Blinker) {
				require.IsType(t, &host.Board{}, b.Board)
				require.Equal(t, hal.SystemClock{}, b.Clock)
				require.Equal(t, delay.Sleep{}, b.Delay)
			},
		},
		{
			name:   "host defaults to timed",
			modify: func(c *Config) { c.Backend = BackendHost },
			check: func(t *testing.T, b *Blinker) {
				timed := b.Delay.(*delay.Timed)
				require.Equal(t, hal.SystemClock{}, timed.Clock)
				require.Nil(t, timed.Idle)
			},
		},
		{
			name: "host spin when asked",
			modify: func(c *Config) {
				c.Backend = BackendHost
				c.Delay = DelaySpin
			},
			check: func(t *testing.T, b *Blinker) {
				require.IsType(t, &delay.Spin{}, b.Delay)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conf := NewConfig()
			if tc.modify != nil {
				tc.modify(conf)
			}
			b, err := conf.NewBlinker()
			require.NoError(t, err)
			tc.check(t, b)
		})
	}
}

func TestNewBlinkerErrors(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*Config)
	}{
		{name: "pin", modify: func(c *Config) { c.Pin = "PZ1" }},
		{name: "line", modify: func(c *Config) { c.Pin = "PA16" }},
		{name: "speed", modify: func(c *Config) { c.Speed = "3MHz" }},
		{name: "interval", modify: func(c *Config) { c.Interval = -time.Second }},
		{name: "backend", modify: func(c *Config) { c.Backend = "fpga" }},
		{name: "delay", modify: func(c *Config) { c.Delay = "nap" }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conf := NewConfig()
			tc.modify(conf)
			_, err := conf.NewBlinker()
			require.Error(t, err)
		})
	}
}
