package daemon

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/blink.go/pkg/device"
	"github.com/robotalks/blink.go/pkg/device/comm/serial"
	"github.com/robotalks/blink.go/pkg/device/comm/websocket"
)

func TestNewEnv(t *testing.T) {
	testCases := []struct {
		name   string
		conf   Config
		regs   int
		urls   []string
		hasErr bool
	}{
		{
			name: "no registrar",
			conf: Config{Info: device.Info{Ref: device.Ref{Type: "blinker", ID: "b1"}}},
		},
		{
			name: "websocket",
			conf: Config{
				Info:       device.Info{Ref: device.Ref{Type: "blinker", ID: "b1"}},
				ListenAddr: "localhost:8080",
			},
			regs: 1,
			urls: []string{"ws://localhost:8080" + websocket.DefaultPath},
		},
		{
			name:   "missing type",
			conf:   Config{Info: device.Info{Ref: device.Ref{ID: "b1"}}},
			hasErr: true,
		},
		{
			name: "bad serial port",
			conf: Config{
				Info:   device.Info{Ref: device.Ref{Type: "blinker", ID: "b1"}},
				Serial: serial.Config{Port: "/nonexistent/tty"},
			},
			hasErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conf := tc.conf
			e, err := conf.NewEnv()
			if tc.hasErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.regs, e.Registrar.Len())
			require.Equal(t, tc.urls, e.RegistryURLs)
		})
	}
}

func TestSetDeviceType(t *testing.T) {
	saved := defaultConfig
	defer func() { defaultConfig = saved }()

	SetDeviceType("blinker", device.Meta{Description: "LED"})
	conf := NewConfig()
	require.Equal(t, "blinker", conf.Info.Ref.Type)
	require.Equal(t, "LED", conf.Info.Meta.Description)
}
