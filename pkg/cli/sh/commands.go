package sh

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/blink.go/pkg/device"
)

var errNoDevice = errors.New("no device discovered")

// DiscoverCmd lists devices.
var DiscoverCmd = ishell.Cmd{
	Name:    "discover",
	Aliases: []string{"list", "l"},
	Help:    "list registered devices",
	Func: func(c *ishell.Context) {
		s := ShellFrom(c)
		_, infos, err := s.DiscoverDevices(nil)
		if err != nil {
			c.Err(err)
			return
		}
		if s.OutputJSON {
			if infos == nil {
				infos = []device.Info{}
			}
			out, err := json.Marshal(infos)
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(string(out))
			return
		}
		if len(infos) == 0 {
			c.Println("No devices found")
		}
		for _, info := range infos {
			c.Println(FormatInfo(info))
		}
	},
}

// ConnectCmd connects to a device given by TYPE and ID, or picked from
// discovered ones.
var ConnectCmd = ishell.Cmd{
	Name:    "connect",
	Aliases: []string{"c"},
	Help:    "[TYPE [ID]]",
	Func: func(c *ishell.Context) {
		s := ShellFrom(c)
		ref, err := refFromArgs(s, c.Args)
		if err == nil {
			err = s.Connect(ref)
		}
		if err != nil {
			c.Err(err)
		}
	},
}

func refFromArgs(s *Shell, args []string) (device.Ref, error) {
	if len(args) >= 2 {
		return device.Ref{Type: args[0], ID: args[1]}, nil
	}
	var filter DeviceFilter
	if len(args) == 1 {
		filter = OfType(args[0])
	}
	_, info, err := s.SelectDevice(filter)
	if err != nil {
		return device.Ref{}, err
	}
	if info == nil {
		return device.Ref{}, errNoDevice
	}
	return info.Ref, nil
}

// DisconnectCmd drops the current connection.
var DisconnectCmd = ishell.Cmd{
	Name:    "disconnect",
	Aliases: []string{"d"},
	Help:    "disconnect from the device",
	Func: func(c *ishell.Context) {
		ShellFrom(c).Disconnect()
	},
}

// WatchCmd toggles printing of device events.
var WatchCmd = ishell.Cmd{
	Name:    "watch",
	Aliases: []string{"w"},
	Help:    "[on|off]",
	Func: func(c *ishell.Context) {
		s := ShellFrom(c)
		if len(c.Args) == 0 {
			s.SetWatch(!s.Watching())
		} else if en, ok := parseOnOff(c.Args[0]); ok {
			s.SetWatch(en)
		} else {
			c.Err(fmt.Errorf("invalid argument %q", c.Args[0]))
			return
		}
		c.Printf("watch: %v\n", s.Watching())
	},
}

func parseOnOff(arg string) (en, ok bool) {
	switch arg {
	case "on", "true", "1":
		return true, true
	case "off", "false", "0":
		return false, true
	}
	return false, false
}
