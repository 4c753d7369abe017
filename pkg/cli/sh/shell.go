// Package sh is the interactive shell of blinkcli. Command packages add
// their commands with AddCmds during init.
package sh

import (
	"encoding/json"
	"errors"
	"flag"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/robotalks/blink.go/pkg/device"
	env "github.com/robotalks/blink.go/pkg/device/env/connector"
	"github.com/robotalks/blink.go/pkg/device/msgs"
	fx "github.com/robotalks/blink.go/pkg/framework"
)

// CommandTimeout bounds how long DoCommand waits for a reply.
const CommandTimeout = time.Second

var (
	// ErrNotConnected is reported by commands requiring a device.
	ErrNotConnected = errors.New("not connected")
	// ErrCommandTimeout is returned when no reply arrives in time.
	ErrCommandTimeout = errors.New("command timeout")
)

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	evalOnly   bool
	outputJSON bool

	commands = []*ishell.Cmd{&DiscoverCmd, &ConnectCmd, &DisconnectCmd, &WatchCmd}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Run the command from arguments and exit")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print replies and events in JSON")
}

// AddCmds registers more commands, must be called before New.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// Shell wraps ishell with at most one connected device.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool

	Shell  *ishell.Shell
	Config *env.Config
	Loop   *ConnLoop

	watch int32
}

// New creates a Shell with every registered command.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		Shell:       ishell.New(),
		Config:      conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets the Shell in a command func.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// MustBeConnected guards a command func.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Loop == nil {
			c.Err(ErrNotConnected)
			return
		}
		fn(c)
	}
}

// DoCommand sends msg to the connected device and prints the reply.
func DoCommand(c *ishell.Context, msg fx.Message) error {
	err := ShellFrom(c).doCommand(c.Println, msg)
	if err != nil {
		c.Err(err)
	}
	return err
}

func (s *Shell) doCommand(println func(...interface{}), msg fx.Message) error {
	if s.Loop == nil {
		return ErrNotConnected
	}
	var res device.Result
	select {
	case res = <-s.Loop.Conn.DoCommand(msg).ResultChan():
	case <-time.After(CommandTimeout):
		return ErrCommandTimeout
	}
	if res.Err != nil {
		return res.Err
	}
	if _, ok := res.Msg.(*msgs.CommandOK); ok && !s.OutputJSON {
		println("OK")
		return nil
	}
	out, err := s.FormatMessage(res.Msg)
	if err != nil {
		return err
	}
	println(out)
	return nil
}

// FormatMessage renders a serializable message as JSON, or as its type
// name followed by the compact text form.
func (s *Shell) FormatMessage(msg fx.Message) (string, error) {
	sm, ok := msg.(msgs.SerializableMessage)
	if !ok {
		return "", msgs.ErrNotSerializable
	}
	if s.OutputJSON {
		out, err := json.Marshal(sm.Serializable())
		return string(out), err
	}
	typeName := reflect.Indirect(reflect.ValueOf(msg)).Type().Name()
	return typeName + " " + sm.Serializable().String(), nil
}

// SetWatch turns printing of device events on or off.
func (s *Shell) SetWatch(en bool) {
	var val int32
	if en {
		val = 1
	}
	atomic.StoreInt32(&s.watch, val)
}

// Watching indicates events are printed.
func (s *Shell) Watching() bool {
	return atomic.LoadInt32(&s.watch) != 0
}

// Run connects when AutoConnect is set and the ref is configured, then
// either processes args or enters the interactive shell.
func (s *Shell) Run(args ...string) {
	if ref := s.Config.Ref; s.AutoConnect && ref.IsValid() {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", ref.Name())
		}
		if err := s.Connect(ref); err != nil {
			glog.Exitf("connect %s: %v", ref.Name(), err)
		}
	}
	switch {
	case len(args) > 0:
		if err := s.Shell.Process(args...); err != nil {
			glog.Exit(err)
		}
	case s.Interactive:
		s.Shell.Run()
	default:
		glog.Exit("command expected")
	}
}

// Main parses flags and runs a shell on the default connector config.
func Main() {
	flag.Parse()
	New(env.NewConfig()).WithAutoConnect(true).Run(flag.Args()...)
}
