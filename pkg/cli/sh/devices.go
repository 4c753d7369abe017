package sh

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/robotalks/blink.go/pkg/device"
	"github.com/robotalks/blink.go/pkg/device/msgs"
	fx "github.com/robotalks/blink.go/pkg/framework"
)

// ConnLoop runs the loop of the connected device.
type ConnLoop struct {
	Ctx    context.Context
	Cancel func()
	Ref    device.Ref
	Loop   *fx.Loop
	Conn   device.Conn
}

// ErrAmbiguousDevice is returned when a choice is needed but the shell
// is not interactive.
var ErrAmbiguousDevice = errors.New("more than one device discovered")

// DeviceFilter selects discovered devices, nil selects all.
type DeviceFilter func(device.Info) bool

// OfType selects devices of typ.
func OfType(typ string) DeviceFilter {
	return func(info device.Info) bool { return info.Ref.Type == typ }
}

func (f DeviceFilter) apply(infos []device.Info) []device.Info {
	if f == nil {
		return infos
	}
	selected := infos[:0:0]
	for _, info := range infos {
		if f(info) {
			selected = append(selected, info)
		}
	}
	return selected
}

// FormatInfo renders info as "type/id: description".
func FormatInfo(info device.Info) string {
	if desc := info.Meta.Description; desc != "" {
		return info.Ref.Name() + ": " + desc
	}
	return info.Ref.Name()
}

// DiscoverDevices lists registered devices accepted by filter.
func (s *Shell) DiscoverDevices(filter DeviceFilter) (device.Connector, []device.Info, error) {
	connector, err := s.Config.NewConnector()
	if err != nil {
		return nil, nil, err
	}
	infos, err := connector.Discover(context.Background())
	if err != nil {
		return connector, nil, err
	}
	return connector, filter.apply(infos), nil
}

// SelectDevice discovers devices and asks for a choice if more than one
// is found. The returned Info is nil if none is found.
func (s *Shell) SelectDevice(filter DeviceFilter) (device.Connector, *device.Info, error) {
	connector, infos, err := s.DiscoverDevices(filter)
	switch {
	case err != nil:
		return nil, nil, err
	case len(infos) == 0:
		return connector, nil, nil
	case len(infos) == 1:
		return connector, &infos[0], nil
	case !s.Interactive:
		return nil, nil, ErrAmbiguousDevice
	}
	choices := make([]string, len(infos))
	for n, info := range infos {
		choices[n] = FormatInfo(info)
	}
	index := s.Shell.MultiChoice(choices, "Which one to connect?")
	if index < 0 {
		return connector, nil, nil
	}
	return connector, &infos[index], nil
}

// Connect replaces the current connection with one to ref.
func (s *Shell) Connect(ref device.Ref) error {
	connector, err := s.Config.NewConnector()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	conn, err := connector.Connect(ctx, ref)
	if err != nil {
		cancel()
		return err
	}
	cl := &ConnLoop{Ctx: ctx, Cancel: cancel, Ref: ref, Conn: conn, Loop: fx.NewLoop()}
	if adder, ok := conn.(fx.LoopAdder); ok {
		cl.Loop.Add(adder)
	}
	cl.Loop.AddController(fx.PrLvControl, fx.ControlFunc(s.printEvents))

	s.Disconnect()
	s.Loop = cl
	go cl.Loop.Run(ctx)
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", ref.Name()))
	return nil
}

// Disconnect drops the current connection if any.
func (s *Shell) Disconnect() {
	cl := s.Loop
	if cl == nil {
		return
	}
	s.Loop = nil
	cl.Cancel()
	if closer, ok := cl.Conn.(io.Closer); ok {
		closer.Close()
	}
	s.Shell.SetPrompt(unconnectedPrompt)
}

// printEvents consumes events of the connected device and prints them
// while watching.
func (s *Shell) printEvents(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		msg := mctx.CurrentMessage()
		if _, ok := msg.(msgs.SerializableMessage); !ok {
			return
		}
		mctx.MessageTaken()
		if !s.Watching() {
			return
		}
		if out, err := s.FormatMessage(msg); err == nil {
			s.Shell.Println(out)
		}
	}))
	return nil
}
