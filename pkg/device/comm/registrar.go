package comm

import (
	"context"

	"github.com/robotalks/blink.go/pkg/device"
	"github.com/robotalks/blink.go/pkg/device/msgs"
	fx "github.com/robotalks/blink.go/pkg/framework"
)

// Registrar is the device side of a Pipe. Received commands become
// device.CommandMsg in the loop and are replied on the same sequence.
type Registrar struct {
	pipe Pipe
}

// NewRegistrar creates a Registrar on rw.
func NewRegistrar(rw PacketReadWriter) *Registrar {
	r := &Registrar{}
	r.Init(rw)
	return r
}

// Init prepares a zero Registrar.
func (r *Registrar) Init(rw PacketReadWriter) {
	r.pipe = Pipe{ReadWriter: rw, Handler: msgs.HandleTypedMsgFunc(r.received)}
}

func (r *Registrar) received(ctx context.Context, msg fx.Message, typed *msgs.Typed) error {
	if typed.IsCommand() {
		msg = &device.CommandMsg{Command: &pipeCommand{pipe: &r.pipe, seq: typed.Sequence, msg: msg}}
	}
	loopCtl := fx.LoopCtlFrom(ctx)
	loopCtl.PostMessage(msg)
	loopCtl.TriggerNext()
	return nil
}

// SendEvent implements device.Registrar.
func (r *Registrar) SendEvent(_ context.Context, msg fx.Message) error {
	return r.pipe.SendEventMsg(msg)
}

// AddToLoop implements LoopAdder.
func (r *Registrar) AddToLoop(loop *fx.Loop) {
	loop.Add(&r.pipe)
}

// Serve reads the stream until it ends. It is used instead of AddToLoop
// for streams accepted while the loop is running, ctx must come from the
// loop.
func (r *Registrar) Serve(ctx context.Context) error {
	return r.pipe.Run(ctx)
}

// Close closes the stream.
func (r *Registrar) Close() error {
	return r.pipe.Close()
}

type pipeCommand struct {
	pipe *Pipe
	seq  uint32
	msg  fx.Message
}

func (c *pipeCommand) Msg() fx.Message { return c.msg }

func (c *pipeCommand) Done(reply fx.Message) error {
	return c.pipe.SendCommandMsg(reply, c.seq)
}

// RegistrarMux fans events out to several registrars.
type RegistrarMux struct {
	Registrars []device.Registrar
}

// Add appends registrars.
func (r *RegistrarMux) Add(regs ...device.Registrar) {
	r.Registrars = append(r.Registrars, regs...)
}

// Len returns the number of registrars.
func (r *RegistrarMux) Len() int {
	return len(r.Registrars)
}

// SendEvent implements device.Registrar. A failing registrar doesn't
// prevent delivery to the others.
func (r *RegistrarMux) SendEvent(ctx context.Context, msg fx.Message) error {
	var errs fx.AggregatedError
	for _, reg := range r.Registrars {
		errs.Add(reg.SendEvent(ctx, msg))
	}
	return errs.Aggregate()
}

// AddToLoop implements LoopAdder.
func (r *RegistrarMux) AddToLoop(l *fx.Loop) {
	for _, reg := range r.Registrars {
		if adder, ok := reg.(fx.LoopAdder); ok {
			adder.AddToLoop(l)
		}
	}
}

// UnsupportedCommands runs last and fails every command no controller
// has taken, so clients don't wait until expiration.
type UnsupportedCommands struct{}

// Control implements Controller.
func (c *UnsupportedCommands) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		cmdMsg, ok := mctx.CurrentMessage().(*device.CommandMsg)
		if !ok {
			return
		}
		mctx.MessageTaken()
		cmdMsg.Command.Done(msgs.NewCommandErr(msgs.ErrUnsupportedCommand))
	}))
	return nil
}

// AddToLoop implements LoopAdder.
func (c *UnsupportedCommands) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvIdle, c)
}
