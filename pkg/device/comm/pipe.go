package comm

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/blink.go/pkg/device/msgs"
	fx "github.com/robotalks/blink.go/pkg/framework"
)

// Pipe encodes outgoing messages into packets and hands decoded incoming
// messages to Handler.
type Pipe struct {
	ReadWriter PacketReadWriter
	Handler    msgs.TypedMsgHandler

	writeLock sync.Mutex
}

// NewPipe creates a Pipe on rw.
func NewPipe(rw PacketReadWriter) *Pipe {
	return &Pipe{ReadWriter: rw}
}

func envelope(msg fx.Message, command bool) (*msgs.Typed, error) {
	typed, err := msgs.TypedFrom(msg)
	switch {
	case err != nil:
		return nil, err
	case command && !typed.IsCommand():
		return nil, ErrNotCommand
	case !command && !typed.IsEvent():
		return nil, ErrNotEvent
	}
	return typed, nil
}

// SendCommandMsg sends a command, or a reply, tagged with seq.
func (p *Pipe) SendCommandMsg(msg fx.Message, seq uint32) error {
	typed, err := envelope(msg, true)
	if err != nil {
		return err
	}
	typed.Sequence = seq
	return p.SendTyped(typed)
}

// SendEventMsg sends an event.
func (p *Pipe) SendEventMsg(msg fx.Message) error {
	typed, err := envelope(msg, false)
	if err != nil {
		return err
	}
	return p.SendTyped(typed)
}

// SendTyped writes an envelope as a single packet.
func (p *Pipe) SendTyped(typed *msgs.Typed) error {
	pkt, err := typed.Encode()
	if err != nil {
		return err
	}
	p.writeLock.Lock()
	err = p.ReadWriter.WritePacket(pkt)
	p.writeLock.Unlock()
	return err
}

// Run implements Runnable. It reads until the peer closes the stream,
// which is not an error, or ctx is done, which closes the stream.
func (p *Pipe) Run(ctx context.Context) error {
	return fx.RunWithContextCloser(ctx, p, func() error {
		for {
			pkt, err := p.ReadWriter.ReadPacket()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
			if err = p.dispatch(ctx, pkt); err != nil {
				return err
			}
		}
	})
}

func (p *Pipe) dispatch(ctx context.Context, pkt []byte) error {
	typed, err := msgs.DecodeTyped(pkt)
	if err != nil {
		return fmt.Errorf("malformed packet: %w", err)
	}
	msg, err := typed.Decode()
	if err == nil {
		if p.Handler == nil {
			return nil
		}
		return p.Handler.HandleTypedMsg(ctx, msg, typed)
	}
	glog.V(2).Infof("discard message %08x: %v", typed.TypeId, err)
	if typed.IsCommand() && !typed.IsReply() {
		// the sender is waiting on the sequence.
		return p.SendCommandMsg(msgs.NewCommandErr(err), typed.Sequence)
	}
	return nil
}

// Close closes ReadWriter if it's an io.Closer.
func (p *Pipe) Close() error {
	if c, ok := p.ReadWriter.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// AddToLoop implements LoopAdder. A ReadWriter with its own background
// work is attached as well.
func (p *Pipe) AddToLoop(loop *fx.Loop) {
	switch rw := p.ReadWriter.(type) {
	case fx.LoopAdder:
		loop.Add(rw)
	case fx.Runnable:
		loop.AddRunnable(rw)
	}
	loop.AddRunnable(p)
}
