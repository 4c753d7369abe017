package comm

import (
	"context"
	"sync"
	"time"

	"github.com/robotalks/blink.go/pkg/device"
	"github.com/robotalks/blink.go/pkg/device/msgs"
	fx "github.com/robotalks/blink.go/pkg/framework"
)

// DefaultCommandExpiration is how long a command waits for its reply.
const DefaultCommandExpiration = time.Second

// DeviceConn is the client side of a Pipe. Replies are matched to
// commands by sequence, events are posted to the loop.
type DeviceConn struct {
	Expiration time.Duration

	pipe Pipe

	lock    sync.Mutex
	lastSeq uint32
	waiting map[uint32]*commandFuture
	// order is the send order of sequences in waiting, which is also the
	// order they expire.
	order []uint32
}

// Init must be called before use.
func (c *DeviceConn) Init(rw PacketReadWriter) {
	c.Expiration = DefaultCommandExpiration
	c.pipe = Pipe{ReadWriter: rw, Handler: msgs.HandleTypedMsgFunc(c.received)}
	c.waiting = make(map[uint32]*commandFuture)
}

// nextSeq skips 0 which is never used by commands.
func (c *DeviceConn) nextSeq() uint32 {
	c.lastSeq++
	if c.lastSeq == 0 {
		c.lastSeq = 1
	}
	return c.lastSeq
}

// DoCommand implements device.Conn.
func (c *DeviceConn) DoCommand(msg fx.Message) device.CommandFuture {
	c.lock.Lock()
	defer c.lock.Unlock()
	f := newCommandFuture(c.nextSeq(), time.Now().Add(c.Expiration))
	if err := c.pipe.SendCommandMsg(msg, f.seq); err != nil {
		f.resolve(device.Result{Err: err})
		return f
	}
	c.waiting[f.seq] = f
	c.order = append(c.order, f.seq)
	return f
}

// Close closes the underlying stream.
func (c *DeviceConn) Close() error {
	return c.pipe.Close()
}

// AddToLoop implements LoopAdder.
func (c *DeviceConn) AddToLoop(l *fx.Loop) {
	l.Add(&c.pipe)
	l.AddController(fx.PrLvIdle, fx.ControlFunc(c.expire))
}

func (c *DeviceConn) received(ctx context.Context, msg fx.Message, typed *msgs.Typed) error {
	if typed.IsEvent() {
		loopCtl := fx.LoopCtlFrom(ctx)
		loopCtl.PostMessage(msg)
		loopCtl.TriggerNext()
		return nil
	}
	c.lock.Lock()
	f, ok := c.waiting[typed.Sequence]
	delete(c.waiting, typed.Sequence)
	c.lock.Unlock()
	if !ok {
		// late reply of an expired command.
		return nil
	}
	res := device.Result{Msg: msg}
	if cmdErr, isErr := msg.(*msgs.CommandErr); isErr {
		res.Err = cmdErr
	}
	f.resolve(res)
	return nil
}

func (c *DeviceConn) expire(fx.ControlContext) error {
	now := time.Now()
	c.lock.Lock()
	defer c.lock.Unlock()
	n := 0
	for ; n < len(c.order); n++ {
		f, ok := c.waiting[c.order[n]]
		if !ok {
			continue
		}
		if f.deadline.After(now) {
			break
		}
		delete(c.waiting, f.seq)
		f.resolve(device.Result{Err: context.DeadlineExceeded})
	}
	c.order = c.order[n:]
	return nil
}

type commandFuture struct {
	seq      uint32
	deadline time.Time
	ch       chan device.Result
}

func newCommandFuture(seq uint32, deadline time.Time) *commandFuture {
	return &commandFuture{seq: seq, deadline: deadline, ch: make(chan device.Result, 1)}
}

// resolve is called at most once, guarded by the waiting map.
func (f *commandFuture) resolve(res device.Result) {
	f.ch <- res
	close(f.ch)
}

func (f *commandFuture) ResultChan() <-chan device.Result {
	return f.ch
}
