package comm

import (
	"context"
	"io"
	"io/ioutil"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/blink.go/pkg/device"
	"github.com/robotalks/blink.go/pkg/device/comm/stream"
	"github.com/robotalks/blink.go/pkg/device/msgs"
	fx "github.com/robotalks/blink.go/pkg/framework"
)

type commTestEnv struct {
	t        *testing.T
	reg      *Registrar
	conn     *DeviceConn
	eventCh  chan fx.Message
	cancel   func()
	finished chan struct{}
}

func newCommTestEnv(t *testing.T) *commTestEnv {
	devSide, clientSide := net.Pipe()
	env := &commTestEnv{
		t:        t,
		reg:      NewRegistrar(stream.New(devSide)),
		conn:     &DeviceConn{},
		eventCh:  make(chan fx.Message, 1),
		finished: make(chan struct{}),
	}
	env.conn.Init(stream.New(clientSide))

	devLoop := fx.NewLoop().Add(env.reg, &UnsupportedCommands{})
	devLoop.AddController(fx.PrLvControl, fx.ControlFunc(func(cc fx.ControlContext) error {
		cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
			if cmdMsg, ok := mctx.CurrentMessage().(*device.CommandMsg); ok {
				if _, ok := cmdMsg.Command.Msg().(*msgs.BlinkStatusQuery); ok {
					mctx.MessageTaken()
					cmdMsg.Command.Done(&msgs.BlinkStatus{Pin: "PA5", High: true, Transitions: 3})
				}
			}
		}))
		return nil
	}))

	clientLoop := fx.NewLoop().Add(env.conn)
	clientLoop.AddController(fx.PrLvControl, fx.ControlFunc(func(cc fx.ControlContext) error {
		cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
			mctx.MessageTaken()
			env.eventCh <- mctx.CurrentMessage()
		}))
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	env.cancel = cancel
	go func() {
		fx.NewRunnerWith(ctx).Go(devLoop, clientLoop).Wait()
		close(env.finished)
	}()
	return env
}

func (e *commTestEnv) stop() {
	e.cancel()
	select {
	case <-e.finished:
	case <-time.After(time.Second):
		e.t.Fatal("loops not stopped")
	}
}

func (e *commTestEnv) result(f device.CommandFuture) device.Result {
	select {
	case res := <-f.ResultChan():
		return res
	case <-time.After(time.Second):
		e.t.Fatal("timeout")
	}
	return device.Result{}
}

func TestCommandReply(t *testing.T) {
	env := newCommTestEnv(t)
	defer env.stop()

	res := env.result(env.conn.DoCommand(&msgs.BlinkStatusQuery{}))
	require.NoError(t, res.Err)
	require.Equal(t, &msgs.BlinkStatus{Pin: "PA5", High: true, Transitions: 3}, res.Msg)

	// sequence keeps pairing replies.
	res = env.result(env.conn.DoCommand(&msgs.BlinkStatusQuery{}))
	require.NoError(t, res.Err)
}

func TestUnsupportedCommand(t *testing.T) {
	env := newCommTestEnv(t)
	defer env.stop()

	res := env.result(env.conn.DoCommand(msgs.NewCommandOK()))
	require.Error(t, res.Err)
	require.Equal(t, msgs.ErrUnsupportedCommand.Error(), res.Err.Error())
	require.IsType(t, &msgs.CommandErr{}, res.Msg)
}

func TestEvent(t *testing.T) {
	env := newCommTestEnv(t)
	defer env.stop()

	require.NoError(t, env.reg.SendEvent(context.Background(), &msgs.PinLevelChanged{Pin: "PA5", Seq: 1, High: true}))
	select {
	case msg := <-env.eventCh:
		require.Equal(t, &msgs.PinLevelChanged{Pin: "PA5", Seq: 1, High: true}, msg)
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}
	require.Equal(t, ErrNotEvent, env.reg.SendEvent(context.Background(), &msgs.BlinkStatus{}))
}

type discardReadWriter struct {
	io.Reader
	io.Writer
}

func TestCommandExpiration(t *testing.T) {
	pr, _ := io.Pipe()
	defer pr.Close()
	var conn DeviceConn
	conn.Init(stream.New(&discardReadWriter{Reader: pr, Writer: ioutil.Discard}))
	conn.Expiration = 10 * time.Millisecond
	loop := fx.NewLoop().Add(&conn)
	loop.Interval = 10 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	f := conn.DoCommand(&msgs.BlinkStatusQuery{})
	select {
	case res := <-f.ResultChan():
		require.Equal(t, context.DeadlineExceeded, res.Err)
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}
}
