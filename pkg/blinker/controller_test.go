package blinker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/blink.go/pkg/delay"
	"github.com/robotalks/blink.go/pkg/device"
	"github.com/robotalks/blink.go/pkg/device/comm"
	"github.com/robotalks/blink.go/pkg/device/env/daemon"
	"github.com/robotalks/blink.go/pkg/device/msgs"
	fx "github.com/robotalks/blink.go/pkg/framework"
	"github.com/robotalks/blink.go/pkg/hal"
	"github.com/robotalks/blink.go/pkg/sim"
	"github.com/robotalks/blink.go/pkg/sim/mcu"
)

type eventRecorder struct {
	eventCh chan fx.Message
}

func (r *eventRecorder) SendEvent(ctx context.Context, msg fx.Message) error {
	r.eventCh <- msg
	return nil
}

type testCommand struct {
	msg    fx.Message
	result chan fx.Message
	err    error
}

func (c *testCommand) Msg() fx.Message { return c.msg }

func (c *testCommand) Done(msg fx.Message) error {
	c.result <- msg
	return c.err
}

type ledRecorder struct {
	levels chan hal.Level
}

func (r *ledRecorder) ObjectsChanged(cc fx.ControlContext, objs ...sim.Object) {
	for _, obj := range objs {
		r.levels <- obj.(*sim.LED).Level
	}
}

func (r *ledRecorder) ObjectsRemoved(cc fx.ControlContext, objs ...sim.Object) {}

type controllerTestEnv struct {
	t      *testing.T
	loop   *fx.Loop
	ctl    *Controller
	events *eventRecorder
	leds   *ledRecorder
	steps  chan struct{}
	cancel func()
	done   chan error
}

func newControllerTestEnv(t *testing.T) *controllerTestEnv {
	ctx, cancel := context.WithCancel(context.Background())
	e := &controllerTestEnv{
		t:      t,
		events: &eventRecorder{eventCh: make(chan fx.Message, 16)},
		leds:   &ledRecorder{levels: make(chan hal.Level, 16)},
		steps:  make(chan struct{}),
		cancel: cancel,
		done:   make(chan error, 1),
	}
	b, m := newSimBlinker()
	b.Delay = delay.DelayFunc(func(d time.Duration) {
		select {
		case <-e.steps:
			m.Advance(m.CyclesOf(d))
		case <-ctx.Done():
		}
	})
	denv := &daemon.Env{Registrar: &comm.RegistrarMux{}}
	denv.Registrar.Add(e.events)
	e.ctl = NewController(denv, b)
	e.ctl.SubscribeObjectsChange(e.leds)
	e.loop = fx.NewLoop().Add(e.ctl)
	go func() {
		e.done <- e.loop.Run(ctx)
	}()
	return e
}

func (e *controllerTestEnv) stop() {
	e.cancel()
	select {
	case <-e.done:
	case <-time.After(time.Second):
		e.t.Fatal("loop not stopped")
	}
}

func (e *controllerTestEnv) event() *msgs.PinLevelChanged {
	select {
	case msg := <-e.events.eventCh:
		return msg.(*msgs.PinLevelChanged)
	case <-time.After(time.Second):
		e.t.Fatal("event timeout")
	}
	return nil
}

func (e *controllerTestEnv) led() hal.Level {
	select {
	case level := <-e.leds.levels:
		return level
	case <-time.After(time.Second):
		e.t.Fatal("LED timeout")
	}
	return hal.Low
}

func (e *controllerTestEnv) status() *msgs.BlinkStatus {
	cmd := &testCommand{msg: &msgs.BlinkStatusQuery{}, result: make(chan fx.Message, 1)}
	e.loop.PostMessage(&device.CommandMsg{Command: cmd})
	e.loop.TriggerNext()
	select {
	case msg := <-cmd.result:
		return msg.(*msgs.BlinkStatus)
	case <-time.After(time.Second):
		e.t.Fatal("status timeout")
	}
	return nil
}

func TestControllerEvents(t *testing.T) {
	env := newControllerTestEnv(t)
	defer env.stop()

	epoch := env.ctl.Blinker.Board.(*mcu.MCU).Epoch
	ev := env.event()
	require.Equal(t, "PA5", ev.Pin)
	require.True(t, ev.High)
	require.Equal(t, uint64(1), ev.Seq)
	require.Equal(t, epoch.UnixNano(), ev.TimeNs)

	// initial LED state, then the first transition.
	level := env.led()
	if level == hal.Low {
		level = env.led()
	}
	require.Equal(t, hal.High, level)

	status := env.status()
	require.Equal(t, &msgs.BlinkStatus{
		Pin:         "PA5",
		High:        true,
		Transitions: 1,
		IntervalUs:  500000,
		Running:     true,
	}, status)

	env.steps <- struct{}{}
	ev = env.event()
	require.False(t, ev.High)
	require.Equal(t, uint64(2), ev.Seq)
	require.Equal(t, epoch.Add(500*time.Millisecond).UnixNano(), ev.TimeNs)
	require.Equal(t, hal.Low, env.led())
}

func TestControllerReplyFailure(t *testing.T) {
	env := newControllerTestEnv(t)
	defer env.stop()
	env.event()

	cmd := &testCommand{
		msg:    &msgs.BlinkStatusQuery{},
		result: make(chan fx.Message, 1),
		err:    errors.New("connection closed"),
	}
	env.loop.PostMessage(&device.CommandMsg{Command: cmd})
	env.loop.TriggerNext()
	select {
	case <-cmd.result:
	case <-time.After(time.Second):
		t.Fatal("status timeout")
	}

	// the failed reply is consumed, queries are still served.
	status := env.status()
	require.Equal(t, uint64(1), status.Transitions)
	require.True(t, status.Running)
}

func TestControllerStops(t *testing.T) {
	env := newControllerTestEnv(t)
	env.event()
	env.stop()
	// cancelled during the first delay, no more transitions.
	require.Equal(t, uint64(1), env.ctl.Blinker.Transitions())
	require.Equal(t, hal.High, env.ctl.Blinker.Level())
}

func TestConfigNewController(t *testing.T) {
	conf := NewConfig()
	conf.Delay = DelayTimed
	ctl, err := conf.NewController(nil)
	require.NoError(t, err)
	status := ctl.Status()
	require.Equal(t, "PA5", status.Pin)
	require.Equal(t, BackendSim, status.Backend)
	require.Equal(t, DelayTimed, status.Delay)
	require.Equal(t, "led/PA5", ctl.LED.Name())

	conf.Backend = "unknown"
	_, err = conf.NewController(nil)
	require.Error(t, err)
}
