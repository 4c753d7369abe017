package blinker

import (
	"context"
	"errors"

	"github.com/golang/glog"

	"github.com/robotalks/blink.go/pkg/device"
	"github.com/robotalks/blink.go/pkg/device/env/daemon"
	"github.com/robotalks/blink.go/pkg/device/msgs"
	fx "github.com/robotalks/blink.go/pkg/framework"
	"github.com/robotalks/blink.go/pkg/sim"
)

// DeviceType is the type the blinker registers as.
const DeviceType = "blinker"

// Controller runs a Blinker in the loop: it reports transitions as
// events, answers status queries and updates the LED for visualization.
type Controller struct {
	Env     *daemon.Env
	Blinker *Blinker
	LED     *sim.LED
	sim.ObjectsChangeCaster

	loopCtl    fx.LoopControl
	status     msgs.BlinkStatus
	events     []*msgs.PinLevelChanged
	ledChanged bool
}

// NewController creates a Controller. e can be nil if the blinker is not
// registered anywhere.
func NewController(e *daemon.Env, b *Blinker) *Controller {
	c := &Controller{
		Env:        e,
		Blinker:    b,
		LED:        sim.NewLED(b.Pin),
		ledChanged: true,
	}
	c.status.Pin = b.Pin.String()
	c.status.IntervalUs = uint64(b.Interval.Microseconds())
	b.Observe(c)
	return c
}

// NewController creates the Blinker and the Controller using the config.
func (c *Config) NewController(e *daemon.Env) (*Controller, error) {
	b, err := c.NewBlinker()
	if err != nil {
		return nil, err
	}
	ctl := NewController(e, b)
	ctl.status.Backend, ctl.status.Delay = c.Backend, c.DelayStrategy()
	return ctl, nil
}

// AddToLoop implements LoopAdder. AddController also starts c as a
// Runnable.
func (c *Controller) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvControl, c)
	loop.AddController(fx.PrLvPostProc, fx.ControlFunc(c.notifyChanges))
}

// Name implements Named.
func (c *Controller) Name() string {
	return "blinker"
}

// Run implements Runnable.
func (c *Controller) Run(ctx context.Context) error {
	c.loopCtl = fx.LoopCtlFrom(ctx)
	c.loopCtl.PostMessage(&runningMsg{running: true})
	glog.Infof("blinking %v every %v", c.Blinker.Pin, c.Blinker.Interval)
	err := c.Blinker.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		glog.Errorf("blinker stopped: %v", err)
	}
	c.loopCtl.PostMessage(&runningMsg{})
	c.loopCtl.TriggerNext()
	return err
}

// Transitioned implements Observer.
func (c *Controller) Transitioned(t Transition) {
	c.loopCtl.PostMessage(&transitionMsg{transition: t})
	c.loopCtl.TriggerNext()
}

// Control implements Controller.
func (c *Controller) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		switch msg := mctx.CurrentMessage().(type) {
		case *device.CommandMsg:
			if _, ok := msg.Command.Msg().(*msgs.BlinkStatusQuery); ok {
				mctx.MessageTaken()
				status := c.status
				if err := msg.Command.Done(&status); err != nil {
					glog.Errorf("reply status: %v", err)
				}
			}
		case *transitionMsg:
			mctx.MessageTaken()
			t := msg.transition
			c.status.High = bool(t.Level)
			c.status.Transitions = t.Seq
			c.events = append(c.events, &msgs.PinLevelChanged{
				Pin:    c.status.Pin,
				High:   bool(t.Level),
				Seq:    t.Seq,
				TimeNs: t.Time.UnixNano(),
			})
			c.LED.Level = t.Level
			c.ledChanged = true
		case *runningMsg:
			mctx.MessageTaken()
			c.status.Running = msg.running
		}
	}))
	return nil
}

// Status gets the current status. It must be called from the loop.
func (c *Controller) Status() msgs.BlinkStatus {
	return c.status
}

func (c *Controller) notifyChanges(cc fx.ControlContext) error {
	if c.ledChanged {
		c.ledChanged = false
		c.ObjectsChanged(cc, c.LED)
	}
	events := c.events
	c.events = nil
	if c.Env == nil {
		return nil
	}
	var errs fx.AggregatedError
	for _, ev := range events {
		errs.Add(c.Env.Registrar.SendEvent(cc.Context(), ev))
	}
	return errs.Aggregate()
}

type transitionMsg struct {
	transition Transition
}

func (m *transitionMsg) NewMessage() fx.Message { return &transitionMsg{} }

type runningMsg struct {
	running bool
}

func (m *runningMsg) NewMessage() fx.Message { return &runningMsg{} }
