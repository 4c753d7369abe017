package framework

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"
)

// DefaultInterval is used when Loop.Interval is not set.
const DefaultInterval = 100 * time.Millisecond

// LoopAdder knows how to attach itself to a Loop.
type LoopAdder interface {
	AddToLoop(*Loop)
}

// Loop invokes controllers by priority on every tick, or right away when
// TriggerNext is called.
type Loop struct {
	Interval time.Duration
	// Clock provides the iteration time, wall clock if nil.
	Clock TimeSource

	stages    [PriorityLevels]stage
	runnables []Runnable
	inbox     inbox

	wakeOnce sync.Once
	wakeCh   chan struct{}
}

type loopCtxKeyType struct{}

var loopCtxKey loopCtxKeyType

// LoopCtlFrom extracts the LoopControl from the context passed to
// runnables of a Loop, or the context of an iteration.
func LoopCtlFrom(ctx context.Context) LoopControl {
	return ctx.Value(loopCtxKey).(LoopControl)
}

// NewLoop creates a Loop.
func NewLoop() *Loop {
	return &Loop{Interval: DefaultInterval}
}

// WithClock sets Clock.
func (l *Loop) WithClock(clock TimeSource) *Loop {
	l.Clock = clock
	return l
}

// Add calls AddToLoop on each adder.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// AddController installs controllers at the level. A controller which is
// also a Runnable is started together with the loop.
func (l *Loop) AddController(level Priority, ctls ...Controller) *Loop {
	s := &l.stages[level]
	s.controllers = append(s.controllers, ctls...)
	for _, ctl := range ctls {
		if r, ok := ctl.(Runnable); ok {
			l.runnables = append(l.runnables, r)
		}
	}
	return l
}

// AddRunnable registers background workers started by Run.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runnables = append(l.runnables, runnables...)
	return l
}

func (l *Loop) wakeUp() chan struct{} {
	l.wakeOnce.Do(func() {
		l.wakeCh = make(chan struct{}, 1)
	})
	return l.wakeCh
}

// Run implements Runnable. Background workers are stopped before it
// returns.
func (l *Loop) Run(ctx context.Context) error {
	workers := NewRunnerWith(context.WithValue(ctx, loopCtxKey, LoopControl(l)))
	workers.Go(l.runnables...)
	err := l.iterate(ctx)
	if werr := workers.Wait(); werr != nil {
		glog.V(2).Infof("loop workers: %v", werr)
	}
	return err
}

func (l *Loop) iterate(ctx context.Context) error {
	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	wakeCh := l.wakeUp()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case <-wakeCh:
		}
		l.step(ctx)
	}
}

// RunOrFail runs the loop until SIGINT or SIGTERM and exits the process
// on failure.
func (l *Loop) RunOrFail() {
	if err := NewRunner().HandleSignals().Go(l).Wait(); err != nil {
		glog.Exitf("loop failed: %v", err)
	}
}

// Time implements TimeSource.
func (l *Loop) Time() time.Time {
	if l.Clock == nil {
		return time.Now()
	}
	return l.Clock.Time()
}

// PreRunAt implements LoopControl.
func (l *Loop) PreRunAt(level Priority, hooks ...Controller) {
	l.stages[level].addHooks(false, hooks)
}

// PostRunAt implements LoopControl.
func (l *Loop) PostRunAt(level Priority, hooks ...Controller) {
	l.stages[level].addHooks(true, hooks)
}

// PostMessage implements LoopControl.
func (l *Loop) PostMessage(msg Message) {
	l.inbox.post(msg)
}

// TriggerNext implements LoopControl.
func (l *Loop) TriggerNext() {
	select {
	case l.wakeUp() <- struct{}{}:
	default:
	}
}

// step runs a single iteration.
func (l *Loop) step(ctx context.Context) {
	it := &iteration{
		LoopControl: l,
		now:         l.Time(),
		pending:     pendingMessages{msgs: l.inbox.drain()},
	}
	it.ctx = context.WithValue(ctx, loopCtxKey, LoopControl(it))
	for it.level = 0; it.level < PriorityLevels; it.level++ {
		l.stages[it.level].run(it)
	}
}

type iteration struct {
	LoopControl
	ctx     context.Context
	now     time.Time
	level   Priority
	pending pendingMessages
}

func (it *iteration) Context() context.Context { return it.ctx }
func (it *iteration) Time() time.Time          { return it.now }
func (it *iteration) PriorityLevel() Priority  { return it.level }
func (it *iteration) Messages() MessageStore   { return &it.pending }

func (it *iteration) PostRun(hooks ...Controller) {
	it.PostRunAt(it.level, hooks...)
}
