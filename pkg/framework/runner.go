package framework

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/golang/glog"
)

// ErrForcedExit is returned by Runner.Wait when a second stop signal
// arrives before all runnables have stopped.
var ErrForcedExit = errors.New("forced exit")

// NamedRun attaches a name to a Runnable for logging.
func NamedRun(name string, runnable Runnable) Runnable {
	return &namedRunnable{Runnable: runnable, name: name}
}

type namedRunnable struct {
	Runnable
	name string
}

func (r *namedRunnable) Name() string { return r.name }

func runnableName(r Runnable, index int) string {
	if named, ok := r.(Named); ok {
		return named.Name()
	}
	return fmt.Sprintf("#%d", index)
}

// Runner starts Runnables in goroutines and collects their errors.
type Runner struct {
	Context context.Context

	started  int
	doneCh   chan error
	abortCh  chan struct{}
	stopCh   chan struct{}
	stopOnce sync.Once
	// closed when the signal handler returns.
	signalDone chan struct{}
}

// NewRunner creates a Runner on a background context.
func NewRunner() *Runner {
	return NewRunnerWith(context.Background())
}

// NewRunnerWith creates a Runner on ctx.
func NewRunnerWith(ctx context.Context) *Runner {
	return &Runner{
		Context: ctx,
		doneCh:  make(chan error),
		abortCh: make(chan struct{}),
		stopCh:  make(chan struct{}),
	}
}

// HandleSignals cancels the context on SIGINT or SIGTERM. A second
// signal makes Wait return ErrForcedExit. Signals are no longer handled
// once Wait returns.
func (r *Runner) HandleSignals() *Runner {
	ctx, cancel := context.WithCancel(r.Context)
	r.Context = ctx
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	r.signalDone = make(chan struct{})
	go func() {
		defer close(r.signalDone)
		defer cancel()
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			glog.Infof("%v received, stopping", sig)
			cancel()
		case <-r.stopCh:
			return
		}
		select {
		case <-sigCh:
			glog.Error("stop signal repeated, exiting")
			close(r.abortCh)
		case <-r.stopCh:
		}
	}()
	return r
}

// Go starts runnables on the Runner's context.
func (r *Runner) Go(runnables ...Runnable) *Runner {
	return r.GoWith(r.Context, runnables...)
}

// GoWith starts runnables on ctx.
func (r *Runner) GoWith(ctx context.Context, runnables ...Runnable) *Runner {
	for _, runnable := range runnables {
		name := runnableName(runnable, r.started)
		r.started++
		go r.run(ctx, name, runnable)
	}
	return r
}

func (r *Runner) run(ctx context.Context, name string, runnable Runnable) {
	glog.V(4).Infof("runnable %s started", name)
	err := runnable.Run(ctx)
	switch {
	case err == nil || errors.Is(err, context.Canceled):
		glog.V(4).Infof("runnable %s stopped", name)
	default:
		glog.Warningf("runnable %s failed: %v", name, err)
	}
	select {
	case r.doneCh <- err:
	case <-r.abortCh:
	}
}

// Wait blocks until every started Runnable returns. Cancellation is not
// treated as an error.
func (r *Runner) Wait() error {
	defer r.stopOnce.Do(func() { close(r.stopCh) })
	var errs AggregatedError
	for ; r.started > 0; r.started-- {
		select {
		case err := <-r.doneCh:
			if !errors.Is(err, context.Canceled) {
				errs.Add(err)
			}
		case <-r.abortCh:
			return ErrForcedExit
		}
	}
	return errs.Aggregate()
}

// RunWithContextCloser runs fn which is not aware of ctx. When ctx is
// done, closer is expected to unblock fn and context.Canceled is
// returned. closer is always closed exactly once.
func RunWithContextCloser(ctx context.Context, closer io.Closer, fn func() error) error {
	resultCh := make(chan error, 1)
	go func() {
		resultCh <- fn()
	}()
	select {
	case err := <-resultCh:
		closer.Close()
		return err
	case <-ctx.Done():
		closer.Close()
		<-resultCh
		return context.Canceled
	}
}
