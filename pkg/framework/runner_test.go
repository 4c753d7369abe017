package framework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type runFunc func(context.Context) error

func (f runFunc) Run(ctx context.Context) error { return f(ctx) }

func TestRunnerAggregatesErrors(t *testing.T) {
	errA, errB := errors.New("a"), errors.New("b")
	err := NewRunner().Go(
		runFunc(func(context.Context) error { return errA }),
		NamedRun("canceled", runFunc(func(context.Context) error { return context.Canceled })),
		runFunc(func(context.Context) error { return nil }),
		runFunc(func(context.Context) error { return errB }),
	).Wait()
	require.Error(t, err)
	require.True(t, errors.Is(err, errA))
	require.True(t, errors.Is(err, errB))
	require.False(t, errors.Is(err, context.Canceled))
	require.Len(t, err.(*AggregatedError).Errors, 2)
}

func TestRunnerNoErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunnerWith(ctx).Go(runFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	cancel()
	require.NoError(t, r.Wait())
}

type closer struct {
	closed  int
	unblock chan struct{}
}

func (c *closer) Close() error {
	c.closed++
	close(c.unblock)
	return nil
}

func TestRunnerReleasesSignals(t *testing.T) {
	r := NewRunner().HandleSignals()
	ctx := r.Context
	require.NoError(t, r.Go(runFunc(func(context.Context) error { return nil })).Wait())
	select {
	case <-r.signalDone:
	case <-time.After(time.Second):
		require.Fail(t, "signal handler still running after Wait")
	}
	require.Error(t, ctx.Err())
	// a second Wait must not close stopCh again.
	require.NoError(t, r.Wait())
}

func TestRunWithContextCloser(t *testing.T) {
	c := &closer{unblock: make(chan struct{})}
	err := RunWithContextCloser(context.Background(), c, func() error { return nil })
	require.NoError(t, err)
	require.Equal(t, 1, c.closed)

	c = &closer{unblock: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = RunWithContextCloser(ctx, c, func() error {
		<-c.unblock
		return errors.New("closed")
	})
	require.Equal(t, context.Canceled, err)
	require.Equal(t, 1, c.closed)
}

func TestAggregatedErrorEmpty(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil, nil).Aggregate())
}

func TestAggregatedError(t *testing.T) {
	errA := errors.New("a")
	var errs AggregatedError
	require.Equal(t, errA, errs.Add(errA).Aggregate())
	err := errs.Add(nil, errors.New("b")).Aggregate()
	require.EqualError(t, err, "2 errors; a; b")
}
