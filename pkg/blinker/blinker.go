// Package blinker toggles one digital output to produce a square wave:
// HIGH, wait, LOW, wait, forever.
package blinker

import (
	"context"
	"fmt"
	"time"

	"github.com/robotalks/blink.go/pkg/delay"
	"github.com/robotalks/blink.go/pkg/hal"
)

// Defaults
const (
	DefaultPin      = "PA5"
	DefaultInterval = 500 * time.Millisecond
)

// DefaultPinConfig drives the pin push-pull at 2MHz.
var DefaultPinConfig = hal.PinConfig{Mode: hal.ModeOutputPushPull, Speed: hal.Speed2MHz}

// Transition is observed every time the pin is driven.
type Transition struct {
	// Seq counts transitions from 1.
	Seq   uint64
	Level hal.Level
	Time  time.Time
}

// Observer receives transitions. It's invoked on the blinking goroutine
// right after the level is driven and before the delay starts.
type Observer interface {
	Transitioned(Transition)
}

// ObserveFunc is the func form of Observer.
type ObserveFunc func(Transition)

// Transitioned implements Observer.
func (f ObserveFunc) Transitioned(t Transition) {
	f(t)
}

// Blinker drives the pin. It's not safe for concurrent use, observers
// should copy what they need to other goroutines.
type Blinker struct {
	Board     hal.Board
	Clock     hal.Clock
	Pin       hal.PinID
	PinConfig hal.PinConfig
	Delay     delay.Delayer
	Interval  time.Duration

	observers   []Observer
	level       hal.Level
	seq         uint64
	initialized bool
}

// New creates a Blinker on the default pin, spinning on spinner for
// delays.
func New(board hal.Board, clock hal.Clock, spinner delay.Spinner) *Blinker {
	return &Blinker{
		Board:     board,
		Clock:     clock,
		Pin:       hal.MustParsePin(DefaultPin),
		PinConfig: DefaultPinConfig,
		Delay:     delay.NewSpin(spinner),
		Interval:  DefaultInterval,
	}
}

// Observe adds observers.
func (b *Blinker) Observe(observers ...Observer) *Blinker {
	b.observers = append(b.observers, observers...)
	return b
}

// Initialize enables the clock of the pin's port and configures the pin.
// The pin level is left as the board resets it.
func (b *Blinker) Initialize() error {
	if err := b.Board.EnableClock(b.Pin.Port); err != nil {
		return fmt.Errorf("enable clock of %v error: %w", b.Pin.Port, err)
	}
	if err := b.Board.ConfigurePin(b.Pin, b.PinConfig); err != nil {
		return fmt.Errorf("configure %v error: %w", b.Pin, err)
	}
	b.level, b.seq, b.initialized = hal.Low, 0, true
	return nil
}

// Step drives the next level and waits for one interval. The first Step
// after Initialize drives HIGH.
func (b *Blinker) Step() (hal.Level, error) {
	if !b.initialized {
		if err := b.Initialize(); err != nil {
			return b.level, err
		}
	}
	next := !b.level
	if err := b.Board.SetLevel(b.Pin, next); err != nil {
		return b.level, fmt.Errorf("set %v %v error: %w", b.Pin, next, err)
	}
	b.level = next
	b.seq++
	if len(b.observers) > 0 {
		t := Transition{Seq: b.seq, Level: next, Time: b.now()}
		for _, o := range b.observers {
			o.Transitioned(t)
		}
	}
	if b.Delay != nil {
		b.Delay.Delay(b.Interval)
	}
	return next, nil
}

// Run toggles the pin until ctx is done. ctx is only checked between
// transitions, a delay in progress always completes.
func (b *Blinker) Run(ctx context.Context) error {
	if !b.initialized {
		if err := b.Initialize(); err != nil {
			return err
		}
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if _, err := b.Step(); err != nil {
			return err
		}
	}
}

// Level is the last driven level.
func (b *Blinker) Level() hal.Level {
	return b.level
}

// Transitions is the number of transitions since Initialize.
func (b *Blinker) Transitions() uint64 {
	return b.seq
}

func (b *Blinker) now() time.Time {
	if b.Clock != nil {
		return b.Clock.Now()
	}
	return time.Now()
}
