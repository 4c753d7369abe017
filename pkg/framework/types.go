// Package framework runs control logic in a loop: controllers are invoked
// by priority on every iteration and consume messages posted by background
// runnables since the previous iteration.
package framework

import (
	"context"
	"time"
)

// Named is anything with a name, used in logs.
type Named interface {
	Name() string
}

// Runnable is a background worker. Run blocks until ctx is done or the
// work fails.
type Runnable interface {
	Run(context.Context) error
}

// Message is consumed by controllers in the loop.
type Message interface {
	// NewMessage creates an empty message of the same type.
	NewMessage() Message
}

// Controller is invoked once per iteration.
type Controller interface {
	Control(ControlContext) error
}

// ControlFunc is the func form of Controller.
type ControlFunc func(ControlContext) error

// Control implements Controller.
func (f ControlFunc) Control(cc ControlContext) error {
	return f(cc)
}

// TimeSource provides the time of an iteration.
type TimeSource interface {
	Time() time.Time
}

// TimeFunc is the func form of TimeSource.
type TimeFunc func() time.Time

// Time implements TimeSource.
func (f TimeFunc) Time() time.Time {
	return f()
}

// ControlContext is passed to controllers during an iteration.
// Time is fixed for the whole iteration.
type ControlContext interface {
	TimeSource
	LoopControl

	Context() context.Context
	PriorityLevel() Priority
	// Messages are the messages not yet taken by controllers at
	// higher priority levels.
	Messages() MessageStore
	// PostRun installs one-shot hooks after controllers of the current
	// level. Called from a post-run hook, they run in next iteration.
	PostRun(hooks ...Controller)
}

// LoopControl is safe to use from any goroutine.
type LoopControl interface {
	// PreRunAt installs one-shot hooks before controllers of the level.
	PreRunAt(level Priority, hooks ...Controller)
	// PostRunAt installs one-shot hooks after controllers of the level.
	PostRunAt(level Priority, hooks ...Controller)
	// PostMessage queues the message for next iteration.
	PostMessage(Message)
	// TriggerNext runs next iteration without waiting for the interval.
	TriggerNext()
}

// MessageAppender adds messages to the current iteration.
type MessageAppender interface {
	AddMessages(msgs ...Message)
}

// MessageStore holds the messages of an iteration.
type MessageStore interface {
	MessageAppender
	ProcessMessages(MessageProcessor)
}

// MessageProcessor examines messages one by one.
type MessageProcessor interface {
	ProcessMessage(MessageProcessingContext)
}

// ProcessMessageFunc is the func form of MessageProcessor.
type ProcessMessageFunc func(MessageProcessingContext)

// ProcessMessage implements MessageProcessor.
func (f ProcessMessageFunc) ProcessMessage(mctx MessageProcessingContext) {
	f(mctx)
}

// MessageProcessingContext is the state of a single message being
// processed.
type MessageProcessingContext interface {
	MessageAppender

	CurrentMessage() Message
	// MessageTaken removes the message so controllers at lower levels
	// won't see it.
	MessageTaken()
	// StopProcessing skips the remaining messages.
	StopProcessing()
}
