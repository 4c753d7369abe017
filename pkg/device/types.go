// Package device defines how a running blinker is exposed as a device:
// it registers to a registry, publishes events and serves commands, while
// clients discover devices and send commands through a Connector.
package device

import (
	"context"

	fx "github.com/robotalks/blink.go/pkg/framework"
)

// Registrar registers a device to a registry.
// It integrates with framework and helps a device to
// easily process messages.
type Registrar interface {
	// SendEvent publishes an event to connected clients.
	SendEvent(context.Context, fx.Message) error
}

// Command represents a received command to be processed.
type Command interface {
	Msg() fx.Message
	Done(fx.Message) error
}

// CommandMsg wraps a Command as a Message.
type CommandMsg struct {
	Command Command
}

// NewMessage implements Message.
func (m *CommandMsg) NewMessage() fx.Message { return &CommandMsg{} }

// Ref is a reference to a device.
type Ref struct {
	// Type is the device type, e.g. "blinker".
	Type string
	// ID is unique ID of the device.
	ID string
}

// Name retrieves the name from ref.
func (r Ref) Name() string {
	return r.Type + "/" + r.ID
}

// IsValid indicates Ref is valid.
func (r Ref) IsValid() bool {
	return r.Type != "" && r.ID != ""
}

// Meta provides metadata of a device.
type Meta struct {
	Description string            `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

// Info provides information of a device.
type Info struct {
	Ref  Ref
	Meta Meta
}

// Connector is used by clients to connect to a device.
type Connector interface {
	// Discover enumerates registered devices.
	Discover(context.Context) ([]Info, error)
	// Connect connects to the specified device.
	Connect(context.Context, Ref) (Conn, error)
}

// Conn is the connection to a device.
type Conn interface {
	// DoCommand executes a command.
	DoCommand(fx.Message) CommandFuture
}

// Result represents result of a command.
type Result struct {
	Msg fx.Message
	Err error
}

// CommandFuture is the future of sent command.
type CommandFuture interface {
	ResultChan() <-chan Result
}
