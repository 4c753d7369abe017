// Package sim models the simulated objects that are visualized while the
// device runs on the simulated MCU.
package sim

import (
	fx "github.com/robotalks/blink.go/pkg/framework"
	"github.com/robotalks/blink.go/pkg/hal"
)

// Pos2D defines the position in 2D.
type Pos2D struct {
	X, Y float64
}

// Positionable2D object maintains a 2D position.
type Positionable2D interface {
	Position2D() Pos2D
}

// Object represents an object in the world.
type Object interface {
	fx.Named
}

// ObjectsChangeListener listens for object changes.
type ObjectsChangeListener interface {
	ObjectsChanged(fx.ControlContext, ...Object)
	ObjectsRemoved(fx.ControlContext, ...Object)
}

// ObjectsChangeSubscriber subscribes objects change notifications.
type ObjectsChangeSubscriber interface {
	SubscribeObjectsChange(ObjectsChangeListener)
}

// LED is a light wired to an output pin, lit when the pin is HIGH.
type LED struct {
	ID     string
	Pin    hal.PinID
	Level  hal.Level
	Pos    Pos2D
	Radius float64
}

// NewLED creates an LED named after the pin.
func NewLED(pin hal.PinID) *LED {
	return &LED{ID: "led/" + pin.String(), Pin: pin, Radius: 20}
}

// Name implements Object.
func (l *LED) Name() string {
	return l.ID
}

// Position2D implements Positionable2D.
func (l *LED) Position2D() Pos2D {
	return l.Pos
}

// Lit indicates the LED is on.
func (l *LED) Lit() bool {
	return l.Level == hal.High
}

// Add is a helper to add Pos2D.
func (p Pos2D) Add(p1 Pos2D) Pos2D {
	return Pos2D{X: p.X + p1.X, Y: p.Y + p1.Y}
}
