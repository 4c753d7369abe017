package see

import (
	"strings"

	"github.com/robotalks/blink.go/pkg/sim"
)

// Message is one instruction to the viewer.
type Message struct {
	Action   string `json:"action"`
	Object   Object `json:"object,omitempty"`
	RemoveID string `json:"id,omitempty"`
}

// Viewer actions.
const (
	ActionReset  = "reset"
	ActionObject = "object"
	ActionRemove = "remove"
)

// Well-known object properties.
const (
	PropID     = "id"
	PropType   = "type"
	PropOrigin = "origin"
	PropRadius = "radius"
	PropStyle  = "style"
	PropStyles = "styles"
)

// Object is the viewer's property bag of an object.
type Object map[string]interface{}

// Pos is the origin property.
type Pos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewObject creates an Object with type and ID set.
func NewObject(typ, id string) Object {
	return Object{PropID: id, PropType: typ}
}

// ObjectID turns a simulated object name into a viewer ID, which can't
// contain "/".
func ObjectID(name string) string {
	return strings.ReplaceAll(name, "/", ".")
}

// With sets a property.
func (o Object) With(key string, val interface{}) Object {
	o[key] = val
	return o
}

// At sets the origin.
func (o Object) At(x, y float64) Object {
	return o.With(PropOrigin, &Pos{X: x, Y: y})
}

// Radius sets the radius.
func (o Object) Radius(r float64) Object {
	return o.With(PropRadius, r)
}

// VisibleObject has a position to be drawn at.
type VisibleObject interface {
	sim.Object
	sim.Positionable2D
}

// ObjectFrom starts an Object of typ at the position of vo.
func ObjectFrom(typ string, vo VisibleObject) Object {
	pos := vo.Position2D()
	return NewObject(typ, ObjectID(vo.Name())).At(pos.X, pos.Y)
}

// ObjectMapper turns a simulated object into viewer objects. Objects it
// doesn't know map to nothing.
type ObjectMapper interface {
	MapObject(VisibleObject) []Object
}

// MapObjectFunc is the func form of ObjectMapper.
type MapObjectFunc func(VisibleObject) []Object

// MapObject implements ObjectMapper.
func (f MapObjectFunc) MapObject(vo VisibleObject) []Object {
	return f(vo)
}

// Styles of an LED.
const (
	StyleLit   = "lit"
	StyleUnlit = "unlit"
)

// MapLED draws a sim.LED as a circle styled by its level.
func MapLED(vo VisibleObject) []Object {
	led, ok := vo.(*sim.LED)
	if !ok {
		return nil
	}
	style := StyleUnlit
	if led.Lit() {
		style = StyleLit
	}
	obj := ObjectFrom("led", led).Radius(led.Radius)
	return []Object{obj.With(PropStyle, style).With("pin", led.Pin.String())}
}
