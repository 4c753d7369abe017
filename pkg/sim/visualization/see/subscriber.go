// Package see streams simulated objects as JSON lines understood by
// github.com/robotalks/see.
package see

import (
	"encoding/json"
	"io"
	"os"
	"sort"

	fx "github.com/robotalks/blink.go/pkg/framework"
	"github.com/robotalks/blink.go/pkg/sim"
)

// Adapter collects object changes during an iteration and writes them
// out at PrLvPostProc. The first report resets the viewer.
type Adapter struct {
	Config *Config
	Mapper ObjectMapper
	// Output receives encoded messages, os.Stdout if nil.
	Output io.Writer

	reported bool
	changes  map[string]sim.Object
	// removed objects keep a nil entry in changes.
}

// NewAdapter creates the adapter.
func NewAdapter(config *Config) *Adapter {
	return &Adapter{
		Config: config,
		Mapper: MapObjectFunc(MapLED),
	}
}

// Subscribe registers a to sub and returns a.
func (a *Adapter) Subscribe(sub sim.ObjectsChangeSubscriber) *Adapter {
	sub.SubscribeObjectsChange(a)
	return a
}

func (a *Adapter) record(obj sim.Object, removed bool) {
	if a.changes == nil {
		a.changes = make(map[string]sim.Object)
	}
	if removed {
		a.changes[obj.Name()] = nil
	} else {
		a.changes[obj.Name()] = obj
	}
}

// ObjectsChanged implements ObjectsChangeListener.
func (a *Adapter) ObjectsChanged(cc fx.ControlContext, objs ...sim.Object) {
	for _, obj := range objs {
		a.record(obj, false)
	}
}

// ObjectsRemoved implements ObjectsChangeListener.
func (a *Adapter) ObjectsRemoved(cc fx.ControlContext, objs ...sim.Object) {
	for _, obj := range objs {
		a.record(obj, true)
	}
}

// AddToLoop implements LoopAdder.
func (a *Adapter) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvPostProc, fx.ControlFunc(a.ReportChanges))
}

func (a *Adapter) pendingMessages() []Message {
	var msgs []Message
	if !a.reported {
		msgs = append(msgs, Message{Action: ActionReset})
		for _, corner := range a.Config.cornerObjects() {
			msgs = append(msgs, Message{Action: ActionObject, Object: corner})
		}
	}
	names := make([]string, 0, len(a.changes))
	for name := range a.changes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		obj := a.changes[name]
		if obj == nil {
			if a.reported {
				msgs = append(msgs, Message{Action: ActionRemove, RemoveID: ObjectID(name)})
			}
			continue
		}
		vo, ok := obj.(VisibleObject)
		if !ok {
			continue
		}
		for _, mapped := range a.Mapper.MapObject(vo) {
			if mapped != nil {
				msgs = append(msgs, Message{Action: ActionObject, Object: mapped})
			}
		}
	}
	return msgs
}

// ReportChanges writes what changed since the last report as a single
// JSON array line. Nothing is written when nothing changed.
func (a *Adapter) ReportChanges(cc fx.ControlContext) error {
	msgs := a.pendingMessages()
	a.reported, a.changes = true, nil
	if len(msgs) == 0 {
		return nil
	}
	out := a.Output
	if out == nil {
		out = os.Stdout
	}
	return json.NewEncoder(out).Encode(msgs)
}
