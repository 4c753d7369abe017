package sim

import (
	"testing"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/blink.go/pkg/framework"
	"github.com/robotalks/blink.go/pkg/hal"
)

type recordingListener struct {
	changed []string
	removed []string
}

func (l *recordingListener) ObjectsChanged(cc fx.ControlContext, objs ...Object) {
	for _, obj := range objs {
		l.changed = append(l.changed, obj.Name())
	}
}

func (l *recordingListener) ObjectsRemoved(cc fx.ControlContext, objs ...Object) {
	for _, obj := range objs {
		l.removed = append(l.removed, obj.Name())
	}
}

func TestObjectsChangeCaster(t *testing.T) {
	var caster ObjectsChangeCaster
	ln1, ln2 := &recordingListener{}, &recordingListener{}
	caster.SubscribeObjectsChange(ln1)
	caster.SubscribeObjectsChange(ln2)

	led := NewLED(hal.MustParsePin("PA5"))
	caster.ObjectsChanged(nil, led)
	caster.ObjectsRemoved(nil, led)
	for _, ln := range []*recordingListener{ln1, ln2} {
		require.Equal(t, []string{"led/PA5"}, ln.changed)
		require.Equal(t, []string{"led/PA5"}, ln.removed)
	}
}

func TestLED(t *testing.T) {
	led := NewLED(hal.MustParsePin("PC13"))
	require.False(t, led.Lit())
	led.Level = hal.High
	require.True(t, led.Lit())
	led.Pos = Pos2D{X: 1}.Add(Pos2D{Y: 2})
	require.Equal(t, Pos2D{X: 1, Y: 2}, led.Position2D())
}

func TestUnsubscribeObjectsChange(t *testing.T) {
	var caster ObjectsChangeCaster
	ln1, ln2 := &recordingListener{}, &recordingListener{}
	caster.SubscribeObjectsChange(ln1)
	caster.SubscribeObjectsChange(ln2)
	caster.UnsubscribeObjectsChange(ln1)
	caster.UnsubscribeObjectsChange(&recordingListener{})

	caster.ObjectsChanged(nil, NewLED(hal.MustParsePin("PB0")))
	require.Empty(t, ln1.changed)
	require.Equal(t, []string{"led/PB0"}, ln2.changed)
}
