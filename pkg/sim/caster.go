package sim

import (
	"sync"

	fx "github.com/robotalks/blink.go/pkg/framework"
)

// ObjectsChangeCaster forwards notifications to every subscribed
// listener. Embed it to implement ObjectsChangeSubscriber.
type ObjectsChangeCaster struct {
	lock      sync.RWMutex
	listeners []ObjectsChangeListener
}

// SubscribeObjectsChange implements ObjectsChangeSubscriber.
func (c *ObjectsChangeCaster) SubscribeObjectsChange(ln ObjectsChangeListener) {
	c.lock.Lock()
	c.listeners = append(c.listeners, ln)
	c.lock.Unlock()
}

// UnsubscribeObjectsChange removes a listener added before.
func (c *ObjectsChangeCaster) UnsubscribeObjectsChange(ln ObjectsChangeListener) {
	c.lock.Lock()
	defer c.lock.Unlock()
	for n, l := range c.listeners {
		if l == ln {
			c.listeners = append(c.listeners[:n:n], c.listeners[n+1:]...)
			return
		}
	}
}

func (c *ObjectsChangeCaster) each(fn func(ObjectsChangeListener)) {
	c.lock.RLock()
	listeners := c.listeners
	c.lock.RUnlock()
	for _, ln := range listeners {
		fn(ln)
	}
}

// ObjectsChanged implements ObjectsChangeListener.
func (c *ObjectsChangeCaster) ObjectsChanged(cc fx.ControlContext, objs ...Object) {
	c.each(func(ln ObjectsChangeListener) { ln.ObjectsChanged(cc, objs...) })
}

// ObjectsRemoved implements ObjectsChangeListener.
func (c *ObjectsChangeCaster) ObjectsRemoved(cc fx.ControlContext, objs ...Object) {
	c.each(func(ln ObjectsChangeListener) { ln.ObjectsRemoved(cc, objs...) })
}
