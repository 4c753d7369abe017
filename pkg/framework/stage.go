package framework

import (
	"sync"

	"github.com/golang/glog"
)

// stage holds the controllers of one priority level. Hooks are one-shot
// and may be installed from any goroutine.
type stage struct {
	controllers []Controller

	hookLock sync.Mutex
	pre      []Controller
	post     []Controller
}

func (s *stage) addHooks(post bool, hooks []Controller) {
	s.hookLock.Lock()
	defer s.hookLock.Unlock()
	if post {
		s.post = append(s.post, hooks...)
	} else {
		s.pre = append(s.pre, hooks...)
	}
}

func (s *stage) takeHooks(post bool) (hooks []Controller) {
	s.hookLock.Lock()
	defer s.hookLock.Unlock()
	if post {
		hooks, s.post = s.post, nil
	} else {
		hooks, s.pre = s.pre, nil
	}
	return
}

func (s *stage) run(cc ControlContext) {
	invoke(cc, s.takeHooks(false))
	invoke(cc, s.controllers)
	invoke(cc, s.takeHooks(true))
}

func invoke(cc ControlContext, ctls []Controller) {
	for _, ctl := range ctls {
		err := ctl.Control(cc)
		if err == nil {
			continue
		}
		name := "anonymous"
		if named, ok := ctl.(Named); ok {
			name = named.Name()
		}
		glog.Errorf("[%s] controller %s: %v", cc.PriorityLevel(), name, err)
	}
}
