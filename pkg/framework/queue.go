package framework

import "sync"

// inbox collects messages posted from any goroutine until the next
// iteration drains them.
type inbox struct {
	lock sync.Mutex
	msgs []Message
}

func (b *inbox) post(msg Message) {
	b.lock.Lock()
	b.msgs = append(b.msgs, msg)
	b.lock.Unlock()
}

func (b *inbox) drain() []Message {
	b.lock.Lock()
	defer b.lock.Unlock()
	msgs := b.msgs
	b.msgs = nil
	return msgs
}

// pendingMessages is the MessageStore of a single iteration. It is only
// accessed from the loop goroutine.
type pendingMessages struct {
	msgs []Message
}

func (p *pendingMessages) AddMessages(msgs ...Message) {
	p.msgs = append(p.msgs, msgs...)
}

// ProcessMessages visits messages in order. Messages added during
// processing are queued after the remaining ones and are not visited in
// this pass.
func (p *pendingMessages) ProcessMessages(proc MessageProcessor) {
	visiting := p.msgs
	p.msgs = nil
	remains := make([]Message, 0, len(visiting))
	for n, msg := range visiting {
		mctx := &messageContext{store: p, msg: msg}
		proc.ProcessMessage(mctx)
		if !mctx.taken {
			remains = append(remains, msg)
		}
		if mctx.stop {
			remains = append(remains, visiting[n+1:]...)
			break
		}
	}
	p.msgs = append(remains, p.msgs...)
}

type messageContext struct {
	store *pendingMessages
	msg   Message
	taken bool
	stop  bool
}

func (c *messageContext) CurrentMessage() Message     { return c.msg }
func (c *messageContext) MessageTaken()               { c.taken = true }
func (c *messageContext) StopProcessing()             { c.stop = true }
func (c *messageContext) AddMessages(msgs ...Message) { c.store.AddMessages(msgs...) }
