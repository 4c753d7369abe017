package websocket

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/robotalks/blink.go/pkg/device/comm"
	fx "github.com/robotalks/blink.go/pkg/framework"
)

// DefaultPath is the HTTP path serving websocket clients.
const DefaultPath = "/ws"

// Registrar implements device.Registrar by serving websocket clients.
// Every client receives all events and may send commands.
type Registrar struct {
	Addr     string
	Path     string
	Listener net.Listener

	ctx   context.Context
	conns map[*comm.Registrar]struct{}
	lock  sync.RWMutex
}

// NewRegistrar creates a Registrar listening on addr.
func NewRegistrar(addr string) *Registrar {
	return &Registrar{Addr: addr, Path: DefaultPath}
}

// SendEvent implements Registrar.
func (r *Registrar) SendEvent(ctx context.Context, msg fx.Message) error {
	r.lock.RLock()
	regs := make([]*comm.Registrar, 0, len(r.conns))
	for reg := range r.conns {
		regs = append(regs, reg)
	}
	r.lock.RUnlock()
	var errs fx.AggregatedError
	for _, reg := range regs {
		errs.Add(reg.SendEvent(ctx, msg))
	}
	return errs.Aggregate()
}

// Len is the number of connected clients.
func (r *Registrar) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.conns)
}

// AddToLoop implements LoopAdder.
func (r *Registrar) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(r)
}

// Handler serves websocket clients. It must be used after Run starts.
func (r *Registrar) Handler() http.Handler {
	return websocket.Handler(r.serveConn)
}

// Name implements Named.
func (r *Registrar) Name() string {
	return "websocket"
}

// Run implements Runnable.
func (r *Registrar) Run(ctx context.Context) error {
	r.lock.Lock()
	r.ctx = ctx
	r.lock.Unlock()

	ln := r.Listener
	if ln == nil {
		var err error
		if ln, err = net.Listen("tcp", r.Addr); err != nil {
			return err
		}
	}
	path := r.Path
	if path == "" {
		path = DefaultPath
	}
	mux := http.NewServeMux()
	mux.Handle(path, r.Handler())
	server := &http.Server{Handler: mux}
	go func() {
		<-ctx.Done()
		server.Close()
	}()
	glog.Infof("websocket serving on %s%s", ln.Addr(), path)
	if err := server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

func (r *Registrar) serveConn(conn *websocket.Conn) {
	r.lock.Lock()
	ctx := r.ctx
	if ctx == nil {
		r.lock.Unlock()
		conn.Close()
		return
	}
	reg := comm.NewRegistrar(New(conn))
	if r.conns == nil {
		r.conns = make(map[*comm.Registrar]struct{})
	}
	r.conns[reg] = struct{}{}
	r.lock.Unlock()

	glog.V(2).Infof("websocket client %s connected", conn.Request().RemoteAddr)
	err := reg.Serve(ctx)

	r.lock.Lock()
	delete(r.conns, reg)
	r.lock.Unlock()
	glog.V(2).Infof("websocket client %s disconnected: %v", conn.Request().RemoteAddr, err)
}
