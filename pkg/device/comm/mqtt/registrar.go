package mqtt

import (
	"context"
	"encoding/json"

	"github.com/golang/glog"

	"github.com/robotalks/blink.go/pkg/device"
	"github.com/robotalks/blink.go/pkg/device/comm"
	fx "github.com/robotalks/blink.go/pkg/framework"
)

// metaQoS is used for the retained meta message and its will.
const metaQoS = 1

// Registrar implements device.Registrar on an MQTT broker. Info is
// retained on <type>/<id>/meta while the device is online, the will
// message and shutdown clear it.
type Registrar struct {
	Queue *Queue
	Info  device.Info

	meta []byte
	comm comm.Registrar
}

// NewRegistrar creates a Registrar for info on brokerURL.
func NewRegistrar(brokerURL string, info device.Info) (*Registrar, error) {
	meta, err := json.Marshal(&info.Meta)
	if err != nil {
		return nil, err
	}
	opts, prefix, qos, err := parseURL(brokerURL)
	if err != nil {
		return nil, err
	}
	metaTopic := DeviceTopic(info.Ref, TopicMeta)
	opts.SetBinaryWill(prefix+metaTopic, nil, metaQoS, true)
	if opts.ClientID == "" {
		opts.SetClientID("blink:" + info.Ref.Name())
	}
	r := &Registrar{Queue: NewQueue(opts, prefix), Info: info, meta: meta}
	r.Queue.QoS = qos
	r.Queue.OnConnect = r.publishMeta
	r.comm.Init(NewPacketReadWriter(r.Queue).ForDevice(info.Ref))
	return r, nil
}

func (r *Registrar) publishMeta(q *Queue) {
	glog.Infof("%s online", r.Info.Ref.Name())
	q.PubWith(DeviceTopic(r.Info.Ref, TopicMeta), r.meta, metaQoS, true)
}

// SendEvent implements device.Registrar.
func (r *Registrar) SendEvent(ctx context.Context, msg fx.Message) error {
	return r.comm.SendEvent(ctx, msg)
}

// AddToLoop implements LoopAdder.
func (r *Registrar) AddToLoop(loop *fx.Loop) {
	loop.Add(&r.comm).AddRunnable(r)
}

// Name implements Named.
func (r *Registrar) Name() string {
	return "mqtt"
}

// Run implements Runnable. It keeps the connection until ctx is done.
func (r *Registrar) Run(ctx context.Context) error {
	r.Queue.Connect()
	<-ctx.Done()
	r.Queue.PubWith(DeviceTopic(r.Info.Ref, TopicMeta), nil, metaQoS, true).Wait()
	glog.Infof("%s offline", r.Info.Ref.Name())
	return r.Queue.Close()
}
