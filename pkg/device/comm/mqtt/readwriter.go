package mqtt

import (
	"context"
	"io"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/blink.go/pkg/device"
)

// DefaultDeliverTimeout limits how long a received packet waits for the
// reader before being dropped.
const DefaultDeliverTimeout = time.Second

// ReadWriter implements PacketReadWriter.
type ReadWriter struct {
	Queue    *Queue
	SubTopic string
	PubTopic string

	packetCh chan []byte
	// done is closed when Run returns, packets arriving later are dropped.
	done chan struct{}
}

// NewPacketReadWriter creates the ReadWriter.
func NewPacketReadWriter(q *Queue) *ReadWriter {
	return &ReadWriter{
		Queue:    q,
		packetCh: make(chan []byte, 1),
		done:     make(chan struct{}),
	}
}

// WithTopics specifies the topics.
func (p *ReadWriter) WithTopics(sub, pub string) *ReadWriter {
	p.SubTopic, p.PubTopic = sub, pub
	return p
}

// Topic suffixes under <type>/<id>/.
const (
	TopicMeta = "meta"
	TopicCmd  = "cmd"
	TopicMsg  = "msg"
)

// DeviceTopic builds the topic of a device.
func DeviceTopic(ref device.Ref, suffix string) string {
	return ref.Name() + "/" + suffix
}

// ForConnector sets topics using default convention for clients:
// SubTopic = <type>/<id>/msg
// PubTopic = <type>/<id>/cmd
func (p *ReadWriter) ForConnector(ref device.Ref) *ReadWriter {
	return p.WithTopics(DeviceTopic(ref, TopicMsg), DeviceTopic(ref, TopicCmd))
}

// ForDevice sets topics using default convention for devices:
// SubTopic = <type>/<id>/cmd
// PubTopic = <type>/<id>/msg
func (p *ReadWriter) ForDevice(ref device.Ref) *ReadWriter {
	return p.WithTopics(DeviceTopic(ref, TopicCmd), DeviceTopic(ref, TopicMsg))
}

// ReadPacket implements comm.PacketReadWriter.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-p.packetCh:
		return pkt, nil
	case <-p.done:
		return nil, io.EOF
	}
}

// WritePacket implements comm.PacketReadWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	token := p.Queue.Pub(p.PubTopic, pkt)
	token.Wait()
	return token.Error()
}

// Run implements Runnable.
func (p *ReadWriter) Run(ctx context.Context) error {
	sub := p.Queue.Sub(p.SubTopic, Handler(p.handleMsg))
	<-ctx.Done()
	sub.Close()
	close(p.done)
	return ctx.Err()
}

func (p *ReadWriter) handleMsg(topic string, payload []byte) {
	select {
	case <-p.done:
		glog.V(2).Infof("drop packet from %q: stopped", topic)
		return
	default:
	}
	select {
	case p.packetCh <- payload:
	case <-p.done:
		glog.V(2).Infof("drop packet from %q: stopped", topic)
	case <-time.After(DefaultDeliverTimeout):
		glog.Warningf("drop packet from %q: receiver busy", topic)
	}
}
