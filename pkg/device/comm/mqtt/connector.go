package mqtt

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/blink.go/pkg/device"
	"github.com/robotalks/blink.go/pkg/device/comm"
)

// DefaultDiscoverTimeout is how long Discover collects retained metadata.
const DefaultDiscoverTimeout = 500 * time.Millisecond

// Connector implements device.Connector on an MQTT broker. Devices are
// discovered from their retained <type>/<id>/meta messages.
type Connector struct {
	DiscoverTimeout time.Duration

	brokerURL string
}

// NewConnector validates brokerURL and creates a Connector.
func NewConnector(brokerURL string) (*Connector, error) {
	if _, _, _, err := parseURL(brokerURL); err != nil {
		return nil, err
	}
	return &Connector{DiscoverTimeout: DefaultDiscoverTimeout, brokerURL: brokerURL}, nil
}

func (c *Connector) newQueue() *Queue {
	// brokerURL is validated by NewConnector.
	q, _ := NewQueueFromURL(c.brokerURL)
	return q
}

// ParseMeta extracts device Info from a meta message. Empty payload
// means the device has unregistered.
func ParseMeta(topic string, payload []byte) (info device.Info, ok bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[2] != TopicMeta || len(payload) == 0 {
		return info, false
	}
	info.Ref = device.Ref{Type: parts[0], ID: parts[1]}
	if err := json.Unmarshal(payload, &info.Meta); err != nil {
		glog.Warningf("ignore malformed meta of %s: %v", info.Ref.Name(), err)
	}
	return info, info.Ref.IsValid()
}

// Discover implements device.Connector. A device is reported once even
// if its metadata is received several times.
func (c *Connector) Discover(ctx context.Context) ([]device.Info, error) {
	q := c.newQueue()
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	defer q.Close()

	infoCh := make(chan device.Info, 16)
	sub := q.Sub("+/+/"+TopicMeta, Handler(func(topic string, payload []byte) {
		if info, ok := ParseMeta(topic, payload); ok {
			select {
			case infoCh <- info:
			case <-ctx.Done():
			}
		}
	}))
	defer sub.Close()

	timeout := c.DiscoverTimeout
	if timeout <= 0 {
		timeout = DefaultDiscoverTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var found []device.Info
	seen := make(map[device.Ref]int)
	for {
		select {
		case info := <-infoCh:
			if n, ok := seen[info.Ref]; ok {
				found[n] = info
				continue
			}
			seen[info.Ref] = len(found)
			found = append(found, info)
		case <-timer.C:
			return found, nil
		case <-ctx.Done():
			return found, ctx.Err()
		}
	}
}

// Connect implements device.Connector.
func (c *Connector) Connect(ctx context.Context, ref device.Ref) (device.Conn, error) {
	conn := &DeviceConn{Queue: c.newQueue()}
	conn.Init(NewPacketReadWriter(conn.Queue).ForConnector(ref))
	token := conn.Queue.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, err
	}
	return conn, nil
}

// DeviceConn is a comm.DeviceConn over MQTT topics of a device.
type DeviceConn struct {
	comm.DeviceConn
	Queue *Queue
}

// Close disconnects from the broker.
func (c *DeviceConn) Close() error {
	return c.Queue.Close()
}
