// blinkmon prints every message published under the MQTT topic prefix
// until interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"reflect"
	"strings"

	"github.com/robotalks/blink.go/pkg/device/comm/mqtt"
	"github.com/robotalks/blink.go/pkg/device/msgs"
	fx "github.com/robotalks/blink.go/pkg/framework"
)

var (
	brokerURL = "mqtt://localhost:1883/blink/"
	topic     = "#"
)

func init() {
	if val := os.Getenv("BLINK_MQTT_URL"); val != "" {
		brokerURL = val
	}
	flag.StringVar(&brokerURL, "mqtt", brokerURL, "MQTT broker URL")
	flag.StringVar(&topic, "topic", topic, "Topic filter under the prefix")
}

func describe(topic string, payload []byte) string {
	if strings.HasSuffix(topic, "/"+mqtt.TopicMeta) {
		if len(payload) == 0 {
			return "gone"
		}
		return string(payload)
	}
	typed, err := msgs.DecodeTyped(payload)
	if err != nil {
		return fmt.Sprintf("malformed: %v", err)
	}
	msg, err := typed.Decode()
	if err != nil {
		return fmt.Sprintf("type %08x: %v", typed.TypeId, err)
	}
	name := reflect.Indirect(reflect.ValueOf(msg)).Type().Name()
	text := msg.(msgs.SerializableMessage).Serializable().String()
	return fmt.Sprintf("[%s] seq=%d %s", name, typed.Sequence, text)
}

type monitor struct {
	queue *mqtt.Queue
}

func (m *monitor) Run(ctx context.Context) error {
	token := m.queue.Connect()
	if token.Wait(); token.Error() != nil {
		return token.Error()
	}
	defer m.queue.Close()
	sub := m.queue.Sub(topic, mqtt.Handler(func(topic string, payload []byte) {
		log.Printf("%s: %s", topic, describe(topic, payload))
	}))
	defer sub.Close()
	<-ctx.Done()
	return ctx.Err()
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(brokerURL)
	if err != nil {
		log.Fatalln(err)
	}
	if err := fx.NewRunner().HandleSignals().Go(&monitor{queue: q}).Wait(); err != nil {
		log.Fatalln(err)
	}
}
