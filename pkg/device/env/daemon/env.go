// Package daemon sets up the registrars a device process exposes itself
// through.
package daemon

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang/glog"

	"github.com/robotalks/blink.go/pkg/device"
	"github.com/robotalks/blink.go/pkg/device/comm"
	"github.com/robotalks/blink.go/pkg/device/comm/mqtt"
	"github.com/robotalks/blink.go/pkg/device/comm/serial"
	"github.com/robotalks/blink.go/pkg/device/comm/websocket"
	"github.com/robotalks/blink.go/pkg/device/env"
	fx "github.com/robotalks/blink.go/pkg/framework"
)

// Config provides common options to setup an env for a device process.
type Config struct {
	Info device.Info

	// MQTTBrokerURL specifies the MQTT broker to use.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string
	// ListenAddr enables the websocket registrar when not empty.
	ListenAddr string
	// Serial enables the serial registrar when Serial.Port is not empty.
	Serial serial.Config
}

var defaultConfig = Config{
	MQTTBrokerURL: "mqtt://localhost:1883/blink/",
	Serial:        serial.Config{BaudRate: serial.DefaultBaudRate},
}

func init() {
	if val := os.Getenv("BLINK_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("BLINK_LISTEN"); val != "" {
		defaultConfig.ListenAddr = val
	}
	if val := os.Getenv("BLINK_ID"); val != "" {
		defaultConfig.Info.Ref.ID = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Info.Ref.Type, "type", defaultConfig.Info.Ref.Type, "Device type")
	flag.StringVar(&defaultConfig.Info.Ref.ID, "id", defaultConfig.Info.Ref.ID, "Device ID, machine ID if empty")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL, empty to disable")
	flag.StringVar(&defaultConfig.ListenAddr, "listen", defaultConfig.ListenAddr, "Websocket listen address, e.g. :8080")
	flag.StringVar(&defaultConfig.Serial.Port, "serial", defaultConfig.Serial.Port, "Serial port device, e.g. /dev/ttyUSB0")
	flag.IntVar(&defaultConfig.Serial.BaudRate, "baud", defaultConfig.Serial.BaudRate, "Serial port baud rate")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// SetDeviceType should be called in init with basic info about the device.
func SetDeviceType(typ string, meta device.Meta) {
	defaultConfig.Info.Ref.Type = typ
	defaultConfig.Info.Meta = meta
}

// Env is the env for a device process.
type Env struct {
	Config       *Config
	RegistryURLs []string
	Registrar    *comm.RegistrarMux
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewEnv creates Env from config. An Env without any registrar is valid,
// events are simply dropped.
func (c *Config) NewEnv() (*Env, error) {
	if c.Info.Ref.ID == "" {
		c.Info.Ref.ID = env.MachineID()
	}
	if !c.Info.Ref.IsValid() {
		return nil, fmt.Errorf("device type and id must be specified")
	}
	e := &Env{
		Config:    c,
		Registrar: &comm.RegistrarMux{},
	}
	if c.MQTTBrokerURL != "" {
		reg, err := mqtt.NewRegistrar(c.MQTTBrokerURL, c.Info)
		if err != nil {
			return nil, fmt.Errorf("create MQTT registrar error: %v", err)
		}
		e.Registrar.Add(reg)
		e.RegistryURLs = append(e.RegistryURLs, c.MQTTBrokerURL)
	}
	if c.ListenAddr != "" {
		reg := websocket.NewRegistrar(c.ListenAddr)
		e.Registrar.Add(reg)
		e.RegistryURLs = append(e.RegistryURLs, "ws://"+c.ListenAddr+reg.Path)
	}
	if c.Serial.Port != "" {
		reg, err := c.Serial.Open()
		if err != nil {
			return nil, err
		}
		e.Registrar.Add(reg)
		e.RegistryURLs = append(e.RegistryURLs, "serial://"+c.Serial.Port)
	}
	if e.Registrar.Len() == 0 {
		glog.Warning("no registrar configured, device is not reachable")
	}
	return e, nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv() *Env {
	e, err := c.NewEnv()
	if err != nil {
		log.Fatalln(err)
	}
	return e
}

// AddToLoop adds controllers/runners to loop.
func (e *Env) AddToLoop(loop *fx.Loop) {
	loop.Add(e.Registrar)
	loop.Add(&comm.UnsupportedCommands{})
}
