// Package connector configures clients connecting to blinkers through a
// registry.
package connector

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"

	"github.com/robotalks/blink.go/pkg/device"
	"github.com/robotalks/blink.go/pkg/device/comm/mqtt"
)

// Defaults
const (
	DefaultDeviceType  = "blinker"
	DefaultRegistryURL = "mqtt://localhost:1883/blink/"
)

// ErrIncompleteRef is returned by Connect without both type and ID.
var ErrIncompleteRef = errors.New("device type and id must be specified")

// Config selects the registry and optionally the device to connect.
type Config struct {
	Ref device.Ref
	// RegistryURL is the registry location, e.g. mqtt://host:port/prefix/.
	RegistryURL string
}

// connectorFactories are keyed by registry URL scheme.
var connectorFactories = map[string]func(string) (device.Connector, error){}

func init() {
	newMQTT := func(u string) (device.Connector, error) { return mqtt.NewConnector(u) }
	for _, scheme := range []string{"mqtt", "mqtts", "tcp", "ssl", "tls"} {
		connectorFactories[scheme] = newMQTT
	}
}

var defaultConfig = Config{
	Ref:         device.Ref{Type: DefaultDeviceType},
	RegistryURL: DefaultRegistryURL,
}

func init() {
	for name, val := range map[string]*string{
		"BLINK_TYPE":         &defaultConfig.Ref.Type,
		"BLINK_ID":           &defaultConfig.Ref.ID,
		"BLINK_REGISTRY_URL": &defaultConfig.RegistryURL,
	} {
		if s := os.Getenv(name); s != "" {
			*val = s
		}
	}
}

// SetupFlags binds flags to the defaults.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Ref.Type, "device-type", defaultConfig.Ref.Type, "Type of the device to connect")
	flag.StringVar(&defaultConfig.Ref.ID, "device-id", defaultConfig.Ref.ID, "ID of the device to connect")
	flag.StringVar(&defaultConfig.RegistryURL, "registry", defaultConfig.RegistryURL, "Registry URL")
}

// Default returns the config flags are bound to.
func Default() *Config {
	return &defaultConfig
}

// NewConfig copies the defaults.
func NewConfig() *Config {
	c := defaultConfig
	return &c
}

// NewConnector creates the Connector for RegistryURL.
func (c *Config) NewConnector() (device.Connector, error) {
	u, err := url.Parse(c.RegistryURL)
	if err != nil {
		return nil, fmt.Errorf("registry URL: %w", err)
	}
	factory, ok := connectorFactories[u.Scheme]
	if !ok {
		return nil, fmt.Errorf("registry URL: unsupported scheme %q", u.Scheme)
	}
	return factory(c.RegistryURL)
}

// Connect connects the device in Ref without discovery.
func (c *Config) Connect(ctx context.Context) (device.Conn, error) {
	if !c.Ref.IsValid() {
		return nil, ErrIncompleteRef
	}
	connector, err := c.NewConnector()
	if err != nil {
		return nil, err
	}
	return connector.Connect(ctx, c.Ref)
}
