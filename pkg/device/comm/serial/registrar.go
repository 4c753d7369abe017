// Package serial registers a device over a serial port, with packets
// framed by the stream package.
package serial

import (
	"fmt"

	"github.com/golang/glog"
	"go.bug.st/serial"

	"github.com/robotalks/blink.go/pkg/device/comm"
	"github.com/robotalks/blink.go/pkg/device/comm/stream"
)

// DefaultBaudRate is used when BaudRate is not specified.
const DefaultBaudRate = 115200

// Config defines the serial port settings.
type Config struct {
	Port     string
	BaudRate int
}

// Registrar implements device.Registrar over a serial port.
type Registrar struct {
	comm.Registrar
	Port serial.Port
}

// Open opens the serial port and creates the Registrar.
func (c Config) Open() (*Registrar, error) {
	baud := c.BaudRate
	if baud == 0 {
		baud = DefaultBaudRate
	}
	port, err := serial.Open(c.Port, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s error: %v", c.Port, err)
	}
	glog.Infof("serial port %s opened at %d baud", c.Port, baud)
	return NewRegistrar(port), nil
}

// NewRegistrar creates a Registrar over an opened port.
func NewRegistrar(port serial.Port) *Registrar {
	r := &Registrar{Port: port}
	r.Registrar.Init(stream.New(port))
	return r
}

// Ports lists available serial ports.
func Ports() ([]string, error) {
	return serial.GetPortsList()
}
