// Package comm carries typed messages over packet streams. A Registrar is
// the device side and a DeviceConn the client side of the same Pipe.
package comm

import "errors"

var (
	// ErrNotCommand is returned when sending an event as a command.
	ErrNotCommand = errors.New("message is not a command")
	// ErrNotEvent is returned when sending a command as an event.
	ErrNotEvent = errors.New("message is not an event")
)

// PacketReadWriter moves whole packets. ReadPacket returns io.EOF once
// the peer is gone. WritePacket may be called concurrently with
// ReadPacket but not with itself.
type PacketReadWriter interface {
	ReadPacket() ([]byte, error)
	WritePacket([]byte) error
}
