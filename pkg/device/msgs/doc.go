// Package msgs provides the device protocol and all message schemas.
//
// The device protocol is communicated between a running blinker and its
// clients (CLI, monitors), and carries protobuf encoded messages inside a
// Typed envelope. A type ID tells the kind (command or event), the group
// and whether a command message is a reply.
//
// Producer: device
// Consumer: clients
package msgs
