package msgs

import (
	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/blink.go/pkg/framework"
)

// CommandOK is the generic reply indicating success for commands.
type CommandOK struct {
}

// NewCommandOK creates a CommandOK.
func NewCommandOK() *CommandOK {
	return &CommandOK{}
}

// NewMessage implements Message.
func (m *CommandOK) NewMessage() fx.Message { return &CommandOK{} }

// TypeID implements SerializableMessage.
func (m *CommandOK) TypeID() uint32 { return CommandOKTypeID }

// Serializable implements SerializableMessage.
func (m *CommandOK) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *CommandOK) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CommandOK) Reset() { *m = CommandOK{} }

// String implements proto.Message.
func (m *CommandOK) String() string { return proto.CompactTextString(m) }

// CommandErr is the generic message representing command error.
type CommandErr struct {
	Message string `protobuf:"bytes,1,opt,name=message,proto3" json:"message,omitempty"`
}

// NewCommandErr creates a CommandErr from an error.
func NewCommandErr(err error) *CommandErr {
	return NewCommandErrFromMsg(err.Error())
}

// NewCommandErrFromMsg creates a CommandErr.
func NewCommandErrFromMsg(message string) *CommandErr {
	return &CommandErr{Message: message}
}

// NewMessage implements Message.
func (m *CommandErr) NewMessage() fx.Message { return &CommandErr{} }

// TypeID implements SerializableMessage.
func (m *CommandErr) TypeID() uint32 { return CommandErrTypeID }

// Serializable implements SerializableMessage.
func (m *CommandErr) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *CommandErr) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CommandErr) Reset() { *m = CommandErr{} }

// String implements proto.Message.
func (m *CommandErr) String() string { return proto.CompactTextString(m) }

// Error implements error.
func (m *CommandErr) Error() string { return m.Message }

// BlinkStatusQuery command.
type BlinkStatusQuery struct {
}

// NewMessage implements Message.
func (m *BlinkStatusQuery) NewMessage() fx.Message { return &BlinkStatusQuery{} }

// TypeID implements SerializableMessage.
func (m *BlinkStatusQuery) TypeID() uint32 { return BlinkStatusQueryTypeID }

// Serializable implements SerializableMessage.
func (m *BlinkStatusQuery) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *BlinkStatusQuery) ProtoMessage() {}

// Reset implements proto.Message.
func (m *BlinkStatusQuery) Reset() { *m = BlinkStatusQuery{} }

// String implements proto.Message.
func (m *BlinkStatusQuery) String() string { return proto.CompactTextString(m) }

// BlinkStatus replies BlinkStatusQuery.
type BlinkStatus struct {
	Pin         string `protobuf:"bytes,1,opt,name=pin,proto3" json:"pin,omitempty"`
	High        bool   `protobuf:"varint,2,opt,name=high,proto3" json:"high,omitempty"`
	Transitions uint64 `protobuf:"varint,3,opt,name=transitions,proto3" json:"transitions,omitempty"`
	IntervalUs  uint64 `protobuf:"varint,4,opt,name=interval_us,json=intervalUs,proto3" json:"interval_us,omitempty"`
	Backend     string `protobuf:"bytes,5,opt,name=backend,proto3" json:"backend,omitempty"`
	Delay       string `protobuf:"bytes,6,opt,name=delay,proto3" json:"delay,omitempty"`
	Running     bool   `protobuf:"varint,7,opt,name=running,proto3" json:"running,omitempty"`
}

// NewMessage implements Message.
func (m *BlinkStatus) NewMessage() fx.Message { return &BlinkStatus{} }

// TypeID implements SerializableMessage.
func (m *BlinkStatus) TypeID() uint32 { return BlinkStatusTypeID }

// Serializable implements SerializableMessage.
func (m *BlinkStatus) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *BlinkStatus) ProtoMessage() {}

// Reset implements proto.Message.
func (m *BlinkStatus) Reset() { *m = BlinkStatus{} }

// String implements proto.Message.
func (m *BlinkStatus) String() string { return proto.CompactTextString(m) }

// PinLevelChanged is an event sent on every transition of the pin.
type PinLevelChanged struct {
	Pin  string `protobuf:"bytes,1,opt,name=pin,proto3" json:"pin,omitempty"`
	High bool   `protobuf:"varint,2,opt,name=high,proto3" json:"high,omitempty"`
	// Seq counts transitions from 1.
	Seq uint64 `protobuf:"varint,3,opt,name=seq,proto3" json:"seq,omitempty"`
	// TimeNs is the transition time in nanoseconds since Unix epoch
	// according to the clock of the board.
	TimeNs int64 `protobuf:"varint,4,opt,name=time_ns,json=timeNs,proto3" json:"time_ns,omitempty"`
}

// NewMessage implements Message.
func (m *PinLevelChanged) NewMessage() fx.Message { return &PinLevelChanged{} }

// TypeID implements SerializableMessage.
func (m *PinLevelChanged) TypeID() uint32 { return PinLevelChangedTypeID }

// Serializable implements SerializableMessage.
func (m *PinLevelChanged) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *PinLevelChanged) ProtoMessage() {}

// Reset implements proto.Message.
func (m *PinLevelChanged) Reset() { *m = PinLevelChanged{} }

// String implements proto.Message.
func (m *PinLevelChanged) String() string { return proto.CompactTextString(m) }

// TypeID Groups
const (
	GroupCommand uint32 = 0x00000000
	GroupBlink   uint32 = 0x00030000
	GroupCustom  uint32 = 0x7f000000 // base group id for custom messages.
)

// TypeIDs
const (
	CommandOKTypeID        uint32 = GroupCommand | TypeIDMaskReply | 0x0000
	CommandErrTypeID       uint32 = GroupCommand | TypeIDMaskReply | 0x0001
	BlinkStatusQueryTypeID uint32 = GroupBlink | 0x0000
	BlinkStatusTypeID      uint32 = BlinkStatusQueryTypeID | TypeIDMaskReply
	PinLevelChangedTypeID  uint32 = TypeIDKindEvent | GroupBlink | 0x0001
)
