package msgs

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/blink.go/pkg/framework"
)

// A type ID is laid out as
//
//	bit 31     kind, set for events
//	bits 16-30 group
//	bit 15     reply, commands only
//	bits 0-14  ID within the group
const (
	TypeIDMaskKind  uint32 = 0x80000000
	TypeIDMaskGroup uint32 = 0x7fff0000
	TypeIDMaskID    uint32 = 0x0000ffff
	TypeIDMaskReply uint32 = 0x00008000
)

// Kinds
const (
	TypeIDKindCommand uint32 = 0x00000000
	TypeIDKindEvent   uint32 = 0x80000000
)

var (
	// ErrNotSerializable is returned for messages without a type ID.
	ErrNotSerializable = errors.New("not serializable message")
	// ErrUnsupportedCommand replies commands nobody handles.
	ErrUnsupportedCommand = errors.New("unsupported command")
)

// ErrUnknownType is returned when decoding an unregistered type ID.
type ErrUnknownType struct {
	TypeID uint32
}

func (e *ErrUnknownType) Error() string {
	return fmt.Sprintf("unknown type: %x", e.TypeID)
}

// SerializableMessage is a Message with a wire representation.
type SerializableMessage interface {
	fx.Message
	TypeID() uint32
	Serializable() proto.Message
}

// MessageTypes maps type IDs to prototypes used for decoding.
var MessageTypes = make(map[uint32]SerializableMessage)

// RegisterTypes adds prototypes to MessageTypes. It panics on a
// conflicting type ID.
func RegisterTypes(protos ...SerializableMessage) {
	for _, p := range protos {
		id := p.TypeID()
		if existing, ok := MessageTypes[id]; ok {
			panic(fmt.Sprintf("type %x registered by both %T and %T", id, existing, p))
		}
		MessageTypes[id] = p
	}
}

func init() {
	RegisterTypes(
		&CommandOK{},
		&CommandErr{},
		&BlinkStatusQuery{},
		&BlinkStatus{},
		&PinLevelChanged{},
	)
}

// TypedMsgHandler receives decoded messages with their envelope.
type TypedMsgHandler interface {
	HandleTypedMsg(context.Context, fx.Message, *Typed) error
}

// HandleTypedMsgFunc is the func form of TypedMsgHandler.
type HandleTypedMsgFunc func(context.Context, fx.Message, *Typed) error

// HandleTypedMsg implements TypedMsgHandler.
func (f HandleTypedMsgFunc) HandleTypedMsg(ctx context.Context, msg fx.Message, typed *Typed) error {
	return f(ctx, msg, typed)
}

// Typed is the wire envelope. Sequence pairs a command with its reply.
type Typed struct {
	TypeId   uint32 `protobuf:"varint,1,opt,name=type_id,json=typeId,proto3" json:"type_id,omitempty"`
	Sequence uint32 `protobuf:"varint,2,opt,name=sequence,proto3" json:"sequence,omitempty"`
	Message  []byte `protobuf:"bytes,3,opt,name=message,proto3" json:"message,omitempty"`
}

func (p *Typed) ProtoMessage()  {}
func (p *Typed) Reset()         { *p = Typed{} }
func (p *Typed) String() string { return proto.CompactTextString(p) }

// TypedFrom encodes msg into an envelope with Sequence unset.
func TypedFrom(msg fx.Message) (*Typed, error) {
	sm, ok := msg.(SerializableMessage)
	if !ok {
		return nil, ErrNotSerializable
	}
	payload, err := proto.Marshal(sm.Serializable())
	if err != nil {
		return nil, err
	}
	return &Typed{TypeId: sm.TypeID(), Message: payload}, nil
}

// DecodeTyped decodes an envelope from a packet.
func DecodeTyped(pkt []byte) (*Typed, error) {
	typed := &Typed{}
	if err := proto.Unmarshal(pkt, typed); err != nil {
		return nil, err
	}
	return typed, nil
}

// Encode encodes the envelope into a packet.
func (p *Typed) Encode() ([]byte, error) {
	return proto.Marshal(p)
}

// Decode decodes the payload according to TypeId.
func (p *Typed) Decode() (fx.Message, error) {
	prototype, ok := MessageTypes[p.TypeId]
	if !ok {
		return nil, &ErrUnknownType{TypeID: p.TypeId}
	}
	msg := prototype.NewMessage()
	if err := proto.Unmarshal(p.Message, msg.(SerializableMessage).Serializable()); err != nil {
		return nil, err
	}
	return msg, nil
}

// Kind is either TypeIDKindCommand or TypeIDKindEvent.
func (p *Typed) Kind() uint32 { return p.TypeId & TypeIDMaskKind }

// IsCommand is true for commands and replies.
func (p *Typed) IsCommand() bool { return p.Kind() == TypeIDKindCommand }

// IsEvent is true for events.
func (p *Typed) IsEvent() bool { return p.Kind() == TypeIDKindEvent }

// IsReply is true for replies of commands.
func (p *Typed) IsReply() bool { return p.IsCommand() && p.TypeId&TypeIDMaskReply != 0 }
