package msgs

import (
	"testing"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/blink.go/pkg/framework"
)

type notSerializable struct{}

func (m *notSerializable) NewMessage() fx.Message { return &notSerializable{} }

func TestTypedEncodeDecode(t *testing.T) {
	typed, err := TypedFrom(&PinLevelChanged{Pin: "PA5", High: true, Seq: 3, TimeNs: 1500000000})
	require.NoError(t, err)
	require.True(t, typed.IsEvent())
	require.False(t, typed.IsCommand())
	typed.Sequence = 7

	data, err := typed.Encode()
	require.NoError(t, err)
	decoded, err := DecodeTyped(data)
	require.NoError(t, err)
	require.Equal(t, PinLevelChangedTypeID, decoded.TypeId)
	require.Equal(t, uint32(7), decoded.Sequence)

	msg, err := decoded.Decode()
	require.NoError(t, err)
	require.Equal(t, &PinLevelChanged{Pin: "PA5", High: true, Seq: 3, TimeNs: 1500000000}, msg)
}

func TestTypedKinds(t *testing.T) {
	testCases := []struct {
		name    string
		msg     SerializableMessage
		command bool
		reply   bool
	}{
		{name: "query", msg: &BlinkStatusQuery{}, command: true},
		{name: "status", msg: &BlinkStatus{Pin: "PA5"}, command: true, reply: true},
		{name: "ok", msg: NewCommandOK(), command: true, reply: true},
		{name: "err", msg: NewCommandErrFromMsg("bad"), command: true, reply: true},
		{name: "event", msg: &PinLevelChanged{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			typed, err := TypedFrom(tc.msg)
			require.NoError(t, err)
			require.Equal(t, tc.command, typed.IsCommand())
			require.Equal(t, !tc.command, typed.IsEvent())
			require.Equal(t, tc.reply, typed.IsReply())
			require.Contains(t, MessageTypes, tc.msg.TypeID())
		})
	}
}

func TestTypedErrors(t *testing.T) {
	_, err := TypedFrom(&notSerializable{})
	require.Equal(t, ErrNotSerializable, err)

	_, err = (&Typed{TypeId: GroupCustom | 0x42}).Decode()
	require.Equal(t, &ErrUnknownType{TypeID: GroupCustom | 0x42}, err)
	require.Equal(t, "unknown type: 7f000042", err.Error())

	cmdErr, err := (&Typed{TypeId: CommandErrTypeID, Message: mustEncode(t, NewCommandErrFromMsg("boom"))}).Decode()
	require.NoError(t, err)
	require.EqualError(t, cmdErr.(error), "boom")
}

func mustEncode(t *testing.T, msg SerializableMessage) []byte {
	typed, err := TypedFrom(msg)
	require.NoError(t, err)
	return typed.Message
}

func TestRegisterTypesConflict(t *testing.T) {
	require.Panics(t, func() { RegisterTypes(&BlinkStatus{}) })
}
