package hal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePin(t *testing.T) {
	testCases := []struct {
		name   string
		expect PinID
		err    bool
	}{
		{name: "PA5", expect: PinID{Port: PortA, Line: 5}},
		{name: "pc13", expect: PinID{Port: PortC, Line: 13}},
		{name: " PE0 ", expect: PinID{Port: PortE, Line: 0}},
		{name: "PA16", err: true},
		{name: "PF1", err: true},
		{name: "A5", err: true},
		{name: "P", err: true},
		{name: "PAx", err: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pin, err := ParsePin(tc.name)
			if tc.err {
				require.True(t, errors.Is(err, ErrInvalidPin))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expect, pin)
			require.True(t, pin.IsValid())
		})
	}
}

func TestPinString(t *testing.T) {
	require.Equal(t, "PA5", PinID{Port: PortA, Line: 5}.String())
	require.Equal(t, "PC13", MustParsePin("pc13").String())
	require.Equal(t, uint32(0x20), MustParsePin("PA5").Mask())
}

func TestParseSpeed(t *testing.T) {
	s, err := ParseSpeed("2MHz")
	require.NoError(t, err)
	require.Equal(t, Speed2MHz, s)
	require.Equal(t, "2MHz", s.String())
	s, err = ParseSpeed("50mhz")
	require.NoError(t, err)
	require.Equal(t, Speed50MHz, s)
	_, err = ParseSpeed("3MHz")
	require.Error(t, err)
}

func TestModeIsOutput(t *testing.T) {
	require.False(t, ModeInputFloating.IsOutput())
	require.True(t, ModeOutputPushPull.IsOutput())
	require.True(t, ModeOutputOpenDrain.IsOutput())
}
