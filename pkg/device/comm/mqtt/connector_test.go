package mqtt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewConnector(t *testing.T) {
	c, err := NewConnector("mqtt://localhost:1883/blink/")
	require.NoError(t, err)
	require.Equal(t, DefaultDiscoverTimeout, c.DiscoverTimeout)
	require.Equal(t, "blink/", c.newQueue().TopicPrefix)

	_, err = NewConnector("mqtt://localhost:1883/?qos=5")
	require.Error(t, err)
}
