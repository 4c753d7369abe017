package connector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/blink.go/pkg/device/comm/mqtt"
)

func TestNewConnector(t *testing.T) {
	conf := NewConfig()
	require.Equal(t, DefaultDeviceType, conf.Ref.Type)

	conf.RegistryURL = "mqtt://localhost:1883/blink/"
	connector, err := conf.NewConnector()
	require.NoError(t, err)
	require.IsType(t, &mqtt.Connector{}, connector)

	conf.RegistryURL = "mqtts://localhost:8883/blink/"
	_, err = conf.NewConnector()
	require.NoError(t, err)

	conf.RegistryURL = "http://localhost"
	_, err = conf.NewConnector()
	require.Error(t, err)

	conf.RegistryURL = "://bad"
	_, err = conf.NewConnector()
	require.Error(t, err)
}

func TestConnectRequiresRef(t *testing.T) {
	conf := NewConfig()
	conf.Ref.ID = ""
	_, err := conf.Connect(context.Background())
	require.Equal(t, ErrIncompleteRef, err)
}
