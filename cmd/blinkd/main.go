package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"log"

	"github.com/robotalks/blink.go/pkg/blinker"
	"github.com/robotalks/blink.go/pkg/device"
	env "github.com/robotalks/blink.go/pkg/device/env/daemon"
	fx "github.com/robotalks/blink.go/pkg/framework"
	"github.com/robotalks/blink.go/pkg/sim/visualization/see"
)

var visualize bool

func init() {
	env.SetDeviceType(blinker.DeviceType, device.Meta{Description: "GPIO square wave blinker"})
	env.SetupFlags()
	blinker.SetupFlags()
	see.SetupFlags()
	flag.BoolVar(&visualize, "see", visualize, "Print visualization messages for github.com/robotalks/see")
}

func main() {
	flag.Parse()

	env := env.NewConfig().MustNewEnv()
	ctl, err := blinker.NewConfig().NewController(env)
	if err != nil {
		log.Fatalln(err)
	}
	loop := fx.NewLoop().Add(env, ctl)
	if visualize {
		loop.Add(see.NewConfig().NewAdapter().Subscribe(ctl))
	}
	loop.RunOrFail()
}
