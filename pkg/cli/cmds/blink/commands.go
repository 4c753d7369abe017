package blink

import (
	"github.com/abiosoft/ishell"

	"github.com/robotalks/blink.go/pkg/cli/sh"
	"github.com/robotalks/blink.go/pkg/device/msgs"
)

var (
	// BlinkStatusCmd exposes BlinkStatusQuery command.
	BlinkStatusCmd = ishell.Cmd{
		Name:    "blink.status",
		Aliases: []string{"bs"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.BlinkStatusQuery{})
		}),
	}
)

func init() {
	sh.AddCmds(&BlinkStatusCmd)
}
