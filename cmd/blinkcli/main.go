// blinkcli discovers blinkers and talks to them interactively or with a
// single command given as arguments.
package main

import (
	"github.com/robotalks/blink.go/pkg/cli/sh"
	"github.com/robotalks/blink.go/pkg/device/env/connector"

	_ "github.com/robotalks/blink.go/pkg/cli/cmds/all"
)

func main() {
	connector.SetupFlags()
	sh.Main()
}
