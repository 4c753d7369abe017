// Package all registers all shell commands.
package all

import (
	// Blinker commands.
	_ "github.com/robotalks/blink.go/pkg/cli/cmds/blink"
)
