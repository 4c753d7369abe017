// Package env holds what daemons and clients share about their runtime
// environment.
package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// machineIDApp keys the hashed machine ID so the raw ID isn't published.
const machineIDApp = "blink"

// MachineID identifies this machine. The hostname is used when the
// platform doesn't expose a machine ID, e.g. in minimal containers.
func MachineID() string {
	id, err := machineid.ProtectedID(machineIDApp)
	if err == nil {
		return id[:16]
	}
	glog.Warningf("machine id unavailable, falling back to hostname: %v", err)
	if host, herr := os.Hostname(); herr == nil && host != "" {
		return host
	}
	return "localhost"
}
