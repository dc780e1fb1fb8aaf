// Package probe inspects the host once per run and produces the immutable
// facts the installation methods gate on.
package probe

import (
	"fmt"

	"github.com/felixgeelhaar/agentstrap/internal/domain/platform"
)

// Facts is a snapshot of host capabilities. It is gathered once at run start
// and never mutated; every field degrades to its zero value when the probe
// behind it fails.
type Facts struct {
	RuntimePresent      bool
	RuntimeVersion      string // canonical semver ("v3.11.9") or empty
	RuntimePath         string // executable that answered the version probe
	OS                  platform.Kind
	NetworkReachable    bool
	InstallRoot         string
	InstallRootWritable bool
}

// String returns a compact single-line summary for logs.
func (f Facts) String() string {
	version := f.RuntimeVersion
	if version == "" {
		version = "absent"
	}
	return fmt.Sprintf("runtime=%v version=%s os=%s network=%v writable=%v",
		f.RuntimePresent, version, f.OS, f.NetworkReachable, f.InstallRootWritable)
}
