// Package version reports the build version of pantheon.
package version

import (
	"runtime/debug"
)

// Version is overridden at build time via:
//
//	go build -ldflags "-X github.com/vanderheijden86/pantheon/pkg/version.Version=v1.2.3"
var Version = "dev"

// String returns Version, falling back to the module version recorded by
// the Go toolchain when no ldflags override was given.
func String() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}
