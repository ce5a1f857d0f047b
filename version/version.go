// Copyright 2026, Square, Inc.

// Package version holds the kuyruk release that kcfg reports with --version
// and the version command. Release builds stamp BUILD with the commit:
//
//   go build -ldflags "-X github.com/square/kuyruk/version.BUILD=$(git rev-parse --short HEAD)"
package version

// VERSION is the kuyruk release.
const VERSION = "0.3.0"

// BUILD is set at link time. When set, Version returns "VERSION+BUILD".
var BUILD string

// Version returns the kuyruk version string, e.g. "0.3.0" or "0.3.0+1a2b3c4".
func Version() string {
	if BUILD == "" {
		return VERSION
	}
	return VERSION + "+" + BUILD
}
