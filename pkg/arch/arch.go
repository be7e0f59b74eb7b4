// Package arch reports the host machine architecture the way uname(1) does
// (x86_64, aarch64, arm64, ...). Values are compared verbatim by step predicates.
package arch

import (
	"runtime"
	"strings"
)

// Common machine strings.
const (
	X86_64  = "x86_64"
	AMD64   = "amd64"
	AArch64 = "aarch64"
	ARM64   = "arm64"
)

// Detect returns the host machine string. It prefers the kernel's view (uname)
// and falls back to a translation of runtime.GOARCH when that is unavailable.
func Detect() string {
	if m, err := machine(); err == nil && m != "" {
		return m
	}
	return FromGOARCH(runtime.GOARCH)
}

// FromGOARCH translates a Go architecture name to the uname machine string.
func FromGOARCH(goarch string) string {
	switch goarch {
	case "amd64":
		return X86_64
	case "386":
		return "i686"
	case "arm64":
		return AArch64
	case "arm":
		return "armv7l"
	default:
		return goarch
	}
}

// Resolve returns override when it is set, and the detected architecture otherwise.
func Resolve(override string) string {
	if o := strings.TrimSpace(override); o != "" {
		return o
	}
	return Detect()
}

// OneOf reports whether a is in the allowed list. An empty list allows everything.
func OneOf(a string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, v := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
