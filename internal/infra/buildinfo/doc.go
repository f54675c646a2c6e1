// Package buildinfo reports the version of the running binary.
//
// Release builds set the variables with ldflags:
//
//	go build -ldflags "-X github.com/yndnr/touchmap-go/internal/infra/buildinfo.Version=v1.2.0"
//
// Without ldflags the commit and build time fall back to the VCS stamp
// the Go toolchain embeds.
package buildinfo
