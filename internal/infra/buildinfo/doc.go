// Package buildinfo exposes version information for jsonkv-server.
//
// Values are injected with ldflags:
//
//	go build -ldflags "-X github.com/yndnr/jsonkv-go/internal/infra/buildinfo.Version=v0.1.0"
//
// When Commit or GoVersion are not injected they are read from the
// module build information embedded by the Go toolchain.
package buildinfo
