// Package service provides the command execution service for jsonkv.
//
// KVService is the single entry point both wire adapters use to run a
// domain.Command against the store. It owns no state of its own; the
// store handle it wraps is shared by every connection.
package service
