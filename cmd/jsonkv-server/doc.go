// Package main provides the entry point for jsonkv-server.
//
// The server keeps one in-memory map of string keys to JSON objects and
// exposes it over a single front end chosen at startup:
//
//   - HTTP: POST, GET and DELETE on /{key}
//   - RESP: SET, GET and DEL over the Redis wire protocol
//
// Usage:
//
//	jsonkv-server [flags] [http|resp]
//	jsonkv-server --resp --addr 127.0.0.1:6379
//	jsonkv-server --config /etc/jsonkv/config.yaml
package main
