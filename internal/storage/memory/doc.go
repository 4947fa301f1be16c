// Package memory provides the in-memory key-value store for jsonkv.
//
// The Store owns one map of string keys to JSON objects. Every operation
// serializes through a single mutex, so all SET/GET/DELETE calls across
// all connections observe one total order and no partial write is ever
// visible.
//
// Values cross the Store boundary by copy in both directions: callers can
// neither mutate a stored value nor observe a later mutation through a
// value they already hold.
package memory
