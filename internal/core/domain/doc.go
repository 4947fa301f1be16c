// Package domain defines the protocol-neutral vocabulary of jsonkv.
//
// Both wire adapters translate their requests into the types declared
// here and never talk to the store in any other terms:
//
//   - Method: the closed set of operations (SET, GET, DELETE)
//   - Command: one decoded request, consumed once by the store
//   - Object: a validated JSON-object value in compact text form
//   - Result: the outcome of applying a Command
//   - DomainError: coded, recoverable request errors
package domain
