// Package httpserver serves the key-value store over HTTP.
//
// NewRouter builds the gorilla/mux router for the handler package and
// wraps it in the middleware chain; Server runs it on a listener handed
// over by the dispatcher.
package httpserver
