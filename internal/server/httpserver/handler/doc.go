// Package handler implements the HTTP key-value endpoints.
//
// Routes (registered by httpserver.NewRouter):
//
//	POST   /{key}   store the JSON object in the body under key
//	GET    /{key}   return the stored object itself, or 404
//	DELETE /{key}   remove key; data.existed tells whether it was present
//
// Except for a GET hit, responses use the Response envelope. Health and
// readiness handlers are served on the separate metrics listener.
package handler
