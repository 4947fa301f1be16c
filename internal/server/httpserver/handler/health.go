package handler

import (
	"net/http"
	"time"

	"github.com/yndnr/jsonkv-go/internal/infra/buildinfo"
)

// Health returns the GET /health handler. keys may be nil.
func Health(keys func() int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := buildinfo.Get()
		resp := HealthResponse{
			Status:    "healthy",
			Version:   info.Version,
			Commit:    info.Commit,
			GoVersion: info.GoVersion,
			Time:      time.Now().UTC().Format(time.RFC3339),
		}
		if keys != nil {
			resp.Keys = keys()
		}
		writeJSON(w, r, http.StatusOK, resp)
	})
}

// Ready returns the GET /ready handler. It answers 503 while ready
// reports false, before the front end serves and once shutdown began.
func Ready(mode string, ready func() bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ready != nil && !ready() {
			writeJSON(w, r, http.StatusServiceUnavailable, ReadyResponse{Status: "not_ready", Mode: mode})
			return
		}
		writeJSON(w, r, http.StatusOK, ReadyResponse{Status: "ready", Mode: mode})
	})
}
