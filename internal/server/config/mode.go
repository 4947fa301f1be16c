package config

import "strings"

// Mode names the protocol front end a process serves.
type Mode int

const (
	// ModeHTTP serves the REST-style HTTP front end.
	ModeHTTP Mode = iota
	// ModeRESP serves the RESP (Redis wire protocol) front end.
	ModeRESP
)

// ParseMode maps a startup token to a Mode. Only "resp" (case-insensitive,
// leading dashes ignored so "--resp" works) selects RESP; every other
// token, including the empty one, selects HTTP.
func ParseMode(token string) Mode {
	t := strings.TrimLeft(strings.TrimSpace(token), "-")
	if strings.EqualFold(t, "resp") {
		return ModeRESP
	}
	return ModeHTTP
}

func (m Mode) String() string {
	if m == ModeRESP {
		return "resp"
	}
	return "http"
}
