package logger

import (
	"log/slog"
	"strings"
)

// Attribute key fragments that may carry client data or credentials.
// Store keys ("key") stay readable.
var sensitiveFragments = [...]string{
	"value", "body", "payload",
	"password", "secret", "token", "credential", "authorization",
}

const redactedValue = "***REDACTED***"

// IsSensitiveKey reports whether an attribute key looks like it holds
// client data or a credential.
func IsSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, f := range sensitiveFragments {
		if strings.Contains(k, f) {
			return true
		}
	}
	return false
}

// redactSensitive masks non-empty string attributes with sensitive keys,
// descending into groups.
func redactSensitive(a slog.Attr) slog.Attr {
	v := a.Value
	if v.Kind() == slog.KindGroup {
		group := v.Group()
		masked := make([]slog.Attr, 0, len(group))
		for _, ga := range group {
			masked = append(masked, redactSensitive(ga))
		}
		return slog.Group(a.Key, attrsToAny(masked)...)
	}
	if v.Kind() == slog.KindString && v.String() != "" && IsSensitiveKey(a.Key) {
		a.Value = slog.StringValue(redactedValue)
	}
	return a
}

func attrsToAny(attrs []slog.Attr) []any {
	out := make([]any, len(attrs))
	for i, a := range attrs {
		out[i] = a
	}
	return out
}
