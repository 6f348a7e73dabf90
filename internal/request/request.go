package request

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const subjectContextKey contextKey = "subject"

// ClientIP extracts the client identifier used for rate limiting. It
// respects X-Forwarded-For (first entry) and X-Real-IP before falling back
// to the socket address, and never returns an empty string.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Comma-separated when the request crossed several proxies;
		// the first entry is the original client.
		parts := strings.Split(xff, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

// WithSubject returns a context carrying the authenticated token subject.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectContextKey, subject)
}

// SubjectFromContext returns the authenticated subject, or "" if the
// request was not authenticated.
func SubjectFromContext(r *http.Request) string {
	s, _ := r.Context().Value(subjectContextKey).(string)
	return s
}
