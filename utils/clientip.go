package utils

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP extracts the requester's IP, preferring the first hop of
// X-Forwarded-For when the app runs behind a proxy.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
