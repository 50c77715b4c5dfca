package handler

import (
	"net"
	"net/http"
	"strings"
)

// ClientKeyResolver derives the identity used to bucket rate-limit state.
//
// Trust boundary: X-Forwarded-For is taken at face value. A client that
// controls the header can claim any key, so the leftmost-entry mode
// (TrustedProxyCount == 0) is only sound when the server sits behind a
// reverse proxy that strips or overwrites the header. With
// TrustedProxyCount > 0 the entry appended by the outermost trusted proxy is
// used instead, which a client cannot forge by prepending values.
type ClientKeyResolver struct {
	TrustedProxyCount int
}

// Resolve returns the client key for r.
func (c ClientKeyResolver) Resolve(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		idx := 0
		if c.TrustedProxyCount > 0 {
			idx = len(parts) - c.TrustedProxyCount
		}
		if idx >= 0 && idx < len(parts) {
			if key := strings.TrimSpace(parts[idx]); key != "" {
				return key
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
