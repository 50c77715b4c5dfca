package handler

import (
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/webmatic/api/internal/metrics"
	"github.com/webmatic/api/internal/ratelimit"
)

// ContentSecurityPolicy allows same-origin content plus the analytics script.
const ContentSecurityPolicy = "default-src 'self'; " +
	"script-src 'self' 'unsafe-inline' https://plausible.io; " +
	"style-src 'self' 'unsafe-inline'; " +
	"img-src 'self' data: https:; " +
	"font-src 'self' https:; " +
	"connect-src 'self' https://plausible.io;"

// securityHeaders is the fixed set added to every response.
var securityHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"X-XSS-Protection", "1; mode=block"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
	{"Permissions-Policy", "geolocation=(), microphone=(), camera=()"},
	{"Strict-Transport-Security", "max-age=31536000; includeSubDomains"},
	{"Content-Security-Policy", ContentSecurityPolicy},
}

// SecurityHeaders adds security response headers (CSP, X-Frame-Options, etc.)
// before the inner handler runs, so error and rejection responses carry them
// too. Values already set are overwritten.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for _, kv := range securityHeaders {
			h.Set(kv[0], kv[1])
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimiter admits or rejects requests per client key using a sliding
// window limiter.
type RateLimiter struct {
	limiter  *ratelimit.SlidingWindow
	resolver ClientKeyResolver
	metrics  *metrics.Metrics
	stats    ratelimit.StatsRecorder
	routes   *http.ServeMux
	now      func() time.Time
	warn     *rate.Sometimes
}

// RateLimiterOption configures a RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithMetrics records admission decisions.
func WithMetrics(m *metrics.Metrics) RateLimiterOption {
	return func(rl *RateLimiter) { rl.metrics = m }
}

// WithStats forwards every decision to rec.
func WithStats(rec ratelimit.StatsRecorder) RateLimiterOption {
	return func(rl *RateLimiter) { rl.stats = rec }
}

// WithRoutes labels stats events with the pattern mux would match. Without
// it every event is recorded as unmatched.
func WithRoutes(mux *http.ServeMux) RateLimiterOption {
	return func(rl *RateLimiter) { rl.routes = mux }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) RateLimiterOption {
	return func(rl *RateLimiter) { rl.now = now }
}

// NewRateLimiter wraps limiter with client key resolution.
func NewRateLimiter(limiter *ratelimit.SlidingWindow, resolver ClientKeyResolver, opts ...RateLimiterOption) *RateLimiter {
	rl := &RateLimiter{
		limiter:  limiter,
		resolver: resolver,
		now:      time.Now,
		warn:     &rate.Sometimes{First: 1, Interval: time.Second},
	}
	for _, opt := range opts {
		opt(rl)
	}
	return rl
}

// Middleware returns an http.Handler that enforces rate limits.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := rl.resolver.Resolve(r)
		d := rl.limiter.Admit(key, rl.now())

		rl.metrics.ObserveAdmission(d.Allowed)
		if rl.stats != nil {
			rl.stats.Record(ratelimit.StatsEvent{
				Key:     key,
				Allowed: d.Allowed,
				Route:   rl.route(r),
				At:      rl.now(),
			})
		}

		if !d.Allowed {
			rl.warn.Do(func() {
				slog.Warn("rate limit exceeded", "client", key, "path", r.URL.Path, "retry_after", d.RetryAfter)
			})
			writeError(w, r, &rateLimitError{retryAfter: d.RetryAfter})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// route returns the registered pattern for r, or "" when none matches.
func (rl *RateLimiter) route(r *http.Request) string {
	if rl.routes == nil {
		return ""
	}
	_, pattern := rl.routes.Handler(r)
	return pattern
}

// CORS answers preflight requests and sets the allow headers for origins in
// the allowlist. "*" allows any origin; the origin is echoed back because
// credentials are allowed. Only a real preflight (OPTIONS with Origin and
// Access-Control-Request-Method) is answered here; a preflight for a
// disallowed origin or method gets 400. Any other OPTIONS request continues
// down the pipeline.
func CORS(origins []string) func(http.Handler) http.Handler {
	allowAll := slices.Contains(origins, "*")
	allowed := func(origin string) bool {
		return allowAll || slices.Contains(origins, origin)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			reqMethod := r.Header.Get("Access-Control-Request-Method")

			if r.Method == http.MethodOptions && origin != "" && reqMethod != "" {
				if !allowed(origin) || !slices.Contains(corsMethods, reqMethod) {
					writeError(w, r, errCORSRejected)
					return
				}
				setCORSHeaders(w.Header(), origin)
				if req := r.Header.Get("Access-Control-Request-Headers"); req != "" {
					w.Header().Set("Access-Control-Allow-Headers", req)
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			if origin != "" && allowed(origin) {
				setCORSHeaders(w.Header(), origin)
			}
			next.ServeHTTP(w, r)
		})
	}
}

var corsMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}

func setCORSHeaders(h http.Header, origin string) {
	h.Set("Access-Control-Allow-Origin", origin)
	h.Add("Vary", "Origin")
	h.Set("Access-Control-Allow-Methods", strings.Join(corsMethods, ", "))
	h.Set("Access-Control-Allow-Headers", "Content-Type")
	h.Set("Access-Control-Allow-Credentials", "true")
}

// TrustedHosts rejects requests whose Host header is not allowed. Entries may
// be exact hosts, "*.example.com" suffix patterns or "*" for any host.
func TrustedHosts(hosts []string) func(http.Handler) http.Handler {
	if len(hosts) == 0 || slices.Contains(hosts, "*") {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !hostAllowed(hosts, r.Host) {
				slog.Warn("rejected host", "host", r.Host)
				writeError(w, r, errInvalidHost)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func hostAllowed(hosts []string, host string) bool {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(host)
	for _, pattern := range hosts {
		pattern = strings.ToLower(pattern)
		if suffix, ok := strings.CutPrefix(pattern, "*"); ok {
			if strings.HasSuffix(host, suffix) {
				return true
			}
			continue
		}
		if host == pattern {
			return true
		}
	}
	return false
}
