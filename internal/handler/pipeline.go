package handler

import (
	"fmt"
	"net/http"

	"github.com/klauspost/compress/gzhttp"

	"github.com/webmatic/api/internal/metrics"
)

// compressMinSize is the smallest response body that gets gzip-encoded.
const compressMinSize = 1000

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain wraps h so that the first middleware is the outermost. Nil entries
// are skipped.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			h = mws[i](h)
		}
	}
	return h
}

// PipelineConfig holds what the admission pipeline is built from.
type PipelineConfig struct {
	RateLimiter  *RateLimiter
	Resolver     ClientKeyResolver
	Metrics      *metrics.Metrics
	CORSOrigins  []string
	TrustedHosts []string
}

// Pipeline wraps h with the admission pipeline, outermost first:
// request logging, gzip compression, security headers, CORS, trusted hosts,
// panic recovery, rate limiting. Headers are set before anything can reject
// the request.
func Pipeline(h http.Handler, cfg PipelineConfig) http.Handler {
	var limit Middleware
	if cfg.RateLimiter != nil {
		limit = cfg.RateLimiter.Middleware
	}
	return Chain(h,
		RequestLogger(cfg.Metrics, cfg.Resolver),
		Compress(compressMinSize),
		SecurityHeaders,
		CORS(cfg.CORSOrigins),
		TrustedHosts(cfg.TrustedHosts),
		Recover,
		limit,
	)
}

// Compress gzip-encodes responses of at least minSize bytes for clients that
// accept it.
func Compress(minSize int) Middleware {
	wrap, err := gzhttp.NewWrapper(gzhttp.MinSize(minSize))
	if err != nil {
		panic(fmt.Sprintf("handler: gzip wrapper: %v", err))
	}
	return func(next http.Handler) http.Handler { return wrap(next) }
}
