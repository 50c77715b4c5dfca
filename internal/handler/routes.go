package handler

import "net/http"

// Routes groups the handlers served by NewRouter.
type Routes struct {
	Handler   *Handler
	Contact   *ContactHandler
	Status    *StatusHandler
	Analytics *AnalyticsHandler
	// Metrics serves GET /metrics when non-nil.
	Metrics http.Handler
}

// NewRouter registers every endpoint on a new ServeMux.
func NewRouter(rt Routes) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handle(rt.Handler.Health))
	mux.HandleFunc("GET /api/{$}", handle(rt.Handler.Info))
	mux.HandleFunc("GET /api/security/check", handle(rt.Handler.SecurityCheck))

	mux.HandleFunc("POST /api/contact", handle(rt.Contact.Submit))
	mux.HandleFunc("POST /api/status", handle(rt.Status.Create))
	mux.HandleFunc("GET /api/status", handle(rt.Status.List))
	mux.HandleFunc("GET /api/analytics/summary", handle(rt.Analytics.Summary))

	if rt.Metrics != nil {
		mux.Handle("GET /metrics", rt.Metrics)
	}
	return mux
}
