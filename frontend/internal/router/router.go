package router

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	frontendmw "github.com/mergington/activities/frontend/internal/middleware"
	"github.com/mergington/activities/frontend/internal/page"
	"github.com/mergington/activities/frontend/internal/setup"
	mw "github.com/mergington/activities/shared/middleware"
	"github.com/mergington/activities/shared/middleware/metrics"
)

// New creates the router of the page, its event posts and the operational
// endpoints.
func New(deps *setup.Dependencies) *mux.Router {
	r := mux.NewRouter()

	r.Use(chimw.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(handlers.CompressHandler)
	r.Use(mw.SecurityHeadersWithCSP(deps.Config.Server.SecureCookies, mw.PageCSP))

	h := deps.Handler

	// Operational endpoints
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/ready", h.Ready).Methods(http.MethodGet)

	r.PathPrefix("/static/").Handler(
		http.StripPrefix("/static/", http.FileServer(http.FS(page.Static()))),
	).Methods(http.MethodGet)

	// Page and its forms
	pages := r.NewRoute().Subrouter()
	pages.Use(frontendmw.GenerateCSRFToken(frontendmw.CSRFConfig{SecureCookies: deps.Config.Server.SecureCookies}))
	pages.Use(frontendmw.ValidateCSRFToken())
	pages.Handle("/", mw.RateLimit(deps.PageLimiter, mw.GetIP)(http.HandlerFunc(h.PageGetHandler))).Methods(http.MethodGet)

	events := pages.PathPrefix("/events").Subrouter()
	events.Use(mw.RateLimit(deps.EventLimiter, mw.GetIP))
	events.Use(mw.GlobalRateLimit(deps.GlobalLimiter))
	events.HandleFunc("/signup", h.SignupPostHandler).Methods(http.MethodPost)
	events.HandleFunc("/remove", h.RemovePostHandler).Methods(http.MethodPost)

	return r
}
