package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/user/linkcheck-service/internal/delivery/http/handler"
	"github.com/user/linkcheck-service/internal/delivery/http/middleware"
	"github.com/user/linkcheck-service/pkg/metrics"
	"go.uber.org/zap"
)

func New(h *handler.Handler, m *metrics.Metrics, gatherer prometheus.Gatherer, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics(m))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealthCheck)

		r.Route("/linkcache", func(r chi.Router) {
			r.Post("/", h.HandleAddToLinkCache)
			r.Get("/", h.HandleLinkCacheStatus)
			r.Post("/flush", h.HandleFlushLinkCache)
		})

		r.Route("/sites", func(r chi.Router) {
			r.Post("/", h.HandleCreateSite)
			r.Get("/", h.HandleListSites)
			r.Get("/report", h.HandleSummaryReport)
			r.Post("/purge", h.HandlePurgeOrphans)
			r.Post("/archive", h.HandleArchiveReport)
			r.Get("/history", h.HandleReportHistory)
		})

		r.Route("/site", func(r chi.Router) {
			r.Get("/", h.HandleGetSite)
			r.Put("/property", h.HandleSetProperty)
			r.Post("/page", h.HandleLogPage)
			r.Post("/link", h.HandleLogLink)
			r.Post("/broken", h.HandleAddBroken)
			r.Post("/reset", h.HandleResetCounters)
			r.Post("/flush", h.HandleFlushIssues)
			r.Get("/issues", h.HandleIssues)
			r.Get("/blacklist", h.HandleBlacklistedLinks)
			r.Post("/blacklist", h.HandleBlacklist)
			r.Delete("/blacklist", h.HandleRemoveFromBlacklist)
			r.Delete("/blacklist/temp", h.HandleFlushTempBlacklist)
		})
	})

	return r
}
