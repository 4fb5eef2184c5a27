package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/user/linkcheck-service/internal/delivery/http/request"
	"github.com/user/linkcheck-service/internal/delivery/http/response"
	"github.com/user/linkcheck-service/internal/entity"
	"github.com/user/linkcheck-service/internal/usecase"
	"go.uber.org/zap"
)

// Pinger is a dependency the health check can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	linkCache *usecase.LinkCache
	registry  *usecase.SiteRegistry
	policy    *usecase.LinkPolicy
	archiver  *usecase.ReportArchiver // nil when archiving is disabled
	checks    map[string]Pinger
	logger    *zap.Logger
}

func NewHandler(
	linkCache *usecase.LinkCache,
	registry *usecase.SiteRegistry,
	policy *usecase.LinkPolicy,
	archiver *usecase.ReportArchiver,
	checks map[string]Pinger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		linkCache: linkCache,
		registry:  registry,
		policy:    policy,
		archiver:  archiver,
		checks:    checks,
		logger:    logger,
	}
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	healthStatus := make(map[string]string, len(h.checks))
	healthy := true
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			healthStatus[name] = "unhealthy"
			healthy = false
			h.logger.Error("health check failed", zap.String("dependency", name), zap.Error(err))
			continue
		}
		healthStatus[name] = "healthy"
	}

	if !healthy {
		h.writeJSON(w, http.StatusServiceUnavailable, healthStatus)
		return
	}
	h.writeJSON(w, http.StatusOK, healthStatus)
}

// --- Check cache ---

func (h *Handler) HandleAddToLinkCache(w http.ResponseWriter, r *http.Request) {
	var req request.LinkCacheRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.URL == "" {
		h.writeJSONError(w, "url is required", http.StatusBadRequest)
		return
	}

	if err := h.linkCache.Add(r.Context(), req.URL); err != nil {
		h.internalError(w, "Failed to add URL to link cache", err)
		return
	}
	h.writeJSON(w, http.StatusAccepted, response.StatusResponse{Status: "success"})
}

func (h *Handler) HandleLinkCacheStatus(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		h.writeJSONError(w, "URL query parameter is required", http.StatusBadRequest)
		return
	}

	passed, err := h.linkCache.Passed(r.Context(), rawURL)
	if err != nil {
		h.internalError(w, "Failed to check link cache", err)
		return
	}
	size, err := h.linkCache.Size(r.Context())
	if err != nil {
		h.internalError(w, "Failed to read link cache size", err)
		return
	}
	h.writeJSON(w, http.StatusOK, response.LinkCacheStatusResponse{URL: rawURL, Passed: passed, Size: size})
}

func (h *Handler) HandleFlushLinkCache(w http.ResponseWriter, r *http.Request) {
	var req request.FlushLinkCacheRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Force {
		if err := h.linkCache.ForceFlush(r.Context()); err != nil {
			h.internalError(w, "Failed to force flush link cache", err)
			return
		}
		h.writeJSON(w, http.StatusOK, response.FlushResponse{Flushed: true})
		return
	}

	flushed, err := h.linkCache.Flush(r.Context())
	if err != nil {
		h.internalError(w, "Failed to flush link cache", err)
		return
	}
	h.writeJSON(w, http.StatusOK, response.FlushResponse{Flushed: flushed})
}

// --- Sites ---

func (h *Handler) HandleCreateSite(w http.ResponseWriter, r *http.Request) {
	var req request.CreateSiteRequest
	if !h.decode(w, r, &req) {
		return
	}

	site, err := h.registry.Create(r.Context(), req.Attributes)
	if err != nil {
		h.usecaseError(w, "Failed to create site", err)
		return
	}
	h.writeSite(w, r, http.StatusCreated, site)
}

func (h *Handler) HandleListSites(w http.ResponseWriter, r *http.Request) {
	sites, err := h.registry.All(r.Context())
	if err != nil {
		h.internalError(w, "Failed to list sites", err)
		return
	}

	out := make([]response.SiteResponse, 0, len(sites))
	for _, site := range sites {
		resp, err := h.siteResponse(r.Context(), site)
		if err != nil {
			h.internalError(w, "Failed to load site", err)
			return
		}
		out = append(out, resp)
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) HandleSummaryReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.registry.SummaryReport(r.Context())
	if err != nil {
		h.internalError(w, "Failed to build summary report", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(report)); err != nil {
		h.logger.Error("Failed to write summary report", zap.Error(err))
	}
}

func (h *Handler) HandlePurgeOrphans(w http.ResponseWriter, r *http.Request) {
	results, err := h.registry.PurgeOrphanedBlacklistItems(r.Context())
	if err != nil {
		h.internalError(w, "Failed to purge orphaned blacklist items", err)
		return
	}
	if results == nil {
		results = []entity.PurgeResult{}
	}
	h.writeJSON(w, http.StatusOK, response.PurgeResponse{Results: results})
}

func (h *Handler) HandleArchiveReport(w http.ResponseWriter, r *http.Request) {
	if h.archiver == nil {
		h.writeJSONError(w, "Report archive is not configured", http.StatusServiceUnavailable)
		return
	}
	n, err := h.archiver.Archive(r.Context())
	if err != nil {
		h.internalError(w, "Failed to archive summary report", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, response.ArchiveResponse{Archived: n})
}

func (h *Handler) HandleReportHistory(w http.ResponseWriter, r *http.Request) {
	if h.archiver == nil {
		h.writeJSONError(w, "Report archive is not configured", http.StatusServiceUnavailable)
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.writeJSONError(w, "limit must be an integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	snapshots, err := h.archiver.History(r.Context(), r.URL.Query().Get("location"), limit)
	if err != nil {
		h.usecaseError(w, "Failed to load report history", err)
		return
	}

	out := make([]response.SnapshotResponse, 0, len(snapshots))
	for _, s := range snapshots {
		out = append(out, response.SnapshotResponse{
			ID:           s.ID,
			TakenAt:      s.TakenAt,
			Location:     s.Location,
			Counters:     s.Counters,
			ActiveBroken: s.ActiveBroken,
			LastChecked:  s.LastChecked,
		})
	}
	h.writeJSON(w, http.StatusOK, out)
}

// --- Single site ---

func (h *Handler) HandleGetSite(w http.ResponseWriter, r *http.Request) {
	site, ok := h.loadSite(w, r, r.URL.Query().Get("location"))
	if !ok {
		return
	}
	h.writeSite(w, r, http.StatusOK, site)
}

func (h *Handler) HandleSetProperty(w http.ResponseWriter, r *http.Request) {
	var req request.SetPropertyRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Key == "" {
		h.writeJSONError(w, "key is required", http.StatusBadRequest)
		return
	}
	site, ok := h.loadSite(w, r, req.Location)
	if !ok {
		return
	}

	if err := site.Set(r.Context(), req.Key, req.Value); err != nil {
		h.internalError(w, "Failed to set site property", err)
		return
	}
	h.writeSite(w, r, http.StatusOK, site)
}

func (h *Handler) HandleLogPage(w http.ResponseWriter, r *http.Request) {
	h.siteOperation(w, r, func(ctx context.Context, site *usecase.Site, req request.SiteRequest) (int, string) {
		if req.Page == "" {
			return http.StatusBadRequest, "page is required"
		}
		if err := site.LogPage(ctx, req.Page); err != nil {
			h.logger.Error("Failed to log page", zap.String("location", req.Location), zap.Error(err))
			return http.StatusInternalServerError, "Internal server error"
		}
		return http.StatusOK, "page logged"
	})
}

func (h *Handler) HandleLogLink(w http.ResponseWriter, r *http.Request) {
	h.siteOperation(w, r, func(ctx context.Context, site *usecase.Site, req request.SiteRequest) (int, string) {
		if req.Link == "" {
			return http.StatusBadRequest, "link is required"
		}
		if err := site.LogLink(ctx, req.Link); err != nil {
			h.logger.Error("Failed to log link", zap.String("location", req.Location), zap.Error(err))
			return http.StatusInternalServerError, "Internal server error"
		}
		return http.StatusOK, "link logged"
	})
}

func (h *Handler) HandleAddBroken(w http.ResponseWriter, r *http.Request) {
	h.siteOperation(w, r, func(ctx context.Context, site *usecase.Site, req request.SiteRequest) (int, string) {
		if req.Page == "" || req.Link == "" || req.Problem == "" {
			return http.StatusBadRequest, "page, link and problem are required"
		}
		if h.policy.Ignored(req.Link) {
			return http.StatusOK, "ignored"
		}
		// Stored verbatim so blacklist entries for the same string match.
		if err := site.AddBroken(ctx, req.Page, req.Link, req.Problem); err != nil {
			h.logger.Error("Failed to add broken link", zap.String("location", req.Location), zap.Error(err))
			return http.StatusInternalServerError, "Internal server error"
		}
		return http.StatusCreated, "recorded"
	})
}

func (h *Handler) HandleResetCounters(w http.ResponseWriter, r *http.Request) {
	h.siteOperation(w, r, func(ctx context.Context, site *usecase.Site, req request.SiteRequest) (int, string) {
		if err := site.ResetCounters(ctx); err != nil {
			h.logger.Error("Failed to reset counters", zap.String("location", req.Location), zap.Error(err))
			return http.StatusInternalServerError, "Internal server error"
		}
		return http.StatusOK, "counters reset"
	})
}

func (h *Handler) HandleFlushIssues(w http.ResponseWriter, r *http.Request) {
	h.siteOperation(w, r, func(ctx context.Context, site *usecase.Site, req request.SiteRequest) (int, string) {
		if err := site.FlushIssues(ctx); err != nil {
			h.logger.Error("Failed to flush issues", zap.String("location", req.Location), zap.Error(err))
			return http.StatusInternalServerError, "Internal server error"
		}
		return http.StatusOK, "issues flushed"
	})
}

func (h *Handler) HandleIssues(w http.ResponseWriter, r *http.Request) {
	site, ok := h.loadSite(w, r, r.URL.Query().Get("location"))
	if !ok {
		return
	}
	issues, err := site.LinksByProblemByPage(r.Context())
	if err != nil {
		h.internalError(w, "Failed to load issues", err)
		return
	}
	h.writeJSON(w, http.StatusOK, issues)
}

func (h *Handler) HandleBlacklistedLinks(w http.ResponseWriter, r *http.Request) {
	site, ok := h.loadSite(w, r, r.URL.Query().Get("location"))
	if !ok {
		return
	}
	pages, err := site.PagesByBlacklistedLink(r.Context())
	if err != nil {
		h.internalError(w, "Failed to load blacklisted links", err)
		return
	}
	h.writeJSON(w, http.StatusOK, pages)
}

func (h *Handler) HandleBlacklist(w http.ResponseWriter, r *http.Request) {
	h.siteOperation(w, r, func(ctx context.Context, site *usecase.Site, req request.SiteRequest) (int, string) {
		if req.Link == "" {
			return http.StatusBadRequest, "link is required"
		}
		add := site.Blacklist
		if req.Temporary {
			add = site.TempBlacklist
		}
		if err := add(ctx, req.Link); err != nil {
			h.logger.Error("Failed to blacklist link", zap.String("location", req.Location), zap.Error(err))
			return http.StatusInternalServerError, "Internal server error"
		}
		return http.StatusOK, "blacklisted"
	})
}

func (h *Handler) HandleRemoveFromBlacklist(w http.ResponseWriter, r *http.Request) {
	h.siteOperation(w, r, func(ctx context.Context, site *usecase.Site, req request.SiteRequest) (int, string) {
		if req.Link == "" {
			return http.StatusBadRequest, "link is required"
		}
		remove := site.RemoveFromBlacklist
		if req.Temporary {
			remove = site.RemoveFromTempBlacklist
		}
		if err := remove(ctx, req.Link); err != nil {
			h.logger.Error("Failed to remove link from blacklist", zap.String("location", req.Location), zap.Error(err))
			return http.StatusInternalServerError, "Internal server error"
		}
		return http.StatusOK, "removed"
	})
}

func (h *Handler) HandleFlushTempBlacklist(w http.ResponseWriter, r *http.Request) {
	h.siteOperation(w, r, func(ctx context.Context, site *usecase.Site, req request.SiteRequest) (int, string) {
		if err := site.FlushTempBlacklist(ctx); err != nil {
			h.logger.Error("Failed to flush temporary blacklist", zap.String("location", req.Location), zap.Error(err))
			return http.StatusInternalServerError, "Internal server error"
		}
		return http.StatusOK, "temporary blacklist flushed"
	})
}

// --- Helpers ---

// siteOperation decodes a SiteRequest, loads the site and runs op.
func (h *Handler) siteOperation(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, site *usecase.Site, req request.SiteRequest) (int, string),
) {
	var req request.SiteRequest
	if !h.decode(w, r, &req) {
		return
	}
	site, ok := h.loadSite(w, r, req.Location)
	if !ok {
		return
	}

	status, message := op(r.Context(), site, req)
	if status >= http.StatusBadRequest {
		h.writeJSONError(w, message, status)
		return
	}
	h.writeJSON(w, status, response.StatusResponse{Status: "success", Message: message})
}

func (h *Handler) loadSite(w http.ResponseWriter, r *http.Request, location string) (*usecase.Site, bool) {
	if location == "" {
		h.writeJSONError(w, "location is required", http.StatusBadRequest)
		return nil, false
	}
	site, err := h.registry.Get(r.Context(), location)
	if err != nil {
		h.usecaseError(w, "Failed to load site", err)
		return nil, false
	}
	return site, true
}

func (h *Handler) siteResponse(ctx context.Context, site *usecase.Site) (response.SiteResponse, error) {
	counters, err := site.Counters(ctx)
	if err != nil {
		return response.SiteResponse{}, err
	}
	active, err := site.BrokenLinksCount(ctx)
	if err != nil {
		return response.SiteResponse{}, err
	}
	return response.SiteResponse{
		Location:     site.Location(),
		Properties:   site.Properties(),
		Counters:     counters,
		ActiveBroken: active,
	}, nil
}

func (h *Handler) writeSite(w http.ResponseWriter, r *http.Request, status int, site *usecase.Site) {
	resp, err := h.siteResponse(r.Context(), site)
	if err != nil {
		h.internalError(w, "Failed to load site", err)
		return
	}
	h.writeJSON(w, status, resp)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handler) usecaseError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, usecase.ErrSiteNotFound):
		h.writeJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, usecase.ErrLocationRequired):
		h.writeJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		h.internalError(w, message, err)
	}
}

func (h *Handler) internalError(w http.ResponseWriter, message string, err error) {
	h.logger.Error(message, zap.Error(err))
	h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
