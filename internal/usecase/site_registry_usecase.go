package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/user/linkcheck-service/internal/entity"
	"github.com/user/linkcheck-service/internal/repository"
	"github.com/user/linkcheck-service/pkg/metrics"
	"go.uber.org/zap"
)

var (
	ErrLocationRequired = errors.New("site location is required")
	ErrSiteNotFound     = errors.New("site not found")
)

// summaryHeader is the first record of the summary report.
var summaryHeader = []string{"Community", "Pages", "Checked", "Broken"}

// SiteRegistry creates, loads and reports on registered sites.
type SiteRegistry struct {
	sites      repository.SiteRepository
	issues     repository.IssueRepository
	blacklists repository.BlacklistRepository
	reconciler *OrphanReconciler
	recency    time.Duration
	metrics    *metrics.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// NewSiteRegistry creates a new SiteRegistry. Sites checked longer than
// recency ago are left out of the summary report.
func NewSiteRegistry(
	sites repository.SiteRepository,
	issues repository.IssueRepository,
	blacklists repository.BlacklistRepository,
	reconciler *OrphanReconciler,
	recency time.Duration,
	m *metrics.Metrics,
	logger *zap.Logger,
) *SiteRegistry {
	return &SiteRegistry{
		sites:      sites,
		issues:     issues,
		blacklists: blacklists,
		reconciler: reconciler,
		recency:    recency,
		metrics:    m,
		logger:     logger,
		now:        time.Now,
	}
}

// Create registers a site from attrs, which must include "location". Every
// other attribute is stored verbatim.
func (r *SiteRegistry) Create(ctx context.Context, attrs map[string]string) (*Site, error) {
	location := attrs[entity.PropLocation]
	if location == "" {
		return nil, ErrLocationRequired
	}
	if err := r.sites.Create(ctx, location, attrs); err != nil {
		return nil, err
	}
	r.logger.Info("Site created", zap.String("location", location), zap.Int("properties", len(attrs)))

	props := make(map[string]string, len(attrs))
	for k, v := range attrs {
		props[k] = v
	}
	return r.wrap(&entity.Site{Location: location, Properties: props}), nil
}

// Get loads a registered site.
func (r *SiteRegistry) Get(ctx context.Context, location string) (*Site, error) {
	data, ok, err := r.sites.Find(ctx, location)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSiteNotFound
	}
	return r.wrap(data), nil
}

// All loads every registered site, ordered by location.
func (r *SiteRegistry) All(ctx context.Context) ([]*Site, error) {
	locations, err := r.sites.Locations(ctx)
	if err != nil {
		return nil, err
	}
	slices.Sort(locations)

	out := make([]*Site, 0, len(locations))
	for _, loc := range locations {
		site, err := r.Get(ctx, loc)
		if errors.Is(err, ErrSiteNotFound) {
			// Removed from the index since we listed it.
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, site)
	}
	return out, nil
}

// PurgeOrphanedBlacklistItems runs the orphan sweep over every site.
func (r *SiteRegistry) PurgeOrphanedBlacklistItems(ctx context.Context) ([]entity.PurgeResult, error) {
	return r.reconciler.Purge(ctx)
}

// Summaries returns one row per site checked within the recency window.
func (r *SiteRegistry) Summaries(ctx context.Context) ([]entity.SiteSummary, error) {
	sites, err := r.All(ctx)
	if err != nil {
		return nil, err
	}

	now := r.now()
	var rows []entity.SiteSummary
	for _, site := range sites {
		checked, ok := site.LastChecked()
		if !ok || now.Sub(checked) >= r.recency {
			continue
		}
		counters, err := site.Counters(ctx)
		if err != nil {
			return nil, err
		}
		active, err := site.BrokenLinksCount(ctx)
		if err != nil {
			return nil, err
		}
		rows = append(rows, entity.SiteSummary{
			Location:     site.Location(),
			Counters:     counters,
			ActiveBroken: active,
			LastChecked:  &checked,
		})
	}
	return rows, nil
}

// SummaryReport renders the recently checked sites as comma separated
// lines, header first. Fields are written as-is with no quoting.
func (r *SiteRegistry) SummaryReport(ctx context.Context) (string, error) {
	rows, err := r.Summaries(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(strings.Join(summaryHeader, ","))
	b.WriteByte('\n')
	for _, row := range rows {
		fmt.Fprintf(&b, "%s,%d,%d,%d\n",
			row.Location,
			row.Counters.Pages,
			row.Counters.Checked,
			row.Counters.Broken,
		)
	}
	return b.String(), nil
}

func (r *SiteRegistry) wrap(data *entity.Site) *Site {
	return &Site{data: data, reg: r}
}
