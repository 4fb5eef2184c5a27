package usecase

import (
	"context"
	"slices"

	"github.com/user/linkcheck-service/internal/entity"
	"github.com/user/linkcheck-service/internal/repository"
	"github.com/user/linkcheck-service/pkg/metrics"
	"go.uber.org/zap"
)

// OrphanReconciler removes blacklist entries that no broken link record
// references any more. It is a maintenance sweep, run between crawl passes
// with no crawl writes in flight.
type OrphanReconciler struct {
	sites      repository.SiteRepository
	issues     repository.IssueRepository
	blacklists repository.BlacklistRepository
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewOrphanReconciler creates a new OrphanReconciler.
func NewOrphanReconciler(
	sites repository.SiteRepository,
	issues repository.IssueRepository,
	blacklists repository.BlacklistRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) *OrphanReconciler {
	return &OrphanReconciler{
		sites:      sites,
		issues:     issues,
		blacklists: blacklists,
		metrics:    m,
		logger:     logger,
	}
}

// Purge sweeps every registered site. Referencing pages are recomputed per
// link at sweep time, so a link re-added after a flush is kept. An entry is
// only an orphan when no registered site's index references the link. Only
// sites that lost entries appear in the result.
func (o *OrphanReconciler) Purge(ctx context.Context) ([]entity.PurgeResult, error) {
	locations, err := o.sites.Locations(ctx)
	if err != nil {
		return nil, err
	}
	slices.Sort(locations)

	var results []entity.PurgeResult
	for _, loc := range locations {
		purged, err := o.purgeSite(ctx, loc, locations)
		if err != nil {
			return results, err
		}
		if len(purged) > 0 {
			results = append(results, entity.PurgeResult{Location: loc, Purged: purged})
		}
	}
	return results, nil
}

func (o *OrphanReconciler) purgeSite(ctx context.Context, location string, locations []string) ([]string, error) {
	pagesByLink, err := pagesByBlacklistedLink(ctx, o.issues, o.blacklists, location)
	if err != nil {
		return nil, err
	}

	var candidates []string
	for link, pages := range pagesByLink {
		if len(pages) == 0 {
			candidates = append(candidates, link)
		}
	}
	candidates, err = o.unreferencedElsewhere(ctx, location, locations, candidates)
	if err != nil {
		return nil, err
	}

	var purged []string
	for _, link := range candidates {
		if err := o.blacklists.RemoveEverywhere(ctx, location, link); err != nil {
			return purged, err
		}
		purged = append(purged, link)
		o.metrics.BlacklistPurged.WithLabelValues(location).Inc()
		o.logger.Info("Purged orphaned blacklist entry",
			zap.String("location", location),
			zap.String("link", link),
		)
	}
	slices.Sort(purged)
	return purged, nil
}

// unreferencedElsewhere drops the links that another site's index still
// references.
func (o *OrphanReconciler) unreferencedElsewhere(
	ctx context.Context,
	location string,
	locations []string,
	links []string,
) ([]string, error) {
	for _, other := range locations {
		if len(links) == 0 {
			break
		}
		if other == location {
			continue
		}
		pagesByLink, err := o.issues.PagesForLinks(ctx, other, links)
		if err != nil {
			return nil, err
		}
		links = slices.DeleteFunc(links, func(link string) bool {
			return len(pagesByLink[link]) > 0
		})
	}
	return links, nil
}
