package repository

import (
	"context"

	"github.com/user/linkcheck-service/internal/entity"
)

// IssueRepository defines the per-site broken link index.
type IssueRepository interface {
	// AddBroken files the record under every view and bumps the broken counter.
	AddBroken(ctx context.Context, location string, link entity.BrokenLink) error
	// Flush clears every view of the site's index. Counters and blacklists are kept.
	Flush(ctx context.Context, location string) error
	// ActiveCount returns the number of indexed links in neither blacklist.
	ActiveCount(ctx context.Context, location string) (int64, error)
	// LinksByProblemByPage returns page -> problem -> links.
	LinksByProblemByPage(ctx context.Context, location string) (map[string]map[string][]string, error)
	// PagesForLinks returns link -> referencing pages for every given link.
	// Links without pages map to an empty slice.
	PagesForLinks(ctx context.Context, location string, links []string) (map[string][]string, error)
}
