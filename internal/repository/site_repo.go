package repository

import (
	"context"

	"github.com/user/linkcheck-service/internal/entity"
)

// SiteRepository defines the interface for the site index, site property
// hashes and per-site counters.
type SiteRepository interface {
	// Create registers the location and stores props verbatim.
	Create(ctx context.Context, location string, props map[string]string) error
	// Find returns the site or ok=false if the location is not registered.
	Find(ctx context.Context, location string) (site *entity.Site, ok bool, err error)
	// Locations returns every registered location.
	Locations(ctx context.Context) ([]string, error)
	SetProperty(ctx context.Context, location, key, value string) error

	IncrCounter(ctx context.Context, location string, counter entity.Counter) error
	Counters(ctx context.Context, location string) (entity.Counters, error)
	ResetCounters(ctx context.Context, location string) error
}
