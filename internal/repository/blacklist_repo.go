package repository

import (
	"context"

	"github.com/user/linkcheck-service/internal/entity"
)

// BlacklistRepository defines the per-site suppression sets.
type BlacklistRepository interface {
	Add(ctx context.Context, location string, kind entity.BlacklistKind, link string) error
	Remove(ctx context.Context, location string, kind entity.BlacklistKind, link string) error
	// RemoveEverywhere drops the link from both sets.
	RemoveEverywhere(ctx context.Context, location, link string) error
	Flush(ctx context.Context, location string, kind entity.BlacklistKind) error
	// All returns the union of both sets.
	All(ctx context.Context, location string) ([]string, error)
}
