package repository

import (
	"context"
	"time"
)

// LinkCacheRepository defines the storage contract for the check cache, a
// single generation-scoped set of already verified URLs.
type LinkCacheRepository interface {
	// Add inserts a URL into the current generation, starting one if needed.
	Add(ctx context.Context, url string) error
	// Contains reports whether the URL is in the current generation.
	Contains(ctx context.Context, url string) (bool, error)
	// Size returns the cardinality of the current generation.
	Size(ctx context.Context) (int64, error)
	// GenerationStart returns when the current generation began; ok is false
	// if there is no generation.
	GenerationStart(ctx context.Context) (start time.Time, ok bool, err error)
	// Reset drops the current generation and its members.
	Reset(ctx context.Context) error
}
