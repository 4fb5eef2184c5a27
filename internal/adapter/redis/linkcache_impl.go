package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// LinkCacheRepoImpl provides a concrete implementation for the
// LinkCacheRepository interface using a Redis set per generation.
type LinkCacheRepoImpl struct {
	client *redis.Client
	keys   keyspace
	now    func() time.Time
}

// NewLinkCacheRepo creates a new instance of LinkCacheRepoImpl.
func NewLinkCacheRepo(client *redis.Client, prefix string) *LinkCacheRepoImpl {
	return &LinkCacheRepoImpl{client: client, keys: newKeyspace(prefix), now: time.Now}
}

// currentGeneration returns the generation id, or "" if none has started.
func (r *LinkCacheRepoImpl) currentGeneration(ctx context.Context) (string, error) {
	gen, err := r.client.Get(ctx, r.keys.linkCacheGeneration()).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read link cache generation: %w", err)
	}
	return gen, nil
}

// Add inserts the URL into the current generation. The first writer of a
// generation stamps it with the current time; SETNX keeps concurrent
// writers on the same generation.
func (r *LinkCacheRepoImpl) Add(ctx context.Context, url string) error {
	stamp := strconv.FormatInt(r.now().UnixMilli(), 10)
	if err := r.client.SetNX(ctx, r.keys.linkCacheGeneration(), stamp, 0).Err(); err != nil {
		return fmt.Errorf("failed to start link cache generation: %w", err)
	}
	gen, err := r.currentGeneration(ctx)
	if err != nil {
		return err
	}
	if gen == "" {
		// Reset ran between SETNX and GET; the URL belongs to the new generation.
		return r.Add(ctx, url)
	}
	if err := r.client.SAdd(ctx, r.keys.linkCache(gen), url).Err(); err != nil {
		return fmt.Errorf("failed to add %s to link cache: %w", url, err)
	}
	return nil
}

// Contains checks if the URL is a member of the current generation.
func (r *LinkCacheRepoImpl) Contains(ctx context.Context, url string) (bool, error) {
	gen, err := r.currentGeneration(ctx)
	if err != nil || gen == "" {
		return false, err
	}
	ok, err := r.client.SIsMember(ctx, r.keys.linkCache(gen), url).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check link cache for %s: %w", url, err)
	}
	return ok, nil
}

// Size returns the number of URLs in the current generation.
func (r *LinkCacheRepoImpl) Size(ctx context.Context) (int64, error) {
	gen, err := r.currentGeneration(ctx)
	if err != nil || gen == "" {
		return 0, err
	}
	n, err := r.client.SCard(ctx, r.keys.linkCache(gen)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to size link cache: %w", err)
	}
	return n, nil
}

// GenerationStart returns the time the current generation was stamped.
func (r *LinkCacheRepoImpl) GenerationStart(ctx context.Context) (time.Time, bool, error) {
	gen, err := r.currentGeneration(ctx)
	if err != nil || gen == "" {
		return time.Time{}, false, err
	}
	ms, err := strconv.ParseInt(gen, 10, 64)
	if err != nil {
		// An unreadable stamp is treated as infinitely old so flush can recover.
		return time.Time{}, true, nil
	}
	return time.UnixMilli(ms), true, nil
}

// Reset deletes the current generation set and its stamp.
func (r *LinkCacheRepoImpl) Reset(ctx context.Context) error {
	gen, err := r.currentGeneration(ctx)
	if err != nil || gen == "" {
		return err
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.keys.linkCache(gen))
		pipe.Del(ctx, r.keys.linkCacheGeneration())
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to reset link cache: %w", err)
	}
	return nil
}
