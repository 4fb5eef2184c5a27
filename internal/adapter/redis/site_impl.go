package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/user/linkcheck-service/internal/entity"
)

// SiteRepoImpl provides a concrete implementation for the SiteRepository
// interface using a Redis set of locations and one hash per site.
type SiteRepoImpl struct {
	client *redis.Client
	keys   keyspace
}

// NewSiteRepo creates a new instance of SiteRepoImpl.
func NewSiteRepo(client *redis.Client, prefix string) *SiteRepoImpl {
	return &SiteRepoImpl{client: client, keys: newKeyspace(prefix)}
}

// Create registers the location and writes every property in one transaction.
func (r *SiteRepoImpl) Create(ctx context.Context, location string, props map[string]string) error {
	fields := make(map[string]any, len(props)+1)
	for k, v := range props {
		fields[k] = v
	}
	fields[entity.PropLocation] = location

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, r.keys.sites(), location)
		pipe.HSet(ctx, r.keys.site(location), fields)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create site %s: %w", location, err)
	}
	return nil
}

// Find loads the site hash. A location missing from the site index is not found,
// even if a stale hash exists.
func (r *SiteRepoImpl) Find(ctx context.Context, location string) (*entity.Site, bool, error) {
	registered, err := r.client.SIsMember(ctx, r.keys.sites(), location).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up site %s: %w", location, err)
	}
	if !registered {
		return nil, false, nil
	}

	props, err := r.client.HGetAll(ctx, r.keys.site(location)).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to load site %s: %w", location, err)
	}
	if _, ok := props[entity.PropLocation]; !ok {
		props[entity.PropLocation] = location
	}
	return &entity.Site{Location: location, Properties: props}, true, nil
}

// Locations returns the members of the site index.
func (r *SiteRepoImpl) Locations(ctx context.Context) ([]string, error) {
	locations, err := r.client.SMembers(ctx, r.keys.sites()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	return locations, nil
}

// SetProperty writes one field of the site hash.
func (r *SiteRepoImpl) SetProperty(ctx context.Context, location, key, value string) error {
	if err := r.client.HSet(ctx, r.keys.site(location), key, value).Err(); err != nil {
		return fmt.Errorf("failed to set %s on site %s: %w", key, location, err)
	}
	return nil
}

// IncrCounter atomically increments one counter.
func (r *SiteRepoImpl) IncrCounter(ctx context.Context, location string, counter entity.Counter) error {
	if err := r.client.Incr(ctx, r.keys.counter(location, counter)).Err(); err != nil {
		return fmt.Errorf("failed to increment %s counter for %s: %w", counter, location, err)
	}
	return nil
}

// Counters reads all counters; missing keys read as zero.
func (r *SiteRepoImpl) Counters(ctx context.Context, location string) (entity.Counters, error) {
	keys := make([]string, len(entity.AllCounters))
	for i, c := range entity.AllCounters {
		keys[i] = r.keys.counter(location, c)
	}
	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return entity.Counters{}, fmt.Errorf("failed to read counters for %s: %w", location, err)
	}

	var out entity.Counters
	targets := []*int64{&out.Pages, &out.Checked, &out.Broken}
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return entity.Counters{}, fmt.Errorf("corrupt %s counter for %s: %w", entity.AllCounters[i], location, err)
		}
		*targets[i] = n
	}
	return out, nil
}

// ResetCounters sets every counter to zero.
func (r *SiteRepoImpl) ResetCounters(ctx context.Context, location string) error {
	pairs := make([]any, 0, 2*len(entity.AllCounters))
	for _, c := range entity.AllCounters {
		pairs = append(pairs, r.keys.counter(location, c), 0)
	}
	if err := r.client.MSet(ctx, pairs...).Err(); err != nil {
		return fmt.Errorf("failed to reset counters for %s: %w", location, err)
	}
	return nil
}

// Ping checks the Redis connection.
func (r *SiteRepoImpl) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
