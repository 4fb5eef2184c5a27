package redis

import (
	"context"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"
	"github.com/user/linkcheck-service/internal/entity"
)

// BlacklistRepoImpl provides a concrete implementation for the
// BlacklistRepository interface using two Redis sets per site.
type BlacklistRepoImpl struct {
	client *redis.Client
	keys   keyspace
}

// NewBlacklistRepo creates a new instance of BlacklistRepoImpl.
func NewBlacklistRepo(client *redis.Client, prefix string) *BlacklistRepoImpl {
	return &BlacklistRepoImpl{client: client, keys: newKeyspace(prefix)}
}

func (r *BlacklistRepoImpl) Add(ctx context.Context, location string, kind entity.BlacklistKind, link string) error {
	if err := r.client.SAdd(ctx, r.keys.blacklist(location, kind), link).Err(); err != nil {
		return fmt.Errorf("failed to add %s to %s blacklist of %s: %w", link, kind, location, err)
	}
	return nil
}

func (r *BlacklistRepoImpl) Remove(ctx context.Context, location string, kind entity.BlacklistKind, link string) error {
	if err := r.client.SRem(ctx, r.keys.blacklist(location, kind), link).Err(); err != nil {
		return fmt.Errorf("failed to remove %s from %s blacklist of %s: %w", link, kind, location, err)
	}
	return nil
}

func (r *BlacklistRepoImpl) RemoveEverywhere(ctx context.Context, location, link string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, kind := range entity.BlacklistKinds {
			pipe.SRem(ctx, r.keys.blacklist(location, kind), link)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to remove %s from blacklists of %s: %w", link, location, err)
	}
	return nil
}

func (r *BlacklistRepoImpl) Flush(ctx context.Context, location string, kind entity.BlacklistKind) error {
	if err := r.client.Del(ctx, r.keys.blacklist(location, kind)).Err(); err != nil {
		return fmt.Errorf("failed to flush %s blacklist of %s: %w", kind, location, err)
	}
	return nil
}

func (r *BlacklistRepoImpl) All(ctx context.Context, location string) ([]string, error) {
	links, err := r.client.SUnion(ctx,
		r.keys.blacklist(location, entity.BlacklistPermanent),
		r.keys.blacklist(location, entity.BlacklistTemporary),
	).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read blacklists of %s: %w", location, err)
	}
	slices.Sort(links)
	return links, nil
}
