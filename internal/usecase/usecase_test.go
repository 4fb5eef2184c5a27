package usecase

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	redis_adapter "github.com/user/linkcheck-service/internal/adapter/redis"
	"github.com/user/linkcheck-service/pkg/config"
	"github.com/user/linkcheck-service/pkg/metrics"
	"go.uber.org/zap"
)

const (
	testPrefix  = "test-linkcheck"
	testRecency = 691_200 * time.Second
)

type fixture struct {
	mr        *miniredis.Miniredis
	metrics   *metrics.Metrics
	policy    *LinkPolicy
	cacheRepo *redis_adapter.LinkCacheRepoImpl
	registry  *SiteRegistry
}

// newFixture wires the usecases to a fresh in-process Redis.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	m := metrics.New(prometheus.NewRegistry())
	logger := zap.NewNop()

	policy, err := NewLinkPolicy([]string{"http", "https", "ftp"}, config.DefaultPermanentlyIgnore)
	require.NoError(t, err)

	sites := redis_adapter.NewSiteRepo(client, testPrefix)
	issues := redis_adapter.NewIssueRepo(client, testPrefix)
	blacklists := redis_adapter.NewBlacklistRepo(client, testPrefix)
	reconciler := NewOrphanReconciler(sites, issues, blacklists, m, logger)

	return &fixture{
		mr:        mr,
		metrics:   m,
		policy:    policy,
		cacheRepo: redis_adapter.NewLinkCacheRepo(client, testPrefix),
		registry:  NewSiteRegistry(sites, issues, blacklists, reconciler, testRecency, m, logger),
	}
}

func (f *fixture) linkCache(ttl time.Duration) *LinkCache {
	return NewLinkCache(f.cacheRepo, f.policy, ttl, f.metrics, zap.NewNop())
}

// seedSite registers a site directly in Redis, bypassing the registry.
func (f *fixture) seedSite(location string, lastChecked time.Time) {
	f.mr.SAdd(testPrefix+":sites", location)
	f.mr.HSet(testPrefix+":"+location,
		"location", location,
		"last_checked", strconv.FormatInt(lastChecked.Unix(), 10),
	)
}

func (f *fixture) site(t *testing.T, location string) *Site {
	t.Helper()
	site, err := f.registry.Get(context.Background(), location)
	require.NoError(t, err)
	return site
}

func (f *fixture) members(t *testing.T, key string) []string {
	t.Helper()
	if !f.mr.Exists(key) {
		return nil
	}
	members, err := f.mr.Members(key)
	require.NoError(t, err)
	return members
}
