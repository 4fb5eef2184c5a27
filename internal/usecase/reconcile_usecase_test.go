package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/linkcheck-service/internal/entity"
)

func TestPurgeOrphanedBlacklistItems_RemovesOrphansAndNothingElse(t *testing.T) {
	t.Parallel()
	f, site := newExampleSite(t)
	ctx := context.Background()

	for _, link := range []string{"http://a.com", "http://b.com", "http://c.com"} {
		mustAddBroken(t, site, "http://example.com/a", link, "problem1")
		require.NoError(t, site.Blacklist(ctx, link))
	}

	structure, err := site.PagesByBlacklistedLink(ctx)
	require.NoError(t, err)
	for _, link := range []string{"http://a.com", "http://b.com", "http://c.com"} {
		assert.Equal(t, []string{"http://example.com/a"}, structure[link])
	}

	// Simulate a new crawl.
	require.NoError(t, site.ResetCounters(ctx))
	require.NoError(t, site.FlushTempBlacklist(ctx))
	require.NoError(t, site.FlushIssues(ctx))
	mustAddBroken(t, site, "http://example.com/a", "http://c.com", "problem1")

	results, err := f.registry.PurgeOrphanedBlacklistItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, []entity.PurgeResult{
		{Location: exampleSite, Purged: []string{"http://a.com", "http://b.com"}},
	}, results)

	structure, err = site.PagesByBlacklistedLink(ctx)
	require.NoError(t, err)
	assert.NotContains(t, structure, "http://a.com")
	assert.NotContains(t, structure, "http://b.com")
	assert.Equal(t, []string{"http://example.com/a"}, structure["http://c.com"])
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.BlacklistPurged.WithLabelValues(exampleSite)))
}

func TestPurgeOrphanedBlacklistItems_SweepsEverySite(t *testing.T) {
	t.Parallel()
	f, first := newExampleSite(t)
	ctx := context.Background()
	f.seedSite("http://other.example.com", time.Now())
	second := f.site(t, "http://other.example.com")

	require.NoError(t, first.Blacklist(ctx, "http://first-gone.com"))
	require.NoError(t, second.TempBlacklist(ctx, "http://gone.com"))

	results, err := f.registry.PurgeOrphanedBlacklistItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, []entity.PurgeResult{
		{Location: exampleSite, Purged: []string{"http://first-gone.com"}},
		{Location: "http://other.example.com", Purged: []string{"http://gone.com"}},
	}, results)
	assert.Empty(t, f.members(t, siteKey("blacklist")))
	assert.Empty(t, f.members(t, testPrefix+":http://other.example.com:blacklist:temp"))
}

func TestPurgeOrphanedBlacklistItems_KeepsLinksLiveOnAnotherSite(t *testing.T) {
	t.Parallel()
	f, first := newExampleSite(t)
	ctx := context.Background()
	f.seedSite("http://other.example.com", time.Now())
	second := f.site(t, "http://other.example.com")

	// The link is live on the first site only; the second site's entry
	// is still backed by that record.
	mustAddBroken(t, first, "http://example.com/a", "http://shared.com", "problem1")
	require.NoError(t, first.TempBlacklist(ctx, "http://shared.com"))
	require.NoError(t, second.Blacklist(ctx, "http://shared.com"))
	require.NoError(t, second.TempBlacklist(ctx, "http://gone.com"))

	results, err := f.registry.PurgeOrphanedBlacklistItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, []entity.PurgeResult{
		{Location: "http://other.example.com", Purged: []string{"http://gone.com"}},
	}, results)

	assert.Equal(t, []string{"http://shared.com"}, f.members(t, siteKey("blacklist:temp")))
	assert.Equal(t, []string{"http://shared.com"}, f.members(t, testPrefix+":http://other.example.com:blacklist"))
	assert.Empty(t, f.members(t, testPrefix+":http://other.example.com:blacklist:temp"))

	// Once the first site's index is flushed, nothing references it anywhere.
	require.NoError(t, first.FlushIssues(ctx))
	results, err = f.registry.PurgeOrphanedBlacklistItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, []entity.PurgeResult{
		{Location: exampleSite, Purged: []string{"http://shared.com"}},
		{Location: "http://other.example.com", Purged: []string{"http://shared.com"}},
	}, results)
}

func TestPurgeOrphanedBlacklistItems_NothingToPurge(t *testing.T) {
	t.Parallel()
	f, _ := newExampleSite(t)

	results, err := f.registry.PurgeOrphanedBlacklistItems(context.Background())
	require.NoError(t, err)
	assert.Empty(t, results)
}
