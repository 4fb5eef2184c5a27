package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSiteRegistry_Create(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	site, err := f.registry.Create(ctx, map[string]string{"location": "http://new.example.com"})
	require.NoError(t, err)
	require.NotNil(t, site)
	assert.Equal(t, "http://new.example.com", site.Location())
	assert.Contains(t, f.members(t, testPrefix+":sites"), "http://new.example.com")

	loaded, err := f.registry.Get(ctx, "http://new.example.com")
	require.NoError(t, err)
	assert.Equal(t, "http://new.example.com", loaded.Location())
}

func TestSiteRegistry_CreateWithoutLocationFails(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	site, err := f.registry.Create(context.Background(), map[string]string{"irrelevant": "ok"})
	require.ErrorIs(t, err, ErrLocationRequired)
	assert.Nil(t, site)
	assert.Empty(t, f.mr.Keys())
}

func TestSiteRegistry_ArbitraryProperties(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	site, err := f.registry.Create(ctx, map[string]string{"location": "http://new.example.com", "magic": "yes"})
	require.NoError(t, err)

	assert.Equal(t, "yes", f.mr.HGet(testPrefix+":http://new.example.com", "magic"))
	magic, ok := site.Get("magic")
	assert.True(t, ok)
	assert.Equal(t, "yes", magic)

	loaded, err := f.registry.Get(ctx, "http://new.example.com")
	require.NoError(t, err)
	magic, _ = loaded.Get("magic")
	assert.Equal(t, "yes", magic)
}

func TestSiteRegistry_GetUnknown(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	site, err := f.registry.Get(context.Background(), "http://nowhere.example.com")
	require.ErrorIs(t, err, ErrSiteNotFound)
	assert.Nil(t, site)
}

func TestSiteRegistry_All(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedSite("http://example.com", time.Unix(0, 0))
	f.seedSite("http://new.example.com", time.Unix(0, 0))

	sites, err := f.registry.All(context.Background())
	require.NoError(t, err)
	require.Len(t, sites, 2)
	assert.Equal(t, "http://example.com", sites[0].Location())
	assert.Equal(t, "http://new.example.com", sites[1].Location())
}

func TestSiteRegistry_SummaryReportHeader(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedSite("http://example.com", time.Unix(0, 0))

	report, err := f.registry.SummaryReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Community,Pages,Checked,Broken\n", report)
}

func TestSiteRegistry_SummaryReportOnlyRecent(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	f.seedSite("http://example.com", time.Unix(0, 0))
	f.seedSite("http://another.com", time.Now())

	another := f.site(t, "http://another.com")
	require.NoError(t, another.LogPage(ctx, "http://another.com/"))
	require.NoError(t, another.LogLink(ctx, "http://a.com"))
	require.NoError(t, another.LogLink(ctx, "http://b.com"))
	require.NoError(t, another.AddBroken(ctx, "http://another.com/", "http://b.com", "404"))

	report, err := f.registry.SummaryReport(ctx)
	require.NoError(t, err)
	lines := strings.SplitAfter(strings.TrimSuffix(report, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Community,Pages,Checked,Broken\n", lines[0])
	assert.Equal(t, "http://another.com,1,2,1", lines[1])

	f.seedSite("http://defunct.com", time.Unix(0, 0))
	report, err = f.registry.SummaryReport(ctx)
	require.NoError(t, err)
	assert.NotContains(t, report, "defunct")
	assert.Contains(t, report, "another")
}

func TestSiteRegistry_SummaryReportWritesLocationUnquoted(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	const odd = `http://example.com/a,b?q="x"`
	f.seedSite(odd, time.Now())

	report, err := f.registry.SummaryReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Community,Pages,Checked,Broken\n"+odd+",0,0,0\n", report)
}

func TestSiteRegistry_SummariesRespectRecencyWindow(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	now := time.Unix(1_700_000_000, 0)
	f.registry.now = func() time.Time { return now }
	f.seedSite("http://fresh.example.com", now.Add(-testRecency+time.Minute))
	f.seedSite("http://stale.example.com", now.Add(-testRecency))

	rows, err := f.registry.Summaries(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "http://fresh.example.com", rows[0].Location)
}
