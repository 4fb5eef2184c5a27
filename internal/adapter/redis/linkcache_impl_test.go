package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkCacheRepo_AddAndContains(t *testing.T) {
	t.Parallel()
	_, client := newTestClient(t)
	repo := NewLinkCacheRepo(client, testPrefix)
	ctx := context.Background()

	ok, err := repo.Contains(ctx, "http://a.com")
	require.NoError(t, err)
	assert.False(t, ok, "no generation yet")

	require.NoError(t, repo.Add(ctx, "http://a.com"))

	ok, err = repo.Contains(ctx, "http://a.com")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Contains(ctx, "http://b.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLinkCacheRepo_Idempotent(t *testing.T) {
	t.Parallel()
	mr, client := newTestClient(t)
	repo := NewLinkCacheRepo(client, testPrefix)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Add(ctx, "http://thing.com"))
	}

	n, err := repo.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	gen, err := mr.Get(testPrefix + ":linkcache")
	require.NoError(t, err)
	members, err := mr.Members(testPrefix + ":linkcache:" + gen)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://thing.com"}, members)
}

func TestLinkCacheRepo_GenerationStart(t *testing.T) {
	t.Parallel()
	_, client := newTestClient(t)
	repo := NewLinkCacheRepo(client, testPrefix)
	stamp := time.UnixMilli(1_700_000_000_000)
	repo.now = func() time.Time { return stamp }
	ctx := context.Background()

	_, ok, err := repo.GenerationStart(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Add(ctx, "http://a.com"))

	// A later add must not restamp the generation.
	repo.now = func() time.Time { return stamp.Add(time.Hour) }
	require.NoError(t, repo.Add(ctx, "http://b.com"))

	start, ok, err := repo.GenerationStart(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, start.Equal(stamp))
}

func TestLinkCacheRepo_Reset(t *testing.T) {
	t.Parallel()
	mr, client := newTestClient(t)
	repo := NewLinkCacheRepo(client, testPrefix)
	ctx := context.Background()

	require.NoError(t, repo.Reset(ctx), "reset without generation is a no-op")

	require.NoError(t, repo.Add(ctx, "http://a.com"))
	require.NoError(t, repo.Reset(ctx))

	ok, err := repo.Contains(ctx, "http://a.com")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, mr.Keys())

	require.NoError(t, repo.Add(ctx, "http://b.com"))
	n, err := repo.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
