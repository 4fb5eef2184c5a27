package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/linkcheck-service/internal/entity"
)

func TestBlacklistRepo_AddRemove(t *testing.T) {
	t.Parallel()
	mr, client := newTestClient(t)
	repo := NewBlacklistRepo(client, testPrefix)
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, loc, entity.BlacklistPermanent, "http://b.com"))
	require.NoError(t, repo.Add(ctx, loc, entity.BlacklistTemporary, "http://c.com"))

	ok, err := mr.SIsMember(key("blacklist"), "http://b.com")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = mr.SIsMember(key("blacklist:temp"), "http://c.com")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, repo.Remove(ctx, loc, entity.BlacklistPermanent, "http://b.com"))
	require.NoError(t, repo.Remove(ctx, loc, entity.BlacklistPermanent, "http://never.com"))

	assert.False(t, mr.Exists(key("blacklist")))
}

func TestBlacklistRepo_FlushTemporaryKeepsPermanent(t *testing.T) {
	t.Parallel()
	mr, client := newTestClient(t)
	repo := NewBlacklistRepo(client, testPrefix)
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, loc, entity.BlacklistPermanent, "http://b.com"))
	require.NoError(t, repo.Add(ctx, loc, entity.BlacklistTemporary, "http://c.com"))

	require.NoError(t, repo.Flush(ctx, loc, entity.BlacklistTemporary))

	assert.False(t, mr.Exists(key("blacklist:temp")))

	perm, err := mr.Members(key("blacklist"))
	require.NoError(t, err)
	assert.Equal(t, []string{"http://b.com"}, perm)
}

func TestBlacklistRepo_AllAndRemoveEverywhere(t *testing.T) {
	t.Parallel()
	_, client := newTestClient(t)
	repo := NewBlacklistRepo(client, testPrefix)
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, loc, entity.BlacklistPermanent, "http://b.com"))
	require.NoError(t, repo.Add(ctx, loc, entity.BlacklistTemporary, "http://b.com"))
	require.NoError(t, repo.Add(ctx, loc, entity.BlacklistTemporary, "http://a.com"))

	all, err := repo.All(ctx, loc)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://a.com", "http://b.com"}, all)

	require.NoError(t, repo.RemoveEverywhere(ctx, loc, "http://b.com"))

	all, err = repo.All(ctx, loc)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://a.com"}, all)
}
