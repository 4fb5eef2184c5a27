package redis

import "github.com/user/linkcheck-service/internal/entity"

// keyspace builds the Redis key layout. Every key is rooted at the global
// prefix, so changing the prefix orphans all existing data.
type keyspace struct {
	prefix string
}

func newKeyspace(prefix string) keyspace {
	return keyspace{prefix: prefix}
}

func (k keyspace) sites() string { return k.prefix + ":sites" }

func (k keyspace) site(location string) string { return k.prefix + ":" + location }

func (k keyspace) pages(location string) string { return k.site(location) + ":pages" }

func (k keyspace) page(location, page string) string { return k.site(location) + ":page:" + page }

func (k keyspace) links(location string) string { return k.site(location) + ":links" }

func (k keyspace) link(location, link string) string { return k.site(location) + ":link:" + link }

func (k keyspace) problems(location string) string { return k.site(location) + ":problems" }

func (k keyspace) problem(location, problem string) string {
	return k.site(location) + ":problem:" + problem
}

func (k keyspace) blacklist(location string, kind entity.BlacklistKind) string {
	if kind == entity.BlacklistTemporary {
		return k.site(location) + ":blacklist:temp"
	}
	return k.site(location) + ":blacklist"
}

func (k keyspace) counter(location string, c entity.Counter) string {
	return k.site(location) + ":count:" + string(c)
}

func (k keyspace) linkCacheGeneration() string { return k.prefix + ":linkcache" }

func (k keyspace) linkCache(generation string) string { return k.prefix + ":linkcache:" + generation }
