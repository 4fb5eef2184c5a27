package redis

import (
	"context"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"
	"github.com/user/linkcheck-service/internal/entity"
)

// IssueRepoImpl provides a concrete implementation for the IssueRepository
// interface. Each site keeps three forward/back set pairs:
// pages/page:{page}, links/link:{link} and problems/problem:{tag}.
type IssueRepoImpl struct {
	client *redis.Client
	keys   keyspace
}

// NewIssueRepo creates a new instance of IssueRepoImpl.
func NewIssueRepo(client *redis.Client, prefix string) *IssueRepoImpl {
	return &IssueRepoImpl{client: client, keys: newKeyspace(prefix)}
}

// AddBroken writes the record into every view and increments the broken
// counter inside one MULTI/EXEC, so readers see all of it or none of it.
func (r *IssueRepoImpl) AddBroken(ctx context.Context, location string, bl entity.BrokenLink) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, r.keys.pages(location), bl.Page)
		pipe.SAdd(ctx, r.keys.page(location, bl.Page), bl.Link)
		pipe.SAdd(ctx, r.keys.links(location), bl.Link)
		pipe.SAdd(ctx, r.keys.link(location, bl.Link), bl.Page)
		pipe.SAdd(ctx, r.keys.problems(location), bl.Problem)
		pipe.SAdd(ctx, r.keys.problem(location, bl.Problem), bl.Link)
		pipe.Incr(ctx, r.keys.counter(location, entity.CounterBroken))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to add broken link %s on %s: %w", bl.Link, bl.Page, err)
	}
	return nil
}

// Flush deletes the index sets and every per-member set they point to.
// Members are read first, so writes racing the flush may survive it.
func (r *IssueRepoImpl) Flush(ctx context.Context, location string) error {
	var pages, links, problems *redis.StringSliceCmd
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pages = pipe.SMembers(ctx, r.keys.pages(location))
		links = pipe.SMembers(ctx, r.keys.links(location))
		problems = pipe.SMembers(ctx, r.keys.problems(location))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to read issues for %s: %w", location, err)
	}

	keys := []string{r.keys.pages(location), r.keys.links(location), r.keys.problems(location)}
	for _, p := range pages.Val() {
		keys = append(keys, r.keys.page(location, p))
	}
	for _, l := range links.Val() {
		keys = append(keys, r.keys.link(location, l))
	}
	for _, t := range problems.Val() {
		keys = append(keys, r.keys.problem(location, t))
	}

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to flush issues for %s: %w", location, err)
	}
	return nil
}

// ActiveCount is |links - (blacklist ∪ blacklist:temp)|.
func (r *IssueRepoImpl) ActiveCount(ctx context.Context, location string) (int64, error) {
	active, err := r.client.SDiff(ctx,
		r.keys.links(location),
		r.keys.blacklist(location, entity.BlacklistPermanent),
		r.keys.blacklist(location, entity.BlacklistTemporary),
	).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count active broken links for %s: %w", location, err)
	}
	return int64(len(active)), nil
}

// LinksByProblemByPage intersects each page's links with each problem's
// links. Problems with no links on a page are left out of that page's map.
func (r *IssueRepoImpl) LinksByProblemByPage(ctx context.Context, location string) (map[string]map[string][]string, error) {
	var pagesCmd, problemsCmd *redis.StringSliceCmd
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pagesCmd = pipe.SMembers(ctx, r.keys.pages(location))
		problemsCmd = pipe.SMembers(ctx, r.keys.problems(location))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read issues for %s: %w", location, err)
	}
	pages, problems := pagesCmd.Val(), problemsCmd.Val()

	out := make(map[string]map[string][]string, len(pages))
	if len(pages) == 0 {
		return out, nil
	}

	type pair struct{ page, problem string }
	cmds := make(map[pair]*redis.StringSliceCmd, len(pages)*len(problems))
	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, p := range pages {
			for _, t := range problems {
				cmds[pair{p, t}] = pipe.SInter(ctx, r.keys.page(location, p), r.keys.problem(location, t))
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to group issues for %s: %w", location, err)
	}

	for _, p := range pages {
		out[p] = make(map[string][]string)
	}
	for k, cmd := range cmds {
		links := cmd.Val()
		if len(links) == 0 {
			continue
		}
		slices.Sort(links)
		out[k.page][k.problem] = links
	}
	return out, nil
}

// PagesForLinks looks up the referencing pages of each link.
func (r *IssueRepoImpl) PagesForLinks(ctx context.Context, location string, links []string) (map[string][]string, error) {
	out := make(map[string][]string, len(links))
	if len(links) == 0 {
		return out, nil
	}

	cmds := make(map[string]*redis.StringSliceCmd, len(links))
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, l := range links {
			cmds[l] = pipe.SMembers(ctx, r.keys.link(location, l))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read pages by link for %s: %w", location, err)
	}

	for l, cmd := range cmds {
		pages := cmd.Val()
		if pages == nil {
			pages = []string{}
		}
		slices.Sort(pages)
		out[l] = pages
	}
	return out, nil
}
