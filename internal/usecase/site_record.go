package usecase

import (
	"context"
	"maps"
	"strconv"
	"time"

	"github.com/user/linkcheck-service/internal/entity"
	"github.com/user/linkcheck-service/internal/repository"
	"go.uber.org/zap"
)

// Site is a handle on one registered site. Properties are a snapshot taken
// when the handle was loaded; counters and the issues index are always read
// live from the store.
type Site struct {
	data *entity.Site
	reg  *SiteRegistry
}

func (s *Site) Location() string { return s.data.Location }

// Get returns a property from the snapshot.
func (s *Site) Get(key string) (string, bool) {
	v, ok := s.data.Properties[key]
	return v, ok
}

// Properties returns a copy of the property snapshot.
func (s *Site) Properties() map[string]string {
	return maps.Clone(s.data.Properties)
}

func (s *Site) LastChecked() (time.Time, bool) {
	return s.data.LastChecked()
}

// Set writes a property through to the store.
func (s *Site) Set(ctx context.Context, key, value string) error {
	if err := s.reg.sites.SetProperty(ctx, s.Location(), key, value); err != nil {
		return err
	}
	s.data.Properties[key] = value
	return nil
}

// MarkChecked stores t as last_checked in unix seconds.
func (s *Site) MarkChecked(ctx context.Context, t time.Time) error {
	return s.Set(ctx, entity.PropLastChecked, strconv.FormatInt(t.Unix(), 10))
}

// Refresh reloads the property snapshot.
func (s *Site) Refresh(ctx context.Context) error {
	data, ok, err := s.reg.sites.Find(ctx, s.Location())
	if err != nil {
		return err
	}
	if !ok {
		return ErrSiteNotFound
	}
	s.data = data
	return nil
}

// LogPage counts one crawled page. Repeat visits count again.
func (s *Site) LogPage(ctx context.Context, page string) error {
	return s.reg.sites.IncrCounter(ctx, s.Location(), entity.CounterPages)
}

// LogLink counts one checked link.
func (s *Site) LogLink(ctx context.Context, link string) error {
	return s.reg.sites.IncrCounter(ctx, s.Location(), entity.CounterChecked)
}

// AddBroken records that link on page failed with problem.
func (s *Site) AddBroken(ctx context.Context, page, link, problem string) error {
	bl := entity.BrokenLink{Page: page, Link: link, Problem: problem}
	if err := s.reg.issues.AddBroken(ctx, s.Location(), bl); err != nil {
		return err
	}
	s.reg.metrics.BrokenLinksRecorded.WithLabelValues(problem).Inc()
	return nil
}

func (s *Site) Counters(ctx context.Context) (entity.Counters, error) {
	return s.reg.sites.Counters(ctx, s.Location())
}

// ResetCounters zeroes the counters. The index and blacklists are untouched.
func (s *Site) ResetCounters(ctx context.Context) error {
	return s.reg.sites.ResetCounters(ctx, s.Location())
}

// FlushIssues empties the broken link index ahead of a new crawl pass.
// Counters and blacklists are untouched.
func (s *Site) FlushIssues(ctx context.Context) error {
	if err := s.reg.issues.Flush(ctx, s.Location()); err != nil {
		return err
	}
	s.reg.logger.Info("Issues flushed", zap.String("location", s.Location()))
	return nil
}

func (s *Site) Blacklist(ctx context.Context, link string) error {
	return s.reg.blacklists.Add(ctx, s.Location(), entity.BlacklistPermanent, link)
}

func (s *Site) RemoveFromBlacklist(ctx context.Context, link string) error {
	return s.reg.blacklists.Remove(ctx, s.Location(), entity.BlacklistPermanent, link)
}

func (s *Site) TempBlacklist(ctx context.Context, link string) error {
	return s.reg.blacklists.Add(ctx, s.Location(), entity.BlacklistTemporary, link)
}

func (s *Site) RemoveFromTempBlacklist(ctx context.Context, link string) error {
	return s.reg.blacklists.Remove(ctx, s.Location(), entity.BlacklistTemporary, link)
}

// FlushTempBlacklist clears the temporary blacklist only.
func (s *Site) FlushTempBlacklist(ctx context.Context) error {
	return s.reg.blacklists.Flush(ctx, s.Location(), entity.BlacklistTemporary)
}

// BrokenLinksCount is the number of indexed broken links in neither blacklist.
func (s *Site) BrokenLinksCount(ctx context.Context) (int64, error) {
	return s.reg.issues.ActiveCount(ctx, s.Location())
}

// LinksByProblemByPage returns page -> problem -> links, ignoring blacklists.
func (s *Site) LinksByProblemByPage(ctx context.Context) (map[string]map[string][]string, error) {
	return s.reg.issues.LinksByProblemByPage(ctx, s.Location())
}

// PagesByBlacklistedLink returns, for every blacklisted link, the pages that
// currently reference it. Orphaned links map to an empty slice.
func (s *Site) PagesByBlacklistedLink(ctx context.Context) (map[string][]string, error) {
	return pagesByBlacklistedLink(ctx, s.reg.issues, s.reg.blacklists, s.Location())
}

func pagesByBlacklistedLink(
	ctx context.Context,
	issues repository.IssueRepository,
	blacklists repository.BlacklistRepository,
	location string,
) (map[string][]string, error) {
	links, err := blacklists.All(ctx, location)
	if err != nil {
		return nil, err
	}
	return issues.PagesForLinks(ctx, location, links)
}
