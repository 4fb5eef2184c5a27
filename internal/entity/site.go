package entity

import (
	"strconv"
	"time"
)

// Well-known site property keys.
const (
	PropLocation    = "location"
	PropLastChecked = "last_checked"
)

// Site mirrors the `{prefix}:{location}` Redis hash.
type Site struct {
	Location   string
	Properties map[string]string
}

// LastChecked parses the last_checked property, stored as unix seconds.
func (s *Site) LastChecked() (time.Time, bool) {
	raw, ok := s.Properties[PropLastChecked]
	if !ok {
		return time.Time{}, false
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(secs, 0), true
}

// Counter names one of the per-site crawl counters.
type Counter string

const (
	CounterPages   Counter = "pages"
	CounterChecked Counter = "checked"
	CounterBroken  Counter = "broken"
)

// AllCounters lists every counter in report order.
var AllCounters = []Counter{CounterPages, CounterChecked, CounterBroken}

// Counters holds the per-site crawl counters.
type Counters struct {
	Pages   int64 `json:"pages"`
	Checked int64 `json:"checked"`
	Broken  int64 `json:"broken"`
}

// SiteSummary is one row of the summary report.
type SiteSummary struct {
	Location     string     `json:"location"`
	Counters     Counters   `json:"counters"`
	ActiveBroken int64      `json:"active_broken"`
	LastChecked  *time.Time `json:"last_checked,omitempty"`
}
