package entity

import "time"

// ReportSnapshot mirrors the `site_report_snapshots` PostgreSQL table schema.
type ReportSnapshot struct {
	ID      int64
	TakenAt time.Time
	SiteSummary
}
