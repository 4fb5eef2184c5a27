package repository

import (
	"context"
	"time"

	"github.com/user/linkcheck-service/internal/entity"
)

// ReportArchiveRepository defines the interface for storing summary report snapshots.
type ReportArchiveRepository interface {
	// SaveSnapshot stores all rows taken at the same instant.
	SaveSnapshot(ctx context.Context, takenAt time.Time, rows []entity.SiteSummary) error
	// History returns the most recent snapshots for a location, newest first.
	History(ctx context.Context, location string, limit int) ([]*entity.ReportSnapshot, error)
}
