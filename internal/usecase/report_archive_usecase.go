package usecase

import (
	"context"
	"time"

	"github.com/user/linkcheck-service/internal/entity"
	"github.com/user/linkcheck-service/internal/repository"
	"go.uber.org/zap"
)

const defaultHistoryLimit = 20

// ReportArchiver stores summary report snapshots for trend reporting.
type ReportArchiver struct {
	registry *SiteRegistry
	repo     repository.ReportArchiveRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewReportArchiver creates a new ReportArchiver.
func NewReportArchiver(registry *SiteRegistry, repo repository.ReportArchiveRepository, logger *zap.Logger) *ReportArchiver {
	return &ReportArchiver{
		registry: registry,
		repo:     repo,
		logger:   logger,
		now:      time.Now,
	}
}

// Archive snapshots the current summary rows and returns how many were stored.
func (a *ReportArchiver) Archive(ctx context.Context) (int, error) {
	rows, err := a.registry.Summaries(ctx)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	takenAt := a.now().UTC()
	if err := a.repo.SaveSnapshot(ctx, takenAt, rows); err != nil {
		return 0, err
	}
	a.logger.Info("Summary report archived", zap.Int("sites", len(rows)), zap.Time("taken_at", takenAt))
	return len(rows), nil
}

// History returns archived rows for a location, newest first. A non-positive
// limit selects the default.
func (a *ReportArchiver) History(ctx context.Context, location string, limit int) ([]*entity.ReportSnapshot, error) {
	if location == "" {
		return nil, ErrLocationRequired
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return a.repo.History(ctx, location, limit)
}
