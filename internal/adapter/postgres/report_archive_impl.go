package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/linkcheck-service/internal/entity"
)

const schema = `
	CREATE TABLE IF NOT EXISTS site_report_snapshots (
		id            BIGSERIAL PRIMARY KEY,
		taken_at      TIMESTAMPTZ NOT NULL,
		location      TEXT NOT NULL,
		pages         BIGINT NOT NULL,
		checked       BIGINT NOT NULL,
		broken        BIGINT NOT NULL,
		active_broken BIGINT NOT NULL,
		last_checked  TIMESTAMPTZ
	);
	CREATE INDEX IF NOT EXISTS site_report_snapshots_location_taken_at
		ON site_report_snapshots (location, taken_at DESC);
`

// ReportArchiveRepoImpl provides a concrete implementation for the
// ReportArchiveRepository interface using PostgreSQL.
type ReportArchiveRepoImpl struct {
	db *pgxpool.Pool
}

// NewReportArchiveRepo creates a new instance of ReportArchiveRepoImpl.
func NewReportArchiveRepo(db *pgxpool.Pool) *ReportArchiveRepoImpl {
	return &ReportArchiveRepoImpl{db: db}
}

// EnsureSchema creates the snapshot table if it does not exist.
func (r *ReportArchiveRepoImpl) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create report archive schema: %w", err)
	}
	return nil
}

func (r *ReportArchiveRepoImpl) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// SaveSnapshot stores every row of one snapshot within a single transaction.
func (r *ReportArchiveRepoImpl) SaveSnapshot(ctx context.Context, takenAt time.Time, rows []entity.SiteSummary) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO site_report_snapshots (taken_at, location, pages, checked, broken, active_broken, last_checked)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(query,
			takenAt,
			row.Location,
			row.Counters.Pages,
			row.Counters.Checked,
			row.Counters.Broken,
			row.ActiveBroken,
			row.LastChecked,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert snapshot rows: %w", err)
	}

	return tx.Commit(ctx)
}

// History retrieves the most recent snapshots for a location, newest first.
func (r *ReportArchiveRepoImpl) History(ctx context.Context, location string, limit int) ([]*entity.ReportSnapshot, error) {
	query := `
		SELECT id, taken_at, location, pages, checked, broken, active_broken, last_checked
		FROM site_report_snapshots
		WHERE location = $1
		ORDER BY taken_at DESC, id DESC
		LIMIT $2;
	`
	rows, err := r.db.Query(ctx, query, location, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query report history for %s: %w", location, err)
	}
	defer rows.Close()

	var snapshots []*entity.ReportSnapshot
	for rows.Next() {
		var s entity.ReportSnapshot
		if err := rows.Scan(
			&s.ID,
			&s.TakenAt,
			&s.Location,
			&s.Counters.Pages,
			&s.Counters.Checked,
			&s.Counters.Broken,
			&s.ActiveBroken,
			&s.LastChecked,
		); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, &s)
	}

	return snapshots, rows.Err()
}
