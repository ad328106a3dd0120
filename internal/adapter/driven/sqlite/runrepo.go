package sqlite

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/tootgroup/internal/domain/model"
	"github.com/ericfisherdev/tootgroup/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RunStore = (*RunRepo)(nil)

// RunRepo is the SQLite implementation of the RunStore port interface.
type RunRepo struct {
	db *DB
}

// NewRunRepo creates a new RunRepo backed by the given DB.
func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

// Save inserts a run report, replacing any earlier report with the same run ID.
func (r *RunRepo) Save(ctx context.Context, report model.RunReport) error {
	const query = `
		INSERT OR REPLACE INTO runs (run_id, group_name, started_at, finished_at, scanned, boosted,
			reposted, skipped, failed, cursor_before, cursor_after, dry_run, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Writer.ExecContext(ctx, query,
		report.RunID,
		report.GroupName,
		formatTime(report.StartedAt),
		formatTime(report.FinishedAt),
		report.Scanned,
		report.Boosted,
		report.Reposted,
		report.Skipped,
		report.Failed,
		int64(report.CursorBefore),
		int64(report.CursorAfter),
		boolToInt(report.DryRun),
		report.Error,
	)
	if err != nil {
		return fmt.Errorf("save run %s of group %s: %w", report.RunID, report.GroupName, err)
	}
	return nil
}

// ListRecent returns the newest run reports of a group, newest first.
func (r *RunRepo) ListRecent(ctx context.Context, groupName string, limit int) ([]model.RunReport, error) {
	const query = `
		SELECT run_id, group_name, started_at, finished_at, scanned, boosted, reposted, skipped, failed,
			cursor_before, cursor_after, dry_run, error
		FROM runs
		WHERE group_name = ?
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, groupName, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs of group %s: %w", groupName, err)
	}
	defer rows.Close()

	var reports []model.RunReport
	for rows.Next() {
		var (
			rep                   model.RunReport
			startedAt, finishedAt string
			before, after         int64
			dryRun                int
		)
		if err := rows.Scan(&rep.RunID, &rep.GroupName, &startedAt, &finishedAt, &rep.Scanned, &rep.Boosted,
			&rep.Reposted, &rep.Skipped, &rep.Failed, &before, &after, &dryRun, &rep.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rep.CursorBefore = model.Cursor(before)
		rep.CursorAfter = model.Cursor(after)
		rep.DryRun = dryRun != 0

		rep.StartedAt, err = parseTime(startedAt)
		if err != nil {
			return nil, fmt.Errorf("parse started_at for run %s: %w", rep.RunID, err)
		}
		rep.FinishedAt, err = parseTime(finishedAt)
		if err != nil {
			return nil, fmt.Errorf("parse finished_at for run %s: %w", rep.RunID, err)
		}
		reports = append(reports, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return reports, nil
}
