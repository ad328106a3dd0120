package sqlite

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/tootgroup/internal/domain/model"
	"github.com/ericfisherdev/tootgroup/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RepostLog = (*RepostRepo)(nil)

// RepostRepo is the SQLite implementation of the RepostLog port interface.
type RepostRepo struct {
	db *DB
}

// NewRepostRepo creates a new RepostRepo backed by the given DB.
func NewRepostRepo(db *DB) *RepostRepo {
	return &RepostRepo{db: db}
}

// Record appends an entry to the repost log.
func (r *RepostRepo) Record(ctx context.Context, record model.RepostRecord) error {
	const query = `
		INSERT INTO reposts (group_name, notification_id, status_id, action, text, original_content,
			published_id, run_id, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Writer.ExecContext(ctx, query,
		record.GroupName,
		record.NotificationID,
		record.StatusID,
		string(record.Action),
		record.Text,
		record.OriginalContent,
		record.PublishedID,
		record.RunID,
		record.Error,
		formatTime(record.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("record repost of notification %d in group %s: %w", record.NotificationID, record.GroupName, err)
	}
	return nil
}

// HasSucceeded reports whether an error-free entry exists for the notification.
func (r *RepostRepo) HasSucceeded(ctx context.Context, groupName string, notificationID int64) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM reposts WHERE group_name = ? AND notification_id = ? AND error = ''
		)
	`

	var exists int
	if err := r.db.Reader.QueryRowContext(ctx, query, groupName, notificationID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check repost of notification %d in group %s: %w", notificationID, groupName, err)
	}
	return exists == 1, nil
}

// ListRecent returns the newest entries of a group, newest first.
func (r *RepostRepo) ListRecent(ctx context.Context, groupName string, limit int) ([]model.RepostRecord, error) {
	const query = `
		SELECT id, group_name, notification_id, status_id, action, text, original_content,
			published_id, run_id, error, created_at
		FROM reposts
		WHERE group_name = ?
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, groupName, limit)
	if err != nil {
		return nil, fmt.Errorf("list reposts of group %s: %w", groupName, err)
	}
	defer rows.Close()

	var records []model.RepostRecord
	for rows.Next() {
		var (
			rec       model.RepostRecord
			action    string
			createdAt string
		)
		if err := rows.Scan(&rec.ID, &rec.GroupName, &rec.NotificationID, &rec.StatusID, &action, &rec.Text,
			&rec.OriginalContent, &rec.PublishedID, &rec.RunID, &rec.Error, &createdAt); err != nil {
			return nil, fmt.Errorf("scan repost: %w", err)
		}
		rec.Action = model.ActionKind(action)
		rec.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at for repost %d: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reposts: %w", err)
	}

	return records, nil
}
