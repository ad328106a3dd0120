package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/ericfisherdev/tootgroup/internal/domain/model"
	"github.com/ericfisherdev/tootgroup/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CursorStore = (*CursorRepo)(nil)

// CursorRepo stores the cursor of each group in the last_seen_id column of
// relay_groups. The value is kept as text, the way it arrives from the
// Mastodon API.
type CursorRepo struct {
	db *DB
}

// NewCursorRepo creates a new CursorRepo backed by the given DB.
func NewCursorRepo(db *DB) *CursorRepo {
	return &CursorRepo{db: db}
}

// Load returns the stored cursor of a group. A missing group or a value that
// is not a positive integer yields model.DefaultCursor.
func (r *CursorRepo) Load(ctx context.Context, groupName string) (model.Cursor, error) {
	const query = `SELECT last_seen_id FROM relay_groups WHERE name = ?`

	var raw string
	err := r.db.Reader.QueryRowContext(ctx, query, groupName).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DefaultCursor, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load cursor of group %s: %w", groupName, err)
	}

	cursor := parseCursor(raw)
	if strconv.FormatInt(int64(cursor), 10) != raw {
		slog.Warn("stored cursor is not a positive integer, using default",
			"group", groupName, "value", raw, "cursor", cursor)
	}
	return cursor, nil
}

// Save overwrites the cursor of an existing group.
func (r *CursorRepo) Save(ctx context.Context, groupName string, cursor model.Cursor) error {
	const query = `UPDATE relay_groups SET last_seen_id = ?, updated_at = ? WHERE name = ?`

	result, err := r.db.Writer.ExecContext(ctx, query,
		strconv.FormatInt(int64(cursor), 10), formatTime(time.Now()), groupName)
	if err != nil {
		return fmt.Errorf("save cursor of group %s: %w", groupName, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("save cursor of group %s: %w", groupName, driven.ErrGroupNotFound)
	}
	return nil
}
