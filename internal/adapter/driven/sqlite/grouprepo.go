package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ericfisherdev/tootgroup/internal/domain/model"
	"github.com/ericfisherdev/tootgroup/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.GroupStore = (*GroupRepo)(nil)

// GroupRepo is the SQLite implementation of the GroupStore port interface.
type GroupRepo struct {
	db *DB
}

// NewGroupRepo creates a new GroupRepo backed by the given DB.
func NewGroupRepo(db *DB) *GroupRepo {
	return &GroupRepo{db: db}
}

const groupColumns = `id, name, instance_url, accept_dms, accept_retoots, last_seen_id, created_at, updated_at`

// Add inserts a new group. A zero cursor is stored as model.DefaultCursor.
func (r *GroupRepo) Add(ctx context.Context, group model.Group) (model.Group, error) {
	const query = `
		INSERT INTO relay_groups (name, instance_url, accept_dms, accept_retoots, last_seen_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	cursor := group.Cursor
	if cursor < model.DefaultCursor {
		cursor = model.DefaultCursor
	}
	now := time.Now().UTC()

	result, err := r.db.Writer.ExecContext(ctx, query,
		group.Name,
		group.InstanceURL,
		boolToInt(group.Policy.AcceptDirectMessages),
		boolToInt(group.Policy.AcceptPublicRetoots),
		strconv.FormatInt(int64(cursor), 10),
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Group{}, fmt.Errorf("add group %s: %w", group.Name, driven.ErrGroupAlreadyExists)
		}
		return model.Group{}, fmt.Errorf("add group %s: %w", group.Name, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.Group{}, fmt.Errorf("read id of group %s: %w", group.Name, err)
	}

	group.ID = id
	group.Cursor = cursor
	group.CreatedAt = now
	group.UpdatedAt = now
	return group, nil
}

// Get retrieves a group by name.
func (r *GroupRepo) Get(ctx context.Context, name string) (model.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM relay_groups WHERE name = ?`

	group, err := scanGroup(r.db.Reader.QueryRowContext(ctx, query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Group{}, fmt.Errorf("get group %s: %w", name, driven.ErrGroupNotFound)
	}
	if err != nil {
		return model.Group{}, fmt.Errorf("get group %s: %w", name, err)
	}

	return group, nil
}

// ListAll returns all groups ordered by name.
func (r *GroupRepo) ListAll(ctx context.Context) ([]model.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM relay_groups ORDER BY name`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var groups []model.Group
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, group)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}

	return groups, nil
}

// UpdatePolicy replaces the policy switches of a group.
func (r *GroupRepo) UpdatePolicy(ctx context.Context, name string, policy model.Policy) error {
	const query = `UPDATE relay_groups SET accept_dms = ?, accept_retoots = ?, updated_at = ? WHERE name = ?`

	return r.update(ctx, "update policy of group "+name, query,
		boolToInt(policy.AcceptDirectMessages),
		boolToInt(policy.AcceptPublicRetoots),
		formatTime(time.Now()),
		name,
	)
}

// UpdateInstance replaces the instance URL of a group.
func (r *GroupRepo) UpdateInstance(ctx context.Context, name, instanceURL string) error {
	const query = `UPDATE relay_groups SET instance_url = ?, updated_at = ? WHERE name = ?`

	return r.update(ctx, "update instance of group "+name, query, instanceURL, formatTime(time.Now()), name)
}

// Remove deletes a group together with its repost log and run history.
// Credentials are removed separately through the CredentialStore.
func (r *GroupRepo) Remove(ctx context.Context, name string) error {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op.

	result, err := tx.ExecContext(ctx, `DELETE FROM relay_groups WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("remove group %s: %w", name, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("remove group %s: %w", name, driven.ErrGroupNotFound)
	}

	for _, query := range []string{
		`DELETE FROM reposts WHERE group_name = ?`,
		`DELETE FROM runs WHERE group_name = ?`,
	} {
		if _, err := tx.ExecContext(ctx, query, name); err != nil {
			return fmt.Errorf("remove history of group %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit remove group %s: %w", name, err)
	}
	return nil
}

func (r *GroupRepo) update(ctx context.Context, op, query string, args ...any) error {
	result, err := r.db.Writer.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, driven.ErrGroupNotFound)
	}
	return nil
}

func scanGroup(s scanner) (model.Group, error) {
	var (
		group                model.Group
		acceptDMs, acceptRTs int
		lastSeen             string
		createdAt, updatedAt string
	)

	err := s.Scan(&group.ID, &group.Name, &group.InstanceURL, &acceptDMs, &acceptRTs, &lastSeen, &createdAt, &updatedAt)
	if err != nil {
		return model.Group{}, err
	}

	group.Policy = model.Policy{
		AcceptDirectMessages: acceptDMs != 0,
		AcceptPublicRetoots:  acceptRTs != 0,
	}
	group.Cursor = parseCursor(lastSeen)

	group.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return model.Group{}, fmt.Errorf("parse created_at: %w", err)
	}
	group.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return model.Group{}, fmt.Errorf("parse updated_at: %w", err)
	}

	return group, nil
}
