package driven

import (
	"context"

	"github.com/ericfisherdev/tootgroup/internal/domain/model"
)

// RepostLog records every executed repost action.
type RepostLog interface {
	Record(ctx context.Context, record model.RepostRecord) error

	// HasSucceeded reports whether a successful action was already recorded
	// for the notification.
	HasSucceeded(ctx context.Context, groupName string, notificationID int64) (bool, error)

	// ListRecent returns the newest records of a group, newest first.
	ListRecent(ctx context.Context, groupName string, limit int) ([]model.RepostRecord, error)
}
