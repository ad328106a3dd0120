package application

import (
	"context"
	"log/slog"
	"slices"

	"github.com/ericfisherdev/tootgroup/internal/domain/model"
)

// DefaultMaxNotifications bounds the work of a single run.
const DefaultMaxNotifications = 100

// NotificationLister is the slice of the MastodonClient port the fetcher needs.
type NotificationLister interface {
	ListNotifications(ctx context.Context, maxID int64) ([]model.Notification, error)
}

// FetchResult is the outcome of a bounded notification scan.
type FetchResult struct {
	// Notifications are the new notifications, oldest first.
	Notifications []model.Notification
	// Latest is the highest notification ID observed, kept or not. Zero when
	// the feed was empty.
	Latest int64
	// Pages is the number of pages requested.
	Pages int
}

// FetchNewNotifications pages backwards through the notification feed,
// newest first, keeping notifications with IDs above since until maxCount
// notifications are kept. The first notification that fails either condition
// stops the scan: nothing older is visited.
//
// An empty page, or a page that is not strictly older than the previous
// boundary, ends the scan as well. Both are treated as "no more notifications".
func FetchNewNotifications(ctx context.Context, lister NotificationLister, since model.Cursor, maxCount int) (FetchResult, error) {
	if maxCount <= 0 {
		maxCount = DefaultMaxNotifications
	}

	var (
		result FetchResult
		kept   []model.Notification
		maxID  int64
	)

scan:
	for {
		if err := ctx.Err(); err != nil {
			return FetchResult{}, err
		}

		page, err := lister.ListNotifications(ctx, maxID)
		if err != nil {
			return FetchResult{}, err
		}
		result.Pages++

		if len(page) == 0 {
			break
		}

		for _, n := range page {
			if maxID != 0 && n.ID >= maxID {
				slog.Warn("notification feed out of order, stopping scan",
					"notification_id", n.ID,
					"boundary", maxID,
				)
				break scan
			}

			maxID = n.ID
			if n.ID > result.Latest {
				result.Latest = n.ID
			}

			if model.Cursor(n.ID) <= since || len(kept) >= maxCount {
				break scan
			}
			kept = append(kept, n)
		}
	}

	slices.Reverse(kept)
	result.Notifications = kept

	slog.Debug("notifications fetched",
		"since", int64(since),
		"new", len(kept),
		"latest", result.Latest,
		"pages", result.Pages,
	)

	return result, nil
}
