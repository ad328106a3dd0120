package driven

import (
	"context"
	"io"

	"github.com/ericfisherdev/tootgroup/internal/domain/model"
)

// StatusDraft is the input to MastodonClient.PublishStatus.
type StatusDraft struct {
	Text        string
	MediaIDs    []string
	Sensitive   bool
	Visibility  model.Visibility
	SpoilerText string
}

// MastodonClient defines the driven port for the group account's instance.
// Every method may block on the network and fails with an error wrapping
// ErrAuth or ErrTransport.
type MastodonClient interface {
	// VerifyCredentials returns the account the credentials belong to.
	VerifyCredentials(ctx context.Context) (model.GroupAccount, error)

	// ListFollowing returns every account followed by accountID.
	ListFollowing(ctx context.Context, accountID string) ([]model.Member, error)

	// ListNotifications returns one page of notifications, newest first.
	// maxID of 0 requests the newest page; otherwise only notifications with
	// IDs strictly below maxID are returned.
	ListNotifications(ctx context.Context, maxID int64) ([]model.Notification, error)

	// Boost reblogs a status and returns the ID of the reblog.
	Boost(ctx context.Context, statusID string) (string, error)

	// PublishStatus posts a new status and returns its ID.
	PublishStatus(ctx context.Context, draft StatusDraft) (string, error)

	// UploadMedia uploads a media file and returns the media ID to attach.
	UploadMedia(ctx context.Context, filename string, data io.Reader, description string) (string, error)
}

// MediaFetcher downloads attachment bytes from their source URL.
type MediaFetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}
