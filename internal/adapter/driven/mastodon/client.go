// Package mastodon implements the MastodonClient port on go-mastodon.
package mastodon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gregjones/httpcache"
	gomastodon "github.com/mattn/go-mastodon"

	"github.com/ericfisherdev/tootgroup/internal/domain/model"
	"github.com/ericfisherdev/tootgroup/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.MastodonClient = (*Client)(nil)

const (
	requestTimeout = 30 * time.Second
	// notificationPageSize is the largest page the API serves.
	notificationPageSize = 40
	followingPageSize    = 80
	userAgent            = "tootgroup"
)

// Client implements driven.MastodonClient for one account on one instance.
type Client struct {
	api *gomastodon.Client
}

// NewClient creates a client for the instance with the following transport stack:
//  1. rate limit retries (waits out 429 answers using Retry-After or X-RateLimit-Reset)
//  2. httpcache (ETag-based conditional request caching; follow lists rarely change)
func NewClient(instanceURL, token string) *Client {
	base := http.DefaultTransport.(*http.Transport).Clone()
	base.ResponseHeaderTimeout = requestTimeout

	cache := httpcache.NewMemoryCacheTransport()
	cache.Transport = base

	// No client-wide Timeout: it would also cut short a rate limit pause.
	return NewClientWithHTTPClient(&http.Client{Transport: cache}, instanceURL, token, DefaultRetryPolicy)
}

// NewClientWithHTTPClient creates a Client on top of httpClient. The rate limit
// transport is always layered over httpClient's transport.
func NewClientWithHTTPClient(httpClient *http.Client, instanceURL, token string, policy RetryPolicy) *Client {
	api := gomastodon.NewClient(&gomastodon.Config{
		Server:      strings.TrimRight(instanceURL, "/"),
		AccessToken: token,
	})
	api.Client = *httpClient
	api.Transport = newRateLimitTransport(httpClient.Transport, policy)
	api.UserAgent = userAgent

	return &Client{api: api}
}

// VerifyCredentials returns the account the access token belongs to. Here a
// 403 also means the token is unusable, e.g. a suspended account.
func (c *Client) VerifyCredentials(ctx context.Context) (model.GroupAccount, error) {
	acc, err := c.api.GetAccountCurrentUser(ctx)
	if err != nil {
		return model.GroupAccount{}, mapError("verify credentials", err, true)
	}
	return model.GroupAccount{ID: string(acc.ID), Username: acc.Username}, nil
}

// ListFollowing returns every account followed by accountID, following the
// pagination links across pages.
func (c *Client) ListFollowing(ctx context.Context, accountID string) ([]model.Member, error) {
	members := []model.Member{}
	pg := &gomastodon.Pagination{Limit: followingPageSize}

	for page := 1; ; page++ {
		requested := pg.MaxID
		accounts, err := c.api.GetAccountFollowing(ctx, gomastodon.ID(accountID), pg)
		if err != nil {
			return nil, mapError(fmt.Sprintf("list following of %s (page %d)", accountID, page), err, false)
		}

		for _, acc := range accounts {
			members = append(members, model.Member{ID: string(acc.ID), Acct: acc.Acct})
		}

		if len(accounts) == 0 || pg.MaxID == "" || pg.MaxID == requested {
			break
		}
		pg = &gomastodon.Pagination{MaxID: pg.MaxID, Limit: followingPageSize}
	}

	return members, nil
}

// ListNotifications returns one page of notifications, newest first. A maxID
// of 0 requests the newest page.
func (c *Client) ListNotifications(ctx context.Context, maxID int64) ([]model.Notification, error) {
	pg := &gomastodon.Pagination{Limit: notificationPageSize}
	if maxID > 0 {
		pg.MaxID = gomastodon.ID(strconv.FormatInt(maxID, 10))
	}

	raw, err := c.api.GetNotifications(ctx, pg)
	if err != nil {
		return nil, mapError(fmt.Sprintf("list notifications (max_id %d)", maxID), err, false)
	}

	notifications := make([]model.Notification, 0, len(raw))
	for _, n := range raw {
		mapped, err := mapNotification(n)
		if err != nil {
			slog.Warn("skipping malformed notification", "id", n.ID, "error", err)
			continue
		}
		notifications = append(notifications, mapped)
	}

	return notifications, nil
}

// Boost reblogs a status and returns the ID of the reblog.
func (c *Client) Boost(ctx context.Context, statusID string) (string, error) {
	st, err := c.api.Reblog(ctx, gomastodon.ID(statusID))
	if err != nil {
		return "", mapError("boost status "+statusID, err, false)
	}
	return string(st.ID), nil
}

// PublishStatus posts a new status and returns its ID.
func (c *Client) PublishStatus(ctx context.Context, draft driven.StatusDraft) (string, error) {
	toot := &gomastodon.Toot{
		Status:      draft.Text,
		Sensitive:   draft.Sensitive,
		SpoilerText: draft.SpoilerText,
		Visibility:  visibilityParam(draft.Visibility),
	}
	for _, id := range draft.MediaIDs {
		toot.MediaIDs = append(toot.MediaIDs, gomastodon.ID(id))
	}

	st, err := c.api.PostStatus(ctx, toot)
	if err != nil {
		return "", mapError("publish status", err, false)
	}
	return string(st.ID), nil
}

// UploadMedia uploads a media file and returns the media ID to attach to a
// status. The instance may still be processing the file when it answers.
func (c *Client) UploadMedia(ctx context.Context, filename string, data io.Reader, description string) (string, error) {
	att, err := c.api.UploadMediaFromMedia(ctx, &gomastodon.Media{
		File:        data,
		Description: description,
	})
	if err != nil {
		return "", mapError("upload media "+filename, err, false)
	}
	return string(att.ID), nil
}

// mapError wraps a go-mastodon error in the port's sentinel errors.
//
// Only 401 means the token is rejected. A 403 answers one refused action
// ("This action is not allowed") unless authOn403 is set.
func mapError(op string, err error, authOn403 bool) error {
	var apiErr *gomastodon.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %w: %w", op, driven.ErrTransport, err)
	}

	detail := fmt.Sprintf("HTTP %d", apiErr.StatusCode)
	if apiErr.Message != "" {
		detail += ": " + apiErr.Message
	}

	code := apiErr.StatusCode
	switch {
	case code == http.StatusUnauthorized, code == http.StatusForbidden && authOn403:
		return fmt.Errorf("%s: %w: %s", op, driven.ErrAuth, detail)
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w: rate limited: %s", op, driven.ErrTransport, detail)
	case code >= 400 && code < 500:
		return fmt.Errorf("%s: %w: %s", op, driven.ErrRejected, detail)
	default:
		return fmt.Errorf("%s: %w: %s", op, driven.ErrTransport, detail)
	}
}

func mapNotification(n *gomastodon.Notification) (model.Notification, error) {
	id, err := strconv.ParseInt(string(n.ID), 10, 64)
	if err != nil {
		return model.Notification{}, fmt.Errorf("notification id %q: %w", n.ID, err)
	}
	if id <= 0 {
		return model.Notification{}, errors.New("notification id must be positive")
	}

	out := model.Notification{
		ID:       id,
		Type:     mapNotificationType(n.Type),
		AuthorID: string(n.Account.ID),
		Author:   n.Account.Acct,
	}

	if n.Status != nil {
		st := &model.Status{
			ID:          string(n.Status.ID),
			Visibility:  mapVisibility(n.Status.Visibility),
			Content:     n.Status.Content,
			Sensitive:   n.Status.Sensitive,
			SpoilerText: n.Status.SpoilerText,
			URL:         n.Status.URL,
		}
		for _, m := range n.Status.MediaAttachments {
			st.Attachments = append(st.Attachments, model.Attachment{
				SourceURL:   m.URL,
				Description: m.Description,
				Kind:        m.Type,
			})
		}
		out.Status = st
	}

	return out, nil
}

func mapNotificationType(t string) model.NotificationType {
	if t == "mention" {
		return model.NotificationMention
	}
	return model.NotificationOther
}

func mapVisibility(v string) model.Visibility {
	switch v {
	case gomastodon.VisibilityPublic:
		return model.VisibilityPublic
	case gomastodon.VisibilityDirectMessage:
		return model.VisibilityDirect
	default:
		return model.VisibilityOther
	}
}

// visibilityParam converts a domain visibility for the statuses endpoint.
// An empty value leaves the account default in place.
func visibilityParam(v model.Visibility) string {
	switch v {
	case model.VisibilityPublic:
		return gomastodon.VisibilityPublic
	case model.VisibilityDirect:
		return gomastodon.VisibilityDirectMessage
	default:
		return ""
	}
}
