// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/tootgroup/internal/domain/model"
	"github.com/ericfisherdev/tootgroup/internal/domain/port/driven"
)

// ClientSource resolves the MastodonClient of a group.
type ClientSource interface {
	Client(ctx context.Context, groupName string) (driven.MastodonClient, error)
}

// RunOptions tweak a single relay run.
type RunOptions struct {
	// DryRun evaluates every notification and logs the decisions without
	// touching the instance, the cursor or the repost log.
	DryRun bool
}

// RelayService runs the notification intake and repost pipeline for a group:
// membership, bounded fetch, classification, repost, cursor persistence.
type RelayService struct {
	clients          ClientSource
	groups           driven.GroupStore
	cursors          driven.CursorStore
	reposts          driven.RepostLog
	runs             driven.RunStore
	media            driven.MediaFetcher
	maxNotifications int
	mediaDir         string
	now              func() time.Time
}

// NewRelayService creates a RelayService with all required dependencies.
func NewRelayService(
	clients ClientSource,
	groups driven.GroupStore,
	cursors driven.CursorStore,
	reposts driven.RepostLog,
	runs driven.RunStore,
	media driven.MediaFetcher,
	maxNotifications int,
	mediaDir string,
) *RelayService {
	if maxNotifications <= 0 {
		maxNotifications = DefaultMaxNotifications
	}
	return &RelayService{
		clients:          clients,
		groups:           groups,
		cursors:          cursors,
		reposts:          reposts,
		runs:             runs,
		media:            media,
		maxNotifications: maxNotifications,
		mediaDir:         mediaDir,
		now:              time.Now,
	}
}

// RunGroup performs one run for the named group and returns its report. The
// report is returned even when the run fails; its Error field mirrors err.
//
// Errors wrapping driven.ErrAuth or driven.ErrTransport are terminal: the run
// stops and the cursor is left untouched, so the next run sees the same
// notifications again.
func (s *RelayService) RunGroup(ctx context.Context, groupName string, opts RunOptions) (model.RunReport, error) {
	report := model.RunReport{
		RunID:     uuid.NewString(),
		GroupName: groupName,
		StartedAt: s.now().UTC(),
		DryRun:    opts.DryRun,
	}

	err := s.run(ctx, groupName, opts, &report)

	report.FinishedAt = s.now().UTC()
	if err != nil {
		report.Error = err.Error()
	}

	// A run for an unknown group leaves no history behind.
	if !opts.DryRun && !errors.Is(err, driven.ErrGroupNotFound) {
		// Storage errors here must not mask the run's own outcome.
		if saveErr := s.runs.Save(context.WithoutCancel(ctx), report); saveErr != nil {
			slog.Error("save run report failed", "group", groupName, "run_id", report.RunID, "error", saveErr)
		}
	}

	attrs := []any{
		"group", groupName,
		"run_id", report.RunID,
		"scanned", report.Scanned,
		"boosted", report.Boosted,
		"reposted", report.Reposted,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"cursor_before", int64(report.CursorBefore),
		"cursor_after", int64(report.CursorAfter),
		"dry_run", opts.DryRun,
		"duration", report.Duration().Round(time.Millisecond),
	}
	if err != nil {
		slog.Error("relay run failed", append(attrs, "error", err)...)
	} else {
		slog.Info("relay run complete", attrs...)
	}

	return report, err
}

func (s *RelayService) run(ctx context.Context, groupName string, opts RunOptions, report *model.RunReport) error {
	group, err := s.groups.Get(ctx, groupName)
	if err != nil {
		return fmt.Errorf("load group %q: %w", groupName, err)
	}

	client, err := s.clients.Client(ctx, groupName)
	if err != nil {
		return err
	}

	account, err := client.VerifyCredentials(ctx)
	if err != nil {
		return fmt.Errorf("verify credentials for group %q: %w", groupName, err)
	}

	following, err := client.ListFollowing(ctx, account.ID)
	if err != nil {
		return fmt.Errorf("list members of group %q: %w", groupName, err)
	}
	members := NewMemberSet(following)

	cursor, err := s.cursors.Load(ctx, groupName)
	if err != nil {
		return fmt.Errorf("load cursor for group %q: %w", groupName, err)
	}
	report.CursorBefore = cursor
	report.CursorAfter = cursor

	batch, err := FetchNewNotifications(ctx, client, cursor, s.maxNotifications)
	if err != nil {
		return fmt.Errorf("fetch notifications for group %q: %w", groupName, err)
	}
	report.Scanned = len(batch.Notifications)

	slog.Debug("group resolved",
		"group", groupName,
		"account", account.Username,
		"members", len(members),
		"new_notifications", len(batch.Notifications),
	)

	rehoster := NewMediaRehoster(s.media, client, s.mediaDir)
	for _, n := range batch.Notifications {
		if err := ctx.Err(); err != nil {
			return err
		}

		action := Decide(n, members, group.Policy, account.Username)
		if action.IsNone() {
			continue
		}

		if err := s.execute(ctx, client, rehoster, group, n, action, report, opts); err != nil {
			return err
		}
	}

	next := cursor.Advance(batch.Latest)
	report.CursorAfter = next
	if next > cursor && !opts.DryRun {
		if err := s.cursors.Save(ctx, groupName, next); err != nil {
			return fmt.Errorf("save cursor for group %q: %w", groupName, err)
		}
	}

	return nil
}

// execute carries out one repost action. It returns an error only for
// failures that must end the run.
func (s *RelayService) execute(
	ctx context.Context,
	client driven.MastodonClient,
	rehoster *MediaRehoster,
	group model.Group,
	n model.Notification,
	action model.RepostAction,
	report *model.RunReport,
	opts RunOptions,
) error {
	logger := slog.With("group", group.Name, "notification_id", n.ID, "status_id", n.Status.ID, "action", string(action.Kind))

	if opts.DryRun {
		switch action.Kind {
		case model.ActionBoost:
			report.Boosted++
			logger.Info("would boost status")
		case model.ActionRepostAsNew:
			report.Reposted++
			logger.Info("would repost status", "text", action.Text, "media", len(action.Media))
		}
		return nil
	}

	done, err := s.reposts.HasSucceeded(ctx, group.Name, n.ID)
	if err != nil {
		return fmt.Errorf("check repost log: %w", err)
	}
	if done {
		report.Skipped++
		logger.Info("notification already reposted, skipping")
		return nil
	}

	record := model.RepostRecord{
		GroupName:       group.Name,
		NotificationID:  n.ID,
		StatusID:        n.Status.ID,
		Action:          action.Kind,
		Text:            action.Text,
		OriginalContent: n.Status.Content,
		RunID:           report.RunID,
		CreatedAt:       s.now().UTC(),
	}

	var actErr error
	switch action.Kind {
	case model.ActionBoost:
		record.PublishedID, actErr = client.Boost(ctx, action.StatusID)
	case model.ActionRepostAsNew:
		record.PublishedID, actErr = s.repost(ctx, client, rehoster, action)
	}

	if actErr != nil {
		if isTerminal(actErr) {
			return fmt.Errorf("notification %d: %w", n.ID, actErr)
		}
		report.Failed++
		record.Error = actErr.Error()
		logger.Error("repost failed", "error", actErr)
	} else {
		switch action.Kind {
		case model.ActionBoost:
			report.Boosted++
			logger.Info("status boosted", "published_id", record.PublishedID)
		case model.ActionRepostAsNew:
			report.Reposted++
			logger.Info("status reposted", "published_id", record.PublishedID, "media", len(action.Media))
		}
	}

	if err := s.reposts.Record(ctx, record); err != nil {
		logger.Error("record repost failed", "error", err)
	}
	return nil
}

func (s *RelayService) repost(ctx context.Context, client driven.MastodonClient, rehoster *MediaRehoster, action model.RepostAction) (string, error) {
	mediaIDs, err := rehoster.Rehost(ctx, action.Media)
	if err != nil {
		return "", err
	}

	return client.PublishStatus(ctx, driven.StatusDraft{
		Text:        action.Text,
		MediaIDs:    mediaIDs,
		Sensitive:   action.Sensitive,
		Visibility:  model.VisibilityPublic,
		SpoilerText: action.SpoilerText,
	})
}

// isTerminal reports whether an action error must abort the whole run.
// Rejected requests and media re-hosting failures only affect the current
// notification; revoked credentials and an unreachable instance affect all.
func isTerminal(err error) bool {
	if errors.Is(err, driven.ErrAuth) {
		return true
	}
	if errors.Is(err, ErrContentTransform) || errors.Is(err, driven.ErrRejected) {
		return false
	}
	return true
}
