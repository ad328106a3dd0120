package application_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/tootgroup/internal/application"
	"github.com/ericfisherdev/tootgroup/internal/domain/model"
	"github.com/ericfisherdev/tootgroup/internal/domain/port/driven"
)

type relayFixture struct {
	client  *fakeMastodon
	groups  *memGroupStore
	cursors *memCursorStore
	reposts *memRepostLog
	runs    *memRunStore
	media   *fakeMediaFetcher
	svc     *application.RelayService
}

func newRelayFixture(t *testing.T, policy model.Policy, feed ...model.Notification) *relayFixture {
	t.Helper()

	f := &relayFixture{
		client: &fakeMastodon{
			account:   model.GroupAccount{ID: "g1", Username: "groupname"},
			following: []model.Member{{ID: "m1", Acct: "alice"}, {ID: "m2", Acct: "bob"}},
			feed:      feed,
			pageSize:  2,
		},
		groups:  newMemGroupStore(model.Group{Name: "default", InstanceURL: "https://example.social", Policy: policy}),
		cursors: newMemCursorStore(),
		reposts: &memRepostLog{},
		runs:    &memRunStore{},
		media:   &fakeMediaFetcher{files: map[string][]byte{}},
	}
	f.svc = application.NewRelayService(
		staticClients{client: f.client},
		f.groups,
		f.cursors,
		f.reposts,
		f.runs,
		f.media,
		100,
		t.TempDir(),
	)
	return f
}

var bothFlags = model.Policy{AcceptDirectMessages: true, AcceptPublicRetoots: true}

func TestRelayService_BoostsAndRepostsOldestFirst(t *testing.T) {
	f := newRelayFixture(t, bothFlags,
		mention(9, "m2", model.VisibilityDirect, "<p>@groupname second</p>"),
		favourite(8, "m1"),
		mention(7, "m1", model.VisibilityPublic, "<p>!@groupname boost me</p>"),
		mention(6, "m1", model.VisibilityDirect, "<p>@groupname first</p>"),
		mention(5, "m1", model.VisibilityDirect, "<p>@groupname already seen</p>"),
	)
	f.cursors.cursors["default"] = 5

	report, err := f.svc.RunGroup(context.Background(), "default", application.RunOptions{})

	require.NoError(t, err)
	assert.Equal(t, 4, report.Scanned)
	assert.Equal(t, 1, report.Boosted)
	assert.Equal(t, 2, report.Reposted)
	assert.Equal(t, model.Cursor(5), report.CursorBefore)
	assert.Equal(t, model.Cursor(9), report.CursorAfter)

	assert.Equal(t, []string{"s7"}, f.client.boosts)
	require.Len(t, f.client.published, 2)
	assert.Equal(t, "first", f.client.published[0].Text)
	assert.Equal(t, "second", f.client.published[1].Text)
	assert.Equal(t, model.VisibilityPublic, f.client.published[0].Visibility)

	assert.Equal(t, []model.Cursor{9}, f.cursors.saves)
	require.Len(t, f.reposts.records, 3)
	require.Len(t, f.runs.reports, 1)
	assert.Equal(t, report.RunID, f.runs.reports[0].RunID)
}

func TestRelayService_NonMembersIgnored(t *testing.T) {
	f := newRelayFixture(t, bothFlags,
		mention(3, "stranger", model.VisibilityPublic, "<p>!@groupname</p>"),
		mention(2, "stranger", model.VisibilityDirect, "<p>@groupname hi</p>"),
	)

	report, err := f.svc.RunGroup(context.Background(), "default", application.RunOptions{})

	require.NoError(t, err)
	assert.Equal(t, 2, report.Scanned)
	assert.Empty(t, f.client.boosts)
	assert.Empty(t, f.client.published)
	assert.Equal(t, model.Cursor(3), f.cursors.cursors["default"])
}

func TestRelayService_IdempotentRerun(t *testing.T) {
	f := newRelayFixture(t, bothFlags,
		mention(4, "m1", model.VisibilityPublic, "<p>!@groupname</p>"),
		mention(3, "m1", model.VisibilityDirect, "<p>@groupname hi</p>"),
	)

	_, err := f.svc.RunGroup(context.Background(), "default", application.RunOptions{})
	require.NoError(t, err)

	second, err := f.svc.RunGroup(context.Background(), "default", application.RunOptions{})
	require.NoError(t, err)

	assert.Zero(t, second.Scanned)
	assert.Zero(t, second.Boosted+second.Reposted)
	assert.Equal(t, model.Cursor(4), second.CursorBefore)
	assert.Equal(t, model.Cursor(4), second.CursorAfter)
	assert.Len(t, f.client.boosts, 1)
	assert.Len(t, f.client.published, 1)
	assert.Equal(t, []model.Cursor{4}, f.cursors.saves, "cursor is written only when it increases")
}

func TestRelayService_CursorNeverDecreases(t *testing.T) {
	f := newRelayFixture(t, bothFlags, newestFirst(3, 4, 5)...)
	f.cursors.cursors["default"] = 50

	report, err := f.svc.RunGroup(context.Background(), "default", application.RunOptions{})

	require.NoError(t, err)
	assert.Equal(t, model.Cursor(50), report.CursorAfter)
	assert.Empty(t, f.cursors.saves)
}

func TestRelayService_NoiseStillAdvancesCursor(t *testing.T) {
	f := newRelayFixture(t, bothFlags, newestFirst(10, 11, 12)...)

	report, err := f.svc.RunGroup(context.Background(), "default", application.RunOptions{})

	require.NoError(t, err)
	assert.Equal(t, model.Cursor(12), report.CursorAfter)
	assert.Equal(t, []model.Cursor{12}, f.cursors.saves)
}

func TestRelayService_AuthErrorIsTerminal(t *testing.T) {
	f := newRelayFixture(t, bothFlags, mention(3, "m1", model.VisibilityPublic, "<p>!@groupname</p>"))
	f.client.verifyErr = fmt.Errorf("verify: %w", driven.ErrAuth)

	report, err := f.svc.RunGroup(context.Background(), "default", application.RunOptions{})

	require.ErrorIs(t, err, driven.ErrAuth)
	assert.NotEmpty(t, report.Error)
	assert.Empty(t, f.cursors.saves)
	require.Len(t, f.runs.reports, 1, "failed runs are recorded too")
}

func TestRelayService_TransportErrorMidBatchKeepsCursor(t *testing.T) {
	f := newRelayFixture(t, bothFlags,
		mention(4, "m1", model.VisibilityPublic, "<p>!@groupname</p>"),
		mention(3, "m1", model.VisibilityPublic, "<p>!@groupname</p>"),
	)
	f.client.boostErr = fmt.Errorf("boost: %w", driven.ErrTransport)

	_, err := f.svc.RunGroup(context.Background(), "default", application.RunOptions{})

	require.ErrorIs(t, err, driven.ErrTransport)
	assert.Empty(t, f.cursors.saves, "cursor must not advance past unprocessed notifications")
	assert.Empty(t, f.reposts.records)
}

func TestRelayService_MediaFailureSkipsOnlyThatNotification(t *testing.T) {
	withMedia := mention(3, "m1", model.VisibilityDirect, "<p>@groupname picture</p>")
	withMedia.Status.Attachments = []model.Attachment{{SourceURL: "https://files.example/missing.png"}}

	f := newRelayFixture(t, bothFlags,
		mention(4, "m1", model.VisibilityDirect, "<p>@groupname text only</p>"),
		withMedia,
	)

	report, err := f.svc.RunGroup(context.Background(), "default", application.RunOptions{})

	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Reposted)
	require.Len(t, f.client.published, 1)
	assert.Equal(t, "text only", f.client.published[0].Text)
	assert.Equal(t, model.Cursor(4), f.cursors.cursors["default"])

	require.Len(t, f.reposts.records, 2)
	assert.NotEmpty(t, f.reposts.records[0].Error)
	assert.True(t, f.reposts.records[1].Succeeded())
}

func TestRelayService_RejectedBoostIsNotTerminal(t *testing.T) {
	f := newRelayFixture(t, bothFlags, mention(3, "m1", model.VisibilityPublic, "<p>!@groupname</p>"))
	f.client.boostErr = fmt.Errorf("boost: %w", driven.ErrRejected)

	report, err := f.svc.RunGroup(context.Background(), "default", application.RunOptions{})

	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, model.Cursor(3), f.cursors.cursors["default"])
}

func TestRelayService_TerminalErrorNamesActionOnce(t *testing.T) {
	f := newRelayFixture(t, bothFlags, mention(3, "m1", model.VisibilityPublic, "<p>!@groupname</p>"))
	f.client.boostErr = fmt.Errorf("boost status s3: %w: HTTP 401: The access token is invalid", driven.ErrAuth)

	report, err := f.svc.RunGroup(context.Background(), "default", application.RunOptions{})

	require.ErrorIs(t, err, driven.ErrAuth)
	assert.Equal(t, 1, strings.Count(err.Error(), "boost status s3"), err.Error())
	assert.Contains(t, err.Error(), "notification 3")
	assert.Equal(t, err.Error(), report.Error)
}

func TestRelayService_MediaUploadAuthErrorIsTerminal(t *testing.T) {
	n := mention(3, "m1", model.VisibilityDirect, "<p>@groupname picture</p>")
	n.Status.Attachments = []model.Attachment{{SourceURL: "https://files.example/a.png"}}

	f := newRelayFixture(t, bothFlags, n)
	f.media.files["https://files.example/a.png"] = []byte("img")
	f.client.uploadErr = fmt.Errorf("upload: %w", driven.ErrAuth)

	_, err := f.svc.RunGroup(context.Background(), "default", application.RunOptions{})

	require.ErrorIs(t, err, driven.ErrAuth)
	assert.Empty(t, f.cursors.saves)
}

func TestRelayService_RepostCarriesMediaAndFlags(t *testing.T) {
	n := mention(3, "m1", model.VisibilityDirect, "<p>@groupname look</p>")
	n.Status.Sensitive = true
	n.Status.SpoilerText = "spoiler"
	n.Status.Attachments = []model.Attachment{{SourceURL: "https://files.example/a.png?1", Description: "alt text"}}

	f := newRelayFixture(t, bothFlags, n)
	f.media.files["https://files.example/a.png?1"] = []byte("img")

	_, err := f.svc.RunGroup(context.Background(), "default", application.RunOptions{})

	require.NoError(t, err)
	require.Len(t, f.client.published, 1)
	assert.Equal(t, driven.StatusDraft{
		Text:        "look",
		MediaIDs:    []string{"media-1"},
		Sensitive:   true,
		Visibility:  model.VisibilityPublic,
		SpoilerText: "spoiler",
	}, f.client.published[0])
	assert.Equal(t, "alt text", f.client.uploads[0].Description)
	assert.Equal(t, "a.png", f.client.uploads[0].Filename)
}

func TestRelayService_SkipsAlreadyReposted(t *testing.T) {
	f := newRelayFixture(t, bothFlags, mention(3, "m1", model.VisibilityPublic, "<p>!@groupname</p>"))
	// A previous run published but crashed before the cursor was saved.
	f.reposts.records = append(f.reposts.records, model.RepostRecord{GroupName: "default", NotificationID: 3})

	report, err := f.svc.RunGroup(context.Background(), "default", application.RunOptions{})

	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)
	assert.Empty(t, f.client.boosts)
	assert.Equal(t, model.Cursor(3), f.cursors.cursors["default"])
}

func TestRelayService_DryRun(t *testing.T) {
	f := newRelayFixture(t, bothFlags,
		mention(4, "m1", model.VisibilityPublic, "<p>!@groupname</p>"),
		mention(3, "m1", model.VisibilityDirect, "<p>@groupname hi</p>"),
	)

	report, err := f.svc.RunGroup(context.Background(), "default", application.RunOptions{DryRun: true})

	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Equal(t, 1, report.Boosted)
	assert.Equal(t, 1, report.Reposted)
	assert.Equal(t, model.Cursor(4), report.CursorAfter)
	assert.Empty(t, f.client.boosts)
	assert.Empty(t, f.client.published)
	assert.Empty(t, f.cursors.saves)
	assert.Empty(t, f.reposts.records)
	assert.Empty(t, f.runs.reports)
}

func TestRelayService_UnknownGroup(t *testing.T) {
	f := newRelayFixture(t, bothFlags)

	_, err := f.svc.RunGroup(context.Background(), "nope", application.RunOptions{})

	require.ErrorIs(t, err, driven.ErrGroupNotFound)
	assert.Empty(t, f.runs.reports, "no history is kept for unknown groups")
}

func TestRelayService_ClientUnavailable(t *testing.T) {
	f := newRelayFixture(t, bothFlags)
	svc := application.NewRelayService(
		staticClients{err: application.ErrNotRegistered},
		f.groups, f.cursors, f.reposts, f.runs, f.media, 0, "",
	)

	_, err := svc.RunGroup(context.Background(), "default", application.RunOptions{})

	require.True(t, errors.Is(err, application.ErrNotRegistered))
}
