package application_test

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/ericfisherdev/tootgroup/internal/domain/model"
	"github.com/ericfisherdev/tootgroup/internal/domain/port/driven"
)

// --- Mastodon fake ---

type uploadCall struct {
	Filename    string
	Data        string
	Description string
}

// fakeMastodon serves a fixed newest-first notification feed in pages of
// pageSize and records every mutation.
type fakeMastodon struct {
	mu sync.Mutex

	account   model.GroupAccount
	verifyErr error
	following []model.Member
	followErr error

	feed     []model.Notification
	pageSize int
	listErr  error
	maxIDs   []int64

	boostErr   error
	boosts     []string
	publishErr error
	published  []driven.StatusDraft
	uploadErr  error
	uploads    []uploadCall
}

var _ driven.MastodonClient = (*fakeMastodon)(nil)

func (f *fakeMastodon) VerifyCredentials(_ context.Context) (model.GroupAccount, error) {
	return f.account, f.verifyErr
}

func (f *fakeMastodon) ListFollowing(_ context.Context, _ string) ([]model.Member, error) {
	return f.following, f.followErr
}

func (f *fakeMastodon) ListNotifications(_ context.Context, maxID int64) ([]model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.maxIDs = append(f.maxIDs, maxID)
	if f.listErr != nil {
		return nil, f.listErr
	}

	size := f.pageSize
	if size <= 0 {
		size = 40
	}

	var page []model.Notification
	for _, n := range f.feed {
		if maxID != 0 && n.ID >= maxID {
			continue
		}
		page = append(page, n)
		if len(page) == size {
			break
		}
	}
	return page, nil
}

func (f *fakeMastodon) Boost(_ context.Context, statusID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.boostErr != nil {
		return "", f.boostErr
	}
	f.boosts = append(f.boosts, statusID)
	return "reblog-" + statusID, nil
}

func (f *fakeMastodon) PublishStatus(_ context.Context, draft driven.StatusDraft) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return "", f.publishErr
	}
	f.published = append(f.published, draft)
	return fmt.Sprintf("new-%d", len(f.published)), nil
}

func (f *fakeMastodon) UploadMedia(_ context.Context, filename string, data io.Reader, description string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	f.uploads = append(f.uploads, uploadCall{Filename: filename, Data: string(b), Description: description})
	return fmt.Sprintf("media-%d", len(f.uploads)), nil
}

// --- Media fetcher fake ---

type fakeMediaFetcher struct {
	files map[string][]byte
	err   error
	calls []string
}

func (f *fakeMediaFetcher) FetchBytes(_ context.Context, url string) ([]byte, error) {
	f.calls = append(f.calls, url)
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.files[url]
	if !ok {
		return nil, fmt.Errorf("fetch %s: 404", url)
	}
	return data, nil
}

// --- Store fakes ---

type memGroupStore struct {
	mu     sync.Mutex
	groups map[string]model.Group
	err    error
}

func newMemGroupStore(groups ...model.Group) *memGroupStore {
	s := &memGroupStore{groups: make(map[string]model.Group)}
	for _, g := range groups {
		s.groups[g.Name] = g
	}
	return s
}

func (s *memGroupStore) Add(_ context.Context, g model.Group) (model.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[g.Name]; ok {
		return model.Group{}, driven.ErrGroupAlreadyExists
	}
	g.ID = int64(len(s.groups) + 1)
	s.groups[g.Name] = g
	return g, nil
}

func (s *memGroupStore) Get(_ context.Context, name string) (model.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return model.Group{}, s.err
	}
	g, ok := s.groups[name]
	if !ok {
		return model.Group{}, driven.ErrGroupNotFound
	}
	return g, nil
}

func (s *memGroupStore) ListAll(_ context.Context) ([]model.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]model.Group, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memGroupStore) UpdatePolicy(_ context.Context, name string, policy model.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[name]
	if !ok {
		return driven.ErrGroupNotFound
	}
	g.Policy = policy
	s.groups[name] = g
	return nil
}

func (s *memGroupStore) UpdateInstance(_ context.Context, name, instanceURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[name]
	if !ok {
		return driven.ErrGroupNotFound
	}
	g.InstanceURL = instanceURL
	s.groups[name] = g
	return nil
}

func (s *memGroupStore) Remove(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[name]; !ok {
		return driven.ErrGroupNotFound
	}
	delete(s.groups, name)
	return nil
}

type memCursorStore struct {
	mu      sync.Mutex
	cursors map[string]model.Cursor
	saves   []model.Cursor
	saveErr error
}

func newMemCursorStore() *memCursorStore {
	return &memCursorStore{cursors: make(map[string]model.Cursor)}
}

func (s *memCursorStore) Load(_ context.Context, groupName string) (model.Cursor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cursors[groupName]
	if !ok || c < 1 {
		return model.DefaultCursor, nil
	}
	return c, nil
}

func (s *memCursorStore) Save(_ context.Context, groupName string, cursor model.Cursor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.cursors[groupName] = cursor
	s.saves = append(s.saves, cursor)
	return nil
}

type memRepostLog struct {
	mu      sync.Mutex
	records []model.RepostRecord
}

func (l *memRepostLog) Record(_ context.Context, r model.RepostRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, r)
	return nil
}

func (l *memRepostLog) HasSucceeded(_ context.Context, groupName string, notificationID int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range l.records {
		if r.GroupName == groupName && r.NotificationID == notificationID && r.Succeeded() {
			return true, nil
		}
	}
	return false, nil
}

func (l *memRepostLog) ListRecent(_ context.Context, groupName string, limit int) ([]model.RepostRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []model.RepostRecord
	for i := len(l.records) - 1; i >= 0 && len(out) < limit; i-- {
		if l.records[i].GroupName == groupName {
			out = append(out, l.records[i])
		}
	}
	return out, nil
}

type memRunStore struct {
	mu      sync.Mutex
	reports []model.RunReport
}

func (s *memRunStore) Save(_ context.Context, r model.RunReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, r)
	return nil
}

func (s *memRunStore) ListRecent(_ context.Context, groupName string, limit int) ([]model.RunReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.RunReport
	for i := len(s.reports) - 1; i >= 0 && len(out) < limit; i-- {
		if s.reports[i].GroupName == groupName {
			out = append(out, s.reports[i])
		}
	}
	return out, nil
}

type memCredentialStore struct {
	mu    sync.Mutex
	creds map[string]string
}

func newMemCredentialStore() *memCredentialStore {
	return &memCredentialStore{creds: make(map[string]string)}
}

func (s *memCredentialStore) Set(_ context.Context, groupName, key, plaintext string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[groupName+"/"+key] = plaintext
	return nil
}

func (s *memCredentialStore) Get(_ context.Context, groupName, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds[groupName+"/"+key], nil
}

func (s *memCredentialStore) List(_ context.Context, groupName string) ([]model.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Credential
	for k, v := range s.creds {
		group, key, _ := strings.Cut(k, "/")
		if group == groupName {
			out = append(out, model.Credential{GroupName: group, Key: key, Value: v})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *memCredentialStore) Delete(_ context.Context, groupName, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.creds, groupName+"/"+key)
	return nil
}

// staticClients resolves every group to the same client.
type staticClients struct {
	client driven.MastodonClient
	err    error
}

func (s staticClients) Client(_ context.Context, _ string) (driven.MastodonClient, error) {
	return s.client, s.err
}

// --- Notification builders ---

func mention(id int64, authorID string, visibility model.Visibility, content string) model.Notification {
	return model.Notification{
		ID:       id,
		Type:     model.NotificationMention,
		AuthorID: authorID,
		Status: &model.Status{
			ID:         fmt.Sprintf("s%d", id),
			Visibility: visibility,
			Content:    content,
		},
	}
}

func favourite(id int64, authorID string) model.Notification {
	return model.Notification{ID: id, Type: model.NotificationOther, AuthorID: authorID}
}

// newestFirst builds a feed of plain "other" notifications with the given IDs,
// sorted newest first.
func newestFirst(ids ...int64) []model.Notification {
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] > sorted[j] })
	feed := make([]model.Notification, 0, len(sorted))
	for _, id := range sorted {
		feed = append(feed, favourite(id, "x"))
	}
	return feed
}

func ids(ns []model.Notification) []int64 {
	out := make([]int64, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.ID)
	}
	return out
}
