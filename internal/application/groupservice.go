package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/ericfisherdev/tootgroup/internal/domain/model"
	"github.com/ericfisherdev/tootgroup/internal/domain/port/driven"
)

// RegisterRequest is the input to GroupService.Register.
type RegisterRequest struct {
	Name        string
	InstanceURL string
	AccessToken string
	Policy      model.Policy
}

// PolicyUpdate changes the policy switches that are non-nil.
type PolicyUpdate struct {
	AcceptDirectMessages *bool
	AcceptPublicRetoots  *bool
}

// GroupService provisions groups: it validates credentials against the
// instance, stores settings and the encrypted access token, and initialises
// the cursor. It replaces interactive first-run setup.
type GroupService struct {
	groups   driven.GroupStore
	creds    driven.CredentialStore
	cursors  driven.CursorStore
	provider *ClientProvider
	factory  ClientFactory
}

// NewGroupService creates a GroupService.
func NewGroupService(
	groups driven.GroupStore,
	creds driven.CredentialStore,
	cursors driven.CursorStore,
	provider *ClientProvider,
	factory ClientFactory,
) *GroupService {
	return &GroupService{
		groups:   groups,
		creds:    creds,
		cursors:  cursors,
		provider: provider,
		factory:  factory,
	}
}

// Register validates the access token and stores a new group, or replaces the
// instance and token of an existing one. The cursor of an existing group is
// kept; a new group starts at model.DefaultCursor.
func (s *GroupService) Register(ctx context.Context, req RegisterRequest) (model.Group, model.GroupAccount, error) {
	instanceURL, err := NormalizeInstanceURL(req.InstanceURL)
	if err != nil {
		return model.Group{}, model.GroupAccount{}, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = model.DefaultGroupName
	}
	if strings.TrimSpace(req.AccessToken) == "" {
		return model.Group{}, model.GroupAccount{}, errors.New("access token is required")
	}

	client := s.factory(instanceURL, req.AccessToken)
	account, err := client.VerifyCredentials(ctx)
	if err != nil {
		return model.Group{}, model.GroupAccount{}, fmt.Errorf("validate access token: %w", err)
	}

	group, err := s.groups.Add(ctx, model.Group{
		Name:        name,
		InstanceURL: instanceURL,
		Policy:      req.Policy,
		Cursor:      model.DefaultCursor,
	})
	switch {
	case errors.Is(err, driven.ErrGroupAlreadyExists):
		if err := s.groups.UpdatePolicy(ctx, name, req.Policy); err != nil {
			return model.Group{}, model.GroupAccount{}, err
		}
		if err := s.groups.UpdateInstance(ctx, name, instanceURL); err != nil {
			return model.Group{}, model.GroupAccount{}, err
		}
		group, err = s.groups.Get(ctx, name)
		if err != nil {
			return model.Group{}, model.GroupAccount{}, err
		}
	case err != nil:
		return model.Group{}, model.GroupAccount{}, err
	default:
		if err := s.cursors.Save(ctx, name, model.DefaultCursor); err != nil {
			return model.Group{}, model.GroupAccount{}, err
		}
	}

	if err := s.creds.Set(ctx, name, model.CredentialAccessToken, req.AccessToken); err != nil {
		return model.Group{}, model.GroupAccount{}, fmt.Errorf("store access token: %w", err)
	}

	s.provider.Replace(name, client)

	slog.Info("group registered",
		"group", name,
		"instance", instanceURL,
		"account", account.Username,
		"accept_dms", req.Policy.AcceptDirectMessages,
		"accept_retoots", req.Policy.AcceptPublicRetoots,
	)

	return group, account, nil
}

// UpdatePolicy applies the non-nil switches of update to the group's policy.
func (s *GroupService) UpdatePolicy(ctx context.Context, name string, update PolicyUpdate) (model.Group, error) {
	group, err := s.groups.Get(ctx, name)
	if err != nil {
		return model.Group{}, err
	}

	policy := group.Policy
	if update.AcceptDirectMessages != nil {
		policy.AcceptDirectMessages = *update.AcceptDirectMessages
	}
	if update.AcceptPublicRetoots != nil {
		policy.AcceptPublicRetoots = *update.AcceptPublicRetoots
	}

	if err := s.groups.UpdatePolicy(ctx, name, policy); err != nil {
		return model.Group{}, err
	}
	group.Policy = policy
	return group, nil
}

// Remove deletes a group with its credentials and cached client.
func (s *GroupService) Remove(ctx context.Context, name string) error {
	if err := s.groups.Remove(ctx, name); err != nil {
		return err
	}
	creds, err := s.creds.List(ctx, name)
	if err != nil {
		return fmt.Errorf("list credentials of group %q: %w", name, err)
	}
	for _, c := range creds {
		if err := s.creds.Delete(ctx, name, c.Key); err != nil {
			return fmt.Errorf("delete credential %q of group %q: %w", c.Key, name, err)
		}
	}
	s.provider.Forget(name)
	return nil
}

// List returns every registered group.
func (s *GroupService) List(ctx context.Context) ([]model.Group, error) {
	return s.groups.ListAll(ctx)
}

// Get returns one registered group.
func (s *GroupService) Get(ctx context.Context, name string) (model.Group, error) {
	return s.groups.Get(ctx, name)
}

// NormalizeInstanceURL accepts "example.social" or "https://example.social/"
// and returns "https://example.social".
func NormalizeInstanceURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("instance URL is required")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid instance URL %q: %w", raw, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return "", fmt.Errorf("invalid instance URL %q: unsupported scheme %q", raw, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid instance URL %q: missing host", raw)
	}

	return u.Scheme + "://" + u.Host + strings.TrimRight(u.Path, "/"), nil
}
