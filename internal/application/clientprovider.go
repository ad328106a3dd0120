package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ericfisherdev/tootgroup/internal/domain/model"
	"github.com/ericfisherdev/tootgroup/internal/domain/port/driven"
)

// ErrNotRegistered indicates a group has no stored access token. The group
// must be registered before a run can start.
var ErrNotRegistered = errors.New("group is not registered")

// ClientFactory creates a MastodonClient for an instance and access token.
type ClientFactory func(instanceURL, accessToken string) driven.MastodonClient

// ClientProvider hands out one MastodonClient per group. Clients are created
// lazily from the stored group settings and credentials, and can be swapped
// at runtime when a group is registered again, without restarting watch mode.
type ClientProvider struct {
	mu      sync.RWMutex
	clients map[string]driven.MastodonClient
	groups  driven.GroupStore
	creds   driven.CredentialStore
	factory ClientFactory
}

// NewClientProvider creates a provider backed by the given stores.
func NewClientProvider(groups driven.GroupStore, creds driven.CredentialStore, factory ClientFactory) *ClientProvider {
	return &ClientProvider{
		clients: make(map[string]driven.MastodonClient),
		groups:  groups,
		creds:   creds,
		factory: factory,
	}
}

// Client returns the client for the named group, creating it on first use.
func (p *ClientProvider) Client(ctx context.Context, groupName string) (driven.MastodonClient, error) {
	p.mu.RLock()
	client, ok := p.clients[groupName]
	p.mu.RUnlock()
	if ok {
		return client, nil
	}

	group, err := p.groups.Get(ctx, groupName)
	if err != nil {
		return nil, err
	}

	token, err := p.creds.Get(ctx, groupName, model.CredentialAccessToken)
	if err != nil {
		return nil, fmt.Errorf("load access token for group %q: %w", groupName, err)
	}
	if token == "" {
		return nil, fmt.Errorf("%w: no access token stored for group %q", ErrNotRegistered, groupName)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.clients[groupName]; ok {
		return existing, nil
	}
	client = p.factory(group.InstanceURL, token)
	p.clients[groupName] = client
	return client, nil
}

// Replace swaps the client of a group. The next caller of Client receives
// the new one.
func (p *ClientProvider) Replace(groupName string, client driven.MastodonClient) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clients[groupName] = client
}

// Forget drops the cached client of a group, forcing the next call to
// rebuild it from storage.
func (p *ClientProvider) Forget(groupName string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.clients, groupName)
}
