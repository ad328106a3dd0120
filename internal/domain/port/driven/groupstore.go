package driven

import (
	"context"

	"github.com/ericfisherdev/tootgroup/internal/domain/model"
)

// GroupStore defines the driven port for registered groups.
// Add returns ErrGroupAlreadyExists for duplicate names; Get, UpdatePolicy,
// UpdateInstance and Remove return ErrGroupNotFound for unknown names.
type GroupStore interface {
	Add(ctx context.Context, group model.Group) (model.Group, error)
	Get(ctx context.Context, name string) (model.Group, error)
	ListAll(ctx context.Context) ([]model.Group, error)
	UpdatePolicy(ctx context.Context, name string, policy model.Policy) error
	UpdateInstance(ctx context.Context, name, instanceURL string) error
	Remove(ctx context.Context, name string) error
}
