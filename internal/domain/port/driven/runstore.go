package driven

import (
	"context"

	"github.com/ericfisherdev/tootgroup/internal/domain/model"
)

// RunStore persists run reports.
type RunStore interface {
	Save(ctx context.Context, report model.RunReport) error
	ListRecent(ctx context.Context, groupName string, limit int) ([]model.RunReport, error)
}
