package driven

import (
	"context"

	"github.com/ericfisherdev/tootgroup/internal/domain/model"
)

// CursorStore persists the last processed notification ID per group.
type CursorStore interface {
	// Load returns the stored cursor, or model.DefaultCursor when none is
	// stored or the stored value is not a positive integer.
	Load(ctx context.Context, groupName string) (model.Cursor, error)

	// Save overwrites the stored cursor.
	Save(ctx context.Context, groupName string, cursor model.Cursor) error
}
