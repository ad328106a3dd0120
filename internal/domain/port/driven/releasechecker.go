package driven

import (
	"context"

	"github.com/ericfisherdev/tootgroup/internal/domain/model"
)

// ReleaseChecker looks up the newest published release of tootgroup.
type ReleaseChecker interface {
	LatestRelease(ctx context.Context) (model.Release, error)
}
