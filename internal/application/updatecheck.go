package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ericfisherdev/tootgroup/internal/domain/model"
	"github.com/ericfisherdev/tootgroup/internal/domain/port/driven"
)

const updateCheckTimeout = 5 * time.Second

// UpdateInfo is the outcome of a release check.
type UpdateInfo struct {
	Current   string
	Latest    model.Release
	Available bool
}

// CheckForUpdate compares the running version with the latest published
// release. Development builds ("dev" or empty) never report an update.
func CheckForUpdate(ctx context.Context, checker driven.ReleaseChecker, current string) (UpdateInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, updateCheckTimeout)
	defer cancel()

	latest, err := checker.LatestRelease(ctx)
	if err != nil {
		return UpdateInfo{Current: current}, fmt.Errorf("check for update: %w", err)
	}

	cur := strings.TrimPrefix(current, "v")
	tag := strings.TrimPrefix(latest.Tag, "v")

	return UpdateInfo{
		Current:   current,
		Latest:    latest,
		Available: tag != "" && cur != "" && cur != "dev" && tag != cur,
	}, nil
}
