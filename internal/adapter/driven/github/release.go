// Package github implements the ReleaseChecker port using the go-github library.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/tootgroup/internal/domain/model"
	"github.com/ericfisherdev/tootgroup/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ReleaseChecker = (*ReleaseChecker)(nil)

// ReleaseChecker looks up the latest published release of a repository.
type ReleaseChecker struct {
	gh    *gh.Client
	owner string
	repo  string
}

// NewReleaseChecker creates an unauthenticated checker for owner/repo with the
// following transport stack:
//  1. httpcache (ETag-based conditional requests keep repeated checks from
//     spending the anonymous rate limit)
//  2. go-github-ratelimit (GitHub secondary rate limit middleware, sleeps on 429)
//  3. go-github
func NewReleaseChecker(owner, repo string) *ReleaseChecker {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	return &ReleaseChecker{
		gh:    gh.NewClient(rateLimitClient),
		owner: owner,
		repo:  repo,
	}
}

// NewReleaseCheckerWithHTTPClient creates a ReleaseChecker with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewReleaseCheckerWithHTTPClient(httpClient *http.Client, baseURL, owner, repo string) (*ReleaseChecker, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &ReleaseChecker{gh: client, owner: owner, repo: repo}, nil
}

// LatestRelease returns the newest non-draft, non-prerelease release.
func (c *ReleaseChecker) LatestRelease(ctx context.Context) (model.Release, error) {
	rel, resp, err := c.gh.Repositories.GetLatestRelease(ctx, c.owner, c.repo)
	if err != nil {
		return model.Release{}, fmt.Errorf("get latest release of %s/%s: %w", c.owner, c.repo, err)
	}

	if resp != nil {
		slog.Debug("github api call",
			"endpoint", "releases/latest",
			"rate_remaining", resp.Rate.Remaining,
			"rate_limit", resp.Rate.Limit,
		)
	}

	return model.Release{
		Tag:         rel.GetTagName(),
		URL:         rel.GetHTMLURL(),
		PublishedAt: rel.GetPublishedAt().Time,
	}, nil
}
