package github_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ghAdapter "github.com/ericfisherdev/tootgroup/internal/adapter/driven/github"
)

func newTestChecker(t *testing.T, handler http.Handler) *ghAdapter.ReleaseChecker {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	checker, err := ghAdapter.NewReleaseCheckerWithHTTPClient(server.Client(), server.URL+"/", "ericfisherdev", "tootgroup")
	require.NoError(t, err)
	return checker
}

func TestLatestRelease(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/ericfisherdev/tootgroup/releases/latest", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"tag_name": "v1.4.0",
			"html_url": "https://github.com/ericfisherdev/tootgroup/releases/tag/v1.4.0",
			"published_at": "2026-02-01T10:00:00Z"
		}`))
	})

	checker := newTestChecker(t, mux)

	rel, err := checker.LatestRelease(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v1.4.0", rel.Tag)
	assert.Equal(t, "https://github.com/ericfisherdev/tootgroup/releases/tag/v1.4.0", rel.URL)
	assert.Equal(t, time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC), rel.PublishedAt.UTC())
}

func TestLatestRelease_NotFound(t *testing.T) {
	checker := newTestChecker(t, http.NotFoundHandler())

	_, err := checker.LatestRelease(context.Background())
	require.Error(t, err)
}
