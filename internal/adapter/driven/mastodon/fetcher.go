package mastodon

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/ericfisherdev/tootgroup/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.MediaFetcher = (*MediaFetcher)(nil)

// maxMediaBytes caps a single attachment download.
const maxMediaBytes = 100 << 20

// MediaFetcher downloads attachment files from their public URLs. It sends no
// credentials, since media usually lives on other instances or a CDN.
type MediaFetcher struct {
	http *http.Client
}

// NewMediaFetcher creates a MediaFetcher. A nil client selects a default one
// with a request timeout.
func NewMediaFetcher(httpClient *http.Client) *MediaFetcher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * requestTimeout}
	}
	return &MediaFetcher{http: httpClient}
}

// FetchBytes downloads the file at url.
func (f *MediaFetcher) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build media request: %w", err)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %w", driven.ErrTransport, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetch %s: HTTP %d", driven.ErrTransport, url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMediaBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", driven.ErrTransport, url, err)
	}
	if len(data) > maxMediaBytes {
		return nil, fmt.Errorf("fetch %s: file exceeds %d bytes", url, maxMediaBytes)
	}

	return data, nil
}
